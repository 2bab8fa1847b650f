package main

import (
	"flag"
	"os"
	"path/filepath"
)

type options struct {
	configDir  string
	logfile    string
	httpAddr   string
	brightness int
	dev        bool
	profile    string
}

func defaultConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "redragon-deck")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".redragon-deck"
	}
	return filepath.Join(home, ".config", "redragon-deck")
}

// parseFlags follows the teacher's direct, no-framework flag style: one
// flag.XxxVar call per option, no subcommands.
func parseFlags() options {
	var o options
	flag.StringVar(&o.configDir, "config-dir", defaultConfigDir(), "directory holding config.json and the icons/ subdirectory")
	flag.StringVar(&o.logfile, "logfile", "", "log into a file, rotating after 20MB; defaults to stderr")
	flag.StringVar(&o.httpAddr, "http-addr", "127.0.0.1:8765", "address the command surface listens on")
	flag.IntVar(&o.brightness, "brightness", -1, "override the persisted brightness percentage (0-100) on startup; -1 leaves it untouched")
	flag.BoolVar(&o.dev, "dev", false, "use development logging (console, debug level) instead of production JSON logging")
	flag.StringVar(&o.profile, "profile", "", "enable pprof profiling: cpu or mem")
	flag.Parse()
	return o
}
