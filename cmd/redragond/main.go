// Command redragond is the background service for a Redragon SS-550
// macro pad: it owns the USB connection, renders button images, and
// exposes a local HTTP command surface for a GUI to configure pages and
// trigger actions.
package main

import (
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/pkg/profile"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/matthewpi/redragon-deck/internal/action"
	"github.com/matthewpi/redragon-deck/internal/config"
	"github.com/matthewpi/redragon-deck/internal/keysynth"
	"github.com/matthewpi/redragon-deck/internal/obs"
	"github.com/matthewpi/redragon-deck/internal/refresh"
	"github.com/matthewpi/redragon-deck/internal/server"
	"github.com/matthewpi/redragon-deck/internal/session"
	"github.com/matthewpi/redragon-deck/internal/twitch"
	"github.com/matthewpi/redragon-deck/internal/widget"
)

func main() {
	_ = godotenv.Load()
	opts := parseFlags()

	stopProfile := startProfile(opts.profile)
	defer stopProfile()

	log := buildLogger(opts.dev, opts.logfile)
	defer log.Sync()

	store, err := config.Open(filepath.Join(opts.configDir, "config.json"), log)
	if err != nil {
		log.Fatalw("failed to open config store", "error", err)
	}
	if opts.brightness >= 0 {
		if err := store.SetBrightnessLevel(opts.brightness); err != nil {
			log.Warnw("ignoring invalid -brightness override", "error", err)
		}
	}

	iconsDir := filepath.Join(opts.configDir, "icons")
	if err := os.MkdirAll(iconsDir, 0o755); err != nil {
		log.Fatalw("failed to create icons directory", "error", err)
	}

	sig := refresh.New()
	obsCache := obs.NewCache()
	twitchCache := twitch.NewCache()
	widgets := widget.NewEngine(obsCache, twitchCache)

	obsClient := connectOBS(log, obsCache)
	if obsClient != nil {
		defer obsClient.Close()
	}

	twitchClient, stopTwitchPoller := connectTwitch(log, twitchCache)
	if stopTwitchPoller != nil {
		defer close(stopTwitchPoller)
	}

	synth, err := keysynth.New()
	if err != nil {
		log.Infow("key synthesis unavailable, __KEY_/__TYPE_ commands will be dropped", "error", err)
		synth = nil
	}
	if synth != nil {
		defer synth.Close()
	}

	dispatcher := action.New(store, sig, widgets, obsClient, twitchClient, synth, log)
	sess := session.New(store, iconsDir, dispatcher, widgets, sig, log)
	go sess.Run()

	srv := server.New(opts.httpAddr, store, sess, sig, dispatcher, iconsDir, log)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log.Infow("shutting down")
		if err := srv.Close(); err != nil {
			log.Warnw("error closing command surface", "error", err)
		}
	}()

	log.Infow("command surface listening", "addr", opts.httpAddr)
	if err := srv.Run(); err != nil && err != http.ErrServerClosed {
		log.Fatalw("command surface exited", "error", err)
	}
}

func buildLogger(dev bool, logfile string) *zap.SugaredLogger {
	var cfg zap.Config
	if dev {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	if logfile == "" {
		l, err := cfg.Build()
		if err != nil {
			panic(err)
		}
		return l.Sugar()
	}

	writer := zapcore.AddSync(&lumberjack.Logger{
		Filename:   logfile,
		MaxSize:    20,
		MaxBackups: 3,
	})
	encoder := zapcore.NewJSONEncoder(cfg.EncoderConfig)
	if dev {
		encoder = zapcore.NewConsoleEncoder(cfg.EncoderConfig)
	}
	core := zapcore.NewCore(encoder, writer, cfg.Level)
	return zap.New(core).Sugar()
}

func startProfile(kind string) func() {
	switch kind {
	case "cpu":
		p := profile.Start(profile.CPUProfile)
		return p.Stop
	case "mem":
		p := profile.Start(profile.MemProfile)
		return p.Stop
	default:
		return func() {}
	}
}

func connectOBS(log *zap.SugaredLogger, cache *obs.Cache) *obs.Client {
	url := os.Getenv("OBS_WEBSOCKET_URL")
	if url == "" {
		url = "ws://localhost:4455"
	}
	password := os.Getenv("OBS_WEBSOCKET_PASSWORD")

	client, err := obs.Dial(url, password, cache, log)
	if err != nil {
		log.Infow("OBS integration unavailable", "url", url, "error", err)
		return nil
	}
	return client
}

func connectTwitch(log *zap.SugaredLogger, cache *twitch.Cache) (*twitch.Client, chan struct{}) {
	clientID := os.Getenv("TWITCH_CLIENT_ID")
	accessToken := os.Getenv("TWITCH_ACCESS_TOKEN")
	channel := os.Getenv("TWITCH_CHANNEL")
	if clientID == "" || accessToken == "" || channel == "" {
		log.Infow("Twitch integration not configured, skipping")
		return nil, nil
	}

	client := twitch.NewClient(clientID, accessToken, channel)
	stop := make(chan struct{})
	go client.RunPoller(stop, cache)
	return client, stop
}
