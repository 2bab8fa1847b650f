package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigDirUsesXDGConfigHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")
	got := defaultConfigDir()
	want := filepath.Join("/tmp/xdg-test", "redragon-deck")
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDefaultConfigDirFallsBackToHomeConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory available in this environment")
	}
	got := defaultConfigDir()
	want := filepath.Join(home, ".config", "redragon-deck")
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
