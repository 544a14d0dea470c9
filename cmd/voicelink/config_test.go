package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("expected defaults for missing file, got %v", err)
	}
	if cfg.Server.URL != "http://localhost:8000" {
		t.Fatalf("unexpected default server url %q", cfg.Server.URL)
	}
	if cfg.Speech.Engine != "deepgram" || cfg.Audio.Backend != "miniaudio" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voicelink.yaml")
	content := "server:\n  url: http://example.test:9000\nspeech:\n  engine: none\naudio:\n  backend: portaudio\n  buffer_size: 960\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("expected config to load, got %v", err)
	}
	if cfg.Server.URL != "http://example.test:9000" {
		t.Fatalf("unexpected server url %q", cfg.Server.URL)
	}
	if cfg.Speech.Engine != "none" || cfg.Audio.Backend != "portaudio" || cfg.Audio.BufferSize != 960 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadConfigRejectsUnknownEngine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voicelink.yaml")
	if err := os.WriteFile(path, []byte("speech:\n  engine: whisperx\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := loadConfig(path); err == nil {
		t.Fatalf("expected error for unknown engine")
	}
}
