package main

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

type config struct {
	Server struct {
		// URL of the token/config service.
		URL string `yaml:"url"`
	} `yaml:"server"`

	Speech struct {
		// Engine selects the recognizer: "deepgram" or "none".
		Engine string `yaml:"engine"`
	} `yaml:"speech"`

	Audio struct {
		// Backend selects the audio device layer: "miniaudio", "portaudio"
		// or "none".
		Backend string `yaml:"backend"`
		// BufferSize is the portaudio frame buffer size.
		BufferSize int `yaml:"buffer_size"`
	} `yaml:"audio"`
}

func defaultConfig() config {
	cfg := config{}
	cfg.Server.URL = "http://localhost:8000"
	cfg.Speech.Engine = "deepgram"
	cfg.Audio.Backend = "miniaudio"
	cfg.Audio.BufferSize = 480
	return cfg
}

func loadConfig(path string) (config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// No config file is fine; defaults apply.
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}

	switch cfg.Speech.Engine {
	case "deepgram", "none":
	default:
		return cfg, fmt.Errorf("unknown speech engine %q", cfg.Speech.Engine)
	}

	switch cfg.Audio.Backend {
	case "miniaudio", "portaudio", "none":
	default:
		return cfg, fmt.Errorf("unknown audio backend %q", cfg.Audio.Backend)
	}

	return cfg, nil
}
