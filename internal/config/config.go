package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
)

const (
	KindInput    = "input"
	KindLoopback = "loopback"
)

type Config struct {
	LogLevel string         `json:"log_level"`
	Capture  CaptureConfig  `json:"capture"`
	Delivery DeliveryConfig `json:"delivery"`
}

type CaptureConfig struct {
	Kind     string `json:"kind"`      // "input" or "loopback"
	DeviceID string `json:"device_id"` // empty selects the platform default
}

type DeliveryConfig struct {
	ChunkSamples   int `json:"chunk_samples"`    // per-channel samples per chunk
	TickIntervalMs int `json:"tick_interval_ms"` // delivery loop cadence
	BufferSamples  int `json:"buffer_samples"`   // transfer ring capacity
}

// Load reads the config from disk or returns defaults
func Load() (*Config, error) {
	path := configPath()

	// Default config
	cfg := &Config{
		LogLevel: "info",
		Capture: CaptureConfig{
			Kind:     KindInput,
			DeviceID: "",
		},
		Delivery: DeliveryConfig{
			ChunkSamples:   4800,
			TickIntervalMs: 10,
			BufferSamples:  32768,
		},
	}

	// Load existing config if it exists
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path := configPath()

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// configPath returns the platform-specific config file path
func configPath() string {
	var base string

	switch runtime.GOOS {
	case "darwin":
		base = os.Getenv("HOME") + "/Library/Application Support"
	case "windows":
		base = os.Getenv("APPDATA")
	default: // linux
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = xdg
		} else {
			base = os.Getenv("HOME") + "/.config"
		}
	}

	return filepath.Join(base, "livecap", "config.json")
}
