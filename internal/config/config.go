// Package config holds the user-facing configuration for wtvoice.
//
// The running pipelines never mutate a Config in place: callers load or
// edit a copy and publish it through a Store, which swaps the snapshot
// wholesale so concurrent readers always see a consistent view.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for wtvoice.
type Config struct {
	General   GeneralConfig   `yaml:"general"`
	Game      GameConfig      `yaml:"game"`
	PTT       PTTConfig       `yaml:"ptt"`
	Whisper   WhisperConfig   `yaml:"whisper"`
	Injection InjectionConfig `yaml:"injection"`
	Reader    ReaderConfig    `yaml:"reader"`
}

type GeneralConfig struct {
	LogLevel string `yaml:"logLevel"`
}

// GameConfig locates the game's local HTTP API.
type GameConfig struct {
	BaseURL        string `yaml:"baseUrl"`
	PollIntervalMs int    `yaml:"pollIntervalMs"`
}

// PTTConfig selects the joystick and button used for push-to-talk.
type PTTConfig struct {
	Device     string `yaml:"device"`
	Button     int    `yaml:"button"`
	AudioInput string `yaml:"audioInput"`
}

// WhisperConfig points at the local whisper.cpp server.
type WhisperConfig struct {
	ServerURL string `yaml:"serverUrl"`
	Language  string `yaml:"language"`
	Translate bool   `yaml:"translate"`
}

// InjectionConfig controls the simulated key sequence.
type InjectionConfig struct {
	DelayMs int    `yaml:"delayMs"`
	ChatKey string `yaml:"chatKey"`
}

// ReaderConfig controls the chat-to-speech pipeline.
type ReaderConfig struct {
	Enabled        bool     `yaml:"enabled"`
	Channels       []string `yaml:"channels"`
	OwnUsername    string   `yaml:"ownUsername"`
	QueueCapacity  int      `yaml:"queueCapacity"`
	TruncateLength int      `yaml:"truncateLength"`
	Engine         string   `yaml:"engine"` // "offline" | "edge"
	VoiceID        string   `yaml:"voiceId"`
	RatePercent    int      `yaml:"ratePercent"`
}

// Defaults returns a configuration with working defaults.
func Defaults() *Config {
	return &Config{
		General: GeneralConfig{
			LogLevel: "info",
		},
		Game: GameConfig{
			BaseURL:        "http://localhost:8111",
			PollIntervalMs: 500,
		},
		PTT: PTTConfig{
			Device: "/dev/input/js0",
			Button: -1,
		},
		Whisper: WhisperConfig{
			ServerURL: "http://localhost:8080",
			Language:  "en",
		},
		Injection: InjectionConfig{
			DelayMs: 50,
			ChatKey: "Return",
		},
		Reader: ReaderConfig{
			Enabled:        false,
			Channels:       []string{"team", "all"},
			QueueCapacity:  5,
			TruncateLength: 200,
			Engine:         "offline",
			RatePercent:    100,
		},
	}
}

// PollInterval returns the poll interval as a duration, floored at 100ms
// so a bad config value cannot hammer the game server.
func (g GameConfig) PollInterval() time.Duration {
	ms := g.PollIntervalMs
	if ms < 100 {
		ms = 100
	}
	return time.Duration(ms) * time.Millisecond
}

// Delay returns the inter-step injection delay as a duration.
func (i InjectionConfig) Delay() time.Duration {
	if i.DelayMs < 0 {
		return 0
	}
	return time.Duration(i.DelayMs) * time.Millisecond
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "wtvoice.yaml"
	}
	return filepath.Join(home, ".config", "wtvoice", "config.yaml")
}

// Load reads a config file, layering it over Defaults.
// A missing file is not an error: the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Save writes the config to path, creating parent directories as needed.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
