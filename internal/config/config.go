// Package config layers lrctap settings: compiled defaults, then the yaml
// file under the user config dir, then LRCTAP_* environment overrides.
// Command-line flags override all of it at the cobra layer.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultLrclibGetURL = "https://lrclib.net/api/get"
	HTTPTimeoutSeconds  = 10
)

// Duration lets the yaml file spell intervals as "100ms" or "1s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

type TranscribeConfig struct {
	BaseURL  string `yaml:"base_url"`
	Model    string `yaml:"model"`
	Language string `yaml:"language"`
}

type Config struct {
	Players      []string         `yaml:"players"`
	PollInterval Duration         `yaml:"poll_interval"`
	SyncInterval Duration         `yaml:"sync_interval"`
	SeekStep     float64          `yaml:"seek_step"`
	LrclibURL    string           `yaml:"lrclib_url"`
	HideHeader   bool             `yaml:"hide_header"`
	HistoryDB    string           `yaml:"history_db"`
	Transcribe   TranscribeConfig `yaml:"transcribe"`
}

func Default() *Config {
	return &Config{
		Players:      []string{"audacious", "vlc", "rhythmbox"},
		PollInterval: Duration(100 * time.Millisecond),
		SyncInterval: Duration(time.Second),
		SeekStep:     5,
		LrclibURL:    DefaultLrclibGetURL,
		HistoryDB:    defaultHistoryPath(),
		Transcribe: TranscribeConfig{
			BaseURL: "https://api.openai.com/v1",
			Model:   "whisper-1",
		},
	}
}

// Load builds the effective config. The result is always usable: a missing
// file means defaults, and a malformed file is reported through the error
// while defaults (plus environment overrides) still apply.
func Load() (*Config, error) {
	cfg := Default()

	var loadErr error
	path := FilePath()
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			cfg = Default()
			loadErr = fmt.Errorf("invalid config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, loadErr
}

func (c *Config) applyEnv() {
	if raw := os.Getenv("LRCTAP_PLAYERS"); raw != "" {
		var players []string
		for _, p := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				players = append(players, trimmed)
			}
		}
		if len(players) > 0 {
			c.Players = players
		}
	}

	if parsed, err := time.ParseDuration(os.Getenv("LRCTAP_POLL_INTERVAL")); err == nil && parsed > 0 {
		c.PollInterval = Duration(parsed)
	}
	if parsed, err := time.ParseDuration(os.Getenv("LRCTAP_SYNC_INTERVAL")); err == nil && parsed > 0 {
		c.SyncInterval = Duration(parsed)
	}
	if parsed, err := strconv.ParseFloat(os.Getenv("LRCTAP_SEEK_STEP"), 64); err == nil && parsed > 0 {
		c.SeekStep = parsed
	}

	c.LrclibURL = getEnvOrDefault("LRCTAP_LRCLIB_URL", c.LrclibURL)
	c.HistoryDB = getEnvOrDefault("LRCTAP_HISTORY_DB", c.HistoryDB)

	hide := os.Getenv("LRCTAP_HIDE_HEADER")
	if hide == "1" || hide == "true" || hide == "yes" {
		c.HideHeader = true
	}

	c.Transcribe.BaseURL = getEnvOrDefault("LRCTAP_TRANSCRIBE_URL", c.Transcribe.BaseURL)
	c.Transcribe.Model = getEnvOrDefault("LRCTAP_TRANSCRIBE_MODEL", c.Transcribe.Model)
	c.Transcribe.Language = getEnvOrDefault("LRCTAP_TRANSCRIBE_LANGUAGE", c.Transcribe.Language)
}

// TranscribeKey reads the transcription API key. Secrets stay out of the
// config file.
func TranscribeKey() string {
	if key := os.Getenv("LRCTAP_TRANSCRIBE_KEY"); key != "" {
		return key
	}
	return os.Getenv("OPENAI_API_KEY")
}

// FilePath is where Load looks for the yaml file.
func FilePath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "lrctap", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "lrctap", "config.yaml")
}

func defaultHistoryPath() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "lrctap", "history.db")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "history.db"
	}
	return filepath.Join(home, ".local", "share", "lrctap", "history.db")
}

// DebugLogPath resolves LRCTAP_DEBUG into a log file path, empty when
// debug logging is off.
func DebugLogPath() string {
	raw := os.Getenv("LRCTAP_DEBUG")
	switch raw {
	case "":
		return ""
	case "1", "true", "yes":
		return filepath.Join(os.TempDir(), "lrctap-debug.log")
	default:
		return raw
	}
}

func getEnvOrDefault(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
