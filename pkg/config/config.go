package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	API   APIConfig   `json:"api"`
	Emoji EmojiConfig `json:"emoji"`
	Log   LogConfig   `json:"log"`
}

type APIConfig struct {
	Token          string `env:"GMQ_API_TOKEN"           json:"token"`
	BaseURL        string `env:"GMQ_API_BASE_URL"        json:"base_url"`
	TimeoutSeconds int    `env:"GMQ_API_TIMEOUT_SECONDS" json:"timeout_seconds"`
}

type EmojiConfig struct {
	CatalogURL  string `env:"GMQ_EMOJI_CATALOG_URL"  json:"catalog_url"`
	Resolution  int    `env:"GMQ_EMOJI_RESOLUTION"   json:"resolution"`
	DownloadDir string `env:"GMQ_EMOJI_DOWNLOAD_DIR" json:"download_dir"`
}

type LogConfig struct {
	Level  string `env:"GMQ_LOG_LEVEL"  json:"level"`
	Format string `env:"GMQ_LOG_FORMAT" json:"format"`
}

func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:        "https://api.groupme.com/v3",
			TimeoutSeconds: 30,
		},
		Emoji: EmojiConfig{
			CatalogURL:  "https://powerup.groupme.com/powerups",
			Resolution:  2,
			DownloadDir: "~/.gmq/emoji",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig reads the JSON config at path, then overlays GMQ_* environment
// variables. A .env file in the working directory is loaded first so the
// token can live there instead of the config file. A missing config file is
// not an error; defaults apply.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, cfg.validate()
}

func SaveConfig(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	// Token lives in this file, keep it private.
	return os.WriteFile(path, data, 0o600)
}

func (c *Config) validate() error {
	if c.Emoji.Resolution < 1 || c.Emoji.Resolution > 5 {
		return errors.New("emoji.resolution must be between 1 and 5")
	}
	return nil
}

// EmojiDir returns the emoji download directory with ~ expanded.
func (c *Config) EmojiDir() string {
	return expandHome(c.Emoji.DownloadDir)
}

func expandHome(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		home, _ := os.UserHomeDir()
		if len(path) > 1 && path[1] == '/' {
			return home + path[1:]
		}
		return home
	}
	return path
}
