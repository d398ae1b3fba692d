package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token    string  `yaml:"token"`
	Mode     string  `yaml:"mode"` // polling | webhook (future)
	Workers  int     `yaml:"workers"`
	AdminIDs []int64 `yaml:"admin_ids"`
	// ChunkLimit must stay below Telegram's 4096-character message ceiling
	// to leave margin for formatting.
	ChunkLimit int `yaml:"chunk_limit"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AdminConfig struct {
	Port int `yaml:"port"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string `yaml:"url"` // optional; empty disables rate limiting
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type WebAppConfig struct {
	BaseURL string `yaml:"base_url"`
}

type MediaConfig struct {
	ScratchDir      string        `yaml:"scratch_dir"`
	DownloadTimeout time.Duration `yaml:"download_timeout"`
}

type STTConfig struct {
	// ModelPath selects the local whisper.cpp backend.
	ModelPath string `yaml:"model_path"`
	// APIKey/BaseURL select an OpenAI-compatible transcription endpoint
	// when no local model is configured.
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

type Config struct {
	Bot      BotConfig      `yaml:"bot"`
	Log      LogConfig      `yaml:"log"`
	Admin    AdminConfig    `yaml:"admin"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	WebApp   WebAppConfig   `yaml:"webapp"`
	Media    MediaConfig    `yaml:"media"`
	STT      STTConfig      `yaml:"stt"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Bot.Mode == "" {
		cfg.Bot.Mode = "polling"
	}
	if cfg.Bot.ChunkLimit <= 0 {
		cfg.Bot.ChunkLimit = 4000
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Admin.Port == 0 {
		cfg.Admin.Port = 9090
	}
	if cfg.Media.ScratchDir == "" {
		cfg.Media.ScratchDir = os.TempDir()
	}
	if cfg.Media.DownloadTimeout <= 0 {
		cfg.Media.DownloadTimeout = 60 * time.Second
	}
	if cfg.STT.Timeout <= 0 {
		cfg.STT.Timeout = 5 * time.Minute
	}
	if cfg.STT.Model == "" {
		cfg.STT.Model = "whisper-1"
	}
	if cfg.STT.BaseURL == "" {
		cfg.STT.BaseURL = "https://api.openai.com/v1"
	}

	// Minimal validation: missing required configuration is a startup
	// failure, never a runtime one.
	if cfg.Bot.Token == "" {
		return nil, errors.New("bot.token is required")
	}
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.WebApp.BaseURL == "" {
		return nil, errors.New("webapp.base_url is required")
	}
	if cfg.Bot.ChunkLimit > 4096 {
		return nil, fmt.Errorf("bot.chunk_limit %d exceeds the Telegram message ceiling", cfg.Bot.ChunkLimit)
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
