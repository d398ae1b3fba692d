//go:build !integration

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

const minimalConfig = `
bot:
  token: "123:abc"
database:
  url: "postgres://localhost/db"
webapp:
  base_url: "https://example.com/app"
`

func TestLoadConfig(t *testing.T) {
	t.Run("defaults fill in around the required fields", func(t *testing.T) {
		cfg, err := LoadConfig(writeConfig(t, minimalConfig), false)
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Bot.Workers != 8 {
			t.Errorf("workers %d", cfg.Bot.Workers)
		}
		if cfg.Bot.Mode != "polling" {
			t.Errorf("mode %q", cfg.Bot.Mode)
		}
		if cfg.Bot.ChunkLimit != 4000 {
			t.Errorf("chunk limit %d", cfg.Bot.ChunkLimit)
		}
		if cfg.Admin.Port != 9090 {
			t.Errorf("admin port %d", cfg.Admin.Port)
		}
		if cfg.STT.Timeout != 5*time.Minute {
			t.Errorf("stt timeout %v", cfg.STT.Timeout)
		}
		if cfg.Media.ScratchDir == "" {
			t.Error("scratch dir empty")
		}
	})

	t.Run("missing token fails startup", func(t *testing.T) {
		body := `
database:
  url: "postgres://localhost/db"
webapp:
  base_url: "https://example.com/app"
`
		if _, err := LoadConfig(writeConfig(t, body), false); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("missing base url fails startup", func(t *testing.T) {
		body := `
bot:
  token: "123:abc"
database:
  url: "postgres://localhost/db"
`
		if _, err := LoadConfig(writeConfig(t, body), false); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("chunk limit above the transport ceiling is rejected", func(t *testing.T) {
		body := `
bot:
  token: "123:abc"
  chunk_limit: 5000
database:
  url: "postgres://localhost/db"
webapp:
  base_url: "https://example.com/app"
`
		if _, err := LoadConfig(writeConfig(t, body), false); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("dev flag lands in runtime config", func(t *testing.T) {
		cfg, err := LoadConfig(writeConfig(t, minimalConfig), true)
		if err != nil {
			t.Fatal(err)
		}
		if !cfg.Runtime.Dev {
			t.Fatal("dev flag lost")
		}
	})

	t.Run("unreadable path is an error", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), false); err == nil {
			t.Fatal("expected error")
		}
	})
}
