//go:build !integration

package telegram

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewBotFileFetcher(t *testing.T) {
	t.Run("creates a missing scratch dir", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "scratch")
		if _, err := NewBotFileFetcher(nil, dir, 0); err != nil {
			t.Fatal(err)
		}
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("scratch dir not created: %v", err)
		}
	})

	t.Run("unusable scratch dir fails construction", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "occupied")
		if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := NewBotFileFetcher(nil, filepath.Join(file, "sub"), 0); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestScratchName(t *testing.T) {
	t.Run("keeps the remote extension", func(t *testing.T) {
		name := scratchName("AgAD-file_1", "voice/file_42.oga")
		if filepath.Ext(name) != ".oga" {
			t.Fatalf("got %q", name)
		}
	})

	t.Run("defaults to .bin without one", func(t *testing.T) {
		name := scratchName("AgAD", "documents/file_7")
		if filepath.Ext(name) != ".bin" {
			t.Fatalf("got %q", name)
		}
	})

	t.Run("sanitizes the file handle", func(t *testing.T) {
		name := scratchName("a/b\\c:d", "x.mp3")
		if strings.ContainsAny(name, "/\\:") {
			t.Fatalf("unsafe characters in %q", name)
		}
	})

	t.Run("concurrent jobs never collide", func(t *testing.T) {
		a := scratchName("same-id", "f.oga")
		b := scratchName("same-id", "f.oga")
		if a == b {
			t.Fatalf("duplicate scratch name %q", a)
		}
	})
}
