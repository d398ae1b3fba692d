//go:build !integration

package usecase

import (
	"strings"
	"testing"
	"unicode"
)

func TestChunkText(t *testing.T) {
	t.Run("short text is a single chunk", func(t *testing.T) {
		got := ChunkText("hello world", 4000)
		if len(got) != 1 || got[0] != "hello world" {
			t.Fatalf("got %q", got)
		}
	})

	t.Run("splits on word boundaries", func(t *testing.T) {
		got := ChunkText("aaaa bbbb cccc", 9)
		want := []string{"aaaa", "bbbb", "cccc"}
		if len(got) != len(want) {
			t.Fatalf("got %q, want %q", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("chunk %d: got %q, want %q", i, got[i], want[i])
			}
		}
	})

	t.Run("hard break for a word longer than the limit", func(t *testing.T) {
		got := ChunkText(strings.Repeat("a", 13), 5)
		want := []string{"aaaaa", "aaaaa", "aaa"}
		if len(got) != len(want) {
			t.Fatalf("got %q, want %q", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("chunk %d: got %q, want %q", i, got[i], want[i])
			}
		}
	})

	t.Run("no chunk exceeds the limit", func(t *testing.T) {
		text := strings.Repeat("word word longerword ", 500)
		for _, limit := range []int{10, 50, 4000} {
			for _, c := range ChunkText(text, limit) {
				if n := len([]rune(c)); n > limit {
					t.Fatalf("limit %d: chunk of %d runes", limit, n)
				}
			}
		}
	})

	t.Run("order and content survive chunking", func(t *testing.T) {
		text := "the quick brown fox jumps over the lazy dog"
		chunks := ChunkText(text, 10)
		joined := strings.Join(chunks, " ")
		// collapse runs of whitespace for comparison; chunking trims edges
		normalize := func(s string) string {
			return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
		}
		if normalize(joined) != normalize(text) {
			t.Fatalf("reassembled %q, want %q", joined, text)
		}
	})

	t.Run("no chunk carries edge whitespace", func(t *testing.T) {
		text := "aa  bb  cc " + strings.Repeat("dd ", 20)
		for _, c := range ChunkText(text, 5) {
			if c != strings.TrimSpace(c) {
				t.Fatalf("untrimmed chunk %q", c)
			}
			if c == "" {
				t.Fatal("empty chunk emitted")
			}
		}
	})

	t.Run("multibyte runes count as single characters", func(t *testing.T) {
		text := strings.Repeat("é", 8)
		got := ChunkText(text, 5)
		if len(got) != 2 {
			t.Fatalf("got %d chunks: %q", len(got), got)
		}
		if n := len([]rune(got[0])); n != 5 {
			t.Fatalf("first chunk has %d runes", n)
		}
	})

	t.Run("zero limit returns text unchanged", func(t *testing.T) {
		got := ChunkText("anything", 0)
		if len(got) != 1 || got[0] != "anything" {
			t.Fatalf("got %q", got)
		}
	})
}
