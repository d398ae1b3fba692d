package usecase

import (
	"strings"
	"unicode"
)

// TelegramMessageLimit is the transport's hard ceiling for one message.
// The configured chunk limit must stay below it.
const TelegramMessageLimit = 4096

// ChunkText splits text into transport-size-safe pieces, preserving word
// boundaries where possible. Text that fits comes back as a single chunk.
// Otherwise each cut happens at the last whitespace inside the limit window;
// a window without whitespace gets a hard break at exactly limit runes.
// Chunks are trimmed, ordered and fully materialized.
func ChunkText(text string, limit int) []string {
	runes := []rune(text)
	if limit <= 0 || len(runes) <= limit {
		return []string{text}
	}

	var chunks []string
	appendChunk := func(rs []rune) {
		if s := strings.TrimSpace(string(rs)); s != "" {
			chunks = append(chunks, s)
		}
	}

	rest := runes
	for len(rest) > limit {
		cut := -1
		for i := limit - 1; i >= 0; i-- {
			if unicode.IsSpace(rest[i]) {
				cut = i
				break
			}
		}
		if cut <= 0 {
			// no usable whitespace in the window: hard break
			appendChunk(rest[:limit])
			rest = rest[limit:]
			continue
		}
		appendChunk(rest[:cut])
		// the separator stays on the remainder so short tails keep
		// splitting on word boundaries; emitted chunks are trimmed, so
		// no chunk ever carries the whitespace
		rest = rest[cut:]
	}
	appendChunk(rest)
	return chunks
}
