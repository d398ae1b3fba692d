package stt

import (
	"context"
	"fmt"

	"telegram-scribe-bot/internal/domain"
	"telegram-scribe-bot/internal/domain/ports/adapter"
)

var _ adapter.SpeechTranscriber = (*NoopTranscriber)(nil)

// NoopTranscriber stands in when no speech backend is configured. It reports
// the honest degraded state: users see "transcription unavailable", not a
// bogus "no speech detected".
type NoopTranscriber struct{}

func NewNoopTranscriber() *NoopTranscriber { return &NoopTranscriber{} }

func (n *NoopTranscriber) Transcribe(ctx context.Context, localPath string) (adapter.Transcript, error) {
	if err := ctx.Err(); err != nil {
		return adapter.Transcript{}, err
	}
	return adapter.Transcript{}, fmt.Errorf("%w: no speech backend configured", domain.ErrModelUnavailable)
}
