package stt

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sync"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
	"github.com/rs/zerolog"

	"telegram-scribe-bot/internal/domain"
	"telegram-scribe-bot/internal/domain/ports/adapter"
	"telegram-scribe-bot/internal/infra/audio"
)

var _ adapter.SpeechTranscriber = (*WhisperTranscriber)(nil)

// WhisperTranscriber runs a local whisper.cpp model. The model is loaded at
// most once and shared read-only by all jobs; each call gets its own whisper
// context. A load failure is latched so later calls fail fast with
// domain.ErrModelUnavailable instead of retrying the load per request.
type WhisperTranscriber struct {
	modelPath string
	log       *zerolog.Logger

	once    sync.Once
	model   whisper.Model
	loadErr error
}

func NewWhisperTranscriber(modelPath string, logger *zerolog.Logger) *WhisperTranscriber {
	return &WhisperTranscriber{modelPath: modelPath, log: logger}
}

func (t *WhisperTranscriber) load() {
	t.log.Info().Str("model", t.modelPath).Msg("loading whisper model")
	m, err := whisper.New(t.modelPath)
	if err != nil {
		t.loadErr = err
		t.log.Error().Err(err).Str("model", t.modelPath).Msg("whisper model load failed")
		return
	}
	t.model = m
	t.log.Info().Str("model", t.modelPath).Msg("whisper model loaded")
}

func (t *WhisperTranscriber) Close() error {
	if t.model == nil {
		return nil
	}
	return t.model.Close()
}

func (t *WhisperTranscriber) Transcribe(ctx context.Context, localPath string) (adapter.Transcript, error) {
	t.once.Do(t.load)
	if t.loadErr != nil {
		return adapter.Transcript{}, fmt.Errorf("%w: %v", domain.ErrModelUnavailable, t.loadErr)
	}

	pcm, err := audio.DecodePCM16k(ctx, localPath)
	if err != nil {
		return adapter.Transcript{}, fmt.Errorf("decode audio: %w", err)
	}
	if len(pcm) == 0 {
		// nothing to feed the model; treated as silence upstream
		return adapter.Transcript{}, nil
	}

	wctx, err := t.model.NewContext()
	if err != nil {
		return adapter.Transcript{}, fmt.Errorf("whisper context: %w", err)
	}
	if err := wctx.SetLanguage("auto"); err != nil {
		return adapter.Transcript{}, fmt.Errorf("set language: %w", err)
	}
	wctx.SetThreads(uint(runtime.NumCPU()))
	wctx.SetBeamSize(5)

	// Process is one blocking cgo call that cannot observe ctx itself, so it
	// runs on its own goroutine and the deadline is enforced here. On timeout
	// the goroutine is abandoned; the worker slot is freed either way.
	procErr := make(chan error, 1)
	go func() {
		procErr <- wctx.Process(pcm, nil, nil, nil)
	}()
	select {
	case <-ctx.Done():
		return adapter.Transcript{}, fmt.Errorf("whisper process: %w", ctx.Err())
	case err := <-procErr:
		if err != nil {
			return adapter.Transcript{}, fmt.Errorf("whisper process: %w", err)
		}
	}

	var segments []string
	for {
		select {
		case <-ctx.Done():
			return adapter.Transcript{}, ctx.Err()
		default:
		}

		seg, err := wctx.NextSegment()
		if err == io.EOF {
			break
		}
		if err != nil {
			return adapter.Transcript{}, fmt.Errorf("next segment: %w", err)
		}
		segments = append(segments, seg.Text)
	}

	lang := wctx.DetectedLanguage()
	if lang == "" {
		lang = wctx.Language()
	}
	return adapter.Transcript{Segments: segments, Language: lang}, nil
}
