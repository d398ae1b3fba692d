package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"telegram-scribe-bot/internal/domain"
	"telegram-scribe-bot/internal/domain/model"
	"telegram-scribe-bot/internal/domain/ports/adapter"
	"telegram-scribe-bot/internal/infra/logging"
	"telegram-scribe-bot/internal/infra/metrics"
)

// Compile-time check
var _ TranscriptionUseCase = (*transcriptionUC)(nil)

// TranscriptionUseCase drives one media message through
// download -> transcribe -> cleanup. It owns the job state machine and the
// scratch-file lifetime; the speech adapter never deletes files itself.
type TranscriptionUseCase interface {
	Run(ctx context.Context, fileID string, kind model.MediaKind) (string, error)
}

type transcriptionUC struct {
	fetcher adapter.MediaFetcher
	stt     adapter.SpeechTranscriber
	timeout time.Duration
	log     *zerolog.Logger
}

func NewTranscriptionUseCase(fetcher adapter.MediaFetcher, stt adapter.SpeechTranscriber, timeout time.Duration, logger *zerolog.Logger) *transcriptionUC {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &transcriptionUC{fetcher: fetcher, stt: stt, timeout: timeout, log: logger}
}

// Run executes the whole job sequentially: no stage starts before the
// previous one finished. The returned string is the trimmed transcript;
// every failure comes back as one of the domain sentinels.
func (t *transcriptionUC) Run(ctx context.Context, fileID string, kind model.MediaKind) (string, error) {
	job := model.NewTranscriptionJob(fileID, kind)
	ctx = logging.WithJobID(ctx, job.ID)
	log := logging.With(ctx, t.log)
	defer logging.TraceDuration(log, "TranscriptionUC.Run")()

	start := time.Now()
	text, err := t.run(ctx, job, log)
	metrics.ObserveJob(string(kind), outcomeLabel(err), time.Since(start))
	if err != nil {
		job.Status = model.JobStatusFailed
		return "", err
	}
	job.Status = model.JobStatusDone
	return text, nil
}

func (t *transcriptionUC) run(ctx context.Context, job *model.TranscriptionJob, log *zerolog.Logger) (string, error) {
	job.Status = model.JobStatusDownloading
	localPath, err := t.fetcher.Fetch(ctx, job.FileID)
	if err != nil {
		log.Warn().Err(err).Str("file_id", job.FileID).Msg("media download failed")
		return "", fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}
	job.LocalPath = localPath

	job.Status = model.JobStatusTranscribing
	return t.transcribe(ctx, localPath, log)
}

// transcribe invokes the model and unconditionally removes the scratch file
// on every exit path: success, empty result, error, timeout or panic inside
// the model bindings. Removal failure is logged and never changes the
// reported outcome.
func (t *transcriptionUC) transcribe(ctx context.Context, localPath string, log *zerolog.Logger) (text string, err error) {
	defer func() {
		if rmErr := os.Remove(localPath); rmErr != nil && !os.IsNotExist(rmErr) {
			log.Error().Err(rmErr).Str("path", localPath).Msg("scratch file removal failed")
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("path", localPath).Msg("transcription panicked")
			text, err = "", domain.ErrTranscriptionFailed
		}
	}()

	if _, statErr := os.Stat(localPath); statErr != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrFileNotFound, localPath)
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	result, err := t.stt.Transcribe(ctx, localPath)
	if err != nil {
		if errors.Is(err, domain.ErrModelUnavailable) {
			return "", err
		}
		// Full detail stays in the log; the user sees a generic message.
		log.Error().Err(err).Str("path", localPath).Msg("transcription failed")
		return "", domain.ErrTranscriptionFailed
	}

	if result.Language != "" {
		log.Info().Str("language", result.Language).Msg("detected language")
	}

	// Segments concatenate in model emission order; whisper segments carry
	// their own leading spaces.
	joined := strings.TrimSpace(strings.Join(result.Segments, ""))
	if joined == "" {
		return "", domain.ErrNoSpeechDetected
	}
	return joined, nil
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "done"
	case errors.Is(err, domain.ErrNoSpeechDetected):
		return "no_speech"
	case errors.Is(err, domain.ErrModelUnavailable):
		return "model_unavailable"
	case errors.Is(err, domain.ErrFetchFailed):
		return "fetch_failed"
	case errors.Is(err, domain.ErrFileNotFound):
		return "file_not_found"
	default:
		return "failed"
	}
}
