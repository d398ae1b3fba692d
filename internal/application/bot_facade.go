package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"telegram-scribe-bot/internal/domain"
	"telegram-scribe-bot/internal/domain/model"
	"telegram-scribe-bot/internal/infra/metrics"
	"telegram-scribe-bot/internal/infra/worker"
	"telegram-scribe-bot/internal/usecase"
)

// User-visible replies. Each recoverable error class gets its own message;
// internals never leak to the chat.
const (
	MsgGreeting       = "Press the button below to open the animation, or send me any text to animate it."
	MsgTextPrompt     = "Tap the button below to open the animation with your text:"
	MsgMediaPrompt    = "Please send an audio, video or voice message to transcribe."
	MsgMediaReceived  = "Got your %s, processing it. Please wait..."
	MsgBusy           = "I am a bit busy right now, please try again in a moment."
	MsgFetchFailed    = "Sorry, I could not download your file. Please try again."
	MsgNoSpeech       = "Sorry, I could not detect any speech in your file."
	MsgModelDown      = "Sorry, transcription is temporarily unavailable."
	MsgGenericFailure = "Sorry, something went wrong while processing your file."
)

// BotFacade composes usecases into high-level bot operations. The Telegram
// adapter forwards the returned strings to the chat and owns nothing but
// transport concerns.
type BotFacade struct {
	UserUC  usecase.UserUseCase
	TransUC usecase.TranscriptionUseCase

	pool       *worker.Pool
	baseURL    string
	chunkLimit int
	log        *zerolog.Logger
}

func NewBotFacade(
	userUC usecase.UserUseCase,
	transUC usecase.TranscriptionUseCase,
	pool *worker.Pool,
	baseURL string,
	chunkLimit int,
	logger *zerolog.Logger,
) *BotFacade {
	if chunkLimit <= 0 || chunkLimit > usecase.TelegramMessageLimit {
		chunkLimit = 4000
	}
	return &BotFacade{
		UserUC:     userUC,
		TransUC:    transUC,
		pool:       pool,
		baseURL:    baseURL,
		chunkLimit: chunkLimit,
		log:        logger,
	}
}

// HandleStart registers the user without blocking the reply: the upsert is
// detached onto the worker pool and its failure only logged. The greeting
// goes out regardless.
func (b *BotFacade) HandleStart(ctx context.Context, profile *model.UserProfile) string {
	task := func(taskCtx context.Context) error {
		if err := b.UserUC.Upsert(taskCtx, profile); err != nil {
			if errors.Is(err, domain.ErrConnection) {
				metrics.IncUserUpsert("connection_error")
				b.log.Warn().Err(err).Int64("tg_id", profile.TelegramID).Msg("registry unreachable, upsert skipped")
				return nil
			}
			metrics.IncUserUpsert("error")
			return err
		}
		metrics.IncUserUpsert("ok")
		return nil
	}
	if err := b.pool.Submit(task); err != nil {
		b.log.Warn().Err(err).Int64("tg_id", profile.TelegramID).Msg("upsert not enqueued")
	}
	return MsgGreeting
}

// HandleText builds the animation link for a plain text message and a short
// button label. The label truncation never affects the URL.
func (b *BotFacade) HandleText(text string) (label, url string) {
	url = usecase.BuildAnimationLink(b.baseURL, text)
	label = fmt.Sprintf("Open animation for '%s'", usecase.TruncateLabel(text, 25))
	return label, url
}

// BaseLink is the bare web app URL used by the /start button.
func (b *BotFacade) BaseLink() string { return b.baseURL }

// HandleMedia runs the full pipeline for one media message and returns the
// transcript split into transport-safe chunks. Callers run this on a worker,
// never on the dispatch path.
func (b *BotFacade) HandleMedia(ctx context.Context, fileID string, kind model.MediaKind) ([]string, error) {
	text, err := b.TransUC.Run(ctx, fileID, kind)
	if err != nil {
		return nil, err
	}

	chunks := usecase.ChunkText(text, b.chunkLimit)
	for _, c := range chunks {
		if len([]rune(c)) > usecase.TelegramMessageLimit {
			// chunk_limit is misconfigured if this ever fires
			b.log.Error().Int("chunk_limit", b.chunkLimit).Int("chunk_len", len([]rune(c))).
				Msg("chunk exceeds transport ceiling")
			return nil, domain.ErrResponseTooLong
		}
	}
	metrics.ObserveReplyChunks(len(chunks))
	return chunks, nil
}

// HandleStats reports the registry size for admins.
func (b *BotFacade) HandleStats(ctx context.Context) (string, error) {
	n, err := b.UserUC.Count(ctx)
	if err != nil {
		return "", fmt.Errorf("count users: %w", err)
	}
	return fmt.Sprintf("Registered users: %d", n), nil
}

// UserMessage converts a pipeline error into the reply the end user sees.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoSpeechDetected):
		return MsgNoSpeech
	case errors.Is(err, domain.ErrModelUnavailable):
		return MsgModelDown
	case errors.Is(err, domain.ErrFetchFailed):
		return MsgFetchFailed
	default:
		return MsgGenericFailure
	}
}
