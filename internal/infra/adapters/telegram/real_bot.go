package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"telegram-scribe-bot/internal/application"
	"telegram-scribe-bot/internal/config"
	"telegram-scribe-bot/internal/domain/model"
	"telegram-scribe-bot/internal/domain/ports/adapter"
	"telegram-scribe-bot/internal/infra/logging"
	"telegram-scribe-bot/internal/infra/metrics"
	red "telegram-scribe-bot/internal/infra/redis"
	"telegram-scribe-bot/internal/infra/worker"
)

var _ adapter.TelegramBotAdapter = (*RealTelegramBotAdapter)(nil)

// RealTelegramBotAdapter polls updates via tgbotapi and delegates to the
// BotFacade. Updates fan out to a fixed set of dispatch workers; the slow
// operations (upsert, download+transcription) go through the shared pool so
// one long job never delays replies to unrelated chats.
type RealTelegramBotAdapter struct {
	bot         *tgbotapi.BotAPI
	cfg         *config.BotConfig
	facade      *application.BotFacade
	pool        *worker.Pool
	rateLimiter *red.RateLimiter
	log         *zerolog.Logger

	adminIDsMap   map[int64]struct{}
	updateWorkers int
	cancelPolling context.CancelFunc
}

func NewRealTelegramBotAdapter(
	cfg *config.BotConfig,
	facade *application.BotFacade,
	pool *worker.Pool,
	rateLimiter *red.RateLimiter,
	logger *zerolog.Logger,
) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	if facade == nil {
		return nil, errors.New("bot facade is nil")
	}
	if pool == nil {
		return nil, errors.New("worker pool is nil")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}

	adminMap := map[int64]struct{}{}
	for _, id := range cfg.AdminIDs {
		adminMap[id] = struct{}{}
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = 8
	}

	return &RealTelegramBotAdapter{
		bot:           bot,
		cfg:           cfg,
		facade:        facade,
		pool:          pool,
		rateLimiter:   rateLimiter,
		log:           logger,
		adminIDsMap:   adminMap,
		updateWorkers: workers,
	}, nil
}

// Bot exposes the underlying client for the media fetcher.
func (r *RealTelegramBotAdapter) Bot() *tgbotapi.BotAPI { return r.bot }

func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.bot.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	r.cancelPolling = cancel

	var wg sync.WaitGroup
	updateChan := make(chan tgbotapi.Update, 100)

	for i := 0; i < r.updateWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case up := <-updateChan:
					if err := r.handleUpdate(ctx, up); err != nil {
						r.log.Error().Err(err).Int("worker", id).Msg("update handling error")
					}
				}
			}
		}(i)
	}

	for {
		select {
		case <-ctx.Done():
			close(updateChan)
			wg.Wait()
			return ctx.Err()
		case up := <-updates:
			updateChan <- up
		}
	}
}

func (r *RealTelegramBotAdapter) StopPolling() {
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

// handleUpdate routes one update. Every recoverable failure turns into a
// user-facing message here; nothing propagates far enough to kill a worker.
func (r *RealTelegramBotAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	ctx = logging.WithTraceID(ctx, uuid.NewString())

	if update.InlineQuery != nil {
		metrics.IncUpdate("inline")
		return r.handleInlineQuery(update.InlineQuery)
	}

	msg := update.Message
	if msg == nil || msg.From == nil {
		return nil
	}
	tgID := msg.Chat.ID
	ctx = logging.WithTgID(ctx, msg.From.ID)
	log := logging.With(ctx, r.log)

	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			metrics.IncUpdate("start")
			profile, err := model.NewUserProfile(
				msg.From.ID, msg.From.FirstName, msg.From.LastName, msg.From.UserName, msg.From.LanguageCode)
			if err != nil {
				return r.SendMessage(ctx, tgID, application.MsgGreeting)
			}
			text := r.facade.HandleStart(ctx, profile)
			rows := [][]adapter.InlineButton{
				{{Text: "Open animation", URL: r.facade.BaseLink()}},
			}
			return r.SendButtons(ctx, tgID, text, rows)

		case "transcriber":
			metrics.IncUpdate("other")
			return r.SendMessage(ctx, tgID, application.MsgMediaPrompt)

		case "stats":
			metrics.IncUpdate("other")
			if _, ok := r.adminIDsMap[msg.From.ID]; !ok {
				return nil
			}
			text, err := r.facade.HandleStats(ctx)
			if err != nil {
				log.Error().Err(err).Msg("stats failed")
				text = "Failed to get stats."
			}
			return r.SendMessage(ctx, tgID, text)

		case "help":
			metrics.IncUpdate("other")
			reply := "Commands:\n/start - open the animation app\n/transcriber - transcribe audio, video or voice\n\nSend any text to animate it, or any audio/video/voice message to get a transcript."
			return r.SendMessage(ctx, tgID, reply)

		default:
			metrics.IncUpdate("other")
			return r.SendMessage(ctx, tgID, "Unknown command. Try /help.")
		}
	}

	if fileID, kind, ok := mediaPayload(msg); ok {
		metrics.IncUpdate("media")
		return r.handleMedia(ctx, msg, fileID, kind)
	}

	if msg.Text != "" {
		metrics.IncUpdate("text")
		label, url := r.facade.HandleText(msg.Text)
		rows := [][]adapter.InlineButton{
			{{Text: label, URL: url}},
		}
		return r.SendButtons(ctx, tgID, application.MsgTextPrompt, rows)
	}
	return nil
}

// handleMedia acknowledges the message immediately and pushes the pipeline
// onto the worker pool; the acknowledgement is edited in place once the job
// finishes, the way the original status flow works.
func (r *RealTelegramBotAdapter) handleMedia(ctx context.Context, msg *tgbotapi.Message, fileID string, kind model.MediaKind) error {
	tgID := msg.Chat.ID
	log := logging.With(ctx, r.log)

	if r.rateLimiter != nil {
		key := red.UserCommandKey(msg.From.ID, "media")
		allowed, err := r.rateLimiter.Allow(ctx, key, 10, time.Minute)
		if err != nil {
			log.Warn().Err(err).Msg("rate limiter unavailable")
		} else if !allowed {
			return r.SendMessage(ctx, tgID, "Rate limit exceeded. Please try again later.")
		}
	}

	status := tgbotapi.NewMessage(tgID, fmt.Sprintf(application.MsgMediaReceived, kind))
	status.ReplyToMessageID = msg.MessageID
	sent, err := r.bot.Send(status)
	if err != nil {
		return err
	}

	task := func(taskCtx context.Context) error {
		taskCtx = logging.WithTraceID(logging.WithTgID(taskCtx, msg.From.ID), uuid.NewString())
		chunks, err := r.facade.HandleMedia(taskCtx, fileID, kind)
		if err != nil {
			r.editMessage(tgID, sent.MessageID, application.UserMessage(err))
			return nil // reported to the user; nothing further to do
		}
		r.editMessage(tgID, sent.MessageID, "Transcript:\n\n"+chunks[0])
		for _, c := range chunks[1:] {
			if err := r.SendMessage(taskCtx, tgID, c); err != nil {
				return err
			}
		}
		return nil
	}
	if err := r.pool.Submit(task); err != nil {
		log.Warn().Err(err).Msg("transcription job not enqueued")
		r.editMessage(tgID, sent.MessageID, application.MsgBusy)
	}
	return nil
}

func (r *RealTelegramBotAdapter) handleInlineQuery(q *tgbotapi.InlineQuery) error {
	if strings.TrimSpace(q.Query) == "" {
		_, err := r.bot.Request(tgbotapi.InlineConfig{InlineQueryID: q.ID})
		return err
	}

	label, url := r.facade.HandleText(q.Query)
	article := tgbotapi.NewInlineQueryResultArticle(q.ID, label, url)
	article.Description = "Animation link for your text"

	_, err := r.bot.Request(tgbotapi.InlineConfig{
		InlineQueryID: q.ID,
		IsPersonal:    false,
		CacheTime:     60,
		Results:       []interface{}{article},
	})
	return err
}

func (r *RealTelegramBotAdapter) editMessage(tgID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageText(tgID, messageID, text)
	if _, err := r.bot.Send(edit); err != nil {
		r.log.Error().Err(err).Int64("tg_id", tgID).Msg("status edit failed")
	}
}

// SendMessage implements the adapter port.
func (r *RealTelegramBotAdapter) SendMessage(ctx context.Context, tgID int64, text string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	msg := tgbotapi.NewMessage(tgID, text)
	_, err := r.bot.Send(msg)
	return err
}

// SendButtons sends a message with inline buttons. URL opens a plain link,
// Data sends callback data; an empty button falls back to its label.
func (r *RealTelegramBotAdapter) SendButtons(
	ctx context.Context,
	telegramID int64,
	text string,
	rows [][]adapter.InlineButton,
) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	msg := tgbotapi.NewMessage(telegramID, text)
	msg.ReplyMarkup = buildInlineKeyboard(rows)
	_, err := r.bot.Send(msg)
	return err
}

func buildInlineKeyboard(rows [][]adapter.InlineButton) tgbotapi.InlineKeyboardMarkup {
	kbRows := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		kbRow := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			label := strings.TrimSpace(btn.Text)
			if label == "" {
				label = "•"
			}
			var kb tgbotapi.InlineKeyboardButton
			switch {
			case btn.URL != "":
				kb = tgbotapi.NewInlineKeyboardButtonURL(label, btn.URL)
			case btn.Data != "":
				kb = tgbotapi.NewInlineKeyboardButtonData(label, btn.Data)
			default:
				kb = tgbotapi.NewInlineKeyboardButtonData(label, label)
			}
			kbRow = append(kbRow, kb)
		}
		kbRows = append(kbRows, kbRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(kbRows...)
}

// mediaPayload extracts the transferable file handle from a media message.
func mediaPayload(msg *tgbotapi.Message) (fileID string, kind model.MediaKind, ok bool) {
	switch {
	case msg.Audio != nil:
		return msg.Audio.FileID, model.MediaAudio, true
	case msg.Video != nil:
		return msg.Video.FileID, model.MediaVideo, true
	case msg.Voice != nil:
		return msg.Voice.FileID, model.MediaVoice, true
	}
	return "", "", false
}
