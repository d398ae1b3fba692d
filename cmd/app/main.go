package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"telegram-scribe-bot/internal/application"
	"telegram-scribe-bot/internal/config"
	"telegram-scribe-bot/internal/domain/ports/adapter"
	"telegram-scribe-bot/internal/infra/adapters/stt"
	"telegram-scribe-bot/internal/infra/adapters/telegram"
	pg "telegram-scribe-bot/internal/infra/db/postgres"
	adminhttp "telegram-scribe-bot/internal/infra/http"
	"telegram-scribe-bot/internal/infra/logging"
	"telegram-scribe-bot/internal/infra/metrics"
	red "telegram-scribe-bot/internal/infra/redis"
	"telegram-scribe-bot/internal/infra/worker"
	"telegram-scribe-bot/internal/usecase"
)

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "path to config file")
		dev        = flag.Bool("dev", false, "dev mode: console logs, trace level")
	)
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath, *dev)
	if err != nil {
		// no logger yet
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}

	log := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The pool connects lazily: a down database must not keep the bot from
	// starting, writes report their own errors.
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		log.Fatal().Err(err).Msg("database config invalid")
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, log); err != nil {
		log.Warn().Err(err).Msg("migrations not applied, will rely on existing schema")
	}

	userRepo := pg.NewPostgresUserRepo(pool)
	userUC := usecase.NewUserUseCase(userRepo, log)

	var rateLimiter *red.RateLimiter
	if cfg.Redis.URL != "" {
		rcli, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, rate limiting disabled")
		} else {
			defer rcli.Close()
			rateLimiter = red.NewRateLimiter(rcli)
		}
	}

	transcriber := buildTranscriber(cfg, log)

	workerPool := worker.NewPool(cfg.Bot.Workers, log)
	workerPool.Start(ctx)
	defer workerPool.Stop()

	// The fetcher needs the bot client, so the adapter is built first and the
	// transcription usecase wired after it.
	facade := application.NewBotFacade(userUC, nil, workerPool, cfg.WebApp.BaseURL, cfg.Bot.ChunkLimit, log)
	bot, err := telegram.NewRealTelegramBotAdapter(&cfg.Bot, facade, workerPool, rateLimiter, log)
	if err != nil {
		log.Fatal().Err(err).Msg("telegram connection failed")
	}

	fetcher, err := telegram.NewBotFileFetcher(bot.Bot(), cfg.Media.ScratchDir, cfg.Media.DownloadTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("scratch dir unusable")
	}
	facade.TransUC = usecase.NewTranscriptionUseCase(fetcher, transcriber, cfg.STT.Timeout, log)

	admin := adminhttp.NewAdminServer(cfg.Admin.Port, log)
	go func() {
		if err := admin.Start(); err != nil {
			log.Error().Err(err).Msg("admin server stopped")
			stop()
		}
	}()

	if cfg.Bot.Mode != "polling" {
		log.Warn().Str("mode", cfg.Bot.Mode).Msg("unsupported bot mode, falling back to polling")
	}
	go func() {
		if err := bot.StartPolling(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("polling stopped")
			stop()
		}
	}()

	log.Info().Msg("bot started")
	<-ctx.Done()
	log.Info().Msg("shutting down")

	bot.StopPolling()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := admin.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("admin shutdown error")
	}
}

// buildTranscriber picks the speech backend from config: a local model path
// wins, an API key selects the HTTP backend, otherwise a noop stands in and
// transcription is effectively disabled.
func buildTranscriber(cfg *config.Config, log *zerolog.Logger) adapter.SpeechTranscriber {
	if cfg.STT.ModelPath != "" {
		log.Info().Str("model", cfg.STT.ModelPath).Msg("using local whisper model")
		return stt.NewWhisperTranscriber(cfg.STT.ModelPath, log)
	}
	if cfg.STT.APIKey != "" {
		t, err := stt.NewHTTPTranscriber(cfg.STT.APIKey, cfg.STT.BaseURL, cfg.STT.Model)
		if err == nil {
			log.Info().Str("base_url", cfg.STT.BaseURL).Msg("using remote transcription endpoint")
			return t
		}
		log.Warn().Err(err).Msg("remote transcriber misconfigured")
	}
	log.Warn().Msg("no speech backend configured, transcription disabled")
	return stt.NewNoopTranscriber()
}
