//go:build !integration

package application

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"telegram-scribe-bot/internal/domain"
	"telegram-scribe-bot/internal/domain/model"
	"telegram-scribe-bot/internal/infra/worker"
	"telegram-scribe-bot/internal/usecase"
)

type stubUserUC struct {
	upserted atomic.Int64
	err      error
	count    int
}

func (s *stubUserUC) Upsert(ctx context.Context, p *model.UserProfile) error {
	s.upserted.Add(1)
	return s.err
}

func (s *stubUserUC) Count(ctx context.Context) (int, error) { return s.count, nil }

type stubTransUC struct {
	text string
	err  error
}

func (s *stubTransUC) Run(ctx context.Context, fileID string, kind model.MediaKind) (string, error) {
	return s.text, s.err
}

func newTestFacade(t *testing.T, userUC usecase.UserUseCase, transUC usecase.TranscriptionUseCase, chunkLimit int) *BotFacade {
	t.Helper()
	log := zerolog.Nop()
	pool := worker.NewPool(2, &log)
	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)
	t.Cleanup(func() {
		cancel()
		pool.Stop()
	})
	return NewBotFacade(userUC, transUC, pool, "https://example.com/app", chunkLimit, &log)
}

func TestBotFacade_HandleStart(t *testing.T) {
	t.Run("replies immediately and upserts in the background", func(t *testing.T) {
		users := &stubUserUC{}
		f := newTestFacade(t, users, &stubTransUC{}, 4000)

		p, _ := model.NewUserProfile(1, "A", "", "", "")
		if got := f.HandleStart(context.Background(), p); got != MsgGreeting {
			t.Fatalf("got %q", got)
		}

		deadline := time.Now().Add(2 * time.Second)
		for users.upserted.Load() == 0 {
			if time.Now().After(deadline) {
				t.Fatal("upsert never ran")
			}
			time.Sleep(5 * time.Millisecond)
		}
	})

	t.Run("registry failure never blocks the greeting", func(t *testing.T) {
		users := &stubUserUC{err: domain.ErrConnection}
		f := newTestFacade(t, users, &stubTransUC{}, 4000)

		p, _ := model.NewUserProfile(2, "B", "", "", "")
		if got := f.HandleStart(context.Background(), p); got != MsgGreeting {
			t.Fatalf("got %q", got)
		}
	})
}

func TestBotFacade_HandleText(t *testing.T) {
	f := newTestFacade(t, &stubUserUC{}, &stubTransUC{}, 4000)

	t.Run("label truncated, url complete", func(t *testing.T) {
		long := strings.Repeat("x", 60)
		label, url := f.HandleText(long)
		if !strings.Contains(label, "...") {
			t.Fatalf("label not truncated: %q", label)
		}
		if !strings.Contains(url, strings.Repeat("x", 60)) {
			t.Fatal("url lost the full text")
		}
	})

	t.Run("short text keeps full label", func(t *testing.T) {
		label, url := f.HandleText("hi")
		if label != "Open animation for 'hi'" {
			t.Fatalf("got %q", label)
		}
		if url != "https://example.com/app?text=hi" {
			t.Fatalf("got %q", url)
		}
	})
}

func TestBotFacade_HandleMedia(t *testing.T) {
	t.Run("chunks a long transcript", func(t *testing.T) {
		text := strings.Repeat("word ", 40)
		f := newTestFacade(t, &stubUserUC{}, &stubTransUC{text: strings.TrimSpace(text)}, 50)

		chunks, err := f.HandleMedia(context.Background(), "f", model.MediaVoice)
		if err != nil {
			t.Fatal(err)
		}
		if len(chunks) < 2 {
			t.Fatalf("expected multiple chunks, got %d", len(chunks))
		}
		for _, c := range chunks {
			if len([]rune(c)) > 50 {
				t.Fatalf("oversized chunk: %d runes", len([]rune(c)))
			}
		}
	})

	t.Run("pipeline errors pass through", func(t *testing.T) {
		f := newTestFacade(t, &stubUserUC{}, &stubTransUC{err: domain.ErrNoSpeechDetected}, 4000)
		_, err := f.HandleMedia(context.Background(), "f", model.MediaAudio)
		if !errors.Is(err, domain.ErrNoSpeechDetected) {
			t.Fatalf("got %v", err)
		}
	})
}

func TestUserMessage(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{domain.ErrNoSpeechDetected, MsgNoSpeech},
		{domain.ErrModelUnavailable, MsgModelDown},
		{domain.ErrFetchFailed, MsgFetchFailed},
		{domain.ErrTranscriptionFailed, MsgGenericFailure},
		{errors.New("anything else"), MsgGenericFailure},
	}
	for _, c := range cases {
		if got := UserMessage(c.err); got != c.want {
			t.Fatalf("%v: got %q, want %q", c.err, got, c.want)
		}
	}
}
