package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/oklog/ulid/v2"

	"telegram-scribe-bot/internal/domain/ports/adapter"
)

var _ adapter.MediaFetcher = (*BotFileFetcher)(nil)

// BotFileFetcher resolves a Telegram file handle and downloads the bytes to
// a scratch path unique to the job, so concurrent downloads never collide.
type BotFileFetcher struct {
	bot        *tgbotapi.BotAPI
	scratchDir string
	client     *http.Client
}

func NewBotFileFetcher(bot *tgbotapi.BotAPI, scratchDir string, timeout time.Duration) (*BotFileFetcher, error) {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	// A missing scratch dir is a deployment problem; surface it at startup
	// instead of failing every job.
	if err := os.MkdirAll(scratchDir, 0o755); err != nil {
		return nil, fmt.Errorf("create scratch dir %s: %w", scratchDir, err)
	}
	return &BotFileFetcher{
		bot:        bot,
		scratchDir: scratchDir,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 15 * time.Second,
			},
		},
	}, nil
}

func (f *BotFileFetcher) Fetch(ctx context.Context, fileID string) (string, error) {
	file, err := f.bot.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return "", fmt.Errorf("resolve file handle: %w", err)
	}

	localPath := filepath.Join(f.scratchDir, scratchName(fileID, file.FilePath))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(f.bot.Token), nil)
	if err != nil {
		return "", err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download: http %d", resp.StatusCode)
	}

	out, err := os.Create(localPath)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		_ = os.Remove(localPath) // no partial files left behind
		return "", fmt.Errorf("write scratch file: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(localPath)
		return "", err
	}
	return localPath, nil
}

// scratchName derives a collision-free file name from the handle plus a
// ULID, keeping the remote extension so decoders can sniff the format.
func scratchName(fileID, remotePath string) string {
	ext := filepath.Ext(remotePath)
	if ext == "" {
		ext = ".bin"
	}
	var b strings.Builder
	for _, r := range fileID {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
	}
	return fmt.Sprintf("%s-%s%s", b.String(), ulid.Make().String(), ext)
}
