//go:build !integration

package usecase

import (
	"context"
	"sync"

	"telegram-scribe-bot/internal/domain"
	"telegram-scribe-bot/internal/domain/model"
	"telegram-scribe-bot/internal/domain/ports/adapter"
)

// Function-field mocks: each test overrides only the calls it cares about.

type mockUserRepo struct {
	mu    sync.Mutex
	users map[int64]*model.UserProfile

	UpsertFunc func(ctx context.Context, p *model.UserProfile) error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: map[int64]*model.UserProfile{}}
}

func (m *mockUserRepo) Upsert(ctx context.Context, p *model.UserProfile) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, p)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.users[p.TelegramID] = &cp
	return nil
}

func (m *mockUserRepo) FindByTelegramID(ctx context.Context, tgID int64) (*model.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.users[tgID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockUserRepo) CountUsers(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users), nil
}

type mockFetcher struct {
	FetchFunc func(ctx context.Context, fileID string) (string, error)
}

func (m *mockFetcher) Fetch(ctx context.Context, fileID string) (string, error) {
	return m.FetchFunc(ctx, fileID)
}

type mockTranscriber struct {
	TranscribeFunc func(ctx context.Context, localPath string) (adapter.Transcript, error)
}

func (m *mockTranscriber) Transcribe(ctx context.Context, localPath string) (adapter.Transcript, error) {
	return m.TranscribeFunc(ctx, localPath)
}
