//go:build integration

package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"

	"telegram-scribe-bot/internal/domain"
	"telegram-scribe-bot/internal/domain/model"
)

func TestUserRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	repo := NewPostgresUserRepo(testPool)
	ctx := context.Background()

	t.Run("upsert creates and then updates in place", func(t *testing.T) {
		cleanup(t)

		first, err := model.NewUserProfile(123456789, "Ada", "Lovelace", "ada", "en")
		if err != nil {
			t.Fatalf("NewUserProfile() failed: %v", err)
		}
		if err := repo.Upsert(ctx, first); err != nil {
			t.Fatalf("Failed to upsert new user: %v", err)
		}

		found, err := repo.FindByTelegramID(ctx, 123456789)
		if err != nil {
			t.Fatalf("Failed to find user: %v", err)
		}
		if found.FirstName != "Ada" || found.Username != "ada" {
			t.Errorf("unexpected row: %+v", found)
		}
		created := found.CreatedAt

		second, _ := model.NewUserProfile(123456789, "Ada", "King", "ada_k", "en")
		if err := repo.Upsert(ctx, second); err != nil {
			t.Fatalf("Failed to upsert existing user: %v", err)
		}

		updated, err := repo.FindByTelegramID(ctx, 123456789)
		if err != nil {
			t.Fatalf("Failed to re-read user: %v", err)
		}
		if updated.LastName != "King" || updated.Username != "ada_k" {
			t.Errorf("update not applied: %+v", updated)
		}
		if !updated.CreatedAt.Equal(created) {
			t.Errorf("created_at changed on update: %v -> %v", created, updated.CreatedAt)
		}
		if !updated.UpdatedAt.After(updated.CreatedAt) {
			t.Errorf("updated_at not advanced: %+v", updated)
		}

		n, err := repo.CountUsers(ctx)
		if err != nil {
			t.Fatalf("CountUsers failed: %v", err)
		}
		if n != 1 {
			t.Errorf("expected 1 user, got %d", n)
		}
	})

	t.Run("concurrent upserts of the same id never conflict", func(t *testing.T) {
		cleanup(t)

		var wg sync.WaitGroup
		errCh := make(chan error, 20)
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				p, _ := model.NewUserProfile(42, "User", "", "", "en")
				errCh <- repo.Upsert(ctx, p)
			}(i)
		}
		wg.Wait()
		close(errCh)
		for err := range errCh {
			if err != nil {
				t.Errorf("concurrent upsert failed: %v", err)
			}
		}

		n, _ := repo.CountUsers(ctx)
		if n != 1 {
			t.Errorf("expected 1 row after concurrent upserts, got %d", n)
		}
	})

	t.Run("missing user maps to not found", func(t *testing.T) {
		cleanup(t)
		_, err := repo.FindByTelegramID(ctx, 999)
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("got %v", err)
		}
	})

	t.Run("zero profile is rejected", func(t *testing.T) {
		err := repo.Upsert(ctx, &model.UserProfile{})
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("got %v", err)
		}
	})
}
