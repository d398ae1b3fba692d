package repository

import (
	"context"

	"telegram-scribe-bot/internal/domain/model"
)

// UserRepository persists Telegram user profiles.
//
// Upsert must be idempotent and race-free: two concurrent calls for the same
// TelegramID converge to one row holding the fields of whichever write the
// database ordered last. CreatedAt is set on first insert and never touched
// again.
type UserRepository interface {
	Upsert(ctx context.Context, u *model.UserProfile) error
	FindByTelegramID(ctx context.Context, tgID int64) (*model.UserProfile, error)
	CountUsers(ctx context.Context) (int, error)
}
