package usecase

import (
	"context"

	"telegram-scribe-bot/internal/domain/model"
	"telegram-scribe-bot/internal/domain/ports/repository"
	"telegram-scribe-bot/internal/infra/logging"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ UserUseCase = (*userUC)(nil)

// UserUseCase exposes the user-registry operations. Upsert runs off the
// reply path: callers submit it to the worker pool and never wait for it.
type UserUseCase interface {
	Upsert(ctx context.Context, profile *model.UserProfile) error
	Count(ctx context.Context) (int, error)
}

type userUC struct {
	users repository.UserRepository
	log   *zerolog.Logger
}

func NewUserUseCase(users repository.UserRepository, logger *zerolog.Logger) *userUC {
	return &userUC{users: users, log: logger}
}

// Upsert converges repeated calls for the same TelegramID to the latest
// field values; the repository's native insert-or-update makes concurrent
// calls race-free.
func (u *userUC) Upsert(ctx context.Context, profile *model.UserProfile) error {
	defer logging.TraceDuration(u.log, "UserUC.Upsert")()
	return u.users.Upsert(ctx, profile)
}

func (u *userUC) Count(ctx context.Context) (int, error) {
	defer logging.TraceDuration(u.log, "UserUC.Count")()
	return u.users.CountUsers(ctx)
}
