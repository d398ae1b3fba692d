package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-scribe-bot/internal/domain"
	"telegram-scribe-bot/internal/domain/model"
	"telegram-scribe-bot/internal/domain/ports/repository"
)

var _ repository.UserRepository = (*PostgresUserRepo)(nil)

type PostgresUserRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresUserRepo(pool *pgxpool.Pool) *PostgresUserRepo {
	return &PostgresUserRepo{pool: pool}
}

// Upsert writes the profile with a native insert-or-update so two concurrent
// calls for the same telegram_id can never produce a duplicate-key failure;
// the row ends up holding whichever write the database ordered last.
// created_at survives every update.
func (r *PostgresUserRepo) Upsert(ctx context.Context, u *model.UserProfile) error {
	if u.IsZero() {
		return domain.ErrInvalidArgument
	}
	const q = `
INSERT INTO users (telegram_id, first_name, last_name, username, language_code, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,now(),now())
ON CONFLICT (telegram_id) DO UPDATE SET
  first_name=EXCLUDED.first_name,
  last_name=EXCLUDED.last_name,
  username=EXCLUDED.username,
  language_code=EXCLUDED.language_code,
  updated_at=now();`
	_, err := r.pool.Exec(ctx, q, u.TelegramID, u.FirstName, u.LastName, u.Username, u.LanguageCode)
	if err != nil {
		if isConnectionError(err) {
			return fmt.Errorf("%w: %v", domain.ErrConnection, err)
		}
		return fmt.Errorf("upsert user %d: %w", u.TelegramID, err)
	}
	return nil
}

func (r *PostgresUserRepo) FindByTelegramID(ctx context.Context, tgID int64) (*model.UserProfile, error) {
	const q = `
SELECT telegram_id, first_name, last_name, username, language_code, created_at, updated_at
  FROM users WHERE telegram_id=$1;`
	var u model.UserProfile
	err := r.pool.QueryRow(ctx, q, tgID).Scan(
		&u.TelegramID, &u.FirstName, &u.LastName, &u.Username, &u.LanguageCode, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		if isConnectionError(err) {
			return nil, fmt.Errorf("%w: %v", domain.ErrConnection, err)
		}
		return nil, err
	}
	return &u, nil
}

func (r *PostgresUserRepo) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users;`).Scan(&n); err != nil {
		if isConnectionError(err) {
			return 0, fmt.Errorf("%w: %v", domain.ErrConnection, err)
		}
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// isConnectionError classifies transport-level failures so callers can tell
// "database unreachable" (skip and log) from a genuine query error.
// SQLSTATE class 08 is "connection exception".
func isConnectionError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, "08")
	}
	// Dial/acquire failures surface as plain net errors from the pool.
	return strings.Contains(err.Error(), "connect") ||
		strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "closed pool")
}
