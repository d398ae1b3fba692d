package model

import (
	"time"

	"telegram-scribe-bot/internal/domain"
)

// UserProfile is a domain entity mirroring the profile Telegram attaches to
// every update. TelegramID is the stable identity; everything else is
// mutable and overwritten on each upsert.
type UserProfile struct {
	TelegramID   int64
	FirstName    string
	LastName     string
	Username     string
	LanguageCode string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func NewUserProfile(tgID int64, firstName, lastName, username, languageCode string) (*UserProfile, error) {
	if tgID <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &UserProfile{
		TelegramID:   tgID,
		FirstName:    firstName,
		LastName:     lastName,
		Username:     username,
		LanguageCode: languageCode,
	}, nil
}

func (u *UserProfile) IsZero() bool { return u == nil || u.TelegramID == 0 }
