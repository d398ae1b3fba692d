package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrConnection means the database was unreachable for a write; the
	// affected operation is skipped and logged, never shown to the user.
	ErrConnection = errors.New("database connection unavailable")

	// Media pipeline errors
	ErrFetchFailed         = errors.New("media download failed")
	ErrFileNotFound        = errors.New("media file not found")
	ErrModelUnavailable    = errors.New("speech model unavailable")
	ErrNoSpeechDetected    = errors.New("no speech detected")
	ErrTranscriptionFailed = errors.New("transcription failed")

	// ErrResponseTooLong means a single chunk still exceeds the transport
	// ceiling. The chunk limit is misconfigured when this fires.
	ErrResponseTooLong = errors.New("response exceeds transport message limit")
)
