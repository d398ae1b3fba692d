package adapter

import "context"

// Transcript is the raw model output: recognized segments in emission order
// plus detected-language metadata. The language is logged, never interpreted.
type Transcript struct {
	Segments []string
	Language string
}

// SpeechTranscriber is the port for a speech-to-text model. Implementations
// load their model once and share it read-only across concurrent calls; a
// load failure is latched so every later call fails fast with
// domain.ErrModelUnavailable.
//
// Callers own the file at localPath; implementations must not delete it.
type SpeechTranscriber interface {
	Transcribe(ctx context.Context, localPath string) (Transcript, error)
}
