package model

import (
	"time"

	"github.com/oklog/ulid/v2"
)

type MediaKind string

const (
	MediaAudio MediaKind = "audio"
	MediaVideo MediaKind = "video"
	MediaVoice MediaKind = "voice"
)

type JobStatus string

const (
	JobStatusPending      JobStatus = "pending"
	JobStatusDownloading  JobStatus = "downloading"
	JobStatusTranscribing JobStatus = "transcribing"
	JobStatusDone         JobStatus = "done"
	JobStatusFailed       JobStatus = "failed"
)

// TranscriptionJob tracks one media message from download to reply. Jobs are
// ephemeral: they live on the worker goroutine handling the update and are
// never persisted.
type TranscriptionJob struct {
	ID        string
	FileID    string
	Kind      MediaKind
	LocalPath string
	Status    JobStatus
	CreatedAt time.Time
}

func NewTranscriptionJob(fileID string, kind MediaKind) *TranscriptionJob {
	now := time.Now()
	return &TranscriptionJob{
		ID:        ulid.Make().String(),
		FileID:    fileID,
		Kind:      kind,
		Status:    JobStatusPending,
		CreatedAt: now,
	}
}

// Terminal reports whether the job reached Done or Failed. The scratch file
// must be gone by the time a job is terminal.
func (j *TranscriptionJob) Terminal() bool {
	return j.Status == JobStatusDone || j.Status == JobStatusFailed
}
