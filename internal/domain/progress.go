package domain

import (
	"context"
	"time"
)

// ProgressStatus is the lifecycle state of a pipeline run.
type ProgressStatus string

const (
	StatusUploading  ProgressStatus = "uploading"
	StatusProcessing ProgressStatus = "processing"
	StatusComplete   ProgressStatus = "complete"
	StatusError      ProgressStatus = "error"
)

// ProgressError represents an error originating from the progress store.
type ProgressError string

func (e ProgressError) Error() string {
	return string(e)
}

// ErrProgressNotFound is returned when a session is absent or evicted.
const ErrProgressNotFound = ProgressError("progress: session not found")

// ProgressRecord is the session-keyed status snapshot polled by callers
// while a pipeline run is in flight.
type ProgressRecord struct {
	SessionID string         `json:"session_id"`
	Status    ProgressStatus `json:"status"`
	Message   string         `json:"message"`
	Percent   float64        `json:"percent"`
	Completed bool           `json:"completed"`
	Error     string         `json:"error,omitempty"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// ProgressUpdate carries a partial record. Nil fields are left unchanged;
// set fields replace the stored value (last writer wins).
type ProgressUpdate struct {
	Status    *ProgressStatus
	Message   *string
	Percent   *float64
	Completed *bool
	Error     *string
}

// ProgressStore defines the port for the session-keyed progress sink.
// Implementations must serialize same-session updates through a single
// mutation entry point so concurrent writers cannot lose fields.
type ProgressStore interface {
	// Create registers a new record for the session, replacing any existing one.
	Create(ctx context.Context, sessionID string, rec ProgressRecord) error

	// Update shallow-merges the set fields into the session's record.
	// It returns ErrProgressNotFound if the session is absent or evicted.
	Update(ctx context.Context, sessionID string, upd ProgressUpdate) error

	// Get returns the current record for the session.
	// It returns ErrProgressNotFound if the session is absent or evicted.
	Get(ctx context.Context, sessionID string) (*ProgressRecord, error)
}

// Convenience pointer helpers for building ProgressUpdate values.
func StatusPtr(s ProgressStatus) *ProgressStatus { return &s }
func StringPtr(s string) *string                 { return &s }
func Float64Ptr(f float64) *float64              { return &f }
func BoolPtr(b bool) *bool                       { return &b }
