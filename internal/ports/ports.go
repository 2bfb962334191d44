package ports

import (
	"context"
	"time"

	"github.com/AI-Jie01/Whisperboard/internal/domain"
)

// RecordResult is returned when a capture session is finalized.
type RecordResult struct {
	Path     string
	Duration float64 // seconds
}

// RecordSession is a live microphone capture writing to one destination file.
type RecordSession interface {
	// Stop finalizes the capture and reports the measured duration.
	Stop(ctx context.Context) (RecordResult, error)
	// Cancel aborts the capture and discards the partial file.
	Cancel()
}

// AudioRecorder creates capture sessions.
type AudioRecorder interface {
	Start(ctx context.Context, destPath string) (RecordSession, error)
}

// AudioPlayer plays one audio file. Play blocks until playback finishes,
// fails, or ctx is cancelled.
type AudioPlayer interface {
	Play(ctx context.Context, path string) error
}

// MicPermission asks the platform for microphone access.
type MicPermission interface {
	RequestAccess(ctx context.Context) bool
}

// TranscriptionEngine converts one audio file into text using the given
// model. Long-running and blocking; must honor ctx cancellation.
type TranscriptionEngine interface {
	Transcribe(ctx context.Context, audioPath, modelPath string) (string, error)
}

// ModelSelector exposes the currently selected transcription model.
// An absent model means transcription is unavailable.
type ModelSelector interface {
	SelectedModelPath() (string, bool)
	IsLoading() bool
}

// IDGen allocates stable unique recording identifiers.
type IDGen interface {
	NewID() string
}

// Clock supplies the current time; injected so tests are deterministic.
type Clock interface {
	Now() time.Time
}

// Store persists the recording collection and resolves audio payloads.
type Store interface {
	Load(ctx context.Context) ([]domain.Recording, error)
	Save(ctx context.Context, recs []domain.Recording) error
	// Cleanup removes audio files with no collection entry. Best-effort.
	Cleanup(ctx context.Context) error
	// NewRecordingFile allocates a fresh collision-free audio file name.
	NewRecordingFile() string
	// AudioPath resolves a recording's audio file location from its name.
	AudioPath(fileName string) string
}

// StateSink receives the observable state snapshot after every processed
// event. Implementations must not call back into the controller from
// within StateChanged.
type StateSink interface {
	StateChanged(s domain.State)
}
