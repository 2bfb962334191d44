package usecase

import (
	"github.com/AI-Jie01/Whisperboard/internal/domain"
	"github.com/AI-Jie01/Whisperboard/internal/ports"
)

// Every state transition enters the controller as one of these events.
// User intents and async completions share the same serial queue, so all
// mutations of the collection, the session slot and the transcription
// flag are totally ordered.
type event any

// User intents.

type evRecordTapped struct{}

type evStopTapped struct{}

type evCancelTapped struct{}

type evDeleteTapped struct{ id string }

type evPlayTapped struct{ id string }

type evRowTapped struct{ id string }

type evRetryTapped struct{ id string }

type evRenameTapped struct {
	id    string
	title string
}

type evDismissAlert struct{}

// Async completions.

type evCollectionLoaded struct {
	recs []domain.Recording
	err  error
}

type evPermissionResolved struct{ granted bool }

type evSessionStarted struct {
	fileName string
	rec      ports.RecordSession
	err      error
}

type evSessionStopped struct {
	fileName string
	result   ports.RecordResult
	err      error
}

type evTranscriptionResolved struct {
	id   string
	text string
	err  error
}

type evPlaybackStarted struct{ id string }

type evPlaybackEnded struct {
	id  string
	err error
}
