package usecase

import (
	"context"
	"time"

	"github.com/AI-Jie01/Whisperboard/internal/ports"
)

// activeSession is the single capture slot. It exists only while a
// recording is in progress and is owned exclusively by the controller's
// event loop; no locking needed.
type activeSession struct {
	fileName  string
	startedAt time.Time
	rec       ports.RecordSession

	// starting is true between dispatching the recorder start and the
	// evSessionStarted completion; rec is nil during that window.
	starting bool
	// stopping prevents a second stop while the first is finalizing.
	stopping bool
	// cancelRequested and stopRequested remember intents that arrived
	// while starting; they are acted on once the recorder is up.
	cancelRequested bool
	stopRequested   bool
}

// playbackSlot tracks the one recording allowed to play at a time.
type playbackSlot struct {
	id     string
	cancel context.CancelFunc
}
