package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/AI-Jie01/Whisperboard/internal/domain"
	"github.com/AI-Jie01/Whisperboard/internal/ports"
)

// persister receives collection snapshots fire-and-forget after every
// mutation. Implemented by storage.Writer.
type persister interface {
	Enqueue(recs []domain.Recording)
}

// Controller is the root state machine. It owns the recording collection,
// the capture session slot, the single-flight transcription gate and the
// playback slot, and arbitrates every user intent against them.
//
// All mutations happen on one event-loop goroutine: intents and async
// completions enter the same queue, so observable state changes are
// totally ordered and no locking is needed around the state itself.
type Controller struct {
	recorder    ports.AudioRecorder
	player      ports.AudioPlayer
	permission  ports.MicPermission
	coordinator *Coordinator
	selector    ports.ModelSelector
	store       ports.Store
	persist     persister
	idGen       ports.IDGen
	clock       ports.Clock
	sink        ports.StateSink
	log         zerolog.Logger

	events chan event
	cancel context.CancelFunc
	done   chan struct{}

	// Everything below is confined to the event loop.
	state      domain.State
	session    *activeSession
	playback   *playbackSlot
	requesting bool // permission request in flight

	closeOnce sync.Once
}

type Deps struct {
	Recorder   ports.AudioRecorder
	Player     ports.AudioPlayer
	Permission ports.MicPermission
	Engine     ports.TranscriptionEngine
	Selector   ports.ModelSelector
	Store      ports.Store
	Persister  persister
	IDGen      ports.IDGen
	Clock      ports.Clock
	Sink       ports.StateSink
	Log        zerolog.Logger
}

func NewController(d Deps) *Controller {
	return &Controller{
		recorder:    d.Recorder,
		player:      d.Player,
		permission:  d.Permission,
		coordinator: NewCoordinator(d.Engine, d.Log),
		selector:    d.Selector,
		store:       d.Store,
		persist:     d.Persister,
		idGen:       d.IDGen,
		clock:       d.Clock,
		sink:        d.Sink,
		log:         d.Log.With().Str("component", "controller").Logger(),
		events:      make(chan event, 128),
		done:        make(chan struct{}),
		state:       domain.State{Permission: domain.PermissionUndetermined},
	}
}

// Start launches the event loop, triggers orphan cleanup and loads the
// persisted collection.
func (c *Controller) Start(ctx context.Context) {
	loopCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	go c.loop(loopCtx)

	go func() {
		_ = c.store.Cleanup(loopCtx)
		recs, err := c.store.Load(loopCtx)
		c.post(evCollectionLoaded{recs: recs, err: err})
	}()
}

// Close stops the event loop. In-flight work is abandoned; an active
// capture is cancelled and its partial file discarded.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		if c.cancel == nil {
			return
		}
		c.cancel()
		<-c.done
	})
}

// User intents. Each posts an event into the serial queue and returns
// immediately.

func (c *Controller) RecordTapped()                 { c.post(evRecordTapped{}) }
func (c *Controller) StopTapped()                   { c.post(evStopTapped{}) }
func (c *Controller) CancelTapped()                 { c.post(evCancelTapped{}) }
func (c *Controller) DeleteTapped(id string)        { c.post(evDeleteTapped{id: id}) }
func (c *Controller) PlayTapped(id string)          { c.post(evPlayTapped{id: id}) }
func (c *Controller) RowTapped(id string)           { c.post(evRowTapped{id: id}) }
func (c *Controller) RetryTapped(id string)         { c.post(evRetryTapped{id: id}) }
func (c *Controller) RenameTapped(id, title string) { c.post(evRenameTapped{id: id, title: title}) }
func (c *Controller) DismissAlert()                 { c.post(evDismissAlert{}) }

func (c *Controller) post(ev event) {
	select {
	case c.events <- ev:
	case <-c.done:
	}
}

func (c *Controller) loop(ctx context.Context) {
	defer close(c.done)
	for {
		select {
		case <-ctx.Done():
			c.teardown()
			return
		case ev := <-c.events:
			c.apply(ctx, ev)
			c.sink.StateChanged(c.state.Clone())
		}
	}
}

func (c *Controller) teardown() {
	if c.playback != nil {
		c.playback.cancel()
		c.playback = nil
	}
	if c.session != nil && c.session.rec != nil {
		c.session.rec.Cancel()
	}
	c.session = nil
}

func (c *Controller) apply(ctx context.Context, ev event) {
	switch ev := ev.(type) {
	case evCollectionLoaded:
		c.handleCollectionLoaded(ev)
	case evRecordTapped:
		c.handleRecordTapped(ctx)
	case evPermissionResolved:
		c.handlePermissionResolved(ctx, ev)
	case evSessionStarted:
		c.handleSessionStarted(ctx, ev)
	case evStopTapped:
		c.handleStopTapped(ctx)
	case evCancelTapped:
		c.handleCancelTapped()
	case evSessionStopped:
		c.handleSessionStopped(ctx, ev)
	case evDeleteTapped:
		c.handleDeleteTapped(ev.id)
	case evPlayTapped:
		c.handlePlayTapped(ctx, ev.id)
	case evPlaybackStarted:
		c.handlePlaybackStarted(ev.id)
	case evPlaybackEnded:
		c.handlePlaybackEnded(ev)
	case evRowTapped:
		c.handleRowTapped(ctx, ev.id)
	case evRetryTapped:
		c.handleRetryTapped(ctx, ev.id)
	case evTranscriptionResolved:
		c.handleTranscriptionResolved(ev)
	case evRenameTapped:
		c.handleRenameTapped(ev)
	case evDismissAlert:
		c.state.Alert = nil
	}
}

func (c *Controller) handleCollectionLoaded(ev evCollectionLoaded) {
	if ev.err != nil {
		// Recoverable: start with an empty collection, the next write
		// self-heals the blob.
		c.log.Warn().Err(ev.err).Msg("collection load failed, starting empty")
		return
	}
	c.state.Recordings = ev.recs
	c.log.Info().Int("count", len(ev.recs)).Msg("collection loaded")
}

func (c *Controller) handleRecordTapped(ctx context.Context) {
	if c.session != nil {
		c.log.Debug().Msg("record ignored, session already active")
		return
	}
	switch c.state.Permission {
	case domain.PermissionDenied:
		c.alert(domain.AlertPermissionDenied, "Microphone access is required to record. Enable it in system settings.")
	case domain.PermissionAllowed:
		c.beginSession(ctx)
	default:
		if c.requesting {
			return
		}
		c.requesting = true
		go func() {
			granted := c.permission.RequestAccess(ctx)
			c.post(evPermissionResolved{granted: granted})
		}()
	}
}

func (c *Controller) handlePermissionResolved(ctx context.Context, ev evPermissionResolved) {
	c.requesting = false
	if !ev.granted {
		c.state.Permission = domain.PermissionDenied
		c.alert(domain.AlertPermissionDenied, "Microphone access is required to record. Enable it in system settings.")
		return
	}
	c.state.Permission = domain.PermissionAllowed
	c.beginSession(ctx)
}

func (c *Controller) beginSession(ctx context.Context) {
	fileName := c.store.NewRecordingFile()
	c.session = &activeSession{
		fileName:  fileName,
		startedAt: c.clock.Now(),
		starting:  true,
	}
	c.state.Session = &domain.SessionInfo{FileName: fileName, StartedAt: c.session.startedAt}

	destPath := c.store.AudioPath(fileName)
	go func() {
		rec, err := c.recorder.Start(ctx, destPath)
		c.post(evSessionStarted{fileName: fileName, rec: rec, err: err})
	}()
}

func (c *Controller) handleSessionStarted(ctx context.Context, ev evSessionStarted) {
	if c.session == nil || c.session.fileName != ev.fileName {
		// Session was discarded before the recorder came up.
		if ev.rec != nil {
			ev.rec.Cancel()
		}
		return
	}
	if ev.err != nil {
		c.log.Error().Err(ev.err).Msg("capture start failed")
		c.clearSession()
		c.alert(domain.AlertRecordingFailed, "Recording could not be started: "+ev.err.Error())
		return
	}
	c.session.starting = false
	c.session.rec = ev.rec
	if c.session.cancelRequested {
		ev.rec.Cancel()
		c.clearSession()
		return
	}
	c.log.Info().Str("file", ev.fileName).Msg("recording started")
	if c.session.stopRequested {
		c.finishCapture(ctx)
	}
}

func (c *Controller) handleStopTapped(ctx context.Context) {
	if c.session == nil || c.session.stopping {
		return
	}
	if c.session.starting {
		c.session.stopRequested = true
		return
	}
	c.finishCapture(ctx)
}

func (c *Controller) finishCapture(ctx context.Context) {
	c.session.stopping = true
	session := c.session
	go func() {
		result, err := session.rec.Stop(ctx)
		c.post(evSessionStopped{fileName: session.fileName, result: result, err: err})
	}()
}

func (c *Controller) handleCancelTapped() {
	if c.session == nil || c.session.stopping {
		return
	}
	if c.session.starting {
		c.session.cancelRequested = true
		return
	}
	c.session.rec.Cancel()
	c.clearSession()
	c.log.Info().Msg("recording cancelled")
}

func (c *Controller) handleSessionStopped(ctx context.Context, ev evSessionStopped) {
	if c.session == nil || c.session.fileName != ev.fileName {
		return
	}
	session := c.session
	c.clearSession()

	if ev.err != nil {
		c.log.Error().Err(ev.err).Msg("capture failed")
		c.alert(domain.AlertRecordingFailed, "Recording failed: "+ev.err.Error())
		return
	}

	rec := domain.Recording{
		ID:           c.idGen.NewID(),
		FileName:     session.fileName,
		Title:        domain.DefaultTitle,
		Date:         session.startedAt,
		Duration:     ev.result.Duration,
		PlaybackMode: domain.PlaybackNotPlaying,
	}
	c.state.Recordings = append([]domain.Recording{rec}, c.state.Recordings...)
	c.persistCollection()
	c.log.Info().Str("id", rec.ID).Float64("duration", rec.Duration).Msg("recording finished")

	c.enqueueTranscription(ctx, rec.ID)
}

func (c *Controller) clearSession() {
	c.session = nil
	c.state.Session = nil
}

func (c *Controller) handleDeleteTapped(id string) {
	idx := -1
	for i := range c.state.Recordings {
		if c.state.Recordings[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	if c.playback != nil && c.playback.id == id {
		c.playback.cancel()
		c.playback = nil
	}
	if c.state.ExpandedID == id {
		c.state.ExpandedID = ""
	}
	c.state.Recordings = append(c.state.Recordings[:idx], c.state.Recordings[idx+1:]...)
	c.persistCollection()
}

func (c *Controller) handlePlayTapped(ctx context.Context, id string) {
	rec := c.state.Recording(id)
	if rec == nil {
		return
	}
	if rec.PlaybackMode == domain.PlaybackPlaying {
		// Tapping the playing row stops it.
		if c.playback != nil && c.playback.id == id {
			c.playback.cancel()
		}
		return
	}

	// Mutual exclusion: every other recording stops playing. The tapped
	// one turns "playing" only once the player reports it started.
	if c.playback != nil {
		c.playback.cancel()
		c.playback = nil
	}
	for i := range c.state.Recordings {
		if c.state.Recordings[i].ID != id {
			c.state.Recordings[i].PlaybackMode = domain.PlaybackNotPlaying
		}
	}

	playCtx, cancel := context.WithCancel(ctx)
	c.playback = &playbackSlot{id: id, cancel: cancel}
	path := c.store.AudioPath(rec.FileName)
	go func() {
		c.post(evPlaybackStarted{id: id})
		err := c.player.Play(playCtx, path)
		c.post(evPlaybackEnded{id: id, err: err})
	}()
}

func (c *Controller) handlePlaybackStarted(id string) {
	if c.playback == nil || c.playback.id != id {
		return
	}
	if rec := c.state.Recording(id); rec != nil {
		rec.PlaybackMode = domain.PlaybackPlaying
	}
}

func (c *Controller) handlePlaybackEnded(ev evPlaybackEnded) {
	if rec := c.state.Recording(ev.id); rec != nil {
		rec.PlaybackMode = domain.PlaybackNotPlaying
	}
	if c.playback != nil && c.playback.id == ev.id {
		c.playback.cancel()
		c.playback = nil
	}
	if ev.err != nil && !errors.Is(ev.err, context.Canceled) {
		c.log.Error().Err(ev.err).Str("id", ev.id).Msg("playback failed")
		c.alert(domain.AlertPlaybackFailed, "Playback failed: "+ev.err.Error())
	}
}

func (c *Controller) handleRowTapped(ctx context.Context, id string) {
	if c.state.TranscribingID != "" {
		// Row taps are inert while a transcription runs.
		return
	}
	rec := c.state.Recording(id)
	if rec == nil {
		return
	}
	if !rec.IsTranscribed {
		c.enqueueTranscription(ctx, id)
		return
	}
	if c.state.ExpandedID == id {
		c.state.ExpandedID = ""
	} else {
		c.state.ExpandedID = id
	}
}

func (c *Controller) handleRetryTapped(ctx context.Context, id string) {
	if c.state.Recording(id) == nil {
		return
	}
	c.enqueueTranscription(ctx, id)
}

// enqueueTranscription starts a job for id if the single-flight gate is
// open and a model is resolved. Otherwise the request is dropped, never
// queued; the user re-triggers once the in-flight job resolves.
func (c *Controller) enqueueTranscription(ctx context.Context, id string) {
	if c.state.TranscribingID != "" {
		c.log.Debug().Str("id", id).Str("running", c.state.TranscribingID).Msg("transcription request dropped, job in flight")
		return
	}
	modelPath, ok := c.selector.SelectedModelPath()
	if !ok {
		c.log.Debug().Str("id", id).Msg("transcription request dropped, no model selected")
		return
	}
	rec := c.state.Recording(id)
	if rec == nil {
		return
	}

	c.state.TranscribingID = id
	audioPath := c.store.AudioPath(rec.FileName)
	go func() {
		text, err := c.coordinator.Transcribe(ctx, id, audioPath, modelPath)
		c.post(evTranscriptionResolved{id: id, text: text, err: err})
	}()
}

func (c *Controller) handleTranscriptionResolved(ev evTranscriptionResolved) {
	c.state.TranscribingID = ""
	if ev.err != nil {
		c.alert(domain.AlertTranscriptionFailed, "Transcription failed: "+ev.err.Error())
		return
	}
	rec := c.state.Recording(ev.id)
	if rec == nil {
		// Deleted while the job ran; nothing to update.
		return
	}
	rec.Transcript = ev.text
	rec.IsTranscribed = true
	c.state.ExpandedID = ev.id
	c.persistCollection()
}

func (c *Controller) handleRenameTapped(ev evRenameTapped) {
	title := strings.TrimSpace(ev.title)
	if title == "" {
		return
	}
	rec := c.state.Recording(ev.id)
	if rec == nil {
		return
	}
	rec.Title = title
	c.persistCollection()
}

func (c *Controller) alert(kind domain.AlertKind, message string) {
	// Last write wins: a new alert replaces a visible one.
	c.state.Alert = &domain.Alert{Kind: kind, Message: message}
}

func (c *Controller) persistCollection() {
	c.persist.Enqueue(append([]domain.Recording(nil), c.state.Recordings...))
}
