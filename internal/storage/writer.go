package storage

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/AI-Jie01/Whisperboard/internal/domain"
	"github.com/AI-Jie01/Whisperboard/internal/ports"
)

// Writer persists collection snapshots fire-and-forget while keeping the
// durable order equal to the mutation order: a single goroutine drains a
// latest-wins slot, so consecutive snapshots can be coalesced but never
// reordered. Failures are logged, never surfaced.
type Writer struct {
	store ports.Store
	log   zerolog.Logger

	mu      sync.Mutex
	pending []domain.Recording
	dirty   bool
	wake    chan struct{}
	done    chan struct{}
	closed  bool
}

func NewWriter(store ports.Store, log zerolog.Logger) *Writer {
	w := &Writer{
		store: store,
		log:   log.With().Str("component", "writer").Logger(),
		wake:  make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
	go w.run()
	return w
}

// Enqueue schedules a snapshot for persistence. The caller must hand over
// a copy it will not mutate afterwards. Never blocks: an unpersisted older
// snapshot is simply replaced by the newer one.
func (w *Writer) Enqueue(recs []domain.Recording) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.pending = recs
	w.dirty = true
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Close flushes the pending snapshot, if any, and stops the writer.
func (w *Writer) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
	<-w.done
}

func (w *Writer) run() {
	defer close(w.done)
	for {
		<-w.wake

		for {
			w.mu.Lock()
			recs, dirty := w.pending, w.dirty
			w.pending, w.dirty = nil, false
			closed := w.closed
			w.mu.Unlock()

			if !dirty {
				if closed {
					return
				}
				break
			}
			if err := w.store.Save(context.Background(), recs); err != nil {
				w.log.Error().Err(err).Msg("persist failed")
			}
		}
	}
}
