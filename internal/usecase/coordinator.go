package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/AI-Jie01/Whisperboard/internal/ports"
)

// Coordinator runs one transcription job: audio file plus model in, text
// out. It is stateless per call; the at-most-one-job invariant lives in
// the controller, which is the only caller.
type Coordinator struct {
	engine ports.TranscriptionEngine
	log    zerolog.Logger
}

func NewCoordinator(engine ports.TranscriptionEngine, log zerolog.Logger) *Coordinator {
	return &Coordinator{engine: engine, log: log.With().Str("component", "transcriber").Logger()}
}

// Transcribe invokes the engine for one recording. Long-running and
// blocking; callers run it off the event loop and feed the result back as
// an event. Cancelling ctx abandons the job cleanly.
func (c *Coordinator) Transcribe(ctx context.Context, id, audioPath, modelPath string) (string, error) {
	c.log.Info().Str("id", id).Str("model", modelPath).Msg("transcription started")
	started := time.Now()
	text, err := c.engine.Transcribe(ctx, audioPath, modelPath)
	if err != nil {
		c.log.Error().Str("id", id).Err(err).Msg("transcription failed")
		return "", err
	}
	c.log.Info().Str("id", id).Dur("elapsed", time.Since(started)).Msg("transcription finished")
	return text, nil
}
