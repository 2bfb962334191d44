package audio

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// FFPlayPlayer plays audio files through ffplay. Play blocks until
// playback ends or ctx is cancelled.
type FFPlayPlayer struct {
	command string
}

func NewFFPlayPlayer(command string) *FFPlayPlayer {
	if command == "" {
		command = "ffplay"
	}
	return &FFPlayPlayer{command: command}
}

func (p *FFPlayPlayer) Play(ctx context.Context, path string) error {
	cmd := exec.CommandContext(ctx, p.command,
		"-nodisp",
		"-autoexit",
		"-hide_banner",
		"-loglevel", "error",
		path,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() != nil {
		// Interrupted playback is not a failure.
		return ctx.Err()
	}
	if err != nil {
		if stderr.Len() > 0 {
			return fmt.Errorf("ffplay: %w: %s", err, trimSpace(stderr.String()))
		}
		return fmt.Errorf("ffplay: %w", err)
	}
	return nil
}
