package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/AI-Jie01/Whisperboard/internal/ports"
)

// Config describes how the microphone should be captured.
type Config struct {
	Command     string // ffmpeg binary
	InputFormat string // e.g. pulse, alsa, avfoundation
	InputDevice string
	SampleRate  int
	Channels    int
}

func (c Config) withDefaults() Config {
	if c.Command == "" {
		c.Command = "ffmpeg"
	}
	if c.InputFormat == "" {
		c.InputFormat = "pulse"
	}
	if c.InputDevice == "" {
		c.InputDevice = "default"
	}
	if c.SampleRate <= 0 {
		c.SampleRate = 16000
	}
	if c.Channels <= 0 {
		c.Channels = 1
	}
	return c
}

// FFMPEGRecorder captures microphone audio into a WAV file using ffmpeg.
type FFMPEGRecorder struct {
	cfg Config
}

func NewFFMPEGRecorder(cfg Config) *FFMPEGRecorder {
	return &FFMPEGRecorder{cfg: cfg.withDefaults()}
}

// captureArgs builds the ffmpeg invocation for recording to destPath.
func captureArgs(cfg Config, destPath string) []string {
	return []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "warning",
		"-f", cfg.InputFormat,
		"-i", cfg.InputDevice,
		"-ac", strconv.Itoa(cfg.Channels),
		"-ar", strconv.Itoa(cfg.SampleRate),
		"-y",
		destPath,
	}
}

func (r *FFMPEGRecorder) Start(ctx context.Context, destPath string) (ports.RecordSession, error) {
	cmd := exec.CommandContext(ctx, r.cfg.Command, captureArgs(r.cfg, destPath)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- cmd.Wait()
		close(waitErr)
	}()

	// Give ffmpeg a moment to open the device; an early exit means the
	// device is unavailable.
	select {
	case err := <-waitErr:
		if err != nil {
			return nil, fmt.Errorf("ffmpeg exited before capture started: %w: %s", err, trimSpace(stderr.String()))
		}
		return nil, errors.New("ffmpeg exited before capture started")
	case <-time.After(250 * time.Millisecond):
	}

	return &captureSession{
		destPath:  destPath,
		startedAt: time.Now(),
		stderr:    &stderr,
		process:   cmd.Process,
		waitErr:   waitErr,
	}, nil
}

type captureSession struct {
	destPath  string
	startedAt time.Time
	stderr    *bytes.Buffer

	process *os.Process
	waitErr <-chan error

	endOnce sync.Once
	endErr  error
}

// Stop finalizes the capture and returns the measured duration. Once a
// capture started, Stop is best-effort: the WAV header is finalized by
// ffmpeg on SIGINT.
func (s *captureSession) Stop(_ context.Context) (ports.RecordResult, error) {
	s.end(false)
	duration := time.Since(s.startedAt).Seconds()
	if s.endErr != nil {
		return ports.RecordResult{}, s.endErr
	}
	if _, err := os.Stat(s.destPath); err != nil {
		return ports.RecordResult{}, fmt.Errorf("capture produced no file: %w", err)
	}
	return ports.RecordResult{Path: s.destPath, Duration: duration}, nil
}

// Cancel aborts the capture and removes the partial file.
func (s *captureSession) Cancel() {
	s.end(true)
	_ = os.Remove(s.destPath)
}

func (s *captureSession) end(kill bool) {
	s.endOnce.Do(func() {
		if s.process != nil {
			if kill {
				_ = s.process.Kill()
			} else {
				_ = s.process.Signal(os.Interrupt)
			}
		}

		select {
		case err, ok := <-s.waitErr:
			if ok {
				s.endErr = normalizeExitErr(err)
			}
		case <-time.After(1200 * time.Millisecond):
			if s.process != nil {
				_ = s.process.Kill()
			}
			err, ok := <-s.waitErr
			if ok {
				s.endErr = normalizeExitErr(err)
			}
		}

		if kill {
			s.endErr = nil
			return
		}
		if s.endErr != nil && s.stderr != nil && s.stderr.Len() > 0 {
			s.endErr = fmt.Errorf("%w: %s", s.endErr, trimSpace(s.stderr.String()))
		}
	})
}

// normalizeExitErr drops the exit status ffmpeg reports when interrupted;
// a clean SIGINT shutdown is not a capture failure.
func normalizeExitErr(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}

func trimSpace(input string) string {
	return string(bytes.TrimSpace([]byte(input)))
}
