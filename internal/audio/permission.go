package audio

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"
)

// ProbePermission answers the microphone permission request by attempting
// a very short capture. Desktop systems have no permission dialog of their
// own; a failing probe means the device is unreachable, which the core
// treats the same as a denial.
type ProbePermission struct {
	cfg Config
}

func NewProbePermission(cfg Config) *ProbePermission {
	return &ProbePermission{cfg: cfg.withDefaults()}
}

func (p *ProbePermission) RequestAccess(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	dest := filepath.Join(os.TempDir(), "whisperboard-probe.wav")
	defer os.Remove(dest)

	cmd := exec.CommandContext(probeCtx, p.cfg.Command,
		"-nostdin",
		"-hide_banner",
		"-loglevel", "error",
		"-f", p.cfg.InputFormat,
		"-i", p.cfg.InputDevice,
		"-t", "0.1",
		"-ac", strconv.Itoa(p.cfg.Channels),
		"-ar", strconv.Itoa(p.cfg.SampleRate),
		"-y",
		dest,
	)
	return cmd.Run() == nil
}
