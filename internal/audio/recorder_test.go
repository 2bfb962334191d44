package audio

import (
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg := Config{}.withDefaults()
	assert.Equal(t, "ffmpeg", cfg.Command)
	assert.Equal(t, "pulse", cfg.InputFormat)
	assert.Equal(t, "default", cfg.InputDevice)
	assert.Equal(t, 16000, cfg.SampleRate)
	assert.Equal(t, 1, cfg.Channels)
}

func TestConfigDefaultsKeepExplicitValues(t *testing.T) {
	t.Parallel()

	cfg := Config{
		Command:     "/opt/ffmpeg",
		InputFormat: "alsa",
		InputDevice: "hw:1",
		SampleRate:  44100,
		Channels:    2,
	}.withDefaults()
	assert.Equal(t, "/opt/ffmpeg", cfg.Command)
	assert.Equal(t, "alsa", cfg.InputFormat)
	assert.Equal(t, "hw:1", cfg.InputDevice)
	assert.Equal(t, 44100, cfg.SampleRate)
	assert.Equal(t, 2, cfg.Channels)
}

func TestCaptureArgs(t *testing.T) {
	t.Parallel()

	cfg := Config{InputFormat: "pulse", InputDevice: "default", SampleRate: 16000, Channels: 1}
	args := captureArgs(cfg, "/data/a.wav")

	assert.Equal(t, []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "warning",
		"-f", "pulse",
		"-i", "default",
		"-ac", "1",
		"-ar", "16000",
		"-y",
		"/data/a.wav",
	}, args)
}

func TestNormalizeExitErrIgnoresExitStatus(t *testing.T) {
	t.Parallel()

	assert.NoError(t, normalizeExitErr(nil))
	// ffmpeg exits non-zero after SIGINT; that is a clean shutdown.
	err := runFailingCommand(t)
	assert.NoError(t, normalizeExitErr(err))
}

func runFailingCommand(t *testing.T) error {
	t.Helper()
	err := exec.Command("false").Run()
	require.Error(t, err)
	return err
}
