package whisper

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CLIEngine transcribes audio files by shelling out to whisper.cpp's CLI.
// The engine is a black box to the core: audio path and model path in,
// text or an error out.
type CLIEngine struct {
	command  string // whisper-cli binary
	language string // "" lets whisper auto-detect
	threads  int
}

func NewCLIEngine(command, language string, threads int) *CLIEngine {
	if command == "" {
		command = "whisper-cli"
	}
	return &CLIEngine{command: command, language: language, threads: threads}
}

// transcribeArgs builds the whisper.cpp invocation: no timestamps, no
// progress chatter, plain text on stdout.
func (e *CLIEngine) transcribeArgs(audioPath, modelPath string) []string {
	args := []string{
		"-m", modelPath,
		"-f", audioPath,
		"--no-timestamps",
		"--no-prints",
	}
	if e.language != "" {
		args = append(args, "-l", e.language)
	}
	if e.threads > 0 {
		args = append(args, "-t", fmt.Sprint(e.threads))
	}
	return args
}

func (e *CLIEngine) Transcribe(ctx context.Context, audioPath, modelPath string) (string, error) {
	cmd := exec.CommandContext(ctx, e.command, e.transcribeArgs(audioPath, modelPath)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return "", fmt.Errorf("whisper: %w: %s", err, detail)
		}
		return "", fmt.Errorf("whisper: %w", err)
	}
	return strings.TrimSpace(stdout.String()), nil
}
