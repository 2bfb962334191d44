package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/AI-Jie01/Whisperboard/internal/bootstrap"
	"github.com/AI-Jie01/Whisperboard/internal/domain"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "whisperboard",
		Short: "Local voice memos with offline whisper transcription",
	}

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(modelsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// shell is a minimal rendering layer: it holds the latest state snapshot
// and dispatches line commands as intents. All behavior lives in the core.
type shell struct {
	mu    sync.Mutex
	state domain.State
}

func (s *shell) StateChanged(state domain.State) {
	s.mu.Lock()
	prevAlert := s.state.Alert
	s.state = state
	s.mu.Unlock()

	if state.Alert != nil && (prevAlert == nil || *prevAlert != *state.Alert) {
		fmt.Printf("! %s\n", state.Alert.Message)
	}
}

func (s *shell) snapshot() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// idAt resolves a 1-based list index to a recording id.
func (s *shell) idAt(arg string) (string, bool) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return "", false
	}
	state := s.snapshot()
	if n < 1 || n > len(state.Recordings) {
		return "", false
	}
	return state.Recordings[n-1].ID, true
}

func (s *shell) printList() {
	state := s.snapshot()
	if len(state.Recordings) == 0 {
		fmt.Println("no recordings")
		return
	}
	for i, r := range state.Recordings {
		marks := ""
		if r.PlaybackMode == domain.PlaybackPlaying {
			marks += " [playing]"
		}
		if state.TranscribingID == r.ID {
			marks += " [transcribing]"
		}
		fmt.Printf("%2d. %s  %s  %.1fs%s\n", i+1, r.Title, r.Date.Format(time.DateTime), r.Duration, marks)
		if r.IsTranscribed && state.ExpandedID == r.ID {
			fmt.Printf("    %s\n", r.Transcript)
		}
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the interactive recorder shell",
		RunE: func(cmd *cobra.Command, args []string) error {
			sh := &shell{}
			services, err := bootstrap.Build(sh)
			if err != nil {
				return err
			}
			ctrl := services.Controller
			ctrl.Start(cmd.Context())
			defer func() {
				ctrl.Close()
				services.Writer.Close()
			}()

			fmt.Println("commands: record stop cancel ls play N tap N retry N rename N TITLE delete N dismiss quit")
			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				fields := strings.Fields(scanner.Text())
				if len(fields) == 0 {
					continue
				}
				cmdName, rest := fields[0], fields[1:]
				switch cmdName {
				case "record":
					ctrl.RecordTapped()
				case "stop":
					ctrl.StopTapped()
				case "cancel":
					ctrl.CancelTapped()
				case "ls":
					sh.printList()
				case "play", "tap", "retry", "delete", "rename":
					if len(rest) == 0 {
						fmt.Println("usage:", cmdName, "N")
						continue
					}
					id, ok := sh.idAt(rest[0])
					if !ok {
						fmt.Println("no such recording:", rest[0])
						continue
					}
					switch cmdName {
					case "play":
						ctrl.PlayTapped(id)
					case "tap":
						ctrl.RowTapped(id)
					case "retry":
						ctrl.RetryTapped(id)
					case "delete":
						ctrl.DeleteTapped(id)
					case "rename":
						if len(rest) < 2 {
							fmt.Println("usage: rename N TITLE")
							continue
						}
						ctrl.RenameTapped(id, strings.Join(rest[1:], " "))
					}
				case "dismiss":
					ctrl.DismissAlert()
				case "quit", "exit":
					return nil
				default:
					fmt.Println("unknown command:", cmdName)
				}
			}
			return scanner.Err()
		},
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the persisted recording collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := bootstrap.Build(nopSink{})
			if err != nil {
				return err
			}
			defer services.Writer.Close()

			recs, err := services.Store.Load(context.Background())
			if err != nil {
				fmt.Println("no recordings")
				return nil
			}
			for i, r := range recs {
				status := "untranscribed"
				if r.IsTranscribed {
					status = "transcribed"
				}
				fmt.Printf("%2d. %s  %s  %.1fs  %s\n", i+1, r.Title, r.Date.Format(time.DateTime), r.Duration, status)
			}
			return nil
		},
	}
}

func modelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List transcription models found on disk",
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := bootstrap.Build(nopSink{})
			if err != nil {
				return err
			}
			defer services.Writer.Close()

			selected := services.Config.Whisper.Model
			for _, name := range services.Selector.Available() {
				mark := " "
				if name == selected {
					mark = "*"
				}
				fmt.Printf("%s %s\n", mark, name)
			}
			return nil
		},
	}
}

type nopSink struct{}

func (nopSink) StateChanged(domain.State) {}
