package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-comet/internal/application/inspector"
	"github.com/penwyp/go-comet/internal/core/model"
	"github.com/penwyp/go-comet/internal/core/timeline"
	"github.com/penwyp/go-comet/internal/data/capture"
	"github.com/penwyp/go-comet/internal/presentation/display"
	"github.com/penwyp/go-comet/internal/presentation/formatter"
	"github.com/penwyp/go-comet/internal/presentation/interaction"
	"github.com/penwyp/go-comet/internal/util"
)

var (
	replayOutput string
	replayAt     uint64
	replayFollow bool
	replayWidth  int
)

var replayCmd = &cobra.Command{
	Use:   "replay <capture>",
	Short: "Inspect a recorded capture",
	Long: `Loads a capture written by "listen --record" into a timeline.

By default a report of the chosen board is printed at the newest event, or at
the event index given by --at. With --follow the capture is opened in the
dashboard and newly appended events keep arriving as if live.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
	addInspectorFlags(replayCmd.Flags(), false)

	replayCmd.Flags().StringVarP(&replayOutput, "output", "o", "table",
		"Output format (table, json, csv)")
	replayCmd.Flags().Uint64Var(&replayAt, "at", 0,
		"Pause at this event index instead of the newest event")
	replayCmd.Flags().BoolVarP(&replayFollow, "follow", "f", false,
		"Open the dashboard and follow appended events")
	replayCmd.Flags().IntVar(&replayWidth, "width", 80,
		"Chart width in cells used to size the report")
}

func runReplay(cmd *cobra.Command, args []string) error {
	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := initLogging(config); err != nil {
		return err
	}

	path := expandPath(args[0])
	if replayFollow {
		return followCapture(config, path)
	}

	f, err := formatter.NewFormatter(replayOutput)
	if err != nil {
		return err
	}

	loaded, err := capture.ReadFile(path)
	if err != nil {
		return err
	}
	if loaded.Skipped > 0 {
		util.LogWarn("skipped undecodable capture lines", util.F("path", path), util.F("skipped", loaded.Skipped))
	}

	orchestrator, err := inspector.NewOrchestrator(config, inspector.Options{Status: model.StatusReplay})
	if err != nil {
		return err
	}
	for _, event := range loaded.Events {
		orchestrator.Ingest(event)
	}
	if cmd.Flags().Changed("at") {
		orchestrator.SetPlayhead(timeline.Paused(timeline.Index(replayAt)))
	}

	report := buildReport(path, orchestrator.Frame(replayWidth))
	return f.Format(cmd.OutOrStdout(), report)
}

func buildReport(source string, frame model.Frame) formatter.Report {
	position := "live"
	if frame.Paused() {
		position = fmt.Sprintf("paused @ %d", frame.Position)
	}
	return formatter.Report{
		Source:    source,
		Board:     frame.State.Board,
		Position:  position,
		Events:    frame.Len,
		At:        frame.TimeAt,
		Summaries: frame.Summaries,
	}
}

// followCapture tails a capture in the dashboard until the user quits.
func followCapture(config *inspector.Config, path string) error {
	follower, err := capture.NewFollower(path)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	followed := make(chan error, 1)
	go func() {
		followed <- follower.Run(ctx)
	}()

	keyboard, err := interaction.NewKeyboardReader()
	if err != nil {
		cancel()
		<-followed
		return fmt.Errorf("failed to initialize keyboard: %w", err)
	}
	defer keyboard.Close()

	orchestrator, err := inspector.NewOrchestrator(config, inspector.Options{
		Source:  follower,
		Display: display.NewTerminalDisplay(nil),
		Input:   keyboard,
		Status:  model.StatusReplay,
	})
	if err != nil {
		cancel()
		<-followed
		return err
	}

	err = orchestrator.Run(ctx)
	cancel()
	if followErr := <-followed; followErr != nil {
		util.LogError("follower stopped", util.F("error", followErr))
	}
	return err
}
