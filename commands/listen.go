package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-comet/internal/application/inspector"
	"github.com/penwyp/go-comet/internal/core/model"
	"github.com/penwyp/go-comet/internal/data/capture"
	"github.com/penwyp/go-comet/internal/data/protocol"
	"github.com/penwyp/go-comet/internal/metrics"
	"github.com/penwyp/go-comet/internal/presentation/display"
	"github.com/penwyp/go-comet/internal/presentation/interaction"
	"github.com/penwyp/go-comet/internal/util"
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Inspect a live application (default command)",
	Long: `Listens for one instrumented application at a time and shows its
events in a live dashboard. Only one inspector can own the address.

Keys:
  space/p pause   h/l scrub 1   H/L scrub 100   g live
  tab board       +/- zoom      t layout        c clear
  ? help          q quit`,
	RunE: runListen,
}

func init() {
	rootCmd.AddCommand(listenCmd)
	addInspectorFlags(listenCmd.Flags(), true)
}

func runListen(cmd *cobra.Command, args []string) error {
	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := initLogging(config); err != nil {
		return err
	}

	serverConfig := protocol.ServerConfig{Address: config.Address}
	if config.RecordPath != "" {
		recorder, err := capture.NewRecorder(expandPath(config.RecordPath))
		if err != nil {
			return err
		}
		defer func() {
			util.LogInfo("capture closed", util.F("path", config.RecordPath), util.F("lines", recorder.Lines()))
			recorder.Close()
		}()
		serverConfig.Tee = recorder
	}

	server := protocol.NewServer(serverConfig)
	if err := server.Listen(); err != nil {
		if errors.Is(err, protocol.ErrAlreadyRunning) {
			return fmt.Errorf("%w; close it or pass a different --addr", err)
		}
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	served := make(chan error, 1)
	go func() {
		served <- server.Serve(ctx)
	}()
	startMetrics(ctx, config.MetricsAddr)

	keyboard, err := interaction.NewKeyboardReader()
	if err != nil {
		return fmt.Errorf("failed to initialize keyboard: %w", err)
	}
	defer keyboard.Close()

	orchestrator, err := inspector.NewOrchestrator(config, inspector.Options{
		Source:  server,
		Display: display.NewTerminalDisplay(nil),
		Input:   keyboard,
		Status:  model.StatusWaiting,
	})
	if err != nil {
		return err
	}

	err = orchestrator.Run(ctx)
	cancel()
	if serveErr := <-served; serveErr != nil {
		util.LogError("server stopped", util.F("error", serveErr))
	}
	return err
}

// startMetrics serves Prometheus metrics in the background when addr is set.
func startMetrics(ctx context.Context, addr string) {
	if addr == "" {
		return
	}
	go func() {
		util.LogInfo("serving metrics", util.F("addr", addr))
		if err := metrics.Serve(ctx, addr); err != nil {
			util.LogError("metrics server failed", util.F("addr", addr), util.F("error", err))
		}
	}()
}
