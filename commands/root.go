package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/penwyp/go-comet/internal/application/inspector"
	"github.com/penwyp/go-comet/internal/util"
)

// Version is stamped at build time.
var Version = "dev"

var (
	// Logging related
	debug bool

	// Configuration
	configPath string
	timezone   string

	// Inspector flags, shared by listen and replay
	listenAddr  string
	capacity    int
	recordPath  string
	metricsAddr string
	board       string
	barWidth    int
	refreshRate float64

	rootCmd = &cobra.Command{
		Use:   "go-comet [flags]",
		Short: "Live and replayable event timeline inspector",
		Long: `go-comet is a terminal inspector for instrumented applications.

Applications report finished spans (update, view, layout, draw, present, ...)
and subscription counts over a local TCP socket. go-comet keeps a bounded
timeline of those events, charts them, and lets you pause and scrub through
history while new events keep arriving.

Examples:
  go-comet                                  # Listen on 127.0.0.1:9167
  go-comet listen --record session.ndjson   # Listen and record every event
  go-comet replay session.ndjson -o json    # Print chart summaries of a capture
  go-comet replay session.ndjson --follow   # Tail a capture in the dashboard
  go-comet emit --count 600                 # Send synthetic events`,
		SilenceUsage: true,
		RunE:         runListen,
	}
)

const (
	defaultLogFile    = "~/.go-comet/logs/app.log"
	defaultConfigFile = "~/.go-comet/config.yaml"
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug mode")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigFile,
		"Config file path")
	rootCmd.PersistentFlags().StringVar(&timezone, "timezone", "Local",
		"Timezone setting (e.g., Asia/Shanghai, UTC)")

	addInspectorFlags(rootCmd.Flags(), true)
}

// addInspectorFlags registers the flags that override config file values.
// Transport flags only make sense when listening.
func addInspectorFlags(flags *pflag.FlagSet, transport bool) {
	if transport {
		flags.StringVar(&listenAddr, "addr", "",
			"Address to listen on (default 127.0.0.1:9167)")
		flags.StringVar(&recordPath, "record", "",
			"Append every received event to this capture file")
		flags.StringVar(&metricsAddr, "metrics-addr", "",
			"Serve Prometheus metrics on this address")
	}
	flags.IntVar(&capacity, "capacity", 0,
		"Maximum number of events kept in the timeline (default 1000000)")
	flags.StringVar(&board, "board", "",
		"Initial board (overview, update, present, custom)")
	flags.IntVar(&barWidth, "bar-width", 0,
		"Initial bar width in cells, 1-10 (default 2)")
	flags.Float64Var(&refreshRate, "refresh-rate", 0,
		"Display refresh rate in Hz (default 10)")
}

// loadConfig reads the config file and applies explicitly set flags on top.
func loadConfig(cmd *cobra.Command) (*inspector.Config, error) {
	config, err := inspector.LoadFile(expandPath(configPath))
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("addr") {
		config.Address = listenAddr
	}
	if flags.Changed("record") {
		config.RecordPath = recordPath
	}
	if flags.Changed("metrics-addr") {
		config.MetricsAddr = metricsAddr
	}
	if flags.Changed("capacity") {
		config.Capacity = capacity
	}
	if flags.Changed("board") {
		config.Board = board
	}
	if flags.Changed("bar-width") {
		config.BarWidth = barWidth
	}
	if flags.Changed("refresh-rate") {
		config.UIRefreshRate = refreshRate
	}
	if flags.Changed("timezone") {
		config.Timezone = timezone
	}
	if debug {
		config.LogLevel = "debug"
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// initLogging sets up the file logger and the timezone used for timestamps
func initLogging(config *inspector.Config) error {
	logFile := expandPath(defaultLogFile)
	if err := ensureDir(filepath.Dir(logFile)); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	if err := util.InitLogger(config.LogLevel, logFile, debug); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return util.InitializeTimeProvider(config.Timezone)
}

func Execute() error {
	return rootCmd.Execute()
}

// Helper functions

func expandPath(path string) string {
	if path == "" {
		return path
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
