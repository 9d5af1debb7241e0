package inspector

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/penwyp/go-comet/internal/core/chart"
	"github.com/penwyp/go-comet/internal/core/timeline"
	"github.com/penwyp/go-comet/internal/data/protocol"
)

// Config contains configuration for the inspector
type Config struct {
	// Transport
	Address    string `yaml:"address"`
	RecordPath string `yaml:"record_path"`

	// Timeline
	Capacity int `yaml:"capacity"`

	// Display settings
	UIRefreshRate float64 `yaml:"ui_refresh_rate"` // frames per second
	BarWidth      int     `yaml:"bar_width"`
	Board         string  `yaml:"board"`
	Timezone      string  `yaml:"timezone"`

	// Ambient
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
}

// DefaultConfig returns a validated configuration with every default set
func DefaultConfig() *Config {
	c := &Config{}
	_ = c.Validate()
	return c
}

// LoadFile reads a yaml config on top of the defaults. A missing file is not
// an error.
func LoadFile(path string) (*Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return config, nil
}

// Validate fills defaults and rejects values that cannot work
func (c *Config) Validate() error {
	if c.Address == "" {
		c.Address = protocol.DefaultAddress
	}
	if c.Capacity == 0 {
		c.Capacity = timeline.DefaultCapacity
	}
	if c.UIRefreshRate == 0 {
		c.UIRefreshRate = 10
	}
	if c.BarWidth == 0 {
		c.BarWidth = int(chart.DefaultZoom)
	}
	if c.Board == "" {
		c.Board = chart.BoardOverview.String()
	}
	if c.Timezone == "" {
		c.Timezone = "Local"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	if c.Capacity < 0 {
		return fmt.Errorf("capacity must be positive, got %d", c.Capacity)
	}
	if c.UIRefreshRate < 0 || c.UIRefreshRate > 60 {
		return fmt.Errorf("ui_refresh_rate must be within (0, 60], got %g", c.UIRefreshRate)
	}
	if c.BarWidth < 1 || c.BarWidth > 10 {
		return fmt.Errorf("bar_width must be within [1, 10], got %d", c.BarWidth)
	}
	if _, err := chart.ParseBoard(c.Board); err != nil {
		return err
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}

// InitialBoard returns the configured board
func (c *Config) InitialBoard() chart.Board {
	board, _ := chart.ParseBoard(c.Board)
	return board
}
