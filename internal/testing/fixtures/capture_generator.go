package fixtures

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/penwyp/go-comet/internal/core/beacon"
	"github.com/penwyp/go-comet/internal/data/protocol"
)

// CaptureGenerator writes capture files for tests
type CaptureGenerator struct {
	baseDir string
}

// NewCaptureGenerator creates a generator writing below baseDir
func NewCaptureGenerator(baseDir string) *CaptureGenerator {
	return &CaptureGenerator{baseDir: baseDir}
}

// GetBaseDir returns the directory captures are written to
func (g *CaptureGenerator) GetBaseDir() string {
	return g.baseDir
}

// UpdateSpan builds a finished update span
func UpdateSpan(at time.Time, duration time.Duration, number int, message string) beacon.Event {
	return beacon.SpanFinished{
		Time:     at,
		Duration: duration,
		Span:     beacon.Update{Number: number, Message: message},
	}
}

// GenerateSimpleSession writes one application reporting three updates of
// 1ms, 2ms and 3ms (messages a, b, c) and a subscription count of 2.
func (g *CaptureGenerator) GenerateSimpleSession(name string, start time.Time) (string, error) {
	events := []beacon.Event{
		beacon.Connected{Time: start, Name: "todos", Version: "1"},
		UpdateSpan(start.Add(1*time.Millisecond), 1*time.Millisecond, 1, "a"),
		UpdateSpan(start.Add(2*time.Millisecond), 2*time.Millisecond, 2, "b"),
		UpdateSpan(start.Add(3*time.Millisecond), 3*time.Millisecond, 3, "c"),
		beacon.SubscriptionsTracked{Time: start.Add(4 * time.Millisecond), AmountAlive: 2},
	}
	return g.WriteEvents(name, events)
}

// GenerateFrames writes a handshake followed by frames, each an update and
// the view, layout, draw and present spans of one window, 16ms apart.
func (g *CaptureGenerator) GenerateFrames(name string, start time.Time, frames int) (string, error) {
	events := []beacon.Event{beacon.Connected{Time: start, Name: "frames", Version: "1"}}
	for i := range frames {
		at := start.Add(time.Duration(i+1) * 16 * time.Millisecond)
		events = append(events,
			UpdateSpan(at, time.Duration(100+i)*time.Microsecond, i+1, fmt.Sprintf("Tick(%d)", i+1)),
			finished(at.Add(1*time.Millisecond), 400*time.Microsecond, beacon.View{Window: "main"}),
			finished(at.Add(2*time.Millisecond), 300*time.Microsecond, beacon.Layout{Window: "main"}),
			finished(at.Add(3*time.Millisecond), 200*time.Microsecond, beacon.Draw{Window: "main"}),
			finished(at.Add(4*time.Millisecond), 150*time.Microsecond, beacon.Render{Primitive: beacon.Quad}),
			finished(at.Add(5*time.Millisecond), 500*time.Microsecond, beacon.Present{
				Window:  "main",
				Layers:  1,
				Prepare: beacon.PrepareStats{Quads: 10, Texts: 2},
			}),
		)
	}
	return g.WriteEvents(name, events)
}

// GenerateReconnect writes two different applications connecting one after
// the other.
func (g *CaptureGenerator) GenerateReconnect(name string, start time.Time) (string, error) {
	events := []beacon.Event{
		beacon.Connected{Time: start, Name: "todos", Version: "1"},
		UpdateSpan(start.Add(time.Millisecond), time.Millisecond, 1, "a"),
		beacon.Disconnected{Time: start.Add(time.Second)},
		beacon.Connected{Time: start.Add(2 * time.Second), Name: "editor", Version: "2"},
		UpdateSpan(start.Add(2*time.Second+time.Millisecond), time.Millisecond, 1, "open"),
	}
	return g.WriteEvents(name, events)
}

// WriteEvents encodes events into a new capture file
func (g *CaptureGenerator) WriteEvents(filename string, events []beacon.Event) (string, error) {
	path := filepath.Join(g.baseDir, filename)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	encoder := protocol.NewEncoder(file)
	for _, event := range events {
		if err := encoder.Encode(event); err != nil {
			return "", err
		}
	}
	return path, nil
}

// AppendEvents encodes events at the end of an existing capture
func (g *CaptureGenerator) AppendEvents(path string, events ...beacon.Event) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := protocol.NewEncoder(file)
	for _, event := range events {
		if err := encoder.Encode(event); err != nil {
			return err
		}
	}
	return nil
}

// WriteLines writes raw lines, e.g. to mix undecodable input into a capture
func (g *CaptureGenerator) WriteLines(filename string, lines ...string) (string, error) {
	path := filepath.Join(g.baseDir, filename)
	var content []byte
	for _, line := range lines {
		content = append(content, line...)
		content = append(content, '\n')
	}
	return path, os.WriteFile(path, content, 0644)
}

func finished(at time.Time, duration time.Duration, span beacon.Span) beacon.Event {
	return beacon.SpanFinished{Time: at, Duration: duration, Span: span}
}
