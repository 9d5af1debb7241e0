package inspector

import (
	"context"
	"fmt"
	"time"

	"github.com/penwyp/go-comet/internal/core/beacon"
	"github.com/penwyp/go-comet/internal/core/chart"
	"github.com/penwyp/go-comet/internal/core/model"
	"github.com/penwyp/go-comet/internal/core/timeline"
	"github.com/penwyp/go-comet/internal/data/protocol"
	"github.com/penwyp/go-comet/internal/metrics"
	"github.com/penwyp/go-comet/internal/presentation/interaction"
	"github.com/penwyp/go-comet/internal/presentation/layout"
	"github.com/penwyp/go-comet/internal/util"
)

const (
	// barIndent is the left margin in front of chart bars.
	barIndent = 2

	scrubStep     = 1
	scrubStepFast = 100
)

// Options are the collaborators of an Orchestrator. Display and Input may be
// nil for headless use.
type Options struct {
	Source  Source
	Display DisplayController
	Input   InputHandler
	Status  model.ConnectionStatus
	Now     func() time.Time
}

// Orchestrator owns the timeline and folds events, keys and ticks into frames.
// Everything except the StateManager is confined to the goroutine calling Run.
type Orchestrator struct {
	config *Config

	timeline     *timeline.Timeline
	dashboard    *chart.Dashboard
	stateManager *StateManager

	source  Source
	display DisplayController
	input   InputHandler

	replay bool
	now    func() time.Time
	dirty  bool
	log    util.LoggerInterface
}

// NewOrchestrator creates a new Orchestrator instance
func NewOrchestrator(config *Config, opts Options) (*Orchestrator, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	stateManager := NewStateManager(model.NewInteractionState(config.InitialBoard(), chart.Zoom(config.BarWidth)))
	stateManager.UpdateConnection(func(c *model.Connection) {
		c.Status = opts.Status
	})

	return &Orchestrator{
		config:       config,
		timeline:     timeline.New(config.Capacity),
		dashboard:    chart.NewDashboard(),
		stateManager: stateManager,
		source:       opts.Source,
		display:      opts.Display,
		input:        opts.Input,
		replay:       opts.Status == model.StatusReplay,
		now:          opts.Now,
		log:          util.Named("inspector"),
	}, nil
}

// State returns the state manager
func (o *Orchestrator) State() *StateManager {
	return o.stateManager
}

// Timeline returns the owned timeline
func (o *Orchestrator) Timeline() *timeline.Timeline {
	return o.timeline
}

// Run folds source messages and key presses until ctx is done, the user quits
// or the application requests it.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.log.Info("starting inspector",
		util.F("capacity", o.timeline.Capacity()),
		util.F("board", o.stateManager.GetInteractionState().Board.String()))

	if o.display != nil {
		o.display.EnterAlternateScreen()
		defer o.display.ExitAlternateScreen()
	}

	var messages <-chan protocol.Message
	if o.source != nil {
		messages = o.source.Messages()
	}
	var keys <-chan interaction.KeyEvent
	if o.input != nil {
		keys = o.input.Events()
	}

	uiTicker := time.NewTicker(time.Duration(float64(time.Second) / o.config.UIRefreshRate))
	defer uiTicker.Stop()

	o.render()

	for {
		select {
		case <-ctx.Done():
			o.log.Info("shutting down inspector")
			return nil

		case message, ok := <-messages:
			if !ok {
				o.log.Info("event source closed")
				messages = nil
				continue
			}
			if o.HandleMessage(message) {
				return nil
			}

		case key, ok := <-keys:
			if !ok {
				keys = nil
				continue
			}
			if o.HandleKey(key) {
				return nil
			}
			o.render()

		case <-uiTicker.C:
			if o.dirty {
				o.render()
			}
		}
	}
}

// HandleMessage ingests a message, remembering the session it arrived on.
func (o *Orchestrator) HandleMessage(message protocol.Message) bool {
	quit := o.Ingest(message.Event)
	if _, ok := message.Event.(beacon.Connected); ok {
		o.stateManager.UpdateConnection(func(c *model.Connection) {
			c.Session = message.Session
		})
	}
	return quit
}

// Ingest folds one event into the timeline. It returns true when the
// application asked the inspector to quit.
func (o *Orchestrator) Ingest(event beacon.Event) bool {
	switch e := event.(type) {
	case beacon.QuitRequested:
		o.log.Info("application requested quit")
		return true

	case beacon.AlreadyRunning:
		o.log.Warn("another inspector is already running")
		o.setStatusMessage("another inspector is already running")
		o.dirty = true
		return false

	case beacon.Connected:
		o.connect(e)

	case beacon.Disconnected:
		o.stateManager.UpdateConnection(func(c *model.Connection) {
			if !o.replay {
				c.Status = model.StatusDisconnected
			}
			c.Since = e.Time
		})
		o.log.Info("application disconnected")

	case beacon.ThemeChanged:
		o.stateManager.UpdateConnection(func(c *model.Connection) {
			c.Theme = e.Palette
		})
	}

	o.push(event)
	o.dirty = true
	return false
}

func (o *Orchestrator) connect(e beacon.Connected) {
	previous := o.stateManager.GetConnection()
	if !previous.SameApplication(e.Name, e.Version) {
		if o.timeline.Len() > 0 {
			o.log.Info("new application connected, clearing timeline",
				util.F("previous", previous.Label()),
				util.F("events", o.timeline.Len()))
		}
		o.reset()
	}

	o.stateManager.UpdateConnection(func(c *model.Connection) {
		if !o.replay {
			c.Status = model.StatusConnected
		}
		c.Name = e.Name
		c.Version = e.Version
		c.Theme = e.Theme
		c.Since = e.Time
	})
	o.log.Info("application connected", util.F("name", e.Name), util.F("version", e.Version))
}

func (o *Orchestrator) push(event beacon.Event) {
	// The oldest event leaves with this push; charts that showed it are stale.
	if o.timeline.Len() >= o.timeline.Capacity() {
		cursor := o.timeline.Seek(timeline.Paused(o.timeline.Removed().Add(1)))
		if oldest, ok := cursor.Next(); ok {
			o.dashboard.InvalidateBy(oldest)
		}
	}

	removed := o.timeline.Removed()
	o.timeline.Push(event)
	o.dashboard.Observe(event)

	metrics.EventsIngested.WithLabelValues(beacon.Name(event)).Inc()
	if evicted := o.timeline.Removed() - removed; evicted > 0 {
		metrics.EventsEvicted.Add(float64(evicted))
	}
	metrics.TimelineEvents.Set(float64(o.timeline.Len()))
	if finished, _, ok := beacon.UpdateSpan(event); ok {
		metrics.UpdateDuration.Observe(finished.Duration.Seconds())
	}
}

// reset empties the timeline and goes back live.
func (o *Orchestrator) reset() {
	o.timeline.Clear()
	o.dashboard.Reset()
	metrics.TimelineEvents.Set(0)
	o.stateManager.UpdateInteractionState(func(s *model.InteractionState) {
		s.Playhead = timeline.Live()
	})
	o.dirty = true
}

// HandleKey applies a key press. It returns true when the user quits.
func (o *Orchestrator) HandleKey(event interaction.KeyEvent) bool {
	state := o.stateManager.GetInteractionState()

	// Handle confirm dialog inputs first
	if state.ConfirmDialog != nil {
		switch {
		case event.Type == interaction.KeyChar && (event.Key == 'y' || event.Key == 'Y'):
			if state.ConfirmDialog.OnConfirm != nil {
				state.ConfirmDialog.OnConfirm()
			}
		case event.Type == interaction.KeyEscape,
			event.Type == interaction.KeyChar && (event.Key == 'n' || event.Key == 'N'):
			if state.ConfirmDialog.OnCancel != nil {
				state.ConfirmDialog.OnCancel()
			}
		}
		return false // Ignore other keys when dialog is open
	}

	o.setStatusMessage("")

	switch event.Type {
	case interaction.KeyChar:
		switch event.Key {
		case 'q', 'Q', 3: // Ctrl+C arrives as a byte in raw mode
			return true
		case ' ', 'p', 'P':
			o.togglePause()
		case 'h':
			o.movePlayhead(-scrubStep)
		case 'l':
			o.movePlayhead(scrubStep)
		case 'H':
			o.movePlayhead(-scrubStepFast)
		case 'L':
			o.movePlayhead(scrubStepFast)
		case 'g', 'G':
			o.setPlayhead(timeline.Live())
		case '+', '=':
			o.zoom(chart.Zoom.Increment)
		case '-', '_':
			o.zoom(chart.Zoom.Decrement)
		case 't', 'T':
			o.stateManager.UpdateInteractionState(func(s *model.InteractionState) {
				s.LayoutStyle = layout.NextStyle(s.LayoutStyle)
			})
		case 'c', 'C':
			o.confirmClear()
		case '?':
			o.stateManager.UpdateInteractionState(func(s *model.InteractionState) {
				s.ShowHelp = !s.ShowHelp
			})
		}
	case interaction.KeyTab:
		o.stateManager.UpdateInteractionState(func(s *model.InteractionState) {
			s.Board = s.Board.Next()
		})
	case interaction.KeyLeft:
		o.movePlayhead(-scrubStep)
	case interaction.KeyRight:
		o.movePlayhead(scrubStep)
	case interaction.KeyUp:
		o.zoom(chart.Zoom.Increment)
	case interaction.KeyDown:
		o.zoom(chart.Zoom.Decrement)
	case interaction.KeyEscape:
		// If help is shown, close it; otherwise quit
		if !state.ShowHelp {
			return true
		}
		o.stateManager.UpdateInteractionState(func(s *model.InteractionState) {
			s.ShowHelp = false
		})
	}

	return false
}

// SetPlayhead moves the playhead, e.g. for replay --at.
func (o *Orchestrator) SetPlayhead(playhead timeline.Playhead) {
	o.setPlayhead(playhead)
}

func (o *Orchestrator) setPlayhead(playhead timeline.Playhead) {
	o.stateManager.UpdateInteractionState(func(s *model.InteractionState) {
		s.Playhead = playhead
	})
}

func (o *Orchestrator) togglePause() {
	state := o.stateManager.GetInteractionState()
	if state.Playhead.IsLive() {
		o.setPlayhead(timeline.Paused(o.timeline.End()))
		return
	}
	o.setPlayhead(timeline.Live())
}

// movePlayhead scrubs n events, backwards when n is negative. Scrubbing back
// from live pauses; scrubbing past the newest event goes live again.
func (o *Orchestrator) movePlayhead(n int) {
	state := o.stateManager.GetInteractionState()
	if n < 0 {
		o.setPlayhead(o.timeline.Rewind(state.Playhead, -n))
		return
	}
	o.setPlayhead(o.timeline.Advance(state.Playhead, n))
}

func (o *Orchestrator) zoom(step func(chart.Zoom) chart.Zoom) {
	o.stateManager.UpdateInteractionState(func(s *model.InteractionState) {
		s.Zoom = step(s.Zoom)
	})
}

func (o *Orchestrator) setStatusMessage(message string) {
	o.stateManager.UpdateInteractionState(func(s *model.InteractionState) {
		s.StatusMessage = message
	})
}

// confirmClear asks before dropping every event
func (o *Orchestrator) confirmClear() {
	closeDialog := func() {
		o.stateManager.UpdateInteractionState(func(s *model.InteractionState) {
			s.ConfirmDialog = nil
		})
	}

	o.stateManager.UpdateInteractionState(func(s *model.InteractionState) {
		s.ConfirmDialog = &model.ConfirmDialog{
			Title:   "Clear Timeline",
			Message: fmt.Sprintf("This will drop all %s recorded events. Continue?", util.FormatNumber(o.timeline.Len())),
			OnConfirm: func() {
				events := o.timeline.Len()
				o.reset()
				closeDialog()
				o.setStatusMessage("timeline cleared")
				o.log.Info("timeline cleared", util.F("events", events))
			},
			OnCancel: closeDialog,
		}
	})
}

// Frame computes what the screen shows for a display width.
func (o *Orchestrator) Frame(width int) model.Frame {
	state := o.stateManager.GetInteractionState()
	start, end := o.timeline.Range()
	visible := state.Zoom.Visible(width - barIndent)

	frame := model.Frame{
		State:      state,
		Connection: o.stateManager.GetConnection(),
		Now:        o.now(),
		Start:      start,
		End:        end,
		Position:   o.timeline.Resolve(state.Playhead),
		Len:        o.timeline.Len(),
		Capacity:   o.timeline.Capacity(),
		Visible:    visible,
		Summaries:  o.dashboard.Board(o.timeline, state.Board, state.Playhead, visible),
	}
	if at, ok := o.timeline.TimeAt(state.Playhead); ok {
		frame.TimeAt = at
	}
	return frame
}

func (o *Orchestrator) render() {
	if o.display == nil {
		return
	}
	o.display.Render(o.Frame(o.display.Width()))
	o.dirty = false
}
