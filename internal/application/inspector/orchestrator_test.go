package inspector

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-comet/internal/core/beacon"
	"github.com/penwyp/go-comet/internal/core/chart"
	"github.com/penwyp/go-comet/internal/core/model"
	"github.com/penwyp/go-comet/internal/core/timeline"
	"github.com/penwyp/go-comet/internal/data/protocol"
	"github.com/penwyp/go-comet/internal/metrics"
	"github.com/penwyp/go-comet/internal/presentation/interaction"
)

var epoch = time.Date(2024, 10, 13, 10, 30, 0, 0, time.UTC)

type fakeDisplay struct {
	entered bool
	exited  bool
	frames  []model.Frame
}

func (d *fakeDisplay) EnterAlternateScreen()    { d.entered = true }
func (d *fakeDisplay) ExitAlternateScreen()     { d.exited = true }
func (d *fakeDisplay) Render(frame model.Frame) { d.frames = append(d.frames, frame) }
func (d *fakeDisplay) Width() int               { return 42 }

type fakeSource struct {
	messages chan protocol.Message
}

func newFakeSource(events ...beacon.Event) *fakeSource {
	s := &fakeSource{messages: make(chan protocol.Message, len(events))}
	for _, event := range events {
		s.messages <- protocol.Message{Session: "s1", Event: event}
	}
	return s
}

func (s *fakeSource) Messages() <-chan protocol.Message { return s.messages }

type fakeInput struct {
	events chan interaction.KeyEvent
}

func (i *fakeInput) Events() <-chan interaction.KeyEvent { return i.events }
func (i *fakeInput) Close() error                        { return nil }

func newOrchestrator(t *testing.T, config *Config, opts Options) *Orchestrator {
	t.Helper()
	if config == nil {
		config = &Config{}
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return epoch }
	}
	o, err := NewOrchestrator(config, opts)
	require.NoError(t, err)
	return o
}

func update(offset time.Duration, duration time.Duration, message string) beacon.Event {
	return beacon.SpanFinished{
		Time:     epoch.Add(offset),
		Duration: duration,
		Span:     beacon.Update{Message: message},
	}
}

func subscriptions(offset time.Duration, alive int) beacon.Event {
	return beacon.SubscriptionsTracked{Time: epoch.Add(offset), AmountAlive: alive}
}

func char(r rune) interaction.KeyEvent {
	return interaction.KeyEvent{Key: r, Type: interaction.KeyChar}
}

func key(kind interaction.KeyType) interaction.KeyEvent {
	return interaction.KeyEvent{Type: kind}
}

func TestNewOrchestratorRejectsInvalidConfig(t *testing.T) {
	_, err := NewOrchestrator(&Config{BarWidth: 20}, Options{})
	assert.Error(t, err)
}

func TestIngestPushesEvents(t *testing.T) {
	o := newOrchestrator(t, nil, Options{})

	assert.False(t, o.Ingest(update(0, time.Millisecond, "Tick")))
	assert.False(t, o.Ingest(subscriptions(time.Millisecond, 3)))

	assert.Equal(t, 2, o.Timeline().Len())
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.TimelineEvents))

	frame := o.Frame(80)
	assert.Equal(t, timeline.Index(0), frame.Start)
	assert.Equal(t, timeline.Index(2), frame.End)
	assert.Equal(t, timeline.Index(2), frame.Position)
	assert.Equal(t, epoch.Add(time.Millisecond), frame.TimeAt)
	assert.Equal(t, epoch, frame.Now)
	assert.Equal(t, 39, frame.Visible)
	require.Len(t, frame.Summaries, 6)
	assert.Equal(t, "Update", frame.Summaries[0].Title)
	assert.Equal(t, 1, frame.Summaries[0].Samples)
	assert.Equal(t, "1ms", frame.Summaries[0].Last)
}

func TestIngestControlSignals(t *testing.T) {
	o := newOrchestrator(t, nil, Options{})

	assert.False(t, o.Ingest(beacon.AlreadyRunning{Time: epoch}))
	assert.Equal(t, "another inspector is already running", o.State().GetInteractionState().StatusMessage)

	assert.True(t, o.Ingest(beacon.QuitRequested{Time: epoch}))
	assert.Equal(t, 0, o.Timeline().Len())
}

func TestConnectedWithNewApplicationClearsTimeline(t *testing.T) {
	o := newOrchestrator(t, nil, Options{Status: model.StatusWaiting})

	o.HandleMessage(protocol.Message{Session: "a", Event: beacon.Connected{Time: epoch, Name: "todos", Version: "1"}})
	o.Ingest(update(time.Millisecond, time.Millisecond, "Tick"))
	o.Ingest(beacon.Disconnected{Time: epoch.Add(2 * time.Millisecond)})

	conn := o.State().GetConnection()
	assert.Equal(t, model.StatusDisconnected, conn.Status)
	assert.Equal(t, "a", conn.Session)
	assert.Equal(t, 3, o.Timeline().Len())

	// Same application reconnecting keeps its history.
	o.HandleMessage(protocol.Message{Session: "b", Event: beacon.Connected{Time: epoch.Add(time.Second), Name: "todos", Version: "1"}})
	assert.Equal(t, 4, o.Timeline().Len())
	assert.Equal(t, model.StatusConnected, o.State().GetConnection().Status)
	assert.Equal(t, "b", o.State().GetConnection().Session)

	o.HandleKey(char('h'))
	assert.False(t, o.State().GetInteractionState().Playhead.IsLive())

	o.Ingest(beacon.Connected{Time: epoch.Add(2 * time.Second), Name: "editor", Version: "1", Theme: "Dark"})
	assert.Equal(t, 1, o.Timeline().Len())
	assert.True(t, o.State().GetInteractionState().Playhead.IsLive())

	conn = o.State().GetConnection()
	assert.Equal(t, "editor 1", conn.Label())
	assert.Equal(t, "Dark", conn.Theme)
	assert.Empty(t, o.Frame(80).Summaries[0].Points)
}

func TestReplayKeepsReplayStatus(t *testing.T) {
	o := newOrchestrator(t, nil, Options{Status: model.StatusReplay})

	o.Ingest(beacon.Connected{Time: epoch, Name: "todos"})
	o.Ingest(beacon.ThemeChanged{Time: epoch, Palette: "Light"})
	o.Ingest(beacon.Disconnected{Time: epoch})

	conn := o.State().GetConnection()
	assert.Equal(t, model.StatusReplay, conn.Status)
	assert.Equal(t, "Light", conn.Theme)
}

func TestEvictionInvalidatesCharts(t *testing.T) {
	o := newOrchestrator(t, &Config{Capacity: 2}, Options{})

	o.Ingest(update(0, time.Millisecond, "a"))
	o.Ingest(update(time.Millisecond, 2*time.Millisecond, "b"))
	assert.Equal(t, 2, o.Frame(80).Summaries[0].Samples)

	// A draw span does not affect the update chart, but evicts its oldest point.
	o.Ingest(beacon.SpanFinished{Time: epoch.Add(2 * time.Millisecond), Duration: time.Millisecond, Span: beacon.Draw{Window: "main"}})

	summary := o.Frame(80).Summaries[0]
	assert.Equal(t, 1, summary.Samples)
	assert.Equal(t, "2ms", summary.Last)
	assert.Equal(t, timeline.Index(1), o.Timeline().Removed())
}

func TestHandleKeyScrubbing(t *testing.T) {
	o := newOrchestrator(t, nil, Options{})
	for i := range 5 {
		o.Ingest(subscriptions(time.Duration(i)*time.Millisecond, i))
	}

	playhead := func() timeline.Playhead { return o.State().GetInteractionState().Playhead }

	o.HandleKey(char('h'))
	assert.Equal(t, timeline.Paused(4), playhead())

	o.HandleKey(char('H'))
	assert.Equal(t, timeline.Paused(0), playhead())

	o.HandleKey(char('l'))
	assert.Equal(t, timeline.Paused(1), playhead())

	o.HandleKey(key(interaction.KeyRight))
	assert.Equal(t, timeline.Paused(2), playhead())

	o.HandleKey(char('L'))
	assert.True(t, playhead().IsLive())

	o.HandleKey(char(' '))
	assert.Equal(t, timeline.Paused(5), playhead())

	// New events do not move a paused playhead.
	o.Ingest(subscriptions(time.Second, 9))
	assert.Equal(t, timeline.Index(5), o.Frame(80).Position)
	assert.Equal(t, uint64(1), o.Frame(80).Behind())

	o.HandleKey(char('p'))
	assert.True(t, playhead().IsLive())

	o.HandleKey(key(interaction.KeyLeft))
	assert.Equal(t, timeline.Paused(5), playhead())

	o.HandleKey(char('g'))
	assert.True(t, playhead().IsLive())
}

func TestHandleKeyViewControls(t *testing.T) {
	o := newOrchestrator(t, nil, Options{})
	state := func() model.InteractionState { return o.State().GetInteractionState() }

	o.HandleKey(key(interaction.KeyTab))
	assert.Equal(t, chart.BoardUpdate, state().Board)

	assert.Equal(t, chart.Zoom(2), state().Zoom)
	o.HandleKey(char('+'))
	assert.Equal(t, chart.Zoom(3), state().Zoom)
	o.HandleKey(key(interaction.KeyDown))
	o.HandleKey(char('-'))
	o.HandleKey(char('-'))
	assert.Equal(t, chart.Zoom(1), state().Zoom)
	o.HandleKey(key(interaction.KeyUp))
	assert.Equal(t, chart.Zoom(2), state().Zoom)

	o.HandleKey(char('t'))
	assert.Equal(t, 1, state().LayoutStyle)
	o.HandleKey(char('t'))
	assert.Equal(t, 0, state().LayoutStyle)

	o.HandleKey(char('?'))
	assert.True(t, state().ShowHelp)
	assert.False(t, o.HandleKey(key(interaction.KeyEscape)))
	assert.False(t, state().ShowHelp)
	assert.True(t, o.HandleKey(key(interaction.KeyEscape)))
}

func TestHandleKeyQuit(t *testing.T) {
	o := newOrchestrator(t, nil, Options{})

	assert.True(t, o.HandleKey(char('q')))
	assert.True(t, o.HandleKey(char(3)))
	assert.False(t, o.HandleKey(char('x')))
}

func TestClearAsksForConfirmation(t *testing.T) {
	o := newOrchestrator(t, nil, Options{})
	o.Ingest(update(0, time.Millisecond, "a"))
	o.Ingest(update(time.Millisecond, time.Millisecond, "b"))
	state := func() model.InteractionState { return o.State().GetInteractionState() }

	o.HandleKey(char('c'))
	require.NotNil(t, state().ConfirmDialog)
	assert.Contains(t, state().ConfirmDialog.Message, "2 recorded events")

	// Other keys are ignored while the dialog is open.
	assert.False(t, o.HandleKey(char('q')))
	require.NotNil(t, state().ConfirmDialog)

	o.HandleKey(char('n'))
	assert.Nil(t, state().ConfirmDialog)
	assert.Equal(t, 2, o.Timeline().Len())

	o.HandleKey(char('c'))
	o.HandleKey(char('y'))
	assert.Nil(t, state().ConfirmDialog)
	assert.Equal(t, 0, o.Timeline().Len())
	assert.Equal(t, timeline.Index(0), o.Timeline().End())
	assert.Equal(t, "timeline cleared", state().StatusMessage)

	// The next key press clears the status message.
	o.HandleKey(key(interaction.KeyTab))
	assert.Empty(t, state().StatusMessage)
}

func TestSetPlayhead(t *testing.T) {
	o := newOrchestrator(t, nil, Options{})
	for i := range 3 {
		o.Ingest(subscriptions(time.Duration(i)*time.Second, i+1))
	}

	o.SetPlayhead(timeline.Paused(2))
	frame := o.Frame(80)
	assert.Equal(t, timeline.Index(2), frame.Position)
	assert.Equal(t, epoch.Add(time.Second), frame.TimeAt)
}

func TestRunUntilQuitRequested(t *testing.T) {
	display := &fakeDisplay{}
	source := newFakeSource(
		beacon.Connected{Time: epoch, Name: "todos", Version: "1"},
		update(time.Millisecond, time.Millisecond, "Tick"),
		beacon.QuitRequested{Time: epoch.Add(time.Second)},
	)
	o := newOrchestrator(t, nil, Options{Source: source, Display: display, Status: model.StatusWaiting})

	require.NoError(t, o.Run(context.Background()))

	assert.True(t, display.entered)
	assert.True(t, display.exited)
	require.NotEmpty(t, display.frames)
	assert.Equal(t, 2, o.Timeline().Len())
	assert.Equal(t, "s1", o.State().GetConnection().Session)
	// Width 42 leaves 40 cells for bars of width 2.
	assert.Equal(t, 20, display.frames[0].Visible)
}

func TestRunUntilUserQuits(t *testing.T) {
	display := &fakeDisplay{}
	input := &fakeInput{events: make(chan interaction.KeyEvent, 2)}
	input.events <- key(interaction.KeyTab)
	input.events <- char('q')

	o := newOrchestrator(t, nil, Options{Display: display, Input: input})
	require.NoError(t, o.Run(context.Background()))

	// Initial frame plus the frame after tab.
	require.Len(t, display.frames, 2)
	assert.Equal(t, chart.BoardUpdate, display.frames[1].State.Board)
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := newOrchestrator(t, nil, Options{})
	assert.NoError(t, o.Run(ctx))
}
