package beacon

import "time"

// Event is something an instrumented runtime reported.
// The set of variants is closed: only types in this package implement it.
type Event interface {
	At() time.Time
	isEvent()
}

// Connected is sent by a producer when it identifies itself.
type Connected struct {
	Time    time.Time
	Name    string
	Version string
	Theme   string
}

// Disconnected marks the loss of the producer connection.
type Disconnected struct {
	Time time.Time
}

// ThemeChanged is cosmetic, but still timestamped.
type ThemeChanged struct {
	Time    time.Time
	Palette string
}

// SpanFinished reports that a stage of work completed.
// Duration is measured by the producer and never derived from Time deltas.
type SpanFinished struct {
	Time     time.Time
	Duration time.Duration
	Span     Span
}

// SubscriptionsTracked is a point-in-time gauge of alive subscriptions.
type SubscriptionsTracked struct {
	Time        time.Time
	AmountAlive int
}

// QuitRequested asks the inspector to shut down.
type QuitRequested struct {
	Time time.Time
}

// AlreadyRunning is sent when another inspector already owns the address.
type AlreadyRunning struct {
	Time time.Time
}

func (e Connected) At() time.Time            { return e.Time }
func (e Disconnected) At() time.Time         { return e.Time }
func (e ThemeChanged) At() time.Time         { return e.Time }
func (e SpanFinished) At() time.Time         { return e.Time }
func (e SubscriptionsTracked) At() time.Time { return e.Time }
func (e QuitRequested) At() time.Time        { return e.Time }
func (e AlreadyRunning) At() time.Time       { return e.Time }

func (Connected) isEvent()            {}
func (Disconnected) isEvent()         {}
func (ThemeChanged) isEvent()         {}
func (SpanFinished) isEvent()         {}
func (SubscriptionsTracked) isEvent() {}
func (QuitRequested) isEvent()        {}
func (AlreadyRunning) isEvent()       {}

// Name returns a short, stable identifier of the event variant.
func Name(event Event) string {
	switch event.(type) {
	case Connected:
		return "connected"
	case Disconnected:
		return "disconnected"
	case ThemeChanged:
		return "theme_changed"
	case SpanFinished:
		return "span_finished"
	case SubscriptionsTracked:
		return "subscriptions_tracked"
	case QuitRequested:
		return "quit_requested"
	case AlreadyRunning:
		return "already_running"
	default:
		return "unknown"
	}
}

// UpdateSpan returns the Update payload of a finished update span.
func UpdateSpan(event Event) (SpanFinished, Update, bool) {
	finished, ok := event.(SpanFinished)
	if !ok {
		return SpanFinished{}, Update{}, false
	}
	update, ok := finished.Span.(Update)
	return finished, update, ok
}
