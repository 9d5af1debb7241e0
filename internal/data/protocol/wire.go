// Package protocol carries beacon events between an instrumented
// application and the inspector as newline-delimited JSON.
package protocol

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-comet/internal/core/beacon"
)

// DefaultAddress is where the inspector listens for an application.
const DefaultAddress = "127.0.0.1:9167"

// MaxLineSize bounds a single encoded event.
const MaxLineSize = 10 * 1024 * 1024

var (
	ErrUnknownType  = errors.New("unknown event type")
	ErrMissingSpan  = errors.New("span_finished without span")
	ErrUnknownStage = errors.New("unknown span stage")
)

// Envelope is the wire shape of one event.
type Envelope struct {
	Type        string `json:"type"`
	At          int64  `json:"at"` // unix nanoseconds, 0 when unknown
	DurationNs  int64  `json:"duration_ns,omitempty"`
	Name        string `json:"name,omitempty"`
	Version     string `json:"version,omitempty"`
	Theme       string `json:"theme,omitempty"`
	AmountAlive int    `json:"amount_alive,omitempty"`
	Span        *Span  `json:"span,omitempty"`
}

// Span is the wire shape of a finished span.
type Span struct {
	Stage         string        `json:"stage"`
	Window        string        `json:"window,omitempty"`
	Primitive     string        `json:"primitive,omitempty"`
	Name          string        `json:"name,omitempty"`
	Number        int           `json:"number,omitempty"`
	Message       string        `json:"message,omitempty"`
	TasksSpawned  int           `json:"tasks_spawned,omitempty"`
	Subscriptions int           `json:"subscriptions,omitempty"`
	Layers        int           `json:"layers,omitempty"`
	Prepare       *PrepareStats `json:"prepare,omitempty"`
}

type PrepareStats struct {
	Quads     int `json:"quads,omitempty"`
	Triangles int `json:"triangles,omitempty"`
	Shaders   int `json:"shaders,omitempty"`
	Images    int `json:"images,omitempty"`
	Texts     int `json:"texts,omitempty"`
}

// Encode renders event as a single JSON line without the trailing newline.
func Encode(event beacon.Event) ([]byte, error) {
	envelope, err := toEnvelope(event)
	if err != nil {
		return nil, err
	}
	return sonic.Marshal(envelope)
}

// Decode parses one JSON line into an event.
func Decode(line []byte) (beacon.Event, error) {
	var envelope Envelope
	if err := sonic.Unmarshal(line, &envelope); err != nil {
		return nil, fmt.Errorf("malformed event: %w", err)
	}
	return envelope.Event()
}

func toEnvelope(event beacon.Event) (Envelope, error) {
	envelope := Envelope{Type: beacon.Name(event), At: unixNano(event.At())}

	switch e := event.(type) {
	case beacon.Connected:
		envelope.Name = e.Name
		envelope.Version = e.Version
		envelope.Theme = e.Theme
	case beacon.ThemeChanged:
		envelope.Theme = e.Palette
	case beacon.SpanFinished:
		if e.Span == nil {
			return Envelope{}, ErrMissingSpan
		}
		envelope.DurationNs = int64(e.Duration)
		envelope.Span = toSpan(e.Span)
	case beacon.SubscriptionsTracked:
		envelope.AmountAlive = e.AmountAlive
	case beacon.Disconnected, beacon.QuitRequested, beacon.AlreadyRunning:
	default:
		return Envelope{}, fmt.Errorf("%w: %T", ErrUnknownType, event)
	}

	return envelope, nil
}

func toSpan(span beacon.Span) *Span {
	stage := span.Stage()
	wire := &Span{Stage: stage.Kind.String()}

	switch s := span.(type) {
	case beacon.Update:
		wire.Number = s.Number
		wire.Message = s.Message
		wire.TasksSpawned = s.TasksSpawned
		wire.Subscriptions = s.Subscriptions
	case beacon.View:
		wire.Window = s.Window
	case beacon.Layout:
		wire.Window = s.Window
	case beacon.Interact:
		wire.Window = s.Window
	case beacon.Draw:
		wire.Window = s.Window
	case beacon.Present:
		wire.Window = s.Window
		wire.Layers = s.Layers
		wire.Prepare = &PrepareStats{
			Quads:     s.Prepare.Quads,
			Triangles: s.Prepare.Triangles,
			Shaders:   s.Prepare.Shaders,
			Images:    s.Prepare.Images,
			Texts:     s.Prepare.Texts,
		}
	case beacon.Prepare:
		wire.Primitive = s.Primitive.String()
	case beacon.Render:
		wire.Primitive = s.Primitive.String()
	case beacon.Custom:
		wire.Name = s.Name
	}

	return wire
}

// Event converts the envelope back into an event.
func (e Envelope) Event() (beacon.Event, error) {
	at := fromUnixNano(e.At)

	switch e.Type {
	case "connected":
		return beacon.Connected{Time: at, Name: e.Name, Version: e.Version, Theme: e.Theme}, nil
	case "disconnected":
		return beacon.Disconnected{Time: at}, nil
	case "theme_changed":
		return beacon.ThemeChanged{Time: at, Palette: e.Theme}, nil
	case "subscriptions_tracked":
		return beacon.SubscriptionsTracked{Time: at, AmountAlive: e.AmountAlive}, nil
	case "quit_requested":
		return beacon.QuitRequested{Time: at}, nil
	case "already_running":
		return beacon.AlreadyRunning{Time: at}, nil
	case "span_finished":
		if e.Span == nil {
			return nil, ErrMissingSpan
		}
		span, err := e.Span.span()
		if err != nil {
			return nil, err
		}
		return beacon.SpanFinished{Time: at, Duration: time.Duration(e.DurationNs), Span: span}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, e.Type)
	}
}

func (s Span) span() (beacon.Span, error) {
	kind, ok := beacon.ParseStageKind(s.Stage)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStage, s.Stage)
	}

	switch kind {
	case beacon.StageBoot:
		return beacon.Boot{}, nil
	case beacon.StageUpdate:
		return beacon.Update{
			Number:        s.Number,
			Message:       s.Message,
			TasksSpawned:  s.TasksSpawned,
			Subscriptions: s.Subscriptions,
		}, nil
	case beacon.StageView:
		return beacon.View{Window: s.Window}, nil
	case beacon.StageLayout:
		return beacon.Layout{Window: s.Window}, nil
	case beacon.StageInteract:
		return beacon.Interact{Window: s.Window}, nil
	case beacon.StageDraw:
		return beacon.Draw{Window: s.Window}, nil
	case beacon.StagePresent:
		present := beacon.Present{Window: s.Window, Layers: s.Layers}
		if s.Prepare != nil {
			present.Prepare = beacon.PrepareStats{
				Quads:     s.Prepare.Quads,
				Triangles: s.Prepare.Triangles,
				Shaders:   s.Prepare.Shaders,
				Images:    s.Prepare.Images,
				Texts:     s.Prepare.Texts,
			}
		}
		return present, nil
	case beacon.StagePrepare, beacon.StageRender:
		primitive, ok := beacon.ParsePrimitive(s.Primitive)
		if !ok {
			return nil, fmt.Errorf("%w: primitive %q", ErrUnknownStage, s.Primitive)
		}
		if kind == beacon.StagePrepare {
			return beacon.Prepare{Primitive: primitive}, nil
		}
		return beacon.Render{Primitive: primitive}, nil
	case beacon.StageCustom:
		return beacon.Custom{Name: s.Name}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStage, s.Stage)
	}
}

func unixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnixNano(ns int64) time.Time {
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns).UTC()
}

// Encoder writes events as JSON lines. It is safe for concurrent use.
type Encoder struct {
	mu sync.Mutex
	w  io.Writer
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes one event followed by a newline.
func (e *Encoder) Encode(event beacon.Event) error {
	line, err := Encode(event)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	_, err = e.w.Write(append(line, '\n'))
	return err
}
