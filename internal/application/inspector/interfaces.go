package inspector

import (
	"github.com/penwyp/go-comet/internal/core/model"
	"github.com/penwyp/go-comet/internal/data/protocol"
	"github.com/penwyp/go-comet/internal/presentation/interaction"
)

// Source delivers events in arrival order. The channel is closed when the
// source stops.
type Source interface {
	Messages() <-chan protocol.Message
}

// DisplayController handles terminal display operations
type DisplayController interface {
	// EnterAlternateScreen switches to alternate terminal screen
	EnterAlternateScreen()
	// ExitAlternateScreen returns to normal terminal screen
	ExitAlternateScreen()
	// Render draws one frame
	Render(frame model.Frame)
	// Width returns the usable width in cells
	Width() int
}

// InputHandler processes keyboard and other input events
type InputHandler interface {
	// Events returns a channel of keyboard events
	Events() <-chan interaction.KeyEvent
	// Close cleans up input handler resources
	Close() error
}
