package layout

import (
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

const (
	fallbackWidth  = 80
	fallbackHeight = 24
	minWidth       = 40
)

// Package-level singleton Sizer instance
var sharedSizer = &Sizer{}

// Sizer measures text and the terminal
type Sizer struct {
	// Fixed overrides terminal detection when non-zero
	FixedWidth  int
	FixedHeight int
}

func (i Sizer) displayWidth(s string) int {
	return runewidth.StringWidth(s)
}

// PadString pads a string to a specific display width, handling wide runes
func (i Sizer) PadString(s string, width int, leftAlign bool) string {
	actualWidth := i.displayWidth(s)
	if actualWidth >= width {
		return s
	}

	padding := strings.Repeat(" ", width-actualWidth)
	if leftAlign {
		return s + padding
	}
	return padding + s
}

// Truncate cuts s to width cells, marking the cut with an ellipsis
func (i Sizer) Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}

// Fit truncates or pads s to exactly width cells
func (i Sizer) Fit(s string, width int) string {
	return i.PadString(i.Truncate(s, width), width, true)
}

// TerminalSize returns the size of stdout, falling back to 80x24
func (i Sizer) TerminalSize() (int, int) {
	if i.FixedWidth > 0 {
		return i.FixedWidth, max(i.FixedHeight, 1)
	}

	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return fallbackWidth, fallbackHeight
	}
	return max(width, minWidth), max(height, 1)
}

// GetMaxWidth returns the usable content width
func (i Sizer) GetMaxWidth() int {
	width, _ := i.TerminalSize()
	return width - 2
}

// SharedSizer returns the package-level sizer
func SharedSizer() *Sizer {
	return sharedSizer
}
