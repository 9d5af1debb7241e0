package e2e

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripANSI(t *testing.T) {
	assert.Equal(t, "LIVE #3", StripANSI("\033[1m\033[32mLIVE\033[0m #3\033[K"))
	assert.Equal(t, "x", StripANSI("\033[?1049hx\033[?25l"))
}

func TestScreenCursorAndErase(t *testing.T) {
	screen := NewScreen(4, 10)

	screen.Write([]byte("\033[?1049h\033[2J\033[Hhello\r\nworld"))
	assert.Equal(t, "hello", screen.Line(0))
	assert.Equal(t, "world", screen.Line(1))

	// Redraw a shorter first line and clear its tail.
	screen.Write([]byte("\033[Hhi\033[K\r\n"))
	assert.Equal(t, "hi", screen.Line(0))
	assert.Equal(t, "world", screen.Line(1))

	// Clear to the end of the screen.
	screen.Write([]byte("\033[J"))
	assert.Equal(t, "", screen.Line(1))
	assert.Equal(t, "hi", screen.Render())
}

func TestScreenSplitEscapeSequence(t *testing.T) {
	screen := NewScreen(2, 10)

	screen.Write([]byte("ab\033["))
	screen.Write([]byte("31mc\033[0m"))
	assert.Equal(t, "abc", screen.Line(0))
}

func TestScreenScrollsAndClips(t *testing.T) {
	screen := ParseTerminalOutput("")
	assert.Equal(t, "", screen.Render())

	small := NewScreen(2, 3)
	small.Write([]byte("abcdef\r\n2\r\n3"))
	assert.Equal(t, "2", small.Line(0))
	assert.Equal(t, "3", small.Line(1))
	assert.True(t, small.ContainsText("3"))
	assert.False(t, small.ContainsText("abc"))
}
