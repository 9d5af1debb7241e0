package e2e

import (
	"regexp"
	"strings"
	"sync"
)

// ansiEscape matches CSI sequences, including private modes such as ?1049h
var ansiEscape = regexp.MustCompile(`\x1b\[[0-9;?]*[a-zA-Z]`)

// StripANSI removes all ANSI escape codes from a string
func StripANSI(s string) string {
	return ansiEscape.ReplaceAllString(s, "")
}

// Screen is a minimal virtual terminal. It understands the cursor movement
// and erase sequences the dashboard emits and ignores colors and modes.
// Screen is an io.Writer and safe for concurrent use.
type Screen struct {
	mu      sync.Mutex
	rows    int
	cols    int
	cells   [][]rune
	x, y    int
	pending []rune // incomplete escape sequence from the previous write
}

// NewScreen creates a blank screen
func NewScreen(rows, cols int) *Screen {
	s := &Screen{rows: rows, cols: cols, cells: make([][]rune, rows)}
	for i := range s.cells {
		s.cells[i] = blankLine(cols)
	}
	return s
}

// ParseTerminalOutput replays output onto a fresh 24x80 screen
func ParseTerminalOutput(output string) *Screen {
	screen := NewScreen(24, 80)
	screen.Write([]byte(output))
	return screen
}

func (s *Screen) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runes := append(s.pending, []rune(string(p))...)
	s.pending = nil

	for i := 0; i < len(runes); {
		switch r := runes[i]; r {
		case '\x1b':
			next, ok := s.escape(runes, i)
			if !ok {
				s.pending = append([]rune(nil), runes[i:]...)
				return len(p), nil
			}
			i = next
			continue
		case '\r':
			s.x = 0
		case '\n':
			s.lineFeed()
		case '\b':
			s.x = max(s.x-1, 0)
		default:
			s.put(r)
		}
		i++
	}
	return len(p), nil
}

// escape applies the sequence starting at runes[start] and returns the index
// after it. It reports false when the sequence is cut off.
func (s *Screen) escape(runes []rune, start int) (int, bool) {
	if start+1 >= len(runes) {
		return 0, false
	}
	if runes[start+1] != '[' {
		// Two-byte escapes carry nothing the screen needs.
		return start + 2, true
	}

	var params []int
	current, private := 0, false
	for i := start + 2; i < len(runes); i++ {
		switch r := runes[i]; {
		case r == '?':
			private = true
		case r >= '0' && r <= '9':
			current = current*10 + int(r-'0')
		case r == ';':
			params = append(params, current)
			current = 0
		default:
			params = append(params, current)
			if !private {
				s.command(r, params)
			}
			return i + 1, true
		}
	}
	return 0, false
}

func (s *Screen) command(cmd rune, params []int) {
	arg := func(i, fallback int) int {
		if i < len(params) && params[i] > 0 {
			return params[i]
		}
		return fallback
	}

	switch cmd {
	case 'H', 'f': // Cursor position
		s.y = min(arg(0, 1), s.rows) - 1
		s.x = min(arg(1, 1), s.cols) - 1
	case 'A':
		s.y = max(s.y-arg(0, 1), 0)
	case 'B':
		s.y = min(s.y+arg(0, 1), s.rows-1)
	case 'C':
		s.x = min(s.x+arg(0, 1), s.cols-1)
	case 'D':
		s.x = max(s.x-arg(0, 1), 0)
	case 'J':
		switch arg(0, 0) {
		case 0:
			s.eraseLine(s.y, s.x, s.cols)
			for row := s.y + 1; row < s.rows; row++ {
				s.eraseLine(row, 0, s.cols)
			}
		case 1:
			for row := 0; row < s.y; row++ {
				s.eraseLine(row, 0, s.cols)
			}
			s.eraseLine(s.y, 0, s.x+1)
		case 2, 3:
			for row := range s.rows {
				s.eraseLine(row, 0, s.cols)
			}
		}
	case 'K':
		switch arg(0, 0) {
		case 0:
			s.eraseLine(s.y, s.x, s.cols)
		case 1:
			s.eraseLine(s.y, 0, s.x+1)
		case 2:
			s.eraseLine(s.y, 0, s.cols)
		}
	}
}

func (s *Screen) put(r rune) {
	if s.x >= s.cols {
		// Line wrap is disabled by the dashboard, so excess is dropped.
		return
	}
	s.cells[s.y][s.x] = r
	s.x++
}

func (s *Screen) lineFeed() {
	if s.y < s.rows-1 {
		s.y++
		return
	}
	copy(s.cells, s.cells[1:])
	s.cells[s.rows-1] = blankLine(s.cols)
}

func (s *Screen) eraseLine(row, from, to int) {
	for col := max(from, 0); col < min(to, s.cols); col++ {
		s.cells[row][col] = ' '
	}
}

// Render returns the screen content, one line per row, trailing blanks trimmed
func (s *Screen) Render() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := make([]string, s.rows)
	for i, row := range s.cells {
		lines[i] = strings.TrimRight(string(row), " ")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

// Line returns one row of the screen
func (s *Screen) Line(row int) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if row < 0 || row >= s.rows {
		return ""
	}
	return strings.TrimRight(string(s.cells[row]), " ")
}

// ContainsText checks if the screen contains specific text
func (s *Screen) ContainsText(text string) bool {
	return strings.Contains(s.Render(), text)
}

func blankLine(cols int) []rune {
	line := make([]rune, cols)
	for i := range line {
		line[i] = ' '
	}
	return line
}
