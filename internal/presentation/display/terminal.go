package display

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/penwyp/go-comet/internal/core/model"
	"github.com/penwyp/go-comet/internal/presentation/layout"
	"github.com/penwyp/go-comet/internal/util"
)

// DisplayMode is what occupies the screen
type DisplayMode int

const (
	ModeNormal DisplayMode = iota
	ModeHelp
	ModeDialog
)

// DisplayConfig configures a TerminalDisplay
type DisplayConfig struct {
	Out   io.Writer     // defaults to stdout
	Sizer *layout.Sizer // defaults to the shared sizer
}

// TerminalDisplay draws frames on an alternate screen
type TerminalDisplay struct {
	out               io.Writer
	sizer             *layout.Sizer
	inAlternateScreen bool
	lastLayoutStyle   int
	isFirstRender     bool
	currentMode       DisplayMode
}

func NewTerminalDisplay(config *DisplayConfig) *TerminalDisplay {
	td := &TerminalDisplay{
		out:           os.Stdout,
		sizer:         layout.SharedSizer(),
		isFirstRender: true,
	}
	if config != nil {
		if config.Out != nil {
			td.out = config.Out
		}
		if config.Sizer != nil {
			td.sizer = config.Sizer
		}
	}
	return td
}

// EnterAlternateScreen switches to alternate screen buffer
func (td *TerminalDisplay) EnterAlternateScreen() {
	if td.inAlternateScreen {
		return
	}
	fmt.Fprint(td.out, util.EnterAltScreen+util.DisableLineWrap+util.HideCursor+util.ClearScreen+util.MoveCursorHome)
	td.inAlternateScreen = true
	td.isFirstRender = true
}

// ExitAlternateScreen returns to normal screen buffer
func (td *TerminalDisplay) ExitAlternateScreen() {
	if !td.inAlternateScreen {
		return
	}
	fmt.Fprint(td.out, util.ClearScreen+util.MoveCursorHome+util.EnableLineWrap+util.ShowCursor+util.ExitAltScreen)
	td.inAlternateScreen = false
}

// ClearScreen clears the alternate screen buffer
func (td *TerminalDisplay) ClearScreen() {
	if td.inAlternateScreen {
		fmt.Fprint(td.out, util.ClearScreen+util.MoveCursorHome)
	}
}

// Width returns the usable width in cells
func (td *TerminalDisplay) Width() int {
	return td.sizer.GetMaxWidth()
}

func determineDisplayMode(state model.InteractionState) DisplayMode {
	if state.ConfirmDialog != nil {
		return ModeDialog
	}
	if state.ShowHelp {
		return ModeHelp
	}
	return ModeNormal
}

// Render draws a frame. The whole screen is composed first and written once.
func (td *TerminalDisplay) Render(frame model.Frame) {
	mode := determineDisplayMode(frame.State)

	var buf bytes.Buffer
	if td.isFirstRender || mode != td.currentMode || td.lastLayoutStyle != frame.State.LayoutStyle {
		buf.WriteString(util.ClearScreen)
		td.isFirstRender = false
		td.currentMode = mode
		td.lastLayoutStyle = frame.State.LayoutStyle
	}
	buf.WriteString(util.MoveCursorHome)

	width := td.Width()
	var body bytes.Buffer
	switch mode {
	case ModeDialog:
		renderConfirmDialog(&body, frame.State.ConfirmDialog, width)
	case ModeHelp:
		renderHelp(&body, width)
	default:
		layout.GetLayoutStrategy(frame.State.LayoutStyle).Render(&body, frame, width)
	}

	// Clear the tail of each line so shorter content leaves no residue.
	for _, line := range strings.SplitAfter(body.String(), "\n") {
		if line == "" {
			continue
		}
		if strings.HasSuffix(line, "\n") {
			buf.WriteString(strings.TrimSuffix(line, "\n"))
			buf.WriteString("\033[K\r\n")
		} else {
			buf.WriteString(line)
			buf.WriteString("\033[K")
		}
	}
	buf.WriteString(util.ClearToEnd)

	td.out.Write(buf.Bytes())
}

func renderHelp(w io.Writer, width int) {
	rule := strings.Repeat("═", max(min(width, 80), 10))

	fmt.Fprintln(w, util.FormatHeaderTitle("go-comet - Help"))
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Keyboard Shortcuts:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  space/p      - Pause or resume at the current event")
	fmt.Fprintln(w, "  h/l, ←/→     - Scrub one event back/forward")
	fmt.Fprintln(w, "  H/L          - Scrub 100 events back/forward")
	fmt.Fprintln(w, "  g            - Go live")
	fmt.Fprintln(w, "  tab          - Next board (Overview → Update → Present → Custom)")
	fmt.Fprintln(w, "  +/-, ↑/↓     - Zoom bars in/out")
	fmt.Fprintln(w, "  t            - Change layout style (Full → Minimal)")
	fmt.Fprintln(w, "  c            - Clear the timeline")
	fmt.Fprintln(w, "  ?            - Show this help")
	fmt.Fprintln(w, "  q/Ctrl+C     - Quit")
	fmt.Fprintln(w, "  ESC          - Close help (or quit if nothing is open)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "Press '?' to return...")
}

func renderConfirmDialog(w io.Writer, dialog *model.ConfirmDialog, width int) {
	boxWidth := 60
	padding := strings.Repeat(" ", max((width-boxWidth)/2, 0))
	inner := boxWidth - 2

	fmt.Fprint(w, "\n\n\n")
	fmt.Fprintf(w, "%s╔%s╗\n", padding, strings.Repeat("═", inner))
	fmt.Fprintf(w, "%s║%s║\n", padding, centerText(dialog.Title, inner))
	fmt.Fprintf(w, "%s╠%s╣\n", padding, strings.Repeat("═", inner))
	fmt.Fprintf(w, "%s║%s║\n", padding, strings.Repeat(" ", inner))
	for _, line := range wrapText(dialog.Message, boxWidth-4) {
		fmt.Fprintf(w, "%s║ %s ║\n", padding, layout.SharedSizer().PadString(line, boxWidth-4, true))
	}
	fmt.Fprintf(w, "%s║%s║\n", padding, strings.Repeat(" ", inner))
	fmt.Fprintf(w, "%s║%s║\n", padding, centerText("(Y)es / (N)o", inner))
	fmt.Fprintf(w, "%s╚%s╝\n", padding, strings.Repeat("═", inner))
}

func centerText(text string, width int) string {
	padding := max(width-util.GetDisplayWidth(text), 0)
	left := padding / 2
	return strings.Repeat(" ", left) + text + strings.Repeat(" ", padding-left)
}

// wrapText wraps text to fit within the specified width
func wrapText(text string, width int) []string {
	if text == "" {
		return []string{}
	}

	if util.GetDisplayWidth(text) <= width {
		return []string{text}
	}

	var lines []string
	currentLine := ""
	for _, word := range strings.Fields(text) {
		if currentLine == "" {
			currentLine = word
		} else if util.GetDisplayWidth(currentLine)+1+util.GetDisplayWidth(word) <= width {
			currentLine += " " + word
		} else {
			lines = append(lines, currentLine)
			currentLine = word
		}
	}
	if currentLine != "" {
		lines = append(lines, currentLine)
	}
	return lines
}
