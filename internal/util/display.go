package util

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Terminal control sequences
const (
	ColorReset   = "\033[0m"
	ColorBlue    = "\033[34m"
	ColorCyan    = "\033[36m"
	ColorGreen   = "\033[32m"
	ColorYellow  = "\033[33m"
	ColorRed     = "\033[31m"
	ColorMagenta = "\033[35m"
	ColorBold    = "\033[1m"
	ColorDim     = "\033[2m"

	ClearScreen     = "\033[2J"
	ClearLine       = "\033[2K"
	ClearToEnd      = "\033[0J"
	MoveCursorHome  = "\033[H"
	HideCursor      = "\033[?25l"
	ShowCursor      = "\033[?25h"
	EnterAltScreen  = "\033[?1049h"
	ExitAltScreen   = "\033[?1049l"
	DisableLineWrap = "\033[?7l"
	EnableLineWrap  = "\033[?7h"
)

// Bars are drawn with eighth blocks so small values stay visible.
var barBlocks = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// GetDisplayWidth returns the number of terminal cells text occupies
func GetDisplayWidth(text string) int {
	return runewidth.StringWidth(text)
}

// Sparkline renders values oldest to newest as one row of block bars, each
// barWidth cells wide, scaled to peak.
func Sparkline(values []float64, peak float64, barWidth int) string {
	barWidth = max(barWidth, 1)
	var b strings.Builder
	for _, v := range values {
		level := 0
		if peak > 0 && v > 0 {
			level = max(int(v/peak*float64(len(barBlocks)-1)+0.5), 1)
			level = min(level, len(barBlocks)-1)
		}
		b.WriteString(strings.Repeat(string(barBlocks[level]), barWidth))
	}
	return b.String()
}

// CreateProgressBar draws a bracketed bar of width cells filled to percentage
func CreateProgressBar(percentage float64, width int) string {
	barWidth := max(width-2, 0)
	filled := int((percentage / 100) * float64(barWidth))
	filled = min(max(filled, 0), barWidth)
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled) + "]"
}

// Colorize wraps text in a color sequence
func Colorize(color, text string) string {
	return color + text + ColorReset
}

// FormatHeaderTitle formats main header titles (Magenta + Bold)
func FormatHeaderTitle(title string) string {
	return fmt.Sprintf("%s%s%s%s", ColorBold, ColorMagenta, title, ColorReset)
}

// FormatCardTitle formats chart titles (Cyan + Bold)
func FormatCardTitle(title string) string {
	return fmt.Sprintf("%s%s%s%s", ColorBold, ColorCyan, title, ColorReset)
}

// FormatSectionSeparator draws a separator line width cells wide
func FormatSectionSeparator(width int) string {
	return ColorDim + strings.Repeat("─", max(width, 0)) + ColorReset
}
