package util

import (
	"fmt"
	"time"
)

// FormatNumber shortens large counts, e.g. 1500 -> 1.5K
func FormatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	} else if n < 1000000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	} else {
		return fmt.Sprintf("%.1fM", float64(n)/1000000)
	}
}

// FormatElapsed renders a wall-clock duration at a coarse granularity
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}

// FormatSpan renders a span duration with microsecond precision
func FormatSpan(d time.Duration) string {
	if d < time.Microsecond {
		return d.String()
	}
	return d.Round(time.Microsecond).String()
}

// FormatRate renders a per-second rate
func FormatRate(rate float64) string {
	if rate < 1000 {
		return fmt.Sprintf("%.1f/s", rate)
	}
	return fmt.Sprintf("%s/s", FormatNumber(int(rate)))
}

// FormatPercent renders part/total as a percentage
func FormatPercent(part, total int) string {
	if total <= 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(part)*100/float64(total))
}
