package layout

import (
	"fmt"
	"io"
	"strings"

	"github.com/penwyp/go-comet/internal/core/model"
)

// MinimalLayoutStrategy prints a single status line
type MinimalLayoutStrategy struct {
	BaseStrategy
}

func (s *MinimalLayoutStrategy) GetName() string {
	return "Minimal Dashboard"
}

func (s *MinimalLayoutStrategy) Render(w io.Writer, frame model.Frame, width int) {
	parts := []string{s.ConnectionInfo(frame), s.PlayheadInfo(frame)}
	for _, summary := range frame.Summaries {
		if summary.Empty() || summary.Last == "" {
			continue
		}
		parts = append(parts, summary.Title+" "+summary.Last)
	}

	fmt.Fprintln(w, strings.Join(parts, " | "))
}
