package layout

import (
	"io"

	"github.com/penwyp/go-comet/internal/core/model"
)

const (
	StyleFull = iota
	StyleMinimal
	styleCount
)

// LayoutStrategy renders one frame
type LayoutStrategy interface {
	Render(w io.Writer, frame model.Frame, width int)
	GetName() string
}

// GetLayoutStrategy returns the appropriate layout strategy based on the style
func GetLayoutStrategy(layoutStyle int) LayoutStrategy {
	strategies := map[int]LayoutStrategy{
		StyleFull:    &FullLayoutStrategy{},
		StyleMinimal: &MinimalLayoutStrategy{},
	}

	if strategy, exists := strategies[layoutStyle]; exists {
		return strategy
	}

	return &FullLayoutStrategy{}
}

// NextStyle cycles through the layout styles
func NextStyle(layoutStyle int) int {
	return (layoutStyle + 1) % styleCount
}
