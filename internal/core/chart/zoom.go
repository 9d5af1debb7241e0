package chart

const (
	minZoom = 1
	maxZoom = 10

	// DefaultZoom is the default bar width in cells.
	DefaultZoom Zoom = 2
)

// Zoom is the width of a single bar.
type Zoom uint16

// Increment widens bars, showing fewer datapoints.
func (z Zoom) Increment() Zoom {
	return min(z.normalize()+1, maxZoom)
}

// Decrement narrows bars, showing more datapoints.
func (z Zoom) Decrement() Zoom {
	return max(z.normalize()-1, minZoom)
}

// Visible returns how many bars fit into width cells.
func (z Zoom) Visible(width int) int {
	bar := int(z.normalize())
	if width <= 0 {
		return 1
	}
	return (width + bar - 1) / bar
}

func (z Zoom) normalize() Zoom {
	if z < minZoom {
		return DefaultZoom
	}
	return min(z, maxZoom)
}
