package chart

import (
	"fmt"
	"slices"
	"strings"

	"github.com/penwyp/go-comet/internal/core/beacon"
	"github.com/penwyp/go-comet/internal/core/timeline"
)

// Board is a named group of charts shown together.
type Board int

const (
	BoardOverview Board = iota
	BoardUpdate
	BoardPresent
	BoardCustom
)

// Boards lists every board in display order.
var Boards = []Board{BoardOverview, BoardUpdate, BoardPresent, BoardCustom}

func (b Board) String() string {
	switch b {
	case BoardOverview:
		return "overview"
	case BoardUpdate:
		return "update"
	case BoardPresent:
		return "present"
	case BoardCustom:
		return "custom"
	default:
		return fmt.Sprintf("board(%d)", int(b))
	}
}

// Next cycles to the following board.
func (b Board) Next() Board {
	return Boards[(int(b)+1)%len(Boards)]
}

// ParseBoard resolves a board from its name.
func ParseBoard(s string) (Board, error) {
	for _, b := range Boards {
		if strings.EqualFold(s, b.String()) {
			return b, nil
		}
	}
	return BoardOverview, fmt.Errorf("unknown board: %q", s)
}

// Catalog remembers which optional stages have been reported so boards only
// show charts that can hold data.
type Catalog struct {
	primitives map[beacon.Primitive]bool
	custom     []string
}

// Observe records the stage of a finished span.
func (c *Catalog) Observe(event beacon.Event) bool {
	finished, ok := event.(beacon.SpanFinished)
	if !ok || finished.Span == nil {
		return false
	}

	stage := finished.Span.Stage()
	switch stage.Kind {
	case beacon.StagePrepare, beacon.StageRender:
		if c.primitives[stage.Primitive] {
			return false
		}
		if c.primitives == nil {
			c.primitives = make(map[beacon.Primitive]bool)
		}
		c.primitives[stage.Primitive] = true
		return true
	case beacon.StageCustom:
		i, found := slices.BinarySearch(c.custom, stage.Name)
		if found {
			return false
		}
		c.custom = slices.Insert(c.custom, i, stage.Name)
		return true
	default:
		return false
	}
}

// Rebuild recreates the catalog from every event in the timeline.
func (c *Catalog) Rebuild(tl *timeline.Timeline) {
	c.Reset()
	for event := range tl.Seek(timeline.Live()).All() {
		c.Observe(event)
	}
}

// Reset forgets every seen stage.
func (c *Catalog) Reset() {
	c.primitives = nil
	c.custom = nil
}

// Seen reports whether primitive has been prepared or rendered.
func (c *Catalog) Seen(primitive beacon.Primitive) bool {
	return c.primitives[primitive]
}

// CustomNames returns the custom span names seen, sorted.
func (c *Catalog) CustomNames() []string {
	return slices.Clone(c.custom)
}

// Charts returns the charts of a board.
func (b Board) Charts(catalog *Catalog) []Chart {
	switch b {
	case BoardOverview:
		return []Chart{
			Performance(beacon.UpdateStage),
			Performance(beacon.ViewStage),
			Performance(beacon.LayoutStage),
			Performance(beacon.InteractStage),
			Performance(beacon.DrawStage),
			Performance(beacon.PresentStage),
		}
	case BoardUpdate:
		return []Chart{
			Performance(beacon.UpdateStage),
			TasksSpawned(),
			SubscriptionsAlive(),
			MessageRate(),
			MessageLog(),
		}
	case BoardPresent:
		charts := []Chart{Performance(beacon.PresentStage)}
		for _, primitive := range beacon.Primitives {
			switch primitive {
			case beacon.Triangle, beacon.Shader, beacon.Image:
				if !catalog.Seen(primitive) {
					continue
				}
			}
			charts = append(charts,
				Performance(beacon.PrepareStage(primitive)),
				Performance(beacon.RenderStage(primitive)),
			)
		}
		return charts
	case BoardCustom:
		names := catalog.CustomNames()
		charts := make([]Chart, 0, len(names))
		for _, name := range names {
			charts = append(charts, Performance(beacon.CustomStage(name)))
		}
		return charts
	default:
		return nil
	}
}
