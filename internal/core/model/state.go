package model

import (
	"github.com/penwyp/go-comet/internal/core/chart"
	"github.com/penwyp/go-comet/internal/core/timeline"
)

// InteractionState represents the current UI interaction state
type InteractionState struct {
	Playhead      timeline.Playhead
	Board         chart.Board
	Zoom          chart.Zoom
	ShowHelp      bool
	LayoutStyle   int    // 0: full dashboard, 1: minimal
	StatusMessage string // transient message shown in the footer
	ConfirmDialog *ConfirmDialog
}

// ConfirmDialog represents a yes/no question blocking other keys
type ConfirmDialog struct {
	Title     string
	Message   string
	OnConfirm func()
	OnCancel  func()
}

// NewInteractionState returns the state of a fresh session: live, on board.
func NewInteractionState(board chart.Board, zoom chart.Zoom) InteractionState {
	return InteractionState{
		Playhead: timeline.Live(),
		Board:    board,
		Zoom:     zoom,
	}
}
