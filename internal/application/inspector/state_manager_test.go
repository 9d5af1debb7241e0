package inspector

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/penwyp/go-comet/internal/core/chart"
	"github.com/penwyp/go-comet/internal/core/model"
)

func TestStateManagerConcurrentAccess(t *testing.T) {
	sm := NewStateManager(model.NewInteractionState(chart.BoardOverview, chart.DefaultZoom))

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			sm.UpdateInteractionState(func(s *model.InteractionState) {
				s.Zoom = s.Zoom.Increment()
			})
		}()
		go func() {
			defer wg.Done()
			_ = sm.GetInteractionState()
			_ = sm.GetConnection()
		}()
	}
	wg.Wait()

	assert.Equal(t, chart.Zoom(10), sm.GetInteractionState().Zoom)
}

func TestStateManagerConnection(t *testing.T) {
	sm := NewStateManager(model.InteractionState{})

	sm.UpdateConnection(func(c *model.Connection) {
		c.Status = model.StatusConnected
		c.Name = "todos"
	})

	conn := sm.GetConnection()
	assert.Equal(t, model.StatusConnected, conn.Status)
	assert.Equal(t, "todos", conn.Label())
}
