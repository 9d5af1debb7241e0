package inspector

import (
	"sync"

	"github.com/penwyp/go-comet/internal/core/model"
)

// StateManager holds the interaction and connection state. The orchestrator
// loop writes it; renderers and commands may read it from other goroutines.
type StateManager struct {
	mu sync.RWMutex

	interactionState model.InteractionState
	connection       model.Connection
}

// NewStateManager creates a new StateManager instance
func NewStateManager(state model.InteractionState) *StateManager {
	return &StateManager{interactionState: state}
}

// GetInteractionState returns a copy of the interaction state
func (sm *StateManager) GetInteractionState() model.InteractionState {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.interactionState
}

// UpdateInteractionState updates specific fields of interaction state
func (sm *StateManager) UpdateInteractionState(updateFunc func(*model.InteractionState)) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	updateFunc(&sm.interactionState)
}

// GetConnection returns the current connection
func (sm *StateManager) GetConnection() model.Connection {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.connection
}

// UpdateConnection updates specific fields of the connection
func (sm *StateManager) UpdateConnection(updateFunc func(*model.Connection)) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	updateFunc(&sm.connection)
}
