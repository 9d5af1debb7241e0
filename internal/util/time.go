package util

import (
	"fmt"
	"sync"
	"time"
)

// EventTimeLayout is how event timestamps are displayed
const EventTimeLayout = "15:04:05.000"

// TimeProvider converts event timestamps into the display timezone
type TimeProvider struct {
	location *time.Location
	mu       sync.RWMutex
}

var (
	globalTimeProvider *TimeProvider
	timeMu             sync.Mutex
)

// NewTimeProvider returns a provider for timezone
func NewTimeProvider(timezone string) (*TimeProvider, error) {
	provider := &TimeProvider{location: time.Local}
	if err := provider.SetTimezone(timezone); err != nil {
		return nil, err
	}
	return provider, nil
}

// InitializeTimeProvider sets the global display timezone
func InitializeTimeProvider(timezone string) error {
	provider, err := NewTimeProvider(timezone)
	if err != nil {
		return err
	}

	timeMu.Lock()
	defer timeMu.Unlock()
	globalTimeProvider = provider
	return nil
}

// GetTimeProvider returns the global provider, defaulting to Local
func GetTimeProvider() *TimeProvider {
	timeMu.Lock()
	defer timeMu.Unlock()
	if globalTimeProvider == nil {
		globalTimeProvider = &TimeProvider{location: time.Local}
	}
	return globalTimeProvider
}

// SetTimezone updates the timezone of the provider
func (tp *TimeProvider) SetTimezone(timezone string) error {
	loc := time.Local
	if timezone != "" && timezone != "Local" {
		l, err := time.LoadLocation(timezone)
		if err != nil {
			return fmt.Errorf("invalid timezone '%s': %w", timezone, err)
		}
		loc = l
	}

	tp.mu.Lock()
	defer tp.mu.Unlock()
	tp.location = loc
	return nil
}

// Location returns the configured timezone
func (tp *TimeProvider) Location() *time.Location {
	tp.mu.RLock()
	defer tp.mu.RUnlock()
	return tp.location
}

// Format formats t in the configured timezone
func (tp *TimeProvider) Format(t time.Time, layout string) string {
	return t.In(tp.Location()).Format(layout)
}

// FormatEventTime formats an event timestamp, or "-" for the zero time
func (tp *TimeProvider) FormatEventTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return tp.Format(t, EventTimeLayout)
}
