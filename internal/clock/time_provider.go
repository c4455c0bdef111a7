package clock

import (
	"sync"
	"time"
)

// TimeProvider supplies monotonic wall time
type TimeProvider interface {
	Now() time.Time
}

// SystemTime reads the real clock
type SystemTime struct{}

// Now returns the current time with its monotonic reading
func (SystemTime) Now() time.Time { return time.Now() }

// ManualTime is a TimeProvider that only moves when told to
type ManualTime struct {
	mu  sync.RWMutex
	now time.Time
}

// NewManualTime creates a manual provider starting at start
func NewManualTime(start time.Time) *ManualTime {
	return &ManualTime{now: start}
}

// Now returns the current manual time
func (m *ManualTime) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.now
}

// Advance moves the manual time forward by d
func (m *ManualTime) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}
