package shared

import (
	"sync"
	"time"
)

// Clock is an abstraction for time operations, allowing time to be mocked in tests
type Clock interface {
	Now() time.Time
}

// Advancer is implemented by clocks that only move when the simulation ticks
type Advancer interface {
	Advance(d time.Duration)
}

// RealClock implements Clock using the actual system time
type RealClock struct{}

// Now returns the current system time in UTC
func (r *RealClock) Now() time.Time {
	return time.Now().UTC()
}

// NewRealClock creates a RealClock instance
func NewRealClock() Clock {
	return &RealClock{}
}

// MockClock implements Clock with a controllable time for testing
type MockClock struct {
	CurrentTime time.Time
}

// Now returns the mock's current time
func (m *MockClock) Now() time.Time {
	return m.CurrentTime
}

// Advance moves the mock clock forward by the given duration
func (m *MockClock) Advance(d time.Duration) {
	m.CurrentTime = m.CurrentTime.Add(d)
}

// SetTime sets the mock clock to a specific time
func (m *MockClock) SetTime(t time.Time) {
	m.CurrentTime = t
}

// NewMockClock creates a MockClock starting at the given time
// If zero time is provided, starts at current time
func NewMockClock(startTime time.Time) *MockClock {
	if startTime.IsZero() {
		startTime = time.Now()
	}
	return &MockClock{CurrentTime: startTime}
}

// SimulationEpoch is the zero point of simulated time.
var SimulationEpoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// TickClock is the clock of a headless simulation: time only moves when the
// host loop advances it, so construction and training timers follow ticks
// rather than wall time.
type TickClock struct {
	mu  sync.RWMutex
	now time.Time
}

// NewTickClock creates a TickClock positioned at SimulationEpoch
func NewTickClock() *TickClock {
	return &TickClock{now: SimulationEpoch}
}

// Now returns the current simulated time
func (c *TickClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

// Advance moves simulated time forward; negative durations are ignored
func (c *TickClock) Advance(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// SetTime restores simulated time, e.g. from a save
func (c *TickClock) SetTime(t time.Time) {
	if t.IsZero() {
		t = SimulationEpoch
	}
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// Elapsed returns how much simulated time has passed since the epoch
func (c *TickClock) Elapsed() time.Duration {
	return c.Now().Sub(SimulationEpoch)
}
