package testutil

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// FixtureNow is the default instant used by fixtures and FixedClock.
var FixtureNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

// FixedClock returns the same instant until moved with Advance or Set.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{now: t}
}

func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// SeqIDs hands out predictable IDs ("<prefix>-0001", ...). Safe for
// concurrent use.
type SeqIDs struct {
	Prefix string
	n      atomic.Int64
}

func (s *SeqIDs) NewID() string {
	prefix := s.Prefix
	if prefix == "" {
		prefix = "id"
	}
	return fmt.Sprintf("%s-%04d", prefix, s.n.Add(1))
}
