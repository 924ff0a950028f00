package clock

import (
	"sync"
	"time"

	"github.com/SscSPs/core_banking_ledger/internal/core/ports"
)

// System reads the wall clock in UTC.
type System struct{}

var _ ports.Clock = System{}

func (System) Now() time.Time { return time.Now().UTC() }

func (s System) Today() time.Time { return truncate(s.Now()) }

// Fixed is a settable clock for tests and replays.
type Fixed struct {
	mu  sync.Mutex
	now time.Time
}

var _ ports.Clock = (*Fixed)(nil)

// NewFixed returns a clock frozen at t.
func NewFixed(t time.Time) *Fixed {
	return &Fixed{now: t.UTC()}
}

func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fixed) Today() time.Time { return truncate(f.Now()) }

// Set moves the clock to t.
func (f *Fixed) Set(t time.Time) {
	f.mu.Lock()
	f.now = t.UTC()
	f.mu.Unlock()
}

// AddDays moves the clock forward by n days.
func (f *Fixed) AddDays(n int) {
	f.mu.Lock()
	f.now = f.now.AddDate(0, 0, n)
	f.mu.Unlock()
}

func truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
