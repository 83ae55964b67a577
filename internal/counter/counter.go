package counter

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gitlab.com/tozd/go/errors"
)

// HistoryCapacity is the size of the sliding history window kept per counter.
const HistoryCapacity = 20

// DefaultName is the display name given to freshly created counters.
const DefaultName = "New Counter"

// ErrInvalidNumber is returned by the parse helpers for non-integer input.
var ErrInvalidNumber = errors.Base("invalid number")

// TimerHandle identifies a running auto-increment timer. Zero means no timer.
type TimerHandle uint64

// HistoryEntry records one value the counter held and when.
type HistoryEntry struct {
	Value     int
	Timestamp time.Time
}

// Counter is one independently tracked bounded integer.
type Counter struct {
	ID               string
	Name             string
	Count            int
	Step             int
	Min              *int
	Max              *int
	Notes            string
	History          []HistoryEntry
	AutoIncrementing bool
	Timer            TimerHandle
}

// New builds a counter with default fields and a single history entry at 0.
func New(id string, now time.Time) Counter {
	return Counter{
		ID:      id,
		Name:    DefaultName,
		Count:   0,
		Step:    1,
		History: []HistoryEntry{{Value: 0, Timestamp: now}},
	}
}

// NewCounter builds a counter with a random identifier stamped with the wall clock.
func NewCounter() Counter {
	return New(uuid.NewString(), time.Now())
}

// Clone returns a deep copy that shares no memory with c.
func (c Counter) Clone() Counter {
	out := c
	out.Min = cloneInt(c.Min)
	out.Max = cloneInt(c.Max)
	if c.History != nil {
		out.History = make([]HistoryEntry, len(c.History))
		copy(out.History, c.History)
	}
	return out
}

// CloneAll deep-copies a counter list.
func CloneAll(counters []Counter) []Counter {
	if counters == nil {
		return nil
	}
	out := make([]Counter, len(counters))
	for i, c := range counters {
		out[i] = c.Clone()
	}
	return out
}

// Find returns the index of the counter with the given id, or -1.
func Find(counters []Counter, id string) int {
	for i := range counters {
		if counters[i].ID == id {
			return i
		}
	}
	return -1
}

// CanIncrement reports whether an increment would move the value.
func (c Counter) CanIncrement() bool {
	return c.Max == nil || c.Count < *c.Max
}

// CanDecrement reports whether a decrement would move the value.
func (c Counter) CanDecrement() bool {
	return c.Min == nil || c.Count > *c.Min
}

// Progress maps the current value onto 0..100 for display. Both bounds set
// uses [min,max]; only max set uses [0,max]; otherwise [0,100].
func (c Counter) Progress() float64 {
	var pct float64
	switch {
	case c.Min != nil && c.Max != nil && *c.Max > *c.Min:
		pct = float64(c.Count-*c.Min) / float64(*c.Max-*c.Min) * 100
	case c.Max != nil && *c.Max != 0 && (c.Min == nil || *c.Min == 0):
		pct = float64(c.Count) / float64(*c.Max) * 100
	default:
		pct = float64(c.Count)
	}
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// ParseStep parses a step size. Values below 1 become 1.
func ParseStep(raw string) (int, error) {
	trimmed := strings.TrimSpace(raw)
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, errors.Errorf("step %q: %w", trimmed, ErrInvalidNumber)
	}
	if n < 1 {
		n = 1
	}
	return n, nil
}

// ParseBound parses an optional bound. Empty input means unset.
func ParseBound(raw string) (*int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return nil, errors.Errorf("bound %q: %w", trimmed, ErrInvalidNumber)
	}
	return &n, nil
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}
