package counter

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Reducer maps (counters, action) to the next counters. Time and identity
// are injected so that a transition is fully determined by its inputs.
type Reducer struct {
	Now   func() time.Time
	NewID func() string
}

// DefaultReducer uses the wall clock and random v4 identifiers.
var DefaultReducer = Reducer{Now: time.Now, NewID: uuid.NewString}

// Reduce applies action with DefaultReducer.
func Reduce(counters []Counter, action Action) []Counter {
	return DefaultReducer.Reduce(counters, action)
}

// Reduce returns the collection that results from applying action. The
// input is never modified; when nothing changes the input slice itself is
// returned.
func (r Reducer) Reduce(counters []Counter, action Action) []Counter {
	switch a := action.(type) {
	case LoadCounters:
		return a.Counters
	case AddCounter:
		id := r.newID()
		for Find(counters, id) >= 0 {
			id = r.newID()
		}
		next := make([]Counter, len(counters), len(counters)+1)
		copy(next, counters)
		return append(next, New(id, r.now()))
	case RemoveCounter:
		idx := Find(counters, a.ID)
		if idx < 0 {
			return counters
		}
		next := make([]Counter, 0, len(counters)-1)
		next = append(next, counters[:idx]...)
		return append(next, counters[idx+1:]...)
	case nil:
		return counters
	}

	idx := Find(counters, TargetID(action))
	if idx < 0 {
		return counters
	}
	updated, changed := r.apply(counters[idx], action)
	if !changed {
		return counters
	}
	next := make([]Counter, len(counters))
	copy(next, counters)
	next[idx] = updated
	return next
}

func (r Reducer) apply(c Counter, action Action) (Counter, bool) {
	switch a := action.(type) {
	case Increment:
		return r.increment(c), true
	case Tick:
		if !c.AutoIncrementing || c.Timer != a.Handle {
			return c, false
		}
		return r.increment(c), true
	case Decrement:
		next := math.MinInt
		if c.Count >= math.MinInt+c.Step {
			next = c.Count - c.Step
		}
		if c.Min != nil && next < *c.Min {
			next = *c.Min
		}
		return r.record(c, next), true
	case Reset:
		return r.record(c, 0), true
	case SetStep:
		c.Step = max(1, a.Step)
		return c, true
	case SetMin:
		c.Min = cloneInt(a.Min)
		return c, true
	case SetMax:
		c.Max = cloneInt(a.Max)
		return c, true
	case SetName:
		c.Name = a.Name
		return c, true
	case SetNotes:
		c.Notes = a.Notes
		return c, true
	case StartAutoIncrement:
		c.AutoIncrementing = true
		c.Timer = a.Handle
		return c, true
	case PauseAutoIncrement:
		c.AutoIncrementing = false
		c.Timer = 0
		return c, true
	case StopAutoIncrement:
		c.AutoIncrementing = false
		c.Timer = 0
		return r.record(c, 0), true
	case Undo:
		if len(c.History) <= 1 {
			return c, false
		}
		history := make([]HistoryEntry, len(c.History)-1)
		copy(history, c.History)
		c.History = history
		c.Count = history[len(history)-1].Value
		return c, true
	default:
		return c, false
	}
}

// increment saturates at math.MaxInt before clamping so a huge step can
// never wrap past the upper bound.
func (r Reducer) increment(c Counter) Counter {
	next := math.MaxInt
	if c.Count <= math.MaxInt-c.Step {
		next = c.Count + c.Step
	}
	if c.Max != nil && next > *c.Max {
		next = *c.Max
	}
	return r.record(c, next)
}

// record sets the value and appends it to a fresh history slice, evicting
// from the oldest end once the window is full.
func (r Reducer) record(c Counter, value int) Counter {
	history := c.History
	if len(history) >= HistoryCapacity {
		history = history[len(history)-HistoryCapacity+1:]
	}
	next := make([]HistoryEntry, len(history), len(history)+1)
	copy(next, history)
	c.History = append(next, HistoryEntry{Value: value, Timestamp: r.now()})
	c.Count = value
	return c
}

func (r Reducer) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

func (r Reducer) newID() string {
	if r.NewID == nil {
		return uuid.NewString()
	}
	return r.NewID()
}
