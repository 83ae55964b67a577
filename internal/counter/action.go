package counter

// Action is the closed set of transitions the reducer understands.
type Action interface {
	action()
}

// LoadCounters replaces the whole collection.
type LoadCounters struct{ Counters []Counter }

// AddCounter appends a freshly built counter.
type AddCounter struct{}

// RemoveCounter drops the counter with the given id.
type RemoveCounter struct{ ID string }

// Increment adds the step, clamped to Max.
type Increment struct{ ID string }

// Decrement subtracts the step, clamped to Min.
type Decrement struct{ ID string }

// Reset sets the value to zero.
type Reset struct{ ID string }

// SetStep sets the step size; values below 1 become 1.
type SetStep struct {
	ID   string
	Step int
}

// SetMin sets or clears the lower bound without clamping the current value.
type SetMin struct {
	ID  string
	Min *int
}

// SetMax sets or clears the upper bound without clamping the current value.
type SetMax struct {
	ID  string
	Max *int
}

// SetName renames a counter.
type SetName struct {
	ID   string
	Name string
}

// SetNotes replaces a counter's notes.
type SetNotes struct {
	ID    string
	Notes string
}

// StartAutoIncrement records a timer the coordinator has already scheduled.
type StartAutoIncrement struct {
	ID     string
	Handle TimerHandle
}

// PauseAutoIncrement clears the auto flag and handle. The timer must already be cancelled.
type PauseAutoIncrement struct{ ID string }

// StopAutoIncrement pauses and resets the value to zero.
type StopAutoIncrement struct{ ID string }

// Undo drops the latest history entry and restores the one before it.
type Undo struct{ ID string }

// Tick is one firing of an auto-increment timer. It increments only while
// the counter is auto-incrementing under the same handle.
type Tick struct {
	ID     string
	Handle TimerHandle
}

func (LoadCounters) action()       {}
func (AddCounter) action()         {}
func (RemoveCounter) action()      {}
func (Increment) action()          {}
func (Decrement) action()          {}
func (Reset) action()              {}
func (SetStep) action()            {}
func (SetMin) action()             {}
func (SetMax) action()             {}
func (SetName) action()            {}
func (SetNotes) action()           {}
func (StartAutoIncrement) action() {}
func (PauseAutoIncrement) action() {}
func (StopAutoIncrement) action()  {}
func (Undo) action()               {}
func (Tick) action()               {}

// TargetID returns the counter id an action addresses, or "" for
// collection-wide actions.
func TargetID(a Action) string {
	switch a := a.(type) {
	case RemoveCounter:
		return a.ID
	case Increment:
		return a.ID
	case Decrement:
		return a.ID
	case Reset:
		return a.ID
	case SetStep:
		return a.ID
	case SetMin:
		return a.ID
	case SetMax:
		return a.ID
	case SetName:
		return a.ID
	case SetNotes:
		return a.ID
	case StartAutoIncrement:
		return a.ID
	case PauseAutoIncrement:
		return a.ID
	case StopAutoIncrement:
		return a.ID
	case Undo:
		return a.ID
	case Tick:
		return a.ID
	default:
		return ""
	}
}
