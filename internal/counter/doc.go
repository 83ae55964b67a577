// Package counter defines the counter entity and the pure reducer that owns
// every state transition for a collection of counters.
//
// # Overview
//
// A Counter is a bounded integer with a step size, free-text notes, a
// capacity-limited history of past values, and an auto-increment flag paired
// with an opaque TimerHandle. The package never schedules or cancels timers:
// the handle is data supplied by whoever created the timer.
//
// # Actions
//
// Action is a sealed interface. Each transition is its own struct carrying
// exactly the fields it needs:
//
//	LoadCounters{Counters}      replace the collection
//	AddCounter{}                append a new counter
//	RemoveCounter{ID}           drop a counter
//	Increment{ID}, Decrement{ID}, Reset{ID}
//	SetStep{ID, Step}, SetMin{ID, Min}, SetMax{ID, Max}
//	SetName{ID, Name}, SetNotes{ID, Notes}
//	StartAutoIncrement{ID, Handle}, PauseAutoIncrement{ID}, StopAutoIncrement{ID}
//	Undo{ID}
//	Tick{ID, Handle}            one timer firing
//
// # Invariants
//
//   - Step is always >= 1.
//   - Increment clamps to Max and Decrement clamps to Min. SetMin and SetMax
//     do not clamp the stored value.
//   - History holds at most HistoryCapacity entries; the oldest go first.
//   - Undo with a single history entry does nothing.
//   - Unknown ids and unknown actions return the input unchanged.
//
// # Ticks
//
// A Tick increments only while the counter is auto-incrementing under the
// same handle. A tick that was already queued when its timer was paused or
// stopped is therefore absorbed. Increment, by contrast, always applies.
//
// # Purity
//
// Reducer takes its clock and id generator as fields, so Reduce is a
// function of (counters, action, Now, NewID). Inputs are never mutated.
package counter
