// Package autoinc turns start/pause/stop intents into recurring timer
// lifecycles and feeds timer ticks back through the reducer pipeline.
//
// The Coordinator is the only owner of timers. It creates a timer first and
// then reports its handle with a StartAutoIncrement action, so the reducer
// never schedules anything itself. Every tick is dispatched as a
// counter.Tick carrying the handle it was created under; ticks from a
// cancelled timer no longer match and are dropped by the reducer.
//
// Cancelling a timer that is not running is a silent no-op. StopAll is the
// teardown hook and must be called before the owning process exits.
package autoinc
