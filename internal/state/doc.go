// Package state owns the live counter collection for MetaCount.
//
// # Overview
//
// A Manager is the public facade over the counter reducer. Consumers call
// named operations (Increment, SetMax, StartAutoIncrement, ...) and read
// copies through ListCounters or GetCounterByID. Nothing outside the
// package can replace or mutate the collection directly.
//
// # Pipeline
//
//	facade call ─┐
//	             ├─→ request channel ─→ dispatch goroutine
//	timer tick ──┘                         │
//	                                       ├─ counter.Reducer.Reduce
//	                                       ├─ Persistence.Save
//	                                       └─ Broker.Publish(ChangedEvent)
//
// Every action, whether it comes from a user or from an auto-increment
// timer, is applied by the same goroutine in arrival order, so a tick and a
// click can never interleave inside one transition. A no-op transition is
// neither saved nor published.
//
// Timer lifecycles go through an autoinc.Coordinator. Pause and stop cancel
// the timer before the flag is cleared; a tick that was already queued is
// absorbed by the reducer because its handle no longer matches.
//
// # Lifecycle
//
// New loads persisted counters exactly once. An empty result seeds one
// default counter, which is saved immediately. Close cancels all timers,
// stops the loop and closes subscriber channels; operations after Close are
// ignored and logged at debug level.
//
// Calling any method on a nil or zero-value Manager panics with
// ErrNotInitialized. That is a wiring bug, not a runtime condition.
//
// # Subscriptions
//
// Subscribe returns a channel of pubsub events whose payload is a full copy
// of the committed collection. A subscriber that falls behind only loses
// intermediate snapshots, never the latest one.
package state
