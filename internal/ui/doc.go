// Package ui provides the MetaCount terminal interface, built on Bubble Tea.
//
// # Views
//
//   - Counters: a list of counters beside a detail pane showing the value,
//     a state badge, step and bounds, a bounds progress bar, wrapped notes
//     and the recent history (newest first).
//   - Market: global market stats, network fees and the top coins table,
//     with an offline banner once polls keep failing. Hidden when no
//     market.Store is configured.
//
// # Data flow
//
// The Model never mutates counters itself. Key presses call the Counters
// interface (implemented by *state.Manager), which commits through the
// reducer pipeline. The Model subscribes to committed snapshots with
// pubsub.ListenCmd, so timer ticks show up without polling; after a key
// press it also re-reads ListCounters so the screen updates in the same
// frame. A periodic tick copies the market.Store snapshot.
//
// # Editing
//
// "e" opens a modal editor over one field at a time (name, notes, step,
// min, max). Numeric input is parsed with counter.ParseStep and
// counter.ParseBound; malformed numbers show an error in the modal and the
// stored value is left untouched.
//
// # Preferences
//
// The theme, the active view and the selected counter id are written to
// the prefs file when the theme changes and on quit.
package ui
