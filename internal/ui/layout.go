package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which compact mode is used.
	LayoutCompactWidth = 100

	// LayoutExtraWideWidth is the threshold for extra-wide layouts.
	LayoutExtraWideWidth = 160
)

// Display limits.
const (
	// HistoryDisplayLimit is how many history entries the detail pane lists.
	HistoryDisplayLimit = 10

	// ProgressBarWidth is the maximum width of the bounds progress bar.
	ProgressBarWidth = 40
)

// Timing constants.
const (
	// DefaultUIInterval is the default UI refresh interval.
	DefaultUIInterval = time.Second

	// StatusMessageTTL is how long a transient status message stays visible.
	StatusMessageTTL = 4 * time.Second
)
