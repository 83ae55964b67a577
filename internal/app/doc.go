// Package app is the composition root for MetaCount.
//
// # Startup
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       │
//	       ├─────> LoadConfig()        config.toml, then flag/env overrides
//	       ├─────> logging.Setup()     zerolog file sink
//	       ├─────> OpenPersistence()   file / sqlite / memory slot + adapter
//	       ├─────> state.New()         load, seed, start dispatch loop
//	       ├─────> startMarket()       cached client + background poller
//	       └─────> ui.Run()            TUI (blocks)
//
// On exit the deferred calls run in reverse: the poller context is
// cancelled, the Manager is closed (every auto-increment timer is
// stopped), the storage handle is released and the log file closed.
//
// # Error Handling
//
// Fatal (returned from Run): an unreadable or invalid config file, an
// invalid override, an unopenable log file or sqlite database.
//
// Recoverable (logged): missing or corrupt stored counters (the app starts
// with a fresh default counter), save failures, market poll failures.
//
// # Listing
//
// ListCounters reads the persisted collection through the same adapter
// without starting the Manager, for the `metacount list` subcommand.
package app
