// Package market fetches cryptocurrency market data for the dashboard view.
//
// Client talks to two public REST APIs: CoinGecko for coin prices and
// global market statistics, Blockchair for per-chain statistics such as the
// bitcoin fee rate and the ethereum gas price. CachedFetcher puts a TTL
// cache in front of any Fetcher. StartPoller refreshes a Store in the
// background and backs off exponentially while the APIs are failing; the
// UI only ever reads Store snapshots.
//
// A non-2xx response is always an error. Callers keep showing the last good
// snapshot and can check Snapshot.IsOffline.
package market
