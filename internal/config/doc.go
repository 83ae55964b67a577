// Package config loads MetaCount settings.
//
// # Sources
//
// Settings come from a TOML file, by default ~/.config/metacount/config.toml.
// A missing file is not an error; every key has a default. The command line
// layer then applies flags and METACOUNT_* environment variables through
// ApplyOverrides, so precedence is flag, then environment, then file, then
// default.
//
// # Keys
//
//	storage_backend          file | sqlite | memory (default file)
//	storage_path             defaults to ~/.local/share/metacount/counters.{json,db}
//	storage_key              slot key, default metaCounters
//	auto_increment_interval  duration, default 1s
//	market_poll_interval     duration, default 30s
//	vs_currency              default usd
//	coingecko_url            default https://api.coingecko.com
//	blockchair_url           default https://api.blockchair.com
//	top_coins                default 5, at most 250
//	log_file                 default ~/.local/state/metacount/metacount.log
//
// Paths starting with ~ are expanded against the user's home directory and
// made absolute. Invalid values (unknown backend, unparseable or
// non-positive durations, malformed TOML) are reported as errors.
package config
