package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.StorageBackend != BackendFile {
		t.Fatalf("StorageBackend = %q, want %q", cfg.StorageBackend, BackendFile)
	}
	if cfg.StoragePath != filepath.Join(home, ".local/share/metacount/counters.json") {
		t.Fatalf("StoragePath = %q, want counters.json under HOME", cfg.StoragePath)
	}
	if cfg.StorageKey != "metaCounters" {
		t.Fatalf("StorageKey = %q, want metaCounters", cfg.StorageKey)
	}
	if cfg.AutoIncrementInterval != time.Second || cfg.MarketPollInterval != 30*time.Second {
		t.Fatalf("intervals = %v/%v, want 1s/30s", cfg.AutoIncrementInterval, cfg.MarketPollInterval)
	}
	if cfg.VsCurrency != "usd" || cfg.TopCoins != 5 {
		t.Fatalf("market = %q/%d, want usd/5", cfg.VsCurrency, cfg.TopCoins)
	}
	if !strings.HasPrefix(cfg.LogFile, home) {
		t.Fatalf("LogFile = %q, want it under HOME %q", cfg.LogFile, home)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := writeConfig(t, `
storage_backend = "  SQLite "
storage_key = " counters-v2 "
auto_increment_interval = "250ms"
market_poll_interval = "1m"
vs_currency = " EUR "
coingecko_url = "http://127.0.0.1:9000"
top_coins = 10
log_file = "~/logs/metacount.log"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.StorageBackend != BackendSQLite {
		t.Fatalf("StorageBackend = %q, want sqlite", cfg.StorageBackend)
	}
	if !strings.HasSuffix(cfg.StoragePath, "counters.db") {
		t.Fatalf("StoragePath = %q, want the sqlite default", cfg.StoragePath)
	}
	if cfg.StorageKey != "counters-v2" {
		t.Fatalf("StorageKey = %q", cfg.StorageKey)
	}
	if cfg.AutoIncrementInterval != 250*time.Millisecond || cfg.MarketPollInterval != time.Minute {
		t.Fatalf("intervals = %v/%v", cfg.AutoIncrementInterval, cfg.MarketPollInterval)
	}
	if cfg.VsCurrency != "eur" || cfg.TopCoins != 10 {
		t.Fatalf("market = %q/%d", cfg.VsCurrency, cfg.TopCoins)
	}
	if cfg.CoinGeckoURL != "http://127.0.0.1:9000" || cfg.BlockchairURL != defaultBlockchair {
		t.Fatalf("urls = %q/%q", cfg.CoinGeckoURL, cfg.BlockchairURL)
	}
	if cfg.LogFile != filepath.Join(home, "logs/metacount.log") {
		t.Fatalf("LogFile = %q", cfg.LogFile)
	}
}

func TestLoad_MemoryBackendHasNoPath(t *testing.T) {
	cfg, err := Load(writeConfig(t, `storage_backend = "memory"`))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.StoragePath != "" {
		t.Fatalf("StoragePath = %q, want empty", cfg.StoragePath)
	}
}

func TestLoad_TopCoinsIsCapped(t *testing.T) {
	cfg, err := Load(writeConfig(t, `top_coins = 9000`))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.TopCoins != maxTopCoins {
		t.Fatalf("TopCoins = %d, want %d", cfg.TopCoins, maxTopCoins)
	}
}

func TestLoad_InvalidValuesFail(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"toml", `storage_backend = [`, "parse config"},
		{"backend", `storage_backend = "redis"`, "storage_backend"},
		{"duration", `auto_increment_interval = "soon"`, "auto_increment_interval"},
		{"negative duration", `market_poll_interval = "-5s"`, "must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatalf("Load returned nil error, want %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Load error = %q, want it to mention %q", err.Error(), tt.want)
			}
		})
	}
}

func TestApplyOverrides_FlagsAndEnvWin(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("METACOUNT_VS_CURRENCY", "GBP")

	cfg, err := Load(writeConfig(t, `
vs_currency = "eur"
market_poll_interval = "1m"
storage_backend = "sqlite"
`))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	v := viper.New()
	v.SetEnvPrefix("metacount")
	for _, key := range Keys {
		if err := v.BindEnv(key); err != nil {
			t.Fatalf("BindEnv(%s): %v", key, err)
		}
	}
	v.Set("market_poll_interval", "5s")
	v.Set("storage_backend", "memory")

	got, err := ApplyOverrides(cfg, v)
	if err != nil {
		t.Fatalf("ApplyOverrides returned error: %v", err)
	}
	if got.VsCurrency != "gbp" {
		t.Fatalf("VsCurrency = %q, want gbp from env", got.VsCurrency)
	}
	if got.MarketPollInterval != 5*time.Second {
		t.Fatalf("MarketPollInterval = %v, want 5s", got.MarketPollInterval)
	}
	if got.StorageBackend != BackendMemory || got.StoragePath != "" {
		t.Fatalf("storage = %q/%q, want memory with no path", got.StorageBackend, got.StoragePath)
	}
	if got.AutoIncrementInterval != time.Second {
		t.Fatalf("AutoIncrementInterval = %v, want untouched default", got.AutoIncrementInterval)
	}
}

func TestApplyOverrides_NilViperKeepsConfig(t *testing.T) {
	cfg := Default()
	got, err := ApplyOverrides(cfg, nil)
	if err != nil {
		t.Fatalf("ApplyOverrides returned error: %v", err)
	}
	if got != cfg {
		t.Fatalf("ApplyOverrides(nil) = %#v, want %#v", got, cfg)
	}
}

func TestApplyOverrides_RejectsBadValues(t *testing.T) {
	v := viper.New()
	v.Set("auto_increment_interval", "fast")
	if _, err := ApplyOverrides(Default(), v); err == nil {
		t.Fatal("ApplyOverrides returned nil error for a bad duration")
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	if want := filepath.Join(home, "a/b"); got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}
