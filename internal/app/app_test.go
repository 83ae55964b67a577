package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/nishant0581/metacount/internal/config"
	"github.com/nishant0581/metacount/internal/counter"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_OverridesWinOverFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	path := writeConfig(t, dir, `
storage_backend = "memory"
auto_increment_interval = "2s"
`)

	v := viper.New()
	v.Set("auto_increment_interval", "250ms")

	cfg, err := LoadConfig(Options{ConfigPath: path, Overrides: v})
	require.NoError(t, err)
	require.Equal(t, config.BackendMemory, cfg.StorageBackend)
	require.Equal(t, 250*time.Millisecond, cfg.AutoIncrementInterval)
}

func TestLoadConfig_InvalidFileFails(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `storage_backend = [`)

	_, err := LoadConfig(Options{ConfigPath: path})
	require.ErrorContains(t, err, "load config")
}

func TestLoadConfig_InvalidOverrideFails(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	v := viper.New()
	v.Set("storage_backend", "redis")

	_, err := LoadConfig(Options{ConfigPath: filepath.Join(dir, "missing.toml"), Overrides: v})
	require.ErrorContains(t, err, "apply overrides")
}

func TestOpenPersistence_Backends(t *testing.T) {
	dir := t.TempDir()
	seed := []counter.Counter{counter.New("a", time.UnixMilli(1_700_000_000_000))}

	for _, cfg := range []config.Config{
		{StorageBackend: config.BackendMemory},
		{StorageBackend: config.BackendFile, StoragePath: filepath.Join(dir, "counters.json")},
		{StorageBackend: config.BackendSQLite, StoragePath: filepath.Join(dir, "counters.db"), StorageKey: "metaCounters"},
	} {
		t.Run(cfg.StorageBackend, func(t *testing.T) {
			adapter, closeFn, err := OpenPersistence(cfg, nil)
			require.NoError(t, err)
			t.Cleanup(func() { require.NoError(t, closeFn()) })

			require.Empty(t, adapter.Load())
			require.NoError(t, adapter.Save(seed))
			got := adapter.Load()
			require.Len(t, got, 1)
			require.Equal(t, "a", got[0].ID)
		})
	}
}

func TestOpenPersistence_UnknownBackend(t *testing.T) {
	_, closeFn, err := OpenPersistence(config.Config{StorageBackend: "redis"}, nil)
	require.Error(t, err)
	require.NotNil(t, closeFn)
	require.NoError(t, closeFn())
}

func TestListCounters_ReadsPersistedFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	store := filepath.Join(dir, "data", "counters.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(store), 0o755))
	require.NoError(t, os.WriteFile(store, []byte(`[
  {"id":"x","name":"Water","count":4,"step":2,"min":null,"max":8,"notes":"",
   "history":[{"value":4,"timestamp":1700000000000}],
   "isAutoIncrementing":true,"autoIncrementIntervalId":7}
]`), 0o600))
	path := writeConfig(t, dir, `storage_path = "`+store+`"`)

	got, err := ListCounters(context.Background(), Options{ConfigPath: path})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Water", got[0].Name)
	require.Equal(t, 4, got[0].Count)
	require.False(t, got[0].AutoIncrementing)
	require.NotNil(t, got[0].Max)
	require.Equal(t, 8, *got[0].Max)
}

func TestListCounters_MissingSQLiteIsEmpty(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	db := filepath.Join(dir, "none.db")
	path := writeConfig(t, dir, `
storage_backend = "sqlite"
storage_path = "`+db+`"
`)

	got, err := ListCounters(context.Background(), Options{ConfigPath: path})
	require.NoError(t, err)
	require.Empty(t, got)
	_, err = os.Stat(db)
	require.True(t, os.IsNotExist(err), "listing must not create the database")
}

func TestStartMarket_RefreshBypassesCache(t *testing.T) {
	var coinHits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/coins/markets" {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		coinHits.Add(1)
		_, _ = w.Write([]byte(`[{"id":"bitcoin","symbol":"btc","name":"Bitcoin","current_price":1,"market_cap_rank":1}]`))
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := config.Default()
	cfg.CoinGeckoURL = srv.URL
	cfg.BlockchairURL = srv.URL
	cfg.MarketPollInterval = time.Hour
	logger := zerolog.Nop()

	store, refresh, err := startMarket(ctx, cfg, &logger)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return len(store.Snapshot().Coins) == 1 }, 2*time.Second, 5*time.Millisecond)
	before := coinHits.Load()

	refresh(ctx)
	require.Equal(t, before+1, coinHits.Load())
	snap := store.Snapshot()
	require.Len(t, snap.Coins, 1, "coins survive the failing fee endpoints")
	require.Error(t, snap.LastError)
}
