package app

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gitlab.com/tozd/go/errors"

	"github.com/nishant0581/metacount/internal/config"
	"github.com/nishant0581/metacount/internal/counter"
	"github.com/nishant0581/metacount/internal/logging"
	"github.com/nishant0581/metacount/internal/market"
	"github.com/nishant0581/metacount/internal/prefs"
	"github.com/nishant0581/metacount/internal/state"
	"github.com/nishant0581/metacount/internal/storage"
	"github.com/nishant0581/metacount/internal/ui"
)

// Options configure the MetaCount application.
type Options struct {
	ConfigPath string
	PrefsPath  string       // empty uses default ~/.config/metacount/prefs.toml
	Overrides  *viper.Viper // flags and METACOUNT_* environment variables
	NoMarket   bool
	Debug      bool
}

// LoadConfig reads the config file and applies flag and environment overrides.
func LoadConfig(opts Options) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, errors.Errorf("load config: %w", err)
	}
	cfg, err = config.ApplyOverrides(cfg, opts.Overrides)
	if err != nil {
		return config.Config{}, errors.Errorf("apply overrides: %w", err)
	}
	return cfg, nil
}

// OpenPersistence builds the storage adapter for the configured backend. The
// returned close function releases backend handles and is never nil.
func OpenPersistence(cfg config.Config, logger *zerolog.Logger) (*storage.Adapter, func() error, error) {
	noop := func() error { return nil }
	switch cfg.StorageBackend {
	case config.BackendMemory:
		return storage.NewAdapter(&storage.MemorySlot{}, logger), noop, nil
	case config.BackendSQLite:
		slot, err := storage.OpenSQLiteSlot(cfg.StoragePath, cfg.StorageKey)
		if err != nil {
			return nil, noop, errors.Errorf("open sqlite storage: %w", err)
		}
		return storage.NewAdapter(slot, logger), slot.Close, nil
	case config.BackendFile, "":
		return storage.NewAdapter(storage.FileSlot{Path: cfg.StoragePath}, logger), noop, nil
	default:
		return nil, noop, errors.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// Run boots the MetaCount TUI until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := LoadConfig(opts)
	if err != nil {
		return err
	}

	logger, ctx, closeLog, err := logging.Setup(ctx, logging.Options{Path: cfg.LogFile, Debug: opts.Debug})
	if err != nil {
		return errors.Errorf("setup logging: %w", err)
	}
	defer func() { _ = closeLog() }()

	logger.Info().
		Str("backend", cfg.StorageBackend).
		Str("path", cfg.StoragePath).
		Dur("auto_increment_interval", cfg.AutoIncrementInterval).
		Bool("market", !opts.NoMarket).
		Msg("starting metacount")

	adapter, closeStore, err := OpenPersistence(cfg, logging.Component(logger, "storage"))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeStore(); cerr != nil {
			logger.Warn().Err(cerr).Msg("close storage failed")
		}
	}()

	mgr := state.New(state.Options{
		Persistence: adapter,
		Interval:    cfg.AutoIncrementInterval,
		Logger:      logging.Component(logger, "state"),
	})
	defer mgr.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		store   *market.Store
		refresh func(context.Context)
	)
	if !opts.NoMarket {
		store, refresh, err = startMarket(ctx, cfg, logging.Component(logger, "market"))
		if err != nil {
			return err
		}
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	userPrefs := prefs.Load(prefsPath)

	err = ui.Run(ui.Options{
		Context:       ctx,
		Counters:      mgr,
		Market:        store,
		RefreshMarket: refresh,
		VsCurrency:    cfg.VsCurrency,
		ThemeName:     userPrefs.Theme,
		PrefsPath:     prefsPath,
		InitialView:   userPrefs.View,
		Selected:      userPrefs.Selected,
		Logger:        logging.Component(logger, "ui"),
	})
	logger.Info().Err(err).Msg("metacount exiting")
	return err
}

// startMarket launches the background poller behind a response cache. The
// returned refresh func bypasses the cache for one fetch round.
func startMarket(ctx context.Context, cfg config.Config, logger *zerolog.Logger) (*market.Store, func(context.Context), error) {
	client, err := market.NewClient(cfg.CoinGeckoURL, cfg.BlockchairURL)
	if err != nil {
		return nil, nil, errors.Errorf("init market client: %w", err)
	}
	fetcher := market.NewCachedFetcher(client, market.DefaultPriceTTL, market.DefaultFeeTTL, logger)
	store := &market.Store{}
	market.StartPoller(ctx, store, fetcher, market.PollOptions{
		Interval:   cfg.MarketPollInterval,
		VsCurrency: cfg.VsCurrency,
		TopCoins:   cfg.TopCoins,
		Logger:     logger,
	})
	refresh := func(ctx context.Context) {
		fetcher.Flush()
		market.Refresh(ctx, store, fetcher, cfg.VsCurrency, cfg.TopCoins, *logger)
	}
	return store, refresh, nil
}

// ListCounters returns the persisted counters without starting timers or
// the UI. The logger is taken from ctx.
func ListCounters(ctx context.Context, opts Options) ([]counter.Counter, error) {
	cfg, err := LoadConfig(opts)
	if err != nil {
		return nil, err
	}
	if cfg.StorageBackend == config.BackendSQLite {
		// Opening would create an empty database.
		if _, err := os.Stat(cfg.StoragePath); errors.Is(err, os.ErrNotExist) {
			return []counter.Counter{}, nil
		}
	}
	adapter, closeStore, err := OpenPersistence(cfg, zerolog.Ctx(ctx))
	if err != nil {
		return nil, err
	}
	defer func() { _ = closeStore() }()
	return adapter.Load(), nil
}
