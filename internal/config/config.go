package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"gitlab.com/tozd/go/errors"
)

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config holds every MetaCount setting.
type Config struct {
	StorageBackend        string
	StoragePath           string
	StorageKey            string
	AutoIncrementInterval time.Duration
	MarketPollInterval    time.Duration
	VsCurrency            string
	CoinGeckoURL          string
	BlockchairURL         string
	TopCoins              int
	LogFile               string
}

const (
	defaultConfigPath = "~/.config/metacount/config.toml"
	defaultDataDir    = "~/.local/share/metacount"
	defaultLogFile    = "~/.local/state/metacount/metacount.log"
	defaultStorageKey = "metaCounters"
	defaultAutoEvery  = time.Second
	defaultPollEvery  = 30 * time.Second
	defaultVsCurrency = "usd"
	defaultCoinGecko  = "https://api.coingecko.com"
	defaultBlockchair = "https://api.blockchair.com"
	defaultTopCoins   = 5
	maxTopCoins       = 250
	jsonStorageFile   = "counters.json"
	sqliteStorageFile = "counters.db"
)

// Keys lists the setting names shared by the TOML file, viper and the
// METACOUNT_* environment variables.
var Keys = []string{
	"storage_backend",
	"storage_path",
	"storage_key",
	"auto_increment_interval",
	"market_poll_interval",
	"vs_currency",
	"coingecko_url",
	"blockchair_url",
	"top_coins",
	"log_file",
}

type rawConfig struct {
	StorageBackend        string `toml:"storage_backend"`
	StoragePath           string `toml:"storage_path"`
	StorageKey            string `toml:"storage_key"`
	AutoIncrementInterval string `toml:"auto_increment_interval"`
	MarketPollInterval    string `toml:"market_poll_interval"`
	VsCurrency            string `toml:"vs_currency"`
	CoinGeckoURL          string `toml:"coingecko_url"`
	BlockchairURL         string `toml:"blockchair_url"`
	TopCoins              int    `toml:"top_coins"`
	LogFile               string `toml:"log_file"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	cfg, _ := resolve(rawConfig{})
	return cfg
}

// DefaultPath returns the config file location used when none is given.
func DefaultPath() string {
	return defaultConfigPath
}

// Load parses the TOML file at path (or the default location), falling back
// to defaults for a missing file and for empty values.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, errors.Errorf("open config: %w", err)
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, errors.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, errors.Errorf("parse config: %w", err)
	}
	return resolve(raw)
}

// ApplyOverrides replaces values for every key set in v, which is expected
// to carry bound flags and environment variables. File values are not read
// from v.
func ApplyOverrides(cfg Config, v *viper.Viper) (Config, error) {
	if v == nil {
		return cfg, nil
	}
	raw := toRaw(cfg)
	// storage_path is derived from the backend unless given explicitly.
	if v.IsSet("storage_backend") && !v.IsSet("storage_path") {
		raw.StoragePath = ""
	}
	set := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	set("storage_backend", &raw.StorageBackend)
	set("storage_path", &raw.StoragePath)
	set("storage_key", &raw.StorageKey)
	set("auto_increment_interval", &raw.AutoIncrementInterval)
	set("market_poll_interval", &raw.MarketPollInterval)
	set("vs_currency", &raw.VsCurrency)
	set("coingecko_url", &raw.CoinGeckoURL)
	set("blockchair_url", &raw.BlockchairURL)
	set("log_file", &raw.LogFile)
	if v.IsSet("top_coins") {
		raw.TopCoins = v.GetInt("top_coins")
	}
	return resolve(raw)
}

func resolve(raw rawConfig) (Config, error) {
	cfg := Config{
		StorageBackend: strings.ToLower(strings.TrimSpace(raw.StorageBackend)),
		StorageKey:     strings.TrimSpace(raw.StorageKey),
		VsCurrency:     strings.ToLower(strings.TrimSpace(raw.VsCurrency)),
		CoinGeckoURL:   strings.TrimSpace(raw.CoinGeckoURL),
		BlockchairURL:  strings.TrimSpace(raw.BlockchairURL),
		TopCoins:       raw.TopCoins,
	}
	if cfg.StorageBackend == "" {
		cfg.StorageBackend = BackendFile
	}
	switch cfg.StorageBackend {
	case BackendFile, BackendSQLite, BackendMemory:
	default:
		return Config{}, errors.Errorf("invalid storage_backend %q: want file, sqlite or memory", raw.StorageBackend)
	}
	if cfg.StorageKey == "" {
		cfg.StorageKey = defaultStorageKey
	}
	if cfg.VsCurrency == "" {
		cfg.VsCurrency = defaultVsCurrency
	}
	if cfg.CoinGeckoURL == "" {
		cfg.CoinGeckoURL = defaultCoinGecko
	}
	if cfg.BlockchairURL == "" {
		cfg.BlockchairURL = defaultBlockchair
	}
	if cfg.TopCoins <= 0 {
		cfg.TopCoins = defaultTopCoins
	}
	cfg.TopCoins = min(cfg.TopCoins, maxTopCoins)

	var err error
	if cfg.AutoIncrementInterval, err = parseDuration("auto_increment_interval", raw.AutoIncrementInterval, defaultAutoEvery); err != nil {
		return Config{}, err
	}
	if cfg.MarketPollInterval, err = parseDuration("market_poll_interval", raw.MarketPollInterval, defaultPollEvery); err != nil {
		return Config{}, err
	}

	storagePath := strings.TrimSpace(raw.StoragePath)
	if storagePath == "" {
		switch cfg.StorageBackend {
		case BackendFile:
			storagePath = defaultDataDir + "/" + jsonStorageFile
		case BackendSQLite:
			storagePath = defaultDataDir + "/" + sqliteStorageFile
		}
	}
	if storagePath != "" {
		cfg.StoragePath = mustExpand(storagePath)
	}

	logFile := strings.TrimSpace(raw.LogFile)
	if logFile == "" {
		logFile = defaultLogFile
	}
	cfg.LogFile = mustExpand(logFile)
	return cfg, nil
}

func toRaw(cfg Config) rawConfig {
	raw := rawConfig{
		StorageBackend: cfg.StorageBackend,
		StoragePath:    cfg.StoragePath,
		StorageKey:     cfg.StorageKey,
		VsCurrency:     cfg.VsCurrency,
		CoinGeckoURL:   cfg.CoinGeckoURL,
		BlockchairURL:  cfg.BlockchairURL,
		TopCoins:       cfg.TopCoins,
		LogFile:        cfg.LogFile,
	}
	if cfg.AutoIncrementInterval > 0 {
		raw.AutoIncrementInterval = cfg.AutoIncrementInterval.String()
	}
	if cfg.MarketPollInterval > 0 {
		raw.MarketPollInterval = cfg.MarketPollInterval.String()
	}
	return raw
}

func parseDuration(key, raw string, fallback time.Duration) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, errors.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if d <= 0 {
		return 0, errors.Errorf("invalid %s %q: must be positive", key, raw)
	}
	return d, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", errors.New("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
