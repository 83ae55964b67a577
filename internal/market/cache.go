package market

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
)

const (
	DefaultPriceTTL = 30 * time.Second
	DefaultFeeTTL   = 60 * time.Second

	cacheCleanupInterval = 5 * time.Minute
	globalKey            = "global:%s"
	coinsKey             = "coins:%s:%d"
	feesKey              = "fees"
)

// CachedFetcher serves repeated requests from memory until their TTL runs
// out. Errors are never cached.
type CachedFetcher struct {
	next     Fetcher
	cache    *gocache.Cache
	priceTTL time.Duration
	feeTTL   time.Duration
	log      zerolog.Logger
}

var _ Fetcher = (*CachedFetcher)(nil)

// NewCachedFetcher wraps next. Non-positive TTLs select the defaults.
func NewCachedFetcher(next Fetcher, priceTTL, feeTTL time.Duration, logger *zerolog.Logger) *CachedFetcher {
	if priceTTL <= 0 {
		priceTTL = DefaultPriceTTL
	}
	if feeTTL <= 0 {
		feeTTL = DefaultFeeTTL
	}
	log := zerolog.Nop()
	if logger != nil {
		log = *logger
	}
	return &CachedFetcher{
		next:     next,
		cache:    gocache.New(priceTTL, cacheCleanupInterval),
		priceTTL: priceTTL,
		feeTTL:   feeTTL,
		log:      log,
	}
}

func (f *CachedFetcher) FetchTopCoins(ctx context.Context, vsCurrency string, limit int) ([]Coin, error) {
	key := fmt.Sprintf(coinsKey, currency(vsCurrency), limit)
	if coins, ok := lookup[[]Coin](f, key); ok {
		return cloneCoins(coins), nil
	}
	coins, err := f.next.FetchTopCoins(ctx, vsCurrency, limit)
	if err != nil {
		return nil, err
	}
	f.cache.Set(key, cloneCoins(coins), f.priceTTL)
	return coins, nil
}

func (f *CachedFetcher) FetchGlobal(ctx context.Context, vsCurrency string) (*GlobalStats, error) {
	key := fmt.Sprintf(globalKey, currency(vsCurrency))
	if stats, ok := lookup[GlobalStats](f, key); ok {
		return &stats, nil
	}
	stats, err := f.next.FetchGlobal(ctx, vsCurrency)
	if err != nil {
		return nil, err
	}
	f.cache.Set(key, *stats, f.priceTTL)
	return stats, nil
}

func (f *CachedFetcher) FetchNetworkFees(ctx context.Context) (*NetworkFees, error) {
	if fees, ok := lookup[NetworkFees](f, feesKey); ok {
		return &fees, nil
	}
	fees, err := f.next.FetchNetworkFees(ctx)
	if err != nil {
		return nil, err
	}
	f.cache.Set(feesKey, *fees, f.feeTTL)
	return fees, nil
}

// Flush drops every cached response.
func (f *CachedFetcher) Flush() {
	f.cache.Flush()
}

func lookup[V any](f *CachedFetcher, key string) (V, bool) {
	var zero V
	value, found := f.cache.Get(key)
	if !found {
		return zero, false
	}
	v, ok := value.(V)
	if !ok {
		f.log.Error().Str("key", key).Msg("wrong type in market cache")
		f.cache.Delete(key)
		return zero, false
	}
	f.log.Debug().Str("key", key).Msg("market cache hit")
	return v, true
}
