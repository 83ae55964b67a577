package market

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultPollInterval = 30 * time.Second
	maxBackoff          = 30 * time.Second
)

// PollOptions configure StartPoller.
type PollOptions struct {
	Interval   time.Duration
	VsCurrency string
	TopCoins   int
	Logger     *zerolog.Logger
}

// calculateBackoff doubles the interval per consecutive failure, capped at
// maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	backoff := base
	for range failures {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}

// StartPoller refreshes store in the background until ctx is cancelled. It
// returns immediately; the first refresh happens right away.
func StartPoller(ctx context.Context, store *Store, fetcher Fetcher, opts PollOptions) {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	go func() {
		for {
			failures := Refresh(ctx, store, fetcher, opts.VsCurrency, opts.TopCoins, log)
			timer := time.NewTimer(calculateBackoff(failures, interval))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}()
}

// Refresh fetches coins, global stats and fees concurrently and records the
// outcome in store. Parts that succeed are kept even if another part fails.
// It returns the consecutive failure count afterwards.
func Refresh(ctx context.Context, store *Store, fetcher Fetcher, vsCurrency string, topCoins int, log zerolog.Logger) int {
	var (
		data Data
		g    errgroup.Group
	)
	g.Go(func() error {
		coins, err := fetcher.FetchTopCoins(ctx, vsCurrency, topCoins)
		if err != nil {
			return errors.Errorf("top coins: %w", err)
		}
		data.Coins = coins
		return nil
	})
	g.Go(func() error {
		global, err := fetcher.FetchGlobal(ctx, vsCurrency)
		if err != nil {
			return errors.Errorf("global stats: %w", err)
		}
		data.Global = global
		return nil
	})
	g.Go(func() error {
		fees, err := fetcher.FetchNetworkFees(ctx)
		if err != nil {
			return errors.Errorf("network fees: %w", err)
		}
		data.Fees = fees
		return nil
	})
	err := g.Wait()

	before := store.Snapshot().ConsecutiveFailures
	if err != nil {
		if ctx.Err() != nil {
			return before
		}
		store.Update(data, err)
		log.Warn().Err(err).Int("failures", before+1).Msg("market poll failed")
		return before + 1
	}
	store.Update(data, nil)
	if before > 0 {
		log.Info().Int("after_failures", before).Msg("market poll recovered")
	}
	return 0
}
