package market

import (
	"sync"
	"time"
)

// Data holds the parts of one poll that succeeded. Nil parts are left
// unchanged.
type Data struct {
	Coins  []Coin
	Global *GlobalStats
	Fees   *NetworkFees
}

// Snapshot is the latest market data available to the UI.
type Snapshot struct {
	Coins               []Coin
	Global              GlobalStats
	HasGlobal           bool
	Fees                NetworkFees
	HasFees             bool
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int
}

// IsOffline reports whether the APIs have been unreachable for more than one poll.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// HasData reports whether any poll has succeeded yet.
func (s Snapshot) HasData() bool {
	return len(s.Coins) > 0 || s.HasGlobal || s.HasFees
}

// Store holds the latest Snapshot. The zero value is ready to use.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
	now      func() time.Time
}

// Update records a poll result. The parts present in data replace the
// previous ones even when err is set, so one failing endpoint does not
// discard the others. A non-nil err is counted as a failed poll.
func (s *Store) Update(data Data, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now
	if s.now != nil {
		now = s.now
	}
	s.snapshot.LastUpdated = now()

	if data.Coins != nil {
		s.snapshot.Coins = cloneCoins(data.Coins)
	}
	if data.Global != nil {
		s.snapshot.Global = *data.Global
		s.snapshot.HasGlobal = true
	}
	if data.Fees != nil {
		s.snapshot.Fees = cloneFees(*data.Fees)
		s.snapshot.HasFees = true
	}

	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.ConsecutiveFailures++
		return
	}
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Coins = cloneCoins(s.snapshot.Coins)
	snap.Fees = cloneFees(s.snapshot.Fees)
	return snap
}

func cloneCoins(coins []Coin) []Coin {
	if len(coins) == 0 {
		return nil
	}
	dup := make([]Coin, len(coins))
	copy(dup, coins)
	return dup
}

func cloneFees(f NetworkFees) NetworkFees {
	return NetworkFees{
		BitcoinSatPerByte: cloneFloat(f.BitcoinSatPerByte),
		EthereumGasGwei:   cloneFloat(f.EthereumGasGwei),
	}
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	dup := *v
	return &dup
}
