package market

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStore_UpdateAndSnapshotClone(t *testing.T) {
	var s Store

	before := time.Now()
	s.Update(Data{
		Coins:  []Coin{{ID: "bitcoin"}, {ID: "ethereum"}},
		Global: &GlobalStats{BTCDominance: 51},
		Fees:   &NetworkFees{BitcoinSatPerByte: ptr(9)},
	}, nil)

	snap := s.Snapshot()
	require.Len(t, snap.Coins, 2)
	require.True(t, snap.HasGlobal)
	require.True(t, snap.HasFees)
	require.True(t, snap.HasData())
	require.False(t, snap.LastUpdated.Before(before))
	require.NoError(t, snap.LastError)

	snap.Coins[0].ID = "mutated"
	*snap.Fees.BitcoinSatPerByte = 1
	again := s.Snapshot()
	require.Equal(t, "bitcoin", again.Coins[0].ID)
	require.InDelta(t, 9, *again.Fees.BitcoinSatPerByte, 1e-9)
}

func TestStore_UpdateErrorKeepsPreviousData(t *testing.T) {
	var s Store
	s.Update(Data{Coins: []Coin{{ID: "bitcoin"}}}, nil)

	boom := errors.New("boom")
	s.Update(Data{}, boom)

	snap := s.Snapshot()
	require.Len(t, snap.Coins, 1)
	require.ErrorIs(t, snap.LastError, boom)
	require.Equal(t, "boom", snap.LastError.Error())
}

func TestStore_UpdateErrorRecordsPartialData(t *testing.T) {
	var s Store
	boom := errors.New("fees down")
	s.Update(Data{Coins: []Coin{{ID: "bitcoin"}}}, boom)

	snap := s.Snapshot()
	require.Len(t, snap.Coins, 1)
	require.False(t, snap.HasFees)
	require.Equal(t, 1, snap.ConsecutiveFailures)
	require.Same(t, boom, snap.LastError)
	require.Same(t, boom, s.Snapshot().LastError)
}

func TestStore_PartialUpdateKeepsOtherParts(t *testing.T) {
	var s Store
	s.Update(Data{Global: &GlobalStats{Markets: 3}}, nil)
	s.Update(Data{Coins: []Coin{{ID: "x"}}}, nil)

	snap := s.Snapshot()
	require.True(t, snap.HasGlobal)
	require.Equal(t, 3, snap.Global.Markets)
	require.False(t, snap.HasFees)
}

func TestStore_ConsecutiveFailures(t *testing.T) {
	var s Store
	require.False(t, s.Snapshot().IsOffline())
	require.False(t, s.Snapshot().HasData())

	s.Update(Data{}, errors.New("fail 1"))
	require.Equal(t, 1, s.Snapshot().ConsecutiveFailures)
	require.False(t, s.Snapshot().IsOffline())

	s.Update(Data{}, errors.New("fail 2"))
	require.True(t, s.Snapshot().IsOffline())

	s.Update(Data{}, errors.New("fail 3"))
	require.Equal(t, 3, s.Snapshot().ConsecutiveFailures)

	s.Update(Data{Coins: []Coin{{ID: "bitcoin"}}}, nil)
	require.Zero(t, s.Snapshot().ConsecutiveFailures)
	require.False(t, s.Snapshot().IsOffline())
}
