package state

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/nishant0581/metacount/internal/autoinc"
	"github.com/nishant0581/metacount/internal/counter"
	"github.com/nishant0581/metacount/internal/pubsub"
	"github.com/nishant0581/metacount/internal/storage"
)

type manualTimer struct {
	fn      func()
	stopped atomic.Bool
}

func (t *manualTimer) Stop() { t.stopped.Store(true) }

type manualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
}

func (s *manualScheduler) Every(_ time.Duration, fn func()) autoinc.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{fn: fn}
	s.timers = append(s.timers, t)
	return t
}

// fire runs the newest timer's callback the way a ticker goroutine would.
func (s *manualScheduler) fire() {
	s.mu.Lock()
	t := s.timers[len(s.timers)-1]
	s.mu.Unlock()
	t.fn()
}

func (s *manualScheduler) live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.stopped.Load() {
			n++
		}
	}
	return n
}

type recordingStore struct {
	mu      sync.Mutex
	initial []counter.Counter
	saves   [][]counter.Counter
	loads   int
}

func (r *recordingStore) Load() []counter.Counter {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loads++
	return r.initial
}

func (r *recordingStore) Save(counters []counter.Counter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves = append(r.saves, counter.CloneAll(counters))
	return nil
}

func (r *recordingStore) saveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.saves)
}

func (r *recordingStore) last() []counter.Counter {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves[len(r.saves)-1]
}

func testReducer() counter.Reducer {
	var n atomic.Int32
	return counter.Reducer{
		Now:   func() time.Time { return time.Unix(1_700_000_000, 0) },
		NewID: func() string { return fmt.Sprintf("c%d", n.Add(1)) },
	}
}

func newTestManager(t *testing.T, store *recordingStore) (*Manager, *manualScheduler) {
	t.Helper()
	sched := &manualScheduler{}
	m := New(Options{Persistence: store, Scheduler: sched, Reducer: testReducer()})
	t.Cleanup(m.Close)
	return m, sched
}

func values(c counter.Counter) []int {
	out := make([]int, len(c.History))
	for i, h := range c.History {
		out[i] = h.Value
	}
	return out
}

func TestNew_SeedsDefaultCounterWhenEmpty(t *testing.T) {
	store := &recordingStore{}
	m, _ := newTestManager(t, store)

	list := m.ListCounters()
	require.Len(t, list, 1)
	require.Equal(t, "c1", list[0].ID)
	require.Equal(t, counter.DefaultName, list[0].Name)
	require.Equal(t, 1, store.loads)
	require.Equal(t, 1, store.saveCount())
}

func TestNew_UsesPersistedCounters(t *testing.T) {
	store := &recordingStore{initial: []counter.Counter{
		counter.New("a", time.Unix(0, 0)),
		counter.New("b", time.Unix(0, 0)),
	}}
	m, _ := newTestManager(t, store)

	require.Len(t, m.ListCounters(), 2)
	require.Zero(t, store.saveCount())
}

func TestManager_SessionScenario(t *testing.T) {
	store := &recordingStore{initial: []counter.Counter{counter.New("a", time.Unix(0, 0))}}
	m, sched := newTestManager(t, store)

	m.Increment("a")
	m.Increment("a")
	m.Increment("a")
	m.SetMax("a", counter.IntPtr(2))
	got, ok := m.GetCounterByID("a")
	require.True(t, ok)
	require.Equal(t, 3, got.Count)

	m.Increment("a")
	got, _ = m.GetCounterByID("a")
	require.Equal(t, 2, got.Count)
	require.Equal(t, []int{0, 1, 2, 3, 2}, values(got))

	m.Undo("a")
	got, _ = m.GetCounterByID("a")
	require.Equal(t, 3, got.Count)

	m.StartAutoIncrement("a")
	got, _ = m.GetCounterByID("a")
	require.True(t, got.AutoIncrementing)
	require.Equal(t, 1, sched.live())

	m.StopAutoIncrement("a")
	got, _ = m.GetCounterByID("a")
	require.False(t, got.AutoIncrementing)
	require.Equal(t, 0, got.Count)
	require.Zero(t, sched.live())

	saved := store.last()
	require.Equal(t, 0, saved[0].Count)
}

func TestManager_TicksFlowThroughPipeline(t *testing.T) {
	store := &recordingStore{initial: []counter.Counter{counter.New("a", time.Unix(0, 0))}}
	m, sched := newTestManager(t, store)

	m.StartAutoIncrement("a")
	sched.fire()
	sched.fire()
	got, _ := m.GetCounterByID("a")
	require.Equal(t, 2, got.Count)

	m.PauseAutoIncrement("a")
	sched.fire() // stale
	got, _ = m.GetCounterByID("a")
	require.Equal(t, 2, got.Count)
	require.False(t, got.AutoIncrementing)
}

func TestManager_RemoveCancelsTimer(t *testing.T) {
	m, sched := newTestManager(t, &recordingStore{})
	id := m.AddCounter()
	require.Equal(t, "c2", id)

	m.StartAutoIncrement(id)
	require.Equal(t, 1, sched.live())

	m.RemoveCounter(id)
	require.Zero(t, sched.live())
	_, ok := m.GetCounterByID(id)
	require.False(t, ok)
	require.Len(t, m.ListCounters(), 1)
}

func TestManager_RemoveRacingStartLeavesNoTimer(t *testing.T) {
	m, sched := newTestManager(t, &recordingStore{})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		id := m.AddCounter()
		wg.Add(2)
		go func() {
			defer wg.Done()
			m.StartAutoIncrement(id)
		}()
		go func() {
			defer wg.Done()
			m.RemoveCounter(id)
		}()
	}
	wg.Wait()

	require.Zero(t, sched.live())
	require.Len(t, m.ListCounters(), 1)
}

func TestManager_UnknownIDIsIgnored(t *testing.T) {
	store := &recordingStore{}
	m, _ := newTestManager(t, store)
	saves := store.saveCount()

	require.NotPanics(t, func() {
		m.Increment("nope")
		m.SetName("nope", "x")
		m.Undo("nope")
		m.RemoveCounter("nope")
		m.PauseAutoIncrement("nope")
	})
	require.Equal(t, saves, store.saveCount())
}

func TestManager_NoopIsNotSavedOrPublished(t *testing.T) {
	store := &recordingStore{initial: []counter.Counter{counter.New("a", time.Unix(0, 0))}}
	m, _ := newTestManager(t, store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := m.Subscribe(ctx)

	m.Undo("a") // single history entry
	m.SetName("a", "Laps")

	select {
	case ev := <-events:
		require.Equal(t, pubsub.ChangedEvent, ev.Type)
		require.Equal(t, "Laps", ev.Payload[0].Name)
		require.Equal(t, uint64(1), ev.Seq)
	case <-time.After(time.Second):
		require.FailNow(t, "no event")
	}
	require.Equal(t, 1, store.saveCount())
}

func TestManager_ReturnedCountersAreCopies(t *testing.T) {
	m, _ := newTestManager(t, &recordingStore{initial: []counter.Counter{counter.New("a", time.Unix(0, 0))}})

	list := m.ListCounters()
	list[0].Count = 99
	list[0].History[0].Value = 99

	got, _ := m.GetCounterByID("a")
	require.Equal(t, 0, got.Count)
	require.Equal(t, 0, got.History[0].Value)
}

func TestManager_ConcurrentIncrementsAreSerialized(t *testing.T) {
	m, _ := newTestManager(t, &recordingStore{initial: []counter.Counter{counter.New("a", time.Unix(0, 0))}})

	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Increment("a")
		}()
	}
	wg.Wait()

	got, _ := m.GetCounterByID("a")
	require.Equal(t, 100, got.Count)
	require.Len(t, got.History, counter.HistoryCapacity)
	require.Equal(t, 100, got.History[counter.HistoryCapacity-1].Value)
}

func TestManager_CloseStopsEverything(t *testing.T) {
	store := &recordingStore{initial: []counter.Counter{counter.New("a", time.Unix(0, 0))}}
	sched := &manualScheduler{}
	m := New(Options{Persistence: store, Scheduler: sched, Reducer: testReducer()})

	events := m.Subscribe(context.Background())
	m.StartAutoIncrement("a")
	require.Equal(t, 1, sched.live())

	m.Close()
	m.Close()
	require.Zero(t, sched.live())

	saves := store.saveCount()
	require.NotPanics(t, func() {
		sched.fire()
		m.Increment("a")
		m.StartAutoIncrement("a")
	})
	require.Equal(t, saves, store.saveCount())
	require.Zero(t, sched.live())
	require.Equal(t, "", m.AddCounter())

	// Drain until the channel closes.
	for range events {
	}
}

func TestManager_DefaultsToMemoryStorage(t *testing.T) {
	m := New(Options{})
	defer m.Close()
	require.Len(t, m.ListCounters(), 1)
}

func TestManager_WithFileAdapter(t *testing.T) {
	slot := storage.FileSlot{Path: t.TempDir() + "/counters.json"}
	m := New(Options{Persistence: storage.NewAdapter(slot, nil), Scheduler: &manualScheduler{}})
	id := m.ListCounters()[0].ID
	m.Increment(id)
	m.SetNotes(id, "persisted")
	m.Close()

	again := New(Options{Persistence: storage.NewAdapter(slot, nil), Scheduler: &manualScheduler{}})
	defer again.Close()
	got, ok := again.GetCounterByID(id)
	require.True(t, ok)
	require.Equal(t, 1, got.Count)
	require.Equal(t, "persisted", got.Notes)
	require.Len(t, again.ListCounters(), 1)
}

func TestManager_PanicsWhenNotInitialized(t *testing.T) {
	var nilManager *Manager
	var zero Manager

	for name, m := range map[string]*Manager{"nil": nilManager, "zero": &zero} {
		t.Run(name, func(t *testing.T) {
			defer func() {
				r := recover()
				err, ok := r.(error)
				require.True(t, ok, "panic value %v", r)
				require.True(t, errors.Is(err, ErrNotInitialized))
			}()
			m.Increment("a")
		})
	}
}
