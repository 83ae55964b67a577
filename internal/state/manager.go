package state

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/nishant0581/metacount/internal/autoinc"
	"github.com/nishant0581/metacount/internal/counter"
	"github.com/nishant0581/metacount/internal/pubsub"
	"github.com/nishant0581/metacount/internal/storage"
)

// ErrNotInitialized is the panic value for facade calls on a Manager that
// was not built with New.
var ErrNotInitialized = errors.Base("state manager not initialized")

// Persistence loads the collection once and mirrors every commit.
type Persistence interface {
	Load() []counter.Counter
	Save(counters []counter.Counter) error
}

// Options configure a Manager. Zero values select in-memory storage, a
// ticker scheduler, the one second interval and the default reducer.
type Options struct {
	Persistence Persistence
	Scheduler   autoinc.Scheduler
	Interval    time.Duration
	Reducer     counter.Reducer
	Logger      *zerolog.Logger
}

// Snapshot is the payload of every published event.
type Snapshot = []counter.Counter

type request struct {
	action counter.Action
	reply  chan []counter.Counter
}

// Manager is the only way to read or change the counter collection.
// Changes run one at a time on a single dispatch goroutine; each commit is
// saved and then published to subscribers.
type Manager struct {
	reducer counter.Reducer
	store   Persistence
	coord   *autoinc.Coordinator
	broker  *pubsub.Broker[Snapshot]
	log     zerolog.Logger

	reqs    chan request
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once

	mu       sync.RWMutex
	counters []counter.Counter
}

// New restores persisted counters, seeding one default counter when there
// are none, and starts the dispatch loop. Call Close when finished.
func New(opts Options) *Manager {
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	store := opts.Persistence
	if store == nil {
		store = storage.NewAdapter(&storage.MemorySlot{}, opts.Logger)
	}
	reducer := opts.Reducer
	if reducer.Now == nil {
		reducer.Now = counter.DefaultReducer.Now
	}
	if reducer.NewID == nil {
		reducer.NewID = counter.DefaultReducer.NewID
	}

	m := &Manager{
		reducer: reducer,
		store:   store,
		broker:  pubsub.NewBroker[Snapshot](),
		log:     log,
		reqs:    make(chan request),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	m.coord = autoinc.NewCoordinator(dispatcher{m}, autoinc.Options{
		Interval:  opts.Interval,
		Scheduler: opts.Scheduler,
		Logger:    opts.Logger,
	})

	initial := reducer.Reduce(nil, counter.LoadCounters{Counters: store.Load()})
	if len(initial) == 0 {
		initial = reducer.Reduce(initial, counter.AddCounter{})
		_ = store.Save(initial)
		log.Info().Str("counter", initial[0].ID).Msg("seeded default counter")
	}
	m.counters = initial
	log.Debug().Int("counters", len(initial)).Msg("state loaded")

	go m.loop()
	return m
}

func (m *Manager) loop() {
	defer close(m.stopped)
	for {
		select {
		case <-m.done:
			return
		case req := <-m.reqs:
			req.reply <- m.commit(req.action)
		}
	}
}

func (m *Manager) commit(action counter.Action) []counter.Counter {
	m.mu.RLock()
	current := m.counters
	m.mu.RUnlock()

	next := m.reducer.Reduce(current, action)
	if sameSlice(current, next) {
		return counter.CloneAll(current)
	}

	m.mu.Lock()
	m.counters = next
	m.mu.Unlock()

	// Adapter failures are logged where they happen.
	_ = m.store.Save(next)
	m.broker.Publish(pubsub.ChangedEvent, counter.CloneAll(next))
	return counter.CloneAll(next)
}

func sameSlice(a, b []counter.Counter) bool {
	if len(a) != len(b) {
		return false
	}
	return len(a) == 0 || &a[0] == &b[0]
}

// dispatch queues action and waits for the committed result. Once the
// manager is closed it returns the last committed state unchanged.
func (m *Manager) dispatch(action counter.Action) []counter.Counter {
	reply := make(chan []counter.Counter, 1)
	select {
	case m.reqs <- request{action: action, reply: reply}:
	case <-m.done:
		m.log.Debug().Str("counter", counter.TargetID(action)).Msgf("ignoring %T on closed manager", action)
		return m.snapshot()
	}
	select {
	case committed := <-reply:
		return committed
	case <-m.stopped:
		return m.snapshot()
	}
}

func (m *Manager) snapshot() []counter.Counter {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return counter.CloneAll(m.counters)
}

// dispatcher is the coordinator's route into the pipeline. It is kept off
// the Manager's method set so consumers only see named operations.
type dispatcher struct{ m *Manager }

func (d dispatcher) Dispatch(action counter.Action) []counter.Counter {
	return d.m.dispatch(action)
}

func (m *Manager) mustInit() {
	if m == nil || m.reqs == nil {
		panic(ErrNotInitialized)
	}
}

// AddCounter appends a default counter and returns its id. It returns ""
// after Close.
func (m *Manager) AddCounter() string {
	m.mustInit()
	before := m.snapshot()
	after := m.dispatch(counter.AddCounter{})
	if len(after) == 0 {
		return ""
	}
	id := after[len(after)-1].ID
	if counter.Find(before, id) >= 0 {
		return ""
	}
	return id
}

// RemoveCounter cancels the counter's timer and removes it.
func (m *Manager) RemoveCounter(id string) {
	m.mustInit()
	m.coord.Remove(id)
}

// Increment adds the step, clamped to the upper bound.
func (m *Manager) Increment(id string) {
	m.mustInit()
	m.dispatch(counter.Increment{ID: id})
}

// Decrement subtracts the step, clamped to the lower bound.
func (m *Manager) Decrement(id string) {
	m.mustInit()
	m.dispatch(counter.Decrement{ID: id})
}

// Reset sets the value to zero.
func (m *Manager) Reset(id string) {
	m.mustInit()
	m.dispatch(counter.Reset{ID: id})
}

// SetStep sets the step size. Values below one are stored as one.
func (m *Manager) SetStep(id string, step int) {
	m.mustInit()
	m.dispatch(counter.SetStep{ID: id, Step: step})
}

// SetMin sets or, with nil, clears the lower bound.
func (m *Manager) SetMin(id string, limit *int) {
	m.mustInit()
	m.dispatch(counter.SetMin{ID: id, Min: limit})
}

// SetMax sets or, with nil, clears the upper bound.
func (m *Manager) SetMax(id string, limit *int) {
	m.mustInit()
	m.dispatch(counter.SetMax{ID: id, Max: limit})
}

func (m *Manager) SetName(id, name string) {
	m.mustInit()
	m.dispatch(counter.SetName{ID: id, Name: name})
}

func (m *Manager) SetNotes(id, notes string) {
	m.mustInit()
	m.dispatch(counter.SetNotes{ID: id, Notes: notes})
}

// StartAutoIncrement begins ticking the counter once per interval. Starting
// a counter that is already running replaces its timer.
func (m *Manager) StartAutoIncrement(id string) {
	m.mustInit()
	m.coord.Start(id)
}

// PauseAutoIncrement stops ticking and keeps the value.
func (m *Manager) PauseAutoIncrement(id string) {
	m.mustInit()
	m.coord.Pause(id)
}

// StopAutoIncrement stops ticking and resets the value to zero.
func (m *Manager) StopAutoIncrement(id string) {
	m.mustInit()
	m.coord.Stop(id)
}

// Undo restores the previous history value. A counter with a single
// history entry is left alone.
func (m *Manager) Undo(id string) {
	m.mustInit()
	m.dispatch(counter.Undo{ID: id})
}

// GetCounterByID returns a copy of the counter with id.
func (m *Manager) GetCounterByID(id string) (counter.Counter, bool) {
	m.mustInit()
	m.mu.RLock()
	defer m.mu.RUnlock()
	idx := counter.Find(m.counters, id)
	if idx < 0 {
		return counter.Counter{}, false
	}
	return m.counters[idx].Clone(), true
}

// ListCounters returns a copy of every counter in order.
func (m *Manager) ListCounters() []counter.Counter {
	m.mustInit()
	return m.snapshot()
}

// Subscribe returns a channel of committed snapshots. The channel closes when
// ctx is done or the manager is closed.
func (m *Manager) Subscribe(ctx context.Context) <-chan pubsub.Event[Snapshot] {
	m.mustInit()
	return m.broker.Subscribe(ctx)
}

// Close cancels every timer, stops the dispatch loop and closes all
// subscriptions. Later operations are ignored.
func (m *Manager) Close() {
	m.mustInit()
	m.once.Do(func() {
		close(m.done)
		<-m.stopped
		m.coord.StopAll()
		m.broker.Publish(pubsub.ClosedEvent, m.snapshot())
		m.broker.Close()
		m.log.Debug().Msg("state manager closed")
	})
}
