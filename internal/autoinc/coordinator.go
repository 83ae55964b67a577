package autoinc

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/nishant0581/metacount/internal/counter"
)

// DefaultInterval is the auto-increment tick period.
const DefaultInterval = time.Second

// Dispatcher applies an action through the reducer pipeline and returns the
// committed collection.
type Dispatcher interface {
	Dispatch(action counter.Action) []counter.Counter
}

// Options configure a Coordinator.
type Options struct {
	Interval  time.Duration
	Scheduler Scheduler
	Logger    *zerolog.Logger
}

type entry struct {
	handle counter.TimerHandle
	timer  Timer
}

// Coordinator owns the recurring timer of every auto-incrementing counter.
// At most one timer per counter is ever live.
type Coordinator struct {
	mu       sync.Mutex
	dispatch Dispatcher
	sched    Scheduler
	interval time.Duration
	timers   map[string]entry
	next     counter.TimerHandle
	log      zerolog.Logger
}

// NewCoordinator builds a Coordinator that feeds ticks into d.
func NewCoordinator(d Dispatcher, opts Options) *Coordinator {
	sched := opts.Scheduler
	if sched == nil {
		sched = TickerScheduler{}
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	return &Coordinator{
		dispatch: d,
		sched:    sched,
		interval: interval,
		timers:   make(map[string]entry),
		log:      log,
	}
}

// Start cancels any timer already running for id, schedules a new one, and
// records its handle on the counter. If the counter does not exist the new
// timer is cancelled straight away.
func (c *Coordinator) Start(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelLocked(id)

	c.next++
	handle := c.next
	timer := c.sched.Every(c.interval, func() {
		c.dispatch.Dispatch(counter.Tick{ID: id, Handle: handle})
	})
	c.timers[id] = entry{handle: handle, timer: timer}

	committed := c.dispatch.Dispatch(counter.StartAutoIncrement{ID: id, Handle: handle})
	idx := counter.Find(committed, id)
	if idx < 0 || committed[idx].Timer != handle {
		c.cancelLocked(id)
		c.log.Debug().Str("counter", id).Msg("auto-increment start ignored; counter not found")
		return
	}
	c.log.Debug().Str("counter", id).Uint64("handle", uint64(handle)).Msg("auto-increment started")
}

// Pause cancels the timer for id and clears the auto flag.
func (c *Coordinator) Pause(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelLocked(id)
	c.dispatch.Dispatch(counter.PauseAutoIncrement{ID: id})
	c.log.Debug().Str("counter", id).Msg("auto-increment paused")
}

// Stop cancels the timer for id, clears the auto flag and resets the value.
func (c *Coordinator) Stop(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelLocked(id)
	c.dispatch.Dispatch(counter.StopAutoIncrement{ID: id})
	c.log.Debug().Str("counter", id).Msg("auto-increment stopped")
}

// Remove cancels the timer for id and removes the counter under the same
// lock, so a concurrent Start cannot leave a timer behind for it.
func (c *Coordinator) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelLocked(id)
	c.dispatch.Dispatch(counter.RemoveCounter{ID: id})
}

// StopAll cancels every live timer.
func (c *Coordinator) StopAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id := range c.timers {
		c.cancelLocked(id)
	}
}

// Active reports whether a timer is live for id.
func (c *Coordinator) Active(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.timers[id]
	return ok
}

// ActiveCount returns the number of live timers.
func (c *Coordinator) ActiveCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

func (c *Coordinator) cancelLocked(id string) {
	e, ok := c.timers[id]
	if !ok {
		return
	}
	e.timer.Stop()
	delete(c.timers, id)
}
