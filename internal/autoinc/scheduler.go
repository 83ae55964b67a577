package autoinc

import (
	"sync"
	"time"
)

// Timer is a recurring timer. Stop is idempotent and does not block.
type Timer interface {
	Stop()
}

// Scheduler creates recurring timers.
type Scheduler interface {
	Every(interval time.Duration, fn func()) Timer
}

// TickerScheduler runs each timer on its own goroutine backed by time.Ticker.
type TickerScheduler struct{}

// Every calls fn once per interval until the returned Timer is stopped.
func (TickerScheduler) Every(interval time.Duration, fn func()) Timer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	t := &tickerTimer{stop: make(chan struct{})}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-t.stop:
				return
			case <-ticker.C:
			}
			// Stop may race with a tick that was already delivered.
			select {
			case <-t.stop:
				return
			default:
			}
			fn()
		}
	}()
	return t
}

type tickerTimer struct {
	once sync.Once
	stop chan struct{}
}

func (t *tickerTimer) Stop() {
	t.once.Do(func() { close(t.stop) })
}
