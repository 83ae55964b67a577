package pubsub

import (
	"context"
	"sync"
	"time"
)

const defaultBufferSize = 16

// Broker delivers events to subscribers without ever blocking the publisher.
type Broker[T any] struct {
	mu         sync.Mutex
	subs       map[chan Event[T]]struct{}
	done       chan struct{}
	bufferSize int
	seq        uint64
	now        func() time.Time
}

// NewBroker creates a broker with the default per-subscriber buffer.
func NewBroker[T any]() *Broker[T] {
	return NewBrokerWithBuffer[T](defaultBufferSize)
}

// NewBrokerWithBuffer creates a broker whose subscribers buffer up to size
// events. Sizes below one are raised to one.
func NewBrokerWithBuffer[T any](size int) *Broker[T] {
	return &Broker[T]{
		subs:       make(map[chan Event[T]]struct{}),
		done:       make(chan struct{}),
		bufferSize: max(1, size),
		now:        time.Now,
	}
}

// Subscribe registers a new listener. The channel is closed when ctx is
// cancelled or the broker is closed.
func (b *Broker[T]) Subscribe(ctx context.Context) <-chan Event[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	select {
	case <-b.done:
		ch := make(chan Event[T])
		close(ch)
		return ch
	default:
	}

	sub := make(chan Event[T], b.bufferSize)
	b.subs[sub] = struct{}{}

	go func() {
		select {
		case <-ctx.Done():
		case <-b.done:
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[sub]; !ok {
			return
		}
		delete(b.subs, sub)
		close(sub)
	}()

	return sub
}

// Publish sends payload to every subscriber and returns its sequence number.
// A full subscriber loses its oldest pending event.
func (b *Broker[T]) Publish(eventType EventType, payload T) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	select {
	case <-b.done:
		return b.seq
	default:
	}

	b.seq++
	event := Event[T]{Type: eventType, Payload: payload, Seq: b.seq, Timestamp: b.now()}
	for sub := range b.subs {
		deliver(sub, event)
	}
	return b.seq
}

// deliver is only called with b.mu held, so no other sender races it.
func deliver[T any](sub chan Event[T], event Event[T]) {
	for {
		select {
		case sub <- event:
			return
		default:
		}
		select {
		case <-sub:
		default:
		}
	}
}

// Close shuts the broker down and closes every subscriber channel.
func (b *Broker[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	select {
	case <-b.done:
		return
	default:
	}

	close(b.done)
	for sub := range b.subs {
		close(sub)
	}
	b.subs = nil
}

// SubscriberCount returns the number of live subscriptions.
func (b *Broker[T]) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
