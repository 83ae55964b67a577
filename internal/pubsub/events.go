// Package pubsub fans committed state out to any number of listeners.
//
// Every event carries a full snapshot, so a slow subscriber only ever needs
// the newest one: when its buffer is full the oldest pending event is
// discarded to make room.
package pubsub

import (
	"context"
	"time"
)

// EventType names what produced an event.
type EventType string

const (
	// ChangedEvent is published after each committed state change.
	ChangedEvent EventType = "changed"
	// ClosedEvent is the last event before the publisher shuts down.
	ClosedEvent EventType = "closed"
)

// Event is one published snapshot.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Seq       uint64
	Timestamp time.Time
}

// Subscriber hands out subscription channels.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}
