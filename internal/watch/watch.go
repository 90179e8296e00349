// Package watch delivers live full-state snapshots of a collection to
// registered callbacks: each committed change triggers a fresh load of the
// whole result set, never a diff. Teardown is an explicit unsubscribe.
package watch

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/thriftline/marketplace/internal/port"
)

// LoaderFunc reloads the current state of the watched collection.
type LoaderFunc[T any] func(ctx context.Context) ([]T, error)

type Collection[T any] struct {
	bus   port.EventBus
	topic string
	load  LoaderFunc[T]
	log   zerolog.Logger

	mu      sync.Mutex
	nextID  int
	subs    map[int]func([]T)
	stopBus func()
}

func NewCollection[T any](bus port.EventBus, topic string, load LoaderFunc[T], log zerolog.Logger) *Collection[T] {
	return &Collection[T]{
		bus:   bus,
		topic: topic,
		load:  load,
		log:   log.With().Str("component", "watch").Str("topic", topic).Logger(),
		subs:  make(map[int]func([]T)),
	}
}

// Subscribe registers fn and immediately delivers the current snapshot.
// Afterwards fn fires with a full snapshot on every change event. The
// returned func detaches fn; the last detach also drops the bus subscription.
func (c *Collection[T]) Subscribe(ctx context.Context, fn func([]T)) (func(), error) {
	snapshot, err := c.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}

	c.mu.Lock()

	if len(c.subs) == 0 {
		stop, err := c.bus.Subscribe(c.topic, c.onEvent)
		if err != nil {
			c.mu.Unlock()
			return nil, fmt.Errorf("bus.Subscribe: %w", err)
		}
		c.stopBus = stop
	}

	c.nextID++
	id := c.nextID
	c.subs[id] = fn

	c.mu.Unlock()

	// initial delivery happens outside the lock so fn may subscribe or
	// unsubscribe synchronously without deadlocking
	fn(snapshot)

	unsubscribe := func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		delete(c.subs, id)
		if len(c.subs) == 0 && c.stopBus != nil {
			c.stopBus()
			c.stopBus = nil
		}
	}

	return unsubscribe, nil
}

// onEvent runs on the bus consumer goroutine. The event body is ignored:
// subscribers get the re-read state, not whatever the publisher claimed.
func (c *Collection[T]) onEvent(ctx context.Context, _ []byte) {
	snapshot, err := c.load(ctx)
	if err != nil {
		c.log.Error().Err(err).Msg("failed to reload snapshot")
		return
	}

	c.mu.Lock()
	subs := make([]func([]T), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}
