package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/thriftline/marketplace/internal/port"
)

// MemoryBus is an in-process EventBus for tests and single-node runs.
// Delivery is asynchronous, one goroutine per handler, matching the
// detached-from-publisher semantics of the broker-backed bus.
type MemoryBus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]port.EventHandler
	wg     sync.WaitGroup
}

func NewMemory() *MemoryBus {
	return &MemoryBus{
		subs: make(map[string]map[int]port.EventHandler),
	}
}

func (b *MemoryBus) Publish(_ context.Context, topic string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	b.mu.RLock()
	handlers := make([]port.EventHandler, 0, len(b.subs[topic]))
	for _, h := range b.subs[topic] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h := h
		b.wg.Add(1)
		// delivery outlives the publisher's context on purpose
		go func() {
			defer b.wg.Done()
			h(context.Background(), body)
		}()
	}

	return nil
}

func (b *MemoryBus) Subscribe(topic string, handler port.EventHandler) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID

	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]port.EventHandler)
	}
	b.subs[topic][id] = handler

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		delete(b.subs[topic], id)
		if len(b.subs[topic]) == 0 {
			delete(b.subs, topic)
		}
	}

	return unsubscribe, nil
}

// Wait blocks until all in-flight deliveries are handled. Test helper.
func (b *MemoryBus) Wait() {
	b.wg.Wait()
}
