package port

import "context"

// EventHandler processes one event body. It runs on the bus consumer
// goroutine; handlers must not block indefinitely.
type EventHandler func(ctx context.Context, body []byte)

// EventBus broadcasts committed-change events. Delivery is at-least-once and
// eventually consistent; subscribers re-read state rather than trusting the body.
type EventBus interface {
	Publish(ctx context.Context, topic string, payload any) error

	// Subscribe registers a handler for a topic and returns an explicit
	// unsubscribe func. Teardown is the caller's responsibility.
	Subscribe(topic string, handler EventHandler) (func(), error)
}
