// Package eventbus broadcasts committed-change events between sessions.
// The broker-backed bus uses a RabbitMQ topic exchange; MemoryBus covers
// tests and single-node runs.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
	"github.com/thriftline/marketplace/internal/port"
)

const dialTimeout = 30 * time.Second

type RabbitBus struct {
	exchange string
	conn     *amqp.Connection
	log      zerolog.Logger

	mu    sync.Mutex
	pubCh *amqp.Channel
}

// NewRabbit dials the broker with bounded retries and declares the topic
// exchange all events flow through.
func NewRabbit(url, exchange string, log zerolog.Logger) (*RabbitBus, error) {
	var conn *amqp.Connection

	dial := func() error {
		var err error
		conn, err = amqp.Dial(url)
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = dialTimeout

	if err := backoff.Retry(dial, bo); err != nil {
		return nil, fmt.Errorf("amqp.Dial: %w", err)
	}

	pubCh, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("conn.Channel: %w", err)
	}

	if err := pubCh.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("pubCh.ExchangeDeclare: %w", err)
	}

	return &RabbitBus{
		exchange: exchange,
		conn:     conn,
		pubCh:    pubCh,
		log:      log.With().Str("component", "eventbus").Logger(),
	}, nil
}

func (b *RabbitBus) Publish(_ context.Context, topic string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	// amqp channels are not safe for concurrent publish
	b.mu.Lock()
	defer b.mu.Unlock()

	err = b.pubCh.Publish(b.exchange, topic, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("pubCh.Publish: %w", err)
	}

	return nil
}

// Subscribe binds an exclusive queue to the topic and pumps deliveries into
// the handler on a dedicated goroutine until unsubscribed.
func (b *RabbitBus) Subscribe(topic string, handler port.EventHandler) (func(), error) {
	ch, err := b.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("conn.Channel: %w", err)
	}

	queue, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("ch.QueueDeclare: %w", err)
	}

	if err := ch.QueueBind(queue.Name, topic, b.exchange, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("ch.QueueBind: %w", err)
	}

	deliveries, err := ch.Consume(queue.Name, "", true, true, false, false, nil)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("ch.Consume: %w", err)
	}

	done := make(chan struct{})

	go func() {
		defer close(done)
		for delivery := range deliveries {
			handler(context.Background(), delivery.Body)
		}
	}()

	unsubscribe := func() {
		if err := ch.Close(); err != nil {
			b.log.Warn().Err(err).Str("topic", topic).Msg("failed to close consumer channel")
		}
		<-done
	}

	return unsubscribe, nil
}

func (b *RabbitBus) Close() error {
	if err := b.conn.Close(); err != nil {
		return fmt.Errorf("conn.Close: %w", err)
	}
	return nil
}
