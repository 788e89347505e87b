package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ikkim/catalog-backend/config"
	"github.com/ikkim/catalog-backend/pkg/logger"
	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitPublisher publishes filter kinds to a fanout exchange and the
// product and category kinds to their own durable queues.
type RabbitPublisher struct {
	conn *amqp.Connection
	cfg  config.RabbitMQConfig

	mu sync.Mutex
	ch *amqp.Channel
}

// Dial connects to the broker and declares the exchange and queues.
func Dial(cfg config.RabbitMQConfig) (*RabbitPublisher, error) {
	logger.Info("Connecting to RabbitMQ", map[string]interface{}{
		"exchange": cfg.FilterExchange,
	})

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open RabbitMQ channel: %w", err)
	}

	if err := ch.ExchangeDeclare(cfg.FilterExchange, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", cfg.FilterExchange, err)
	}

	for _, queue := range []string{cfg.CategoryQueue, cfg.ProductAddedQueue, cfg.ProductUpdatedQueue, cfg.ProductDeletedQueue} {
		if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
		}
	}

	logger.Info("RabbitMQ connection established")
	return &RabbitPublisher{conn: conn, cfg: cfg, ch: ch}, nil
}

// Connection exposes the broker connection so consumers can open their own channels.
func (p *RabbitPublisher) Connection() *amqp.Connection {
	return p.conn
}

func (p *RabbitPublisher) Publish(ctx context.Context, kind Kind, payload interface{}) error {
	exchange, key, body, err := encode(p.cfg, kind, payload)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(ctx, exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Type:         string(kind),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", kind, err)
	}

	logger.Debug("Event published", map[string]interface{}{
		"event_type": kind,
		"exchange":   exchange,
		"queue":      key,
	})
	return nil
}

func (p *RabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		p.ch.Close()
	}
	return p.conn.Close()
}

// legacyCategoryMessage is the body format category consumers expect.
type legacyCategoryMessage struct {
	Action string      `json:"action"`
	Type   string      `json:"type"`
	Data   interface{} `json:"data"`
}

// encode picks the destination for kind and serialises the body.
// An empty exchange with a queue key uses the default direct exchange.
func encode(cfg config.RabbitMQConfig, kind Kind, payload interface{}) (exchange, key string, body []byte, err error) {
	var message interface{} = NewEvent(kind, payload)

	switch kind {
	case FilterCreated, FilterUpdated, FilterDeleted,
		FilterValueCreated, FilterValueUpdated, FilterValueDeleted,
		ProductFilterAdded:
		exchange = cfg.FilterExchange
	case ProductAdded:
		key = cfg.ProductAddedQueue
	case ProductUpdated:
		key = cfg.ProductUpdatedQueue
	case ProductDeleted:
		key = cfg.ProductDeletedQueue
	case CategoryCreated, CategoryUpdated, CategoryDeleted:
		change, ok := payload.(CategoryChange)
		if !ok {
			return "", "", nil, fmt.Errorf("category event needs a CategoryChange payload, got %T", payload)
		}
		key = cfg.CategoryQueue
		message = legacyCategoryMessage{Action: kind.Action(), Type: change.Level, Data: change.Category}
	default:
		return "", "", nil, fmt.Errorf("unknown event kind %q", kind)
	}

	body, err = json.Marshal(message)
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to encode %s: %w", kind, err)
	}
	return exchange, key, body, nil
}
