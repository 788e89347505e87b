package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ikkim/catalog-backend/pkg/logger"
	amqp "github.com/rabbitmq/amqp091-go"
)

// StockUpdater applies an absolute stock level to a product.
type StockUpdater interface {
	UpdateStock(ctx context.Context, productID uint, newStock int) error
}

// StockUpdate is the body of a stock_updated message.
type StockUpdate struct {
	ProductID *int64 `json:"productId"`
	NewStock  *int64 `json:"newStock"`
}

var errMalformedStockUpdate = errors.New("malformed stock update")

// StockConsumer reads stock updates. A message is acked once applied and
// rejected without requeue otherwise.
type StockConsumer struct {
	conn    *amqp.Connection
	queue   string
	updater StockUpdater
}

func NewStockConsumer(conn *amqp.Connection, queue string, updater StockUpdater) *StockConsumer {
	return &StockConsumer{conn: conn, queue: queue, updater: updater}
}

// Run consumes until ctx is done or the delivery channel closes.
func (c *StockConsumer) Run(ctx context.Context) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open consumer channel: %w", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", c.queue, err)
	}

	deliveries, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to consume %s: %w", c.queue, err)
	}

	logger.Info("Listening for stock updates", map[string]interface{}{
		"queue": c.queue,
	})

	for {
		select {
		case <-ctx.Done():
			return nil
		case delivery, ok := <-deliveries:
			if !ok {
				logger.Warn("Stock update deliveries closed", map[string]interface{}{
					"queue": c.queue,
				})
				return nil
			}
			c.handle(ctx, delivery)
		}
	}
}

func (c *StockConsumer) handle(ctx context.Context, delivery amqp.Delivery) {
	if err := c.apply(ctx, delivery.Body); err != nil {
		logger.Error("Failed to process stock update", err, map[string]interface{}{
			"body": string(delivery.Body),
		})
		if nackErr := delivery.Nack(false, false); nackErr != nil {
			logger.Error("Failed to reject stock update", nackErr)
		}
		return
	}

	if err := delivery.Ack(false); err != nil {
		logger.Error("Failed to ack stock update", err)
	}
}

func (c *StockConsumer) apply(ctx context.Context, body []byte) error {
	var update StockUpdate
	if err := json.Unmarshal(body, &update); err != nil {
		return fmt.Errorf("%w: %v", errMalformedStockUpdate, err)
	}
	if update.ProductID == nil || update.NewStock == nil || *update.ProductID <= 0 {
		return errMalformedStockUpdate
	}

	logger.Info("Received stock update", map[string]interface{}{
		"product_id": *update.ProductID,
		"new_stock":  *update.NewStock,
	})
	return c.updater.UpdateStock(ctx, uint(*update.ProductID), int(*update.NewStock))
}
