// Package notify hands completed orders to the confirmation pipeline and
// renders and sends the confirmation e-mail on the consumer side.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/imrishuroy/storefront-checkout/internal/orders"
)

// MessageType tags queue messages carrying a Confirmation.
const MessageType = "order_confirmation"

// Confirmation is the queue payload: the order and its lines as committed.
type Confirmation struct {
	Order orders.Order       `json:"order"`
	Items []orders.OrderItem `json:"items"`
}

// Publisher sends a message body with string attributes. *aws.Publisher
// satisfies it.
type Publisher interface {
	Publish(ctx context.Context, messageBody string, attributes map[string]string) (string, error)
}

// SQSDispatcher enqueues confirmations for the worker.
type SQSDispatcher struct {
	publisher Publisher
	logger    *zap.Logger
}

func NewSQSDispatcher(publisher Publisher, logger *zap.Logger) *SQSDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQSDispatcher{publisher: publisher, logger: logger}
}

// SendOrderConfirmation publishes the order snapshot. Delivery of the e-mail
// happens asynchronously in the worker.
func (d *SQSDispatcher) SendOrderConfirmation(ctx context.Context, order orders.Order, items []orders.OrderItem) error {
	body, err := json.Marshal(Confirmation{Order: order, Items: items})
	if err != nil {
		return fmt.Errorf("marshal confirmation: %w", err)
	}
	msgID, err := d.publisher.Publish(ctx, string(body), map[string]string{
		"type":       MessageType,
		"order_id":   order.OrderID,
		"user_email": order.UserEmail,
	})
	if err != nil {
		return fmt.Errorf("publish confirmation: %w", err)
	}
	d.logger.Info("order confirmation enqueued",
		zap.String("order_id", order.OrderID),
		zap.String("message_id", msgID))
	return nil
}
