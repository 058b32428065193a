package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/domain"
	"github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/ports"
	"github.com/vuhk2k6/web-order-sub000/internal/platform/messaging"
)

// Broker publishes a confirmed message to an exchange.
type Broker interface {
	Publish(ctx context.Context, exchange, key, correlationID string, body []byte, headers amqp.Table) error
}

var _ ports.EventPublisher = (*RabbitPublisher)(nil)

// RabbitPublisher routes order events to the kitchen topic exchange as
// kitchen.<order type>.placed.
type RabbitPublisher struct {
	broker  Broker
	timeout time.Duration
}

func NewRabbitPublisher(broker Broker) *RabbitPublisher {
	return &RabbitPublisher{broker: broker, timeout: 5 * time.Second}
}

func (p *RabbitPublisher) PublishOrderPlaced(ctx context.Context, event domain.OrderPlaced) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.broker.Publish(ctx, messaging.OrdersExchange, RoutingKey(event), event.OrderID, body, amqp.Table{
		"x-source":     "checkout",
		"x-event-name": event.EventName(),
	})
}

// RoutingKey is kitchen.<order type>.placed in lower case.
func RoutingKey(event domain.OrderPlaced) string {
	return fmt.Sprintf("kitchen.%s.placed", strings.ToLower(event.OrderType))
}
