package events

import (
	"context"
	"log/slog"

	"github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/domain"
	"github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/ports"
)

var _ ports.EventPublisher = (*LogPublisher)(nil)

// LogPublisher writes events to the log when no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) PublishOrderPlaced(ctx context.Context, event domain.OrderPlaced) error {
	p.logger.LogAttrs(ctx, slog.LevelInfo, event.EventName(),
		slog.String("order.id", event.OrderID),
		slog.String("order.type", event.OrderType),
		slog.Int64("order.total", event.TotalAmount),
		slog.Int64("loyalty.points_redeemed", event.PointsRedeemed),
		slog.Int64("loyalty.points_earned", event.PointsEarned))
	return nil
}
