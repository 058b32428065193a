package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/domain"
	"github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/ports"
)

const tracerName = "github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/adapters/observability/service"

// Service decorates the checkout orchestrator with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:  inner,
		tracer: nooptrace.NewTracerProvider().Tracer(tracerName),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	return s
}

// PlaceOrder creates an order with instrumentation.
func (s *Service) PlaceOrder(ctx context.Context, cmd ports.PlaceOrderCommand) (*ports.PlaceOrderResult, error) {
	ctx, span := s.tracer.Start(ctx, "CheckoutService.PlaceOrder", trace.WithAttributes(
		attribute.String("order.type", cmd.OrderType),
		attribute.String("payment.method", cmd.PaymentMethod),
		attribute.Int("order.items", len(cmd.Items)),
		attribute.Bool("customer.authenticated", cmd.CustomerID != "")))
	defer span.End()

	s.logger.LogAttrs(ctx, slog.LevelInfo, "placing order",
		slog.String("order.type", cmd.OrderType), slog.Int("order.items", len(cmd.Items)))
	result, err := s.inner.PlaceOrder(ctx, cmd)
	if err != nil {
		s.metrics.recordFailed(ctx, cmd.OrderType)
		return nil, s.handleError(ctx, span, err, "failed to place order", slog.String("order.type", cmd.OrderType))
	}
	span.SetAttributes(
		attribute.String("order.id", result.OrderID),
		attribute.Int64("order.total", result.Breakdown.Total),
		attribute.Bool("order.replayed", result.Replayed))
	if !result.Replayed {
		s.metrics.recordPlaced(ctx, cmd.OrderType, result.Breakdown.Total)
	}
	attrs := []slog.Attr{
		slog.String("order.id", result.OrderID),
		slog.String("order.status", string(result.Status)),
		slog.Int64("order.total", result.Breakdown.Total),
	}
	if result.PaymentError != "" {
		attrs = append(attrs, slog.String("payment.error", result.PaymentError))
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "order placed", attrs...)
	return result, nil
}

func (s *Service) InitiatePayment(ctx context.Context, orderID string) (*ports.PaymentLink, error) {
	ctx, span := s.tracer.Start(ctx, "CheckoutService.InitiatePayment", trace.WithAttributes(attribute.String("order.id", orderID)))
	defer span.End()

	link, err := s.inner.InitiatePayment(ctx, orderID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to initiate payment", slog.String("order.id", orderID))
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "payment link created", slog.String("order.id", orderID), slog.String("payment.gateway", link.Gateway))
	return link, nil
}

func (s *Service) GetOrder(ctx context.Context, rawOrderID string) (*domain.Aggregate, error) {
	ctx, span := s.tracer.Start(ctx, "CheckoutService.GetOrder", trace.WithAttributes(attribute.String("order.id", rawOrderID)))
	defer span.End()

	agg, err := s.inner.GetOrder(ctx, rawOrderID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order", slog.String("order.id", rawOrderID))
	}
	return agg, nil
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	attrs = append(attrs, slog.String("error", err.Error()))
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	return err
}

// OrderTotalMetric is the histogram of committed order totals.
const OrderTotalMetric = "checkout.order_total"

type serviceMetrics struct {
	placed metric.Int64Counter
	failed metric.Int64Counter
	totals metric.Int64Histogram
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	placed, _ := m.Int64Counter("checkout.orders_placed", metric.WithDescription("Orders committed at checkout"))
	failed, _ := m.Int64Counter("checkout.orders_failed", metric.WithDescription("Checkout submissions rejected or failed"))
	totals, _ := m.Int64Histogram(OrderTotalMetric, metric.WithDescription("Final amount of committed orders"), metric.WithUnit("VND"))
	return serviceMetrics{placed: placed, failed: failed, totals: totals}
}

func (m serviceMetrics) recordPlaced(ctx context.Context, orderType string, total int64) {
	attrs := metric.WithAttributes(attribute.String("order.type", orderType))
	if m.placed != nil {
		m.placed.Add(ctx, 1, attrs)
	}
	if m.totals != nil {
		m.totals.Record(ctx, total, attrs)
	}
}

func (m serviceMetrics) recordFailed(ctx context.Context, orderType string) {
	if m.failed != nil {
		m.failed.Add(ctx, 1, metric.WithAttributes(attribute.String("order.type", orderType)))
	}
}

var _ ports.Service = (*Service)(nil)
