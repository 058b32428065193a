package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/vuhk2k6/web-order-sub000/internal/domains/loyalty/domain"
	"github.com/vuhk2k6/web-order-sub000/internal/domains/loyalty/ports"
)

const tracerName = "github.com/vuhk2k6/web-order-sub000/internal/domains/loyalty/adapters/observability/service"

// Service decorates the loyalty ledger with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

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
	return s
}

func (s *Service) Enroll(ctx context.Context, customerID string) (*domain.Account, error) {
	ctx, span := s.tracer.Start(ctx, "LoyaltyService.Enroll", trace.WithAttributes(attribute.String("customer.id", customerID)))
	defer span.End()

	account, err := s.inner.Enroll(ctx, customerID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to enroll customer", slog.String("customer.id", customerID))
	}
	s.logInfo(ctx, "customer enrolled", slog.String("customer.id", customerID), slog.String("loyalty.account_id", account.ID))
	return account, nil
}

func (s *Service) MemberByCustomer(ctx context.Context, customerID string) (*domain.Account, error) {
	ctx, span := s.tracer.Start(ctx, "LoyaltyService.MemberByCustomer", trace.WithAttributes(attribute.String("customer.id", customerID)))
	defer span.End()

	account, err := s.inner.MemberByCustomer(ctx, customerID)
	if err != nil {
		// Guests are routine, not failures.
		span.SetAttributes(attribute.Bool("loyalty.member", false))
		return nil, err
	}
	span.SetAttributes(attribute.Bool("loyalty.member", true), attribute.Int64("loyalty.balance", account.PointBalance))
	return account, nil
}

func (s *Service) Redeem(ctx context.Context, accountID string, points int64, orderID string) (*domain.LedgerEntry, error) {
	ctx, span := s.tracer.Start(ctx, "LoyaltyService.Redeem", trace.WithAttributes(
		attribute.String("loyalty.account_id", accountID),
		attribute.Int64("loyalty.points", points),
		attribute.String("order.id", orderID)))
	defer span.End()

	entry, err := s.inner.Redeem(ctx, accountID, points, orderID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to redeem points",
			slog.String("loyalty.account_id", accountID), slog.Int64("loyalty.points", points))
	}
	s.metrics.recordRedeemed(ctx, entry.Points)
	s.logInfo(ctx, "points redeemed", slog.String("loyalty.account_id", accountID), slog.Int64("loyalty.points", entry.Points), slog.String("order.id", orderID))
	return entry, nil
}

func (s *Service) Accrue(ctx context.Context, accountID string, amount int64, orderID string) (*domain.LedgerEntry, error) {
	ctx, span := s.tracer.Start(ctx, "LoyaltyService.Accrue", trace.WithAttributes(
		attribute.String("loyalty.account_id", accountID),
		attribute.Int64("loyalty.amount", amount)))
	defer span.End()

	entry, err := s.inner.Accrue(ctx, accountID, amount, orderID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to accrue points", slog.String("loyalty.account_id", accountID))
	}
	if entry != nil {
		s.metrics.recordEarned(ctx, entry.Points)
		s.logInfo(ctx, "points earned", slog.String("loyalty.account_id", accountID), slog.Int64("loyalty.points", entry.Points))
	}
	return entry, nil
}

func (s *Service) Reverse(ctx context.Context, entry domain.LedgerEntry) (*domain.LedgerEntry, error) {
	ctx, span := s.tracer.Start(ctx, "LoyaltyService.Reverse", trace.WithAttributes(attribute.String("loyalty.entry_id", entry.ID)))
	defer span.End()

	reversal, err := s.inner.Reverse(ctx, entry)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to reverse ledger entry", slog.String("loyalty.entry_id", entry.ID))
	}
	s.logInfo(ctx, "ledger entry reversed", slog.String("loyalty.entry_id", entry.ID), slog.String("loyalty.reversal_id", reversal.ID))
	return reversal, nil
}

func (s *Service) Reconcile(ctx context.Context, accountID string) (*ports.Reconciliation, error) {
	ctx, span := s.tracer.Start(ctx, "LoyaltyService.Reconcile", trace.WithAttributes(attribute.String("loyalty.account_id", accountID)))
	defer span.End()

	rec, err := s.inner.Reconcile(ctx, accountID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to reconcile account", slog.String("loyalty.account_id", accountID))
	}
	if drift := rec.Drift(); drift != 0 {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "loyalty balance drift detected",
			slog.String("loyalty.account_id", accountID), slog.Int64("loyalty.drift", drift))
	}
	return rec, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if s.logger != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	}
	return err
}

type serviceMetrics struct {
	pointsRedeemed metric.Int64Counter
	pointsEarned   metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	redeemed, _ := m.Int64Counter("loyalty.points_redeemed", metric.WithDescription("Points spent on orders"))
	earned, _ := m.Int64Counter("loyalty.points_earned", metric.WithDescription("Points earned on orders"))
	return serviceMetrics{pointsRedeemed: redeemed, pointsEarned: earned}
}

func (m serviceMetrics) recordRedeemed(ctx context.Context, points int64) {
	if m.pointsRedeemed != nil {
		m.pointsRedeemed.Add(ctx, points)
	}
}

func (m serviceMetrics) recordEarned(ctx context.Context, points int64) {
	if m.pointsEarned != nil {
		m.pointsEarned.Add(ctx, points)
	}
}

var _ ports.Service = (*Service)(nil)
