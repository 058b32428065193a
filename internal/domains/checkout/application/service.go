package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	catalogapp "github.com/vuhk2k6/web-order-sub000/internal/domains/catalog/application"
	"github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/domain"
	"github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/ports"
	fulfillmentapp "github.com/vuhk2k6/web-order-sub000/internal/domains/fulfillment/application"
	fulfillmentdomain "github.com/vuhk2k6/web-order-sub000/internal/domains/fulfillment/domain"
	loyaltyapp "github.com/vuhk2k6/web-order-sub000/internal/domains/loyalty/application"
	loyaltydomain "github.com/vuhk2k6/web-order-sub000/internal/domains/loyalty/domain"
	loyaltyports "github.com/vuhk2k6/web-order-sub000/internal/domains/loyalty/ports"
	promotionports "github.com/vuhk2k6/web-order-sub000/internal/domains/promotions/ports"
	"github.com/vuhk2k6/web-order-sub000/internal/shared/ids"
)

// AccrualBasis selects the amount loyalty points are earned on.
type AccrualBasis string

const (
	// AccrualNet earns on the final total the customer pays.
	AccrualNet AccrualBasis = "net"
	// AccrualGross earns on the subtotal before discounts and fees.
	AccrualGross AccrualBasis = "gross"
)

// ParseAccrualBasis defaults to AccrualNet for unknown values.
func ParseAccrualBasis(raw string) AccrualBasis {
	if AccrualBasis(strings.ToLower(strings.TrimSpace(raw))) == AccrualGross {
		return AccrualGross
	}
	return AccrualNet
}

const defaultGatewayTimeout = 10 * time.Second

// LedgerFactory builds a loyalty ledger over the repository of a unit of work.
type LedgerFactory func(repo loyaltyports.Repository) loyaltyports.Service

// Service orchestrates order creation.
type Service struct {
	uow        ports.UnitOfWork
	catalog    *catalogapp.Repricer
	promotions promotionports.Service
	members    loyaltyports.Service
	resolver   *fulfillmentapp.Resolver

	ledger         LedgerFactory
	accounts       loyaltyports.Locker
	gateway        ports.PaymentGateway
	events         ports.EventPublisher
	idempotency    ports.IdempotencyStore
	basis          AccrualBasis
	gatewayTimeout time.Duration
	logger         *slog.Logger
	now            func() time.Time
}

type Option func(*Service)

// WithLedger overrides how the in-transaction loyalty ledger is built.
func WithLedger(factory LedgerFactory) Option {
	return func(s *Service) {
		if factory != nil {
			s.ledger = factory
		}
	}
}

// WithAccountLocker serializes checkouts per loyalty account. The lock is
// taken before the unit of work starts and released after it commits, so
// ledgers built by WithLedger must not lock again.
func WithAccountLocker(locker loyaltyports.Locker) Option {
	return func(s *Service) {
		s.accounts = locker
	}
}

func WithPaymentGateway(gateway ports.PaymentGateway) Option {
	return func(s *Service) {
		s.gateway = gateway
	}
}

func WithEventPublisher(events ports.EventPublisher) Option {
	return func(s *Service) {
		s.events = events
	}
}

func WithIdempotencyStore(store ports.IdempotencyStore) Option {
	return func(s *Service) {
		s.idempotency = store
	}
}

func WithAccrualBasis(basis AccrualBasis) Option {
	return func(s *Service) {
		s.basis = basis
	}
}

// WithGatewayTimeout bounds every online wallet call.
func WithGatewayTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.gatewayTimeout = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(
	uow ports.UnitOfWork,
	catalog *catalogapp.Repricer,
	promotions promotionports.Service,
	members loyaltyports.Service,
	resolver *fulfillmentapp.Resolver,
	opts ...Option,
) *Service {
	s := &Service{
		uow:        uow,
		catalog:    catalog,
		promotions: promotions,
		members:    members,
		resolver:   resolver,
		ledger: func(repo loyaltyports.Repository) loyaltyports.Service {
			return loyaltyapp.NewService(repo)
		},
		basis:          AccrualNet,
		gatewayTimeout: defaultGatewayTimeout,
		logger:         slog.New(slog.DiscardHandler),
		now:            time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// checkoutPlan is everything decided before the first write.
type checkoutPlan struct {
	method      domain.PaymentMethod
	request     fulfillmentdomain.Request
	lines       []catalogapp.PricedLine
	promotionID string
	member      *loyaltydomain.Account
	breakdown   domain.Breakdown
}

type commitResult struct {
	order           domain.Order
	transactionCode string
	pointsEarned    int64
}

// PlaceOrder validates, prices and atomically persists an order. For online
// payments a gateway failure is reported on the result, never as an error.
func (s *Service) PlaceOrder(ctx context.Context, cmd ports.PlaceOrderCommand) (*ports.PlaceOrderResult, error) {
	orderID := ids.New()

	key := strings.TrimSpace(cmd.IdempotencyKey)
	if key != "" && s.idempotency != nil {
		hash, err := FingerprintPlaceOrder(cmd)
		if err != nil {
			return nil, err
		}
		stored, err := s.idempotency.Save(ctx, ports.IdempotencyRecord{
			Key:         key,
			RequestHash: hash,
			OrderID:     orderID,
			CreatedAt:   s.now(),
		})
		if err != nil {
			return nil, err
		}
		if stored.OrderID != orderID {
			return s.replay(ctx, stored.OrderID, cmd.DeferPayment)
		}
	} else {
		key = ""
	}

	result, err := s.placeOrder(ctx, orderID, cmd)
	if err != nil {
		if key != "" {
			if derr := s.idempotency.Delete(context.WithoutCancel(ctx), key); derr != nil {
				s.logger.LogAttrs(ctx, slog.LevelWarn, "idempotency key release failed",
					slog.String("idempotency.key", key), slog.String("error", derr.Error()))
			}
		}
		return nil, err
	}
	return result, nil
}

func (s *Service) placeOrder(ctx context.Context, orderID string, cmd ports.PlaceOrderCommand) (*ports.PlaceOrderResult, error) {
	plan, err := s.prepare(ctx, cmd)
	if err != nil {
		return nil, mapError(err)
	}

	committed, err := s.commit(ctx, orderID, strings.TrimSpace(cmd.CustomerID), plan)
	if err != nil {
		return nil, mapError(err)
	}

	result := &ports.PlaceOrderResult{
		OrderID:         committed.order.ID,
		TransactionCode: committed.transactionCode,
		Status:          committed.order.Status,
		Breakdown:       plan.breakdown,
		PointsEarned:    committed.pointsEarned,
	}
	s.publish(ctx, committed, plan)

	if plan.method == domain.PaymentOnline && !cmd.DeferPayment {
		s.attachPayment(ctx, result, committed.order, committed.transactionCode)
	}
	return result, nil
}

// attachPayment asks the wallet for a pay URL. A failure is recorded on the
// result so the caller can retry through InitiatePayment.
func (s *Service) attachPayment(ctx context.Context, result *ports.PlaceOrderResult, order domain.Order, transactionCode string) {
	link, err := s.requestPayment(ctx, order, transactionCode)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "payment link not created",
			slog.String("order.id", order.ID), slog.String("error", err.Error()))
		result.PaymentError = err.Error()
		return
	}
	result.PayURL = link.PayURL
}

func (s *Service) prepare(ctx context.Context, cmd ports.PlaceOrderCommand) (*checkoutPlan, error) {
	mode, err := fulfillmentdomain.ParseMode(cmd.OrderType)
	if err != nil {
		return nil, err
	}
	method, err := domain.ParsePaymentMethod(cmd.PaymentMethod)
	if err != nil {
		return nil, err
	}
	request := fulfillmentdomain.Request{Mode: mode, Delivery: cmd.DeliveryAddress, TableNumber: cmd.TableNumber}
	quote, err := s.resolver.Quote(request)
	if err != nil {
		return nil, err
	}
	if cmd.PointsRequested < 0 {
		return nil, fmt.Errorf("%w: points must not be negative", ErrInvalidInput)
	}
	customerID := strings.TrimSpace(cmd.CustomerID)
	if cmd.PointsRequested > 0 && customerID == "" {
		return nil, ErrLoginRequired
	}
	if len(cmd.Items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	requests := make([]catalogapp.LineRequest, 0, len(cmd.Items))
	for _, it := range cmd.Items {
		requests = append(requests, catalogapp.LineRequest{
			ItemID:      strings.TrimSpace(it.ItemID),
			Quantity:    it.Quantity,
			Size:        it.Size,
			Note:        it.Note,
			ClientPrice: it.Price,
		})
	}
	priced, err := s.catalog.Reprice(ctx, requests)
	if err != nil {
		return nil, err
	}
	cart := make([]domain.CartLine, 0, len(priced))
	for _, line := range priced {
		if line.Stale() {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "client price differs from catalog",
				slog.String("menu_item.id", line.ItemID),
				slog.Int64("price.client", line.ClientPrice),
				slog.Int64("price.catalog", line.UnitPrice))
		}
		cart = append(cart, domain.CartLine{
			ItemID:    line.ItemID,
			Name:      line.Name,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			Size:      line.Size,
			Note:      line.Note,
		})
	}
	if err := domain.ValidateCart(cart); err != nil {
		return nil, err
	}
	subtotal := domain.Subtotal(cart)

	plan := &checkoutPlan{method: method, request: request, lines: priced}

	var promoDiscount int64
	if code := strings.TrimSpace(cmd.PromoCode); code != "" {
		promo, err := s.promotions.Validate(ctx, code, subtotal)
		if err != nil {
			return nil, fmt.Errorf("promotion %q: %w", code, err)
		}
		plan.promotionID = promo.PromotionID
		promoDiscount = promo.Discount
	}

	var balance int64
	if customerID != "" {
		member, err := s.members.MemberByCustomer(ctx, customerID)
		switch {
		case err == nil:
			plan.member = member
			balance = member.PointBalance
		case errors.Is(err, loyaltyports.ErrNotFound):
			if cmd.PointsRequested > 0 {
				s.logger.LogAttrs(ctx, slog.LevelInfo, "points ignored for non-member",
					slog.String("customer.id", customerID))
			}
		default:
			return nil, err
		}
	}

	plan.breakdown = domain.Calculate(domain.PricingInput{
		Subtotal:        subtotal,
		PointsRequested: cmd.PointsRequested,
		PointBalance:    balance,
		PromoDiscount:   promoDiscount,
		DeliveryFee:     quote.DeliveryFee,
	})
	if cmd.ClientTotal > 0 && cmd.ClientTotal != plan.breakdown.Total ||
		cmd.ClientDeliveryFee > 0 && cmd.ClientDeliveryFee != plan.breakdown.DeliveryFee {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "client totals differ from server pricing",
			slog.Int64("total.client", cmd.ClientTotal),
			slog.Int64("total.server", plan.breakdown.Total),
			slog.Int64("delivery_fee.client", cmd.ClientDeliveryFee),
			slog.Int64("delivery_fee.server", plan.breakdown.DeliveryFee))
	}
	return plan, nil
}

func (s *Service) commit(ctx context.Context, orderID, customerID string, plan *checkoutPlan) (*commitResult, error) {
	if plan.member != nil && s.accounts != nil {
		unlock, err := s.accounts.Lock(ctx, loyaltyapp.LockKey(plan.member.ID))
		if err != nil {
			return nil, fmt.Errorf("lock loyalty account %s: %w", plan.member.ID, err)
		}
		defer func() { _ = unlock(context.WithoutCancel(ctx)) }()
	}
	var out *commitResult
	err := s.uow.Do(ctx, func(ctx context.Context, stores ports.Stores) error {
		sg := newSaga(s.logger)
		res, err := s.write(ctx, stores, sg, orderID, customerID, plan)
		if err != nil {
			if s.uow.Transactional() {
				return err
			}
			return sg.abort(ctx, err)
		}
		out = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) write(ctx context.Context, stores ports.Stores, sg *saga, orderID, customerID string, plan *checkoutPlan) (*commitResult, error) {
	now := s.now()

	sg.begin("order")
	order, err := domain.NewOrder(orderID, customerID, plan.request.Mode, plan.breakdown, plan.promotionID, plan.method, now)
	if err != nil {
		return nil, err
	}
	lines := make([]domain.OrderLine, 0, len(plan.lines))
	for _, l := range plan.lines {
		lines = append(lines, domain.OrderLine{
			OrderID:          orderID,
			MenuItemID:       l.ItemID,
			Name:             l.Name,
			Quantity:         l.Quantity,
			PriceAtOrderTime: l.UnitPrice,
			Size:             l.Size,
			Note:             l.Note,
		})
	}
	if err := stores.Orders.CreateOrder(ctx, *order, lines); err != nil {
		return nil, err
	}
	sg.completed("order "+orderID, func(ctx context.Context) error {
		return stores.Orders.DeleteOrder(ctx, orderID)
	})

	sg.begin("fulfillment")
	resolution, err := s.resolver.Resolve(ctx, stores.Tables, orderID, plan.request)
	if err != nil {
		return nil, err
	}
	if plan.request.Mode == fulfillmentdomain.ModeDineIn {
		sg.completed(fmt.Sprintf("table %d", plan.request.TableNumber), resolution.Undo)
	}
	if err := stores.Orders.SaveFulfillment(ctx, orderID, resolution.Detail); err != nil {
		return nil, err
	}
	sg.completed("fulfillment detail "+orderID, func(ctx context.Context) error {
		return stores.Orders.DeleteFulfillment(ctx, orderID)
	})

	var earned int64
	if plan.member != nil {
		ledger := s.ledger(stores.Loyalty)
		accountID := plan.member.ID

		if points := plan.breakdown.PointsDiscount; points > 0 {
			sg.begin("redeem")
			entry, err := ledger.Redeem(ctx, accountID, points, orderID)
			if err != nil {
				return nil, err
			}
			sg.completed("redeem entry "+entry.ID, func(ctx context.Context) error {
				_, err := ledger.Reverse(ctx, *entry)
				return err
			})
		}

		sg.begin("accrue")
		entry, err := ledger.Accrue(ctx, accountID, s.accrualAmount(plan.breakdown), orderID)
		if err != nil {
			return nil, err
		}
		if entry != nil {
			earned = entry.Points
			sg.completed("earn entry "+entry.ID, func(ctx context.Context) error {
				_, err := ledger.Reverse(ctx, *entry)
				return err
			})
		}
	}

	sg.begin("payment")
	payment := domain.Payment{
		OrderID:         orderID,
		Method:          plan.method,
		Amount:          plan.breakdown.Total,
		TransactionCode: ids.TransactionCode(),
		Status:          domain.PaymentStatusPending,
	}
	if err := stores.Orders.SavePayment(ctx, payment); err != nil {
		return nil, err
	}

	return &commitResult{order: *order, transactionCode: payment.TransactionCode, pointsEarned: earned}, nil
}

func (s *Service) accrualAmount(b domain.Breakdown) int64 {
	if s.basis == AccrualGross {
		return b.Subtotal
	}
	return b.Total
}

func (s *Service) publish(ctx context.Context, committed *commitResult, plan *checkoutPlan) {
	if s.events == nil {
		return
	}
	event := domain.OrderPlaced{
		OrderID:         committed.order.ID,
		CustomerID:      committed.order.CustomerID,
		OrderType:       string(committed.order.Type),
		PaymentMethod:   plan.method,
		Status:          committed.order.Status,
		TotalAmount:     committed.order.TotalAmount,
		PointsRedeemed:  committed.order.PointsRedeemed,
		PointsEarned:    committed.pointsEarned,
		TransactionCode: committed.transactionCode,
		Items:           len(plan.lines),
		Timestamp:       s.now(),
	}
	if err := s.events.PublishOrderPlaced(ctx, event); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "order placed event not published",
			slog.String("order.id", event.OrderID), slog.String("error", err.Error()))
	}
}

// replay answers a repeated idempotency key with the stored order. An online
// order still awaiting payment gets a fresh pay URL unless deferPayment is set.
func (s *Service) replay(ctx context.Context, orderID string, deferPayment bool) (*ports.PlaceOrderResult, error) {
	agg, err := s.load(ctx, orderID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, ports.ErrIdempotencyInProgress
		}
		return nil, err
	}
	result := &ports.PlaceOrderResult{
		OrderID:         agg.Order.ID,
		TransactionCode: agg.Payment.TransactionCode,
		Status:          agg.Order.Status,
		Breakdown:       agg.Order.Breakdown(),
		Replayed:        true,
	}
	if agg.Order.CustomerID != "" {
		if _, err := s.members.MemberByCustomer(ctx, agg.Order.CustomerID); err == nil {
			result.PointsEarned = loyaltydomain.EarnedPoints(s.accrualAmount(result.Breakdown))
		}
	}
	if agg.Payment.Method == domain.PaymentOnline && agg.Order.Status == domain.StatusPaymentPending && !deferPayment {
		s.attachPayment(ctx, result, agg.Order, agg.Payment.TransactionCode)
	}
	return result, nil
}

// InitiatePayment requests a payment link for an existing online order.
// It is the retry path after a gateway failure at checkout.
func (s *Service) InitiatePayment(ctx context.Context, orderID string) (*ports.PaymentLink, error) {
	agg, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if agg.Payment.Method != domain.PaymentOnline {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, ErrNotOnlinePayment)
	}
	return s.requestPayment(ctx, agg.Order, agg.Payment.TransactionCode)
}

// GetOrder accepts a raw id and uses its leading 24 hex characters.
func (s *Service) GetOrder(ctx context.Context, rawOrderID string) (*domain.Aggregate, error) {
	orderID, ok := ids.Extract(rawOrderID)
	if !ok {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, domain.ErrInvalidOrderID)
	}
	return s.load(ctx, orderID)
}

func (s *Service) load(ctx context.Context, orderID string) (*domain.Aggregate, error) {
	var agg *domain.Aggregate
	err := s.uow.Do(ctx, func(ctx context.Context, stores ports.Stores) error {
		found, err := stores.Orders.Get(ctx, orderID)
		agg = found
		return err
	})
	if err != nil {
		return nil, err
	}
	return agg, nil
}

func (s *Service) requestPayment(ctx context.Context, order domain.Order, transactionCode string) (*ports.PaymentLink, error) {
	if s.gateway == nil {
		return nil, fmt.Errorf("%w: no online wallet configured", ErrGateway)
	}
	ctx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()
	link, err := s.gateway.CreatePayment(ctx, ports.PaymentRequest{
		OrderID:         order.ID,
		TransactionCode: transactionCode,
		Amount:          order.TotalAmount,
		Description:     "Payment for order " + order.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGateway, err)
	}
	return link, nil
}

// GatewayName is the configured wallet name, empty when none is set.
func (s *Service) GatewayName() string {
	if s.gateway == nil {
		return ""
	}
	return s.gateway.Name()
}

var _ ports.Service = (*Service)(nil)
