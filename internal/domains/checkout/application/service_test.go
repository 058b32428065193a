package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	catalogmemory "github.com/vuhk2k6/web-order-sub000/internal/domains/catalog/adapters/memory"
	catalogapp "github.com/vuhk2k6/web-order-sub000/internal/domains/catalog/application"
	catalogdomain "github.com/vuhk2k6/web-order-sub000/internal/domains/catalog/domain"
	checkoutmemory "github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/adapters/memory"
	"github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/domain"
	"github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/ports"
	fulfillmentmemory "github.com/vuhk2k6/web-order-sub000/internal/domains/fulfillment/adapters/memory"
	fulfillmentapp "github.com/vuhk2k6/web-order-sub000/internal/domains/fulfillment/application"
	fulfillmentdomain "github.com/vuhk2k6/web-order-sub000/internal/domains/fulfillment/domain"
	fulfillmentports "github.com/vuhk2k6/web-order-sub000/internal/domains/fulfillment/ports"
	loyaltymemory "github.com/vuhk2k6/web-order-sub000/internal/domains/loyalty/adapters/memory"
	loyaltyapp "github.com/vuhk2k6/web-order-sub000/internal/domains/loyalty/application"
	loyaltydomain "github.com/vuhk2k6/web-order-sub000/internal/domains/loyalty/domain"
	loyaltyports "github.com/vuhk2k6/web-order-sub000/internal/domains/loyalty/ports"
	promotionmemory "github.com/vuhk2k6/web-order-sub000/internal/domains/promotions/adapters/memory"
	promotionapp "github.com/vuhk2k6/web-order-sub000/internal/domains/promotions/application"
	promotiondomain "github.com/vuhk2k6/web-order-sub000/internal/domains/promotions/domain"
	promotionports "github.com/vuhk2k6/web-order-sub000/internal/domains/promotions/ports"
)

const (
	phoItem   = "65f000000000000000000001"
	teaItem   = "65f000000000000000000002"
	sauceItem = "65f000000000000000000003"
	memberID  = "65c000000000000000000001"
	accountID = "65a000000000000000000001"
)

var testNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

type harness struct {
	svc *Service
	uow ports.UnitOfWork

	// gate, when set, holds every commit until all gated callers arrive.
	gate *sync.WaitGroup

	orders      *checkoutmemory.OrderRepository
	loyalty     *loyaltymemory.Repository
	tables      *fulfillmentmemory.TableRepository
	idempotency *checkoutmemory.IdempotencyStore
	gateway     *fakeGateway
	events      *recordingPublisher
}

type fakeGateway struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (g *fakeGateway) Name() string { return "momo" }

func (g *fakeGateway) CreatePayment(_ context.Context, req ports.PaymentRequest) (*ports.PaymentLink, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return &ports.PaymentLink{Gateway: "momo", PayURL: "https://wallet.test/pay?order=" + req.OrderID}, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.OrderPlaced
	err    error
}

func (p *recordingPublisher) PublishOrderPlaced(_ context.Context, e domain.OrderPlaced) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func newHarness(t *testing.T, balance int64, opts ...Option) *harness {
	t.Helper()
	h, err := buildHarness(balance, opts...)
	require.NoError(t, err)
	return h
}

// buildHarness seeds the catalog, promotions, table 4 and one loyalty member
// holding balance points.
func buildHarness(balance int64, opts ...Option) (*harness, error) {
	pho, err := catalogdomain.NewMenuItem(phoItem, "Pho bo", 100000, []string{"M", "L"}, true)
	if err != nil {
		return nil, err
	}
	tea, err := catalogdomain.NewMenuItem(teaItem, "Tra dao", 50000, nil, true)
	if err != nil {
		return nil, err
	}
	sauce, err := catalogdomain.NewMenuItem(sauceItem, "Extra sauce", 60, nil, true)
	if err != nil {
		return nil, err
	}

	save50k, err := promotiondomain.NewPromotion("64f000000000000000000001", "SAVE50K", "Save 50k",
		promotiondomain.DiscountFixedAmount, decimal.NewFromInt(50000), testNow.AddDate(0, -1, 0), testNow.AddDate(0, 1, 0), 200000)
	if err != nil {
		return nil, err
	}
	old, err := promotiondomain.NewPromotion("64f000000000000000000002", "OLD10", "Old 10%",
		promotiondomain.DiscountPercent, decimal.NewFromInt(10), testNow.AddDate(0, -3, 0), testNow.AddDate(0, -1, 0), 0)
	if err != nil {
		return nil, err
	}

	loyaltyRepo := loyaltymemory.NewRepository()
	loyaltyRepo.Seed(loyaltydomain.Account{
		ID: accountID, CustomerID: memberID, PointBalance: balance, Tier: loyaltydomain.TierBronze, CreatedAt: testNow,
	}, "65e000000000000000000001")

	table4, err := fulfillmentdomain.NewTable("65b000000000000000000004", 4)
	if err != nil {
		return nil, err
	}
	tables := fulfillmentmemory.NewTableRepository(*table4)
	orders := checkoutmemory.NewOrderRepository()
	h := &harness{
		orders:      orders,
		loyalty:     loyaltyRepo,
		tables:      tables,
		idempotency: checkoutmemory.NewIdempotencyStore(),
		gateway:     &fakeGateway{},
		events:      &recordingPublisher{},
	}
	h.uow = checkoutmemory.NewUnitOfWork(ports.Stores{Orders: orders, Loyalty: loyaltyRepo, Tables: tables})

	clock := func() time.Time { return testNow }
	locker := loyaltymemory.NewLocker()
	base := []Option{
		WithClock(clock),
		WithPaymentGateway(h.gateway),
		WithEventPublisher(h.events),
		WithIdempotencyStore(h.idempotency),
		WithAccountLocker(locker),
		WithLedger(func(repo loyaltyports.Repository) loyaltyports.Service {
			return loyaltyapp.NewService(repo, loyaltyapp.WithClock(clock))
		}),
	}
	h.svc = NewService(
		h,
		catalogapp.NewRepricer(catalogmemory.NewRepository(pho, tea, sauce)),
		promotionapp.NewService(promotionmemory.NewRepository(save50k, old), promotionapp.WithClock(clock)),
		loyaltyapp.NewService(loyaltyRepo),
		fulfillmentapp.NewResolver(fulfillmentapp.WithClock(clock)),
		append(base, opts...)...,
	)
	return h, nil
}

func (h *harness) balance(t *testing.T) int64 {
	t.Helper()
	balance, err := h.ledgerBalance()
	require.NoError(t, err)
	return balance
}

// ledgerBalance returns the member's balance after checking it equals the
// sum of the ledger.
func (h *harness) ledgerBalance() (int64, error) {
	acct, err := h.loyalty.GetAccount(context.Background(), accountID)
	if err != nil {
		return 0, err
	}
	entries, err := h.loyalty.ListEntries(context.Background(), accountID)
	if err != nil {
		return 0, err
	}
	if sum := loyaltydomain.Balance(entries); sum != acct.PointBalance {
		return 0, fmt.Errorf("balance %d does not match ledger sum %d", acct.PointBalance, sum)
	}
	return acct.PointBalance, nil
}

func (h *harness) Do(ctx context.Context, fn func(ctx context.Context, stores ports.Stores) error) error {
	if h.gate != nil {
		h.gate.Done()
		h.gate.Wait()
	}
	return h.uow.Do(ctx, fn)
}

func (h *harness) Transactional() bool { return h.uow.Transactional() }

func takeaway(items ...ports.LineInput) ports.PlaceOrderCommand {
	return ports.PlaceOrderCommand{OrderType: "TAKEAWAY", PaymentMethod: "CASH", Items: items}
}

func TestPlaceOrder_FixedPromotion(t *testing.T) {
	h := newHarness(t, 0)
	cmd := takeaway(ports.LineInput{ItemID: phoItem, Quantity: 3, Size: "M", Price: 100000})
	cmd.PromoCode = "save50k"

	res, err := h.svc.PlaceOrder(context.Background(), cmd)
	require.NoError(t, err)
	require.Equal(t, domain.Breakdown{Subtotal: 300000, PromoDiscount: 50000, Total: 250000}, res.Breakdown)
	require.Equal(t, domain.StatusPending, res.Status)
	require.True(t, strings.HasPrefix(res.TransactionCode, "TX"))

	agg, err := h.svc.GetOrder(context.Background(), res.OrderID)
	require.NoError(t, err)
	require.Equal(t, "64f000000000000000000001", agg.Order.PromotionID)
	require.Len(t, agg.Lines, 1)
	require.Equal(t, int64(100000), agg.Lines[0].PriceAtOrderTime)
	require.Equal(t, int64(250000), agg.Payment.Amount)
	require.NoError(t, agg.Validate())
}

func TestPlaceOrder_PointsClampedToBalance(t *testing.T) {
	h := newHarness(t, 80)
	cmd := takeaway(ports.LineInput{ItemID: phoItem, Quantity: 1, Size: "L"})
	cmd.CustomerID = memberID
	cmd.PointsRequested = 150

	res, err := h.svc.PlaceOrder(context.Background(), cmd)
	require.NoError(t, err)
	require.Equal(t, int64(80), res.Breakdown.PointsDiscount)
	require.Equal(t, int64(99920), res.Breakdown.Total)
	// Net basis: floor(99,920 / 100).
	require.Equal(t, int64(999), res.PointsEarned)
	require.Equal(t, int64(999), h.balance(t))
}

func TestPlaceOrder_DineInWithoutTableCreatesNothing(t *testing.T) {
	h := newHarness(t, 0)
	cmd := ports.PlaceOrderCommand{OrderType: "DINE_IN", PaymentMethod: "CASH",
		Items: []ports.LineInput{{ItemID: teaItem, Quantity: 1}}}

	_, err := h.svc.PlaceOrder(context.Background(), cmd)
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, fulfillmentdomain.ErrTableRequired)
	require.Zero(t, h.orders.Count())
}

func TestPlaceOrder_DineInOccupiesTable(t *testing.T) {
	h := newHarness(t, 0)
	cmd := ports.PlaceOrderCommand{OrderType: "dine_in", PaymentMethod: "cash", TableNumber: 4,
		Items: []ports.LineInput{{ItemID: teaItem, Quantity: 2}}}

	res, err := h.svc.PlaceOrder(context.Background(), cmd)
	require.NoError(t, err)
	require.Zero(t, res.Breakdown.DeliveryFee)

	table, err := h.tables.FindByNumber(context.Background(), 4)
	require.NoError(t, err)
	require.Equal(t, fulfillmentdomain.TableOccupied, table.Status)

	agg, err := h.svc.GetOrder(context.Background(), res.OrderID)
	require.NoError(t, err)
	require.NotNil(t, agg.Fulfillment.DineIn)
	require.Equal(t, 4, agg.Fulfillment.DineIn.TableNumber)
}

func TestPlaceOrder_UnknownTableRejectedByDefault(t *testing.T) {
	h := newHarness(t, 0)
	cmd := ports.PlaceOrderCommand{OrderType: "DINE_IN", PaymentMethod: "CASH", TableNumber: 12,
		Items: []ports.LineInput{{ItemID: teaItem, Quantity: 1}}}

	_, err := h.svc.PlaceOrder(context.Background(), cmd)
	require.ErrorIs(t, err, fulfillmentports.ErrTableNotFound)
	require.ErrorContains(t, err, "table 12")
	require.Zero(t, h.orders.Count())
}

func TestPlaceOrder_DeliveryAddsFlatFee(t *testing.T) {
	h := newHarness(t, 500)
	cmd := ports.PlaceOrderCommand{
		OrderType:       "DELIVERY",
		PaymentMethod:   "BANK_TRANSFER",
		CustomerID:      memberID,
		PointsRequested: 500,
		Items:           []ports.LineInput{{ItemID: teaItem, Quantity: 4}},
		DeliveryAddress: &fulfillmentdomain.Address{Address: "12 Ly Thuong Kiet", Ward: "Ward 7", District: "District 10", Phone: "0901234567"},
		ClientTotal:     1,
	}

	res, err := h.svc.PlaceOrder(context.Background(), cmd)
	require.NoError(t, err)
	require.Equal(t, domain.Breakdown{Subtotal: 200000, PointsDiscount: 500, DeliveryFee: 20000, Total: 219500}, res.Breakdown)

	agg, err := h.svc.GetOrder(context.Background(), res.OrderID)
	require.NoError(t, err)
	require.Equal(t, "District 10", agg.Fulfillment.Delivery.District)
}

func TestPlaceOrder_DeliveryRequiresAddress(t *testing.T) {
	h := newHarness(t, 0)
	cmd := ports.PlaceOrderCommand{OrderType: "DELIVERY", PaymentMethod: "CASH",
		Items:           []ports.LineInput{{ItemID: teaItem, Quantity: 1}},
		DeliveryAddress: &fulfillmentdomain.Address{Address: "12 Ly Thuong Kiet"}}

	_, err := h.svc.PlaceOrder(context.Background(), cmd)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestPlaceOrder_ConcurrentRedemptionsNeverOverdraw(t *testing.T) {
	h := newHarness(t, 100)
	// Both requests price against the same 100-point balance before either commits.
	h.gate = &sync.WaitGroup{}
	h.gate.Add(2)
	cmd := takeaway(ports.LineInput{ItemID: sauceItem, Quantity: 1})
	cmd.CustomerID = memberID
	cmd.PointsRequested = 60

	var wg sync.WaitGroup
	results := make([]*ports.PlaceOrderResult, 2)
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = h.svc.PlaceOrder(context.Background(), cmd)
		}(i)
	}
	wg.Wait()
	h.gate = nil

	failures := 0
	for i, err := range errs {
		if err != nil {
			failures++
			require.ErrorIs(t, err, loyaltydomain.ErrInsufficientBalance)
			continue
		}
		require.Equal(t, int64(60), results[i].Breakdown.PointsDiscount)
		require.Zero(t, results[i].Breakdown.Total)
	}
	require.Equal(t, 1, failures)
	require.Equal(t, 1, h.orders.Count())
	require.Equal(t, int64(40), h.balance(t))
}

// rowLockUnitOfWork stands in for a database transaction: the first ledger
// write on an account holds that account's row until Do returns.
type rowLockUnitOfWork struct {
	stores ports.Stores
	rows   *loyaltymemory.Locker
}

func (u *rowLockUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, stores ports.Stores) error) error {
	tx := &rowLockedLedger{Repository: u.stores.Loyalty, rows: u.rows, held: map[string]func(context.Context) error{}}
	defer tx.release()
	stores := u.stores
	stores.Loyalty = tx
	return fn(ctx, stores)
}

func (u *rowLockUnitOfWork) Transactional() bool { return true }

type rowLockedLedger struct {
	loyaltyports.Repository
	rows *loyaltymemory.Locker
	held map[string]func(context.Context) error
}

func (r *rowLockedLedger) ApplyEntry(ctx context.Context, account *loyaltydomain.Account, expected int64, entry loyaltydomain.LedgerEntry) error {
	if _, ok := r.held[account.ID]; !ok {
		unlock, err := r.rows.Lock(ctx, "row:"+account.ID)
		if err != nil {
			return err
		}
		r.held[account.ID] = unlock
	}
	time.Sleep(time.Millisecond)
	return r.Repository.ApplyEntry(ctx, account, expected, entry)
}

func (r *rowLockedLedger) release() {
	for _, unlock := range r.held {
		_ = unlock(context.Background())
	}
}

func TestPlaceOrder_RedeemAndAccrueInOneTransaction(t *testing.T) {
	h := newHarness(t, 100)
	h.uow = &rowLockUnitOfWork{
		stores: ports.Stores{Orders: h.orders, Loyalty: h.loyalty, Tables: h.tables},
		rows:   loyaltymemory.NewLocker(),
	}
	cmd := takeaway(ports.LineInput{ItemID: phoItem, Quantity: 1, Size: "M"})
	cmd.CustomerID = memberID
	cmd.PointsRequested = 10

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	const orders = 8
	var wg sync.WaitGroup
	errs := make([]error, orders)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = h.svc.PlaceOrder(ctx, cmd)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, orders, h.orders.Count())
	// Each order redeems 10 and earns floor(99,990 / 100) = 999.
	require.Equal(t, int64(100+orders*(999-10)), h.balance(t))
}

func TestPlaceOrder_GuestCannotRedeemPoints(t *testing.T) {
	h := newHarness(t, 0)
	cmd := takeaway(ports.LineInput{ItemID: teaItem, Quantity: 1})
	cmd.PointsRequested = 10

	_, err := h.svc.PlaceOrder(context.Background(), cmd)
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, ErrLoginRequired)
}

func TestPlaceOrder_NonMemberPointsIgnored(t *testing.T) {
	h := newHarness(t, 0)
	cmd := takeaway(ports.LineInput{ItemID: teaItem, Quantity: 1})
	cmd.CustomerID = "65c0000000000000000000ff"
	cmd.PointsRequested = 10

	res, err := h.svc.PlaceOrder(context.Background(), cmd)
	require.NoError(t, err)
	require.Zero(t, res.Breakdown.PointsDiscount)
	require.Zero(t, res.PointsEarned)
}

func TestPlaceOrder_ClientPricesAreIgnored(t *testing.T) {
	h := newHarness(t, 0)
	res, err := h.svc.PlaceOrder(context.Background(), takeaway(ports.LineInput{ItemID: teaItem, Quantity: 2, Price: 1}))
	require.NoError(t, err)
	require.Equal(t, int64(100000), res.Breakdown.Subtotal)
}

func TestPlaceOrder_PromotionFailuresRejectSubmission(t *testing.T) {
	h := newHarness(t, 0)

	cmd := takeaway(ports.LineInput{ItemID: teaItem, Quantity: 1})
	cmd.PromoCode = "SAVE50K"
	_, err := h.svc.PlaceOrder(context.Background(), cmd)
	require.ErrorIs(t, err, promotiondomain.ErrMinimumNotMet)

	cmd.PromoCode = "OLD10"
	_, err = h.svc.PlaceOrder(context.Background(), cmd)
	require.ErrorIs(t, err, promotiondomain.ErrExpired)

	cmd.PromoCode = "NOPE"
	_, err = h.svc.PlaceOrder(context.Background(), cmd)
	require.ErrorIs(t, err, promotionports.ErrNotFound)
	require.NotErrorIs(t, err, ErrInvalidInput)
	require.ErrorContains(t, err, `promotion "NOPE"`)

	require.Zero(t, h.orders.Count())
}

func TestPlaceOrder_InvalidPayload(t *testing.T) {
	h := newHarness(t, 0)
	cases := map[string]ports.PlaceOrderCommand{
		"empty cart":     {OrderType: "TAKEAWAY", PaymentMethod: "CASH"},
		"bad order type": {OrderType: "DRONE", PaymentMethod: "CASH", Items: []ports.LineInput{{ItemID: teaItem, Quantity: 1}}},
		"bad method":     {OrderType: "TAKEAWAY", PaymentMethod: "CRYPTO", Items: []ports.LineInput{{ItemID: teaItem, Quantity: 1}}},
		"zero quantity":  {OrderType: "TAKEAWAY", PaymentMethod: "CASH", Items: []ports.LineInput{{ItemID: teaItem}}},
		"unknown item":   {OrderType: "TAKEAWAY", PaymentMethod: "CASH", Items: []ports.LineInput{{ItemID: "nope", Quantity: 1}}},
		"bad size":       {OrderType: "TAKEAWAY", PaymentMethod: "CASH", Items: []ports.LineInput{{ItemID: phoItem, Quantity: 1, Size: "XXL"}}},
	}
	for name, cmd := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := h.svc.PlaceOrder(context.Background(), cmd)
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}
	require.Zero(t, h.orders.Count())
}

func TestPlaceOrder_OnlinePaymentReturnsPayURL(t *testing.T) {
	h := newHarness(t, 0)
	cmd := takeaway(ports.LineInput{ItemID: teaItem, Quantity: 1})
	cmd.PaymentMethod = "ONLINE"

	res, err := h.svc.PlaceOrder(context.Background(), cmd)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPaymentPending, res.Status)
	require.Contains(t, res.PayURL, res.OrderID)
	require.Empty(t, res.PaymentError)
}

func TestPlaceOrder_GatewayFailureKeepsOrder(t *testing.T) {
	h := newHarness(t, 0)
	h.gateway.err = errors.New("wallet unavailable")
	cmd := takeaway(ports.LineInput{ItemID: teaItem, Quantity: 1})
	cmd.PaymentMethod = "ONLINE"

	res, err := h.svc.PlaceOrder(context.Background(), cmd)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPaymentPending, res.Status)
	require.Empty(t, res.PayURL)
	require.Contains(t, res.PaymentError, "wallet unavailable")
	require.Equal(t, 1, h.orders.Count())

	h.gateway.err = nil
	link, err := h.svc.InitiatePayment(context.Background(), res.OrderID)
	require.NoError(t, err)
	require.Contains(t, link.PayURL, res.OrderID)
}

func TestPlaceOrder_DeferPaymentSkipsGateway(t *testing.T) {
	h := newHarness(t, 0)
	cmd := takeaway(ports.LineInput{ItemID: teaItem, Quantity: 1})
	cmd.PaymentMethod = "ONLINE"
	cmd.DeferPayment = true

	res, err := h.svc.PlaceOrder(context.Background(), cmd)
	require.NoError(t, err)
	require.Empty(t, res.PayURL)
	require.Zero(t, h.gateway.calls)
}

func TestPlaceOrder_IdempotentReplay(t *testing.T) {
	h := newHarness(t, 0)
	cmd := takeaway(ports.LineInput{ItemID: teaItem, Quantity: 1})
	cmd.IdempotencyKey = "retry-1"

	first, err := h.svc.PlaceOrder(context.Background(), cmd)
	require.NoError(t, err)
	second, err := h.svc.PlaceOrder(context.Background(), cmd)
	require.NoError(t, err)

	require.Equal(t, first.OrderID, second.OrderID)
	require.Equal(t, first.TransactionCode, second.TransactionCode)
	require.True(t, second.Replayed)
	require.Equal(t, 1, h.orders.Count())
	require.Len(t, h.events.events, 1)

	cmd.Items[0].Quantity = 3
	_, err = h.svc.PlaceOrder(context.Background(), cmd)
	require.ErrorIs(t, err, ports.ErrIdempotencyConflict)
}

func TestPlaceOrder_ReplayedOnlineOrderGetsPayURL(t *testing.T) {
	h := newHarness(t, 0)
	cmd := takeaway(ports.LineInput{ItemID: teaItem, Quantity: 1})
	cmd.PaymentMethod = "ONLINE"
	cmd.IdempotencyKey = "wizard-resubmit"

	first, err := h.svc.PlaceOrder(context.Background(), cmd)
	require.NoError(t, err)
	require.NotEmpty(t, first.PayURL)

	second, err := h.svc.PlaceOrder(context.Background(), cmd)
	require.NoError(t, err)
	require.True(t, second.Replayed)
	require.Equal(t, domain.StatusPaymentPending, second.Status)
	require.Equal(t, first.PayURL, second.PayURL)
	require.Equal(t, 2, h.gateway.calls)

	h.gateway.err = errors.New("wallet unavailable")
	third, err := h.svc.PlaceOrder(context.Background(), cmd)
	require.NoError(t, err)
	require.Empty(t, third.PayURL)
	require.Contains(t, third.PaymentError, "wallet unavailable")
	require.Equal(t, 1, h.orders.Count())

	cmd.DeferPayment = true
	h.gateway.err = nil
	deferred, err := h.svc.PlaceOrder(context.Background(), cmd)
	require.NoError(t, err)
	require.Empty(t, deferred.PayURL)
	require.Equal(t, 3, h.gateway.calls)
}

func TestPlaceOrder_FailedRequestReleasesIdempotencyKey(t *testing.T) {
	h := newHarness(t, 0)
	cmd := ports.PlaceOrderCommand{IdempotencyKey: "k", OrderType: "DINE_IN", PaymentMethod: "CASH",
		Items: []ports.LineInput{{ItemID: teaItem, Quantity: 1}}}

	_, err := h.svc.PlaceOrder(context.Background(), cmd)
	require.Error(t, err)
	rec, err := h.idempotency.Get(context.Background(), "k")
	require.NoError(t, err)
	require.Nil(t, rec)
}

func TestPlaceOrder_CompensatesOnLateFailure(t *testing.T) {
	h := newHarness(t, 100)
	h.orders.FailOn["SavePayment"] = errors.New("disk full")
	cmd := ports.PlaceOrderCommand{OrderType: "DINE_IN", PaymentMethod: "CASH", TableNumber: 4,
		CustomerID: memberID, PointsRequested: 30,
		Items: []ports.LineInput{{ItemID: teaItem, Quantity: 1}}}

	_, err := h.svc.PlaceOrder(context.Background(), cmd)
	require.ErrorContains(t, err, "disk full")
	_, isSaga := IsSagaError(err)
	require.False(t, isSaga)

	require.Zero(t, h.orders.Count())
	require.Equal(t, int64(100), h.balance(t))
	table, err := h.tables.FindByNumber(context.Background(), 4)
	require.NoError(t, err)
	require.Equal(t, fulfillmentdomain.TableAvailable, table.Status)
	require.Empty(t, h.events.events)
}

func TestPlaceOrder_ReportsResidualRecords(t *testing.T) {
	h := newHarness(t, 0)
	h.orders.FailOn["SavePayment"] = errors.New("disk full")
	h.orders.FailOn["DeleteOrder"] = errors.New("connection lost")

	_, err := h.svc.PlaceOrder(context.Background(), takeaway(ports.LineInput{ItemID: teaItem, Quantity: 1}))
	sagaErr, ok := IsSagaError(err)
	require.True(t, ok)
	require.Equal(t, "payment", sagaErr.Step)
	require.Len(t, sagaErr.Residual, 1)
	require.True(t, strings.HasPrefix(sagaErr.Residual[0], "order "))
	require.ErrorContains(t, err, "disk full")
}

func TestPlaceOrder_GrossAccrualBasis(t *testing.T) {
	h := newHarness(t, 50, WithAccrualBasis(AccrualGross))
	cmd := takeaway(ports.LineInput{ItemID: teaItem, Quantity: 1})
	cmd.CustomerID = memberID
	cmd.PointsRequested = 50

	res, err := h.svc.PlaceOrder(context.Background(), cmd)
	require.NoError(t, err)
	require.Equal(t, int64(500), res.PointsEarned)
}

func TestPlaceOrder_EventPublishFailureDoesNotFailOrder(t *testing.T) {
	h := newHarness(t, 0)
	h.events.err = errors.New("broker down")

	res, err := h.svc.PlaceOrder(context.Background(), takeaway(ports.LineInput{ItemID: teaItem, Quantity: 1}))
	require.NoError(t, err)
	require.Len(t, h.events.events, 1)
	require.Equal(t, res.OrderID, h.events.events[0].OrderID)
}

func TestGetOrder_ToleratesGatewaySuffix(t *testing.T) {
	h := newHarness(t, 0)
	res, err := h.svc.PlaceOrder(context.Background(), takeaway(ports.LineInput{ItemID: teaItem, Quantity: 1}))
	require.NoError(t, err)

	agg, err := h.svc.GetOrder(context.Background(), res.OrderID+"_1715342400")
	require.NoError(t, err)
	require.Equal(t, res.OrderID, agg.Order.ID)

	_, err = h.svc.GetOrder(context.Background(), "short")
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = h.svc.GetOrder(context.Background(), "ffffffffffffffffffffffff")
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestGetOrder_RepeatedReadsMatch(t *testing.T) {
	h := newHarness(t, 500)
	cmd := ports.PlaceOrderCommand{
		OrderType: "DELIVERY", PaymentMethod: "BANK_TRANSFER", CustomerID: memberID, PointsRequested: 500,
		DeliveryAddress: &fulfillmentdomain.Address{Address: "12 Ly Thuong Kiet", Ward: "Ward 7", District: "District 10", Phone: "0901234567"},
		Items: []ports.LineInput{
			{ItemID: teaItem, Quantity: 4},
			{ItemID: phoItem, Quantity: 1, Size: "L", Note: "no onion"},
		},
	}
	res, err := h.svc.PlaceOrder(context.Background(), cmd)
	require.NoError(t, err)

	first, err := h.svc.GetOrder(context.Background(), res.OrderID)
	require.NoError(t, err)
	second, err := h.svc.GetOrder(context.Background(), res.OrderID)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, res.Breakdown, second.Order.Breakdown())
	require.Len(t, second.Lines, 2)
	require.Equal(t, 1, h.orders.Count())
}

func TestInitiatePayment_RequiresOnlineOrder(t *testing.T) {
	h := newHarness(t, 0)
	res, err := h.svc.PlaceOrder(context.Background(), takeaway(ports.LineInput{ItemID: teaItem, Quantity: 1}))
	require.NoError(t, err)

	_, err = h.svc.InitiatePayment(context.Background(), res.OrderID)
	require.ErrorIs(t, err, ErrNotOnlinePayment)
}

func TestFingerprintPlaceOrder_IgnoresClientPricesAndLineOrder(t *testing.T) {
	a := takeaway(ports.LineInput{ItemID: phoItem, Quantity: 1, Price: 1}, ports.LineInput{ItemID: teaItem, Quantity: 2})
	b := takeaway(ports.LineInput{ItemID: teaItem, Quantity: 2, Price: 9}, ports.LineInput{ItemID: phoItem, Quantity: 1})
	b.IdempotencyKey = "other"

	ha, err := FingerprintPlaceOrder(a)
	require.NoError(t, err)
	hb, err := FingerprintPlaceOrder(b)
	require.NoError(t, err)
	require.Equal(t, ha, hb)

	b.PaymentMethod = "ONLINE"
	hc, err := FingerprintPlaceOrder(b)
	require.NoError(t, err)
	require.NotEqual(t, ha, hc)
}
