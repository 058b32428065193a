package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/cucumber/godog"

	"github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/domain"
	"github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/ports"
	fulfillmentdomain "github.com/vuhk2k6/web-order-sub000/internal/domains/fulfillment/domain"
	loyaltydomain "github.com/vuhk2k6/web-order-sub000/internal/domains/loyalty/domain"
)

var featureItems = map[string]ports.LineInput{
	"pho":   {ItemID: phoItem, Size: "M"},
	"tea":   {ItemID: teaItem},
	"sauce": {ItemID: sauceItem},
}

type checkoutWorld struct {
	h      *harness
	cmd    ports.PlaceOrderCommand
	result *ports.PlaceOrderResult
	err    error
	errs   []error
}

func (w *checkoutWorld) memberHolding(balance int64) error {
	h, err := buildHarness(balance)
	if err != nil {
		return err
	}
	w.h = h
	return nil
}

func (w *checkoutWorld) cart(owner string, qty int, item, orderType, method string) error {
	line, ok := featureItems[item]
	if !ok {
		return fmt.Errorf("unknown item %q", item)
	}
	line.Quantity = qty
	w.cmd = ports.PlaceOrderCommand{OrderType: orderType, PaymentMethod: method, Items: []ports.LineInput{line}}
	if owner == "member" {
		w.cmd.CustomerID = memberID
	}
	return nil
}

func (w *checkoutWorld) promoCode(code string) error {
	w.cmd.PromoCode = code
	return nil
}

func (w *checkoutWorld) redeems(points int64) error {
	w.cmd.PointsRequested = points
	return nil
}

func (w *checkoutWorld) deliverTo(address, ward, district string) error {
	w.cmd.DeliveryAddress = &fulfillmentdomain.Address{Address: address, Ward: ward, District: district}
	return nil
}

func (w *checkoutWorld) place(ctx context.Context) error {
	w.result, w.err = w.h.svc.PlaceOrder(ctx, w.cmd)
	return nil
}

func (w *checkoutWorld) placeConcurrently(ctx context.Context, n, qty int, item string, points int64) error {
	line, ok := featureItems[item]
	if !ok {
		return fmt.Errorf("unknown item %q", item)
	}
	line.Quantity = qty
	cmd := takeaway(line)
	cmd.CustomerID = memberID
	cmd.PointsRequested = points

	w.h.gate = &sync.WaitGroup{}
	w.h.gate.Add(n)
	defer func() { w.h.gate = nil }()
	w.errs = make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, w.errs[i] = w.h.svc.PlaceOrder(ctx, cmd)
		}(i)
	}
	wg.Wait()
	return nil
}

func (w *checkoutWorld) accepted() error {
	if w.err != nil {
		return fmt.Errorf("order rejected: %w", w.err)
	}
	if w.result.Status != domain.StatusPending {
		return fmt.Errorf("status %s, want %s", w.result.Status, domain.StatusPending)
	}
	return nil
}

func (w *checkoutWorld) breakdownIs(subtotal, points, promo, delivery, total int64) error {
	want := domain.Breakdown{Subtotal: subtotal, PointsDiscount: points, PromoDiscount: promo, DeliveryFee: delivery, Total: total}
	if w.result.Breakdown != want {
		return fmt.Errorf("breakdown %+v, want %+v", w.result.Breakdown, want)
	}
	return nil
}

func (w *checkoutWorld) balanceIs(want int64) error {
	got, err := w.h.ledgerBalance()
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("balance %d, want %d", got, want)
	}
	return nil
}

func (w *checkoutWorld) rejectedAsInvalid() error {
	if !errors.Is(w.err, ErrInvalidInput) {
		return fmt.Errorf("error %v, want invalid input", w.err)
	}
	return nil
}

func (w *checkoutWorld) noOrderStored() error {
	if n := w.h.orders.Count(); n != 0 {
		return fmt.Errorf("%d orders stored", n)
	}
	return nil
}

func (w *checkoutWorld) rejectedForBalance(want int) error {
	got := 0
	for _, err := range w.errs {
		switch {
		case err == nil:
		case errors.Is(err, loyaltydomain.ErrInsufficientBalance):
			got++
		default:
			return fmt.Errorf("unexpected error: %w", err)
		}
	}
	if got != want {
		return fmt.Errorf("%d orders rejected, want %d", got, want)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	w := &checkoutWorld{}
	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		*w = checkoutWorld{}
		return ctx, nil
	})

	ctx.Step(`^a loyalty member holding (\d+) points$`, w.memberHolding)
	ctx.Step(`^a (guest|member) cart with (\d+) "([^"]*)" for (\w+) paid by (\w+)$`, w.cart)
	ctx.Step(`^the promotion code "([^"]*)"$`, w.promoCode)
	ctx.Step(`^the member redeems (\d+) points$`, w.redeems)
	ctx.Step(`^the delivery address "([^"]*)", "([^"]*)", "([^"]*)"$`, w.deliverTo)
	ctx.Step(`^the order is placed$`, w.place)
	ctx.Step(`^(\d+) orders of (\d+) "([^"]*)" redeeming (\d+) points each are placed at the same time$`, w.placeConcurrently)
	ctx.Step(`^the order is accepted$`, w.accepted)
	ctx.Step(`^the breakdown is subtotal (\d+), points (\d+), promotion (\d+), delivery (\d+), total (\d+)$`, w.breakdownIs)
	ctx.Step(`^the member balance is (\d+)$`, w.balanceIs)
	ctx.Step(`^the order is rejected as invalid input$`, w.rejectedAsInvalid)
	ctx.Step(`^no order is stored$`, w.noOrderStored)
	ctx.Step(`^exactly (\d+) order is rejected for insufficient balance$`, w.rejectedForBalance)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}
	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
