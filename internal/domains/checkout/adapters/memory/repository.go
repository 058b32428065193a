package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/domain"
	"github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/ports"
	fulfillmentdomain "github.com/vuhk2k6/web-order-sub000/internal/domains/fulfillment/domain"
)

var _ ports.OrderRepository = (*OrderRepository)(nil)

type record struct {
	order       domain.Order
	lines       []domain.OrderLine
	fulfillment *fulfillmentdomain.Detail
	payment     *domain.Payment
}

// OrderRepository keeps order aggregates in memory. Writes are not
// transactional; callers compensate through the Delete methods.
type OrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*record
	// FailOn makes the named write fail, for exercising compensation.
	FailOn map[string]error
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: map[string]*record{}, FailOn: map[string]error{}}
}

func (r *OrderRepository) fail(op string) error {
	if err, ok := r.FailOn[op]; ok {
		return err
	}
	return nil
}

func (r *OrderRepository) CreateOrder(_ context.Context, order domain.Order, lines []domain.OrderLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("CreateOrder"); err != nil {
		return err
	}
	if _, exists := r.orders[order.ID]; exists {
		return errors.New("order already exists")
	}
	r.orders[order.ID] = &record{order: order, lines: append([]domain.OrderLine(nil), lines...)}
	return nil
}

func (r *OrderRepository) SaveFulfillment(_ context.Context, orderID string, detail fulfillmentdomain.Detail) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("SaveFulfillment"); err != nil {
		return err
	}
	rec, ok := r.orders[orderID]
	if !ok {
		return ports.ErrNotFound
	}
	d := detail
	rec.fulfillment = &d
	return nil
}

func (r *OrderRepository) SavePayment(_ context.Context, payment domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("SavePayment"); err != nil {
		return err
	}
	rec, ok := r.orders[payment.OrderID]
	if !ok {
		return ports.ErrNotFound
	}
	p := payment
	rec.payment = &p
	return nil
}

func (r *OrderRepository) DeleteOrder(_ context.Context, orderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("DeleteOrder"); err != nil {
		return err
	}
	delete(r.orders, orderID)
	return nil
}

func (r *OrderRepository) DeleteFulfillment(_ context.Context, orderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("DeleteFulfillment"); err != nil {
		return err
	}
	if rec, ok := r.orders[orderID]; ok {
		rec.fulfillment = nil
	}
	return nil
}

func (r *OrderRepository) Get(_ context.Context, orderID string) (*domain.Aggregate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.orders[orderID]
	if !ok || rec.payment == nil {
		return nil, ports.ErrNotFound
	}
	agg := &domain.Aggregate{
		Order:   rec.order,
		Lines:   append([]domain.OrderLine(nil), rec.lines...),
		Payment: *rec.payment,
	}
	if rec.fulfillment != nil {
		agg.Fulfillment = *rec.fulfillment
	}
	return agg, nil
}

// Count reports stored orders, including partially written ones.
func (r *OrderRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.orders)
}
