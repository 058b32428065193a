package memory

import (
	"context"

	"github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/ports"
)

// UnitOfWork hands the same in-memory stores to every call. It is not
// transactional, so the checkout saga compensates failed writes.
type UnitOfWork struct {
	stores ports.Stores
}

func NewUnitOfWork(stores ports.Stores) *UnitOfWork {
	return &UnitOfWork{stores: stores}
}

func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, stores ports.Stores) error) error {
	return fn(ctx, u.stores)
}

func (u *UnitOfWork) Transactional() bool { return false }

var _ ports.UnitOfWork = (*UnitOfWork)(nil)
