package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/ports"
	fulfillmentpg "github.com/vuhk2k6/web-order-sub000/internal/domains/fulfillment/adapters/persistence/postgres"
	loyaltypg "github.com/vuhk2k6/web-order-sub000/internal/domains/loyalty/adapters/persistence/postgres"
)

var _ ports.UnitOfWork = (*UnitOfWork)(nil)

// UnitOfWork runs checkout writes in one PostgreSQL transaction, handing the
// callback repositories bound to that transaction.
type UnitOfWork struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, stores ports.Stores) error) error {
	if u == nil || u.db == nil {
		return errors.New("postgres unit of work not configured")
	}
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, ports.Stores{
			Orders:  NewOrderRepository(tx),
			Loyalty: loyaltypg.NewRepository(tx),
			Tables:  fulfillmentpg.NewTableRepository(tx),
		})
	})
}

func (u *UnitOfWork) Transactional() bool { return true }
