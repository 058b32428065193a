package application

import (
	"context"
	"time"

	"github.com/vuhk2k6/web-order-sub000/internal/domains/promotions/domain"
	"github.com/vuhk2k6/web-order-sub000/internal/domains/promotions/ports"
)

// Service validates promotion codes against a subtotal.
type Service struct {
	repo ports.Repository
	now  func() time.Time
}

type Option func(*Service)

// WithClock overrides the time source used for window checks.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(repo ports.Repository, opts ...Option) *Service {
	s := &Service{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Validate resolves code and computes its discount for subtotal. Lookup
// failures return ports.ErrNotFound; window and minimum failures return the
// domain sentinels.
func (s *Service) Validate(ctx context.Context, code string, subtotal int64) (*ports.Quote, error) {
	normalized := domain.NormalizeCode(code)
	if normalized == "" {
		return nil, mapError(domain.ErrInvalidCode)
	}
	if subtotal < 0 {
		return nil, mapError(domain.ErrInvalidSubtotal)
	}
	promotion, err := s.repo.FindByCode(ctx, normalized)
	if err != nil {
		return nil, err
	}
	discount, err := promotion.Apply(subtotal, s.now())
	if err != nil {
		return nil, mapError(err)
	}
	return &ports.Quote{
		PromotionID:    promotion.ID,
		Code:           promotion.Code,
		Name:           promotion.Name,
		DiscountType:   promotion.DiscountType,
		Value:          promotion.Value,
		MinOrderAmount: promotion.MinOrderAmount,
		Discount:       discount,
	}, nil
}

var _ ports.Service = (*Service)(nil)
