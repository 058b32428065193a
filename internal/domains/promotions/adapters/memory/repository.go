package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/vuhk2k6/web-order-sub000/internal/domains/promotions/domain"
	"github.com/vuhk2k6/web-order-sub000/internal/domains/promotions/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory promotion catalog keyed by normalized code.
type Repository struct {
	mu     sync.RWMutex
	byCode map[string]*domain.Promotion
}

func NewRepository(seed ...*domain.Promotion) *Repository {
	r := &Repository{byCode: map[string]*domain.Promotion{}}
	for _, p := range seed {
		_, _ = r.Save(context.Background(), p)
	}
	return r
}

func (r *Repository) FindByCode(_ context.Context, code string) (*domain.Promotion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byCode[domain.NormalizeCode(code)]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *Repository) Save(_ context.Context, promotion *domain.Promotion) (*domain.Promotion, error) {
	if promotion == nil {
		return nil, errors.New("promotion is nil")
	}
	clone := *promotion
	clone.Code = domain.NormalizeCode(clone.Code)
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byCode[clone.Code] = &clone
	out := clone
	return &out, nil
}
