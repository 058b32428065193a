package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/vuhk2k6/web-order-sub000/internal/domains/catalog/domain"
	"github.com/vuhk2k6/web-order-sub000/internal/domains/catalog/ports"
)

var _ ports.Repository = (*Repository)(nil)

type Repository struct {
	mu    sync.RWMutex
	items map[string]*domain.MenuItem
}

func NewRepository(seed ...*domain.MenuItem) *Repository {
	r := &Repository{items: map[string]*domain.MenuItem{}}
	for _, item := range seed {
		_, _ = r.Save(context.Background(), item)
	}
	return r
}

func (r *Repository) Get(_ context.Context, id string) (*domain.MenuItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return clone(item), nil
}

func (r *Repository) Save(_ context.Context, item *domain.MenuItem) (*domain.MenuItem, error) {
	if item == nil {
		return nil, errors.New("menu item is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ID] = clone(item)
	return clone(item), nil
}

func clone(item *domain.MenuItem) *domain.MenuItem {
	c := *item
	c.Sizes = append([]string(nil), item.Sizes...)
	return &c
}
