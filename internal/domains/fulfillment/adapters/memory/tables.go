package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/vuhk2k6/web-order-sub000/internal/domains/fulfillment/domain"
	"github.com/vuhk2k6/web-order-sub000/internal/domains/fulfillment/ports"
)

var _ ports.TableRepository = (*TableRepository)(nil)

// TableRepository keeps dining tables in memory.
type TableRepository struct {
	mu     sync.RWMutex
	tables map[string]*domain.Table
}

func NewTableRepository(seed ...domain.Table) *TableRepository {
	r := &TableRepository{tables: map[string]*domain.Table{}}
	for i := range seed {
		t := seed[i]
		r.tables[t.ID] = &t
	}
	return r
}

func (r *TableRepository) FindByNumber(_ context.Context, number int) (*domain.Table, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.tables {
		if t.Number == number {
			clone := *t
			return &clone, nil
		}
	}
	return nil, ports.ErrTableNotFound
}

func (r *TableRepository) Create(_ context.Context, table *domain.Table) (*domain.Table, error) {
	if table == nil {
		return nil, errors.New("table is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tables {
		if t.Number == table.Number {
			return nil, errors.New("table number already exists")
		}
	}
	clone := *table
	r.tables[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *TableRepository) UpdateStatus(_ context.Context, id string, status domain.TableStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tables[id]
	if !ok {
		return ports.ErrTableNotFound
	}
	t.Status = status
	return nil
}

func (r *TableRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tables[id]; !ok {
		return ports.ErrTableNotFound
	}
	delete(r.tables, id)
	return nil
}
