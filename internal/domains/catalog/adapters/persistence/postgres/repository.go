package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vuhk2k6/web-order-sub000/internal/domains/catalog/domain"
	"github.com/vuhk2k6/web-order-sub000/internal/domains/catalog/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository reads menu items from PostgreSQL.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type menuItemRecord struct {
	ID        string         `gorm:"primaryKey;column:id;type:varchar(24)"`
	Name      string         `gorm:"column:name"`
	Price     int64          `gorm:"column:price"`
	Sizes     pq.StringArray `gorm:"column:sizes;type:text[]"`
	Available bool           `gorm:"column:available;index"`
	CreatedAt time.Time      `gorm:"column:created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at"`
}

func (menuItemRecord) TableName() string { return "menu_items" }

func (r *Repository) Get(ctx context.Context, id string) (*domain.MenuItem, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record menuItemRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return &domain.MenuItem{
		ID:        record.ID,
		Name:      record.Name,
		Price:     record.Price,
		Sizes:     []string(record.Sizes),
		Available: record.Available,
	}, nil
}

func (r *Repository) Save(ctx context.Context, item *domain.MenuItem) (*domain.MenuItem, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if item == nil {
		return nil, errors.New("menu item is nil")
	}
	record := menuItemRecord{
		ID:        item.ID,
		Name:      item.Name,
		Price:     item.Price,
		Sizes:     pq.StringArray(item.Sizes),
		Available: item.Available,
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"name":       record.Name,
				"price":      record.Price,
				"sizes":      record.Sizes,
				"available":  record.Available,
				"updated_at": gorm.Expr("NOW()"),
			}),
		}).Create(&record).Error; err != nil {
		return nil, err
	}
	return r.Get(ctx, record.ID)
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres menu repository not configured")
	}
	return nil
}
