package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vuhk2k6/web-order-sub000/internal/domains/promotions/domain"
	"github.com/vuhk2k6/web-order-sub000/internal/domains/promotions/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository reads promotions from PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// promotionRecord maps a promotion to the promotions table.
type promotionRecord struct {
	ID             string          `gorm:"primaryKey;column:id;type:varchar(24)"`
	Code           string          `gorm:"column:code;type:varchar(64);uniqueIndex"`
	Name           string          `gorm:"column:name"`
	DiscountType   string          `gorm:"column:discount_type;type:varchar(16)"`
	Value          decimal.Decimal `gorm:"column:value;type:numeric(14,2)"`
	StartDate      time.Time       `gorm:"column:start_date"`
	EndDate        time.Time       `gorm:"column:end_date"`
	MinOrderAmount int64           `gorm:"column:min_order_amount"`
	CreatedAt      time.Time       `gorm:"column:created_at"`
	UpdatedAt      time.Time       `gorm:"column:updated_at"`
}

func (promotionRecord) TableName() string { return "promotions" }

func (r *Repository) FindByCode(ctx context.Context, code string) (*domain.Promotion, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record promotionRecord
	if err := r.db.WithContext(ctx).First(&record, "code = ?", domain.NormalizeCode(code)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// Save upserts a promotion by id.
func (r *Repository) Save(ctx context.Context, promotion *domain.Promotion) (*domain.Promotion, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if promotion == nil {
		return nil, errors.New("promotion is nil")
	}
	if err := promotion.Validate(); err != nil {
		return nil, err
	}
	record := toRecord(promotion)
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"code":             record.Code,
				"name":             record.Name,
				"discount_type":    record.DiscountType,
				"value":            record.Value,
				"start_date":       record.StartDate,
				"end_date":         record.EndDate,
				"min_order_amount": record.MinOrderAmount,
				"updated_at":       gorm.Expr("NOW()"),
			}),
		}).Create(&record).Error; err != nil {
		return nil, err
	}
	return r.FindByCode(ctx, record.Code)
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres promotion repository not configured")
	}
	return nil
}

func toRecord(p *domain.Promotion) promotionRecord {
	return promotionRecord{
		ID:             p.ID,
		Code:           domain.NormalizeCode(p.Code),
		Name:           p.Name,
		DiscountType:   string(p.DiscountType),
		Value:          p.Value,
		StartDate:      p.StartDate,
		EndDate:        p.EndDate,
		MinOrderAmount: p.MinOrderAmount,
	}
}

func (r promotionRecord) toDomain() *domain.Promotion {
	return &domain.Promotion{
		ID:             r.ID,
		Code:           r.Code,
		Name:           r.Name,
		DiscountType:   domain.DiscountType(r.DiscountType),
		Value:          r.Value,
		StartDate:      r.StartDate,
		EndDate:        r.EndDate,
		MinOrderAmount: r.MinOrderAmount,
	}
}
