package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/vuhk2k6/web-order-sub000/internal/domains/fulfillment/domain"
	"github.com/vuhk2k6/web-order-sub000/internal/domains/fulfillment/ports"
)

var _ ports.TableRepository = (*TableRepository)(nil)

// TableRepository reads and flips dining tables in PostgreSQL.
type TableRepository struct {
	db *gorm.DB
}

func NewTableRepository(db *gorm.DB) *TableRepository {
	return &TableRepository{db: db}
}

type tableRecord struct {
	ID        string    `gorm:"primaryKey;column:id;type:varchar(24)"`
	Number    int       `gorm:"column:number;uniqueIndex"`
	Status    string    `gorm:"column:status;type:varchar(16)"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (tableRecord) TableName() string { return "restaurant_tables" }

func (r *TableRepository) FindByNumber(ctx context.Context, number int) (*domain.Table, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record tableRecord
	if err := r.db.WithContext(ctx).First(&record, "number = ?", number).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrTableNotFound
		}
		return nil, err
	}
	return &domain.Table{ID: record.ID, Number: record.Number, Status: domain.TableStatus(record.Status)}, nil
}

func (r *TableRepository) Create(ctx context.Context, table *domain.Table) (*domain.Table, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if table == nil {
		return nil, errors.New("table is nil")
	}
	record := tableRecord{ID: table.ID, Number: table.Number, Status: string(table.Status)}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, err
	}
	clone := *table
	return &clone, nil
}

func (r *TableRepository) UpdateStatus(ctx context.Context, id string, status domain.TableStatus) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Model(&tableRecord{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": string(status), "updated_at": gorm.Expr("NOW()")})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrTableNotFound
	}
	return nil
}

func (r *TableRepository) Delete(ctx context.Context, id string) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(&tableRecord{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrTableNotFound
	}
	return nil
}

func (r *TableRepository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres table repository not configured")
	}
	return nil
}
