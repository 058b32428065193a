package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/vuhk2k6/web-order-sub000/internal/domains/loyalty/domain"
	"github.com/vuhk2k6/web-order-sub000/internal/domains/loyalty/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists loyalty accounts and ledger entries in PostgreSQL.
// The db handle may be a transaction; ApplyEntry nests a savepoint.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type accountRecord struct {
	ID            string    `gorm:"primaryKey;column:id;type:varchar(24)"`
	CustomerID    string    `gorm:"column:customer_id;type:varchar(24);uniqueIndex"`
	PointBalance  int64     `gorm:"column:point_balance;check:point_balance >= 0"`
	Tier          string    `gorm:"column:tier;type:varchar(16)"`
	LifetimeSpend int64     `gorm:"column:lifetime_spend"`
	Version       int64     `gorm:"column:version"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (accountRecord) TableName() string { return "loyalty_accounts" }

type entryRecord struct {
	ID         string    `gorm:"primaryKey;column:id;type:varchar(24)"`
	AccountID  string    `gorm:"column:loyalty_account_id;type:varchar(24);index"`
	Direction  string    `gorm:"column:direction;type:varchar(8)"`
	Points     int64     `gorm:"column:points"`
	Note       string    `gorm:"column:note"`
	OrderID    string    `gorm:"column:order_id;type:varchar(24);index"`
	SpendDelta int64     `gorm:"column:spend_delta"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (entryRecord) TableName() string { return "point_ledger_entries" }

func (r *Repository) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *Repository) FindByCustomer(ctx context.Context, customerID string) (*domain.Account, error) {
	return r.first(ctx, "customer_id = ?", customerID)
}

func (r *Repository) CreateAccount(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if account == nil {
		return nil, errors.New("account is nil")
	}
	record := toAccountRecord(account)
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, err
	}
	return record.toDomain(), nil
}

// ApplyEntry performs the version compare-and-swap and the ledger append in
// one savepoint. A stale version yields ports.ErrVersionConflict.
func (r *Repository) ApplyEntry(ctx context.Context, account *domain.Account, expectedVersion int64, entry domain.LedgerEntry) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	if account == nil {
		return errors.New("account is nil")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&accountRecord{}).
			Where("id = ? AND version = ?", account.ID, expectedVersion).
			Updates(map[string]any{
				"point_balance":  account.PointBalance,
				"lifetime_spend": account.LifetimeSpend,
				"tier":           string(account.Tier),
				"version":        account.Version,
				"updated_at":     account.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ports.ErrVersionConflict
		}
		record := toEntryRecord(entry)
		return tx.Create(&record).Error
	})
}

func (r *Repository) ListEntries(ctx context.Context, accountID string) ([]domain.LedgerEntry, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []entryRecord
	if err := r.db.WithContext(ctx).
		Where("loyalty_account_id = ?", accountID).
		Order("created_at, id").
		Find(&records).Error; err != nil {
		return nil, err
	}
	entries := make([]domain.LedgerEntry, 0, len(records))
	for i := range records {
		entries = append(entries, records[i].toDomain())
	}
	return entries, nil
}

func (r *Repository) first(ctx context.Context, query string, arg any) (*domain.Account, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record accountRecord
	if err := r.db.WithContext(ctx).First(&record, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres loyalty repository not configured")
	}
	return nil
}

func toAccountRecord(a *domain.Account) accountRecord {
	return accountRecord{
		ID:            a.ID,
		CustomerID:    a.CustomerID,
		PointBalance:  a.PointBalance,
		Tier:          string(a.Tier),
		LifetimeSpend: a.LifetimeSpend,
		Version:       a.Version,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

func (r accountRecord) toDomain() *domain.Account {
	return &domain.Account{
		ID:            r.ID,
		CustomerID:    r.CustomerID,
		PointBalance:  r.PointBalance,
		Tier:          domain.Tier(r.Tier),
		LifetimeSpend: r.LifetimeSpend,
		Version:       r.Version,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func toEntryRecord(e domain.LedgerEntry) entryRecord {
	return entryRecord{
		ID:         e.ID,
		AccountID:  e.AccountID,
		Direction:  string(e.Direction),
		Points:     e.Points,
		Note:       e.Note,
		OrderID:    e.OrderID,
		SpendDelta: e.SpendDelta,
		CreatedAt:  e.CreatedAt,
	}
}

func (r entryRecord) toDomain() domain.LedgerEntry {
	return domain.LedgerEntry{
		ID:         r.ID,
		AccountID:  r.AccountID,
		Direction:  domain.Direction(r.Direction),
		Points:     r.Points,
		Note:       r.Note,
		OrderID:    r.OrderID,
		SpendDelta: r.SpendDelta,
		CreatedAt:  r.CreatedAt,
	}
}
