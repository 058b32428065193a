package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vuhk2k6/web-order-sub000/internal/domains/customers/domain"
	"github.com/vuhk2k6/web-order-sub000/internal/domains/customers/ports"
)

var _ ports.AddressBook = (*AddressBook)(nil)

type AddressBook struct {
	db *gorm.DB
}

func NewAddressBook(db *gorm.DB) *AddressBook {
	return &AddressBook{db: db}
}

type addressRecord struct {
	ID         string    `gorm:"primaryKey;column:id;type:varchar(24)"`
	CustomerID string    `gorm:"column:customer_id;type:varchar(24);index"`
	Address    string    `gorm:"column:address"`
	Ward       string    `gorm:"column:ward"`
	District   string    `gorm:"column:district"`
	Street     string    `gorm:"column:street"`
	Phone      string    `gorm:"column:phone"`
	IsDefault  bool      `gorm:"column:is_default"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (addressRecord) TableName() string { return "delivery_addresses" }

func (b *AddressBook) ListByCustomer(ctx context.Context, customerID string) ([]domain.DeliveryAddress, error) {
	if b == nil || b.db == nil {
		return nil, errors.New("postgres address book not configured")
	}
	var records []addressRecord
	if err := b.db.WithContext(ctx).Where("customer_id = ?", customerID).Order("created_at").Find(&records).Error; err != nil {
		return nil, err
	}
	out := make([]domain.DeliveryAddress, 0, len(records))
	for _, r := range records {
		out = append(out, domain.DeliveryAddress{
			ID: r.ID, CustomerID: r.CustomerID, Address: r.Address, Ward: r.Ward,
			District: r.District, Street: r.Street, Phone: r.Phone, IsDefault: r.IsDefault,
		})
	}
	return out, nil
}

// Save upserts an address. A new default clears the previous one.
func (b *AddressBook) Save(ctx context.Context, address domain.DeliveryAddress) (*domain.DeliveryAddress, error) {
	if b == nil || b.db == nil {
		return nil, errors.New("postgres address book not configured")
	}
	rec := addressRecord{
		ID: address.ID, CustomerID: address.CustomerID, Address: address.Address, Ward: address.Ward,
		District: address.District, Street: address.Street, Phone: address.Phone, IsDefault: address.IsDefault,
	}
	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if rec.IsDefault {
			if err := tx.Model(&addressRecord{}).
				Where("customer_id = ? AND id <> ?", rec.CustomerID, rec.ID).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"address", "ward", "district", "street", "phone", "is_default", "updated_at"}),
		}).Create(&rec).Error
	})
	if err != nil {
		return nil, err
	}
	out := address
	return &out, nil
}
