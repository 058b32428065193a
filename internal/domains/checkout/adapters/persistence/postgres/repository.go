package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/domain"
	"github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/ports"
	fulfillmentdomain "github.com/vuhk2k6/web-order-sub000/internal/domains/fulfillment/domain"
)

var _ ports.OrderRepository = (*OrderRepository)(nil)

// OrderRepository persists order aggregates in PostgreSQL.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

type orderRecord struct {
	ID                string    `gorm:"primaryKey;column:id;type:varchar(24)"`
	CustomerID        *string   `gorm:"column:customer_id;type:varchar(24);index"`
	Type              string    `gorm:"column:type;type:varchar(16)"`
	Subtotal          int64     `gorm:"column:subtotal"`
	DeliveryFee       int64     `gorm:"column:delivery_fee"`
	PointsRedeemed    int64     `gorm:"column:points_redeemed"`
	PromotionID       *string   `gorm:"column:promotion_id;type:varchar(24)"`
	PromotionDiscount int64     `gorm:"column:promotion_discount"`
	TotalAmount       int64     `gorm:"column:total_amount"`
	Status            string    `gorm:"column:status;type:varchar(24)"`
	CreatedAt         time.Time `gorm:"column:created_at"`
}

func (orderRecord) TableName() string { return "orders" }

type lineRecord struct {
	ID               uint   `gorm:"primaryKey;autoIncrement"`
	OrderID          string `gorm:"column:order_id;type:varchar(24);index"`
	MenuItemID       string `gorm:"column:menu_item_id;type:varchar(24)"`
	Name             string `gorm:"column:name"`
	Quantity         int    `gorm:"column:quantity"`
	PriceAtOrderTime int64  `gorm:"column:price_at_order_time"`
	Size             string `gorm:"column:size"`
	Note             string `gorm:"column:note"`
}

func (lineRecord) TableName() string { return "order_lines" }

type deliveryRecord struct {
	OrderID  string `gorm:"primaryKey;column:order_id;type:varchar(24)"`
	Address  string `gorm:"column:address"`
	Ward     string `gorm:"column:ward"`
	District string `gorm:"column:district"`
	Street   string `gorm:"column:street"`
	Phone    string `gorm:"column:phone"`
	Note     string `gorm:"column:note"`
}

func (deliveryRecord) TableName() string { return "delivery_details" }

type dineInRecord struct {
	OrderID     string    `gorm:"primaryKey;column:order_id;type:varchar(24)"`
	TableID     string    `gorm:"column:table_id;type:varchar(24)"`
	TableNumber int       `gorm:"column:table_number"`
	CheckInTime time.Time `gorm:"column:check_in_time"`
}

func (dineInRecord) TableName() string { return "dine_in_details" }

type paymentRecord struct {
	OrderID         string     `gorm:"primaryKey;column:order_id;type:varchar(24)"`
	Method          string     `gorm:"column:method;type:varchar(16)"`
	Amount          int64      `gorm:"column:amount"`
	TransactionCode string     `gorm:"column:transaction_code;type:varchar(40);uniqueIndex"`
	Status          string     `gorm:"column:status;type:varchar(16)"`
	PaidAt          *time.Time `gorm:"column:paid_at"`
}

func (paymentRecord) TableName() string { return "payments" }

func (r *OrderRepository) CreateOrder(ctx context.Context, order domain.Order, lines []domain.OrderLine) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record := toOrderRecord(order)
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		if len(lines) == 0 {
			return nil
		}
		records := make([]lineRecord, 0, len(lines))
		for _, l := range lines {
			records = append(records, lineRecord{
				OrderID:          order.ID,
				MenuItemID:       l.MenuItemID,
				Name:             l.Name,
				Quantity:         l.Quantity,
				PriceAtOrderTime: l.PriceAtOrderTime,
				Size:             l.Size,
				Note:             l.Note,
			})
		}
		return tx.Create(&records).Error
	})
}

// SaveFulfillment writes the detail row for DELIVERY and DINE_IN orders;
// TAKEAWAY has none.
func (r *OrderRepository) SaveFulfillment(ctx context.Context, orderID string, detail fulfillmentdomain.Detail) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	db := r.db.WithContext(ctx)
	switch {
	case detail.Delivery != nil:
		d := detail.Delivery
		return db.Create(&deliveryRecord{
			OrderID: orderID, Address: d.Address, Ward: d.Ward, District: d.District,
			Street: d.Street, Phone: d.Phone, Note: d.Note,
		}).Error
	case detail.DineIn != nil:
		d := detail.DineIn
		return db.Create(&dineInRecord{
			OrderID: orderID, TableID: d.TableID, TableNumber: d.TableNumber, CheckInTime: d.CheckInTime,
		}).Error
	default:
		return nil
	}
}

func (r *OrderRepository) SavePayment(ctx context.Context, payment domain.Payment) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	record := paymentRecord{
		OrderID:         payment.OrderID,
		Method:          string(payment.Method),
		Amount:          payment.Amount,
		TransactionCode: payment.TransactionCode,
		Status:          string(payment.Status),
		PaidAt:          payment.PaidAt,
	}
	return r.db.WithContext(ctx).Create(&record).Error
}

func (r *OrderRepository) DeleteOrder(ctx context.Context, orderID string) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", orderID).Delete(&lineRecord{}).Error; err != nil {
			return err
		}
		return tx.Delete(&orderRecord{}, "id = ?", orderID).Error
	})
}

func (r *OrderRepository) DeleteFulfillment(ctx context.Context, orderID string) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&deliveryRecord{}, "order_id = ?", orderID).Error; err != nil {
			return err
		}
		return tx.Delete(&dineInRecord{}, "order_id = ?", orderID).Error
	})
}

func (r *OrderRepository) Get(ctx context.Context, orderID string) (*domain.Aggregate, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	db := r.db.WithContext(ctx)

	var order orderRecord
	if err := db.First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	var payment paymentRecord
	if err := db.First(&payment, "order_id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	var lines []lineRecord
	if err := db.Where("order_id = ?", orderID).Order("id").Find(&lines).Error; err != nil {
		return nil, err
	}

	agg := &domain.Aggregate{
		Order: order.toDomain(),
		Payment: domain.Payment{
			OrderID:         payment.OrderID,
			Method:          domain.PaymentMethod(payment.Method),
			Amount:          payment.Amount,
			TransactionCode: payment.TransactionCode,
			Status:          domain.PaymentStatus(payment.Status),
			PaidAt:          payment.PaidAt,
		},
		Fulfillment: fulfillmentdomain.Detail{Mode: fulfillmentdomain.Mode(order.Type)},
	}
	for _, l := range lines {
		agg.Lines = append(agg.Lines, domain.OrderLine{
			OrderID:          l.OrderID,
			MenuItemID:       l.MenuItemID,
			Name:             l.Name,
			Quantity:         l.Quantity,
			PriceAtOrderTime: l.PriceAtOrderTime,
			Size:             l.Size,
			Note:             l.Note,
		})
	}

	switch agg.Fulfillment.Mode {
	case fulfillmentdomain.ModeDelivery:
		var d deliveryRecord
		if err := db.First(&d, "order_id = ?", orderID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		} else if err == nil {
			agg.Fulfillment.Delivery = &fulfillmentdomain.DeliveryDetail{
				OrderID: d.OrderID, Address: d.Address, Ward: d.Ward, District: d.District,
				Street: d.Street, Phone: d.Phone, Note: d.Note,
			}
		}
	case fulfillmentdomain.ModeDineIn:
		var d dineInRecord
		if err := db.First(&d, "order_id = ?", orderID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		} else if err == nil {
			agg.Fulfillment.DineIn = &fulfillmentdomain.DineInDetail{
				OrderID: d.OrderID, TableID: d.TableID, TableNumber: d.TableNumber, CheckInTime: d.CheckInTime,
			}
		}
	}
	return agg, nil
}

func (r *OrderRepository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func toOrderRecord(o domain.Order) orderRecord {
	return orderRecord{
		ID:                o.ID,
		CustomerID:        nullable(o.CustomerID),
		Type:              string(o.Type),
		Subtotal:          o.Subtotal,
		DeliveryFee:       o.DeliveryFee,
		PointsRedeemed:    o.PointsRedeemed,
		PromotionID:       nullable(o.PromotionID),
		PromotionDiscount: o.PromotionDiscount,
		TotalAmount:       o.TotalAmount,
		Status:            string(o.Status),
		CreatedAt:         o.CreatedAt,
	}
}

func (r orderRecord) toDomain() domain.Order {
	return domain.Order{
		ID:                r.ID,
		CustomerID:        deref(r.CustomerID),
		Type:              fulfillmentdomain.Mode(r.Type),
		Subtotal:          r.Subtotal,
		DeliveryFee:       r.DeliveryFee,
		PointsRedeemed:    r.PointsRedeemed,
		PromotionID:       deref(r.PromotionID),
		PromotionDiscount: r.PromotionDiscount,
		TotalAmount:       r.TotalAmount,
		Status:            domain.Status(r.Status),
		CreatedAt:         r.CreatedAt,
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
