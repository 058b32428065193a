package migrations

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Run applies the schema for the bounded contexts. Adapters never automigrate.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&menuItemRecord{},
		&promotionRecord{},
		&loyaltyAccountRecord{},
		&ledgerEntryRecord{},
		&tableRecord{},
		&sessionRecord{},
		&addressRecord{},
		&orderRecord{},
		&orderLineRecord{},
		&deliveryRecord{},
		&dineInRecord{},
		&paymentRecord{},
		&idempotencyRecord{},
	)
}

// Catalog schema mirrors the catalog Postgres adapter.
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

// Loyalty schema. The check constraint backs the non-negative balance rule.
type loyaltyAccountRecord struct {
	ID            string    `gorm:"primaryKey;column:id;type:varchar(24)"`
	CustomerID    string    `gorm:"column:customer_id;type:varchar(24);uniqueIndex"`
	PointBalance  int64     `gorm:"column:point_balance;check:point_balance >= 0"`
	Tier          string    `gorm:"column:tier;type:varchar(16)"`
	LifetimeSpend int64     `gorm:"column:lifetime_spend"`
	Version       int64     `gorm:"column:version"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (loyaltyAccountRecord) TableName() string { return "loyalty_accounts" }

type ledgerEntryRecord struct {
	ID         string    `gorm:"primaryKey;column:id;type:varchar(24)"`
	AccountID  string    `gorm:"column:loyalty_account_id;type:varchar(24);index"`
	Direction  string    `gorm:"column:direction;type:varchar(8)"`
	Points     int64     `gorm:"column:points"`
	Note       string    `gorm:"column:note"`
	OrderID    string    `gorm:"column:order_id;type:varchar(24);index"`
	SpendDelta int64     `gorm:"column:spend_delta"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (ledgerEntryRecord) TableName() string { return "point_ledger_entries" }

type tableRecord struct {
	ID        string    `gorm:"primaryKey;column:id;type:varchar(24)"`
	Number    int       `gorm:"column:number;uniqueIndex"`
	Status    string    `gorm:"column:status;type:varchar(16)"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (tableRecord) TableName() string { return "restaurant_tables" }

// Session schema mirrors the customer session store.
type sessionRecord struct {
	Token      string     `gorm:"primaryKey;column:token;size:512"`
	CustomerID string     `gorm:"column:customer_id;type:varchar(24);index"`
	ExpiresAt  *time.Time `gorm:"column:expires_at;index"`
	CreatedAt  time.Time  `gorm:"column:created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at"`
}

func (sessionRecord) TableName() string { return "customer_sessions" }

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

// Order aggregate schema mirrors the checkout Postgres adapter.
type orderRecord struct {
	ID                string    `gorm:"primaryKey;column:id;type:varchar(24)"`
	CustomerID        *string   `gorm:"column:customer_id;type:varchar(24);index"`
	Type              string    `gorm:"column:type;type:varchar(16)"`
	Subtotal          int64     `gorm:"column:subtotal"`
	DeliveryFee       int64     `gorm:"column:delivery_fee"`
	PointsRedeemed    int64     `gorm:"column:points_redeemed"`
	PromotionID       *string   `gorm:"column:promotion_id;type:varchar(24)"`
	PromotionDiscount int64     `gorm:"column:promotion_discount"`
	TotalAmount       int64     `gorm:"column:total_amount;check:total_amount >= 0"`
	Status            string    `gorm:"column:status;type:varchar(24)"`
	CreatedAt         time.Time `gorm:"column:created_at;index"`
}

func (orderRecord) TableName() string { return "orders" }

type orderLineRecord struct {
	ID               uint   `gorm:"primaryKey;autoIncrement"`
	OrderID          string `gorm:"column:order_id;type:varchar(24);index"`
	MenuItemID       string `gorm:"column:menu_item_id;type:varchar(24)"`
	Name             string `gorm:"column:name"`
	Quantity         int    `gorm:"column:quantity"`
	PriceAtOrderTime int64  `gorm:"column:price_at_order_time"`
	Size             string `gorm:"column:size"`
	Note             string `gorm:"column:note"`
}

func (orderLineRecord) TableName() string { return "order_lines" }

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

type idempotencyRecord struct {
	Key         string    `gorm:"primaryKey;column:key;size:255"`
	RequestHash string    `gorm:"column:request_hash;size:128"`
	OrderID     string    `gorm:"column:order_id;type:varchar(24)"`
	CreatedAt   time.Time `gorm:"column:created_at;index"`
}

func (idempotencyRecord) TableName() string { return "checkout_idempotency_keys" }
