package api

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	catalogdomain "github.com/vuhk2k6/web-order-sub000/internal/domains/catalog/domain"
	fulfillmentdomain "github.com/vuhk2k6/web-order-sub000/internal/domains/fulfillment/domain"
	loyaltydomain "github.com/vuhk2k6/web-order-sub000/internal/domains/loyalty/domain"
	promotionsdomain "github.com/vuhk2k6/web-order-sub000/internal/domains/promotions/domain"
)

// DemoCustomerID is the loyalty member seeded into in-memory deployments.
const DemoCustomerID = "65c000000000000000000001"

type demoMember struct {
	account        loyaltydomain.Account
	openingEntryID string
}

type demoData struct {
	menu       []*catalogdomain.MenuItem
	promotions []*promotionsdomain.Promotion
	tables     []fulfillmentdomain.Table
	members    []demoMember
}

func newDemoData() (*demoData, error) {
	now := time.Now().UTC()
	data := &demoData{}

	menu := []struct {
		id    string
		name  string
		price int64
		sizes []string
	}{
		{"65f000000000000000000001", "Pho bo tai", 65000, []string{"M", "L"}},
		{"65f000000000000000000002", "Bun cha Ha Noi", 55000, nil},
		{"65f000000000000000000003", "Com tam suon", 60000, []string{"M", "L"}},
		{"65f000000000000000000004", "Tra dao cam sa", 35000, []string{"M", "L"}},
		{"65f000000000000000000005", "Ca phe sua da", 29000, nil},
	}
	for _, m := range menu {
		item, err := catalogdomain.NewMenuItem(m.id, m.name, m.price, m.sizes, true)
		if err != nil {
			return nil, fmt.Errorf("menu item %s: %w", m.id, err)
		}
		data.menu = append(data.menu, item)
	}

	fixed, err := promotionsdomain.NewPromotion("64f000000000000000000001", "SAVE50K", "Giam 50.000d",
		promotionsdomain.DiscountFixedAmount, decimal.NewFromInt(50000), now.AddDate(0, -1, 0), now.AddDate(1, 0, 0), 200000)
	if err != nil {
		return nil, err
	}
	percent, err := promotionsdomain.NewPromotion("64f000000000000000000002", "WELCOME10", "Giam 10%",
		promotionsdomain.DiscountPercent, decimal.NewFromInt(10), now.AddDate(0, -1, 0), now.AddDate(1, 0, 0), 0)
	if err != nil {
		return nil, err
	}
	data.promotions = append(data.promotions, fixed, percent)

	for n := 1; n <= 10; n++ {
		table, err := fulfillmentdomain.NewTable(fmt.Sprintf("65b0000000000000000000%02d", n), n)
		if err != nil {
			return nil, err
		}
		data.tables = append(data.tables, *table)
	}

	data.members = append(data.members, demoMember{
		account: loyaltydomain.Account{
			ID:           "65a000000000000000000001",
			CustomerID:   DemoCustomerID,
			PointBalance: 500,
			Tier:         loyaltydomain.TierFor(0),
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		openingEntryID: "65e000000000000000000001",
	})
	return data, nil
}
