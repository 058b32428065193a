package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"

	"github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/ports"
)

type normalizedPlaceOrder struct {
	CustomerID    string           `json:"customerId"`
	OrderType     string           `json:"orderType"`
	Items         []normalizedLine `json:"items"`
	Points        int64            `json:"points"`
	PromoCode     string           `json:"promoCode"`
	PaymentMethod string           `json:"paymentMethod"`
	Address       []string         `json:"address,omitempty"`
	TableNumber   int              `json:"tableNumber,omitempty"`
}

type normalizedLine struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
	Size     string `json:"size"`
	Note     string `json:"note"`
}

// FingerprintPlaceOrder hashes the parts of a checkout payload that affect
// the resulting order. Client prices and the idempotency key are excluded.
func FingerprintPlaceOrder(cmd ports.PlaceOrderCommand) (string, error) {
	n := normalizedPlaceOrder{
		CustomerID:    strings.TrimSpace(cmd.CustomerID),
		OrderType:     strings.ToUpper(strings.TrimSpace(cmd.OrderType)),
		Points:        cmd.PointsRequested,
		PromoCode:     strings.ToUpper(strings.TrimSpace(cmd.PromoCode)),
		PaymentMethod: strings.ToUpper(strings.TrimSpace(cmd.PaymentMethod)),
		TableNumber:   cmd.TableNumber,
	}
	for _, it := range cmd.Items {
		n.Items = append(n.Items, normalizedLine{
			ItemID:   strings.TrimSpace(it.ItemID),
			Quantity: it.Quantity,
			Size:     strings.ToUpper(strings.TrimSpace(it.Size)),
			Note:     strings.TrimSpace(it.Note),
		})
	}
	sort.SliceStable(n.Items, func(i, j int) bool {
		if n.Items[i].ItemID != n.Items[j].ItemID {
			return n.Items[i].ItemID < n.Items[j].ItemID
		}
		return n.Items[i].Size < n.Items[j].Size
	})
	if a := cmd.DeliveryAddress; a != nil {
		n.Address = []string{
			strings.TrimSpace(a.Address), strings.TrimSpace(a.Ward), strings.TrimSpace(a.District),
			strings.TrimSpace(a.Street), strings.TrimSpace(a.Phone),
		}
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
