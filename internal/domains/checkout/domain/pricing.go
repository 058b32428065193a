package domain

// PricingInput feeds Calculate. All amounts are VND; one point is worth one VND.
type PricingInput struct {
	Subtotal        int64
	PointsRequested int64
	PointBalance    int64
	PromoDiscount   int64
	DeliveryFee     int64
}

// Breakdown is the totals shown at review and stored on the order.
type Breakdown struct {
	Subtotal       int64 `json:"subtotal"`
	PointsDiscount int64 `json:"pointsDiscount"`
	PromoDiscount  int64 `json:"promoDiscount"`
	DeliveryFee    int64 `json:"deliveryFee"`
	Total          int64 `json:"total"`
}

// Calculate is the single pricing rule shared by the wizard and the server.
//
//	pointsDiscount = min(requested, balance, subtotal), never negative
//	total          = max(0, subtotal - pointsDiscount - promoDiscount + deliveryFee)
func Calculate(in PricingInput) Breakdown {
	subtotal := nonNegative(in.Subtotal)
	promo := nonNegative(in.PromoDiscount)
	fee := nonNegative(in.DeliveryFee)
	points := min(nonNegative(in.PointsRequested), nonNegative(in.PointBalance), subtotal)
	total := max(0, subtotal-points-promo+fee)
	return Breakdown{
		Subtotal:       subtotal,
		PointsDiscount: points,
		PromoDiscount:  promo,
		DeliveryFee:    fee,
		Total:          total,
	}
}

// Subtotal sums unitPrice x quantity over lines.
func Subtotal(lines []CartLine) int64 {
	var total int64
	for _, l := range lines {
		total += l.LineTotal()
	}
	return total
}

func nonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
