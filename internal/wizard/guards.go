package wizard

import (
	fulfillmentdomain "github.com/vuhk2k6/web-order-sub000/internal/domains/fulfillment/domain"
)

// Gate result codes.
const (
	CodeOrderTypeRequired     = "ORDER_TYPE_REQUIRED"
	CodeLoginRequired         = "LOGIN_REQUIRED"
	CodeAddressRequired       = "ADDRESS_REQUIRED"
	CodeTableRequired         = "TABLE_REQUIRED"
	CodePromotionUnverified   = "PROMOTION_NOT_VALIDATED"
	CodePromotionRejected     = "PROMOTION_REJECTED"
	CodePaymentMethodRequired = "PAYMENT_METHOD_REQUIRED"
	CodeCartEmpty             = "CART_EMPTY"
	CodeWrongStep             = "WRONG_STEP"
	CodeSubmitInFlight        = "SUBMIT_IN_FLIGHT"
	CodeAlreadySubmitted      = "ALREADY_SUBMITTED"
	CodeSubmitFailed          = "SUBMIT_FAILED"
	CodeTimeout               = "TIMEOUT"
	CodeNoPendingPayment      = "NO_PENDING_PAYMENT"
	CodePaymentFailed         = "PAYMENT_FAILED"
)

// GateResult is the outcome of a guard or a wizard action.
type GateResult struct {
	OK      bool
	Code    string
	Message string
}

func passed() GateResult { return GateResult{OK: true} }

func blocked(code, message string) GateResult {
	return GateResult{Code: code, Message: message}
}

type guard func(w *Wizard) GateResult

// guards maps each step to the check that must pass to leave it. Callers
// hold w.mu.
var guards = map[Step]guard{
	StepSelectType:  orderTypeChosen,
	StepFulfillment: fulfillmentComplete,
	StepPromotion:   promotionSettled,
	StepPayment:     paymentMethodChosen,
}

func orderTypeChosen(w *Wizard) GateResult {
	if w.orderType == "" {
		return blocked(CodeOrderTypeRequired, "choose delivery, dine-in or takeaway")
	}
	return passed()
}

func fulfillmentComplete(w *Wizard) GateResult {
	if w.pointsRequested > 0 && w.session == nil {
		return blocked(CodeLoginRequired, "sign in to redeem loyalty points")
	}
	switch w.orderType {
	case fulfillmentdomain.ModeDelivery:
		if w.savedAddressID != "" {
			if w.session == nil {
				return blocked(CodeLoginRequired, "sign in to use a saved address")
			}
			if _, ok := w.savedAddress(); !ok {
				return blocked(CodeAddressRequired, "the selected address is no longer available")
			}
			return passed()
		}
		if !w.newAddress.Complete() {
			return blocked(CodeAddressRequired, "address, ward and district are required for delivery")
		}
	case fulfillmentdomain.ModeDineIn:
		if w.tableNumber <= 0 {
			return blocked(CodeTableRequired, "enter your table number")
		}
	}
	return passed()
}

func promotionSettled(w *Wizard) GateResult {
	if w.promoCode == "" || w.promoValid() {
		return passed()
	}
	return blocked(CodePromotionUnverified, "apply or clear the promotion code before continuing")
}

func paymentMethodChosen(w *Wizard) GateResult {
	if w.paymentMethod == "" {
		return blocked(CodePaymentMethodRequired, "choose a payment method")
	}
	return passed()
}
