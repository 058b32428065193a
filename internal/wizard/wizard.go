// Package wizard drives the five-step checkout flow on the client side:
// order type, fulfillment and points, promotion, payment, then review and
// submit. Every forward move runs a named guard; back moves never discard
// entered data.
package wizard

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	checkoutmapper "github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/adapters/http/mapper"
	checkoutdomain "github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/domain"
	customersmapper "github.com/vuhk2k6/web-order-sub000/internal/domains/customers/adapters/http/mapper"
	fulfillmentdomain "github.com/vuhk2k6/web-order-sub000/internal/domains/fulfillment/domain"
	promotionsmapper "github.com/vuhk2k6/web-order-sub000/internal/domains/promotions/adapters/http/mapper"
)

// Step is a wizard state.
type Step string

const (
	StepSelectType  Step = "SELECT_TYPE"
	StepFulfillment Step = "FULFILLMENT_AND_POINTS"
	StepPromotion   Step = "PROMOTION"
	StepPayment     Step = "PAYMENT"
	StepReview      Step = "REVIEW_AND_SUBMIT"
)

var steps = []Step{StepSelectType, StepFulfillment, StepPromotion, StepPayment, StepReview}

const (
	DefaultSubmitTimeout = 30 * time.Second
	DefaultDeliveryFee   = int64(20000)
)

// Backend is the ordering API as seen by the wizard.
type Backend interface {
	ValidatePromotion(ctx context.Context, code string, subtotal int64) (*promotionsmapper.PromotionValidation, error)
	PlaceOrder(ctx context.Context, req checkoutmapper.PlaceOrder, idempotencyKey string) (*checkoutmapper.PlacedOrder, error)
	CreatePayment(ctx context.Context, gateway, orderID string) (*checkoutmapper.PaymentLink, error)
}

// Session describes the signed-in customer.
type Session struct {
	CustomerID   string
	PointBalance int64
	Addresses    []customersmapper.Address
}

// Outcome is what the wizard keeps after the server accepted the order.
type Outcome struct {
	OrderID         string
	TransactionCode string
	Status          string
	Breakdown       checkoutdomain.Breakdown
	PayURL          string
	PaymentError    string
}

// PaymentPending reports whether an online order still needs a payment link.
func (o Outcome) PaymentPending() bool {
	return o.PaymentError != "" && o.PayURL == ""
}

// Option configures a Wizard.
type Option func(*Wizard)

// WithSubmitTimeout bounds each submission and payment retry.
func WithSubmitTimeout(d time.Duration) Option {
	return func(w *Wizard) {
		if d > 0 {
			w.timeout = d
		}
	}
}

// WithGateway names the online wallet used for payment retries.
func WithGateway(name string) Option {
	return func(w *Wizard) {
		w.gateway = strings.ToLower(strings.TrimSpace(name))
	}
}

// WithDeliveryFee sets the flat fee shown for delivery orders.
func WithDeliveryFee(fee int64) Option {
	return func(w *Wizard) {
		if fee >= 0 {
			w.deliveryFee = fee
		}
	}
}

func withKeys(next func() string) Option {
	return func(w *Wizard) { w.newKey = next }
}

// Wizard is safe for one UI goroutine plus observers of CanSubmit while a
// submission is in flight.
type Wizard struct {
	backend     Backend
	timeout     time.Duration
	gateway     string
	deliveryFee int64
	newKey      func() string

	mu   sync.Mutex
	step Step
	cart []checkoutdomain.CartLine

	session *Session

	orderType       fulfillmentdomain.Mode
	pointsRequested int64
	savedAddressID  string
	newAddress      fulfillmentdomain.Address
	tableNumber     int

	promoCode string
	promo     *promotionsmapper.PromotionValidation
	promoBase int64

	paymentMethod checkoutdomain.PaymentMethod

	submitting  bool
	lastError   string
	pendingKey  string
	pendingHash string
	outcome     *Outcome
}

func New(backend Backend, opts ...Option) *Wizard {
	w := &Wizard{
		backend:     backend,
		timeout:     DefaultSubmitTimeout,
		gateway:     "momo",
		deliveryFee: DefaultDeliveryFee,
		newKey:      uuid.NewString,
		step:        StepSelectType,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w
}

// Step returns the current state.
func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Next runs the guard of the current step and advances when it passes.
func (w *Wizard) Next() GateResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	idx := stepIndex(w.step)
	if idx == len(steps)-1 {
		return blocked(CodeWrongStep, "already at review")
	}
	if res := guards[w.step](w); !res.OK {
		return res
	}
	w.step = steps[idx+1]
	return passed()
}

// Back moves one step back. Nothing entered is discarded.
func (w *Wizard) Back() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	idx := stepIndex(w.step)
	if idx == 0 || w.submitting {
		return false
	}
	w.step = steps[idx-1]
	return true
}

// SignIn attaches a customer session; SignOut drops it.
func (w *Wizard) SignIn(s Session) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.session = &s
}

func (w *Wizard) SignOut() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.session = nil
	w.savedAddressID = ""
}

// AddLine puts a line into the cart.
func (w *Wizard) AddLine(line checkoutdomain.CartLine) error {
	if err := line.Validate(); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cart = append(w.cart, line)
	return nil
}

// RemoveLine drops the cart line at index i.
func (w *Wizard) RemoveLine(i int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if i < 0 || i >= len(w.cart) {
		return false
	}
	w.cart = append(w.cart[:i], w.cart[i+1:]...)
	return true
}

// Cart returns a copy of the cart lines.
func (w *Wizard) Cart() []checkoutdomain.CartLine {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]checkoutdomain.CartLine(nil), w.cart...)
}

func (w *Wizard) SetOrderType(raw string) error {
	mode, err := fulfillmentdomain.ParseMode(raw)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.orderType = mode
	return nil
}

// SetPoints records the points the customer wants to redeem.
func (w *Wizard) SetPoints(points int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pointsRequested = max(0, points)
}

// SelectSavedAddress picks an address from the signed-in customer's book.
func (w *Wizard) SelectSavedAddress(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.savedAddressID = strings.TrimSpace(id)
}

// SetNewAddress fills in a delivery address and clears any saved selection.
func (w *Wizard) SetNewAddress(a fulfillmentdomain.Address) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.newAddress = a
	w.savedAddressID = ""
}

func (w *Wizard) SetTable(number int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.tableNumber = number
}

// EnterPromoCode changes the code. A changed code must be validated again.
func (w *Wizard) EnterPromoCode(code string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	code = strings.TrimSpace(code)
	if !strings.EqualFold(code, w.promoCode) {
		w.promo = nil
	}
	w.promoCode = code
}

// ClearPromotion removes the code and its quote.
func (w *Wizard) ClearPromotion() {
	w.EnterPromoCode("")
}

// ApplyPromotion validates the entered code against the current subtotal.
// Server rejections are returned with the server's message.
func (w *Wizard) ApplyPromotion(ctx context.Context) GateResult {
	w.mu.Lock()
	code := w.promoCode
	subtotal := checkoutdomain.Subtotal(w.cart)
	w.mu.Unlock()
	if code == "" {
		return blocked(CodePromotionRejected, "enter a promotion code")
	}

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	quote, err := w.backend.ValidatePromotion(ctx, code, subtotal)

	w.mu.Lock()
	defer w.mu.Unlock()
	if !strings.EqualFold(code, w.promoCode) {
		return blocked(CodePromotionUnverified, "promotion code changed while it was being checked")
	}
	if err != nil {
		w.promo = nil
		return blocked(CodePromotionRejected, err.Error())
	}
	if !quote.Valid {
		w.promo = nil
		return blocked(CodePromotionRejected, quote.Message)
	}
	w.promo = quote
	w.promoBase = subtotal
	return passed()
}

func (w *Wizard) SetPaymentMethod(raw string) error {
	method, err := checkoutdomain.ParsePaymentMethod(raw)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.paymentMethod = method
	return nil
}

// Breakdown recomputes the totals with the same rule the server applies.
func (w *Wizard) Breakdown() checkoutdomain.Breakdown {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.breakdown()
}

func (w *Wizard) breakdown() checkoutdomain.Breakdown {
	in := checkoutdomain.PricingInput{
		Subtotal:        checkoutdomain.Subtotal(w.cart),
		PointsRequested: w.pointsRequested,
	}
	if w.session != nil {
		in.PointBalance = w.session.PointBalance
	}
	if w.promoValid() {
		in.PromoDiscount = w.promo.Discount
	}
	if w.orderType == fulfillmentdomain.ModeDelivery {
		in.DeliveryFee = w.deliveryFee
	}
	return checkoutdomain.Calculate(in)
}

// promoValid reports whether the stored quote still matches the code and
// the subtotal it was computed for.
func (w *Wizard) promoValid() bool {
	return w.promo != nil && w.promo.Valid &&
		strings.EqualFold(w.promo.Code, w.promoCode) &&
		w.promoBase == checkoutdomain.Subtotal(w.cart)
}

// CanSubmit reports whether the submit control is enabled.
func (w *Wizard) CanSubmit() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step == StepReview && !w.submitting && w.outcome == nil && len(w.cart) > 0
}

// LastError is the message of the most recent failed submission or retry.
func (w *Wizard) LastError() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastError
}

// Outcome returns the accepted order, if any.
func (w *Wizard) Outcome() (Outcome, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.outcome == nil {
		return Outcome{}, false
	}
	return *w.outcome, true
}

// Submit sends the assembled checkout to the server. The cart is cleared
// only once the server confirms the order.
func (w *Wizard) Submit(ctx context.Context) (*Outcome, GateResult) {
	w.mu.Lock()
	if res := w.submittable(); !res.OK {
		w.mu.Unlock()
		return nil, res
	}
	payload := w.payload()
	key := w.keyFor(payload)
	w.submitting = true
	w.lastError = ""
	w.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	placed, err := w.backend.PlaceOrder(ctx, payload, key)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.submitting = false
	if err != nil {
		res := failure(CodeSubmitFailed, err)
		w.lastError = res.Message
		return nil, res
	}
	out := &Outcome{
		OrderID:         placed.OrderID,
		TransactionCode: placed.TransactionCode,
		Status:          placed.Status,
		Breakdown:       toBreakdown(placed.Breakdown),
		PayURL:          placed.PayURL,
		PaymentError:    placed.PaymentError,
	}
	w.outcome = out
	w.cart = nil
	w.pendingKey, w.pendingHash = "", ""
	if out.PaymentPending() {
		w.lastError = out.PaymentError
	}
	result := *out
	return &result, passed()
}

// RetryPayment requests a new payment link for an accepted online order
// whose wallet call failed. It is the only action left after such a failure.
func (w *Wizard) RetryPayment(ctx context.Context) (string, GateResult) {
	w.mu.Lock()
	if w.outcome == nil || !w.outcome.PaymentPending() {
		w.mu.Unlock()
		return "", blocked(CodeNoPendingPayment, "there is no order waiting for a payment link")
	}
	if w.submitting {
		w.mu.Unlock()
		return "", blocked(CodeSubmitInFlight, "a request is already in progress")
	}
	orderID := w.outcome.OrderID
	w.submitting = true
	w.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	link, err := w.backend.CreatePayment(ctx, w.gateway, orderID)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.submitting = false
	if err != nil {
		res := failure(CodePaymentFailed, err)
		w.lastError = res.Message
		w.outcome.PaymentError = res.Message
		return "", res
	}
	w.outcome.PayURL = link.PayURL
	w.outcome.PaymentError = ""
	w.lastError = ""
	return link.PayURL, passed()
}

func (w *Wizard) submittable() GateResult {
	switch {
	case w.outcome != nil:
		return blocked(CodeAlreadySubmitted, "this order has already been placed")
	case w.step != StepReview:
		return blocked(CodeWrongStep, "review the order before submitting")
	case w.submitting:
		return blocked(CodeSubmitInFlight, "the order is being submitted")
	case len(w.cart) == 0:
		return blocked(CodeCartEmpty, "the cart is empty")
	}
	for _, step := range steps[:len(steps)-1] {
		if res := guards[step](w); !res.OK {
			return res
		}
	}
	return passed()
}

func (w *Wizard) payload() checkoutmapper.PlaceOrder {
	b := w.breakdown()
	req := checkoutmapper.PlaceOrder{
		OrderType:     string(w.orderType),
		PointsUsed:    w.pointsRequested,
		PromoCode:     w.promoCode,
		DeliveryFee:   b.DeliveryFee,
		Total:         b.Total,
		PaymentMethod: string(w.paymentMethod),
	}
	for _, l := range w.cart {
		req.Items = append(req.Items, checkoutmapper.OrderItem{
			ID:       l.ItemID,
			Price:    l.UnitPrice,
			Quantity: l.Quantity,
			Size:     l.Size,
			Note:     l.Note,
		})
	}
	switch w.orderType {
	case fulfillmentdomain.ModeDelivery:
		a := w.deliveryAddress()
		req.DeliveryAddress = &checkoutmapper.DeliveryAddress{
			Address:  a.Address,
			Ward:     a.Ward,
			District: a.District,
			Street:   a.Street,
			Phone:    a.Phone,
			Note:     a.Note,
		}
	case fulfillmentdomain.ModeDineIn:
		req.TableNumber = w.tableNumber
	}
	return req
}

// keyFor reuses the idempotency key while the payload is unchanged, so a
// resubmission after a timeout cannot create a second order.
func (w *Wizard) keyFor(payload checkoutmapper.PlaceOrder) string {
	raw, _ := json.Marshal(payload)
	sum := sha256.Sum256(raw)
	hash := hex.EncodeToString(sum[:])
	if w.pendingKey == "" || w.pendingHash != hash {
		w.pendingKey = w.newKey()
		w.pendingHash = hash
	}
	return w.pendingKey
}

func (w *Wizard) deliveryAddress() fulfillmentdomain.Address {
	if saved, ok := w.savedAddress(); ok {
		return fulfillmentdomain.Address{
			Address:  saved.Address,
			Ward:     saved.Ward,
			District: saved.District,
			Street:   saved.Street,
			Phone:    saved.Phone,
		}
	}
	return w.newAddress
}

func (w *Wizard) savedAddress() (customersmapper.Address, bool) {
	if w.session == nil || w.savedAddressID == "" {
		return customersmapper.Address{}, false
	}
	for _, a := range w.session.Addresses {
		if a.ID == w.savedAddressID {
			return a, true
		}
	}
	return customersmapper.Address{}, false
}

func toBreakdown(b checkoutmapper.Breakdown) checkoutdomain.Breakdown {
	return checkoutdomain.Breakdown{
		Subtotal:       b.Subtotal,
		PointsDiscount: b.PointsDiscount,
		PromoDiscount:  b.PromoDiscount,
		DeliveryFee:    b.DeliveryFee,
		Total:          b.Total,
	}
}

func failure(code string, err error) GateResult {
	if errors.Is(err, context.DeadlineExceeded) {
		return blocked(CodeTimeout, "the ordering service did not answer in time, please try again")
	}
	return blocked(code, err.Error())
}

func stepIndex(s Step) int {
	for i, candidate := range steps {
		if candidate == s {
			return i
		}
	}
	return 0
}
