package external

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/ports"
)

var _ ports.PaymentGateway = (*SandboxWallet)(nil)

// SandboxWallet issues local pay URLs when no wallet endpoint is configured.
type SandboxWallet struct {
	name    string
	baseURL string
}

func NewSandboxWallet(name, baseURL string) *SandboxWallet {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "http://localhost:8080/payment/sandbox"
	}
	return &SandboxWallet{name: strings.ToLower(strings.TrimSpace(name)), baseURL: baseURL}
}

func (s *SandboxWallet) Name() string { return s.name }

func (s *SandboxWallet) CreatePayment(ctx context.Context, req ports.PaymentRequest) (*ports.PaymentLink, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return nil, err
	}
	if req.Amount <= 0 {
		return nil, errors.New("amount must be positive")
	}
	q := u.Query()
	q.Set("orderId", req.OrderID)
	q.Set("requestId", req.TransactionCode)
	q.Set("amount", strconv.FormatInt(req.Amount, 10))
	u.RawQuery = q.Encode()
	return &ports.PaymentLink{Gateway: s.name, PayURL: u.String()}, nil
}
