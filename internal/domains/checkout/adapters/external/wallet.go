package external

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/ports"
)

var _ ports.PaymentGateway = (*WalletClient)(nil)

// WalletClient creates payments on an online wallet's HTTP API.
type WalletClient struct {
	name        string
	endpoint    string
	redirectURL string
	http        *http.Client
}

type WalletOption func(*WalletClient)

// WithHTTPClient replaces the instrumented default client.
func WithHTTPClient(c *http.Client) WalletOption {
	return func(w *WalletClient) {
		if c != nil {
			w.http = c
		}
	}
}

// WithRedirectURL is where the wallet sends the customer after paying.
func WithRedirectURL(u string) WalletOption {
	return func(w *WalletClient) {
		w.redirectURL = strings.TrimSpace(u)
	}
}

// NewWalletClient instantiates the wallet client with sane defaults.
func NewWalletClient(name, endpoint string, timeout time.Duration, opts ...WalletOption) (*WalletClient, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("wallet endpoint is required")
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, fmt.Errorf("wallet endpoint: %w", err)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	w := &WalletClient{
		name:     strings.ToLower(strings.TrimSpace(name)),
		endpoint: endpoint,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

func (w *WalletClient) Name() string { return w.name }

type createPaymentRequest struct {
	OrderID     string `json:"orderId"`
	RequestID   string `json:"requestId"`
	Amount      int64  `json:"amount"`
	OrderInfo   string `json:"orderInfo"`
	RedirectURL string `json:"redirectUrl,omitempty"`
}

type createPaymentResponse struct {
	ResultCode int    `json:"resultCode"`
	Message    string `json:"message"`
	PayURL     string `json:"payUrl"`
}

// CreatePayment posts the payment request. Any non-zero result code or
// missing payUrl is an error.
func (w *WalletClient) CreatePayment(ctx context.Context, req ports.PaymentRequest) (*ports.PaymentLink, error) {
	body, err := json.Marshal(createPaymentRequest{
		OrderID:     req.OrderID,
		RequestID:   req.TransactionCode,
		Amount:      req.Amount,
		OrderInfo:   req.Description,
		RedirectURL: w.redirectURL,
	})
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := w.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", w.name, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", w.name, err)
	}
	var out createPaymentResponse
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil && resp.StatusCode < http.StatusBadRequest {
			return nil, fmt.Errorf("decode %s response: %w", w.name, err)
		}
	}
	switch {
	case resp.StatusCode >= http.StatusBadRequest:
		return nil, fmt.Errorf("%s error: %s", w.name, message(out, resp.Status))
	case out.ResultCode != 0:
		return nil, fmt.Errorf("%s rejected payment (code %d): %s", w.name, out.ResultCode, message(out, resp.Status))
	case strings.TrimSpace(out.PayURL) == "":
		return nil, fmt.Errorf("%s returned no payUrl", w.name)
	}
	return &ports.PaymentLink{Gateway: w.name, PayURL: out.PayURL}, nil
}

func message(out createPaymentResponse, fallback string) string {
	if msg := strings.TrimSpace(out.Message); msg != "" {
		return msg
	}
	return fallback
}
