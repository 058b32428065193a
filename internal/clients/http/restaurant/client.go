package restaurant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	checkoutmapper "github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/adapters/http/mapper"
	customersmapper "github.com/vuhk2k6/web-order-sub000/internal/domains/customers/adapters/http/mapper"
	loyaltymapper "github.com/vuhk2k6/web-order-sub000/internal/domains/loyalty/adapters/http/mapper"
	promotionsmapper "github.com/vuhk2k6/web-order-sub000/internal/domains/promotions/adapters/http/mapper"
	apierrors "github.com/vuhk2k6/web-order-sub000/internal/shared/errors"
)

// ErrNotFound is matched by errors.Is for 404 responses.
var ErrNotFound = errors.New("resource not found")

// APIError is a problem document returned by the ordering API.
type APIError struct {
	Problem apierrors.ProblemDetail
}

// Error returns the server's message verbatim.
func (e *APIError) Error() string {
	if msg := strings.TrimSpace(e.Problem.Detail); msg != "" {
		return msg
	}
	if msg := strings.TrimSpace(e.Problem.Title); msg != "" {
		return msg
	}
	return fmt.Sprintf("ordering API returned status %d", e.Problem.Status)
}

// Code is the machine readable error code, e.g. INSUFFICIENT_BALANCE.
func (e *APIError) Code() string { return e.Problem.Code() }

func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Problem.Status == http.StatusNotFound
}

// Client calls the ordering API on behalf of the checkout wizard.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient replaces the traced default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// WithToken sends token as a bearer credential on every request.
func WithToken(token string) Option {
	return func(cl *Client) {
		cl.token = strings.TrimSpace(token)
	}
}

// NewClient instantiates the client with sane defaults.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("ordering API base URL is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   15 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// ValidatePromotion checks code against subtotal. Business rejections come
// back as Valid=false with a message, not as an error.
func (c *Client) ValidatePromotion(ctx context.Context, code string, subtotal int64) (*promotionsmapper.PromotionValidation, error) {
	path := "/api/promotions/validate/" + url.PathEscape(strings.TrimSpace(code)) +
		"?subtotal=" + strconv.FormatInt(subtotal, 10)
	var out promotionsmapper.PromotionValidation
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Member returns the loyalty membership of customerID. Non-members yield
// an error matching ErrNotFound.
func (c *Client) Member(ctx context.Context, customerID string) (*loyaltymapper.Member, error) {
	var out loyaltymapper.MemberResponse
	if err := c.do(ctx, http.MethodGet, "/api/member/"+url.PathEscape(customerID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.Member, nil
}

// Addresses lists the signed-in customer's saved addresses.
func (c *Client) Addresses(ctx context.Context) ([]customersmapper.Address, error) {
	var out customersmapper.AddressList
	if err := c.do(ctx, http.MethodGet, "/api/delivery-addresses", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Addresses, nil
}

// PlaceOrder submits the checkout payload. A non-empty idempotencyKey makes
// resubmission safe.
func (c *Client) PlaceOrder(ctx context.Context, req checkoutmapper.PlaceOrder, idempotencyKey string) (*checkoutmapper.PlacedOrder, error) {
	headers := map[string]string{}
	if key := strings.TrimSpace(idempotencyKey); key != "" {
		headers[checkoutmapper.IdempotencyKeyHeader] = key
	}
	var out checkoutmapper.PlacedOrder
	if err := c.do(ctx, http.MethodPost, "/api/orders", req, headers, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreatePayment asks gateway for a fresh payment link for orderID.
func (c *Client) CreatePayment(ctx context.Context, gateway, orderID string) (*checkoutmapper.PaymentLink, error) {
	var out checkoutmapper.PaymentLink
	body := checkoutmapper.CreatePayment{OrderID: orderID}
	if err := c.do(ctx, http.MethodPost, "/api/payments/"+url.PathEscape(gateway)+"/create", body, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetOrder fetches the full order detail.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*checkoutmapper.OrderDetail, error) {
	var out checkoutmapper.OrderDetail
	if err := c.do(ctx, http.MethodGet, "/api/orders/"+url.PathEscape(orderID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, headers map[string]string, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call ordering API: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Problem: apierrors.ProblemDetail{Status: resp.StatusCode, Title: resp.Status}}
		_ = json.Unmarshal(raw, &apiErr.Problem)
		if apiErr.Problem.Status == 0 {
			apiErr.Problem.Status = resp.StatusCode
		}
		return apiErr
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
