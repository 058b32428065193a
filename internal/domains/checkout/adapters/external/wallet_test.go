package external

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/ports"
)

func TestWalletClient_CreatePayment(t *testing.T) {
	var got createPaymentRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(createPaymentResponse{ResultCode: 0, PayURL: "https://wallet.test/pay/1"})
	}))
	defer srv.Close()

	client, err := NewWalletClient("MoMo", srv.URL, time.Second, WithHTTPClient(srv.Client()), WithRedirectURL("https://shop.test/return"))
	require.NoError(t, err)

	link, err := client.CreatePayment(context.Background(), ports.PaymentRequest{
		OrderID: "65a1b2c3d4e5f6a7b8c9d0e1", TransactionCode: "TX1", Amount: 180000, Description: "order",
	})
	require.NoError(t, err)
	require.Equal(t, "momo", link.Gateway)
	require.Equal(t, "https://wallet.test/pay/1", link.PayURL)
	require.Equal(t, int64(180000), got.Amount)
	require.Equal(t, "TX1", got.RequestID)
	require.Equal(t, "https://shop.test/return", got.RedirectURL)
}

func TestWalletClient_Failures(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"message":"upstream down"}`))
		},
		"rejected": func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(createPaymentResponse{ResultCode: 41, Message: "duplicate request"})
		},
		"missing url": func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(createPaymentResponse{ResultCode: 0})
		},
	}
	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(handler)
			defer srv.Close()
			client, err := NewWalletClient("momo", srv.URL, time.Second, WithHTTPClient(srv.Client()))
			require.NoError(t, err)
			_, err = client.CreatePayment(context.Background(), ports.PaymentRequest{OrderID: "o", TransactionCode: "t", Amount: 1})
			require.Error(t, err)
		})
	}
}

func TestWalletClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()
	client, err := NewWalletClient("momo", srv.URL, 50*time.Millisecond)
	require.NoError(t, err)
	_, err = client.CreatePayment(context.Background(), ports.PaymentRequest{OrderID: "o", TransactionCode: "t", Amount: 1})
	require.Error(t, err)
}

func TestNewWalletClient_RequiresEndpoint(t *testing.T) {
	_, err := NewWalletClient("momo", " ", time.Second)
	require.Error(t, err)
}

func TestSandboxWallet(t *testing.T) {
	wallet := NewSandboxWallet("momo", "https://sandbox.test/pay")
	link, err := wallet.CreatePayment(context.Background(), ports.PaymentRequest{OrderID: "abc", TransactionCode: "TX", Amount: 5})
	require.NoError(t, err)
	require.Contains(t, link.PayURL, "orderId=abc")
	require.Equal(t, "momo", link.Gateway)
}
