package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestBuild_InMemoryStackServesOrders(t *testing.T) {
	clearConfigEnv(t)
	gin.SetMode(gin.TestMode)
	cfg, err := LoadConfig()
	require.NoError(t, err)

	stack, err := Build(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(stack.Close)
	require.Equal(t, "momo", stack.Gateway)

	engine := NewEngine(stack)
	body := `{"orderType":"DELIVERY","paymentMethod":"CASH",
		"items":[{"id":"65f000000000000000000002","quantity":2}],
		"deliveryAddress":{"address":"12 Ly Thuong Kiet","ward":"Ward 7","district":"District 10"}}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var placed struct {
		Total     int64 `json:"total"`
		Breakdown struct {
			DeliveryFee int64 `json:"deliveryFee"`
		} `json:"breakdown"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &placed))
	require.Equal(t, int64(20000), placed.Breakdown.DeliveryFee)
	require.Equal(t, int64(130000), placed.Total)

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/member/"+DemoCustomerID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestConnectTemporal_Disabled(t *testing.T) {
	_, err := ConnectTemporal(Config{TemporalDisabled: true}, nil)
	require.Error(t, err)
}
