package orderserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	customersports "github.com/vuhk2k6/web-order-sub000/internal/domains/customers/ports"
)

// Route is the information for every URI.
type Route struct {
	Name        string
	Method      string
	Pattern     string
	HandlerFunc gin.HandlerFunc
}

// ApiHandleFunctions bundles the handlers served by the router.
type ApiHandleFunctions struct {
	OrderAPI     OrderAPI
	PaymentAPI   PaymentAPI
	PromotionAPI PromotionAPI
	MemberAPI    MemberAPI
	AddressAPI   AddressAPI
	// Sessions resolves bearer tokens and session cookies. Optional.
	Sessions customersports.Service
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine adds the routes to an existing engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	api := router.Group("/", SessionMiddleware(handleFunctions.Sessions))
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		api.Handle(route.Method, route.Pattern, route.HandlerFunc)
	}
	return router
}

// DefaultHandleFunc answers routes whose handler is not wired.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

// Health reports process liveness.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func getRoutes(h ApiHandleFunctions) []Route {
	return []Route{
		{"Health", http.MethodGet, "/health", Health},
		{"PlaceOrder", http.MethodPost, "/api/orders", h.OrderAPI.PlaceOrder},
		{"GetOrder", http.MethodGet, "/api/orders/:orderId", h.OrderAPI.GetOrder},
		{"CreatePayment", http.MethodPost, "/api/payments/:gateway/create", h.PaymentAPI.CreatePayment},
		{"ValidatePromotion", http.MethodGet, "/api/promotions/validate/:code", h.PromotionAPI.ValidatePromotion},
		{"GetMember", http.MethodGet, "/api/member/:customerId", h.MemberAPI.GetMember},
		{"ListAddresses", http.MethodGet, "/api/delivery-addresses", h.AddressAPI.ListAddresses},
		{"SaveAddress", http.MethodPost, "/api/delivery-addresses", h.AddressAPI.SaveAddress},
	}
}
