package orderserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	checkoutmapper "github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/adapters/http/mapper"
	checkoutports "github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/ports"
	apierrors "github.com/vuhk2k6/web-order-sub000/internal/shared/errors"
)

// PaymentAPI re-requests payment links for online orders.
type PaymentAPI struct {
	service  checkoutports.Service
	gateway  string
	validate *validatorv10.Validate
}

// NewPaymentAPI serves the wallet named gateway.
func NewPaymentAPI(service checkoutports.Service, gateway string) PaymentAPI {
	return PaymentAPI{service: service, gateway: strings.ToLower(strings.TrimSpace(gateway)), validate: newValidator()}
}

// Post /api/payments/:gateway/create
// Create a payment link for an existing online order
func (api *PaymentAPI) CreatePayment(c *gin.Context) {
	if gateway := strings.ToLower(c.Param("gateway")); api.gateway == "" || gateway != api.gateway {
		respondProblem(c, apierrors.NewNotFoundProblem("payment gateway", c.Param("gateway")))
		return
	}
	var payload checkoutmapper.CreatePayment
	if !bindAndValidate(c, &payload, api.validate) {
		return
	}
	link, err := api.service.InitiatePayment(c.Request.Context(), payload.OrderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, checkoutmapper.PaymentLink{Success: true, PayURL: link.PayURL})
}
