package orderserver

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	checkoutmapper "github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/adapters/http/mapper"
	checkoutports "github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/ports"
)

// IdempotencyKeyHeader lets clients retry order submission safely.
const IdempotencyKeyHeader = checkoutmapper.IdempotencyKeyHeader

// OrderAPI wires HTTP transport with checkout and its workflows.
type OrderAPI struct {
	service   checkoutports.Service
	workflows checkoutports.WorkflowOrchestrator
	validate  *validatorv10.Validate
}

// NewOrderAPI creates an OrderAPI. When workflows is nil orders are placed
// through service directly.
func NewOrderAPI(service checkoutports.Service, workflows checkoutports.WorkflowOrchestrator) OrderAPI {
	return OrderAPI{service: service, workflows: workflows, validate: newValidator()}
}

// Post /api/orders
// Place an order from the checkout wizard
func (api *OrderAPI) PlaceOrder(c *gin.Context) {
	var payload checkoutmapper.PlaceOrder
	if !bindAndValidate(c, &payload, api.validate) {
		return
	}
	cmd := checkoutmapper.ToCommand(payload, CustomerID(c), c.GetHeader(IdempotencyKeyHeader))
	result, err := api.placeOrder(c.Request.Context(), cmd)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, checkoutmapper.FromResult(result))
}

func (api *OrderAPI) placeOrder(ctx context.Context, cmd checkoutports.PlaceOrderCommand) (*checkoutports.PlaceOrderResult, error) {
	if api.workflows != nil {
		return api.workflows.PlaceOrder(ctx, cmd)
	}
	return api.service.PlaceOrder(ctx, cmd)
}

// Get /api/orders/:orderId
// Fetch an order with its lines, payment and fulfillment detail
func (api *OrderAPI) GetOrder(c *gin.Context) {
	agg, err := api.service.GetOrder(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, checkoutmapper.FromAggregate(agg))
}
