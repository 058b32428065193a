package orderserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	promotionsmapper "github.com/vuhk2k6/web-order-sub000/internal/domains/promotions/adapters/http/mapper"
	promotionsapp "github.com/vuhk2k6/web-order-sub000/internal/domains/promotions/application"
	promotionsdomain "github.com/vuhk2k6/web-order-sub000/internal/domains/promotions/domain"
	promotionsports "github.com/vuhk2k6/web-order-sub000/internal/domains/promotions/ports"
	apierrors "github.com/vuhk2k6/web-order-sub000/internal/shared/errors"
)

type PromotionAPI struct {
	service promotionsports.Service
}

func NewPromotionAPI(service promotionsports.Service) PromotionAPI {
	return PromotionAPI{service: service}
}

// Get /api/promotions/validate/:code
// Validate a promotion code against a subtotal
func (api *PromotionAPI) ValidatePromotion(c *gin.Context) {
	subtotal, err := strconv.ParseInt(c.Query("subtotal"), 10, 64)
	if err != nil || subtotal < 0 {
		respondProblem(c, apierrors.NewValidationProblem(map[string]string{"subtotal": "must be a non-negative integer"}))
		return
	}
	quote, err := api.service.Validate(c.Request.Context(), c.Param("code"), subtotal)
	if err != nil {
		if msg, ok := promotionRejection(err); ok {
			c.JSON(http.StatusOK, promotionsmapper.Rejected(msg))
			return
		}
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, promotionsmapper.FromQuote(*quote))
}

// promotionRejection returns the customer-facing message for business
// failures, which are reported with 200 and valid=false.
func promotionRejection(err error) (string, bool) {
	switch {
	case errors.Is(err, promotionsports.ErrNotFound):
		return "promotion code not found", true
	case errors.Is(err, promotionsdomain.ErrExpired):
		return "promotion has expired or is not active yet", true
	case errors.Is(err, promotionsdomain.ErrMinimumNotMet):
		return "order does not meet the minimum amount for this promotion", true
	case errors.Is(err, promotionsapp.ErrInvalidInput):
		return "promotion code is required", true
	}
	return "", false
}
