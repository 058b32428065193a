package orderserver

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	checkoutapp "github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/application"
	checkoutports "github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/ports"
	customersapp "github.com/vuhk2k6/web-order-sub000/internal/domains/customers/application"
	customersports "github.com/vuhk2k6/web-order-sub000/internal/domains/customers/ports"
	fulfillmentports "github.com/vuhk2k6/web-order-sub000/internal/domains/fulfillment/ports"
	loyaltyapp "github.com/vuhk2k6/web-order-sub000/internal/domains/loyalty/application"
	loyaltydomain "github.com/vuhk2k6/web-order-sub000/internal/domains/loyalty/domain"
	loyaltyports "github.com/vuhk2k6/web-order-sub000/internal/domains/loyalty/ports"
	promotionsapp "github.com/vuhk2k6/web-order-sub000/internal/domains/promotions/application"
	promotionsdomain "github.com/vuhk2k6/web-order-sub000/internal/domains/promotions/domain"
	promotionsports "github.com/vuhk2k6/web-order-sub000/internal/domains/promotions/ports"
	apierrors "github.com/vuhk2k6/web-order-sub000/internal/shared/errors"
	"github.com/vuhk2k6/web-order-sub000/internal/shared/errors/responder"
)

// problems resolves application errors to RFC 7807 documents. Checkout is
// consulted first so its saga and idempotency failures win over the causes
// they wrap.
var problems = responder.New("",
	checkoutProblem,
	promotionProblem,
	loyaltyProblem,
	customerProblem,
)

func respondProblem(c *gin.Context, problem apierrors.ProblemDetail) {
	problems.Respond(c, problem)
}

// respondServiceError maps err and logs anything that ends up as a 5xx.
func respondServiceError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	problem := problems.Problem(err)
	if problem.Status >= 500 {
		slog.Default().LogAttrs(c.Request.Context(), slog.LevelError, "request failed",
			slog.String("http.route", c.FullPath()),
			slog.Int("http.status", problem.Status),
			slog.String("error", err.Error()))
	}
	problems.Respond(c, problem)
}

func checkoutProblem(err error) (apierrors.ProblemDetail, bool) {
	if sagaErr, ok := checkoutapp.IsSagaError(err); ok {
		return apierrors.ErrInternal.
			WithDetail("the order could not be saved").
			WithExtension("residual", sagaErr.Residual), true
	}
	switch {
	case errors.Is(err, checkoutports.ErrIdempotencyConflict):
		return apierrors.ErrConflict.WithDetail("idempotency key was used with a different order"), true
	case errors.Is(err, checkoutports.ErrIdempotencyInProgress):
		return apierrors.ErrConflict.WithDetail("an order with this idempotency key is still being placed"), true
	case errors.Is(err, checkoutapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, checkoutapp.ErrGateway):
		return apierrors.ErrGateway.WithDetail(err.Error()), true
	case errors.Is(err, checkoutports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail("order not found"), true
	case errors.Is(err, fulfillmentports.ErrTableNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func promotionProblem(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, promotionsdomain.ErrExpired):
		return apierrors.ErrPromotionExpired.WithDetail(err.Error()), true
	case errors.Is(err, promotionsdomain.ErrMinimumNotMet):
		return apierrors.ErrMinimumNotMet.WithDetail(err.Error()), true
	case errors.Is(err, promotionsports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	case errors.Is(err, promotionsapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func loyaltyProblem(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, loyaltydomain.ErrInsufficientBalance):
		return apierrors.ErrInsufficientBalance.WithDetail(err.Error()), true
	case errors.Is(err, loyaltyapp.ErrContention):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	case errors.Is(err, loyaltyports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail("member not found"), true
	case errors.Is(err, loyaltyapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func customerProblem(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, customersports.ErrSessionNotFound):
		return apierrors.ErrUnauthorized.WithDetail(err.Error()), true
	case errors.Is(err, customersapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}
