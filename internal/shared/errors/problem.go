// Package errors provides RFC 7807 Problem Details for the ordering API.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ContentTypeProblemJSON is the media type for Problem Details responses.
const ContentTypeProblemJSON = "application/problem+json"

// ProblemDetail represents an RFC 7807 Problem Details response.
// See: https://www.rfc-editor.org/rfc/rfc7807
type ProblemDetail struct {
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	Status     int            `json:"status"`
	Detail     string         `json:"detail,omitempty"`
	Instance   string         `json:"instance,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// Error implements the error interface.
func (p ProblemDetail) Error() string {
	if p.Detail != "" {
		return fmt.Sprintf("%s: %s", p.Title, p.Detail)
	}
	return p.Title
}

// WithDetail returns a copy with the given detail message.
func (p ProblemDetail) WithDetail(detail string) ProblemDetail {
	p.Detail = detail
	return p
}

// WithInstance returns a copy with the given instance URI.
func (p ProblemDetail) WithInstance(instance string) ProblemDetail {
	p.Instance = instance
	return p
}

// WithExtension returns a copy with an additional extension property.
// The extension map is copied so templates are never mutated.
func (p ProblemDetail) WithExtension(key string, value any) ProblemDetail {
	ext := make(map[string]any, len(p.Extensions)+1)
	for k, v := range p.Extensions {
		ext[k] = v
	}
	ext[key] = value
	p.Extensions = ext
	return p
}

// Code returns the machine readable error code carried in the extensions.
func (p ProblemDetail) Code() string {
	if code, ok := p.Extensions["code"].(string); ok {
		return code
	}
	return ""
}

// Problem type URI references.
const (
	TypeValidation          = "/problems/validation-error"
	TypeNotFound            = "/problems/not-found"
	TypeConflict            = "/problems/conflict"
	TypeInsufficientBalance = "/problems/insufficient-balance"
	TypePromotionExpired    = "/problems/promotion-expired"
	TypeMinimumNotMet       = "/problems/minimum-not-met"
	TypeGateway             = "/problems/gateway-error"
	TypeInternal            = "/problems/internal-error"
	TypeUnauthorized        = "/problems/unauthorized"
	TypeBadRequest          = "/problems/bad-request"
)

// Machine readable codes placed in the "code" extension.
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeNotFound            = "NOT_FOUND"
	CodeConflict            = "CONFLICT"
	CodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	CodePromotionExpired    = "PROMOTION_EXPIRED"
	CodeMinimumNotMet       = "MINIMUM_NOT_MET"
	CodeGateway             = "GATEWAY_ERROR"
	CodePersistence         = "PERSISTENCE_ERROR"
	CodeUnauthorized        = "UNAUTHORIZED"
)

var (
	ErrNotFound = ProblemDetail{
		Type:       TypeNotFound,
		Title:      "Resource Not Found",
		Status:     http.StatusNotFound,
		Extensions: map[string]any{"code": CodeNotFound},
	}

	ErrValidation = ProblemDetail{
		Type:       TypeValidation,
		Title:      "Validation Error",
		Status:     http.StatusBadRequest,
		Extensions: map[string]any{"code": CodeValidation},
	}

	ErrBadRequest = ProblemDetail{
		Type:       TypeBadRequest,
		Title:      "Bad Request",
		Status:     http.StatusBadRequest,
		Extensions: map[string]any{"code": CodeValidation},
	}

	ErrConflict = ProblemDetail{
		Type:       TypeConflict,
		Title:      "Conflict",
		Status:     http.StatusConflict,
		Extensions: map[string]any{"code": CodeConflict},
	}

	// ErrInsufficientBalance is returned when a redemption exceeds the point balance.
	ErrInsufficientBalance = ProblemDetail{
		Type:       TypeInsufficientBalance,
		Title:      "Insufficient Point Balance",
		Status:     http.StatusConflict,
		Extensions: map[string]any{"code": CodeInsufficientBalance},
	}

	ErrPromotionExpired = ProblemDetail{
		Type:       TypePromotionExpired,
		Title:      "Promotion Expired",
		Status:     http.StatusUnprocessableEntity,
		Extensions: map[string]any{"code": CodePromotionExpired},
	}

	ErrMinimumNotMet = ProblemDetail{
		Type:       TypeMinimumNotMet,
		Title:      "Minimum Order Amount Not Met",
		Status:     http.StatusUnprocessableEntity,
		Extensions: map[string]any{"code": CodeMinimumNotMet},
	}

	// ErrGateway signals that the payment gateway could not be reached.
	// The order itself has been created when this is returned.
	ErrGateway = ProblemDetail{
		Type:       TypeGateway,
		Title:      "Payment Gateway Error",
		Status:     http.StatusBadGateway,
		Extensions: map[string]any{"code": CodeGateway},
	}

	ErrInternal = ProblemDetail{
		Type:       TypeInternal,
		Title:      "Internal Server Error",
		Status:     http.StatusInternalServerError,
		Extensions: map[string]any{"code": CodePersistence},
	}

	ErrUnauthorized = ProblemDetail{
		Type:       TypeUnauthorized,
		Title:      "Unauthorized",
		Status:     http.StatusUnauthorized,
		Extensions: map[string]any{"code": CodeUnauthorized},
	}
)

// NewValidationProblem creates a validation error with field-level details.
func NewValidationProblem(fieldErrors map[string]string) ProblemDetail {
	return ErrValidation.WithExtension("fields", fieldErrors)
}

// NewNotFoundProblem creates a not found error for a specific resource.
func NewNotFoundProblem(resourceType string, identifier any) ProblemDetail {
	return ErrNotFound.
		WithDetail(fmt.Sprintf("%s with identifier '%v' not found", resourceType, identifier)).
		WithExtension("resourceType", resourceType).
		WithExtension("identifier", identifier)
}

// HTTPStatusFromError extracts HTTP status from an error if possible.
func HTTPStatusFromError(err error) int {
	var problem ProblemDetail
	if errors.As(err, &problem) {
		return problem.Status
	}
	return http.StatusInternalServerError
}
