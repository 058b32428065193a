// Package responder writes Problem Details documents from gin handlers.
package responder

import (
	"errors"

	"github.com/gin-gonic/gin"

	apierrors "github.com/vuhk2k6/web-order-sub000/internal/shared/errors"
)

// ErrorMapper maps domain/application errors to a ProblemDetail.
type ErrorMapper func(err error) (apierrors.ProblemDetail, bool)

// Responder consults its mappers in order before falling back to a generic
// internal error.
type Responder struct {
	// BaseURI is prepended to problem type URIs if they are relative.
	BaseURI string
	mappers []ErrorMapper
}

// New creates a responder with optional base URI and error mappers.
func New(baseURI string, mappers ...ErrorMapper) *Responder {
	return &Responder{BaseURI: baseURI, mappers: mappers}
}

// AddMapper appends an error mapper to the chain.
func (r *Responder) AddMapper(mapper ErrorMapper) {
	r.mappers = append(r.mappers, mapper)
}

// Respond sends a ProblemDetail response with proper content type.
func (r *Responder) Respond(c *gin.Context, problem apierrors.ProblemDetail) {
	if r.BaseURI != "" && len(problem.Type) > 0 && problem.Type[0] == '/' {
		problem.Type = r.BaseURI + problem.Type
	}
	if problem.Instance == "" {
		problem.Instance = c.Request.URL.Path
	}
	c.Header("Content-Type", apierrors.ContentTypeProblemJSON)
	c.JSON(problem.Status, problem)
}

// RespondError converts err to a ProblemDetail and responds. Unmapped errors
// become a 500 with a generic detail; the cause is never echoed to clients.
func (r *Responder) RespondError(c *gin.Context, err error) {
	r.Respond(c, r.Problem(err))
}

// Problem resolves the ProblemDetail for err without writing a response.
func (r *Responder) Problem(err error) apierrors.ProblemDetail {
	var problem apierrors.ProblemDetail
	if errors.As(err, &problem) {
		return problem
	}
	for _, mapper := range r.mappers {
		if p, ok := mapper(err); ok {
			return p
		}
	}
	return apierrors.ErrInternal.WithDetail("the request could not be completed")
}

// BadRequest sends a 400 problem response.
func (r *Responder) BadRequest(c *gin.Context, detail string) {
	r.Respond(c, apierrors.ErrBadRequest.WithDetail(detail))
}

// ValidationFailed sends a 400 problem response with field errors.
func (r *Responder) ValidationFailed(c *gin.Context, fieldErrors map[string]string) {
	r.Respond(c, apierrors.NewValidationProblem(fieldErrors))
}
