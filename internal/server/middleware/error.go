package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/looplj/datavault/internal/objects"
	"github.com/looplj/datavault/internal/server/biz"
)

// AbortWithError aborts the request with a JSON error response and adds the error to gin context for access logging.
func AbortWithError(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, objects.ErrorResponse{
		Error: objects.Error{
			Type:    http.StatusText(status),
			Message: err.Error(),
		},
	})
}

// StatusFor maps service errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, biz.ErrAnonymousUnauthorized),
		errors.Is(err, biz.ErrTokenNotFound),
		errors.Is(err, biz.ErrTokenExpired),
		errors.Is(err, biz.ErrInvalidJWT):
		return http.StatusUnauthorized
	case errors.Is(err, biz.ErrAttributeAccessDenied),
		errors.Is(err, biz.ErrNoEntitlement),
		errors.Is(err, biz.ErrNotOwner),
		errors.Is(err, biz.ErrNotProducer):
		return http.StatusForbidden
	case errors.Is(err, biz.ErrDatasetNotFound):
		return http.StatusNotFound
	case errors.Is(err, biz.ErrInvalidDataset):
		return http.StatusBadRequest
	case errors.Is(err, biz.ErrSchemaImmutable):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// AbortWithServiceError aborts with the status StatusFor picks for err.
func AbortWithServiceError(c *gin.Context, err error) {
	AbortWithError(c, StatusFor(err), err)
}
