package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"

	"github.com/looplj/datavault/internal/objects"
	"github.com/looplj/datavault/internal/server/middleware"
)

var (
	ErrInvalidRequest   = errors.New("invalid request format")
	ErrInvalidDatasetID = errors.New("invalid dataset id")
)

// JSONError returns a JSON error response and adds the error to gin context for access logging.
func JSONError(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	c.JSON(status, objects.ErrorResponse{
		Error: objects.Error{
			Type:    http.StatusText(status),
			Message: err.Error(),
		},
	})
}

// ServiceError writes err with the status mapped from the service error kind.
func ServiceError(c *gin.Context, err error) {
	JSONError(c, middleware.StatusFor(err), err)
}

func datasetIDParam(c *gin.Context) (objects.DatasetID, bool) {
	id, err := cast.ToUint32E(c.Param("id"))
	if err != nil || c.Param("id") == "" {
		JSONError(c, http.StatusBadRequest, ErrInvalidDatasetID)
		return 0, false
	}

	return objects.DatasetID(id), true
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		_ = c.Error(err)
		JSONError(c, http.StatusBadRequest, ErrInvalidRequest)

		return false
	}

	return true
}
