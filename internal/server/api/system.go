package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/looplj/datavault/internal/build"
)

type SystemHandlers struct{}

func NewSystemHandlers() *SystemHandlers {
	return &SystemHandlers{}
}

type HealthResponse struct {
	Status string     `json:"status"`
	Build  build.Info `json:"build"`
}

// Health is an unauthenticated liveness probe.
func (h *SystemHandlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "healthy",
		Build:  build.GetBuildInfo(),
	})
}
