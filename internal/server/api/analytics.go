package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/looplj/datavault/internal/contexts"
	"github.com/looplj/datavault/internal/objects"
	"github.com/looplj/datavault/internal/server/biz"
)

type AnalyticsHandlersParams struct {
	fx.In

	AnalyticsService *biz.AnalyticsService
	ActivityService  *biz.ActivityService
}

func NewAnalyticsHandlers(params AnalyticsHandlersParams) *AnalyticsHandlers {
	return &AnalyticsHandlers{
		AnalyticsService: params.AnalyticsService,
		ActivityService:  params.ActivityService,
	}
}

type AnalyticsHandlers struct {
	AnalyticsService *biz.AnalyticsService
	ActivityService  *biz.ActivityService
}

// AnalyticsRequest is a query with an optional delegated token that takes precedence over the header.
type AnalyticsRequest struct {
	objects.QueryInput

	Token *string `json:"token,omitempty"`
}

// analyticsToken picks the body token, then the header token.
func analyticsToken(c *gin.Context, body *string) *string {
	if body != nil {
		return body
	}

	if token, ok := contexts.GetAnalyticsToken(c.Request.Context()); ok {
		return &token
	}

	return nil
}

func (h *AnalyticsHandlers) GetAnalytics(c *gin.Context) {
	var req AnalyticsRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()

	result, err := h.AnalyticsService.GetAnalytics(ctx, contexts.GetCaller(ctx), analyticsToken(c, req.Token), req.QueryInput)
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *AnalyticsHandlers) DownloadDataset(c *gin.Context) {
	id, ok := datasetIDParam(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()

	entries, err := h.AnalyticsService.DownloadDataset(ctx, contexts.GetCaller(ctx), analyticsToken(c, nil), id)
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}

func (h *AnalyticsHandlers) AuthorizedColumns(c *gin.Context) {
	id, ok := datasetIDParam(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()

	grant, err := h.AnalyticsService.AuthorizedColumns(ctx, contexts.GetCaller(ctx), analyticsToken(c, nil), id)
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, grant)
}

func (h *AnalyticsHandlers) DatasetActivity(c *gin.Context) {
	id, ok := datasetIDParam(c)
	if !ok {
		return
	}

	metrics, found := h.ActivityService.DatasetActivity(c.Request.Context(), id)
	if !found {
		ServiceError(c, biz.ErrDatasetNotFound)
		return
	}

	c.JSON(http.StatusOK, metrics)
}

func (h *AnalyticsHandlers) DatasetQueryActivity(c *gin.Context) {
	id, ok := datasetIDParam(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, h.ActivityService.DatasetQueryActivity(c.Request.Context(), id))
}
