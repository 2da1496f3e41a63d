package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/looplj/datavault/internal/contexts"
	"github.com/looplj/datavault/internal/objects"
	"github.com/looplj/datavault/internal/server/biz"
)

type EntryHandlersParams struct {
	fx.In

	EntryService     *biz.EntryService
	AnalyticsService *biz.AnalyticsService
}

func NewEntryHandlers(params EntryHandlersParams) *EntryHandlers {
	return &EntryHandlers{
		EntryService:     params.EntryService,
		AnalyticsService: params.AnalyticsService,
	}
}

type EntryHandlers struct {
	EntryService     *biz.EntryService
	AnalyticsService *biz.AnalyticsService
}

type PutEntriesRequest struct {
	Entries []objects.DatasetEntryInput `json:"entries" binding:"required"`
}

type PutEntriesResponse struct {
	Stored int `json:"stored"`
}

type RemovedResponse struct {
	Removed int `json:"removed"`
}

func (h *EntryHandlers) PutEntries(c *gin.Context) {
	id, ok := datasetIDParam(c)
	if !ok {
		return
	}

	var req PutEntriesRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()

	n, err := h.EntryService.PutEntries(ctx, contexts.GetCaller(ctx), id, req.Entries)
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, PutEntriesResponse{Stored: n})
}

func (h *EntryHandlers) DeleteMyEntry(c *gin.Context) {
	id, ok := datasetIDParam(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()

	n, err := h.EntryService.DeleteMyEntry(ctx, contexts.GetCaller(ctx), id)
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, RemovedResponse{Removed: n})
}

// DeleteAllMyEntries is the GDPR erasure endpoint.
func (h *EntryHandlers) DeleteAllMyEntries(c *gin.Context) {
	ctx := c.Request.Context()

	n, err := h.EntryService.DeleteAllMyEntries(ctx, contexts.GetCaller(ctx))
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, RemovedResponse{Removed: n})
}

func (h *EntryHandlers) MyEntries(c *gin.Context) {
	id, ok := datasetIDParam(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()

	entries, err := h.EntryService.MyEntries(ctx, contexts.GetCaller(ctx), id)
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}

func (h *EntryHandlers) EntryCounts(c *gin.Context) {
	var req DatasetIDsRequest
	if !bindJSON(c, &req) {
		return
	}

	c.JSON(http.StatusOK, h.EntryService.EntryCounts(c.Request.Context(), req.IDs))
}

func (h *EntryHandlers) ProducerStats(c *gin.Context) {
	id, ok := datasetIDParam(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, h.EntryService.ProducerStats(c.Request.Context(), id))
}

func (h *EntryHandlers) SampleDataset(c *gin.Context) {
	id, ok := datasetIDParam(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, h.AnalyticsService.SampleDataset(c.Request.Context(), id))
}
