package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/looplj/datavault/internal/contexts"
	"github.com/looplj/datavault/internal/objects"
	"github.com/looplj/datavault/internal/server/biz"
)

type DatasetHandlersParams struct {
	fx.In

	DatasetService *biz.DatasetService
}

func NewDatasetHandlers(params DatasetHandlersParams) *DatasetHandlers {
	return &DatasetHandlers{
		DatasetService: params.DatasetService,
	}
}

type DatasetHandlers struct {
	DatasetService *biz.DatasetService
}

type DatasetIDsRequest struct {
	IDs []objects.DatasetID `json:"ids"`
}

func (h *DatasetHandlers) CreateDataset(c *gin.Context) {
	var req objects.DatasetCreateRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()

	ds, err := h.DatasetService.CreateDataset(ctx, contexts.GetCaller(ctx), req)
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ds)
}

func (h *DatasetHandlers) UpdateDataset(c *gin.Context) {
	id, ok := datasetIDParam(c)
	if !ok {
		return
	}

	var req objects.DatasetUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()

	ds, err := h.DatasetService.UpdateDataset(ctx, contexts.GetCaller(ctx), id, req)
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ds)
}

func (h *DatasetHandlers) DeleteDataset(c *gin.Context) {
	id, ok := datasetIDParam(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := h.DatasetService.DeleteDataset(ctx, contexts.GetCaller(ctx), id); err != nil {
		ServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *DatasetHandlers) GetDataset(c *gin.Context) {
	id, ok := datasetIDParam(c)
	if !ok {
		return
	}

	ds, err := h.DatasetService.GetDataset(c.Request.Context(), id)
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ds)
}

// GetManyDatasets answers positionally; unknown ids come back as null.
func (h *DatasetHandlers) GetManyDatasets(c *gin.Context) {
	var req DatasetIDsRequest
	if !bindJSON(c, &req) {
		return
	}

	c.JSON(http.StatusOK, h.DatasetService.GetManyDatasets(c.Request.Context(), req.IDs))
}

func (h *DatasetHandlers) ListDatasets(c *gin.Context) {
	c.JSON(http.StatusOK, h.DatasetService.ListDatasets(c.Request.Context()))
}

func (h *DatasetHandlers) SearchDatasets(c *gin.Context) {
	c.JSON(http.StatusOK, h.DatasetService.SearchDatasets(c.Request.Context(), c.Query("q")))
}

func (h *DatasetHandlers) OwnedDatasets(c *gin.Context) {
	owner := objects.Identity(c.Param("identity"))
	c.JSON(http.StatusOK, h.DatasetService.OwnedDatasets(c.Request.Context(), owner))
}

func (h *DatasetHandlers) Ownerships(c *gin.Context) {
	c.JSON(http.StatusOK, h.DatasetService.Ownerships(c.Request.Context()))
}
