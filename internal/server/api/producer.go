package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/looplj/datavault/internal/contexts"
	"github.com/looplj/datavault/internal/objects"
	"github.com/looplj/datavault/internal/server/biz"
)

var ErrInvalidUpdateMode = errors.New("mode must be add or remove")

type ProducerHandlersParams struct {
	fx.In

	ProducerService *biz.ProducerService
}

func NewProducerHandlers(params ProducerHandlersParams) *ProducerHandlers {
	return &ProducerHandlers{
		ProducerService: params.ProducerService,
	}
}

type ProducerHandlers struct {
	ProducerService *biz.ProducerService
}

type UpdateProducerRequest struct {
	User objects.Identity   `json:"user" binding:"required"`
	Mode objects.UpdateMode `json:"mode" binding:"required"`
}

type IsProducerResponse struct {
	IsProducer bool `json:"is_producer"`
}

func (h *ProducerHandlers) Producers(c *gin.Context) {
	id, ok := datasetIDParam(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, h.ProducerService.Producers(c.Request.Context(), id))
}

func (h *ProducerHandlers) IsProducer(c *gin.Context) {
	id, ok := datasetIDParam(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	c.JSON(http.StatusOK, IsProducerResponse{
		IsProducer: h.ProducerService.IsProducer(ctx, id, contexts.GetCaller(ctx)),
	})
}

func (h *ProducerHandlers) UpdateProducerList(c *gin.Context) {
	id, ok := datasetIDParam(c)
	if !ok {
		return
	}

	var req UpdateProducerRequest
	if !bindJSON(c, &req) {
		return
	}

	if req.Mode != objects.UpdateModeAdd && req.Mode != objects.UpdateModeRemove {
		JSONError(c, http.StatusBadRequest, ErrInvalidUpdateMode)
		return
	}

	ctx := c.Request.Context()
	if err := h.ProducerService.UpdateProducerList(ctx, contexts.GetCaller(ctx), id, req.User, req.Mode); err != nil {
		ServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ProducerHandlers) MyProducerDatasets(c *gin.Context) {
	ctx := c.Request.Context()
	c.JSON(http.StatusOK, h.ProducerService.DatasetsWhereProducer(ctx, contexts.GetCaller(ctx)))
}
