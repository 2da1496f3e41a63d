package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/looplj/datavault/internal/contexts"
	"github.com/looplj/datavault/internal/objects"
	"github.com/looplj/datavault/internal/server/biz"
)

type TokenHandlersParams struct {
	fx.In

	AuthService *biz.AuthService
}

func NewTokenHandlers(params TokenHandlersParams) *TokenHandlers {
	return &TokenHandlers{
		AuthService: params.AuthService,
	}
}

type TokenHandlers struct {
	AuthService *biz.AuthService
}

type RegisterTokenRequest struct {
	Token string `json:"token"`
}

type RegisterTokenResponse struct {
	Token    string    `json:"token"`
	IssuedAt time.Time `json:"issued_at"`
	ExpireAt time.Time `json:"expire_at"`
}

type WhoAmIResponse struct {
	Identity  objects.Identity `json:"identity"`
	Anonymous bool             `json:"anonymous"`
}

// RegisterToken binds a delegated analytics token to the caller. An empty body generates one.
func (h *TokenHandlers) RegisterToken(c *gin.Context) {
	var req RegisterTokenRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()

	token, err := h.AuthService.RegisterToken(ctx, contexts.GetCaller(ctx), req.Token)
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, RegisterTokenResponse{
		Token:    token.Token,
		IssuedAt: token.IssuedAt,
		ExpireAt: token.ExpireAt,
	})
}

func (h *TokenHandlers) WhoAmI(c *gin.Context) {
	caller := contexts.GetCaller(c.Request.Context())
	c.JSON(http.StatusOK, WhoAmIResponse{
		Identity:  caller,
		Anonymous: caller.IsAnonymous(),
	})
}
