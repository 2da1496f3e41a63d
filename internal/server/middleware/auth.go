package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/looplj/datavault/internal/contexts"
	"github.com/looplj/datavault/internal/objects"
	"github.com/looplj/datavault/internal/server/biz"
)

// WithCaller resolves the direct caller from a Bearer JWT. Requests without one act as the
// anonymous identity; an invalid token is rejected.
func WithCaller(auth *biz.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := ExtractCredential(c.Request, bearerConfig)
		if errors.Is(err, ErrCredentialMissing) {
			c.Request = c.Request.WithContext(contexts.WithCaller(c.Request.Context(), objects.AnonymousIdentity))
			c.Next()

			return
		}

		if err != nil {
			AbortWithError(c, http.StatusUnauthorized, err)
			return
		}

		identity, err := auth.AuthenticateJWT(token)
		if err != nil {
			AbortWithError(c, http.StatusUnauthorized, err)
			return
		}

		c.Request = c.Request.WithContext(contexts.WithCaller(c.Request.Context(), identity))
		c.Next()
	}
}

// WithAnalyticsToken stores the delegated analytics token header, when present, in the request context.
func WithAnalyticsToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := ExtractCredential(c.Request, analyticsTokenConfig)
		if err == nil {
			c.Request = c.Request.WithContext(contexts.WithAnalyticsToken(c.Request.Context(), token))
		}

		c.Next()
	}
}
