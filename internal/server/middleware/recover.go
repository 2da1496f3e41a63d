package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/looplj/datavault/internal/log"
)

// Recovery turns a panic in any later handler into a 500 response and logs the stack.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error(c.Request.Context(), "panic recovered",
					log.String("path", c.Request.URL.Path),
					log.Any("panic", r),
					log.String("stack", string(debug.Stack())))

				AbortWithError(c, http.StatusInternalServerError, fmt.Errorf("internal server error"))
			}
		}()

		c.Next()
	}
}
