package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/stwalsh4118/procur/internal/logger"
)

// Recovery turns a panic in a handler into a logged 500 response. Contract
// violations inside the view engine surface here.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				// Capture the stack before anything else runs
				stack := debug.Stack()

				// Request ID is empty when RequestID did not run first
				requestID := GetRequestID(c)

				// Prefer the request-scoped logger, fall back to the base one
				requestLogger := GetLogger(c)
				if requestLogger == nil {
					requestLogger = log
				}

				// Log the panic with the route and stack
				requestLogger.Error("Panic recovered", fmt.Errorf("panic: %v", err), map[string]interface{}{
					"request_id": requestID,
					"method":     c.Request.Method,
					"path":       c.Request.URL.Path,
					"stack":      string(stack),
				})

				// Respond with the standard error envelope and stop the chain
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": gin.H{
						"code":       "INTERNAL_SERVER_ERROR",
						"message":    "An unexpected error occurred",
						"request_id": requestID,
					},
				})
			}
		}()

		c.Next()
	}
}
