package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDKey is the context key for the request ID
	RequestIDKey = "request_id"
	// RequestIDHeader is the HTTP header name for the request ID
	RequestIDHeader = "X-Request-ID"
	// maxRequestIDLength bounds request IDs accepted from upstream proxies.
	maxRequestIDLength = 128
)

// RequestID tags every request with an ID, reusing the upstream X-Request-ID
// when it is present and reasonably sized, and echoes it in the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Reuse the ID set by an upstream proxy, if any
		requestID := c.GetHeader(RequestIDHeader)

		// Generate a fresh UUID when missing or oversized
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = uuid.NewString()
		}

		// Store in context for the logger, recovery and error handlers
		c.Set(RequestIDKey, requestID)

		// Echo back to the client
		c.Writer.Header().Set(RequestIDHeader, requestID)

		c.Next()
	}
}

// GetRequestID retrieves the request ID from the Gin context.
// Returns an empty string if not found.
func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}
