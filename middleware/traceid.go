package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TraceIDKey is the gin context key holding the request's trace ID.
const TraceIDKey = "trace_id"

// TraceIDHeader carries the trace ID on requests and responses.
const TraceIDHeader = "X-Trace-ID"

// TraceID tags every request with a trace ID and echoes it on the response.
// A caller-supplied header is honored only when it parses as a UUID, so log
// correlation cannot be polluted by arbitrary client strings.
func TraceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(TraceIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(TraceIDKey, id)
		c.Header(TraceIDHeader, id)
		c.Next()
	}
}

// GetTraceID returns the trace ID set by TraceID, or "" outside of it.
func GetTraceID(c *gin.Context) string {
	return c.GetString(TraceIDKey)
}
