package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextRequestIDKey stores the request id inside the gin context.
const ContextRequestIDKey = "request_id"

// RequestIDHeader is echoed back so clients and logs can correlate.
const RequestIDHeader = "X-Request-ID"

// RequestID assigns each request an id, honoring one supplied by an
// upstream proxy. The access log and token-rejection audit entries include
// it, which is what makes rejected-token events attributable.
func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		ctx.Set(ContextRequestIDKey, id)
		ctx.Header(RequestIDHeader, id)
		ctx.Next()
	}
}

// GetRequestID returns the id assigned by RequestID, or "".
func GetRequestID(ctx *gin.Context) string {
	return ctx.GetString(ContextRequestIDKey)
}
