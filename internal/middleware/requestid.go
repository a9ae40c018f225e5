package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// HeaderXRequestID carries the correlation id between client and server.
	HeaderXRequestID = "X-Request-ID"

	// ContextRequestID is the gin context key the request logger reads.
	ContextRequestID = "request_id"
)

// RequestID propagates the caller's correlation id, minting a fresh
// one when the request arrives without it. The id is stored on the
// context for log correlation and echoed back in the response header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderXRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}

		c.Set(ContextRequestID, rid)
		c.Header(HeaderXRequestID, rid)

		c.Next()
	}
}
