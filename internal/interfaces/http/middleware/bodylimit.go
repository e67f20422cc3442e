package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/seedledger/backend/internal/interfaces/http/dto"
)

// BodyLimit returns a middleware that rejects request bodies above
// maxBytes. Declared lengths are refused up front; chunked uploads are
// cut off by a MaxBytesReader once they cross the limit mid-read.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponse("REQUEST_TOO_LARGE", "Request body exceeds maximum allowed size"))
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
