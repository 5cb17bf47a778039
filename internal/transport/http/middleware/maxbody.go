package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "go-gin-shop-api/internal/transport/http/response"
)

// MaxBodyBytes caps request bodies at n bytes. Declared lengths over the cap
// are rejected up front; chunked bodies fail while being read.
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > n {
			resp.Abort(c, http.StatusRequestEntityTooLarge, "Request body too large.", "")
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}
