package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// LimitBody caps the request body at n bytes. Reads past the cap fail with
// *http.MaxBytesError, which handlers translate into 413. A request whose
// declared Content-Length already exceeds n is rejected up front.
func LimitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if n <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > n {
			abortJSON(c, http.StatusRequestEntityTooLarge, "", "payload_too_large", "request body too large")
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}
