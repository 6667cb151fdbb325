package middleware

import "github.com/gin-gonic/gin"

// EchoOrigin allows any browser origin to read the chat reply.
//
// Access-Control-Allow-Origin: * is sent only when the request carries an
// Origin header, so non-browser clients see no CORS headers at all. The
// correlation ID is exposed alongside it.
func EchoOrigin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Origin") != "" {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", "*")
			h.Set("Access-Control-Expose-Headers", requestIDHeader)
			h.Add("Vary", "Origin")
		}
		c.Next()
	}
}
