package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/telemacher/internal/http/middleware"
)

// ErrorResponse is the body of every non-2xx reply from the chat and ops
// engines. Chat clients only ever see it for transport-level problems; a
// question Harris cannot answer still gets a 200 with a text message.
type ErrorResponse struct {
	RequestID string `json:"request_id,omitempty" example:"8f14e45f-ceea-467e-a7d1-2c6f0e1b3a90"`
	// One of the ErrCode* constants.
	Code    string `json:"code" example:"payload_too_large"`
	Message string `json:"message" example:"request body too large"`
}

// fail stops the gin chain with an ErrorResponse. The request ID is read back
// from the response header set by middleware.RequestID. Only 5xx statuses are
// logged here; rejected client input is already visible in the access log.
func fail(c *gin.Context, status int, code, msg string) {
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("chat request failed")
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	})
}

// Fail lets the router's NoRoute handlers answer with the same envelope.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}
