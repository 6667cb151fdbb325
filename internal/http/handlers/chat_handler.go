// Chat HTTP handler.
//
// This file exposes the single public endpoint:
//   - POST /chat/messages   (join or message, multipart/form-data)
//
// The handler is transport-thin: it reads the body, decodes a chat action,
// asks the chat service for the reply sentence and wraps it in the reply
// envelope. Pipeline failures never surface here; the service always answers.
package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/telemacher/internal/domain"
	"github.com/tbourn/telemacher/internal/http/middleware"
)

// ChatService produces the reply sentence for a decoded action.
//
// Implementations must be safe for concurrent use and must honor the
// provided context for cancellation.
type ChatService interface {
	Reply(ctx context.Context, a domain.ChatAction) string
}

// Handlers groups the HTTP endpoints.
type Handlers struct {
	chatSvc ChatService
}

// New constructs and returns a Handlers instance bound to the given service.
func New(chatSvc ChatService) *Handlers {
	return &Handlers{chatSvc: chatSvc}
}

//
// DTOs
//

// ReplyMessage is one element of a reply.
type ReplyMessage struct {
	Type string `json:"type" example:"text"`
	Text string `json:"text" example:"Rain is expected."`
}

// ChatReply is the response body of POST /chat/messages. It always carries
// exactly one message.
type ChatReply struct {
	Messages []ReplyMessage `json:"messages"`
}

func textReply(s string) ChatReply {
	return ChatReply{Messages: []ReplyMessage{{Type: "text", Text: s}}}
}

//
// Handlers
//

// PostChatMessage godoc
// @ID          postChatMessage
// @Summary     Send a chat action and get Harris's reply
// @Description action=join greets the user by name. action=message answers a weather question.
// @Tags        Chat
// @Accept      multipart/form-data
// @Produce     json
//
// @Param       action   formData  string  true   "join or message"  Enums(join, message)
// @Param       user_id  formData  integer true   "Non-negative user id"  minimum(0)
// @Param       name     formData  string  false  "Display name (required for join)"
// @Param       text     formData  string  false  "Message text (required for message)"
//
// @Success     200  {object}  handlers.ChatReply      "Reply"
// @Failure     400  {object}  handlers.ErrorResponse  "Malformed or incomplete body"
// @Failure     413  {object}  handlers.ErrorResponse  "Body too large"
// @Router      /chat/messages [post]
func (h *Handlers) PostChatMessage(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			fail(c, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, "request body too large")
			return
		}
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "could not read request body")
		return
	}

	action, err := DecodeChatAction(c.Request.Header, body)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}

	lg := middleware.LoggerFrom(c)
	lg.Debug().Str("action", action.Kind()).Uint64("chat_user", action.User()).Msg("chat action decoded")

	ok(c, http.StatusOK, textReply(h.chatSvc.Reply(c.Request.Context(), action)))
}
