// Package services – ChatService
//
// This file implements ChatService, the dispatcher behind the chat endpoint.
// A Join is answered with the fixed greeting; a Message is handed to the
// weather resolver. When a database is configured, every exchange is
// appended to the transcript. Transcript writes are best effort and never
// change the reply.
package services

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/telemacher/internal/domain"
	"github.com/tbourn/telemacher/internal/observability"
)

// ExchangeRepo defines the transcript contract required by ChatService.
type ExchangeRepo interface {
	// CreateExchange appends one action and its reply for a user.
	CreateExchange(ctx context.Context, db *gorm.DB, userID uint64, kind, text, reply string) (*domain.Exchange, error)
}

// Responder answers free text.
type Responder interface {
	Respond(ctx context.Context, text string) string
}

// ChatService turns decoded chat actions into replies.
type ChatService struct {
	Weather Responder

	// DB and Repo are optional; both must be set for transcripts to be kept.
	DB   *gorm.DB
	Repo ExchangeRepo
}

// NewChatService constructs a ChatService. db and r may be nil.
func NewChatService(w Responder, db *gorm.DB, r ExchangeRepo) *ChatService {
	return &ChatService{Weather: w, DB: db, Repo: r}
}

// Reply returns the sentence for action a.
func (s *ChatService) Reply(ctx context.Context, a domain.ChatAction) string {
	ctx, span := observability.Tracer("services").Start(ctx, "Reply",
		trace.WithAttributes(
			attribute.String("action.kind", a.Kind()),
			attribute.Int64("user.id", int64(a.User())),
		),
	)
	defer span.End()

	var text, reply string
	switch act := a.(type) {
	case domain.Join:
		text = act.DisplayName
		reply = Greeting(act.DisplayName)
		replies.WithLabelValues(outcomeGreeting).Inc()
	case domain.Message:
		text = act.Text
		reply = s.Weather.Respond(ctx, act.Text)
	}

	s.record(ctx, a, text, reply)
	return reply
}

func (s *ChatService) record(ctx context.Context, a domain.ChatAction, text, reply string) {
	if s.DB == nil || s.Repo == nil {
		return
	}
	if _, err := s.Repo.CreateExchange(ctx, s.DB, a.User(), a.Kind(), text, reply); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Uint64("user_id", a.User()).Msg("transcript write failed")
	}
}
