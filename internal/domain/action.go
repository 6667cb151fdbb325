// Package domain defines the value types that flow through the weather
// assistant pipeline (chat actions, resolved queries, coordinates, forecasts)
// together with the GORM persistence models used by the repository layer.
//
// Pipeline values are immutable once built and flow strictly downstream:
// a ChatAction is decoded per request, turned into a ResolvedQuery, then into
// a Coordinate and a Forecast, and finally into one reply sentence.
package domain

// ChatAction is a decoded chat request. It is either a Join or a Message.
//
// The interface is closed: only types in this package implement it, so a type
// switch over Join and Message is exhaustive.
type ChatAction interface {
	// User returns the numeric identifier of the acting user.
	User() uint64
	// Kind returns the wire name of the action ("join" or "message").
	Kind() string

	isChatAction()
}

// Action names as they appear in the multipart "action" field.
const (
	ActionJoin    = "join"
	ActionMessage = "message"
)

// Join is emitted when a user enters the conversation.
type Join struct {
	UserID      uint64
	DisplayName string
}

// Message carries free text typed by a user.
type Message struct {
	UserID uint64
	Text   string
}

func (j Join) User() uint64    { return j.UserID }
func (j Join) Kind() string    { return ActionJoin }
func (Join) isChatAction()     {}
func (m Message) User() uint64 { return m.UserID }
func (m Message) Kind() string { return ActionMessage }
func (Message) isChatAction()  {}
