package services

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Fixed sentences.
const (
	greetingFormat = "Hello, %s, this is Harris. I'm in right now, so you can talk to me personally."

	// Unsure is the reply when the message is not an answerable weather question.
	Unsure = "Hmm. That is fascinating. Ask me about the weather where you live."
	// Down is the reply when an upstream service failed.
	Down = "Something went terribly wrong deep inside my logic. Put me on the floor and step back."
)

// Greeting returns the fixed welcome for a joining user.
func Greeting(name string) string {
	return fmt.Sprintf(greetingFormat, name)
}

const (
	outcomeGreeting = "greeting"
	outcomeAnswer   = "answer"
	outcomeUnsure   = "unsure"
	outcomeDown     = "down"
)

var replies = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "telemacher_replies_total",
		Help: "Replies sent, by outcome (greeting, answer, unsure, down).",
	},
	[]string{"outcome"},
)

func init() {
	prometheus.MustRegister(replies)
}

// fallback maps a resolution error to its sentence and outcome label.
func fallback(err error) (string, string) {
	switch {
	case errors.Is(err, ErrNLU), errors.Is(err, ErrGeocode), errors.Is(err, ErrForecast):
		return Down, outcomeDown
	default:
		return Unsure, outcomeUnsure
	}
}
