package nlu

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/tbourn/telemacher/internal/upstream"
)

// DefaultGeminiModel is used when no model name is configured.
const DefaultGeminiModel = "gemini-2.0-flash"

const systemPrompt = `You are the NLU engine of a weather assistant. Classify the user message and
extract slots. Reply with ONE JSON object and nothing else, shaped exactly like:

{"input": "<message>",
 "intent": {"intentName": "<name>", "probability": <0..1>} | null,
 "slots": [{"rawValue": "<span>", "entity": "<entity>", "slotName": "<slot>", "value": <value>}]}

Intents: searchWeatherForecast (general weather question),
searchWeatherForecastCondition (question about a specific condition such as rain, snow, wind,
humidity, sun, fog). Use null when the message is not about weather.

Slots:
- forecast_locality, forecast_region, forecast_country, forecast_geographical_poi:
  value {"kind": "Custom", "value": "<place as written>"}
- forecast_condition_name: value {"kind": "Custom", "value": "<condition word, lower case>"}
- forecast_start_datetime: value {"kind": "InstantTime", "value": "YYYY-MM-DD hh:mm:ss +hh:mm",
  "grain": "Second|Minute|Hour|Day|Week|Month|Quarter|Year", "precision": "Exact"}
  or {"kind": "TimeInterval", "from": "<same format>", "to": "<same format>"}.

Omit slots that are not present. The current time is given with every message.`

type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiParser asks a Gemini model to emit the Snips result shape.
type GeminiParser struct {
	client *genai.Client
	model  generator
	now    func() time.Time
}

// NewGeminiParser opens a Gemini client for model (DefaultGeminiModel when
// empty). Close releases it.
func NewGeminiParser(ctx context.Context, apiKey, model string) (*GeminiParser, error) {
	if apiKey == "" {
		return nil, errors.New("nlu: gemini api key is empty")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("nlu: create gemini client: %w", err)
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	m := client.GenerativeModel(model)
	m.SetTemperature(0)
	m.SetMaxOutputTokens(1024)
	m.ResponseMIMEType = "application/json"
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}

	return &GeminiParser{client: client, model: m, now: time.Now}, nil
}

func (g *GeminiParser) Parse(ctx context.Context, text, locale string) (Result, error) {
	prompt := fmt.Sprintf("Locale: %s\nCurrent time: %s\nMessage: %s",
		locale, g.now().Format(TimeLayout), text)

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return Result{}, &upstream.Error{Service: "nlu", Err: err}
	}
	raw := extractText(resp)
	if raw == "" {
		return Result{}, upstream.Malformed("nlu", "empty gemini response")
	}

	var out Result
	if err := json.Unmarshal([]byte(stripFence(raw)), &out); err != nil {
		return Result{}, &upstream.Error{Service: "nlu", Err: fmt.Errorf("%w: %v", upstream.ErrDecode, err)}
	}
	if out.Intent != nil && out.Intent.Name == "" {
		out.Intent = nil
	}
	if out.Input == "" {
		out.Input = text
	}
	return out, nil
}

// Close releases the underlying client.
func (g *GeminiParser) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		break
	}
	return strings.TrimSpace(b.String())
}

// stripFence removes a ```json fence some models add despite JSON mode.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
