package nlu

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbourn/telemacher/internal/upstream"
)

type fakeModel struct {
	reply  string
	err    error
	prompt string
}

func (f *fakeModel) GenerateContent(_ context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	if len(parts) > 0 {
		if t, ok := parts[0].(genai.Text); ok {
			f.prompt = string(t)
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text(f.reply)}},
		}},
	}, nil
}

func newFakeGemini(m *fakeModel) *GeminiParser {
	return &GeminiParser{
		model: m,
		now:   func() time.Time { return time.Date(2030, 1, 1, 9, 30, 0, 0, time.UTC) },
	}
}

func TestGeminiParser_Parse(t *testing.T) {
	m := &fakeModel{reply: snipsResult}
	r, err := newFakeGemini(m).Parse(context.Background(), "will it rain tomorrow in Boston", "en_US")
	require.NoError(t, err)

	require.NotNil(t, r.Intent)
	assert.Equal(t, IntentForecastCondition, r.Intent.Name)
	assert.Len(t, r.Slots, 3)
	assert.True(t, strings.Contains(m.prompt, "Current time: 2030-01-01 09:30:00 +00:00"), m.prompt)
	assert.True(t, strings.Contains(m.prompt, "Locale: en_US"))
}

func TestGeminiParser_FencedAndEmptyIntent(t *testing.T) {
	m := &fakeModel{reply: "```json\n{\"intent\":{\"intentName\":\"\",\"probability\":0}}\n```"}
	r, err := newFakeGemini(m).Parse(context.Background(), "hello", "")
	require.NoError(t, err)
	assert.Nil(t, r.Intent)
	assert.Equal(t, "hello", r.Input)
}

func TestGeminiParser_Failures(t *testing.T) {
	_, err := newFakeGemini(&fakeModel{err: errors.New("quota")}).Parse(context.Background(), "x", "")
	var ue *upstream.Error
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "nlu", ue.Service)

	_, err = newFakeGemini(&fakeModel{reply: ""}).Parse(context.Background(), "x", "")
	assert.ErrorIs(t, err, upstream.ErrMalformed)

	_, err = newFakeGemini(&fakeModel{reply: "sunny!"}).Parse(context.Background(), "x", "")
	assert.ErrorIs(t, err, upstream.ErrDecode)
}

func TestNewGeminiParser_RequiresKey(t *testing.T) {
	_, err := NewGeminiParser(context.Background(), "", "")
	assert.Error(t, err)
	assert.NoError(t, (&GeminiParser{}).Close())
}
