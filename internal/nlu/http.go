package nlu

import (
	"context"

	"github.com/tbourn/telemacher/internal/upstream"
)

// HTTPParser talks to a Snips-compatible NLU server that accepts
// {"text":..,"locale":..} and answers with a Result document.
type HTTPParser struct {
	base *upstream.BaseClient
	url  string
}

func NewHTTPParser(url string, opts ...upstream.Option) *HTTPParser {
	return &HTTPParser{base: upstream.NewBaseClient("nlu", opts...), url: url}
}

type parseRequest struct {
	Text   string `json:"text"`
	Locale string `json:"locale,omitempty"`
}

func (p *HTTPParser) Parse(ctx context.Context, text, locale string) (Result, error) {
	var out Result
	if err := p.base.PostJSON(ctx, p.url, parseRequest{Text: text, Locale: locale}, &out); err != nil {
		return Result{}, err
	}
	if out.Input == "" {
		out.Input = text
	}
	return out, nil
}
