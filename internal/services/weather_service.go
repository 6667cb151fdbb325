// Package services – WeatherService
//
// This file implements the intent resolver: it parses a free-text message
// with the NLU engine, reconciles the slots into a ResolvedQuery, geocodes the
// location, fetches the forecast, and composes the reply. Every path ends in
// a sentence; failures degrade to Unsure or Down.
//
// Observability: Respond is OpenTelemetry-instrumented and counts replies by
// outcome. Degraded paths are logged through the logger carried in ctx.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/telemacher/internal/domain"
	"github.com/tbourn/telemacher/internal/nlu"
	"github.com/tbourn/telemacher/internal/observability"
)

// minProbability is the confidence an intent must exceed to be answered.
const minProbability = 0.5

// Geocoder resolves a place name. *geocode.Cache implements it.
type Geocoder interface {
	Resolve(ctx context.Context, query string) (domain.Coordinate, bool)
}

// Forecaster returns a complete forecast. *forecast.Aggregator implements it.
type Forecaster interface {
	Fetch(ctx context.Context, lat, lng float64, at *time.Time) (domain.Forecast, bool)
}

// WeatherService answers free-text weather questions.
type WeatherService struct {
	NLU        nlu.Parser
	Geocoder   Geocoder
	Forecaster Forecaster
	// Locale is passed to the NLU engine; empty lets it choose.
	Locale string
}

// NewWeatherService wires the three collaborators.
func NewWeatherService(p nlu.Parser, g Geocoder, f Forecaster, locale string) *WeatherService {
	return &WeatherService{NLU: p, Geocoder: g, Forecaster: f, Locale: locale}
}

// Respond returns the reply to text. It never fails.
func (s *WeatherService) Respond(ctx context.Context, text string) string {
	ctx, span := observability.Tracer("services").Start(ctx, "Respond")
	defer span.End()

	reply, err := s.answer(ctx, text)
	outcome := outcomeAnswer
	if err != nil {
		reply, outcome = fallback(err)
		zerolog.Ctx(ctx).Info().Err(err).Str("outcome", outcome).Msg("weather question not answered")
	}
	span.SetAttributes(attribute.String("reply.outcome", outcome))
	replies.WithLabelValues(outcome).Inc()
	return reply
}

func (s *WeatherService) answer(ctx context.Context, text string) (string, error) {
	res, err := s.NLU.Parse(ctx, text, s.Locale)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNLU, err)
	}

	q, err := ResolveQuery(res)
	if err != nil {
		return "", err
	}
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		attribute.String("query.locality", q.Locality),
		attribute.String("query.tier", q.Tier.String()),
	)

	coord, ok := s.Geocoder.Resolve(ctx, q.Locality)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrGeocode, q.Locality)
	}
	f, ok := s.Forecaster.Fetch(ctx, coord.Lat, coord.Lng, q.StartTime)
	if !ok {
		return "", ErrForecast
	}
	return Compose(q.Category, q.Tier, f.At(q.Tier)), nil
}

// ResolveQuery reconciles an NLU result into a query. It returns one of the
// Unsure sentinel errors when the result is not an answerable weather
// question.
func ResolveQuery(r nlu.Result) (domain.ResolvedQuery, error) {
	switch {
	case r.Intent == nil:
		return domain.ResolvedQuery{}, ErrNoIntent
	case r.Intent.Probability <= minProbability:
		return domain.ResolvedQuery{}, ErrLowConfidence
	case r.Slots == nil:
		return domain.ResolvedQuery{}, ErrNoSlots
	case r.Intent.Name != nlu.IntentForecast && r.Intent.Name != nlu.IntentForecastCondition:
		return domain.ResolvedQuery{}, ErrUnknownIntent
	}

	var q domain.ResolvedQuery
	for _, name := range []string{nlu.SlotLocality, nlu.SlotGeographicalPOI, nlu.SlotRegion, nlu.SlotCountry} {
		if v, ok := customValue(r, name); ok {
			q.Locality = v
			break
		}
	}
	if q.Locality == "" {
		return domain.ResolvedQuery{}, ErrNoLocation
	}

	if v, ok := customValue(r, nlu.SlotConditionName); ok {
		q.Category = CategoryFor(v)
	}

	var grain string
	q.StartTime, grain = startTime(r)
	q.Tier = TierForGrain(grain)
	return q, nil
}

// customValue returns the first non-blank Custom value of the named slot.
func customValue(r nlu.Result, name string) (string, bool) {
	for _, s := range r.Slots {
		if s.SlotName != name || s.Value.Kind != nlu.KindCustom {
			continue
		}
		if strings.TrimSpace(s.Value.Value) != "" {
			return s.Value.Value, true
		}
	}
	return "", false
}

// startTime parses the start datetime slot. An unparsable value is treated
// as if the slot were absent: no time and no grain.
func startTime(r nlu.Result) (*time.Time, string) {
	s, ok := r.Slot(nlu.SlotStartDatetime)
	if !ok {
		return nil, ""
	}
	switch s.Value.Kind {
	case nlu.KindInstantTime:
		t, err := time.Parse(nlu.TimeLayout, s.Value.Value)
		if err != nil {
			return nil, ""
		}
		return &t, s.Value.Grain
	case nlu.KindTimeInterval:
		t, err := time.Parse(nlu.TimeLayout, s.Value.From)
		if err != nil {
			return nil, ""
		}
		return &t, ""
	}
	return nil, ""
}

// TierForGrain buckets a time grain into a forecast tier.
func TierForGrain(grain string) domain.Tier {
	switch grain {
	case "Minute":
		return domain.TierMinutely
	case "Hour":
		return domain.TierHourly
	case "Day", "Week", "Month", "Quarter", "Year":
		return domain.TierDaily
	default:
		return domain.TierCurrently
	}
}
