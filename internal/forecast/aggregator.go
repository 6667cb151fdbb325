// Package forecast fetches weather for a coordinate and normalizes it into the
// four-tier domain.Forecast used to compose replies.
package forecast

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/tbourn/telemacher/internal/domain"
	"github.com/tbourn/telemacher/internal/observability"
)

// Source produces raw forecast payloads. DarkSkyClient is the production
// implementation.
type Source interface {
	Payload(ctx context.Context, lat, lng float64, at *time.Time) (Payload, error)
}

// Aggregator fetches and normalizes forecasts. It holds no mutable state.
type Aggregator struct {
	src Source
}

// NewAggregator returns an Aggregator reading from src.
func NewAggregator(src Source) *Aggregator {
	return &Aggregator{src: src}
}

// Fetch returns a fully populated forecast, or ok == false when the upstream
// call failed or its payload was incomplete.
func (a *Aggregator) Fetch(ctx context.Context, lat, lng float64, at *time.Time) (domain.Forecast, bool) {
	ctx, span := observability.Tracer("forecast").Start(ctx, "forecast.Fetch")
	defer span.End()
	span.SetAttributes(attribute.Float64("geo.lat", lat), attribute.Float64("geo.lng", lng))

	lg := zerolog.Ctx(ctx)

	p, err := a.src.Payload(ctx, lat, lng, at)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upstream")
		lg.Warn().Err(err).Msg("forecast fetch failed")
		return domain.Forecast{}, false
	}
	f, ok := Normalize(p)
	if !ok {
		span.SetStatus(codes.Error, "incomplete payload")
		lg.Warn().Float64("lat", lat).Float64("lng", lng).Msg("forecast payload incomplete")
		return domain.Forecast{}, false
	}
	return f, true
}
