package forecast

import (
	"math"

	"github.com/tbourn/telemacher/internal/domain"
)

// Normalize turns a raw payload into a fully populated Forecast.
//
// Substitutions, applied before validation:
//   - daily.summary     <- hourly.summary
//   - minutely.summary  <- currently.summary
//   - minutely.precipType <- currently.precipType
//   - minutely humidity, uvIndex, windSpeed <- currently (never reported per minute)
//
// All four summaries and all four humidities must then be present, otherwise
// ok is false. Other numeric fields default to zero.
func Normalize(p Payload) (domain.Forecast, bool) {
	current := p.Currently.orEmpty()
	minutely := p.Minutely.orEmpty()
	hourly := p.Hourly.orEmpty()
	daily := p.Daily.orEmpty()

	if daily.Summary == nil {
		daily.Summary = hourly.Summary
	}
	if minutely.Summary == nil {
		minutely.Summary = current.Summary
	}
	if minutely.PrecipType == nil {
		minutely.PrecipType = current.PrecipType
	}
	if minutely.Humidity == nil {
		minutely.Humidity = current.Humidity
	}
	if minutely.UVIndex == nil {
		minutely.UVIndex = current.UVIndex
	}
	if minutely.WindSpeed == nil {
		minutely.WindSpeed = current.WindSpeed
	}

	var (
		out domain.Forecast
		ok  bool
	)
	if out.Currently, ok = toPrediction(current); !ok {
		return domain.Forecast{}, false
	}
	if out.Minutely, ok = toPrediction(minutely); !ok {
		return domain.Forecast{}, false
	}
	if out.Hourly, ok = toPrediction(hourly); !ok {
		return domain.Forecast{}, false
	}
	if out.Daily, ok = toPrediction(daily); !ok {
		return domain.Forecast{}, false
	}
	return out, true
}

func toPrediction(p Point) (domain.Prediction, bool) {
	if p.Summary == nil || p.Humidity == nil {
		return domain.Prediction{}, false
	}
	pred := domain.Prediction{
		Summary:  *p.Summary,
		Humidity: *p.Humidity,
	}
	if p.UVIndex != nil {
		pred.UVIndex = int(math.Round(*p.UVIndex))
	}
	if p.WindSpeed != nil {
		pred.WindSpeed = *p.WindSpeed
	}
	if p.PrecipType != nil {
		// Case-sensitive. The flags are not mutually exclusive.
		pred.IsHailing = *p.PrecipType == "hail"
		pred.IsRainy = *p.PrecipType == "rain"
		pred.IsSnowy = *p.PrecipType == "snow"
	}
	return pred, true
}
