package services

import (
	"fmt"
	"math"

	"github.com/tbourn/telemacher/internal/domain"
)

// phrase renders one (category, tier) cell for a prediction.
type phrase func(p domain.Prediction) string

func flag(pick func(domain.Prediction) bool, yes, no string) phrase {
	return func(p domain.Prediction) string {
		if pick(p) {
			return yes
		}
		return no
	}
}

func measure(format string, value func(domain.Prediction) any) phrase {
	return func(p domain.Prediction) string { return fmt.Sprintf(format, value(p)) }
}

func snowy(p domain.Prediction) bool   { return p.IsSnowy }
func hailing(p domain.Prediction) bool { return p.IsHailing }
func rainy(p domain.Prediction) bool   { return p.IsRainy }

func humidityPct(p domain.Prediction) any { return math.Round(p.Humidity * 100) }
func uvIndex(p domain.Prediction) any     { return p.UVIndex }
func windSpeed(p domain.Prediction) any   { return p.WindSpeed }

// phrases is indexed by [domain.Category][domain.Tier].
var phrases = [...][4]phrase{
	domain.CategorySnow: {
		domain.TierCurrently: flag(snowy, "It is snowing.", "It is not snowing."),
		domain.TierMinutely:  flag(snowy, "It will snow within the hour.", "It will not snow within the hour."),
		domain.TierHourly:    flag(snowy, "It should snow in the coming hours.", "It should not snow in the coming hours."),
		domain.TierDaily:     flag(snowy, "Snow is expected.", "No snow is expected."),
	},
	domain.CategoryWind: {
		domain.TierCurrently: measure("The wind speed is %.1f mph.", windSpeed),
		domain.TierMinutely:  measure("The wind speed will be %.1f mph within the hour.", windSpeed),
		domain.TierHourly:    measure("The wind speed should be around %.1f mph in the coming hours.", windSpeed),
		domain.TierDaily:     measure("A wind speed of %.1f mph is expected.", windSpeed),
	},
	domain.CategoryHail: {
		domain.TierCurrently: flag(hailing, "It is hailing.", "It is not hailing."),
		domain.TierMinutely:  flag(hailing, "It will hail within the hour.", "It will not hail within the hour."),
		domain.TierHourly:    flag(hailing, "It should hail in the coming hours.", "It should not hail in the coming hours."),
		domain.TierDaily:     flag(hailing, "Hail is expected.", "No hail is expected."),
	},
	domain.CategoryHumidity: {
		domain.TierCurrently: measure("The humidity is %.0f%%.", humidityPct),
		domain.TierMinutely:  measure("The humidity will be %.0f%% within the hour.", humidityPct),
		domain.TierHourly:    measure("The humidity should be around %.0f%% in the coming hours.", humidityPct),
		domain.TierDaily:     measure("Humidity of %.0f%% is expected.", humidityPct),
	},
	domain.CategoryPrecipitation: {
		domain.TierCurrently: flag(rainy, "It is raining.", "It is not raining."),
		domain.TierMinutely:  flag(rainy, "It will rain within the hour.", "It will not rain within the hour."),
		domain.TierHourly:    flag(rainy, "It should rain in the coming hours.", "It should not rain in the coming hours."),
		domain.TierDaily:     flag(rainy, "Rain is expected.", "No rain is expected."),
	},
	domain.CategoryUVCloudHeat: {
		domain.TierCurrently: measure("The UV index is %d.", uvIndex),
		domain.TierMinutely:  measure("The UV index will be %d within the hour.", uvIndex),
		domain.TierHourly:    measure("The UV index should be around %d in the coming hours.", uvIndex),
		domain.TierDaily:     measure("A UV index of %d is expected.", uvIndex),
	},
}

// Compose returns the reply sentence for a prediction. A nil category yields
// the prediction's own summary.
func Compose(category *domain.Category, tier domain.Tier, p domain.Prediction) string {
	if category == nil {
		return p.Summary
	}
	c := int(*category)
	if c < 0 || c >= len(phrases) || tier < domain.TierCurrently || tier > domain.TierDaily {
		return p.Summary
	}
	return phrases[c][tier](p)
}
