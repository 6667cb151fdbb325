package services

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tbourn/telemacher/internal/domain"
)

// conditionKeywords maps a normalized condition word to its category. The
// stemmed forms ("cloudi", "sunni", "depress") are what the NLU engine's
// stemmer emits; the plain forms cover engines without one.
var conditionKeywords = map[string]domain.Category{
	"blizzard":  domain.CategorySnow,
	"snow":      domain.CategorySnow,
	"snowfall":  domain.CategorySnow,
	"snowing":   domain.CategorySnow,
	"snowstorm": domain.CategorySnow,
	"snowy":     domain.CategorySnow,

	"wind":  domain.CategoryWind,
	"windy": domain.CategoryWind,

	"hail":    domain.CategoryHail,
	"hailing": domain.CategoryHail,

	"humid":    domain.CategoryHumidity,
	"humidity": domain.CategoryHumidity,

	"storm":    domain.CategoryPrecipitation,
	"stormy":   domain.CategoryPrecipitation,
	"rain":     domain.CategoryPrecipitation,
	"rainfall": domain.CategoryPrecipitation,
	"rainy":    domain.CategoryPrecipitation,

	"cloud":      domain.CategoryUVCloudHeat,
	"cloudi":     domain.CategoryUVCloudHeat,
	"cloudy":     domain.CategoryUVCloudHeat,
	"overcast":   domain.CategoryUVCloudHeat,
	"depress":    domain.CategoryUVCloudHeat,
	"depressing": domain.CategoryUVCloudHeat,
	"fog":        domain.CategoryUVCloudHeat,
	"foggy":      domain.CategoryUVCloudHeat,
	"sun":        domain.CategoryUVCloudHeat,
	"sunni":      domain.CategoryUVCloudHeat,
	"sunny":      domain.CategoryUVCloudHeat,
	"hot":        domain.CategoryUVCloudHeat,
	"be sunni":   domain.CategoryUVCloudHeat,
}

// CategoryFor maps a condition word to a category. Unknown or empty words
// return nil, meaning a general summary was asked for.
func CategoryFor(condition string) *domain.Category {
	// A Caser is not safe for concurrent use; build one per call.
	key := strings.Join(strings.Fields(cases.Lower(language.Und).String(condition)), " ")
	if c, ok := conditionKeywords[key]; ok {
		return &c
	}
	return nil
}
