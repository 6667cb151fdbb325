package domain

import "time"

// Coordinate is a WGS84 latitude/longitude pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Tier is one of the four forecast horizons a reply can be drawn from.
type Tier int

const (
	TierCurrently Tier = iota
	TierMinutely
	TierHourly
	TierDaily
)

// Tiers lists every tier in display order.
var Tiers = [...]Tier{TierCurrently, TierMinutely, TierHourly, TierDaily}

func (t Tier) String() string {
	switch t {
	case TierCurrently:
		return "currently"
	case TierMinutely:
		return "minutely"
	case TierHourly:
		return "hourly"
	case TierDaily:
		return "daily"
	}
	return "unknown"
}

// Prediction is the normalized weather outlook for a single tier.
//
// Humidity is a fraction in [0,1]. The precipitation flags are derived
// independently from the upstream precipitation type and are therefore not
// guaranteed to be mutually exclusive.
type Prediction struct {
	Summary   string  `json:"summary"`
	Humidity  float64 `json:"humidity"`
	UVIndex   int     `json:"uv_index"`
	WindSpeed float64 `json:"wind_speed"`
	IsSnowy   bool    `json:"is_snowy"`
	IsRainy   bool    `json:"is_rainy"`
	IsHailing bool    `json:"is_hailing"`
}

// Forecast holds exactly four fully populated predictions. Aggregators must
// never hand out a partially filled Forecast.
type Forecast struct {
	Currently Prediction `json:"currently"`
	Minutely  Prediction `json:"minutely"`
	Hourly    Prediction `json:"hourly"`
	Daily     Prediction `json:"daily"`
}

// At returns the prediction for tier t.
func (f Forecast) At(t Tier) Prediction {
	switch t {
	case TierMinutely:
		return f.Minutely
	case TierHourly:
		return f.Hourly
	case TierDaily:
		return f.Daily
	default:
		return f.Currently
	}
}

// Category narrows a weather question to one aspect of the forecast.
type Category int

const (
	CategorySnow Category = iota
	CategoryWind
	CategoryHail
	CategoryHumidity
	CategoryPrecipitation
	CategoryUVCloudHeat
)

func (c Category) String() string {
	switch c {
	case CategorySnow:
		return "snow"
	case CategoryWind:
		return "wind"
	case CategoryHail:
		return "hail"
	case CategoryHumidity:
		return "humidity"
	case CategoryPrecipitation:
		return "precipitation"
	case CategoryUVCloudHeat:
		return "uv"
	}
	return "unknown"
}

// ResolvedQuery is what the intent resolver extracts from one message.
// A nil Category means a general summary was requested; a nil StartTime means
// "now".
type ResolvedQuery struct {
	Locality  string
	StartTime *time.Time
	Tier      Tier
	Category  *Category
}
