package forecast

// Point is one set of weather fields. Every field is optional; pointers
// distinguish "absent" from a zero reading.
type Point struct {
	Summary    *string  `json:"summary,omitempty"`
	Humidity   *float64 `json:"humidity,omitempty"`
	UVIndex    *float64 `json:"uvIndex,omitempty"`
	WindSpeed  *float64 `json:"windSpeed,omitempty"`
	PrecipType *string  `json:"precipType,omitempty"`
}

// Payload is the subset of a Dark Sky forecast response that is read.
// Only block-level fields count; per-period "data" arrays are not decoded.
type Payload struct {
	Currently *Point `json:"currently,omitempty"`
	Minutely  *Point `json:"minutely,omitempty"`
	Hourly    *Point `json:"hourly,omitempty"`
	Daily     *Point `json:"daily,omitempty"`
}

func (p *Point) orEmpty() Point {
	if p == nil {
		return Point{}
	}
	return *p
}
