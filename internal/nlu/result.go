// Package nlu adapts natural-language-understanding engines to a single
// Snips-style result shape: an optional intent with a probability and a list
// of named slots.
package nlu

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
)

// Parser extracts intent and slots from free text.
type Parser interface {
	Parse(ctx context.Context, text, locale string) (Result, error)
}

// Recognized intent names.
const (
	IntentForecast          = "searchWeatherForecast"
	IntentForecastCondition = "searchWeatherForecastCondition"
)

// Recognized slot names.
const (
	SlotConditionName   = "forecast_condition_name"
	SlotCountry         = "forecast_country"
	SlotGeographicalPOI = "forecast_geographical_poi"
	SlotLocality        = "forecast_locality"
	SlotRegion          = "forecast_region"
	SlotStartDatetime   = "forecast_start_datetime"
)

// Value kinds produced by the builtin entity parsers.
const (
	KindCustom       = "Custom"
	KindInstantTime  = "InstantTime"
	KindTimeInterval = "TimeInterval"
)

// TimeLayout is the format of InstantTime and TimeInterval values.
const TimeLayout = "2006-01-02 15:04:05 -07:00"

// Result is one parse. A nil Intent means none was detected; a nil Slots
// slice means the engine reported no slot list at all.
type Result struct {
	Input  string  `json:"input"`
	Intent *Intent `json:"intent"`
	Slots  []Slot  `json:"slots"`
}

type Intent struct {
	Name        string  `json:"intentName"`
	Probability float64 `json:"probability"`
}

type Slot struct {
	RawValue string    `json:"rawValue"`
	Value    SlotValue `json:"value"`
	Entity   string    `json:"entity"`
	SlotName string    `json:"slotName"`
}

// SlotValue is the resolved value of a slot. Grain is set for InstantTime
// values; From and To for TimeInterval values.
type SlotValue struct {
	Kind      string `json:"kind"`
	Value     string `json:"value,omitempty"`
	Grain     string `json:"grain,omitempty"`
	Precision string `json:"precision,omitempty"`
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
}

// UnmarshalJSON accepts the object form {"kind":..,"value":..} as well as a
// bare string, which is read as a Custom value. A numeric inner value is kept
// in its literal text form.
func (v *SlotValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = SlotValue{Kind: KindCustom, Value: s}
		return nil
	}

	var raw struct {
		Kind      string          `json:"kind"`
		Value     json.RawMessage `json:"value"`
		Grain     string          `json:"grain"`
		Precision string          `json:"precision"`
		From      *string         `json:"from"`
		To        *string         `json:"to"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := SlotValue{Kind: raw.Kind, Grain: raw.Grain, Precision: raw.Precision}
	if raw.From != nil {
		out.From = *raw.From
	}
	if raw.To != nil {
		out.To = *raw.To
	}
	if len(raw.Value) > 0 && string(raw.Value) != "null" {
		var s string
		if err := json.Unmarshal(raw.Value, &s); err == nil {
			out.Value = s
		} else {
			var f float64
			if err := json.Unmarshal(raw.Value, &f); err != nil {
				return err
			}
			out.Value = strconv.FormatFloat(f, 'f', -1, 64)
		}
	}
	*v = out
	return nil
}

// Slot returns the first slot named name.
func (r Result) Slot(name string) (Slot, bool) {
	for _, s := range r.Slots {
		if s.SlotName == name {
			return s, true
		}
	}
	return Slot{}, false
}
