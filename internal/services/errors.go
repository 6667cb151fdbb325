// Package services holds the reply pipeline: turning a chat action into the
// single sentence Harris answers with. This file centralizes the sentinel
// errors the intent resolver returns. Callers never see them; WeatherService
// maps each to one of the two fallback sentences.
package services

import "errors"

// Resolution failures answered with the Unsure sentence.
var (
	// ErrNoIntent means the NLU engine detected no intent.
	ErrNoIntent = errors.New("no intent")
	// ErrLowConfidence means the intent probability was <= 0.5.
	ErrLowConfidence = errors.New("intent confidence too low")
	// ErrNoSlots means the engine reported no slot list.
	ErrNoSlots = errors.New("no slots")
	// ErrUnknownIntent means the intent is not a weather intent.
	ErrUnknownIntent = errors.New("not a weather intent")
	// ErrNoLocation means none of the location slots was filled.
	ErrNoLocation = errors.New("no location slot")
)

// Upstream failures answered with the Down sentence.
var (
	ErrNLU      = errors.New("nlu failed")
	ErrGeocode  = errors.New("geocode failed")
	ErrForecast = errors.New("forecast unavailable")
)
