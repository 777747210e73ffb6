package models

import "time"

// Origin tags which source served a payload.
type Origin string

const (
	OriginPrimary  Origin = "primary"
	OriginFallback Origin = "fallback"
)

// Payload is a successfully fetched response body, kept unparsed so every
// render starts from the same bytes.
type Payload struct {
	Body      []byte
	Origin    Origin
	Location  string
	FetchedAt time.Time
}
