package entities

import "time"

// LookupOutcome classifies how a postal-code search ended
type LookupOutcome string

const (
	OutcomeFound         LookupOutcome = "found"
	OutcomeEmpty         LookupOutcome = "empty"
	OutcomeUpstreamError LookupOutcome = "upstream_error"
	OutcomeNotGeocoded   LookupOutcome = "not_geocoded"
	OutcomeInvalidInput  LookupOutcome = "invalid_input"
)

// AllOutcomes lists every outcome in display order
var AllOutcomes = []LookupOutcome{
	OutcomeFound,
	OutcomeEmpty,
	OutcomeUpstreamError,
	OutcomeNotGeocoded,
	OutcomeInvalidInput,
}

// DailyUsage aggregates search outcomes for one day. Nothing identifying a
// user or a postal code is stored.
type DailyUsage struct {
	Date     time.Time             `json:"date"`
	Outcomes map[LookupOutcome]int `json:"outcomes"`
	Total    int                   `json:"total"`
}
