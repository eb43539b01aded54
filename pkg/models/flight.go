package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// flightNumberRe matches a two-letter carrier prefix followed by 3-4 digits.
var flightNumberRe = regexp.MustCompile(`^[A-Z]{2}[0-9]{3,4}$`)

// FlightInfo is the normalized flight identity extracted from the free-text
// disruption report. All three fields must be populated before any downstream
// work starts.
type FlightInfo struct {
	FlightNumber    string `json:"flight_number"`
	Date            string `json:"date"` // ISO 8601 YYYY-MM-DD
	DisruptionEvent string `json:"disruption_event"`
}

// Normalize upper-cases the flight number and trims whitespace in place.
func (f *FlightInfo) Normalize() {
	f.FlightNumber = strings.ToUpper(strings.TrimSpace(f.FlightNumber))
	f.Date = strings.TrimSpace(f.Date)
	f.DisruptionEvent = strings.TrimSpace(f.DisruptionEvent)
}

// Validate enforces the structural invariants: carrier-pattern flight number,
// parseable ISO date, non-empty disruption event.
func (f *FlightInfo) Validate() error {
	if !flightNumberRe.MatchString(f.FlightNumber) {
		return fmt.Errorf("flight_number %q does not match carrier pattern (two letters + 3-4 digits)", f.FlightNumber)
	}
	if _, err := time.Parse("2006-01-02", f.Date); err != nil {
		return fmt.Errorf("date %q is not a valid ISO 8601 date: %w", f.Date, err)
	}
	if f.DisruptionEvent == "" {
		return fmt.Errorf("disruption_event must not be empty")
	}
	return nil
}
