package domain

import (
	"fmt"
	"strings"
	"time"
)

// RoadNode is an intersection or landmark in the road network.
type RoadNode struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Location  GeoPoint           `json:"location"`
	Neighbors map[string]float64 `json:"neighbors"` // neighbor id -> edge distance (km)
}

// Urgency is the severity a citizen attaches to an SOS request.
type Urgency string

const (
	UrgencyLow      Urgency = "Low"
	UrgencyMedium   Urgency = "Medium"
	UrgencyHigh     Urgency = "High"
	UrgencyCritical Urgency = "Critical"
)

var urgencyRanks = map[Urgency]int{
	UrgencyLow:      0,
	UrgencyMedium:   1,
	UrgencyHigh:     2,
	UrgencyCritical: 3,
}

// Rank orders urgencies from lowest (0) to highest severity.
// Unknown values rank below Low.
func (u Urgency) Rank() int {
	if r, ok := urgencyRanks[u]; ok {
		return r
	}
	return -1
}

// Valid reports whether u is one of the fixed urgency levels.
func (u Urgency) Valid() bool {
	_, ok := urgencyRanks[u]
	return ok
}

// ParseUrgency accepts any casing of a known urgency level.
func ParseUrgency(s string) (Urgency, error) {
	for u := range urgencyRanks {
		if strings.EqualFold(string(u), strings.TrimSpace(s)) {
			return u, nil
		}
	}
	return "", fmt.Errorf("%w: unknown urgency %q", ErrInvalidInput, s)
}

// SOSStatus is the lifecycle state of an SOS request.
type SOSStatus string

const (
	StatusPending  SOSStatus = "Pending"
	StatusAssigned SOSStatus = "Assigned"
	StatusRescued  SOSStatus = "Rescued"
)

// SOSRequest is a citizen-submitted help request.
type SOSRequest struct {
	ID         string    `json:"id"`
	Email      string    `json:"email,omitempty"`
	Name       string    `json:"name"`
	Province   string    `json:"province"`
	Area       string    `json:"area"`
	Location   string    `json:"location"`
	Issue      string    `json:"issue"`
	Priority   Urgency   `json:"priority"`
	Status     SOSStatus `json:"status"`
	RescueTeam *string   `json:"rescue_team"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Validate checks the fields a citizen must supply.
func (r *SOSRequest) Validate() error {
	var missing []string
	if strings.TrimSpace(r.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(r.Location) == "" {
		missing = append(missing, "location")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidInput, strings.Join(missing, ", "))
	}
	if !r.Priority.Valid() {
		return fmt.Errorf("%w: unknown urgency %q", ErrInvalidInput, r.Priority)
	}
	return nil
}

// Availability of a rescue team.
type Availability string

const (
	Available Availability = "Available"
	Busy      Availability = "Busy"
	Offline   Availability = "Offline"
)

// ParseAvailability accepts any casing of a known availability state.
func ParseAvailability(s string) (Availability, error) {
	for _, a := range []Availability{Available, Busy, Offline} {
		if strings.EqualFold(string(a), strings.TrimSpace(s)) {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: unknown availability %q", ErrInvalidInput, s)
}

// RescueTeam is a dispatchable rescue unit. Credentials live with the
// accounts service; only contact and availability are visible here.
type RescueTeam struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	Phone        string       `json:"phone"`
	Province     string       `json:"province"`
	Area         string       `json:"area"`
	Availability Availability `json:"availability"`
}

// FloodPredictionInput holds the features fed to the flood scorer.
type FloodPredictionInput struct {
	Month    int     `json:"month"`
	Year     int     `json:"year"`
	Temp     float64 `json:"temp"`
	Ice      float64 `json:"ice"`
	Veg      float64 `json:"veg"`
	RainMM   float64 `json:"rain_mm"`
	Province string  `json:"province"`
}

// Validate range-checks the calendar fields and requires a province.
func (in *FloodPredictionInput) Validate() error {
	if in.Month < 1 || in.Month > 12 {
		return fmt.Errorf("%w: month must be 1-12, got %d", ErrInvalidInput, in.Month)
	}
	if in.Year < 1900 || in.Year > 2100 {
		return fmt.Errorf("%w: year must be 1900-2100, got %d", ErrInvalidInput, in.Year)
	}
	if strings.TrimSpace(in.Province) == "" {
		return fmt.Errorf("%w: province is required", ErrInvalidInput)
	}
	return nil
}

// NoFlood is the severity reported when no flood is predicted.
const NoFlood = "No Flood"

// FloodPrediction is the scorer outcome.
type FloodPrediction struct {
	Flood      bool    `json:"flood"`
	Severity   string  `json:"severity"`
	Confidence float64 `json:"confidence"`
}

// PredictionRecord is a persisted prediction.
type PredictionRecord struct {
	ID        string               `json:"id"`
	Input     FloodPredictionInput `json:"input"`
	Result    FloodPrediction      `json:"result"`
	CreatedAt time.Time            `json:"created_at"`
}
