package domain

// EventType names a real-time SOS event.
type EventType string

const (
	EventNewSOS      EventType = "NEW_SOS"
	EventSOSAssigned EventType = "SOS_ASSIGNED"
	EventSOSRescued  EventType = "SOS_RESCUED"
)

// Event is pushed to every live observer, one JSON object per message.
// Only the fields relevant to Type are populated.
type Event struct {
	Type       EventType `json:"type"`
	SOSID      string    `json:"sos_id,omitempty"`
	Name       string    `json:"name,omitempty"`
	Priority   Urgency   `json:"priority,omitempty"`
	Location   string    `json:"location,omitempty"`
	RescueTeam string    `json:"rescue_team,omitempty"`
}

// NewSOSEvent announces a freshly created request.
func NewSOSEvent(r *SOSRequest) Event {
	return Event{
		Type:     EventNewSOS,
		SOSID:    r.ID,
		Name:     r.Name,
		Priority: r.Priority,
		Location: r.Location,
	}
}

// SOSAssignedEvent announces a team dispatch.
func SOSAssignedEvent(sosID, teamID string) Event {
	return Event{Type: EventSOSAssigned, SOSID: sosID, RescueTeam: teamID}
}

// SOSRescuedEvent announces a resolved request.
func SOSRescuedEvent(sosID string) Event {
	return Event{Type: EventSOSRescued, SOSID: sosID}
}
