package models

import "time"

// Session is a booked therapy session between one therapist and one client.
type Session struct {
	ID           string
	TherapistID  string
	ClientID     string
	StartsAt     time.Time
	DurationMins int
	// Event is set once the session has been synced to the external
	// calendar, nil otherwise.
	Event     *CalendarEventRef
	CreatedAt time.Time
}

// CalendarEventRef links a session to its remote calendar event. It is set
// at most once, at event creation, and cleared when the session is
// cancelled.
type CalendarEventRef struct {
	RemoteEventID string
	MeetingLink   string
}

// Role is a caller's relationship to a session.
type Role int

const (
	RoleNone Role = iota
	RoleTherapist
	RoleClient
)

// RoleOf resolves the relationship of callerID to the session.
func (s *Session) RoleOf(callerID string) Role {
	switch callerID {
	case s.TherapistID:
		return RoleTherapist
	case s.ClientID:
		return RoleClient
	default:
		return RoleNone
	}
}
