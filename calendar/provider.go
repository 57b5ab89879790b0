// Package calendar keeps a per-therapist external-calendar credential valid
// and mirrors therapy sessions to the remote calendar: OAuth authorize flow,
// transparent token refresh with per-owner single-flight, and an event sync
// facade.
package calendar

import (
	"context"
	"errors"
	"time"

	"github.com/theracare/sessioncore/models"
)

// ErrEventGone is returned by a Provider when the remote event no longer
// exists. The sync facade treats it as a successful delete.
var ErrEventGone = errors.New("remote event gone")

// Token is the credential material a provider returns from an authorization
// code exchange or a refresh. RefreshToken and Scope may be empty on
// refresh; callers keep the previously stored values then.
type Token struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
	Scope        string
}

// EventRequest describes a session event to create on the remote calendar.
type EventRequest struct {
	Summary   string
	Attendees []string
	Start     time.Time
	Duration  time.Duration
}

// Provider is the external calendar API surface this package depends on.
// The production implementation is GoogleProvider.
type Provider interface {
	// AuthCodeURL builds the provider consent URL carrying the given state.
	AuthCodeURL(state string) string

	// Exchange trades an authorization code for a token set.
	Exchange(ctx context.Context, code string) (*Token, error)

	// Refresh obtains a new access token using the stored refresh token.
	Refresh(ctx context.Context, refreshToken string) (*Token, error)

	// InsertEvent creates the event on the owner's calendar and returns the
	// remote event id and meeting link.
	InsertEvent(ctx context.Context, cred *models.CalendarCredential, req *EventRequest) (*models.CalendarEventRef, error)

	// DeleteEvent removes the event. Implementations report a missing
	// event as ErrEventGone.
	DeleteEvent(ctx context.Context, cred *models.CalendarCredential, remoteEventID string) error
}
