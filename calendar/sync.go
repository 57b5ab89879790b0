package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/theracare/sessioncore/common"
	"github.com/theracare/sessioncore/logging"
	"github.com/theracare/sessioncore/models"
)

// defaultSummary is the event title when the caller supplies none. The
// deliberately generic wording keeps clinical context off the calendar.
const defaultSummary = "Therapy session"

// CredentialSource yields a live credential for an owner. Satisfied by
// RefreshGuard.
type CredentialSource interface {
	EnsureValid(ctx context.Context, ownerID string) (*models.CalendarCredential, error)
}

// Sync mirrors therapy sessions to the owner's remote calendar. It holds no
// local state; the caller persists the returned event reference.
type Sync struct {
	guard    CredentialSource
	provider Provider
	timeout  time.Duration
	logger   logging.Logger
}

func NewSync(guard CredentialSource, provider Provider, timeout time.Duration, logger logging.Logger) *Sync {
	return &Sync{
		guard:    guard,
		provider: provider,
		timeout:  timeout,
		logger:   logger.With("module", "calendar_sync"),
	}
}

// CreateSessionEvent creates a remote calendar event for a session and
// returns its reference. Guard failures surface as
// common.ErrCalendarUnavailable, remote insert failures as
// common.ErrRemoteSync.
func (s *Sync) CreateSessionEvent(ctx context.Context, therapistID string, attendees []string, start time.Time, durationMinutes int) (*models.CalendarEventRef, error) {
	cred, err := s.guard.EnsureValid(ctx, therapistID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrCalendarUnavailable, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ref, err := s.provider.InsertEvent(callCtx, cred, &EventRequest{
		Summary:   defaultSummary,
		Attendees: attendees,
		Start:     start,
		Duration:  time.Duration(durationMinutes) * time.Minute,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrRemoteSync, err)
	}

	s.logger.Info(ctx, "session event created",
		"owner_id", therapistID, "event_id", ref.RemoteEventID)
	return ref, nil
}

// DeleteSessionEvent removes the remote event. An event the provider
// reports as already gone counts as success, so cancellation is idempotent.
func (s *Sync) DeleteSessionEvent(ctx context.Context, therapistID string, remoteEventID string) error {
	cred, err := s.guard.EnsureValid(ctx, therapistID)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrCalendarUnavailable, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.provider.DeleteEvent(callCtx, cred, remoteEventID); err != nil {
		if errors.Is(err, ErrEventGone) {
			s.logger.Info(ctx, "session event already gone",
				"owner_id", therapistID, "event_id", remoteEventID)
			return nil
		}
		return fmt.Errorf("%w: %w", common.ErrRemoteSync, err)
	}

	s.logger.Info(ctx, "session event deleted",
		"owner_id", therapistID, "event_id", remoteEventID)
	return nil
}
