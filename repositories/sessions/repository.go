// Package sessions declares the repository contract for therapy sessions
// and their append-only encrypted note log.
package sessions

import (
	"context"

	"github.com/theracare/sessioncore/models"
)

// Repository defines persistence operations for sessions and session notes.
type Repository interface {
	// Get returns the session with the given id, including its calendar
	// event reference when one is set. Returns common.ErrNotFound when the
	// session does not exist.
	Get(ctx context.Context, sessionID string) (*models.Session, error)

	// Create stores a new session row.
	Create(ctx context.Context, session *models.Session) error

	// AppendNote appends one encrypted note entry to the session's log.
	// Entries are never updated in place.
	AppendNote(ctx context.Context, note *models.NoteEntry) error

	// ListNotes returns the session's note entries with the given
	// visibility, in append order.
	ListNotes(ctx context.Context, sessionID string, visibility string) ([]*models.NoteEntry, error)

	// CountNotes returns the number of note entries with the given
	// visibility.
	CountNotes(ctx context.Context, sessionID string, visibility string) (int, error)

	// SetEventRef links the session to its remote calendar event. The link
	// is set at most once; a second call returns common.ErrAlreadyExists.
	SetEventRef(ctx context.Context, sessionID string, ref *models.CalendarEventRef) error

	// ClearEventRef removes the calendar event link, if any.
	ClearEventRef(ctx context.Context, sessionID string) error
}
