// Package sessions provides PostgreSQL-backed persistence for therapy
// sessions and their encrypted note entries.
package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/theracare/sessioncore/common"
	"github.com/theracare/sessioncore/dbx"
	"github.com/theracare/sessioncore/models"
)

// PostgresRepository implements session storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Get returns the session row for sessionID, or common.ErrNotFound.
func (r *PostgresRepository) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	query := `
		SELECT therapist_id, client_id, starts_at, duration_mins, calendar_event_id, meeting_link, created_at
		FROM sessions
		WHERE id = $1
	`
	s := &models.Session{ID: sessionID}
	var eventID, meetingLink sql.NullString
	if err := r.db.QueryRowContext(ctx, query, sessionID).
		Scan(&s.TherapistID, &s.ClientID, &s.StartsAt, &s.DurationMins, &eventID, &meetingLink, &s.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if eventID.Valid {
		s.Event = &models.CalendarEventRef{RemoteEventID: eventID.String, MeetingLink: meetingLink.String}
	}
	return s, nil
}

// Create inserts a new session row.
func (r *PostgresRepository) Create(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (id, therapist_id, client_id, starts_at, duration_mins)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.db.ExecContext(ctx, query,
		session.ID, session.TherapistID, session.ClientID, session.StartsAt, session.DurationMins); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// AppendNote inserts one encrypted note entry. seq is assigned by the
// database; rows are never updated afterwards.
func (r *PostgresRepository) AppendNote(ctx context.Context, note *models.NoteEntry) error {
	query := `
		INSERT INTO session_notes (id, session_id, visibility, nonce, ciphertext)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.db.ExecContext(ctx, query,
		note.ID, note.SessionID, note.Visibility, note.Nonce, note.Ciphertext); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ListNotes returns note entries for the session with the given visibility,
// ordered by seq ascending.
func (r *PostgresRepository) ListNotes(ctx context.Context, sessionID string, visibility string) ([]*models.NoteEntry, error) {
	query := `
		SELECT id, nonce, ciphertext, seq, created_at
		FROM session_notes
		WHERE session_id = $1 AND visibility = $2
		ORDER BY seq
	`
	rows, err := r.db.QueryContext(ctx, query, sessionID, visibility)
	if err != nil {
		return nil, fmt.Errorf("failed to select notes: %w", err)
	}
	defer rows.Close()

	var result []*models.NoteEntry
	for rows.Next() {
		item := models.NoteEntry{SessionID: sessionID, Visibility: visibility}
		if err := rows.Scan(&item.ID, &item.Nonce, &item.Ciphertext, &item.Seq, &item.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// CountNotes returns the number of note entries with the given visibility.
func (r *PostgresRepository) CountNotes(ctx context.Context, sessionID string, visibility string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM session_notes
		WHERE session_id = $1 AND visibility = $2
	`
	var n int
	if err := r.db.QueryRowContext(ctx, query, sessionID, visibility).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// SetEventRef links the session to a remote calendar event. The guard on
// calendar_event_id IS NULL enforces set-at-most-once.
func (r *PostgresRepository) SetEventRef(ctx context.Context, sessionID string, ref *models.CalendarEventRef) error {
	query := `
		UPDATE sessions
		SET calendar_event_id = $2, meeting_link = $3
		WHERE id = $1 AND calendar_event_id IS NULL
	`
	res, err := r.db.ExecContext(ctx, query, sessionID, ref.RemoteEventID, ref.MeetingLink)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		// Session missing, or already linked.
		if _, err := r.Get(ctx, sessionID); err != nil {
			return err
		}
		return common.ErrAlreadyExists
	}
	return nil
}

// ClearEventRef removes the calendar event link. Clearing an unlinked
// session is not an error.
func (r *PostgresRepository) ClearEventRef(ctx context.Context, sessionID string) error {
	query := `
		UPDATE sessions
		SET calendar_event_id = NULL, meeting_link = NULL
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, sessionID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
