// Package notes implements the session note service: append-only encrypted
// clinical notes with relationship-based access control.
//
// Callers arrive with an already-authenticated identity; this service only
// checks the caller's relationship to the session. Private notes belong to
// the assigned therapist alone; shared notes are visible to therapist and
// client.
package notes

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/theracare/sessioncore/common"
	"github.com/theracare/sessioncore/cryptox"
	"github.com/theracare/sessioncore/logging"
	"github.com/theracare/sessioncore/models"
	"github.com/theracare/sessioncore/repositories/sessions"
)

// UnavailableText is returned in place of a note body that could not be
// decrypted. The sibling entries of a failed note still decrypt normally.
const UnavailableText = "content unavailable"

// DecryptedNote is one note entry with its body recovered.
type DecryptedNote struct {
	ID        string
	Text      string
	CreatedAt time.Time
	// Unavailable marks an entry whose ciphertext could not be decrypted.
	// Text holds UnavailableText in that case.
	Unavailable bool
}

// SessionNotes is the result of reading a session's notes. Private is nil
// unless the caller is the session's assigned therapist.
type SessionNotes struct {
	Shared  []DecryptedNote
	Private []DecryptedNote
}

type Service struct {
	repo   sessions.Repository
	cipher *cryptox.Cipher
	logger logging.Logger
}

func NewService(repo sessions.Repository, cipher *cryptox.Cipher, logger logging.Logger) *Service {
	return &Service{
		repo:   repo,
		cipher: cipher,
		logger: logger.With("module", "notes"),
	}
}

// AppendPrivate encrypts text and appends it to the session's private note
// log. Only the assigned therapist may write private notes. Returns the
// updated private note count.
func (s *Service) AppendPrivate(ctx context.Context, sessionID, therapistID, text string) (int, error) {
	return s.append(ctx, sessionID, therapistID, text, models.VisibilityPrivate)
}

// AppendShared encrypts text and appends it to the session's shared note
// log, visible to both parties. Only the assigned therapist may write.
// Returns the updated shared note count.
func (s *Service) AppendShared(ctx context.Context, sessionID, therapistID, text string) (int, error) {
	return s.append(ctx, sessionID, therapistID, text, models.VisibilityShared)
}

func (s *Service) append(ctx context.Context, sessionID, therapistID, text, visibility string) (int, error) {
	session, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	if session.RoleOf(therapistID) != models.RoleTherapist {
		return 0, common.ErrForbidden
	}

	env, err := s.cipher.Encrypt(text)
	if err != nil {
		return 0, fmt.Errorf("error encrypting note: %w", err)
	}

	entry := &models.NoteEntry{
		ID:         uuid.NewString(),
		SessionID:  sessionID,
		Visibility: visibility,
		Nonce:      env.Nonce,
		Ciphertext: env.Ciphertext,
	}
	if err := s.repo.AppendNote(ctx, entry); err != nil {
		return 0, fmt.Errorf("error appending note: %w", err)
	}

	count, err := s.repo.CountNotes(ctx, sessionID, visibility)
	if err != nil {
		return 0, fmt.Errorf("error counting notes: %w", err)
	}
	return count, nil
}

// Read returns the session's notes visible to callerID. The assigned
// therapist receives shared and private entries; the assigned client
// receives shared entries only; anyone else gets common.ErrForbidden.
func (s *Service) Read(ctx context.Context, sessionID, callerID string) (*SessionNotes, error) {
	session, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	role := session.RoleOf(callerID)
	if role == models.RoleNone {
		return nil, common.ErrForbidden
	}

	result := &SessionNotes{}

	result.Shared, err = s.decryptAll(ctx, sessionID, models.VisibilityShared)
	if err != nil {
		return nil, err
	}

	if role == models.RoleTherapist {
		result.Private, err = s.decryptAll(ctx, sessionID, models.VisibilityPrivate)
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}

// decryptAll decrypts one visibility's entries with per-entry failure
// isolation: an undecryptable entry becomes an "unavailable" marker and
// its siblings are unaffected.
func (s *Service) decryptAll(ctx context.Context, sessionID, visibility string) ([]DecryptedNote, error) {
	entries, err := s.repo.ListNotes(ctx, sessionID, visibility)
	if err != nil {
		return nil, fmt.Errorf("error listing notes: %w", err)
	}

	result := make([]DecryptedNote, 0, len(entries))
	for _, entry := range entries {
		note := DecryptedNote{ID: entry.ID, CreatedAt: entry.CreatedAt}

		text, err := s.cipher.Decrypt(&cryptox.Envelope{Nonce: entry.Nonce, Ciphertext: entry.Ciphertext})
		if err != nil {
			s.logger.Warn(ctx, "note entry failed to decrypt",
				"session_id", sessionID, "note_id", entry.ID, "error", err.Error())
			note.Text = UnavailableText
			note.Unavailable = true
		} else {
			note.Text = text
		}
		result = append(result, note)
	}
	return result, nil
}
