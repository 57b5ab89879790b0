// Package models defines the data models persisted by the session core.
package models

import "time"

// Note visibility values. Private entries belong to the assigned therapist
// only; shared entries are visible to therapist and client.
const (
	VisibilityPrivate = "private"
	VisibilityShared  = "shared"
)

// NoteEntry is one encrypted clinical note row. Entries form an append-only
// log: a row, once written, is never updated or reordered.
type NoteEntry struct {
	ID        string
	SessionID string
	// Visibility is VisibilityPrivate or VisibilityShared.
	Visibility string
	// Nonce is the AEAD nonce used to encrypt this entry.
	Nonce []byte
	// Ciphertext is the hex-encoded encrypted note body.
	Ciphertext string
	// Seq is the server-assigned, monotonic position within the session.
	Seq       int64
	CreatedAt time.Time
}
