// Package credentials declares the repository contract for per-therapist
// calendar OAuth credentials in persistent storage.
package credentials

import (
	"context"

	"github.com/theracare/sessioncore/models"
)

// Repository defines operations for storing and retrieving calendar
// credentials. The store holds at most one row per owner.
type Repository interface {
	// Get looks up the credential for ownerID.
	// Implementations return common.ErrNotFound when the owner has never
	// authorized calendar access.
	Get(ctx context.Context, ownerID string) (*models.CalendarCredential, error)

	// Upsert inserts the credential if the owner has none, otherwise
	// replaces the stored row in place.
	Upsert(ctx context.Context, cred *models.CalendarCredential) error

	// Delete removes the credential for ownerID. Deleting a non-existent
	// credential is not an error.
	Delete(ctx context.Context, ownerID string) error
}
