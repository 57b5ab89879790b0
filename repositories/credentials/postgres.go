// Package credentials provides a PostgreSQL-backed repository for the
// per-therapist calendar OAuth credential set.
package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/theracare/sessioncore/common"
	"github.com/theracare/sessioncore/dbx"
	"github.com/theracare/sessioncore/models"
)

// PostgresRepository implements credential storage over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Get returns the credential row for ownerID.
// If not found, it returns common.ErrNotFound.
func (r *PostgresRepository) Get(ctx context.Context, ownerID string) (*models.CalendarCredential, error) {
	query := `
		SELECT access_token, refresh_token, expires_at, scope, updated_at
		FROM calendar_credentials
		WHERE owner_id = $1
	`
	cred := &models.CalendarCredential{OwnerID: ownerID}
	var expiresAt sql.NullTime
	if err := r.db.QueryRowContext(ctx, query, ownerID).
		Scan(&cred.AccessToken, &cred.RefreshToken, &expiresAt, &cred.Scope, &cred.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if expiresAt.Valid {
		cred.Expiry = expiresAt.Time
	}
	return cred, nil
}

// Upsert inserts or replaces the credential for cred.OwnerID. The primary
// key on owner_id guarantees the one-credential-per-owner invariant.
func (r *PostgresRepository) Upsert(ctx context.Context, cred *models.CalendarCredential) error {
	query := `
		INSERT INTO calendar_credentials (owner_id, access_token, refresh_token, expires_at, scope, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (owner_id)
		DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			expires_at = EXCLUDED.expires_at,
			scope = EXCLUDED.scope,
			updated_at = EXCLUDED.updated_at
	`
	var expiresAt any
	if !cred.Expiry.IsZero() {
		expiresAt = cred.Expiry
	}
	if _, err := r.db.ExecContext(ctx, query,
		cred.OwnerID, cred.AccessToken, cred.RefreshToken, expiresAt, cred.Scope, time.Now()); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Delete removes the credential for ownerID.
func (r *PostgresRepository) Delete(ctx context.Context, ownerID string) error {
	query := `
		DELETE FROM calendar_credentials
		WHERE owner_id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, ownerID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
