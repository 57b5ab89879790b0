package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/theracare/sessioncore/common"
	"github.com/theracare/sessioncore/logging"
	"github.com/theracare/sessioncore/models"
	"github.com/theracare/sessioncore/repositories/credentials"
)

// RefreshGuard produces a credential guaranteed valid for immediate use.
// It checks expiry synchronously before every use; there is no background
// renewal loop. Concurrent refreshes for the same owner collapse into one
// provider call via singleflight.
type RefreshGuard struct {
	repo     credentials.Repository
	provider Provider
	leeway   time.Duration
	timeout  time.Duration
	logger   logging.Logger

	group singleflight.Group

	// now is a seam for expiry tests.
	now func() time.Time
}

func NewRefreshGuard(repo credentials.Repository, provider Provider, leeway, timeout time.Duration, logger logging.Logger) *RefreshGuard {
	return &RefreshGuard{
		repo:     repo,
		provider: provider,
		leeway:   leeway,
		timeout:  timeout,
		logger:   logger.With("module", "refresh_guard"),
		now:      time.Now,
	}
}

// EnsureValid returns a live credential for ownerID.
//
// Errors: common.ErrAuthRequired when the owner has never authorized
// calendar access; common.ErrReauthRequired when the provider rejects the
// stored refresh token. A rejected refresh token will not become valid by
// retrying, so the failure is terminal for the current request.
func (g *RefreshGuard) EnsureValid(ctx context.Context, ownerID string) (*models.CalendarCredential, error) {
	v, err, _ := g.group.Do(ownerID, func() (any, error) {
		return g.ensureValid(ctx, ownerID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.CalendarCredential), nil
}

func (g *RefreshGuard) ensureValid(ctx context.Context, ownerID string) (*models.CalendarCredential, error) {
	cred, err := g.repo.Get(ctx, ownerID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrAuthRequired
		}
		return nil, fmt.Errorf("error loading credential: %w", err)
	}

	if !cred.ExpiresWithin(g.leeway, g.now()) {
		return cred, nil
	}

	g.logger.Info(ctx, "access token expired, refreshing", "owner_id", ownerID)

	refreshCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	tok, err := g.provider.Refresh(refreshCtx, cred.RefreshToken)
	if err != nil {
		g.logger.Warn(ctx, "token refresh rejected", "owner_id", ownerID, "error", err.Error())
		return nil, fmt.Errorf("%w: %w", common.ErrReauthRequired, err)
	}

	cred.AccessToken = tok.AccessToken
	cred.Expiry = tok.Expiry
	// The provider reissues a refresh token only sometimes; keep the stored
	// one otherwise.
	if tok.RefreshToken != "" {
		cred.RefreshToken = tok.RefreshToken
	}
	if tok.Scope != "" {
		cred.Scope = tok.Scope
	}

	if err := g.repo.Upsert(ctx, cred); err != nil {
		return nil, fmt.Errorf("error storing refreshed credential: %w", err)
	}

	return cred, nil
}
