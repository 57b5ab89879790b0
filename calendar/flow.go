package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/theracare/sessioncore/common"
	"github.com/theracare/sessioncore/logging"
	"github.com/theracare/sessioncore/models"
	"github.com/theracare/sessioncore/repositories/credentials"
)

// Flow implements the calendar authorization round-trip: it hands out the
// provider consent URL with a signed state token, and on callback verifies
// the state, exchanges the code, and stores the resulting credential.
//
// The state token is an HS256 JWT carrying the owner id, so the callback
// needs no server-side state and a forged or expired state is rejected.
type Flow struct {
	provider Provider
	repo     credentials.Repository
	secret   []byte
	validity time.Duration
	logger   logging.Logger
}

func NewFlow(provider Provider, repo credentials.Repository, stateSecret []byte, stateValidity time.Duration, logger logging.Logger) *Flow {
	return &Flow{
		provider: provider,
		repo:     repo,
		secret:   stateSecret,
		validity: stateValidity,
		logger:   logger.With("module", "calendar_flow"),
	}
}

type stateClaims struct {
	jwt.RegisteredClaims
	OwnerID string `json:"owner_id"`
}

// AuthorizeURL returns the provider consent URL for ownerID.
func (f *Flow) AuthorizeURL(ownerID string) (string, error) {
	state, err := f.signState(ownerID)
	if err != nil {
		return "", fmt.Errorf("error signing state: %w", err)
	}
	return f.provider.AuthCodeURL(state), nil
}

func (f *Flow) signState(ownerID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, stateClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(f.validity)),
		},
		OwnerID: ownerID,
	})
	return token.SignedString(f.secret)
}

func (f *Flow) verifyState(state string) (string, error) {
	claims := &stateClaims{}
	token, err := jwt.ParseWithClaims(state, claims, func(t *jwt.Token) (any, error) {
		return f.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid || claims.OwnerID == "" {
		return "", common.ErrInvalidState
	}
	return claims.OwnerID, nil
}

// HandleCallback completes the flow: verifies the state token, exchanges
// the authorization code, and upserts the owner's credential. Returns the
// owner id the credential now belongs to.
func (f *Flow) HandleCallback(ctx context.Context, state, code string) (string, error) {
	ownerID, err := f.verifyState(state)
	if err != nil {
		return "", err
	}

	tok, err := f.provider.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("error exchanging code: %w", err)
	}

	cred := &models.CalendarCredential{
		OwnerID:      ownerID,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
		Scope:        tok.Scope,
	}
	if err := f.repo.Upsert(ctx, cred); err != nil {
		return "", fmt.Errorf("error storing credential: %w", err)
	}

	f.logger.Info(ctx, "calendar access authorized", "owner_id", ownerID)
	return ownerID, nil
}
