package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calendarapi "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/theracare/sessioncore/models"
)

// calendarID is the calendar events are written to: the owner's primary
// calendar.
const calendarID = "primary"

// GoogleProvider implements Provider against the Google Calendar API.
type GoogleProvider struct {
	oauth *oauth2.Config
}

// NewGoogleProvider builds a provider for the given OAuth client settings.
// Offline access is requested so the consent flow yields a refresh token.
func NewGoogleProvider(clientID, clientSecret, redirectURL string) *GoogleProvider {
	return &GoogleProvider{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{calendarapi.CalendarEventsScope},
		},
	}
}

// AuthCodeURL builds the consent URL. ApprovalForce makes Google reissue a
// refresh token even when the user consented before.
func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades an authorization code for a token set.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*Token, error) {
	tok, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange failed: %w", err)
	}
	return fromOauth2Token(tok), nil
}

// Refresh obtains a fresh access token for the stored refresh token.
func (p *GoogleProvider) Refresh(ctx context.Context, refreshToken string) (*Token, error) {
	src := p.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("token refresh failed: %w", err)
	}
	return fromOauth2Token(tok), nil
}

func fromOauth2Token(tok *oauth2.Token) *Token {
	scope, _ := tok.Extra("scope").(string)
	return &Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
		Scope:        scope,
	}
}

// newServiceForToken is a seam for testing the event calls without the real
// Google backend.
var newServiceForToken = func(ctx context.Context, client *http.Client) (*calendarapi.Service, error) {
	return calendarapi.NewService(ctx, option.WithHTTPClient(client))
}

func (p *GoogleProvider) service(ctx context.Context, cred *models.CalendarCredential) (*calendarapi.Service, error) {
	tok := &oauth2.Token{
		AccessToken:  cred.AccessToken,
		RefreshToken: cred.RefreshToken,
		Expiry:       cred.Expiry,
	}
	return newServiceForToken(ctx, p.oauth.Client(ctx, tok))
}

// InsertEvent creates the session event with a conference link request on
// the owner's primary calendar.
func (p *GoogleProvider) InsertEvent(ctx context.Context, cred *models.CalendarCredential, req *EventRequest) (*models.CalendarEventRef, error) {
	svc, err := p.service(ctx, cred)
	if err != nil {
		return nil, fmt.Errorf("calendar client init failed: %w", err)
	}

	event := &calendarapi.Event{
		Summary: req.Summary,
		Start:   &calendarapi.EventDateTime{DateTime: req.Start.Format(time.RFC3339)},
		End:     &calendarapi.EventDateTime{DateTime: req.Start.Add(req.Duration).Format(time.RFC3339)},
		ConferenceData: &calendarapi.ConferenceData{
			CreateRequest: &calendarapi.CreateConferenceRequest{
				RequestId: uuid.NewString(),
				ConferenceSolutionKey: &calendarapi.ConferenceSolutionKey{
					Type: "hangoutsMeet",
				},
			},
		},
	}
	for _, email := range req.Attendees {
		event.Attendees = append(event.Attendees, &calendarapi.EventAttendee{Email: email})
	}

	created, err := svc.Events.Insert(calendarID, event).
		ConferenceDataVersion(1).
		SendUpdates("all").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("event insert failed: %w", err)
	}

	return &models.CalendarEventRef{
		RemoteEventID: created.Id,
		MeetingLink:   created.HangoutLink,
	}, nil
}

// DeleteEvent removes the remote event. 404 and 410 responses map to
// ErrEventGone.
func (p *GoogleProvider) DeleteEvent(ctx context.Context, cred *models.CalendarCredential, remoteEventID string) error {
	svc, err := p.service(ctx, cred)
	if err != nil {
		return fmt.Errorf("calendar client init failed: %w", err)
	}

	if err := svc.Events.Delete(calendarID, remoteEventID).Context(ctx).Do(); err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && (apiErr.Code == http.StatusNotFound || apiErr.Code == http.StatusGone) {
			return ErrEventGone
		}
		return fmt.Errorf("event delete failed: %w", err)
	}
	return nil
}
