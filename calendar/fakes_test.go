package calendar

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/theracare/sessioncore/common"
	"github.com/theracare/sessioncore/logging"
	"github.com/theracare/sessioncore/models"
)

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.DiscardHandler))
}

// fakeCredRepo is an in-memory credentials.Repository.
type fakeCredRepo struct {
	mu      sync.Mutex
	creds   map[string]*models.CalendarCredential
	upserts int
}

func newFakeCredRepo() *fakeCredRepo {
	return &fakeCredRepo{creds: make(map[string]*models.CalendarCredential)}
}

func (f *fakeCredRepo) Get(_ context.Context, ownerID string) (*models.CalendarCredential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.creds[ownerID]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCredRepo) Upsert(_ context.Context, cred *models.CalendarCredential) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *cred
	f.creds[cred.OwnerID] = &cp
	f.upserts++
	return nil
}

func (f *fakeCredRepo) Delete(_ context.Context, ownerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.creds, ownerID)
	return nil
}

// fakeProvider is a scriptable Provider.
type fakeProvider struct {
	mu sync.Mutex

	refreshCalls  int
	refreshResult *Token
	refreshErr    error
	refreshDelay  time.Duration

	exchangeTok *Token
	exchangeErr error

	insertRef     *models.CalendarEventRef
	insertErr     error
	lastInsertReq *EventRequest

	deleteErr     error
	deletedEvents []string
}

func (f *fakeProvider) AuthCodeURL(state string) string {
	return "https://consent.example/auth?state=" + state
}

func (f *fakeProvider) Exchange(_ context.Context, code string) (*Token, error) {
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return f.exchangeTok, nil
}

func (f *fakeProvider) Refresh(_ context.Context, refreshToken string) (*Token, error) {
	f.mu.Lock()
	f.refreshCalls++
	delay := f.refreshDelay
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return f.refreshResult, nil
}

func (f *fakeProvider) RefreshCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshCalls
}

func (f *fakeProvider) InsertEvent(_ context.Context, _ *models.CalendarCredential, req *EventRequest) (*models.CalendarEventRef, error) {
	f.mu.Lock()
	f.lastInsertReq = req
	f.mu.Unlock()
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	return f.insertRef, nil
}

func (f *fakeProvider) DeleteEvent(_ context.Context, _ *models.CalendarCredential, remoteEventID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	f.deletedEvents = append(f.deletedEvents, remoteEventID)
	f.mu.Unlock()
	return nil
}
