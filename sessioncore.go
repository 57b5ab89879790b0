// Package sessioncore wires together the confidentiality and calendar-sync
// core for a telehealth practice: encrypted session notes, the Google
// calendar credential lifecycle, event sync, and verification-document
// presigning. The host application embeds a Core and exposes whatever
// transport it wants on top.
package sessioncore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/theracare/sessioncore/calendar"
	"github.com/theracare/sessioncore/common"
	"github.com/theracare/sessioncore/config"
	"github.com/theracare/sessioncore/cryptox"
	"github.com/theracare/sessioncore/dbx"
	"github.com/theracare/sessioncore/documents"
	"github.com/theracare/sessioncore/logging"
	"github.com/theracare/sessioncore/models"
	"github.com/theracare/sessioncore/notes"
	"github.com/theracare/sessioncore/repositories/repomanager"
)

// Core bundles the ready-to-use services. All fields are initialized by
// NewCore and safe for concurrent use.
type Core struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	repos  repomanager.RepositoryManager

	Notes     *notes.Service
	Guard     *calendar.RefreshGuard
	Sync      *calendar.Sync
	Flow      *calendar.Flow
	Documents *documents.Service
}

// NewCore validates the configuration, connects to PostgreSQL, runs schema
// migrations and constructs every service. Missing secrets are a
// construction error, not a deferred runtime one.
func NewCore(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Core, error) {
	if logger == nil {
		logger = logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	key := cryptox.DeriveKey([]byte(cfg.NoteMasterKey), []byte(cfg.NoteKeySalt))
	cipher, err := cryptox.NewCipher(key)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("cipher init error: %w", err)
	}

	sessionRepo := rm.Sessions(db)
	credRepo := rm.Credentials(db)

	provider := calendar.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
	guard := calendar.NewRefreshGuard(credRepo, provider, cfg.TokenExpiryLeeway, cfg.CalendarCallTimeout, logger)

	return &Core{
		config:    cfg,
		logger:    logger,
		db:        db,
		repos:     rm,
		Notes:     notes.NewService(sessionRepo, cipher, logger),
		Guard:     guard,
		Sync:      calendar.NewSync(guard, provider, cfg.CalendarCallTimeout, logger),
		Flow:      calendar.NewFlow(provider, credRepo, []byte(cfg.StateSecretKey), cfg.StateTokenValidity, logger),
		Documents: documents.NewService(cfg),
	}, nil
}

func validateConfig(cfg *config.Config) error {
	if cfg.NoteMasterKey == "" || cfg.NoteKeySalt == "" {
		return fmt.Errorf("config error: note master key and salt are required")
	}
	if cfg.StateSecretKey == "" {
		return fmt.Errorf("config error: state secret key is required")
	}
	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" || cfg.GoogleRedirectURL == "" {
		return fmt.Errorf("config error: calendar OAuth client settings are required")
	}
	return nil
}

// ScheduleSession books a therapy session and mirrors it to the therapist's
// calendar. The session row and its event link are written in one
// transaction, so a half-linked row is never visible. When the calendar is
// unreachable or the remote insert fails, the session is still booked; the
// event link is simply absent and can be synced later.
func (c *Core) ScheduleSession(ctx context.Context, therapistID, clientID string, attendees []string, start time.Time, durationMins int) (*models.Session, error) {
	session := &models.Session{
		ID:           uuid.NewString(),
		TherapistID:  therapistID,
		ClientID:     clientID,
		StartsAt:     start,
		DurationMins: durationMins,
	}

	ref, err := c.Sync.CreateSessionEvent(ctx, therapistID, attendees, start, durationMins)
	if err != nil {
		c.logger.Warn(ctx, "booking without calendar event",
			"therapist_id", therapistID, "error", err.Error())
		ref = nil
	}

	err = dbx.WithTx(ctx, c.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := c.repos.Sessions(tx)
		if err := repo.Create(ctx, session); err != nil {
			return err
		}
		if ref != nil {
			return repo.SetEventRef(ctx, session.ID, ref)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error booking session: %w", err)
	}

	session.Event = ref
	return session, nil
}

// CancelSession removes the session's remote calendar event and clears the
// stored link. Only the assigned therapist may cancel. A remote event that
// is already gone counts as success.
func (c *Core) CancelSession(ctx context.Context, sessionID, therapistID string) error {
	repo := c.repos.Sessions(c.db)

	session, err := repo.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.RoleOf(therapistID) != models.RoleTherapist {
		return common.ErrForbidden
	}

	if session.Event != nil {
		if err := c.Sync.DeleteSessionEvent(ctx, therapistID, session.Event.RemoteEventID); err != nil {
			return err
		}
	}
	return repo.ClearEventRef(ctx, sessionID)
}

// Close releases the database connection. The Core is unusable afterwards.
func (c *Core) Close() error {
	return c.db.Close()
}

