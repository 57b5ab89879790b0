package repomanager

import (
	"context"
	"database/sql"

	"github.com/theracare/sessioncore/dbx"
	"github.com/theracare/sessioncore/repositories/credentials"
	"github.com/theracare/sessioncore/repositories/sessions"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Sessions(db dbx.DBTX) sessions.Repository
	Credentials(db dbx.DBTX) credentials.Repository
}
