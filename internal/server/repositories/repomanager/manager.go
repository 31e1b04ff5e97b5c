package repomanager

import (
	"context"
	"database/sql"

	"github.com/bierclub/bier/internal/dbx"
	"github.com/bierclub/bier/internal/server/repositories/messages"
	"github.com/bierclub/bier/internal/server/repositories/sessions"
	"github.com/bierclub/bier/internal/server/repositories/tokens"
	"github.com/bierclub/bier/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to either the pool or a
// transaction, so services can run several of them inside one dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	Tokens(db dbx.DBTX) tokens.Repository
	Messages(db dbx.DBTX) messages.Repository
}
