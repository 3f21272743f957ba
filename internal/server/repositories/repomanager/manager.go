// Package repomanager wires concrete repositories to a database handle and
// owns schema migrations. Services ask the manager for repositories bound
// either to the pooled *sql.DB or to a transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/outfitcal/daybook/internal/dbx"
	"github.com/outfitcal/daybook/internal/server/repositories/dayrecords"
	"github.com/outfitcal/daybook/internal/server/repositories/refreshtokens"
	"github.com/outfitcal/daybook/internal/server/repositories/settings"
	"github.com/outfitcal/daybook/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Settings(db dbx.DBTX) settings.Repository
	DayRecords(db dbx.DBTX) dayrecords.Repository
}
