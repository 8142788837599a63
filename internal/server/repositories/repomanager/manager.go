package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/alarmify/internal/dbx"
	"github.com/dmitrijs2005/alarmify/internal/server/repositories/devices"
	"github.com/dmitrijs2005/alarmify/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/alarmify/internal/server/repositories/snapshots"
	"github.com/dmitrijs2005/alarmify/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Devices(db dbx.DBTX) devices.Repository
	Snapshots(db dbx.DBTX) snapshots.Repository
}
