package app

import (
	"context"
	"fmt"

	"github.com/qj0r9j0vc2/slack-tableflip/internal/infrastructure/observability"
	"github.com/qj0r9j0vc2/slack-tableflip/internal/infrastructure/persistence/memory"
	"github.com/qj0r9j0vc2/slack-tableflip/internal/infrastructure/persistence/mysql"
	"github.com/qj0r9j0vc2/slack-tableflip/internal/infrastructure/persistence/sqlite"
)

func (app *Application) initializeStorage() error {
	log := app.logger.Get()

	switch app.config.Storage.Type {
	case "mysql":
		repos, db, err := mysql.NewRepositories(context.Background(), &app.config.Storage.MySQL)
		if err != nil {
			return fmt.Errorf("mysql init: %w", err)
		}
		app.teamTokens = repos.TeamToken
		app.dbPinger = db
		app.dbCloser = db

		log.Info("MySQL storage initialized",
			"host", app.config.Storage.MySQL.Primary.Host,
			"database", app.config.Storage.MySQL.Primary.Database,
			"replica", app.config.Storage.MySQL.Replica.Enabled,
		)

	case "sqlite":
		db, err := sqlite.NewDB(app.config.Storage.SQLite.Path)
		if err != nil {
			return fmt.Errorf("sqlite init: %w", err)
		}

		if err := db.Migrate(context.Background()); err != nil {
			db.Close()
			return fmt.Errorf("sqlite migration: %w", err)
		}

		app.teamTokens = sqlite.NewRepositories(db).TeamToken
		app.dbPinger = db
		app.dbCloser = db

		log.Info("SQLite storage initialized",
			"path", app.config.Storage.SQLite.Path,
		)

	case "memory", "":
		app.teamTokens = memory.NewTeamTokenRepository()

		log.Info("in-memory storage initialized")

	default:
		return fmt.Errorf("unknown storage type: %s", app.config.Storage.Type)
	}

	app.teamTokens = observability.NewInstrumentedTeamTokenRepository(app.teamTokens, app.telemetry.Metrics)
	return nil
}
