package mysql

import (
	"context"
	"fmt"

	"github.com/qj0r9j0vc2/slack-tableflip/internal/domain/repository"
	"github.com/qj0r9j0vc2/slack-tableflip/internal/infrastructure/config"
)

// Repositories holds all MySQL repository implementations.
type Repositories struct {
	TeamToken repository.TeamTokenRepository
}

// NewRepositories connects, runs migrations, and returns all repositories.
func NewRepositories(ctx context.Context, cfg *config.MySQLConfig) (*Repositories, *DB, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("mysql config is required")
	}

	db, err := NewDB(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("creating database connection: %w", err)
	}

	migrator := NewMigrator(db.Primary())
	if _, err := migrator.Up(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("running migrations: %w", err)
	}

	repos := &Repositories{
		TeamToken: NewTeamTokenRepository(db),
	}

	return repos, db, nil
}
