package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/qj0r9j0vc2/slack-tableflip/internal/domain/entity"
	"github.com/qj0r9j0vc2/slack-tableflip/internal/domain/repository"
)

// TeamTokenRepository provides SQLite implementation of repository.TeamTokenRepository.
type TeamTokenRepository struct {
	db *sql.DB
}

// NewTeamTokenRepository creates a new SQLite-backed team token repository.
func NewTeamTokenRepository(db *sql.DB) *TeamTokenRepository {
	return &TeamTokenRepository{db: db}
}

// Save inserts a token or replaces the one stored for the same team.
// The original created_at survives replacement.
func (r *TeamTokenRepository) Save(ctx context.Context, token *entity.TeamToken) error {
	if err := token.Validate(); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO team_tokens (team_id, access_token, user_id, scope, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(team_id) DO UPDATE SET
			access_token = excluded.access_token,
			user_id = excluded.user_id,
			scope = excluded.scope,
			updated_at = excluded.updated_at
	`,
		token.TeamID, token.AccessToken,
		nullString(token.UserID), nullString(token.Scope),
		timeToString(token.CreatedAt), timeToString(token.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert team token: %w", err)
	}

	return nil
}

// FindByTeamID retrieves the token for a team.
func (r *TeamTokenRepository) FindByTeamID(ctx context.Context, teamID string) (*entity.TeamToken, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT team_id, access_token, user_id, scope, created_at, updated_at
		FROM team_tokens WHERE team_id = ?
	`, teamID)

	return scanTeamToken(row)
}

// Delete removes a team's token.
func (r *TeamTokenRepository) Delete(ctx context.Context, teamID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM team_tokens WHERE team_id = ?`, teamID)
	if err != nil {
		return fmt.Errorf("delete team token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Count returns the number of stored tokens.
func (r *TeamTokenRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM team_tokens`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count team tokens: %w", err)
	}
	return n, nil
}

func scanTeamToken(row *sql.Row) (*entity.TeamToken, error) {
	var (
		t                    entity.TeamToken
		userID, scope        sql.NullString
		createdAt, updatedAt string
	)

	err := row.Scan(&t.TeamID, &t.AccessToken, &userID, &scope, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan team token: %w", err)
	}

	t.UserID = stringFromNull(userID)
	t.Scope = stringFromNull(scope)

	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	return &t, nil
}
