package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/qj0r9j0vc2/slack-tableflip/internal/domain/entity"
	"github.com/qj0r9j0vc2/slack-tableflip/internal/domain/repository"
)

// maxSaveAttempts bounds retries of an upsert that hit a deadlock.
const maxSaveAttempts = 3

// TeamTokenRepository provides MySQL implementation of repository.TeamTokenRepository.
// Writes go to the primary; reads may be served by a replica.
type TeamTokenRepository struct {
	db *DB
}

// NewTeamTokenRepository creates a new MySQL-backed team token repository.
func NewTeamTokenRepository(db *DB) *TeamTokenRepository {
	return &TeamTokenRepository{db: db}
}

// Save inserts a token or replaces the one stored for the same team.
func (r *TeamTokenRepository) Save(ctx context.Context, token *entity.TeamToken) error {
	if err := token.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO team_tokens (team_id, access_token, user_id, scope, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			access_token = VALUES(access_token),
			user_id = VALUES(user_id),
			scope = VALUES(scope),
			updated_at = VALUES(updated_at)
	`

	var err error
	for attempt := 1; attempt <= maxSaveAttempts; attempt++ {
		_, err = r.db.Primary().ExecContext(ctx, query,
			token.TeamID, token.AccessToken,
			nullString(token.UserID), nullString(token.Scope),
			timeToTimestamp(token.CreatedAt), timeToTimestamp(token.UpdatedAt),
		)
		if err == nil || !isRetryable(err) || ctx.Err() != nil {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("upsert team token: %w", mapError(err))
	}

	return nil
}

// FindByTeamID retrieves the token for a team.
func (r *TeamTokenRepository) FindByTeamID(ctx context.Context, teamID string) (*entity.TeamToken, error) {
	row := r.db.Replica().QueryRowContext(ctx, `
		SELECT team_id, access_token, user_id, scope, created_at, updated_at
		FROM team_tokens WHERE team_id = ?
	`, teamID)

	var (
		t             entity.TeamToken
		userID, scope sql.NullString
	)
	if err := row.Scan(&t.TeamID, &t.AccessToken, &userID, &scope, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if mapped := mapError(err); mapped == repository.ErrNotFound {
			return nil, mapped
		}
		return nil, fmt.Errorf("scan team token: %w", err)
	}

	t.UserID = stringValue(userID)
	t.Scope = stringValue(scope)
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()

	return &t, nil
}

// Delete removes a team's token.
func (r *TeamTokenRepository) Delete(ctx context.Context, teamID string) error {
	result, err := r.db.Primary().ExecContext(ctx, `DELETE FROM team_tokens WHERE team_id = ?`, teamID)
	if err != nil {
		return fmt.Errorf("delete team token: %w", mapError(err))
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
	if err := r.db.Replica().QueryRowContext(ctx, `SELECT COUNT(*) FROM team_tokens`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count team tokens: %w", err)
	}
	return n, nil
}
