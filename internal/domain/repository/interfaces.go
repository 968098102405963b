package repository

import (
	"context"

	"github.com/qj0r9j0vc2/slack-tableflip/internal/domain/entity"
)

// TeamTokenRepository defines the contract for per-team OAuth token persistence.
type TeamTokenRepository interface {
	// Save inserts a token, or replaces the token already stored for the team.
	Save(ctx context.Context, token *entity.TeamToken) error

	// FindByTeamID retrieves the token for a team.
	// Returns ErrNotFound if the team never installed the app.
	FindByTeamID(ctx context.Context, teamID string) (*entity.TeamToken, error)

	// Delete removes a team's token.
	// Returns ErrNotFound if the team has no token.
	Delete(ctx context.Context, teamID string) error

	// Count returns the number of installed teams.
	Count(ctx context.Context) (int, error)
}
