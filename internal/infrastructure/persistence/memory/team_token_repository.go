package memory

import (
	"context"
	"sync"

	"github.com/qj0r9j0vc2/slack-tableflip/internal/domain/entity"
	"github.com/qj0r9j0vc2/slack-tableflip/internal/domain/repository"
)

// TeamTokenRepository provides an in-memory implementation of repository.TeamTokenRepository.
// Thread-safe for concurrent access.
type TeamTokenRepository struct {
	mu     sync.RWMutex
	tokens map[string]*entity.TeamToken // team ID -> token
}

// NewTeamTokenRepository creates a new in-memory team token repository.
func NewTeamTokenRepository() *TeamTokenRepository {
	return &TeamTokenRepository{
		tokens: make(map[string]*entity.TeamToken),
	}
}

// Save inserts or replaces the token for token.TeamID.
func (r *TeamTokenRepository) Save(ctx context.Context, token *entity.TeamToken) error {
	if err := token.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Store a copy to prevent external mutations
	tokenCopy := *token
	if existing, ok := r.tokens[token.TeamID]; ok {
		tokenCopy.CreatedAt = existing.CreatedAt
	}
	r.tokens[token.TeamID] = &tokenCopy

	return nil
}

// FindByTeamID retrieves the token for a team.
func (r *TeamTokenRepository) FindByTeamID(ctx context.Context, teamID string) (*entity.TeamToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	token, ok := r.tokens[teamID]
	if !ok {
		return nil, repository.ErrNotFound
	}

	// Return a copy to prevent external mutations
	tokenCopy := *token
	return &tokenCopy, nil
}

// Delete removes a team's token.
func (r *TeamTokenRepository) Delete(ctx context.Context, teamID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tokens[teamID]; !ok {
		return repository.ErrNotFound
	}
	delete(r.tokens, teamID)

	return nil
}

// Count returns the number of stored tokens.
func (r *TeamTokenRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.tokens), nil
}
