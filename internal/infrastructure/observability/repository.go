package observability

import (
	"context"
	"errors"
	"time"

	"github.com/qj0r9j0vc2/slack-tableflip/internal/domain/entity"
	"github.com/qj0r9j0vc2/slack-tableflip/internal/domain/repository"
)

const teamTokenEntity = "team_token"

// InstrumentedTeamTokenRepository records operation counts and latency
// around any TeamTokenRepository.
type InstrumentedTeamTokenRepository struct {
	next    repository.TeamTokenRepository
	metrics *Metrics
}

// NewInstrumentedTeamTokenRepository wraps next. A nil metrics returns next unchanged.
func NewInstrumentedTeamTokenRepository(next repository.TeamTokenRepository, metrics *Metrics) repository.TeamTokenRepository {
	if metrics == nil {
		return next
	}
	return &InstrumentedTeamTokenRepository{next: next, metrics: metrics}
}

func (r *InstrumentedTeamTokenRepository) record(ctx context.Context, op string, start time.Time, err error) {
	// A miss is an answer, not a failure
	success := err == nil || errors.Is(err, repository.ErrNotFound)
	r.metrics.RecordRepositoryOperation(ctx, op, teamTokenEntity, time.Since(start), success)
}

func (r *InstrumentedTeamTokenRepository) Save(ctx context.Context, token *entity.TeamToken) error {
	start := time.Now()
	err := r.next.Save(ctx, token)
	r.record(ctx, "save", start, err)
	return err
}

func (r *InstrumentedTeamTokenRepository) FindByTeamID(ctx context.Context, teamID string) (*entity.TeamToken, error) {
	start := time.Now()
	token, err := r.next.FindByTeamID(ctx, teamID)
	r.record(ctx, "find_by_team_id", start, err)
	return token, err
}

func (r *InstrumentedTeamTokenRepository) Delete(ctx context.Context, teamID string) error {
	start := time.Now()
	err := r.next.Delete(ctx, teamID)
	r.record(ctx, "delete", start, err)
	return err
}

func (r *InstrumentedTeamTokenRepository) Count(ctx context.Context) (int, error) {
	start := time.Now()
	n, err := r.next.Count(ctx)
	r.record(ctx, "count", start, err)
	return n, err
}
