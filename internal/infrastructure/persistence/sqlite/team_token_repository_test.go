package sqlite

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qj0r9j0vc2/slack-tableflip/internal/domain/entity"
	"github.com/qj0r9j0vc2/slack-tableflip/internal/domain/repository"
)

func setupTeamTokenTest(t *testing.T) *TeamTokenRepository {
	t.Helper()

	db, err := NewDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.Migrate(context.Background()))

	return NewRepositories(db).TeamToken
}

func TestTeamTokenRepository_SaveAndFind(t *testing.T) {
	repo := setupTeamTokenTest(t)
	ctx := context.Background()

	token, err := entity.NewTeamToken("T1", "xoxp-1", "U1", "commands,chat:write")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, token))

	found, err := repo.FindByTeamID(ctx, "T1")
	require.NoError(t, err)
	assert.Equal(t, "T1", found.TeamID)
	assert.Equal(t, "xoxp-1", found.AccessToken)
	assert.Equal(t, "U1", found.UserID)
	assert.Equal(t, "commands,chat:write", found.Scope)
	assert.True(t, token.CreatedAt.Equal(found.CreatedAt))
}

func TestTeamTokenRepository_FindMissing(t *testing.T) {
	repo := setupTeamTokenTest(t)

	found, err := repo.FindByTeamID(context.Background(), "T404")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Nil(t, found)
}

func TestTeamTokenRepository_OptionalFieldsRoundTripEmpty(t *testing.T) {
	repo := setupTeamTokenTest(t)
	ctx := context.Background()

	token, err := entity.NewTeamToken("T1", "xoxp-1", "", "")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, token))

	found, err := repo.FindByTeamID(ctx, "T1")
	require.NoError(t, err)
	assert.Empty(t, found.UserID)
	assert.Empty(t, found.Scope)
}

func TestTeamTokenRepository_SaveReplacesAndKeepsCreatedAt(t *testing.T) {
	repo := setupTeamTokenTest(t)
	ctx := context.Background()

	token, err := entity.NewTeamToken("T1", "xoxp-1", "U1", "")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, token))

	rotated := *token
	rotated.CreatedAt = token.CreatedAt.Add(time.Hour)
	require.NoError(t, rotated.Rotate("xoxp-2"))
	require.NoError(t, repo.Save(ctx, &rotated))

	found, err := repo.FindByTeamID(ctx, "T1")
	require.NoError(t, err)
	assert.Equal(t, "xoxp-2", found.AccessToken)
	assert.True(t, token.CreatedAt.Equal(found.CreatedAt))
	assert.True(t, rotated.UpdatedAt.Equal(found.UpdatedAt))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestTeamTokenRepository_RejectsInvalid(t *testing.T) {
	repo := setupTeamTokenTest(t)

	err := repo.Save(context.Background(), &entity.TeamToken{TeamID: "T1"})
	assert.ErrorIs(t, err, entity.ErrInvalidTeamToken)
}

func TestTeamTokenRepository_Delete(t *testing.T) {
	repo := setupTeamTokenTest(t)
	ctx := context.Background()

	token, err := entity.NewTeamToken("T1", "xoxp-1", "U1", "")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, token))

	require.NoError(t, repo.Delete(ctx, "T1"))
	assert.ErrorIs(t, repo.Delete(ctx, "T1"), repository.ErrNotFound)

	_, err = repo.FindByTeamID(ctx, "T1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTeamTokenRepository_ConcurrentSaves(t *testing.T) {
	repo := setupTeamTokenTest(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			token, err := entity.NewTeamToken("T"+string(rune('A'+i)), "xoxp", "U", "")
			if assert.NoError(t, err) {
				assert.NoError(t, repo.Save(ctx, token))
			}
		}(i)
	}
	wg.Wait()

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, count)
}
