package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qj0r9j0vc2/slack-tableflip/internal/domain/entity"
	"github.com/qj0r9j0vc2/slack-tableflip/internal/domain/repository"
)

func TestTeamTokenRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewTeamTokenRepository()

	t.Run("find missing team", func(t *testing.T) {
		token, err := repo.FindByTeamID(ctx, "T404")
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.Nil(t, token)
	})

	t.Run("save and find", func(t *testing.T) {
		token, err := entity.NewTeamToken("T1", "xoxp-1", "U1", "chat:write")
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, token))

		found, err := repo.FindByTeamID(ctx, "T1")
		require.NoError(t, err)
		assert.Equal(t, "xoxp-1", found.AccessToken)

		found.AccessToken = "mutated"
		again, err := repo.FindByTeamID(ctx, "T1")
		require.NoError(t, err)
		assert.Equal(t, "xoxp-1", again.AccessToken)
	})

	t.Run("save replaces and keeps created_at", func(t *testing.T) {
		first, err := repo.FindByTeamID(ctx, "T1")
		require.NoError(t, err)

		replacement := &entity.TeamToken{
			TeamID:      "T1",
			AccessToken: "xoxp-2",
			CreatedAt:   time.Now().Add(time.Hour),
			UpdatedAt:   time.Now().Add(time.Hour),
		}
		require.NoError(t, repo.Save(ctx, replacement))

		found, err := repo.FindByTeamID(ctx, "T1")
		require.NoError(t, err)
		assert.Equal(t, "xoxp-2", found.AccessToken)
		assert.Equal(t, first.CreatedAt, found.CreatedAt)

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("invalid token rejected", func(t *testing.T) {
		err := repo.Save(ctx, &entity.TeamToken{TeamID: "T2"})
		assert.ErrorIs(t, err, entity.ErrInvalidTeamToken)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, "T1"))
		assert.ErrorIs(t, repo.Delete(ctx, "T1"), repository.ErrNotFound)

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})
}
