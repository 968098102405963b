package observability

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qj0r9j0vc2/slack-tableflip/internal/domain/entity"
	"github.com/qj0r9j0vc2/slack-tableflip/internal/domain/repository"
	"github.com/qj0r9j0vc2/slack-tableflip/internal/infrastructure/persistence/memory"
)

func scrape(t *testing.T, tel *Telemetry) string {
	t.Helper()
	rec := httptest.NewRecorder()
	tel.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func newTestTelemetry(t *testing.T) *Telemetry {
	t.Helper()
	tel, err := NewTelemetry("", "test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = tel.Shutdown(context.Background()) })
	return tel
}

func TestTelemetry_ExposesRecordedMetrics(t *testing.T) {
	tel := newTestTelemetry(t)
	ctx := context.Background()

	tel.Metrics.RecordCommand(ctx, "/flip", "posted", 20*time.Millisecond)
	tel.Metrics.RecordDelivery(ctx, "slack", true, 15*time.Millisecond, 1)
	tel.Metrics.RecordHTTPRequest(ctx, http.MethodPost, "/slack/commands", http.StatusOK, 25*time.Millisecond)
	tel.Metrics.RecordBreakerTransition(ctx, "slack-delivery", "closed", "open")

	body := scrape(t, tel)
	assert.Contains(t, body, "slash_commands_handled")
	assert.Contains(t, body, `outcome="posted"`)
	assert.Contains(t, body, "deliveries_retries")
	assert.Contains(t, body, "http_server_requests")
	assert.Contains(t, body, "circuit_breaker_transitions")
	assert.Contains(t, body, "go_goroutines")
}

func TestTelemetry_IndependentRegistries(t *testing.T) {
	// Each instance owns its registry, so building two must not collide
	first := newTestTelemetry(t)
	second := newTestTelemetry(t)

	first.Metrics.RecordCommand(context.Background(), "/flip", "help", time.Millisecond)

	assert.Contains(t, scrape(t, first), `outcome="help"`)
	assert.NotContains(t, scrape(t, second), `outcome="help"`)
}

func TestInstrumentedTeamTokenRepository(t *testing.T) {
	tel := newTestTelemetry(t)
	ctx := context.Background()
	repo := NewInstrumentedTeamTokenRepository(memory.NewTeamTokenRepository(), tel.Metrics)

	token, err := entity.NewTeamToken("T1", "xoxp-1", "U1", "chat:write")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, token))

	got, err := repo.FindByTeamID(ctx, "T1")
	require.NoError(t, err)
	assert.Equal(t, "xoxp-1", got.AccessToken)

	_, err = repo.FindByTeamID(ctx, "T404")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, repo.Delete(ctx, "T1"))

	body := scrape(t, tel)
	assert.Contains(t, body, `operation="find_by_team_id"`)
	assert.Contains(t, body, `entity="team_token"`)
	assert.NotContains(t, body, `success="false"`)
}

func TestNewInstrumentedTeamTokenRepository_NilMetrics(t *testing.T) {
	inner := memory.NewTeamTokenRepository()
	assert.Same(t, inner, NewInstrumentedTeamTokenRepository(inner, nil))
}
