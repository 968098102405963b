package server

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qj0r9j0vc2/slack-tableflip/internal/adapter/dto"
	"github.com/qj0r9j0vc2/slack-tableflip/internal/adapter/handler"
	"github.com/qj0r9j0vc2/slack-tableflip/internal/adapter/presenter"
	"github.com/qj0r9j0vc2/slack-tableflip/internal/infrastructure/config"
)

const testSecret = "8f742231b10e8888abcd99yyyzzz85a5"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type helpExecutor struct{}

func (helpExecutor) Execute(context.Context, *dto.SlackCommandDTO) (*dto.FlipCommandOutput, error) {
	return &dto.FlipCommandOutput{Outcome: dto.FlipOutcomeHelp}, nil
}

func newTestRouter(withCommands bool) http.Handler {
	handlers := &Handlers{
		Health: handler.NewHealthHandler(),
		Ready:  handler.NewReadyHandler(),
		Info: handler.NewInfoHandler(handler.NewProjectInfo(config.AppConfig{
			Name:    "slack-tableflip",
			BaseURL: "https://flip.example.com",
		}, []string{"/flip"})),
	}
	if withCommands {
		handlers.SlackCommands = handler.NewSlackCommandsHandler(
			helpExecutor{}, presenter.NewSlackFlipFormatter(""), discardLogger())
	}
	return NewRouter(handlers, discardLogger(), RouterConfig{
		SlackSigningSecret: testSecret,
		RequestTimeout:     time.Second,
	})
}

func signedCommand(t *testing.T, path string, ts time.Time) *http.Request {
	t.Helper()

	body := url.Values{
		"command":    {"/flip"},
		"text":       {"help"},
		"team_id":    {"T1"},
		"user_id":    {"U1"},
		"channel_id": {"C1"},
	}.Encode()
	stamp := strconv.FormatInt(ts.Unix(), 10)

	mac := hmac.New(sha256.New, []byte(testSecret))
	_, err := mac.Write([]byte("v0:" + stamp + ":" + body))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Slack-Request-Timestamp", stamp)
	req.Header.Set("X-Slack-Signature", "v0="+hex.EncodeToString(mac.Sum(nil)))
	return req
}

func TestRouter_ProbeEndpoints(t *testing.T) {
	router := newTestRouter(false)

	for _, path := range []string{"/health", "/ready", "/info", "/"} {
		t.Run(path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

			assert.Equal(t, http.StatusOK, w.Code)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		})
	}
}

func TestRouter_RootServesProjectInfo(t *testing.T) {
	w := httptest.NewRecorder()
	newTestRouter(false).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Contains(t, w.Body.String(), "https://flip.example.com/authenticate")
}

func TestRouter_UnknownPathIsNotFound(t *testing.T) {
	w := httptest.NewRecorder()
	newTestRouter(true).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_CommandsNotMountedWithoutHandler(t *testing.T) {
	w := httptest.NewRecorder()
	newTestRouter(false).ServeHTTP(w, signedCommand(t, slackCommandsPath, time.Now()))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_SignedSlashCommand(t *testing.T) {
	router := newTestRouter(true)

	for _, path := range []string{slackCommandsPath, slackCommandsAliasPath} {
		t.Run(path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, signedCommand(t, path, time.Now()))

			require.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), `"response_type":"ephemeral"`)
			assert.Contains(t, w.Body.String(), "classic")
		})
	}
}

func TestRouter_RejectsBadSignature(t *testing.T) {
	router := newTestRouter(true)

	t.Run("tampered signature", func(t *testing.T) {
		req := signedCommand(t, slackCommandsPath, time.Now())
		req.Header.Set("X-Slack-Signature", "v0=deadbeef")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("stale timestamp", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, signedCommand(t, slackCommandsPath, time.Now().Add(-time.Hour)))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, slackCommandsPath, strings.NewReader("command=%2Fflip"))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestServer_ServeShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := New(config.ServerConfig{ShutdownTimeout: time.Second}, newTestRouter(false), discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}
