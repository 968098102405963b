package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSigningSecret = "8f742231b10e8888abcd99yyyzzz85a5"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sign(secret, timestamp, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "v0:%s:%s", timestamp, body)
	return "v0=" + hex.EncodeToString(mac.Sum(nil))
}

func signedRequest(secret, body string, at time.Time) *http.Request {
	ts := strconv.FormatInt(at.Unix(), 10)
	req := httptest.NewRequest(http.MethodPost, "/slack/commands", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Slack-Request-Timestamp", ts)
	req.Header.Set("X-Slack-Signature", sign(secret, ts, body))
	return req
}

func echoBody() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_, _ = w.Write(body)
	})
}

func TestSlackAuth(t *testing.T) {
	body := "command=%2Fflip&text=hello&team_id=T1"

	tests := []struct {
		name     string
		req      func() *http.Request
		wantCode int
	}{
		{
			name:     "valid signature",
			req:      func() *http.Request { return signedRequest(testSigningSecret, body, time.Now()) },
			wantCode: http.StatusOK,
		},
		{
			name:     "wrong secret",
			req:      func() *http.Request { return signedRequest("other-secret", body, time.Now()) },
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "stale timestamp",
			req:      func() *http.Request { return signedRequest(testSigningSecret, body, time.Now().Add(-10*time.Minute)) },
			wantCode: http.StatusUnauthorized,
		},
		{
			name: "tampered body",
			req: func() *http.Request {
				req := signedRequest(testSigningSecret, body, time.Now())
				req.Body = io.NopCloser(strings.NewReader(body + "&text=rage"))
				return req
			},
			wantCode: http.StatusUnauthorized,
		},
		{
			name: "missing headers",
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/slack/commands", strings.NewReader(body))
			},
			wantCode: http.StatusUnauthorized,
		},
	}

	h := SlackAuth(testSigningSecret, discardLogger())(echoBody())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, tt.req())

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode == http.StatusOK {
				// Handler still sees the full body
				assert.Equal(t, body, w.Body.String())
			}
		})
	}
}

func TestSlackAuth_NoSecretSkipsVerification(t *testing.T) {
	w := httptest.NewRecorder()
	SlackAuth("", discardLogger())(echoBody()).ServeHTTP(w,
		httptest.NewRequest(http.MethodPost, "/slack/commands", strings.NewReader("a=b")))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "a=b", w.Body.String())
}

func TestTimeout(t *testing.T) {
	mw := Timeout(20*time.Millisecond, discardLogger())

	t.Run("fast handler passes through", func(t *testing.T) {
		h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"ok":true}`))
		}))

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/slack/commands", nil))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		assert.Equal(t, `{"ok":true}`, w.Body.String())
	})

	t.Run("slow handler gets 504", func(t *testing.T) {
		release := make(chan struct{})
		defer close(release)
		h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
			<-release
			_, _ = w.Write([]byte("too late"))
		}))

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/slack/commands", nil))

		assert.Equal(t, http.StatusGatewayTimeout, w.Code)
		assert.NotContains(t, w.Body.String(), "too late")
	})

	t.Run("exempt paths are not wrapped", func(t *testing.T) {
		h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, hasDeadline := r.Context().Deadline()
			assert.False(t, hasDeadline)
		}))

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("panics reach the serving goroutine", func(t *testing.T) {
		h := Recovery(discardLogger())(mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		})))

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/slack/commands", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", seen)
}

func TestChain_FirstIsOutermost(t *testing.T) {
	var order []string
	tag := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}), tag("a"), tag("b"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"a", "b", "handler"}, order)
}

func TestRecovery(t *testing.T) {
	h := Recovery(discardLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
