package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"

	"github.com/slack-go/slack"
)

// maxSlackBody bounds how much of a Slack request is buffered for verification.
const maxSlackBody = 1 << 20

// SlackAuth creates middleware for Slack request signature verification
// using the app's signing secret.
// https://api.slack.com/authentication/verifying-requests-from-slack
func SlackAuth(signingSecret string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip auth if no secret configured (Socket Mode deployments)
			if signingSecret == "" {
				logger.Warn("slack signing secret not configured, skipping signature verification")
				next.ServeHTTP(w, r)
				return
			}

			verifier, err := slack.NewSecretsVerifier(r.Header, signingSecret)
			if err != nil {
				// Missing headers or a stale timestamp
				logger.Warn("invalid slack signature headers",
					"error", err,
					"request_id", GetRequestID(r.Context()),
				)
				http.Error(w, "invalid signature", http.StatusUnauthorized)
				return
			}

			body, err := io.ReadAll(io.TeeReader(http.MaxBytesReader(w, r.Body, maxSlackBody), &verifier))
			if err != nil {
				logger.Error("failed to read request body", "error", err)
				http.Error(w, "failed to read body", http.StatusBadRequest)
				return
			}
			r.Body.Close()

			if err := verifier.Ensure(); err != nil {
				logger.Warn("invalid slack signature",
					"error", err,
					"request_id", GetRequestID(r.Context()),
				)
				http.Error(w, "invalid signature", http.StatusUnauthorized)
				return
			}

			// Restore body for handler
			r.Body = io.NopCloser(bytes.NewReader(body))

			next.ServeHTTP(w, r)
		})
	}
}
