package flip

import (
	"context"
	"time"

	"github.com/qj0r9j0vc2/slack-tableflip/internal/domain/entity"
)

// Poster defines the contract for posting a message into a channel as a user.
type Poster interface {
	// PostAsUser posts text as the owner of token. Returns the message timestamp.
	PostAsUser(ctx context.Context, token, channelID, text string) (timestamp string, err error)

	// Name returns the delivery channel identifier (e.g., "slack").
	Name() string
}

// Responder delivers a delayed reply through a slash command's response_url.
type Responder interface {
	Respond(ctx context.Context, responseURL string, resp *entity.RenderedResponse) error
}

// Breaker guards calls to a failing dependency.
type Breaker interface {
	Execute(ctx context.Context, fn func() error) error
}

// Recorder receives command and delivery measurements.
type Recorder interface {
	RecordCommand(ctx context.Context, command, outcome string, duration time.Duration)
	RecordDelivery(ctx context.Context, channel string, success bool, duration time.Duration, retries int)
}

// Logger defines the contract for logging within use cases.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

type nopRecorder struct{}

func (nopRecorder) RecordCommand(context.Context, string, string, time.Duration) {}
func (nopRecorder) RecordDelivery(context.Context, string, bool, time.Duration, int) {}
