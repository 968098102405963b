package app

import (
	"context"
	"net/http"
	"time"

	domainerrors "github.com/qj0r9j0vc2/slack-tableflip/internal/domain/errors"
	"github.com/qj0r9j0vc2/slack-tableflip/internal/infrastructure/resilience"
	"github.com/qj0r9j0vc2/slack-tableflip/internal/infrastructure/slack"
	"github.com/qj0r9j0vc2/slack-tableflip/internal/usecase/flip"
)

// slackHTTPTimeout bounds a single Web API call.
const slackHTTPTimeout = 2 * time.Second

// Clients holds all external integration clients
type Clients struct {
	Slack           *slack.Client
	Poster          *flip.RetryablePoster
	DeliveryBreaker *resilience.CircuitBreaker
	SocketMode      *slack.SocketModeClient
}

func (app *Application) initializeClients() error {
	log := &slogAdapter{logger: app.logger.Get()}
	delivery := app.config.Delivery
	metrics := app.telemetry.Metrics

	app.clients = &Clients{
		Slack: slack.NewClient(app.config.Slack.APIURL, &http.Client{Timeout: slackHTTPTimeout}),
	}

	// Only Slack-side failures count; a revoked token says nothing about Slack's health
	app.clients.DeliveryBreaker = resilience.NewCircuitBreaker("slack-delivery",
		delivery.BreakerThreshold, delivery.BreakerTimeout,
		resilience.WithFailureFilter(domainerrors.IsTransientError),
		resilience.WithStateChange(func(name string, from, to resilience.State) {
			log.Warn("circuit breaker state changed",
				"breaker", name, "from", from.String(), "to", to.String())
			metrics.RecordBreakerTransition(context.Background(), name, from.String(), to.String())
		}),
	)

	policy := flip.DefaultRetryPolicy()
	policy.MaxAttempts = delivery.MaxAttempts
	policy.InitialInterval = delivery.InitialBackoff
	policy.MaxInterval = delivery.MaxBackoff

	app.clients.Poster = flip.NewRetryablePoster(app.clients.Slack, policy,
		app.clients.DeliveryBreaker, metrics, log)

	if app.config.IsSocketModeEnabled() {
		sm, err := slack.NewSocketModeClient(app.config.Slack.SocketMode, app.config.Slack.APIURL, log)
		if err != nil {
			return err
		}
		app.clients.SocketMode = sm

		app.logger.Get().Info("Slack Socket Mode enabled")
	}

	return nil
}
