package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/qj0r9j0vc2/slack-tableflip/internal/adapter/handler"
	"github.com/qj0r9j0vc2/slack-tableflip/internal/adapter/handler/middleware"
	"github.com/qj0r9j0vc2/slack-tableflip/internal/infrastructure/observability"
)

// Handlers holds all HTTP handlers.
type Handlers struct {
	SlackCommands *handler.SlackCommandsHandler
	Health        *handler.HealthHandler
	Ready         *handler.ReadyHandler
	Info          *handler.InfoHandler
	Metrics       *handler.MetricsHandler
	Reload        *handler.ReloadHandler
}

// RouterConfig holds the settings the middleware stack needs.
type RouterConfig struct {
	SlackSigningSecret string
	RequestTimeout     time.Duration
	Metrics            *observability.Metrics
}

// Slash command paths. The webhook alias matches the other Slack endpoints
// some installs were configured with.
const (
	slackCommandsPath      = "/slack/commands"
	slackCommandsAliasPath = "/webhook/slack/commands"
)

// NewRouter creates the HTTP router with all handlers.
func NewRouter(handlers *Handlers, logger *slog.Logger, cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	routes := []string{"/"}

	mount := func(path string, h http.Handler) {
		mux.Handle(path, h)
		routes = append(routes, path)
	}

	// Health check endpoints
	mount("/health", handlers.Health)
	if handlers.Ready != nil {
		mount("/ready", handlers.Ready)
	} else {
		mount("/ready", handlers.Health)
	}

	if handlers.Metrics != nil {
		mount("/metrics", handlers.Metrics)
	}

	if handlers.Info != nil {
		mount("/info", handlers.Info)
		mux.Handle("/{$}", handlers.Info)
	} else {
		mux.Handle("/{$}", handlers.Health)
	}

	if handlers.Reload != nil {
		mount("/-/reload", handlers.Reload)
	}

	// Absent in Socket Mode, where commands arrive over the websocket
	if handlers.SlackCommands != nil {
		commands := middleware.SlackAuth(cfg.SlackSigningSecret, logger)(handlers.SlackCommands)
		mount(slackCommandsPath, commands)
		mount(slackCommandsAliasPath, commands)
	}

	mws := []func(http.Handler) http.Handler{
		middleware.Recovery(logger),
		middleware.RequestID,
		middleware.Logging(logger),
	}
	if cfg.Metrics != nil {
		mws = append(mws, middleware.Observability(cfg.Metrics, routes...))
	}
	if cfg.RequestTimeout > 0 {
		mws = append(mws, middleware.Timeout(cfg.RequestTimeout, logger))
	}

	return middleware.Chain(mux, mws...)
}
