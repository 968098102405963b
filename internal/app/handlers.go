package app

import (
	"net/http"

	"github.com/qj0r9j0vc2/slack-tableflip/internal/adapter/handler"
	"github.com/qj0r9j0vc2/slack-tableflip/internal/adapter/presenter"
	"github.com/qj0r9j0vc2/slack-tableflip/internal/domain/entity"
	"github.com/qj0r9j0vc2/slack-tableflip/internal/infrastructure/config"
	"github.com/qj0r9j0vc2/slack-tableflip/internal/infrastructure/server"
	"github.com/qj0r9j0vc2/slack-tableflip/internal/usecase/flip"
)

// UseCases holds the application use cases.
type UseCases struct {
	HandleCommand *flip.HandleCommandUseCase
}

func (app *Application) initializeUseCases() {
	handleCommand := flip.NewHandleCommandUseCase(
		app.teamTokens,
		app.clients.Poster,
		app.config.Render.MaxTextLength,
		app.config.App.AuthURL(),
		app.telemetry.Metrics,
		&slogAdapter{logger: app.logger.Get()},
		flip.WithDeliveryTimeout(app.config.Delivery.Timeout),
		flip.WithResponder(app.clients.Slack),
	)

	app.configManager.OnReload(func(old, new *config.Config) {
		if old.Render != new.Render {
			handleCommand.SetMaxTextLength(new.Render.MaxTextLength)
		}
	})

	app.useCases = &UseCases{HandleCommand: handleCommand}
}

func (app *Application) initializeHandlers() {
	log := app.logger.Get()
	formatter := presenter.NewSlackFlipFormatter(app.config.App.FullName)

	// Create readiness handler with dependency checkers
	readyHandler := handler.NewReadyHandler()
	if app.dbPinger != nil {
		readyHandler.AddChecker("database", app.dbPinger)
	}

	app.handlers = &server.Handlers{
		Health:  handler.NewHealthHandler(),
		Ready:   readyHandler,
		Info:    handler.NewInfoHandler(handler.NewProjectInfo(app.config.App, entity.AllowedCommands())),
		Metrics: handler.NewMetricsHandler(app.telemetry.Handler()),
		Reload:  handler.NewReloadHandler(app.configManager, &slogAdapter{logger: log}),
	}

	if app.clients.SocketMode != nil {
		app.clients.SocketMode.SetCommandHandler(
			handler.NewSocketModeHandler(app.useCases.HandleCommand, formatter, log),
		)
		return
	}

	app.handlers.SlackCommands = handler.NewSlackCommandsHandler(app.useCases.HandleCommand, formatter, log)
}

func (app *Application) setupServer() {
	router := server.NewRouter(app.handlers, app.logger.Get(), server.RouterConfig{
		SlackSigningSecret: app.config.Slack.SigningSecret,
		RequestTimeout:     app.config.Server.RequestTimeout,
		Metrics:            app.telemetry.Metrics,
	})
	app.router = router
	app.server = server.New(app.config.Server, router, app.logger.Get())
}

// Handler returns the HTTP handler serving all routes.
func (app *Application) Handler() http.Handler {
	return app.router
}
