package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/qj0r9j0vc2/slack-tableflip/internal/adapter/handler"
	"github.com/qj0r9j0vc2/slack-tableflip/internal/domain/repository"
	"github.com/qj0r9j0vc2/slack-tableflip/internal/infrastructure/config"
	"github.com/qj0r9j0vc2/slack-tableflip/internal/infrastructure/observability"
	"github.com/qj0r9j0vc2/slack-tableflip/internal/infrastructure/server"
)

// Application holds all application dependencies and lifecycle
type Application struct {
	config        *config.Config
	configPath    string
	configManager *config.ConfigManager
	logger        *AtomicLogger
	logOutput     io.Writer
	telemetry     *observability.Telemetry

	// Storage
	teamTokens repository.TeamTokenRepository
	dbPinger   handler.ReadinessChecker
	dbCloser   io.Closer

	// Infrastructure clients
	clients *Clients

	// Use cases
	useCases *UseCases

	// HTTP layer
	handlers *server.Handlers
	router   http.Handler
	server   *server.Server
}

// New creates a new Application instance
func New(configPath string) (*Application, error) {
	return newApplication(configPath, os.Stdout)
}

func newApplication(configPath string, logOutput io.Writer) (*Application, error) {
	app := &Application{
		configPath: configPath,
		logOutput:  logOutput,
	}

	if err := app.bootstrap(); err != nil {
		app.closeStorage()
		return nil, err
	}

	return app, nil
}

// Start runs the application until context is cancelled
func (app *Application) Start(ctx context.Context) error {
	log := app.logger.Get()
	log.Info("starting slack-tableflip",
		"port", app.config.Server.Port,
		"storage", app.config.Storage.Type,
		"socket_mode", app.config.IsSocketModeEnabled(),
	)

	if err := app.configManager.Watch(ctx); err != nil {
		// Manual reload through /-/reload still works
		log.Warn("config file watch disabled", "path", app.configPath, "error", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.server.Run(ctx)
	})

	if app.clients.SocketMode != nil {
		g.Go(func() error {
			if err := app.clients.SocketMode.Run(ctx); err != nil {
				return fmt.Errorf("socket mode: %w", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the application
func (app *Application) Shutdown() error {
	app.logger.Get().Info("shutting down slack-tableflip")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if app.telemetry != nil {
		if err := app.telemetry.Shutdown(ctx); err != nil {
			app.logger.Get().Error("failed to shutdown telemetry", "error", err)
		}
	}

	if err := app.closeStorage(); err != nil {
		app.logger.Get().Error("failed to close database", "error", err)
		return err
	}

	app.logger.Get().Info("slack-tableflip stopped")
	return nil
}

// Config returns the live configuration.
func (app *Application) Config() *config.Config {
	if app.configManager != nil {
		return app.configManager.Get()
	}
	return app.config
}

func (app *Application) closeStorage() error {
	if app.dbCloser == nil {
		return nil
	}
	err := app.dbCloser.Close()
	app.dbCloser = nil
	return err
}
