package app

import (
	"fmt"

	"github.com/qj0r9j0vc2/slack-tableflip/internal/infrastructure/config"
)

func (app *Application) bootstrap() error {
	// 1. Load configuration
	if err := app.loadConfig(); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// 2. Setup logger
	app.setupLogger()

	// 3. Setup telemetry (OpenTelemetry)
	if err := app.setupTelemetry(); err != nil {
		return fmt.Errorf("setting up telemetry: %w", err)
	}

	// 4. Setup config manager with reload callback
	app.setupConfigManager()

	// 5. Initialize storage layer
	if err := app.initializeStorage(); err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	// 6. Initialize infrastructure clients
	if err := app.initializeClients(); err != nil {
		return fmt.Errorf("initializing clients: %w", err)
	}

	// 7. Initialize use cases
	app.initializeUseCases()

	// 8. Initialize HTTP handlers
	app.initializeHandlers()

	// 9. Setup HTTP server
	app.setupServer()

	return nil
}

func (app *Application) loadConfig() error {
	cfg, err := config.Load(app.configPath)
	if err != nil {
		return err
	}
	app.config = cfg
	return nil
}

func (app *Application) setupLogger() {
	app.logger = NewAtomicLogger(app.logOutput, app.config.Logging.Level, app.config.Logging.Format)
}

func (app *Application) setupConfigManager() {
	app.configManager = config.NewConfigManager(app.configPath, app.config, &slogAdapter{logger: app.logger.Get()})

	app.configManager.OnReload(func(old, new *config.Config) {
		if old.Logging != new.Logging {
			app.logger.Update(new.Logging.Level, new.Logging.Format)
			app.logger.Get().Info("logger reconfigured",
				"level", new.Logging.Level,
				"format", new.Logging.Format,
			)
		}
	})
}
