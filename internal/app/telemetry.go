package app

import (
	"github.com/qj0r9j0vc2/slack-tableflip/internal/infrastructure/observability"
)

// setupTelemetry initializes OpenTelemetry tracing and metrics.
func (app *Application) setupTelemetry() error {
	telemetry, err := observability.NewTelemetry(observability.ServiceName, app.config.App.Version)
	if err != nil {
		return err
	}

	app.telemetry = telemetry

	app.logger.Get().Info("telemetry initialized",
		"service", observability.ServiceName,
		"version", app.config.App.Version,
		"metrics_enabled", true,
		"tracing_enabled", false, // NoOp tracer for now
	)

	return nil
}
