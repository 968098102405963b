package slack

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/socketmode"

	"github.com/qj0r9j0vc2/slack-tableflip/internal/domain/logger"
	"github.com/qj0r9j0vc2/slack-tableflip/internal/infrastructure/config"
	"github.com/qj0r9j0vc2/slack-tableflip/internal/infrastructure/resilience"
)

// CommandHandler answers a slash command received over Socket Mode.
// The returned payload, if non-nil, is sent back inside the envelope ack.
type CommandHandler interface {
	HandleSlashCommand(ctx context.Context, cmd slack.SlashCommand) (any, error)
}

// acker is the part of socketmode.Client used to acknowledge envelopes.
type acker interface {
	Ack(req socketmode.Request, payload ...interface{})
}

// SocketModeClient receives slash commands over a Socket Mode websocket and
// reconnects with backoff when the connection drops.
type SocketModeClient struct {
	client   *socketmode.Client
	slackAPI *slack.Client
	acker    acker
	logger   logger.Logger

	reconnectCfg   ReconnectionConfig
	circuitBreaker *resilience.CircuitBreaker
	commandHandler CommandHandler

	isConnected   atomic.Bool
	lastReconnect atomic.Int64 // unix nanos
}

// NewSocketModeClient creates a new Socket Mode client. apiURL overrides the
// Slack Web API base; empty means slack.com.
func NewSocketModeClient(cfg config.SocketModeConfig, apiURL string, log logger.Logger) (*SocketModeClient, error) {
	if cfg.AppToken == "" {
		return nil, fmt.Errorf("socket mode app token is required")
	}
	if log == nil {
		log = logger.Nop{}
	}

	opts := []slack.Option{
		slack.OptionDebug(cfg.Debug),
		slack.OptionAppLevelToken(cfg.AppToken),
	}
	if apiURL != "" {
		opts = append(opts, slack.OptionAPIURL(apiURL))
	}

	// Slash commands never need a bot token; the app-level token opens the socket
	slackAPI := slack.New("", opts...)
	socketClient := socketmode.New(slackAPI, socketmode.OptionDebug(cfg.Debug))

	reconnectCfg := DefaultReconnectionConfig()
	c := &SocketModeClient{
		client:       socketClient,
		slackAPI:     slackAPI,
		acker:        socketClient,
		logger:       log,
		reconnectCfg: reconnectCfg,
	}
	c.circuitBreaker = resilience.NewCircuitBreaker("slack-socketmode",
		reconnectCfg.MaxRetries, reconnectCfg.BreakerTimeout,
		resilience.WithHalfOpenSuccesses(1),
		resilience.WithStateChange(func(name string, from, to resilience.State) {
			log.Warn("socket mode circuit breaker state changed",
				"breaker", name, "from", from.String(), "to", to.String())
		}),
	)
	return c, nil
}

// SetCommandHandler sets the command handler.
func (c *SocketModeClient) SetCommandHandler(handler CommandHandler) {
	c.commandHandler = handler
}

// Run connects and serves events until ctx is cancelled. Dropped
// connections are re-established with backoff; an open circuit breaker ends
// the run with an error.
func (c *SocketModeClient) Run(ctx context.Context) error {
	c.logger.Info("starting socket mode client")

	go c.runEventLoop(ctx)

	attempt := 0
	for {
		err := c.connect(ctx)
		if err == nil {
			// A session that got as far as the websocket restarts the backoff
			attempt = 0
			err = c.client.RunContext(ctx)
			c.isConnected.Store(false)
		}

		if ctx.Err() != nil {
			return nil
		}
		if errors.Is(err, resilience.ErrCircuitOpen) {
			return fmt.Errorf("socket mode: giving up after %d consecutive failures: %w",
				c.circuitBreaker.Failures(), err)
		}

		backoff := CalculateBackoff(c.reconnectCfg, attempt)
		c.logger.Warn("socket mode connection lost, retrying",
			"error", err,
			"attempt", attempt+1,
			"backoff", backoff.String())

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		attempt++
	}
}

// connect opens a socket URL through the circuit breaker to prove the app
// token works before handing over to the websocket loop.
func (c *SocketModeClient) connect(ctx context.Context) error {
	return c.circuitBreaker.Execute(ctx, func() error {
		if _, _, err := c.slackAPI.StartSocketModeContext(ctx); err != nil {
			return fmt.Errorf("opening socket mode connection: %w", err)
		}
		c.lastReconnect.Store(time.Now().UnixNano())
		c.logger.Debug("socket mode credentials accepted")
		return nil
	})
}

// runEventLoop processes events from Socket Mode.
func (c *SocketModeClient) runEventLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			c.isConnected.Store(false)
			return
		case evt, ok := <-c.client.Events:
			if !ok {
				return
			}
			c.handleEvent(ctx, evt)
		}
	}
}

// handleEvent routes one Socket Mode event.
func (c *SocketModeClient) handleEvent(ctx context.Context, evt socketmode.Event) {
	switch evt.Type {
	case socketmode.EventTypeConnecting:
		c.logger.Info("connecting to slack via socket mode")

	case socketmode.EventTypeConnected:
		c.isConnected.Store(true)
		c.logger.Info("connected to slack via socket mode")

	case socketmode.EventTypeConnectionError, socketmode.EventTypeDisconnect:
		c.isConnected.Store(false)
		c.logger.Warn("socket mode connection interrupted", "type", evt.Type, "data", evt.Data)

	case socketmode.EventTypeSlashCommand:
		c.handleSlashCommand(ctx, evt)

	case socketmode.EventTypeInteractive, socketmode.EventTypeEventsAPI:
		// Nothing subscribes to these; ack so Slack stops redelivering
		c.ack(evt)

	default:
		c.logger.Debug("unhandled socket mode event", "type", evt.Type)
	}
}

func (c *SocketModeClient) handleSlashCommand(ctx context.Context, evt socketmode.Event) {
	cmd, ok := evt.Data.(slack.SlashCommand)
	if !ok {
		c.logger.Error("unexpected slash command payload", "type", fmt.Sprintf("%T", evt.Data))
		c.ack(evt)
		return
	}

	if c.commandHandler == nil {
		c.ack(evt)
		return
	}

	payload, err := c.commandHandler.HandleSlashCommand(ctx, cmd)
	if err != nil {
		c.logger.Error("failed to handle slash command",
			"command", cmd.Command,
			"team_id", cmd.TeamID,
			"error", err)
		c.ack(evt)
		return
	}

	if payload == nil {
		c.ack(evt)
		return
	}
	c.ack(evt, payload)
}

func (c *SocketModeClient) ack(evt socketmode.Event, payload ...interface{}) {
	if evt.Request == nil {
		return
	}
	c.acker.Ack(*evt.Request, payload...)
}

// IsConnected returns true if the websocket is currently up.
func (c *SocketModeClient) IsConnected() bool {
	return c.isConnected.Load()
}

// LastReconnect returns the timestamp of the last successful connection.
func (c *SocketModeClient) LastReconnect() time.Time {
	n := c.lastReconnect.Load()
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}
