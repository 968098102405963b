package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/slack-go/slack"

	"github.com/qj0r9j0vc2/slack-tableflip/internal/adapter/dto"
	"github.com/qj0r9j0vc2/slack-tableflip/internal/adapter/presenter"
	"github.com/qj0r9j0vc2/slack-tableflip/internal/domain/entity"
)

// CommandExecutor runs the flip use case.
type CommandExecutor interface {
	Execute(ctx context.Context, input *dto.SlackCommandDTO) (*dto.FlipCommandOutput, error)
}

// commandResponder maps a slash command to the reply Slack should show.
// It is shared by the HTTP and Socket Mode transports.
type commandResponder struct {
	executor  CommandExecutor
	formatter *presenter.SlackFlipFormatter
	logger    *slog.Logger
}

// respond returns nil when Slack should get an empty reply.
func (c *commandResponder) respond(ctx context.Context, cmd *dto.SlackCommandDTO) *dto.SlackResponseDTO {
	c.logger.Info("received slash command",
		"command", cmd.Command,
		"team_id", cmd.TeamID,
		"user_id", cmd.UserID,
		"channel_id", cmd.ChannelID,
	)

	out, err := c.executor.Execute(ctx, cmd)
	if err != nil {
		if !errors.Is(err, entity.ErrValidation) {
			c.logger.Error("failed to handle slash command",
				"command", cmd.Command,
				"team_id", cmd.TeamID,
				"error", err,
			)
		}
		return c.formatter.FormatError(err)
	}

	return c.formatter.FormatOutput(out)
}

// SlackCommandsHandler handles Slack slash command webhooks (HTTP Mode).
type SlackCommandsHandler struct {
	responder commandResponder
}

// NewSlackCommandsHandler creates a new slash commands handler.
func NewSlackCommandsHandler(
	executor CommandExecutor,
	formatter *presenter.SlackFlipFormatter,
	logger *slog.Logger,
) *SlackCommandsHandler {
	return &SlackCommandsHandler{
		responder: commandResponder{
			executor:  executor,
			formatter: formatter,
			logger:    logger,
		},
	}
}

// ServeHTTP handles POST /slack/commands requests.
// Slack sends slash commands as application/x-www-form-urlencoded and
// expects an answer within three seconds.
func (h *SlackCommandsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cmd, err := slack.SlashCommandParse(r)
	if err != nil {
		h.responder.logger.Error("failed to parse slash command", "error", err)
		http.Error(w, "invalid slash command", http.StatusBadRequest)
		return
	}

	resp := h.responder.respond(r.Context(), dto.NewSlackCommandDTO(cmd))
	if resp == nil {
		w.WriteHeader(http.StatusOK)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
