package handler

import (
	"context"
	"log/slog"

	slackSDK "github.com/slack-go/slack"

	"github.com/qj0r9j0vc2/slack-tableflip/internal/adapter/dto"
	"github.com/qj0r9j0vc2/slack-tableflip/internal/adapter/presenter"
)

// SocketModeHandler answers slash commands that arrive over Socket Mode.
// The reply travels back in the envelope ack.
type SocketModeHandler struct {
	responder commandResponder
}

// NewSocketModeHandler creates a new Socket Mode handler.
func NewSocketModeHandler(
	executor CommandExecutor,
	formatter *presenter.SlackFlipFormatter,
	logger *slog.Logger,
) *SocketModeHandler {
	return &SocketModeHandler{
		responder: commandResponder{
			executor:  executor,
			formatter: formatter,
			logger:    logger,
		},
	}
}

// HandleSlashCommand returns the ack payload for cmd, or nil for an empty ack.
func (h *SocketModeHandler) HandleSlashCommand(ctx context.Context, cmd slackSDK.SlashCommand) (any, error) {
	resp := h.responder.respond(ctx, dto.NewSlackCommandDTO(cmd))
	if resp == nil {
		return nil, nil
	}
	return resp, nil
}
