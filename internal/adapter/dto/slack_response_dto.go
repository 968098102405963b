package dto

import (
	"github.com/slack-go/slack"

	"github.com/qj0r9j0vc2/slack-tableflip/internal/domain/entity"
)

// SlackResponseDTO represents a Slack message response.
type SlackResponseDTO struct {
	ResponseType string        `json:"response_type"`    // "ephemeral" or "in_channel"
	Text         string        `json:"text"`             // Plain text fallback
	Blocks       []slack.Block `json:"blocks,omitempty"` // Block Kit blocks
}

// NewEphemeralResponse creates an ephemeral response (visible only to command invoker).
func NewEphemeralResponse(text string) *SlackResponseDTO {
	return &SlackResponseDTO{
		ResponseType: string(entity.VisibilityEphemeral),
		Text:         text,
	}
}

// NewInChannelResponse creates an in-channel response (visible to everyone).
func NewInChannelResponse(text string) *SlackResponseDTO {
	return &SlackResponseDTO{
		ResponseType: string(entity.VisibilityInChannel),
		Text:         text,
	}
}

// NewEphemeralWithBlocks creates an ephemeral response with Block Kit blocks.
func NewEphemeralWithBlocks(text string, blocks []slack.Block) *SlackResponseDTO {
	return &SlackResponseDTO{
		ResponseType: string(entity.VisibilityEphemeral),
		Text:         text,
		Blocks:       blocks,
	}
}

// NewRenderedResponse mirrors a rendered flip.
func NewRenderedResponse(resp *entity.RenderedResponse) *SlackResponseDTO {
	return &SlackResponseDTO{
		ResponseType: string(resp.Visibility),
		Text:         resp.Text,
	}
}
