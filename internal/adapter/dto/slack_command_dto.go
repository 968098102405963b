package dto

import (
	"github.com/slack-go/slack"

	"github.com/qj0r9j0vc2/slack-tableflip/internal/domain/entity"
)

// SlackCommandDTO represents a parsed Slack slash command.
type SlackCommandDTO struct {
	Command     string // The command name (e.g., "/flip")
	Text        string // The text after the command
	UserID      string // The user who invoked the command
	UserName    string // The user's display name
	ChannelID   string // The channel where command was invoked
	TeamID      string // The workspace/team ID
	ResponseURL string // URL for delayed responses
	TriggerID   string // Trigger ID for opening modals
}

// NewSlackCommandDTO copies the fields this service uses out of a parsed command.
func NewSlackCommandDTO(cmd slack.SlashCommand) *SlackCommandDTO {
	return &SlackCommandDTO{
		Command:     cmd.Command,
		Text:        cmd.Text,
		UserID:      cmd.UserID,
		UserName:    cmd.UserName,
		ChannelID:   cmd.ChannelID,
		TeamID:      cmd.TeamID,
		ResponseURL: cmd.ResponseURL,
		TriggerID:   cmd.TriggerID,
	}
}

// ToEntity converts the DTO into the domain request.
func (d *SlackCommandDTO) ToEntity() entity.SlashCommand {
	return entity.SlashCommand{
		Command:     d.Command,
		Text:        d.Text,
		TeamID:      d.TeamID,
		UserID:      d.UserID,
		ChannelID:   d.ChannelID,
		UserName:    d.UserName,
		ResponseURL: d.ResponseURL,
		TriggerID:   d.TriggerID,
	}
}

// FlipOutcome says how a handled command should be answered.
type FlipOutcome string

const (
	// FlipOutcomePosted means the flip was posted as the user; the reply is empty.
	FlipOutcomePosted FlipOutcome = "posted"
	// FlipOutcomeReply means the flip must go back in the command reply.
	FlipOutcomeReply FlipOutcome = "reply"
	// FlipOutcomeLateReply means the flip went out through response_url; the reply is empty.
	FlipOutcomeLateReply FlipOutcome = "late_reply"
	// FlipOutcomeHelp asks for the style listing.
	FlipOutcomeHelp FlipOutcome = "help"
	// FlipOutcomeUnauthorized means the team has not installed the app.
	FlipOutcomeUnauthorized FlipOutcome = "unauthorized"
)

// FlipCommandOutput is the result of handling one slash command.
type FlipCommandOutput struct {
	Outcome  FlipOutcome
	Response *entity.RenderedResponse // set for FlipOutcomeReply
	AuthURL  string                   // set for FlipOutcomeUnauthorized
}
