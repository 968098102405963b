package entity

import "strings"

// Field names checked by Validate, in check order.
const (
	FieldCommand   = "command"
	FieldTeamID    = "team_id"
	FieldUserID    = "user_id"
	FieldChannelID = "channel_id"
)

// allowedCommands is the set of slash commands this app answers to.
var allowedCommands = []string{
	"/flip",
	"/fliptable",
	"/tableflip",
	"/flip_table",
	"/table_flip",
}

// AllowedCommands returns a copy of the recognized slash commands.
func AllowedCommands() []string {
	out := make([]string, len(allowedCommands))
	copy(out, allowedCommands)
	return out
}

// IsAllowedCommand reports whether command exactly matches a recognized slash command.
func IsAllowedCommand(command string) bool {
	for _, c := range allowedCommands {
		if c == command {
			return true
		}
	}
	return false
}

// SlashCommand represents a slash command invocation from Slack.
type SlashCommand struct {
	// Command metadata
	Command string // e.g., "/flip"
	Text    string // e.g., "rage" or "hello world"

	// Identity
	TeamID    string // Slack workspace ID (T789GHI)
	UserID    string // Slack user ID (U123ABC)
	ChannelID string // Channel where command was invoked (C456DEF)

	// Boundary extras, never validated
	UserName    string
	ResponseURL string // URL for delayed responses (valid 30 minutes)
	TriggerID   string
}

// ValidCommand is a SlashCommand that passed Validate.
// It can only be obtained from Validate, so downstream stages never see an
// unvalidated payload.
type ValidCommand struct {
	cmd SlashCommand
}

// Command returns the validated slash command.
func (v ValidCommand) Command() SlashCommand {
	return v.cmd
}

// Text returns the free-form text that followed the command.
func (v ValidCommand) Text() string {
	return v.cmd.Text
}

// Validate checks required identity fields in a stable order and the command allow-list.
func (c SlashCommand) Validate() (ValidCommand, error) {
	required := []struct {
		name  string
		value string
	}{
		{FieldCommand, c.Command},
		{FieldTeamID, c.TeamID},
		{FieldUserID, c.UserID},
		{FieldChannelID, c.ChannelID},
	}

	for _, f := range required {
		if f.value == "" {
			return ValidCommand{}, &MissingFieldError{Field: f.name}
		}
	}

	if !IsAllowedCommand(c.Command) {
		return ValidCommand{}, &UnknownCommandError{Command: c.Command}
	}

	return ValidCommand{cmd: c}, nil
}

// FirstWord returns the lowercased leading token of the command text.
func (c SlashCommand) FirstWord() string {
	fields := strings.Fields(c.Text)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}
