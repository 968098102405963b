package entity

// Visibility controls who sees a response in Slack.
type Visibility string

const (
	// VisibilityEphemeral is shown only to the invoking user.
	VisibilityEphemeral Visibility = "ephemeral"
	// VisibilityInChannel is shown to the whole channel.
	VisibilityInChannel Visibility = "in_channel"
)

// RenderedResponse is the text produced for a command and who should see it.
type RenderedResponse struct {
	Text       string
	Visibility Visibility
}

// IsEphemeral returns true if only the invoking user should see the response.
func (r *RenderedResponse) IsEphemeral() bool {
	return r.Visibility == VisibilityEphemeral
}
