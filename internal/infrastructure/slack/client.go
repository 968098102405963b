package slack

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/slack-go/slack"

	"github.com/qj0r9j0vc2/slack-tableflip/internal/domain/entity"
	domainerrors "github.com/qj0r9j0vc2/slack-tableflip/internal/domain/errors"
)

// Client posts rendered flips to Slack. Every call authenticates with the
// token passed in, so one Client serves all installed workspaces.
type Client struct {
	apiURL     string
	httpClient *http.Client
}

// NewClient creates a new Slack client. apiURL overrides the Slack Web API
// base (it must end in "/api/"); empty means slack.com.
func NewClient(apiURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		apiURL:     apiURL,
		httpClient: httpClient,
	}
}

func (c *Client) api(token string) *slack.Client {
	opts := []slack.Option{slack.OptionHTTPClient(c.httpClient)}
	if c.apiURL != "" {
		opts = append(opts, slack.OptionAPIURL(c.apiURL))
	}
	return slack.New(token, opts...)
}

// PostAsUser posts text into a channel as the user who owns token.
// Returns the message timestamp.
func (c *Client) PostAsUser(ctx context.Context, token, channelID, text string) (string, error) {
	_, timestamp, err := c.api(token).PostMessageContext(ctx, channelID,
		slack.MsgOptionText(text, false),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		return "", categorizeSlackError(ctx, err, "posting slack message")
	}
	return timestamp, nil
}

// Respond delivers a delayed reply through a slash command's response_url.
func (c *Client) Respond(ctx context.Context, responseURL string, resp *entity.RenderedResponse) error {
	msg := &slack.WebhookMessage{
		ResponseType: string(resp.Visibility),
		Text:         resp.Text,
	}
	if err := slack.PostWebhookCustomHTTPContext(ctx, responseURL, c.httpClient, msg); err != nil {
		return categorizeSlackError(ctx, err, "posting to response_url")
	}
	return nil
}

// Name returns the delivery channel identifier.
func (c *Client) Name() string {
	return "slack"
}

// categorizeSlackError wraps Slack API errors as transient or permanent domain errors.
func categorizeSlackError(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}

	// Only the caller's own deadline is final. An http.Client timeout also
	// reports DeadlineExceeded but is a slow Slack, handled below.
	if ctx.Err() != nil {
		return domainerrors.NewPermanentError(
			fmt.Sprintf("%s: context done", operation),
			err,
		)
	}

	// Network errors, client timeouts included, are transient
	var netErr net.Error
	if errors.As(err, &netErr) {
		return domainerrors.NewTransientError(
			fmt.Sprintf("%s: network error", operation),
			err,
		)
	}

	// HTTP 429 surfaces as its own type
	var rateErr *slack.RateLimitedError
	if errors.As(err, &rateErr) {
		return domainerrors.NewTransientError(
			fmt.Sprintf("%s: rate limited (retry after %s)", operation, rateErr.RetryAfter),
			err,
		)
	}

	var statusErr slack.StatusCodeError
	if errors.As(err, &statusErr) {
		if statusErr.Code >= http.StatusInternalServerError {
			return domainerrors.NewTransientError(
				fmt.Sprintf("%s: slack returned %d", operation, statusErr.Code),
				err,
			)
		}
		return domainerrors.NewPermanentError(
			fmt.Sprintf("%s: slack returned %d", operation, statusErr.Code),
			err,
		)
	}

	// Check for Slack API errors
	var slackErr slack.SlackErrorResponse
	if errors.As(err, &slackErr) {
		switch slackErr.Err {
		// Rate limiting and server errors - transient
		case "ratelimited", "rate_limited", "internal_error", "fatal_error",
			"service_unavailable", "request_timeout":
			return domainerrors.NewTransientError(
				fmt.Sprintf("%s: %s", operation, slackErr.Err),
				err,
			)

		// Everything else (invalid_auth, token_revoked, channel_not_found,
		// not_in_channel, is_archived, ...) is permanent
		default:
			return domainerrors.NewPermanentError(
				fmt.Sprintf("%s: %s", operation, slackErr.Err),
				err,
			)
		}
	}

	// Default to permanent error
	return domainerrors.NewPermanentError(operation, err)
}
