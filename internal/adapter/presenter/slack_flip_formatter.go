package presenter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/slack-go/slack"

	"github.com/qj0r9j0vc2/slack-tableflip/internal/adapter/dto"
	"github.com/qj0r9j0vc2/slack-tableflip/internal/domain/entity"
	"github.com/qj0r9j0vc2/slack-tableflip/internal/domain/flip"
)

// genericErrorText is shown when the failure is ours, not the user's.
const genericErrorText = "Something went wrong flipping that table. Please try again in a moment."

// SlackFlipFormatter turns use case results into Slack replies.
type SlackFlipFormatter struct {
	appName string
}

// NewSlackFlipFormatter creates a new Slack flip formatter.
func NewSlackFlipFormatter(appName string) *SlackFlipFormatter {
	if appName == "" {
		appName = "Slack Tableflip"
	}
	return &SlackFlipFormatter{appName: appName}
}

// FormatOutput builds the reply for a handled command.
// Returns nil when the flip was already delivered and the reply must be empty.
func (f *SlackFlipFormatter) FormatOutput(out *dto.FlipCommandOutput) *dto.SlackResponseDTO {
	switch out.Outcome {
	case dto.FlipOutcomePosted, dto.FlipOutcomeLateReply:
		return nil
	case dto.FlipOutcomeReply:
		return dto.NewRenderedResponse(out.Response)
	case dto.FlipOutcomeHelp:
		return f.FormatHelp()
	case dto.FlipOutcomeUnauthorized:
		return f.FormatUnauthorized(out.AuthURL)
	default:
		return dto.NewEphemeralResponse(genericErrorText)
	}
}

// FormatError explains a rejected command to the invoking user.
func (f *SlackFlipFormatter) FormatError(err error) *dto.SlackResponseDTO {
	var (
		missing  *entity.MissingFieldError
		unknown  *entity.UnknownCommandError
		tooLarge *entity.PayloadTooLargeError
	)

	switch {
	case errors.As(err, &unknown):
		return dto.NewEphemeralResponse(fmt.Sprintf("Unknown command: %s", unknown.Command))
	case errors.As(err, &missing):
		return dto.NewEphemeralResponse(fmt.Sprintf("Missing required field: %s", missing.Field))
	case errors.As(err, &tooLarge):
		return dto.NewEphemeralResponse(fmt.Sprintf(
			"Your text is too long to flip: %d characters, the limit is %d.",
			tooLarge.Length, tooLarge.Limit))
	default:
		return dto.NewEphemeralResponse(genericErrorText)
	}
}

// FormatUnauthorized points a team without a stored token at the install page.
func (f *SlackFlipFormatter) FormatUnauthorized(authURL string) *dto.SlackResponseDTO {
	text := fmt.Sprintf("%s isn't installed for this workspace yet. Add it here: <%s|%s>",
		f.appName, authURL, authURL)

	blocks := []slack.Block{
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType,
				fmt.Sprintf("*%s* isn't installed for this workspace yet.", f.appName), false, false),
			nil,
			slack.NewAccessory(slack.NewButtonBlockElement("authenticate", "install",
				slack.NewTextBlockObject(slack.PlainTextType, "Add to Slack", false, false),
			).WithURL(authURL)),
		),
	}
	return dto.NewEphemeralWithBlocks(text, blocks)
}

// FormatHelp lists every style with its art.
func (f *SlackFlipFormatter) FormatHelp() *dto.SlackResponseDTO {
	styles := flip.Styles()

	blocks := make([]slack.Block, 0, len(styles)+3)
	blocks = append(blocks, slack.NewHeaderBlock(
		slack.NewTextBlockObject(slack.PlainTextType, f.appName, false, false),
	))
	blocks = append(blocks, slack.NewContextBlock("",
		slack.NewTextBlockObject(slack.MarkdownType,
			"`/flip` flips a table. `/flip <style>` picks the art below. `/flip <text>` flips your text.",
			false, false),
	))
	blocks = append(blocks, slack.NewDividerBlock())

	// Art goes out as plain text so Slack does not read its punctuation as markup
	var fallback strings.Builder
	fallback.WriteString("Available styles:")
	for _, s := range styles {
		blocks = append(blocks, slack.NewSectionBlock(nil, []*slack.TextBlockObject{
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*%s*", s.Name), false, false),
			slack.NewTextBlockObject(slack.PlainTextType, s.Art, false, false),
		}, nil))
		fallback.WriteString(" ")
		fallback.WriteString(s.Name)
	}

	return dto.NewEphemeralWithBlocks(fallback.String(), blocks)
}
