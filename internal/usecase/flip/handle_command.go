package flip

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/qj0r9j0vc2/slack-tableflip/internal/adapter/dto"
	"github.com/qj0r9j0vc2/slack-tableflip/internal/domain/entity"
	domainflip "github.com/qj0r9j0vc2/slack-tableflip/internal/domain/flip"
	"github.com/qj0r9j0vc2/slack-tableflip/internal/domain/repository"
)

const tracerName = "github.com/qj0r9j0vc2/slack-tableflip/internal/usecase/flip"

// DefaultDeliveryTimeout bounds posting as the user, retries included.
// It must leave room to reply inside Slack's three second window.
const DefaultDeliveryTimeout = 2 * time.Second

// reservedWords are never flipped; they ask for the style listing.
var reservedWords = map[string]bool{
	"help": true,
	"list": true,
}

// HandleCommandUseCase answers a /flip slash command.
type HandleCommandUseCase struct {
	tokens          repository.TeamTokenRepository
	poster          Poster
	responder       Responder
	renderer        atomic.Pointer[domainflip.Renderer]
	deliveryTimeout time.Duration
	authURL         string
	recorder        Recorder
	logger          Logger
	tracer          trace.Tracer
}

// HandleCommandOption configures a HandleCommandUseCase.
type HandleCommandOption func(*HandleCommandUseCase)

// WithDeliveryTimeout bounds posting as the user. Non-positive values are ignored.
func WithDeliveryTimeout(d time.Duration) HandleCommandOption {
	return func(uc *HandleCommandUseCase) {
		if d > 0 {
			uc.deliveryTimeout = d
		}
	}
}

// WithResponder sets where the flip goes when the command's own reply can
// no longer be sent.
func WithResponder(r Responder) HandleCommandOption {
	return func(uc *HandleCommandUseCase) {
		uc.responder = r
	}
}

// NewHandleCommandUseCase creates a new HandleCommandUseCase with dependencies.
func NewHandleCommandUseCase(
	tokens repository.TeamTokenRepository,
	poster Poster,
	maxTextLength int,
	authURL string,
	recorder Recorder,
	logger Logger,
	opts ...HandleCommandOption,
) *HandleCommandUseCase {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	uc := &HandleCommandUseCase{
		tokens:          tokens,
		poster:          poster,
		deliveryTimeout: DefaultDeliveryTimeout,
		authURL:         authURL,
		recorder:        recorder,
		logger:          logger,
		tracer:          otel.Tracer(tracerName),
	}
	uc.renderer.Store(domainflip.NewRenderer(maxTextLength))
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// SetMaxTextLength changes the text limit for subsequent commands.
func (uc *HandleCommandUseCase) SetMaxTextLength(n int) {
	uc.renderer.Store(domainflip.NewRenderer(n))
}

// MaxTextLength returns the text limit in effect.
func (uc *HandleCommandUseCase) MaxTextLength() int {
	return uc.renderer.Load().MaxTextLength()
}

// Execute validates the command, checks that the team installed the app,
// renders the flip and posts it as the invoking team's user.
//
// Validation and render errors are returned as typed entity errors for the
// presenter to explain. If posting fails the flip comes back as a reply, or
// through response_url once the request itself is done.
func (uc *HandleCommandUseCase) Execute(ctx context.Context, input *dto.SlackCommandDTO) (out *dto.FlipCommandOutput, err error) {
	start := time.Now()
	ctx, span := uc.tracer.Start(ctx, "flip.handle_command", trace.WithAttributes(
		attribute.String("slack.command", input.Command),
		attribute.String("slack.team_id", input.TeamID),
	))
	defer func() {
		outcome := "error"
		switch {
		case out != nil:
			outcome = string(out.Outcome)
		case errors.Is(err, entity.ErrValidation):
			outcome = "rejected"
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.SetAttributes(attribute.String("flip.outcome", outcome))
		span.End()
		uc.recorder.RecordCommand(ctx, input.Command, outcome, time.Since(start))
	}()

	// 1. Validate the request
	valid, err := input.ToEntity().Validate()
	if err != nil {
		uc.logger.Debug("rejected slash command",
			"command", input.Command,
			"team_id", input.TeamID,
			"error", err,
		)
		return nil, err
	}
	cmd := valid.Command()

	// 2. Reserved words
	if reservedWords[cmd.FirstWord()] {
		return &dto.FlipCommandOutput{Outcome: dto.FlipOutcomeHelp}, nil
	}

	// 3. The team must have installed the app
	token, err := uc.tokens.FindByTeamID(ctx, cmd.TeamID)
	if errors.Is(err, repository.ErrNotFound) {
		uc.logger.Info("slash command from team without a token",
			"team_id", cmd.TeamID,
			"user_id", cmd.UserID,
		)
		return &dto.FlipCommandOutput{
			Outcome: dto.FlipOutcomeUnauthorized,
			AuthURL: uc.authURL,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding team token: %w", err)
	}

	// 4. Render
	resp, err := uc.renderer.Load().Render(valid)
	if err != nil {
		return nil, err
	}

	// 5. Post as the user; fall back to replying with the flip
	if err := uc.post(ctx, token.AccessToken, cmd.ChannelID, resp.Text); err != nil {
		uc.logger.Warn("posting as user failed, replying in channel instead",
			"poster", uc.poster.Name(),
			"team_id", cmd.TeamID,
			"channel_id", cmd.ChannelID,
			"error", err,
		)
		if ctx.Err() != nil {
			return uc.respondLate(ctx, cmd, resp)
		}
		return &dto.FlipCommandOutput{
			Outcome:  dto.FlipOutcomeReply,
			Response: resp,
		}, nil
	}

	uc.logger.Debug("flip posted",
		"team_id", cmd.TeamID,
		"channel_id", cmd.ChannelID,
		"user_id", cmd.UserID,
	)
	return &dto.FlipCommandOutput{Outcome: dto.FlipOutcomePosted}, nil
}

// post runs delivery under its own deadline so a slow Slack still leaves
// time for the fallback reply.
func (uc *HandleCommandUseCase) post(ctx context.Context, token, channelID, text string) error {
	ctx, cancel := context.WithTimeout(ctx, uc.deliveryTimeout)
	defer cancel()
	_, err := uc.poster.PostAsUser(ctx, token, channelID, text)
	return err
}

// respondLate sends the flip to response_url after the request context ended.
func (uc *HandleCommandUseCase) respondLate(ctx context.Context, cmd entity.SlashCommand, resp *entity.RenderedResponse) (*dto.FlipCommandOutput, error) {
	if uc.responder == nil || cmd.ResponseURL == "" {
		return nil, fmt.Errorf("request ended before the flip was delivered: %w", ctx.Err())
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.deliveryTimeout)
	defer cancel()

	if err := uc.responder.Respond(ctx, cmd.ResponseURL, resp); err != nil {
		uc.logger.Error("late reply failed",
			"team_id", cmd.TeamID,
			"channel_id", cmd.ChannelID,
			"error", err,
		)
		return nil, fmt.Errorf("replying through response_url: %w", err)
	}

	uc.logger.Info("flip sent through response_url",
		"team_id", cmd.TeamID,
		"channel_id", cmd.ChannelID,
	)
	return &dto.FlipCommandOutput{Outcome: dto.FlipOutcomeLateReply}, nil
}
