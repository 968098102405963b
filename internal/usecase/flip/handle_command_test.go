package flip

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qj0r9j0vc2/slack-tableflip/internal/adapter/dto"
	"github.com/qj0r9j0vc2/slack-tableflip/internal/domain/entity"
	domainerrors "github.com/qj0r9j0vc2/slack-tableflip/internal/domain/errors"
	"github.com/qj0r9j0vc2/slack-tableflip/internal/domain/logger"
	"github.com/qj0r9j0vc2/slack-tableflip/internal/domain/repository"
	"github.com/qj0r9j0vc2/slack-tableflip/internal/infrastructure/persistence/memory"
)

const testAuthURL = "https://flip.example.com/authenticate"

type postCall struct {
	token, channelID, text string
}

type fakePoster struct {
	mu    sync.Mutex
	calls []postCall
	errs  []error // consumed one per call; nil or exhausted means success
	hang  bool    // block until ctx is done
}

func (p *fakePoster) PostAsUser(ctx context.Context, token, channelID, text string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, postCall{token, channelID, text})
	if p.hang {
		<-ctx.Done()
		return "", domainerrors.NewPermanentError("posting", ctx.Err())
	}
	if len(p.errs) > 0 {
		err := p.errs[0]
		p.errs = p.errs[1:]
		if err != nil {
			return "", err
		}
	}
	return "1700000000.000100", nil
}

func (p *fakePoster) Name() string { return "fake" }

type respondCall struct {
	responseURL string
	resp        *entity.RenderedResponse
	ctxErr      error
}

type fakeResponder struct {
	mu    sync.Mutex
	calls []respondCall
	err   error
}

func (r *fakeResponder) Respond(ctx context.Context, responseURL string, resp *entity.RenderedResponse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, respondCall{responseURL, resp, ctx.Err()})
	return r.err
}

type commandRecord struct {
	command, outcome string
}

type fakeRecorder struct {
	mu         sync.Mutex
	commands   []commandRecord
	deliveries []bool
	retries    []int
}

func (r *fakeRecorder) RecordCommand(_ context.Context, command, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, commandRecord{command, outcome})
}

func (r *fakeRecorder) RecordDelivery(_ context.Context, _ string, success bool, _ time.Duration, retries int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deliveries = append(r.deliveries, success)
	r.retries = append(r.retries, retries)
}

type failingTokens struct {
	repository.TeamTokenRepository
	err error
}

func (f failingTokens) FindByTeamID(context.Context, string) (*entity.TeamToken, error) {
	return nil, f.err
}

type handleCommandFixture struct {
	uc        *HandleCommandUseCase
	poster    *fakePoster
	responder *fakeResponder
	recorder  *fakeRecorder
}

func newHandleCommandFixture(t *testing.T, opts ...HandleCommandOption) *handleCommandFixture {
	t.Helper()
	tokens := memory.NewTeamTokenRepository()
	token, err := entity.NewTeamToken("T1", "xoxp-team-one", "U1", "chat:write")
	require.NoError(t, err)
	require.NoError(t, tokens.Save(context.Background(), token))

	f := &handleCommandFixture{
		poster:    &fakePoster{},
		responder: &fakeResponder{},
		recorder:  &fakeRecorder{},
	}
	opts = append([]HandleCommandOption{WithResponder(f.responder)}, opts...)
	f.uc = NewHandleCommandUseCase(tokens, f.poster, 4000, testAuthURL, f.recorder, logger.Nop{}, opts...)
	return f
}

func command(text string) *dto.SlackCommandDTO {
	return &dto.SlackCommandDTO{
		Command:     "/flip",
		Text:        text,
		TeamID:      "T1",
		UserID:      "U1",
		ChannelID:   "C1",
		ResponseURL: "https://hooks.slack.com/commands/T1/1/abc",
	}
}

func TestHandleCommand_PostsFlipAsUser(t *testing.T) {
	f := newHandleCommandFixture(t)

	out, err := f.uc.Execute(context.Background(), command("hello"))
	require.NoError(t, err)

	assert.Equal(t, dto.FlipOutcomePosted, out.Outcome)
	assert.Nil(t, out.Response)
	require.Len(t, f.poster.calls, 1)
	assert.Equal(t, postCall{"xoxp-team-one", "C1", "(╯°□°)╯︵ ollǝɥ"}, f.poster.calls[0])
	assert.Equal(t, []commandRecord{{"/flip", "posted"}}, f.recorder.commands)
}

func TestHandleCommand_StyleArt(t *testing.T) {
	f := newHandleCommandFixture(t)

	_, err := f.uc.Execute(context.Background(), command("RAGE and more words"))
	require.NoError(t, err)

	require.Len(t, f.poster.calls, 1)
	assert.Equal(t, "(ﾉಥ益ಥ）ﾉ\ufeff ┻━┻", f.poster.calls[0].text)
}

func TestHandleCommand_EmptyTextIsClassic(t *testing.T) {
	f := newHandleCommandFixture(t)

	_, err := f.uc.Execute(context.Background(), command("   "))
	require.NoError(t, err)

	require.Len(t, f.poster.calls, 1)
	assert.Equal(t, "(╯°□°)╯︵ ┻━┻", f.poster.calls[0].text)
}

func TestHandleCommand_DeliveryFailureFallsBackToReply(t *testing.T) {
	f := newHandleCommandFixture(t)
	f.poster.errs = []error{domainerrors.NewPermanentError("posting", errors.New("not_in_channel"))}

	out, err := f.uc.Execute(context.Background(), command("hi"))
	require.NoError(t, err)

	assert.Equal(t, dto.FlipOutcomeReply, out.Outcome)
	require.NotNil(t, out.Response)
	assert.Equal(t, entity.VisibilityInChannel, out.Response.Visibility)
	assert.Equal(t, "(╯°□°)╯︵ ıɥ", out.Response.Text)
	assert.Equal(t, "reply", f.recorder.commands[0].outcome)
}

func TestHandleCommand_SlowDeliveryStillLeavesTimeToReply(t *testing.T) {
	f := newHandleCommandFixture(t, WithDeliveryTimeout(20*time.Millisecond))
	f.poster.hang = true

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	out, err := f.uc.Execute(ctx, command("hi"))
	require.NoError(t, err)

	assert.NoError(t, ctx.Err())
	assert.Equal(t, dto.FlipOutcomeReply, out.Outcome)
	assert.Equal(t, "(╯°□°)╯︵ ıɥ", out.Response.Text)
	assert.Empty(t, f.responder.calls)
}

func TestHandleCommand_EndedRequestRepliesThroughResponseURL(t *testing.T) {
	f := newHandleCommandFixture(t, WithDeliveryTimeout(time.Second))
	f.poster.hang = true

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	out, err := f.uc.Execute(ctx, command("hi"))
	require.NoError(t, err)

	assert.Equal(t, dto.FlipOutcomeLateReply, out.Outcome)
	require.Len(t, f.responder.calls, 1)
	call := f.responder.calls[0]
	assert.Equal(t, "https://hooks.slack.com/commands/T1/1/abc", call.responseURL)
	assert.Equal(t, "(╯°□°)╯︵ ıɥ", call.resp.Text)
	assert.Equal(t, entity.VisibilityInChannel, call.resp.Visibility)
	assert.NoError(t, call.ctxErr)
	assert.Equal(t, "late_reply", f.recorder.commands[0].outcome)
}

func TestHandleCommand_EndedRequestLateReplyFails(t *testing.T) {
	f := newHandleCommandFixture(t, WithDeliveryTimeout(time.Second))
	f.poster.hang = true
	f.responder.err = errors.New("expired_url")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := f.uc.Execute(ctx, command("hi"))
	assert.Nil(t, out)
	assert.ErrorIs(t, err, f.responder.err)
	assert.Equal(t, "error", f.recorder.commands[0].outcome)
}

func TestHandleCommand_EndedRequestWithoutResponseURL(t *testing.T) {
	f := newHandleCommandFixture(t)
	f.poster.hang = true
	cmd := command("hi")
	cmd.ResponseURL = ""

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := f.uc.Execute(ctx, cmd)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.responder.calls)
}

func TestHandleCommand_ReservedWords(t *testing.T) {
	for _, text := range []string{"help", "HELP me", "list", " List "} {
		t.Run(text, func(t *testing.T) {
			f := newHandleCommandFixture(t)

			out, err := f.uc.Execute(context.Background(), command(text))
			require.NoError(t, err)

			assert.Equal(t, dto.FlipOutcomeHelp, out.Outcome)
			assert.Empty(t, f.poster.calls)
		})
	}
}

func TestHandleCommand_UnknownTeam(t *testing.T) {
	f := newHandleCommandFixture(t)
	cmd := command("hi")
	cmd.TeamID = "T404"

	out, err := f.uc.Execute(context.Background(), cmd)
	require.NoError(t, err)

	assert.Equal(t, dto.FlipOutcomeUnauthorized, out.Outcome)
	assert.Equal(t, testAuthURL, out.AuthURL)
	assert.Empty(t, f.poster.calls)
}

func TestHandleCommand_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*dto.SlackCommandDTO)
		check  func(t *testing.T, err error)
	}{
		{
			name:   "missing team",
			mutate: func(c *dto.SlackCommandDTO) { c.TeamID = "" },
			check: func(t *testing.T, err error) {
				var missing *entity.MissingFieldError
				require.ErrorAs(t, err, &missing)
				assert.Equal(t, entity.FieldTeamID, missing.Field)
			},
		},
		{
			name:   "first missing field wins",
			mutate: func(c *dto.SlackCommandDTO) {
				c.UserID = ""
				c.ChannelID = ""
			},
			check: func(t *testing.T, err error) {
				var missing *entity.MissingFieldError
				require.ErrorAs(t, err, &missing)
				assert.Equal(t, entity.FieldUserID, missing.Field)
			},
		},
		{
			name:   "unknown command",
			mutate: func(c *dto.SlackCommandDTO) { c.Command = "/FLIP" },
			check: func(t *testing.T, err error) {
				var unknown *entity.UnknownCommandError
				require.ErrorAs(t, err, &unknown)
				assert.Equal(t, "/FLIP", unknown.Command)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newHandleCommandFixture(t)
			cmd := command("hi")
			tt.mutate(cmd)

			out, err := f.uc.Execute(context.Background(), cmd)
			assert.Nil(t, out)
			assert.ErrorIs(t, err, entity.ErrValidation)
			tt.check(t, err)
			assert.Empty(t, f.poster.calls)
			assert.Equal(t, "rejected", f.recorder.commands[0].outcome)
		})
	}
}

func TestHandleCommand_SetMaxTextLength(t *testing.T) {
	f := newHandleCommandFixture(t)
	text := strings.Repeat("a", 10)

	_, err := f.uc.Execute(context.Background(), command(text))
	require.NoError(t, err)

	f.uc.SetMaxTextLength(5)
	assert.Equal(t, 5, f.uc.MaxTextLength())
	_, err = f.uc.Execute(context.Background(), command(text))

	var tooLarge *entity.PayloadTooLargeError
	require.ErrorAs(t, err, &tooLarge)
	assert.Equal(t, 10, tooLarge.Length)
	assert.Equal(t, 5, tooLarge.Limit)
	assert.Len(t, f.poster.calls, 1)
}

func TestHandleCommand_RepositoryFailure(t *testing.T) {
	boom := errors.New("database is locked")
	uc := NewHandleCommandUseCase(failingTokens{err: boom}, &fakePoster{}, 0, testAuthURL, nil, logger.Nop{})

	out, err := uc.Execute(context.Background(), command("hi"))
	assert.Nil(t, out)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, entity.ErrValidation)
}
