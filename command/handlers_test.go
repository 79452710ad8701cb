package command

import (
	"context"
	"errors"
	"testing"

	gocmd "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-webhooks/core"
	"github.com/goliatone/go-webhooks/discord"
)

func TestSendDiscordCommand_ExecuteStoresSentMessage(t *testing.T) {
	sender := &stubSender{sent: discord.SentMessage{ID: "99", ChannelID: "7"}}
	cmd := NewSendDiscordCommand(sender)
	collector := gocmd.NewResult[discord.SentMessage]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	if err := cmd.Execute(ctx, SendDiscordMessage{Message: discord.Message{Content: "deploy ok"}}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(sender.messages) != 1 || sender.messages[0].Content != "deploy ok" {
		t.Fatalf("expected message to reach sender, got %+v", sender.messages)
	}
	result, ok := collector.Load()
	if !ok {
		t.Fatalf("expected stored result")
	}
	if result.ID != "99" {
		t.Fatalf("expected sent message id 99, got %q", result.ID)
	}
}

func TestSendDiscordCommand_ReturnsDeliveryErrors(t *testing.T) {
	boom := errors.New("boom")
	cmd := NewSendDiscordCommand(&stubSender{err: boom})
	if err := cmd.Execute(context.Background(), SendDiscordMessage{Message: discord.Message{Content: "x"}}); !errors.Is(err, boom) {
		t.Fatalf("expected sender error, got %v", err)
	}
}

func TestSendDiscordCommand_BestEffortNeverFails(t *testing.T) {
	sender := &stubSender{err: errors.New("boom")}
	cmd := NewSendDiscordCommand(sender)
	collector := gocmd.NewResult[bool]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	if err := cmd.Execute(ctx, SendDiscordMessage{Message: discord.Message{Content: "x"}, BestEffort: true}); err != nil {
		t.Fatalf("expected best effort to swallow errors, got %v", err)
	}
	delivered, ok := collector.Load()
	if !ok || delivered {
		t.Fatalf("expected stored false delivery flag, got %v ok=%v", delivered, ok)
	}
}

func TestSendDiscordEmbedsCommand_Delegates(t *testing.T) {
	sender := &stubSender{}
	embed := discord.NewEmbedBuilder().Title("release").Build()
	if err := NewSendDiscordEmbedsCommand(sender).Execute(context.Background(), SendDiscordEmbedsMessage{Embeds: []discord.Embed{embed}}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(sender.embeds) != 1 || sender.embeds[0].Title() != "release" {
		t.Fatalf("expected embeds to reach sender")
	}
}

func TestCommands_NilSenderReturnsRichError(t *testing.T) {
	var cmd *SendDiscordCommand
	err := cmd.Execute(context.Background(), SendDiscordMessage{})
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryInternal {
		t.Fatalf("expected internal category, got %q", rich.Category)
	}
	if err := NewSendDiscordEmbedsCommand(nil).Execute(context.Background(), SendDiscordEmbedsMessage{}); err == nil {
		t.Fatalf("expected dependency error")
	}
}

func TestMessages_ValidateUsesDiscordLimits(t *testing.T) {
	if err := (SendDiscordMessage{}).Validate(); !core.IsValidationFailed(err) {
		t.Fatalf("expected empty message to fail validation, got %v", err)
	}
	if err := (SendDiscordMessage{Message: discord.Message{Content: "ok"}}).Validate(); err != nil {
		t.Fatalf("expected valid message, got %v", err)
	}
	if err := (SendDiscordEmbedsMessage{}).Validate(); !core.IsValidationFailed(err) {
		t.Fatalf("expected missing embeds to fail validation, got %v", err)
	}
	if (SendDiscordMessage{}).Type() != TypeSendDiscord {
		t.Fatalf("unexpected message type")
	}
}

type stubSender struct {
	sent     discord.SentMessage
	err      error
	messages []discord.Message
	embeds   []discord.Embed
}

func (s *stubSender) Execute(_ context.Context, msg discord.Message) (discord.SentMessage, error) {
	s.messages = append(s.messages, msg)
	if s.err != nil {
		return discord.SentMessage{}, s.err
	}
	return s.sent, nil
}

func (s *stubSender) SendWithoutError(ctx context.Context, msg discord.Message) bool {
	_, err := s.Execute(ctx, msg)
	return err == nil
}

func (s *stubSender) SendEmbeds(_ context.Context, embeds ...discord.Embed) error {
	s.embeds = append(s.embeds, embeds...)
	return s.err
}
