package gocommand

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-command"
	jobqueuecommand "github.com/goliatone/go-job/queue/command"

	webhookcommand "github.com/goliatone/go-webhooks/command"
	"github.com/goliatone/go-webhooks/core"
	"github.com/goliatone/go-webhooks/discord"
	webhookquery "github.com/goliatone/go-webhooks/query"
	"github.com/goliatone/go-webhooks/ratelimit"
)

type invalidMessage struct{}

func (invalidMessage) Type() string { return "" }

func TestValidateMessageContract(t *testing.T) {
	if err := ValidateMessageContract(webhookcommand.SendDiscordMessage{Message: discord.Message{Content: "ok"}}); err != nil {
		t.Fatalf("expected valid message, got %v", err)
	}
	if err := ValidateMessageContract(invalidMessage{}); err == nil {
		t.Fatalf("expected empty type to fail contract validation")
	}
	if err := ValidateMessageContract(webhookcommand.SendDiscordMessage{}); err == nil {
		t.Fatalf("expected Validate() failure to bubble")
	}
}

func TestRegisterDiscord_DispatchesCommandsAndQueries(t *testing.T) {
	sender := &stubSender{}
	store := ratelimit.NewMemoryStateStore()
	if err := store.Upsert(context.Background(), ratelimit.State{
		Key:       core.RateLimitKey{Destination: "discord:123", BucketKey: "execute"},
		Remaining: 3,
	}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	registry := NewRegistry(nil)
	subs, err := RegisterDiscord(registry, DiscordHandlers{
		Sender:       sender,
		InfoResolver: stubInfoResolver{info: discord.Info{ID: "123", Name: "alerts"}},
		StateStore:   store,
	})
	if err != nil {
		t.Fatalf("register discord: %v", err)
	}
	defer subs.Unsubscribe()
	if len(subs) != 4 {
		t.Fatalf("expected four subscriptions, got %d", len(subs))
	}
	if err := registry.Initialize(); err != nil {
		t.Fatalf("initialize registry: %v", err)
	}

	if err := Dispatch(context.Background(), webhookcommand.SendDiscordMessage{
		Message: discord.Message{Content: "deploy ok"},
	}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(sender.messages) != 1 || sender.messages[0].Content != "deploy ok" {
		t.Fatalf("expected dispatched message to reach sender, got %+v", sender.messages)
	}

	info, err := Query[webhookquery.ResolveDiscordInfoMessage, discord.Info](context.Background(), webhookquery.ResolveDiscordInfoMessage{
		WebhookURL: "https://discord.com/api/webhooks/123/token",
	})
	if err != nil {
		t.Fatalf("query info: %v", err)
	}
	if info.Name != "alerts" {
		t.Fatalf("expected alerts, got %q", info.Name)
	}

	state, err := Query[webhookquery.LoadRateLimitStateMessage, ratelimit.State](context.Background(), webhookquery.LoadRateLimitStateMessage{
		Destination: "discord:123",
		BucketKey:   "execute",
	})
	if err != nil {
		t.Fatalf("query state: %v", err)
	}
	if state.Remaining != 3 {
		t.Fatalf("expected remaining 3, got %d", state.Remaining)
	}
}

func TestRegisterDiscord_SkipsMissingDependencies(t *testing.T) {
	subs, err := RegisterDiscord(NewRegistry(nil), DiscordHandlers{StateStore: ratelimit.NewMemoryStateStore()})
	if err != nil {
		t.Fatalf("register discord: %v", err)
	}
	defer subs.Unsubscribe()
	if len(subs) != 1 {
		t.Fatalf("expected only the state query subscription, got %d", len(subs))
	}
}

func TestRegisterCommand_RequiresRegistryAndCommand(t *testing.T) {
	if _, err := RegisterCommand[webhookcommand.SendDiscordMessage](nil, webhookcommand.NewSendDiscordCommand(&stubSender{})); err == nil {
		t.Fatalf("expected missing registry error")
	}
	if _, err := RegisterCommand[webhookcommand.SendDiscordMessage](NewRegistry(nil), nil); err == nil {
		t.Fatalf("expected missing command error")
	}
}

func TestMirrorToQueue(t *testing.T) {
	registry := NewRegistry(command.NewRegistry())
	queueRegistry := jobqueuecommand.NewRegistry()

	if err := registry.MirrorToQueue("queue", queueRegistry); err != nil {
		t.Fatalf("mirror to queue: %v", err)
	}
	if err := registry.Register(webhookcommand.NewSendDiscordCommand(&stubSender{})); err != nil {
		t.Fatalf("register command: %v", err)
	}
	if err := registry.Initialize(); err != nil {
		t.Fatalf("initialize registry: %v", err)
	}

	if _, ok := queueRegistry.Get(webhookcommand.TypeSendDiscord); !ok {
		t.Fatalf("expected command to be mirrored into queue registry")
	}
	if err := registry.MirrorToQueue("queue", nil); err == nil {
		t.Fatalf("expected missing queue registry error")
	}
}

type stubSender struct {
	messages []discord.Message
}

func (s *stubSender) Execute(_ context.Context, msg discord.Message) (discord.SentMessage, error) {
	s.messages = append(s.messages, msg)
	return discord.SentMessage{ID: "1"}, nil
}

func (s *stubSender) SendWithoutError(ctx context.Context, msg discord.Message) bool {
	_, err := s.Execute(ctx, msg)
	return err == nil
}

func (s *stubSender) SendEmbeds(context.Context, ...discord.Embed) error {
	return errors.New("not used")
}

type stubInfoResolver struct {
	info discord.Info
}

func (s stubInfoResolver) Resolve(context.Context, string) (discord.Info, error) {
	return s.info, nil
}
