package query

import (
	"context"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-webhooks/core"
	"github.com/goliatone/go-webhooks/discord"
	"github.com/goliatone/go-webhooks/ratelimit"
)

func TestResolveDiscordInfoQuery_Delegates(t *testing.T) {
	resolver := &stubInfoResolver{info: discord.Info{ID: "123", Name: "alerts"}}
	info, err := NewResolveDiscordInfoQuery(resolver).Query(context.Background(), ResolveDiscordInfoMessage{
		WebhookURL: "https://discord.com/api/webhooks/123/token",
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if info.Name != "alerts" {
		t.Fatalf("expected alerts, got %q", info.Name)
	}
	if resolver.url != "https://discord.com/api/webhooks/123/token" {
		t.Fatalf("expected url to reach resolver, got %q", resolver.url)
	}
}

func TestResolveDiscordInfoQuery_PropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewResolveDiscordInfoQuery(&stubInfoResolver{err: boom}).Query(context.Background(), ResolveDiscordInfoMessage{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected resolver error, got %v", err)
	}
}

func TestLoadRateLimitStateQuery_ReadsStore(t *testing.T) {
	store := ratelimit.NewMemoryStateStore()
	if err := store.Upsert(context.Background(), ratelimit.State{
		Key:       core.RateLimitKey{Destination: "discord:123", BucketKey: "execute"},
		Limit:     5,
		Remaining: 4,
	}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	state, err := NewLoadRateLimitStateQuery(store).Query(context.Background(), LoadRateLimitStateMessage{
		Destination: "discord:123",
		BucketKey:   "execute",
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if state.Limit != 5 || state.Remaining != 4 {
		t.Fatalf("unexpected state %+v", state)
	}
}

func TestLoadRateLimitStateQuery_MissingStateIsNotFound(t *testing.T) {
	_, err := NewLoadRateLimitStateQuery(ratelimit.NewMemoryStateStore()).Query(context.Background(), LoadRateLimitStateMessage{
		Destination: "discord:404",
		BucketKey:   "execute",
	})
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryNotFound {
		t.Fatalf("expected not found category, got %q", rich.Category)
	}
	if rich.TextCode != core.ErrorNotFound {
		t.Fatalf("expected %q text code, got %q", core.ErrorNotFound, rich.TextCode)
	}
}

func TestQueries_NilDependenciesReturnRichErrors(t *testing.T) {
	var infoQuery *ResolveDiscordInfoQuery
	if _, err := infoQuery.Query(context.Background(), ResolveDiscordInfoMessage{}); err == nil {
		t.Fatalf("expected dependency error")
	}
	_, err := NewLoadRateLimitStateQuery(nil).Query(context.Background(), LoadRateLimitStateMessage{})
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) || rich.TextCode != core.ErrorInternal {
		t.Fatalf("expected internal envelope, got %v", err)
	}
}

func TestQueryMessageValidation(t *testing.T) {
	if err := (ResolveDiscordInfoMessage{WebhookURL: "https://example.com/hook"}).Validate(); !core.IsValidationFailed(err) {
		t.Fatalf("expected invalid webhook url, got %v", err)
	}
	if err := (ResolveDiscordInfoMessage{WebhookURL: "https://discord.com/api/webhooks/1/t"}).Validate(); err != nil {
		t.Fatalf("expected valid webhook url, got %v", err)
	}
	if err := (LoadRateLimitStateMessage{Destination: "discord:1"}).Validate(); !core.IsValidationFailed(err) {
		t.Fatalf("expected missing bucket key to fail, got %v", err)
	}
	if err := (LoadRateLimitStateMessage{Destination: "discord:1", BucketKey: "execute"}).Validate(); err != nil {
		t.Fatalf("expected valid message, got %v", err)
	}
}

type stubInfoResolver struct {
	info discord.Info
	err  error
	url  string
}

func (s *stubInfoResolver) Resolve(_ context.Context, webhookURL string) (discord.Info, error) {
	s.url = webhookURL
	return s.info, s.err
}
