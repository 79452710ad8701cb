package discord

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/goliatone/go-webhooks/core"
	"github.com/tidwall/gjson"
)

// BucketExecute is the rate limit bucket for executing a webhook.
const BucketExecute = "execute"

type SenderOption func(*Sender)

func WithDefaultUsername(username string) SenderOption {
	return func(s *Sender) {
		s.username = strings.TrimSpace(username)
	}
}

func WithDefaultAvatarURL(avatarURL string) SenderOption {
	return func(s *Sender) {
		s.avatarURL = strings.TrimSpace(avatarURL)
	}
}

// WithThreadID posts into a thread of the webhook's channel.
func WithThreadID(threadID string) SenderOption {
	return func(s *Sender) {
		s.threadID = strings.TrimSpace(threadID)
	}
}

// WithWait asks Discord to return the created message.
func WithWait(wait bool) SenderOption {
	return func(s *Sender) {
		s.wait = wait
	}
}

func WithMaxPayloadBytes(limit int) SenderOption {
	return func(s *Sender) {
		s.maxPayloadBytes = limit
	}
}

// Sender executes a single Discord webhook. It implements
// core.Sender[Message].
type Sender struct {
	deliverer       core.Deliverer
	webhook         WebhookURL
	username        string
	avatarURL       string
	threadID        string
	wait            bool
	maxPayloadBytes int
}

func NewSender(webhookURL string, deliverer core.Deliverer, opts ...SenderOption) (*Sender, error) {
	webhook, err := ParseWebhookURL(webhookURL)
	if err != nil {
		return nil, err
	}
	if deliverer == nil {
		return nil, configError("discord: sender requires a deliverer")
	}
	sender := &Sender{
		deliverer:       deliverer,
		webhook:         webhook,
		maxPayloadBytes: DefaultMaxPayloadBytes,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(sender)
		}
	}
	return sender, nil
}

// NewSenderFromConfig applies the discord config section.
func NewSenderFromConfig(cfg core.DiscordConfig, deliverer core.Deliverer, opts ...SenderOption) (*Sender, error) {
	base := []SenderOption{
		WithDefaultUsername(cfg.Username),
		WithDefaultAvatarURL(cfg.AvatarURL),
		WithThreadID(cfg.ThreadID),
		WithWait(cfg.Wait),
	}
	if cfg.MaxPayloadBytes > 0 {
		base = append(base, WithMaxPayloadBytes(cfg.MaxPayloadBytes))
	}
	return NewSender(cfg.WebhookURL, deliverer, append(base, opts...)...)
}

func (s *Sender) Webhook() WebhookURL {
	return s.webhook
}

// Send validates msg and executes the webhook. Validation failures and
// transport failures are both returned.
func (s *Sender) Send(ctx context.Context, msg Message) error {
	_, err := s.Execute(ctx, msg)
	return err
}

// SendWithoutError reports delivery as a bool and never returns an error.
func (s *Sender) SendWithoutError(ctx context.Context, msg Message) bool {
	return core.SendWithoutError[Message](ctx, s, msg)
}

func (s *Sender) SendEmbeds(ctx context.Context, embeds ...Embed) error {
	return s.Send(ctx, Message{Embeds: embeds})
}

// Execute is Send that also returns the created message when wait is on.
func (s *Sender) Execute(ctx context.Context, msg Message) (SentMessage, error) {
	if s == nil || s.deliverer == nil {
		return SentMessage{}, configError("discord: sender is not configured")
	}
	req, err := s.Encode(msg)
	if err != nil {
		return SentMessage{}, err
	}
	res, err := s.deliverer.Deliver(ctx, req)
	if err != nil {
		return SentMessage{}, err
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return SentMessage{}, apiError(res, s.webhook)
	}
	return decodeSentMessage(res.Body), nil
}

// Encode applies sender defaults, validates and serializes msg. It is the
// encoder handed to core.NewAsyncSender for queued delivery.
func (s *Sender) Encode(msg Message) (core.DeliveryRequest, error) {
	if s == nil {
		return core.DeliveryRequest{}, configError("discord: sender is not configured")
	}
	msg = s.withDefaults(msg)
	if err := Validate(msg, s.maxPayloadBytes); err != nil {
		return core.DeliveryRequest{}, err
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return core.DeliveryRequest{}, core.NewValidationError("discord: message cannot be encoded")
	}
	query := map[string]string{}
	if s.wait {
		query["wait"] = "true"
	}
	if s.threadID != "" {
		query["thread_id"] = s.threadID
	}
	return core.DeliveryRequest{
		Method:   http.MethodPost,
		Endpoint: s.webhook.String(),
		Headers:  map[string]string{"Content-Type": "application/json"},
		Query:    query,
		Body:     body,
		Metadata: map[string]any{"webhook_id": s.webhook.ID},
		RateLimitKey: core.RateLimitKey{
			Destination: s.webhook.Destination(),
			BucketKey:   BucketExecute,
		},
	}, nil
}

func (s *Sender) withDefaults(msg Message) Message {
	if msg.Username == "" {
		msg.Username = s.username
	}
	if msg.AvatarURL == "" {
		msg.AvatarURL = s.avatarURL
	}
	return msg
}

func decodeSentMessage(body []byte) SentMessage {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return SentMessage{}
	}
	parsed := gjson.ParseBytes(body)
	return SentMessage{
		ID:        parsed.Get("id").String(),
		ChannelID: parsed.Get("channel_id").String(),
		Timestamp: parsed.Get("timestamp").String(),
	}
}

var _ core.Sender[Message] = (*Sender)(nil)
