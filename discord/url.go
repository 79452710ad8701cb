package discord

import (
	"net/url"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-webhooks/core"
)

var webhookHosts = map[string]bool{
	"discord.com":           true,
	"discordapp.com":        true,
	"ptb.discord.com":       true,
	"canary.discord.com":    true,
	"ptb.discordapp.com":    true,
	"canary.discordapp.com": true,
}

// WebhookURL identifies a webhook by snowflake ID and secret token.
type WebhookURL struct {
	Host  string
	ID    string
	Token string
}

// ParseWebhookURL accepts https://{host}/api[/vN]/webhooks/{id}/{token}.
func ParseWebhookURL(raw string) (WebhookURL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return WebhookURL{}, invalidURL("webhook url is required")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return WebhookURL{}, invalidURL("webhook url cannot be parsed")
	}
	if parsed.Scheme != "https" {
		return WebhookURL{}, invalidURL("webhook url must use https")
	}
	host := strings.ToLower(parsed.Hostname())
	if !webhookHosts[host] {
		return WebhookURL{}, invalidURL("webhook url host is not a discord host")
	}

	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(segments) > 0 && segments[0] == "api" {
		segments = segments[1:]
	} else {
		return WebhookURL{}, invalidURL("webhook url path must start with /api")
	}
	if len(segments) > 0 && isAPIVersion(segments[0]) {
		segments = segments[1:]
	}
	if len(segments) != 3 || segments[0] != "webhooks" {
		return WebhookURL{}, invalidURL("webhook url path must be /api/webhooks/{id}/{token}")
	}
	id, token := segments[1], segments[2]
	if !isSnowflake(id) {
		return WebhookURL{}, invalidURL("webhook id must be numeric")
	}
	if strings.TrimSpace(token) == "" {
		return WebhookURL{}, invalidURL("webhook token is required")
	}
	return WebhookURL{Host: host, ID: id, Token: token}, nil
}

// String returns the execute endpoint. It contains the token; log
// Redacted instead.
func (w WebhookURL) String() string {
	host := w.Host
	if host == "" {
		host = "discord.com"
	}
	return "https://" + host + "/api/webhooks/" + w.ID + "/" + w.Token
}

func (w WebhookURL) Redacted() string {
	return core.RedactEndpoint(w.String())
}

// Destination is the rate limit destination for this webhook.
func (w WebhookURL) Destination() string {
	return "discord:" + w.ID
}

func isAPIVersion(segment string) bool {
	return len(segment) > 1 && segment[0] == 'v' && isSnowflake(segment[1:])
}

func isSnowflake(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func invalidURL(message string) error {
	return core.NewValidationError("discord: invalid webhook url",
		goerrors.FieldError{Field: "webhook_url", Message: message},
	)
}
