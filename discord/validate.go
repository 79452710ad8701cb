package discord

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-webhooks/core"
)

const (
	MaxContentLength          = 2000
	MaxUsernameLength         = 80
	MaxEmbeds                 = 10
	MaxTitleLength            = 256
	MaxDescriptionLength      = 4096
	MaxFields                 = 25
	MaxFieldNameLength        = 256
	MaxFieldValueLength       = 1024
	MaxFooterTextLength       = 2048
	MaxAuthorNameLength       = 256
	MaxTotalEmbedTextLength   = 6000
	DefaultMaxPayloadBytes    = core.DefaultMaxPayloadBytes
	forbiddenUsernameFragment = "clyde"
)

// Validate checks msg against Discord's execute-webhook limits and reports
// every violation at once. maxPayloadBytes <= 0 selects the default.
func Validate(msg Message, maxPayloadBytes int) error {
	var fields []goerrors.FieldError
	add := func(field, format string, args ...any) {
		fields = append(fields, goerrors.FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if strings.TrimSpace(msg.Content) == "" && len(msg.Embeds) == 0 {
		add("content", "content or at least one embed is required")
	}
	if n := utf8.RuneCountInString(msg.Content); n > MaxContentLength {
		add("content", "must be at most %d characters, got %d", MaxContentLength, n)
	}
	if username := msg.Username; username != "" {
		if n := utf8.RuneCountInString(username); n > MaxUsernameLength {
			add("username", "must be at most %d characters, got %d", MaxUsernameLength, n)
		}
		lowered := strings.ToLower(username)
		if strings.Contains(lowered, forbiddenUsernameFragment) || strings.Contains(lowered, "discord") {
			add("username", "must not contain %q or %q", forbiddenUsernameFragment, "discord")
		}
	}
	if len(msg.Embeds) > MaxEmbeds {
		add("embeds", "must contain at most %d embeds, got %d", MaxEmbeds, len(msg.Embeds))
	}

	total := 0
	for i, embed := range msg.Embeds {
		prefix := fmt.Sprintf("embeds[%d]", i)
		total += embed.TextLength()
		checkLength(add, prefix+".title", embed.Title(), MaxTitleLength)
		checkLength(add, prefix+".description", embed.Description(), MaxDescriptionLength)
		if footer, ok := embed.Footer(); ok {
			checkLength(add, prefix+".footer.text", footer.Text, MaxFooterTextLength)
		}
		if author, ok := embed.Author(); ok {
			checkLength(add, prefix+".author.name", author.Name, MaxAuthorNameLength)
		}
		embedFields := embed.Fields()
		if len(embedFields) > MaxFields {
			add(prefix+".fields", "must contain at most %d fields, got %d", MaxFields, len(embedFields))
		}
		for j, field := range embedFields {
			fieldPrefix := fmt.Sprintf("%s.fields[%d]", prefix, j)
			if strings.TrimSpace(field.Name) == "" {
				add(fieldPrefix+".name", "is required")
			}
			if strings.TrimSpace(field.Value) == "" {
				add(fieldPrefix+".value", "is required")
			}
			checkLength(add, fieldPrefix+".name", field.Name, MaxFieldNameLength)
			checkLength(add, fieldPrefix+".value", field.Value, MaxFieldValueLength)
		}
	}
	if total > MaxTotalEmbedTextLength {
		add("embeds", "combined embed text must be at most %d characters, got %d", MaxTotalEmbedTextLength, total)
	}

	if len(fields) == 0 {
		if maxPayloadBytes <= 0 {
			maxPayloadBytes = DefaultMaxPayloadBytes
		}
		payload, err := json.Marshal(msg)
		if err != nil {
			add("payload", "cannot be encoded: %v", err)
		} else if len(payload) > maxPayloadBytes {
			add("payload", "must be at most %d bytes, got %d", maxPayloadBytes, len(payload))
		}
	}

	if len(fields) > 0 {
		return core.NewValidationError("discord: message validation failed", fields...)
	}
	return nil
}

func checkLength(add func(string, string, ...any), field, value string, limit int) {
	if n := utf8.RuneCountInString(value); n > limit {
		add(field, "must be at most %d characters, got %d", limit, n)
	}
}
