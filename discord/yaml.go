package discord

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-webhooks/core"
	"gopkg.in/yaml.v3"
)

type messageFile struct {
	Content         string           `yaml:"content"`
	Username        string           `yaml:"username"`
	AvatarURL       string           `yaml:"avatar_url"`
	TTS             bool             `yaml:"tts"`
	AllowedMentions *AllowedMentions `yaml:"allowed_mentions"`
	Embeds          []embedFile      `yaml:"embeds"`
}

type embedFile struct {
	Title           string     `yaml:"title"`
	Type            string     `yaml:"type"`
	Description     string     `yaml:"description"`
	URL             string     `yaml:"url"`
	Color           string     `yaml:"color"`
	Timestamp       string     `yaml:"timestamp"`
	TimestampMillis *int64     `yaml:"timestamp_millis"`
	Footer          *Footer    `yaml:"footer"`
	Image           *Image     `yaml:"image"`
	Thumbnail       *Thumbnail `yaml:"thumbnail"`
	Video           *Video     `yaml:"video"`
	Provider        *Provider  `yaml:"provider"`
	Author          *Author    `yaml:"author"`
	Fields          []Field    `yaml:"fields"`
}

// LoadMessageYAML decodes a message file. Embeds go through EmbedBuilder, so
// timestamps are normalized the same way as in code. JSON is valid YAML and
// is accepted too.
func LoadMessageYAML(r io.Reader) (Message, error) {
	var file messageFile
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		if err == io.EOF {
			return Message{}, fileError("message", "file is empty")
		}
		return Message{}, fileError("message", err.Error())
	}

	msg := Message{
		Content:         file.Content,
		Username:        file.Username,
		AvatarURL:       file.AvatarURL,
		TTS:             file.TTS,
		AllowedMentions: file.AllowedMentions,
	}
	for i, entry := range file.Embeds {
		embed, err := entry.build()
		if err != nil {
			return Message{}, fileError(fmt.Sprintf("embeds[%d]", i), err.Error())
		}
		msg.Embeds = append(msg.Embeds, embed)
	}
	return msg, nil
}

func (f embedFile) build() (Embed, error) {
	builder := NewEmbedBuilder().
		Title(f.Title).
		Type(f.Type).
		Description(f.Description).
		URL(f.URL)
	if strings.TrimSpace(f.Color) != "" {
		color, err := ParseColor(f.Color)
		if err != nil {
			return Embed{}, err
		}
		builder.Color(color)
	}
	switch {
	case f.TimestampMillis != nil:
		builder.TimestampMillis(*f.TimestampMillis)
	case strings.TrimSpace(f.Timestamp) != "":
		parsed, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(f.Timestamp))
		if err != nil {
			return Embed{}, fmt.Errorf("timestamp must be RFC 3339: %w", err)
		}
		builder.Timestamp(parsed)
	}
	if f.Footer != nil {
		builder.Footer(*f.Footer)
	}
	if f.Image != nil {
		builder.Image(*f.Image)
	}
	if f.Thumbnail != nil {
		builder.Thumbnail(*f.Thumbnail)
	}
	if f.Video != nil {
		builder.Video(*f.Video)
	}
	if f.Provider != nil {
		builder.Provider(*f.Provider)
	}
	if f.Author != nil {
		builder.Author(*f.Author)
	}
	for _, field := range f.Fields {
		builder.AddField(field.Name, field.Value, field.Inline)
	}
	return builder.Build(), nil
}

// ParseColor accepts "#rrggbb", "0xrrggbb" or a decimal integer.
func ParseColor(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	base := 10
	switch {
	case strings.HasPrefix(raw, "#"):
		raw, base = raw[1:], 16
	case strings.HasPrefix(strings.ToLower(raw), "0x"):
		raw, base = raw[2:], 16
	}
	value, err := strconv.ParseInt(raw, base, 32)
	if err != nil || value < 0 || value > 0xFFFFFF {
		return 0, fmt.Errorf("color %q must be an RGB value", raw)
	}
	return int(value), nil
}

func fileError(field, message string) error {
	return core.NewValidationError("discord: invalid message file",
		goerrors.FieldError{Field: field, Message: message},
	)
}
