package discord

import "time"

// EmbedBuilder assembles an Embed field by field. Build returns a deep copy,
// so later builder calls never alter embeds already built.
type EmbedBuilder struct {
	data embedData
}

func NewEmbedBuilder() *EmbedBuilder {
	return &EmbedBuilder{}
}

func (b *EmbedBuilder) Title(title string) *EmbedBuilder {
	b.data.Title = title
	return b
}

// Type is normally "rich", the only type accepted for webhook embeds.
func (b *EmbedBuilder) Type(kind string) *EmbedBuilder {
	b.data.Type = kind
	return b
}

func (b *EmbedBuilder) Description(description string) *EmbedBuilder {
	b.data.Description = description
	return b
}

func (b *EmbedBuilder) URL(url string) *EmbedBuilder {
	b.data.URL = url
	return b
}

func (b *EmbedBuilder) Color(color int) *EmbedBuilder {
	b.data.Color = &color
	return b
}

func (b *EmbedBuilder) ColorRGB(r, g, bl uint8) *EmbedBuilder {
	return b.Color(int(r)<<16 | int(g)<<8 | int(bl))
}

func (b *EmbedBuilder) Timestamp(t time.Time) *EmbedBuilder {
	b.data.Timestamp = FormatTimestamp(t)
	return b
}

func (b *EmbedBuilder) TimestampMillis(millis int64) *EmbedBuilder {
	b.data.Timestamp = FormatTimestampMillis(millis)
	return b
}

func (b *EmbedBuilder) Footer(footer Footer) *EmbedBuilder {
	b.data.Footer = &footer
	return b
}

func (b *EmbedBuilder) Image(image Image) *EmbedBuilder {
	b.data.Image = &image
	return b
}

func (b *EmbedBuilder) Thumbnail(thumbnail Thumbnail) *EmbedBuilder {
	b.data.Thumbnail = &thumbnail
	return b
}

func (b *EmbedBuilder) Video(video Video) *EmbedBuilder {
	b.data.Video = &video
	return b
}

func (b *EmbedBuilder) Provider(provider Provider) *EmbedBuilder {
	b.data.Provider = &provider
	return b
}

func (b *EmbedBuilder) Author(author Author) *EmbedBuilder {
	b.data.Author = &author
	return b
}

func (b *EmbedBuilder) AddField(name, value string, inline bool) *EmbedBuilder {
	b.data.Fields = append(b.data.Fields, Field{Name: name, Value: value, Inline: inline})
	return b
}

func (b *EmbedBuilder) Build() Embed {
	if b == nil {
		return Embed{}
	}
	return Embed{data: b.data.clone()}
}
