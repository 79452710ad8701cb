package discord

import (
	"encoding/json"
	"unicode/utf8"
)

type Footer struct {
	Text         string `json:"text" yaml:"text"`
	IconURL      string `json:"icon_url,omitempty" yaml:"icon_url"`
	ProxyIconURL string `json:"proxy_icon_url,omitempty" yaml:"proxy_icon_url"`
}

type Image struct {
	URL      string `json:"url,omitempty" yaml:"url"`
	ProxyURL string `json:"proxy_url,omitempty" yaml:"proxy_url"`
	Height   int    `json:"height,omitempty" yaml:"height"`
	Width    int    `json:"width,omitempty" yaml:"width"`
}

type Thumbnail struct {
	URL      string `json:"url,omitempty" yaml:"url"`
	ProxyURL string `json:"proxy_url,omitempty" yaml:"proxy_url"`
	Height   int    `json:"height,omitempty" yaml:"height"`
	Width    int    `json:"width,omitempty" yaml:"width"`
}

type Video struct {
	URL      string `json:"url,omitempty" yaml:"url"`
	ProxyURL string `json:"proxy_url,omitempty" yaml:"proxy_url"`
	Height   int    `json:"height,omitempty" yaml:"height"`
	Width    int    `json:"width,omitempty" yaml:"width"`
}

type Provider struct {
	Name string `json:"name,omitempty" yaml:"name"`
	URL  string `json:"url,omitempty" yaml:"url"`
}

type Author struct {
	Name         string `json:"name" yaml:"name"`
	URL          string `json:"url,omitempty" yaml:"url"`
	IconURL      string `json:"icon_url,omitempty" yaml:"icon_url"`
	ProxyIconURL string `json:"proxy_icon_url,omitempty" yaml:"proxy_icon_url"`
}

type Field struct {
	Name   string `json:"name" yaml:"name"`
	Value  string `json:"value" yaml:"value"`
	Inline bool   `json:"inline,omitempty" yaml:"inline"`
}

// embedData is the wire shape. Unset attributes are omitted, never null.
type embedData struct {
	Title       string     `json:"title,omitempty"`
	Type        string     `json:"type,omitempty"`
	Description string     `json:"description,omitempty"`
	URL         string     `json:"url,omitempty"`
	Timestamp   string     `json:"timestamp,omitempty"`
	Color       *int       `json:"color,omitempty"`
	Footer      *Footer    `json:"footer,omitempty"`
	Image       *Image     `json:"image,omitempty"`
	Thumbnail   *Thumbnail `json:"thumbnail,omitempty"`
	Video       *Video     `json:"video,omitempty"`
	Provider    *Provider  `json:"provider,omitempty"`
	Author      *Author    `json:"author,omitempty"`
	Fields      []Field    `json:"fields,omitempty"`
}

// Embed is a read-only rich message payload. Build one with EmbedBuilder.
type Embed struct {
	data embedData
}

func (e Embed) Title() string       { return e.data.Title }
func (e Embed) Type() string        { return e.data.Type }
func (e Embed) Description() string { return e.data.Description }
func (e Embed) URL() string         { return e.data.URL }

// Timestamp returns the normalized timestamp string, empty when unset.
func (e Embed) Timestamp() string { return e.data.Timestamp }

func (e Embed) Color() (int, bool) {
	if e.data.Color == nil {
		return 0, false
	}
	return *e.data.Color, true
}

func (e Embed) Footer() (Footer, bool) {
	if e.data.Footer == nil {
		return Footer{}, false
	}
	return *e.data.Footer, true
}

func (e Embed) Image() (Image, bool) {
	if e.data.Image == nil {
		return Image{}, false
	}
	return *e.data.Image, true
}

func (e Embed) Thumbnail() (Thumbnail, bool) {
	if e.data.Thumbnail == nil {
		return Thumbnail{}, false
	}
	return *e.data.Thumbnail, true
}

func (e Embed) Video() (Video, bool) {
	if e.data.Video == nil {
		return Video{}, false
	}
	return *e.data.Video, true
}

func (e Embed) Provider() (Provider, bool) {
	if e.data.Provider == nil {
		return Provider{}, false
	}
	return *e.data.Provider, true
}

func (e Embed) Author() (Author, bool) {
	if e.data.Author == nil {
		return Author{}, false
	}
	return *e.data.Author, true
}

// Fields returns a copy of the ordered field list.
func (e Embed) Fields() []Field {
	if len(e.data.Fields) == 0 {
		return nil
	}
	return append([]Field(nil), e.data.Fields...)
}

// TextLength counts the characters Discord sums toward the 6000 limit.
func (e Embed) TextLength() int {
	total := utf8.RuneCountInString(e.data.Title) + utf8.RuneCountInString(e.data.Description)
	for _, field := range e.data.Fields {
		total += utf8.RuneCountInString(field.Name) + utf8.RuneCountInString(field.Value)
	}
	if e.data.Footer != nil {
		total += utf8.RuneCountInString(e.data.Footer.Text)
	}
	if e.data.Author != nil {
		total += utf8.RuneCountInString(e.data.Author.Name)
	}
	return total
}

func (e Embed) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.data)
}

// UnmarshalJSON accepts the wire shape. Timestamps are kept verbatim.
func (e *Embed) UnmarshalJSON(data []byte) error {
	var decoded embedData
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	e.data = decoded.clone()
	return nil
}

func (d embedData) clone() embedData {
	out := d
	if d.Color != nil {
		color := *d.Color
		out.Color = &color
	}
	if d.Footer != nil {
		footer := *d.Footer
		out.Footer = &footer
	}
	if d.Image != nil {
		image := *d.Image
		out.Image = &image
	}
	if d.Thumbnail != nil {
		thumbnail := *d.Thumbnail
		out.Thumbnail = &thumbnail
	}
	if d.Video != nil {
		video := *d.Video
		out.Video = &video
	}
	if d.Provider != nil {
		provider := *d.Provider
		out.Provider = &provider
	}
	if d.Author != nil {
		author := *d.Author
		out.Author = &author
	}
	if len(d.Fields) > 0 {
		out.Fields = append([]Field(nil), d.Fields...)
	}
	return out
}
