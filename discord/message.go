package discord

// AllowedMentions restricts which mentions in Content ping their targets.
type AllowedMentions struct {
	Parse       []string `json:"parse,omitempty" yaml:"parse"`
	Roles       []string `json:"roles,omitempty" yaml:"roles"`
	Users       []string `json:"users,omitempty" yaml:"users"`
	RepliedUser bool     `json:"replied_user,omitempty" yaml:"replied_user"`
}

// NoMentions suppresses every mention ping.
func NoMentions() *AllowedMentions {
	return &AllowedMentions{}
}

// Message is the execute-webhook payload.
type Message struct {
	Content         string           `json:"content,omitempty"`
	Username        string           `json:"username,omitempty"`
	AvatarURL       string           `json:"avatar_url,omitempty"`
	TTS             bool             `json:"tts,omitempty"`
	Embeds          []Embed          `json:"embeds,omitempty"`
	AllowedMentions *AllowedMentions `json:"allowed_mentions,omitempty"`
}

// SentMessage is the subset of the created message returned when the
// webhook is executed with wait=true.
type SentMessage struct {
	ID        string
	ChannelID string
	Timestamp string
}
