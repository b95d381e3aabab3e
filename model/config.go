package model

// Config is the top-level structure of config.yaml.
type Config struct {
	Token    string   `mapstructure:"TOKEN"`
	Commands Commands `mapstructure:"commands"`
	Schedule Schedule `mapstructure:"schedule"`
	OpenAI   OpenAI   `mapstructure:"openai"`
	Database Database `mapstructure:"database"`
}

// Commands corresponds to the "commands" section.
type Commands struct {
	Allowguilds []string `mapstructure:"allowguilds"`
}

// Schedule corresponds to the "schedule" section.
type Schedule struct {
	ChannelID             string   `mapstructure:"channel_id"`
	AnnouncementChannelID string   `mapstructure:"announcement_channel_id"`
	AnnouncementPingRole  string   `mapstructure:"announcement_ping_role_id"`
	StaffRoles            []string `mapstructure:"staff_roles"`
	EmojiID               string   `mapstructure:"emoji_id"`
	EmojiName             string   `mapstructure:"emoji_name"`
	EmojiAnimated         bool     `mapstructure:"emoji_animated"`
}

// OpenAI corresponds to the "openai" section.
type OpenAI struct {
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// Database corresponds to the "database" section.
type Database struct {
	Path string `mapstructure:"path"`
}
