package command

import (
	"github.com/bwmarrin/discordgo"
)

var ScheduleTestCommand = &discordgo.ApplicationCommand{
	Name:        "schedule_test",
	Description: "Test schedule detection with an image URL",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "image_url",
			Description: "URL of the schedule image",
			Required:    true,
		},
	},
}

var ScheduleReloadCommand = &discordgo.ApplicationCommand{
	Name:        "schedule_reload",
	Description: "Reload schedule configuration and clear pending submissions",
}

var ScheduleFixTimeCommand = &discordgo.ApplicationCommand{
	Name:        "schedule_fix_time",
	Description: "Manually correct an event time on a pending schedule",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "message_id",
			Description: "ID of the pending review message",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "event_index",
			Description: "1-based index of the event to change",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "time",
			Description: "New time as HH:MM (in the event's timezone)",
			Required:    true,
		},
	},
}

var ScheduleHistoryCommand = &discordgo.ApplicationCommand{
	Name:        "schedule_history",
	Description: "Show the most recent schedule decisions",
}

// AllCommands lists every command the bot registers on startup.
var AllCommands = []*discordgo.ApplicationCommand{
	ScheduleTestCommand,
	ScheduleReloadCommand,
	ScheduleFixTimeCommand,
	ScheduleHistoryCommand,
}
