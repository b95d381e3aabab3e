package bot

import (
	"github.com/NiklasKy/QuingDiscordBot/handler"
	schedulehandler "github.com/NiklasKy/QuingDiscordBot/handler/schedule"

	"github.com/bwmarrin/discordgo"
)

func registerEventHandlers(s *discordgo.Session, h *schedulehandler.Handlers) {
	s.AddHandler(handler.OnInteractionCreate)
	s.AddHandler(h.MessageCreate)
	s.AddHandler(h.MessageReactionAdd)

	s.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsGuildMembers
}
