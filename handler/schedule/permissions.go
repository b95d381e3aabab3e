package schedule

import (
	"github.com/NiklasKy/QuingDiscordBot/config"

	"github.com/bwmarrin/discordgo"
)

// hasStaffRole reports whether the member holds one of the configured
// staff roles.
func hasStaffRole(member *discordgo.Member) bool {
	if member == nil {
		return false
	}
	for _, roleID := range member.Roles {
		for _, staffID := range config.Cfg.Schedule.StaffRoles {
			if roleID == staffID {
				return true
			}
		}
	}
	return false
}

func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}
