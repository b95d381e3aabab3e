package schedule

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/NiklasKy/QuingDiscordBot/config"
	"github.com/NiklasKy/QuingDiscordBot/db"
	"github.com/NiklasKy/QuingDiscordBot/workflow"

	"github.com/bwmarrin/discordgo"
)

const noPermissionMessage = "You don't have permission to use this command."

// ScheduleTest runs an arbitrary image URL through the detection pipeline
// and shows the result, without registering a pending submission.
func (h *Handlers) ScheduleTest(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !hasStaffRole(i.Member) {
		respondEphemeral(s, i, noPermissionMessage)
		return
	}

	var imageURL string
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "image_url" {
			imageURL = opt.StringValue()
		}
	}
	if imageURL == "" {
		respondEphemeral(s, i, "Please provide an image URL.")
		return
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
	if err != nil {
		log.Printf("Failed to defer schedule_test response: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	result, err := h.Machine.Preview(ctx, imageURL)
	content := ""
	if err != nil {
		content = fmt.Sprintf("Failed to detect schedule from the image: %v", err)
	} else {
		content = "**Schedule Detection Test Result:**\n\n" + result
	}

	_, err = s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		log.Printf("Failed to send schedule_test followup: %v", err)
	}
}

// ScheduleReload re-reads the configuration and discards all in-flight
// submissions. Review messages already posted are left stale.
func (h *Handlers) ScheduleReload(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !hasStaffRole(i.Member) {
		respondEphemeral(s, i, noPermissionMessage)
		return
	}

	if err := config.LoadConfig(); err != nil {
		respondEphemeral(s, i, fmt.Sprintf("Error reloading configuration: %v", err))
		return
	}

	cleared := h.Machine.Reconfigure(SettingsFromConfig())
	respondEphemeral(s, i, fmt.Sprintf(
		"Configuration reloaded. Schedule channel: %s, announcement channel: %s. Dropped %d pending submission(s); their review messages are no longer tracked.",
		config.Cfg.Schedule.ChannelID, config.Cfg.Schedule.AnnouncementChannelID, cleared))
}

// ScheduleFixTime corrects the wall-clock time of one event on a pending
// review message.
func (h *Handlers) ScheduleFixTime(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !hasStaffRole(i.Member) {
		respondEphemeral(s, i, noPermissionMessage)
		return
	}

	var messageID, newTime string
	var index int
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "message_id":
			messageID = opt.StringValue()
		case "event_index":
			index = int(opt.IntValue())
		case "time":
			newTime = opt.StringValue()
		}
	}

	actor := workflow.Actor{
		ID:      i.Member.User.ID,
		Name:    displayName(i.Member),
		RoleIDs: i.Member.Roles,
	}

	err := h.Machine.EditEventTime(messageID, index, newTime, actor)
	switch {
	case err == workflow.ErrNotFound:
		respondEphemeral(s, i, "No pending schedule found for this message ID.")
	case err != nil:
		respondEphemeral(s, i, fmt.Sprintf("Could not update time: %v", err))
	default:
		respondEphemeral(s, i, "Time updated.")
	}
}

// ScheduleHistory shows the most recent terminal decisions.
func (h *Handlers) ScheduleHistory(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !hasStaffRole(i.Member) {
		respondEphemeral(s, i, noPermissionMessage)
		return
	}

	decisions, err := db.RecentDecisions(10)
	if err != nil {
		log.Printf("Failed to load decision history: %v", err)
		respondEphemeral(s, i, "There was an error accessing the database. Please try again later.")
		return
	}
	if len(decisions) == 0 {
		respondEphemeral(s, i, "No schedule decisions recorded yet.")
		return
	}

	var b strings.Builder
	b.WriteString("**Recent schedule decisions:**\n")
	for _, d := range decisions {
		when := time.Unix(d.DecidedAt, 0).UTC().Format("2006-01-02 15:04")
		if d.ReviewerID != "" {
			fmt.Fprintf(&b, "• %s — %s by <@%s> (submitted by <@%s>, %d event(s))\n",
				when, d.Status, d.ReviewerID, d.SubmitterID, d.EventCount)
		} else {
			fmt.Fprintf(&b, "• %s — %s (submitted by <@%s>)\n", when, d.Status, d.SubmitterID)
		}
	}
	respondEphemeral(s, i, b.String())
}

// SettingsFromConfig builds the machine's reloadable settings from the
// loaded configuration.
func SettingsFromConfig() workflow.Settings {
	return workflow.Settings{
		StaffRoles:    config.Cfg.Schedule.StaffRoles,
		EmojiID:       config.Cfg.Schedule.EmojiID,
		EmojiName:     config.Cfg.Schedule.EmojiName,
		EmojiAnimated: config.Cfg.Schedule.EmojiAnimated,
	}
}
