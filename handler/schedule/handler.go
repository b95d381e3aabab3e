package schedule

import (
	"context"
	"log"
	"strings"

	"github.com/NiklasKy/QuingDiscordBot/config"
	"github.com/NiklasKy/QuingDiscordBot/workflow"

	"github.com/bwmarrin/discordgo"
)

// Handlers binds the approval workflow to Discord events. It is
// constructed once in bot.Start with the shared machine instance.
type Handlers struct {
	Machine *workflow.Machine
}

// New creates the schedule event handlers.
func New(machine *workflow.Machine) *Handlers {
	return &Handlers{Machine: machine}
}

// MessageCreate watches the schedule channel for posted images and feeds
// each one into the approval workflow.
func (h *Handlers) MessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if m.ChannelID != config.Cfg.Schedule.ChannelID {
		return
	}

	for _, attachment := range m.Attachments {
		if !strings.HasPrefix(attachment.ContentType, "image/") {
			continue
		}

		// Processing marker on the submitter's post.
		if err := s.MessageReactionAdd(m.ChannelID, m.ID, "⏳"); err != nil {
			log.Printf("Failed to add processing marker to message %s: %v", m.ID, err)
		}

		req := workflow.SubmissionRequest{
			ChannelID:     m.ChannelID,
			MessageID:     m.ID,
			ImageURL:      attachment.URL,
			SubmitterID:   m.Author.ID,
			SubmitterName: m.Author.Username,
		}
		if err := h.Machine.Submit(context.Background(), req); err != nil {
			log.Printf("Failed to submit schedule image from %s: %v", m.Author.ID, err)
		}
	}
}

// MessageReactionAdd turns ✅/❌ reactions on tracked review messages
// into decision events.
func (h *Handlers) MessageReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if r.UserID == s.State.User.ID {
		return
	}

	var decision workflow.Decision
	switch r.Emoji.Name {
	case "✅":
		decision = workflow.DecisionApprove
	case "❌":
		decision = workflow.DecisionReject
	default:
		return
	}

	if !h.Machine.Tracks(r.MessageID) {
		return
	}

	member := r.Member
	if member == nil {
		var err error
		member, err = s.GuildMember(r.GuildID, r.UserID)
		if err != nil {
			log.Printf("Failed to resolve member %s for reaction on %s: %v", r.UserID, r.MessageID, err)
			return
		}
	}

	actor := workflow.Actor{
		ID:      r.UserID,
		Name:    displayName(member),
		RoleIDs: member.Roles,
	}

	result := h.Machine.Decide(r.MessageID, decision, actor)
	if result == workflow.DecideUnauthorized {
		// Non-staff reactions are cleared so the message keeps showing
		// only the live decision affordances.
		if err := s.MessageReactionRemove(r.ChannelID, r.MessageID, r.Emoji.Name, r.UserID); err != nil {
			log.Printf("Failed to remove unauthorized reaction from %s: %v", r.MessageID, err)
		}
	}
}

func displayName(member *discordgo.Member) string {
	if member.Nick != "" {
		return member.Nick
	}
	if member.User != nil {
		return member.User.Username
	}
	return ""
}
