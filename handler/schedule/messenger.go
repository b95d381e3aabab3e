package schedule

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/NiklasKy/QuingDiscordBot/config"

	"github.com/bwmarrin/discordgo"
)

// Embed colors per review state.
const (
	colorPending  = 0x3498DB
	colorApproved = 0x2ECC71
	colorRejected = 0xE74C3C
	colorError    = 0xE67E22
)

// Messenger implements workflow.Messenger on top of a Discord session.
type Messenger struct {
	session *discordgo.Session
	hc      *http.Client
}

// NewMessenger wraps the given session.
func NewMessenger(session *discordgo.Session) *Messenger {
	return &Messenger{
		session: session,
		hc:      &http.Client{Timeout: 30 * time.Second},
	}
}

// PostReview posts the pending-review embed with the submitted image and
// seeds the decision reactions.
func (m *Messenger) PostReview(channelID, text, imageURL string) (string, error) {
	embed := &discordgo.MessageEmbed{
		Title:       "📅 Schedule Detection Result",
		Description: text,
		Color:       colorPending,
		Image:       &discordgo.MessageEmbedImage{URL: imageURL},
		Footer: &discordgo.MessageEmbedFooter{
			Text: "React with ✅ to approve or ❌ to reject",
		},
	}

	msg, err := m.session.ChannelMessageSendEmbed(channelID, embed)
	if err != nil {
		return "", err
	}

	for _, emoji := range []string{"✅", "❌"} {
		if err := m.session.MessageReactionAdd(channelID, msg.ID, emoji); err != nil {
			// Reviewers can still react manually; the message is posted.
			fmt.Printf("Error seeding reaction %s on %s: %v\n", emoji, msg.ID, err)
		}
	}

	return msg.ID, nil
}

// UpdateReview rewrites the pending-review embed after a staff edit.
func (m *Messenger) UpdateReview(channelID, messageID, text string) error {
	return m.editReview(channelID, messageID, text, colorPending)
}

// MarkApproved rewrites the review embed in its approved form and retires
// the decision reactions.
func (m *Messenger) MarkApproved(channelID, messageID, text string) error {
	if err := m.editReview(channelID, messageID, text, colorApproved); err != nil {
		return err
	}
	return m.session.MessageReactionsRemoveAll(channelID, messageID)
}

// MarkRejected rewrites the review embed in its rejected form and retires
// the decision reactions.
func (m *Messenger) MarkRejected(channelID, messageID, text string) error {
	if err := m.editReview(channelID, messageID, text, colorRejected); err != nil {
		return err
	}
	return m.session.MessageReactionsRemoveAll(channelID, messageID)
}

// Publish posts the approved schedule to the announcement channel,
// re-uploading the original image and pinging the configured role.
func (m *Messenger) Publish(text, imageURL, approverName string) error {
	channelID := config.Cfg.Schedule.AnnouncementChannelID
	if channelID == "" {
		return fmt.Errorf("announcement channel not configured")
	}

	embed := &discordgo.MessageEmbed{
		Title:       "📅 Weekly Streaming Schedule",
		Description: text,
		Color:       colorApproved,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Approved by %s", approverName),
		},
	}

	send := &discordgo.MessageSend{
		Embed: embed,
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse: []discordgo.AllowedMentionType{discordgo.AllowedMentionTypeRoles},
		},
	}
	if roleID := config.Cfg.Schedule.AnnouncementPingRole; roleID != "" {
		send.Content = fmt.Sprintf("<@&%s>", roleID)
	}

	// The attachment URL belongs to the submitter's message; re-upload so
	// the announcement keeps its image even if the original is deleted.
	if data, err := m.downloadImage(imageURL); err == nil {
		send.Files = []*discordgo.File{{
			Name:   "schedule_announcement.png",
			Reader: data,
		}}
		embed.Image = &discordgo.MessageEmbedImage{URL: "attachment://schedule_announcement.png"}
	} else {
		fmt.Printf("Error downloading original image for announcement: %v\n", err)
		embed.Image = &discordgo.MessageEmbedImage{URL: imageURL}
	}

	_, err := m.session.ChannelMessageSendComplex(channelID, send)
	return err
}

// PostError posts the error-mode embed for a failed submission.
func (m *Messenger) PostError(channelID, text string) error {
	embed := &discordgo.MessageEmbed{
		Title:       "⚠️ Schedule Processing Failed",
		Description: text,
		Color:       colorError,
	}
	_, err := m.session.ChannelMessageSendEmbed(channelID, embed)
	return err
}

func (m *Messenger) editReview(channelID, messageID, text string, color int) error {
	embed := &discordgo.MessageEmbed{
		Title:       "📅 Schedule Detection Result",
		Description: text,
		Color:       color,
	}
	_, err := m.session.ChannelMessageEditEmbed(channelID, messageID, embed)
	return err
}

func (m *Messenger) downloadImage(url string) (io.Reader, error) {
	resp, err := m.hc.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 20<<20))
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}
