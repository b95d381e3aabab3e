package schedule

import (
	"fmt"
	"strings"

	"github.com/NiklasKy/QuingDiscordBot/model"
)

// RenderMode selects which message variant Render produces.
type RenderMode int

const (
	ModePending RenderMode = iota
	ModeApproved
	ModeRejected
	ModeError
)

// RenderContext carries the attribution and presentation inputs that are
// not part of the document itself.
type RenderContext struct {
	SubmitterID   string
	SubmitterName string
	ReviewerID    string

	EmojiID       string
	EmojiName     string
	EmojiAnimated bool

	// ErrorSummary is shown in ModeError. It should describe the failure
	// without leaking internals.
	ErrorSummary string
}

// Render produces the display text for a schedule document in the given
// mode. It is total: a nil document, zero events, a missing date range or
// an event without a resolved instant all still render.
func Render(doc *model.ScheduleDocument, mode RenderMode, ctx RenderContext) string {
	switch mode {
	case ModeRejected:
		return fmt.Sprintf("❌ **Rejected** by <@%s>\nSchedule discarded", ctx.ReviewerID)
	case ModeError:
		summary := ctx.ErrorSummary
		if summary == "" {
			summary = errorSummaryFallback
		}
		return fmt.Sprintf("⚠️ %s\n%s", summary, errorRetryHint)
	}

	var b strings.Builder
	b.WriteString(RenderBody(doc, ctx))

	switch mode {
	case ModePending:
		fmt.Fprintf(&b, "\n\n**Submitted by:** <@%s> (%s)\n%s", ctx.SubmitterID, ctx.SubmitterName, pendingInstructions)
	case ModeApproved:
		fmt.Fprintf(&b, "\n\n✅ **Approved** by <@%s>", ctx.ReviewerID)
	}
	return b.String()
}

// RenderBody produces just the date-range header and event lines, in
// document order. It is shared by the pending and approved variants and
// by the /schedule_test diagnostic output.
func RenderBody(doc *model.ScheduleDocument, ctx RenderContext) string {
	var b strings.Builder

	if doc != nil && doc.StartDate != nil && doc.EndDate != nil {
		fmt.Fprintf(&b, "💜 [%s - %s] 💚\n",
			doc.StartDate.Format("02 January"), doc.EndDate.Format("02 January"))
	} else {
		b.WriteString(headerFallback + "\n")
	}

	if doc == nil || len(doc.Events) == 0 {
		b.WriteString("\n" + noEventsLine)
		return b.String()
	}

	emoji := emojiTag(ctx)
	for _, event := range doc.Events {
		fmt.Fprintf(&b, "\n%s %s\n", emoji, event.Title)
		if event.UTCInstant != nil {
			fmt.Fprintf(&b, "<t:%d>\n", event.UTCInstant.Unix())
		} else if event.RawTime != "" {
			// No resolved instant; show the raw wall-clock time instead.
			line := event.RawTime
			if event.Timezone != "" {
				line += " " + event.Timezone
			}
			if event.DayName != "" {
				line = event.DayName + " " + line
			}
			fmt.Fprintf(&b, "🕒 %s\n", line)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func emojiTag(ctx RenderContext) string {
	if ctx.EmojiID == "" || ctx.EmojiName == "" {
		return "🎬"
	}
	if ctx.EmojiAnimated {
		return fmt.Sprintf("<a:%s:%s>", ctx.EmojiName, ctx.EmojiID)
	}
	return fmt.Sprintf("<:%s:%s>", ctx.EmojiName, ctx.EmojiID)
}
