package schedule

import (
	"fmt"
	"testing"
	"time"

	"github.com/NiklasKy/QuingDiscordBot/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext() RenderContext {
	return RenderContext{
		SubmitterID:   "111",
		SubmitterName: "streamer",
		ReviewerID:    "222",
		EmojiID:       "1234567890123456789",
		EmojiName:     "cassia_kurukuru",
	}
}

func weekDocument() *model.ScheduleDocument {
	start := time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.July, 6, 0, 0, 0, 0, time.UTC)
	instant := time.Date(2024, time.June, 30, 18, 0, 0, 0, time.UTC)
	eventDate := start
	return &model.ScheduleDocument{
		StartDate: &start,
		EndDate:   &end,
		Events: []model.ScheduleEvent{
			{
				DayName:    "Monday",
				Date:       &eventDate,
				RawTime:    "18:00",
				Timezone:   "UTC",
				Title:      "Stream",
				UTCInstant: &instant,
			},
		},
	}
}

func TestRenderApprovedResolvedInstant(t *testing.T) {
	out := Render(weekDocument(), ModeApproved, testContext())

	assert.Contains(t, out, "[30 June - 06 July]")
	assert.Contains(t, out, "Stream")
	// 2024-06-30T18:00:00Z
	assert.Contains(t, out, fmt.Sprintf("<t:%d>", int64(1719770400)))
	assert.Contains(t, out, "Approved** by <@222>")
	assert.NotContains(t, out, pendingInstructions)
}

func TestRenderPending(t *testing.T) {
	out := Render(weekDocument(), ModePending, testContext())

	assert.Contains(t, out, "<@111>")
	assert.Contains(t, out, "streamer")
	assert.Contains(t, out, pendingInstructions)
	assert.Contains(t, out, "<:cassia_kurukuru:1234567890123456789>")
}

func TestRenderRejectedIsMinimal(t *testing.T) {
	out := Render(weekDocument(), ModeRejected, testContext())

	assert.Contains(t, out, "Rejected** by <@222>")
	// No event detail is re-rendered on rejection.
	assert.NotContains(t, out, "Stream")
}

func TestRenderError(t *testing.T) {
	ctx := testContext()
	ctx.ErrorSummary = "The schedule image could not be analyzed."
	out := Render(nil, ModeError, ctx)

	assert.Contains(t, out, "could not be analyzed")
	assert.Contains(t, out, "/schedule_test")
}

func TestRenderIsTotal(t *testing.T) {
	noInstant := weekDocument()
	noInstant.Events[0].UTCInstant = nil

	noRange := weekDocument()
	noRange.StartDate = nil
	noRange.EndDate = nil

	tests := []struct {
		name string
		doc  *model.ScheduleDocument
	}{
		{name: "nil document", doc: nil},
		{name: "zero events", doc: &model.ScheduleDocument{}},
		{name: "missing date range", doc: noRange},
		{name: "event without resolved instant", doc: noInstant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, mode := range []RenderMode{ModePending, ModeApproved, ModeRejected, ModeError} {
				out := Render(tt.doc, mode, testContext())
				require.NotEmpty(t, out)
			}
		})
	}
}

func TestRenderZeroEventsMessage(t *testing.T) {
	out := Render(&model.ScheduleDocument{}, ModePending, testContext())
	assert.Contains(t, out, noEventsLine)
}

func TestRenderRawTimeFallback(t *testing.T) {
	doc := weekDocument()
	doc.Events[0].UTCInstant = nil
	doc.Events[0].RawTime = "18:00"
	doc.Events[0].Timezone = "CET"

	out := Render(doc, ModePending, testContext())
	assert.Contains(t, out, "🕒 Monday 18:00 CET")
	assert.NotContains(t, out, "<t:")
}

func TestRenderAnimatedEmojiTag(t *testing.T) {
	ctx := testContext()
	ctx.EmojiAnimated = true

	out := RenderBody(weekDocument(), ctx)
	assert.Contains(t, out, "<a:cassia_kurukuru:1234567890123456789>")
}

func TestRenderDeterministic(t *testing.T) {
	first := Render(weekDocument(), ModePending, testContext())
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Render(weekDocument(), ModePending, testContext()))
	}
}
