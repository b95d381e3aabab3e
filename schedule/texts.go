package schedule

// Text building blocks for rendered schedule messages.
const (
	headerFallback = "💜 Streaming Schedule 💚"
	noEventsLine   = "❌ No events found in this schedule."

	pendingInstructions = "React with ✅ to approve and publish this schedule, or ❌ to reject and discard it."

	errorSummaryFallback = "The schedule could not be processed."
	errorRetryHint       = "Post the image again, or use /schedule_test with the image URL to retry manually."
)
