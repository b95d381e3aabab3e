package model

// ScheduleDecision is one row of the decision history table. It is
// write-behind bookkeeping for staff; the in-memory registry remains the
// only authoritative workflow state.
type ScheduleDecision struct {
	ID              string
	ReviewMessageID string
	SubmitterID     string
	ReviewerID      string
	Status          string
	EventCount      int
	DecidedAt       int64
}
