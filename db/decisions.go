package db

import (
	"github.com/NiklasKy/QuingDiscordBot/model"
)

// InsertDecision appends one terminal outcome to the decision history.
func InsertDecision(d *model.ScheduleDecision) error {
	_, err := DB.Exec(`
		INSERT INTO schedule_decisions (id, review_message_id, submitter_id, reviewer_id, status, event_count, decided_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, d.ID, d.ReviewMessageID, d.SubmitterID, d.ReviewerID, d.Status, d.EventCount, d.DecidedAt)
	return err
}

// RecentDecisions returns the newest decisions, most recent first.
func RecentDecisions(limit int) ([]model.ScheduleDecision, error) {
	rows, err := DB.Query(`
		SELECT id, review_message_id, submitter_id, reviewer_id, status, event_count, decided_at
		FROM schedule_decisions
		ORDER BY decided_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var decisions []model.ScheduleDecision
	for rows.Next() {
		var d model.ScheduleDecision
		if err := rows.Scan(&d.ID, &d.ReviewMessageID, &d.SubmitterID, &d.ReviewerID, &d.Status, &d.EventCount, &d.DecidedAt); err != nil {
			return nil, err
		}
		decisions = append(decisions, d)
	}
	return decisions, rows.Err()
}

// Recorder adapts the package-level decision store to the workflow's
// DecisionRecorder interface.
type Recorder struct{}

// RecordDecision implements workflow.DecisionRecorder.
func (Recorder) RecordDecision(d model.ScheduleDecision) error {
	return InsertDecision(&d)
}
