package model

import "time"

// SubmissionStatus is the workflow state of a pending submission.
type SubmissionStatus string

const (
	StatusProcessing       SubmissionStatus = "PROCESSING"
	StatusAwaitingDecision SubmissionStatus = "AWAITING_DECISION"
	StatusApproved         SubmissionStatus = "APPROVED"
	StatusRejected         SubmissionStatus = "REJECTED"
	StatusErrored          SubmissionStatus = "ERRORED"
)

// PendingSubmission is one in-flight image-to-schedule workflow instance.
// While the submission is still PROCESSING it is registered under a
// provisional ID; once the review message is posted the entry is re-keyed
// to ReviewMessageID.
type PendingSubmission struct {
	ID              string
	ReviewMessageID string
	ChannelID       string

	Document    *ScheduleDocument
	ErrorDetail string

	SubmitterID   string
	SubmitterName string

	// OriginalImageURL is the attachment of the submitter's post, reused
	// for the announcement when the schedule is approved.
	OriginalImageURL  string
	OriginalMessageID string

	Status    SubmissionStatus
	CreatedAt time.Time
}
