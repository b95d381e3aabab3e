package workflow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/NiklasKy/QuingDiscordBot/model"
	"github.com/NiklasKy/QuingDiscordBot/schedule"

	"github.com/google/uuid"
)

// Decision is a terminal choice made by a staff member.
type Decision int

const (
	DecisionApprove Decision = iota
	DecisionReject
)

// DecideResult tells the caller what happened to a decision event.
type DecideResult int

const (
	// DecideApplied means this decision won and its side effects ran.
	DecideApplied DecideResult = iota
	// DecideStale means the submission is unknown or already decided;
	// the event was ignored.
	DecideStale
	// DecideUnauthorized means the actor lacks a staff role.
	DecideUnauthorized
)

// Actor identifies who triggered a decision or edit.
type Actor struct {
	ID      string
	Name    string
	RoleIDs []string
}

// Extractor is the external vision call that turns an image into the raw
// schedule payload. It is slow, untrusted and may fail.
type Extractor interface {
	Extract(ctx context.Context, imageURL string) (string, error)
}

// Messenger is the messaging-platform surface the machine drives. The
// concrete transport (embeds, reactions) lives behind it.
type Messenger interface {
	// PostReview posts the pending-review message with the original image
	// and the decision affordances, returning the message ID.
	PostReview(channelID, text, imageURL string) (string, error)
	// UpdateReview replaces the pending-review text after a staff edit.
	UpdateReview(channelID, messageID, text string) error
	// MarkApproved and MarkRejected rewrite the review message into its
	// terminal form and retire the decision affordances.
	MarkApproved(channelID, messageID, text string) error
	MarkRejected(channelID, messageID, text string) error
	// Publish posts the approved schedule to the announcement sink.
	Publish(text, imageURL, approverName string) error
	// PostError posts an error-mode message for a failed submission.
	PostError(channelID, text string) error
}

// DecisionRecorder appends terminal outcomes to the decision history.
type DecisionRecorder interface {
	RecordDecision(model.ScheduleDecision) error
}

// Settings is the reloadable part of the machine's configuration.
type Settings struct {
	StaffRoles    []string
	EmojiID       string
	EmojiName     string
	EmojiAnimated bool
}

// ErrUnauthorized is returned by staff-only operations invoked by a
// non-staff actor.
var ErrUnauthorized = errors.New("not authorized")

// SubmissionRequest describes an image accepted for processing.
type SubmissionRequest struct {
	ChannelID     string
	MessageID     string
	ImageURL      string
	SubmitterID   string
	SubmitterName string
}

// Machine drives the submission lifecycle
// PROCESSING → AWAITING_DECISION → {APPROVED | REJECTED}, with the side
// branch PROCESSING → ERRORED when extraction or parsing fails. Every
// check-then-transition runs inside a single registry Update, so a
// decision is applied exactly once even under racing reactions.
type Machine struct {
	registry  *Registry
	extractor Extractor
	messenger Messenger
	recorder  DecisionRecorder

	mu       sync.RWMutex
	settings Settings
}

// NewMachine wires the machine to its collaborators. recorder may be nil
// when no decision history is kept.
func NewMachine(registry *Registry, extractor Extractor, messenger Messenger, recorder DecisionRecorder, settings Settings) *Machine {
	return &Machine{
		registry:  registry,
		extractor: extractor,
		messenger: messenger,
		recorder:  recorder,
		settings:  settings,
	}
}

// Reconfigure swaps the reloadable settings and discards all in-flight
// submissions, returning how many were dropped. Review messages already
// posted are left stale; their late reactions become no-ops.
func (m *Machine) Reconfigure(settings Settings) int {
	m.mu.Lock()
	m.settings = settings
	m.mu.Unlock()

	return m.registry.ClearAll()
}

// Pending returns the number of in-flight submissions.
func (m *Machine) Pending() int {
	return m.registry.Len()
}

// Tracks reports whether a review message ID belongs to a pending
// submission, so the reaction handler can ignore unrelated messages.
func (m *Machine) Tracks(messageID string) bool {
	_, ok := m.registry.Get(messageID)
	return ok
}

// Submit runs one submission through extraction, parsing and review
// posting. It blocks for the duration of the external calls; callers run
// it from the event handler's own goroutine. If the registry was cleared
// while the extraction was in flight, the result is dropped silently.
func (m *Machine) Submit(ctx context.Context, req SubmissionRequest) error {
	provisional := uuid.New().String()
	sub := &model.PendingSubmission{
		ChannelID:         req.ChannelID,
		SubmitterID:       req.SubmitterID,
		SubmitterName:     req.SubmitterName,
		OriginalImageURL:  req.ImageURL,
		OriginalMessageID: req.MessageID,
		Status:            model.StatusProcessing,
		CreatedAt:         time.Now(),
	}
	if err := m.registry.Create(provisional, sub); err != nil {
		return fmt.Errorf("registering submission: %w", err)
	}

	payload, err := m.extractor.Extract(ctx, req.ImageURL)
	if err != nil {
		m.failSubmission(provisional, "The schedule image could not be analyzed.", err)
		return nil
	}

	doc, err := schedule.Parse(payload)
	if err != nil {
		m.failSubmission(provisional, "The detected schedule data could not be read.", err)
		return nil
	}

	if err := m.registry.Update(provisional, func(p *model.PendingSubmission) {
		p.Document = doc
	}); err != nil {
		log.Printf("Submission %s vanished during processing, dropping result", provisional)
		return nil
	}

	text := schedule.Render(doc, schedule.ModePending, m.renderContext(sub.SubmitterID, sub.SubmitterName, ""))
	messageID, err := m.messenger.PostReview(req.ChannelID, text, req.ImageURL)
	if err != nil {
		m.failSubmission(provisional, "The review message could not be posted.", err)
		return nil
	}

	if err := m.registry.Rekey(provisional, messageID); err != nil {
		// Cleared while the review post was in flight; the posted message
		// stays in the channel but is no longer tracked.
		log.Printf("Submission %s untracked after review post: %v", provisional, err)
		return nil
	}
	if err := m.registry.Update(messageID, func(p *model.PendingSubmission) {
		p.ReviewMessageID = messageID
		p.Status = model.StatusAwaitingDecision
	}); err != nil {
		log.Printf("Submission %s vanished before review state was recorded", messageID)
	}
	return nil
}

// Decide consumes one decision event for the submission registered under
// the review message ID. Late, repeated and unauthorized decisions are
// no-ops; exactly one decision ever reaches a terminal side effect.
func (m *Machine) Decide(reviewMessageID string, decision Decision, actor Actor) DecideResult {
	if !m.isStaff(actor) {
		return DecideUnauthorized
	}

	var snap model.PendingSubmission
	applied := false
	err := m.registry.Update(reviewMessageID, func(p *model.PendingSubmission) {
		if p.Status != model.StatusAwaitingDecision {
			return
		}
		if decision == DecisionApprove {
			p.Status = model.StatusApproved
		} else {
			p.Status = model.StatusRejected
		}
		applied = true
		snap = *p
	})
	if err != nil || !applied {
		return DecideStale
	}

	if decision == DecisionApprove {
		m.approve(&snap, actor)
	} else {
		m.reject(&snap, actor)
	}
	m.recordDecision(&snap, actor.ID)
	m.registry.Remove(reviewMessageID)
	return DecideApplied
}

func (m *Machine) approve(sub *model.PendingSubmission, actor Actor) {
	text := schedule.Render(sub.Document, schedule.ModeApproved, m.renderContext(sub.SubmitterID, sub.SubmitterName, actor.ID))
	if err := m.messenger.MarkApproved(sub.ChannelID, sub.ReviewMessageID, text); err != nil {
		log.Printf("Failed to mark review message %s approved: %v", sub.ReviewMessageID, err)
	}

	body := schedule.RenderBody(sub.Document, m.renderContext(sub.SubmitterID, sub.SubmitterName, actor.ID))
	if err := m.messenger.Publish(body, sub.OriginalImageURL, actor.Name); err != nil {
		log.Printf("Failed to publish approved schedule %s: %v", sub.ReviewMessageID, err)
	}
}

func (m *Machine) reject(sub *model.PendingSubmission, actor Actor) {
	text := schedule.Render(sub.Document, schedule.ModeRejected, m.renderContext(sub.SubmitterID, sub.SubmitterName, actor.ID))
	if err := m.messenger.MarkRejected(sub.ChannelID, sub.ReviewMessageID, text); err != nil {
		log.Printf("Failed to mark review message %s rejected: %v", sub.ReviewMessageID, err)
	}
}

// EditEventTime replaces the wall-clock time of one pending event
// (1-based index), rebuilds its UTC instant and refreshes the review
// message. Only staff may edit, and only while a decision is pending.
func (m *Machine) EditEventTime(reviewMessageID string, index int, newTime string, actor Actor) error {
	if !m.isStaff(actor) {
		return ErrUnauthorized
	}

	var snap model.PendingSubmission
	var editErr error
	err := m.registry.Update(reviewMessageID, func(p *model.PendingSubmission) {
		if p.Status != model.StatusAwaitingDecision || p.Document == nil {
			editErr = ErrNotFound
			return
		}
		if index < 1 || index > len(p.Document.Events) {
			editErr = fmt.Errorf("event index out of range (1-%d)", len(p.Document.Events))
			return
		}
		event := &p.Document.Events[index-1]
		if event.Date != nil {
			// Validate before mutating so a bad edit leaves the event
			// untouched.
			instant, nerr := schedule.Normalize(*event.Date, newTime, event.Timezone)
			if nerr != nil {
				editErr = nerr
				return
			}
			event.UTCInstant = &instant
		} else {
			event.UTCInstant = nil
		}
		event.RawTime = newTime
		snap = *p
	})
	if err != nil {
		return ErrNotFound
	}
	if editErr != nil {
		return editErr
	}

	text := schedule.Render(snap.Document, schedule.ModePending, m.renderContext(snap.SubmitterID, snap.SubmitterName, ""))
	if err := m.messenger.UpdateReview(snap.ChannelID, snap.ReviewMessageID, text); err != nil {
		log.Printf("Failed to refresh review message %s after time edit: %v", snap.ReviewMessageID, err)
	}
	return nil
}

// Preview runs an image through extraction, parsing and rendering without
// touching the registry. It backs the manual diagnostics command.
func (m *Machine) Preview(ctx context.Context, imageURL string) (string, error) {
	payload, err := m.extractor.Extract(ctx, imageURL)
	if err != nil {
		return "", err
	}
	doc, err := schedule.Parse(payload)
	if err != nil {
		return "", err
	}
	return schedule.RenderBody(doc, m.renderContext("", "", "")), nil
}

// failSubmission handles the PROCESSING → ERRORED branch. A submission
// that was cleared while processing is dropped without posting anything.
func (m *Machine) failSubmission(id, summary string, cause error) {
	log.Printf("Submission %s failed: %v", id, cause)

	var snap model.PendingSubmission
	err := m.registry.Update(id, func(p *model.PendingSubmission) {
		p.Status = model.StatusErrored
		p.ErrorDetail = cause.Error()
		snap = *p
	})
	if err != nil {
		log.Printf("Submission %s vanished before failure could be reported", id)
		return
	}

	text := schedule.Render(nil, schedule.ModeError, schedule.RenderContext{ErrorSummary: summary})
	if perr := m.messenger.PostError(snap.ChannelID, text); perr != nil {
		log.Printf("Failed to post error message for submission %s: %v", id, perr)
	}
	m.recordDecision(&snap, "")
	m.registry.Remove(id)
}

func (m *Machine) recordDecision(sub *model.PendingSubmission, reviewerID string) {
	if m.recorder == nil {
		return
	}
	eventCount := 0
	if sub.Document != nil {
		eventCount = len(sub.Document.Events)
	}
	decision := model.ScheduleDecision{
		ID:              uuid.New().String(),
		ReviewMessageID: sub.ReviewMessageID,
		SubmitterID:     sub.SubmitterID,
		ReviewerID:      reviewerID,
		Status:          string(sub.Status),
		EventCount:      eventCount,
		DecidedAt:       time.Now().Unix(),
	}
	if err := m.recorder.RecordDecision(decision); err != nil {
		log.Printf("Failed to record decision for %s: %v", sub.ReviewMessageID, err)
	}
}

func (m *Machine) isStaff(actor Actor) bool {
	m.mu.RLock()
	staff := m.settings.StaffRoles
	m.mu.RUnlock()

	for _, roleID := range actor.RoleIDs {
		for _, staffID := range staff {
			if roleID == staffID {
				return true
			}
		}
	}
	return false
}

func (m *Machine) renderContext(submitterID, submitterName, reviewerID string) schedule.RenderContext {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return schedule.RenderContext{
		SubmitterID:   submitterID,
		SubmitterName: submitterName,
		ReviewerID:    reviewerID,
		EmojiID:       m.settings.EmojiID,
		EmojiName:     m.settings.EmojiName,
		EmojiAnimated: m.settings.EmojiAnimated,
	}
}
