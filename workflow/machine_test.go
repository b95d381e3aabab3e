package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/NiklasKy/QuingDiscordBot/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validPayload = `<schedule>
  <date_range>
    <start_date>2024-06-30</start_date>
    <end_date>2024-07-06</end_date>
  </date_range>
  <events>
    <event>
      <day>Monday</day>
      <date>2024-06-30</date>
      <time>18:00</time>
      <timezone>UTC</timezone>
      <title>Stream</title>
    </event>
  </events>
</schedule>`

type fakeExtractor struct {
	payload string
	err     error
	gate    chan struct{}
}

func (f *fakeExtractor) Extract(ctx context.Context, imageURL string) (string, error) {
	if f.gate != nil {
		<-f.gate
	}
	return f.payload, f.err
}

type fakeMessenger struct {
	mu sync.Mutex

	nextMessageID string
	postReviewErr error

	reviews   []string
	updates   []string
	approved  []string
	rejected  []string
	published []string
	errors    []string
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{nextMessageID: "review-1"}
}

func (f *fakeMessenger) PostReview(channelID, text, imageURL string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.postReviewErr != nil {
		return "", f.postReviewErr
	}
	f.reviews = append(f.reviews, text)
	return f.nextMessageID, nil
}

func (f *fakeMessenger) UpdateReview(channelID, messageID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, text)
	return nil
}

func (f *fakeMessenger) MarkApproved(channelID, messageID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.approved = append(f.approved, text)
	return nil
}

func (f *fakeMessenger) MarkRejected(channelID, messageID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejected = append(f.rejected, text)
	return nil
}

func (f *fakeMessenger) Publish(text, imageURL, approverName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, text)
	return nil
}

func (f *fakeMessenger) PostError(channelID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = append(f.errors, text)
	return nil
}

func (f *fakeMessenger) publishCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.published)
}

type fakeRecorder struct {
	mu        sync.Mutex
	decisions []model.ScheduleDecision
}

func (f *fakeRecorder) RecordDecision(d model.ScheduleDecision) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.decisions = append(f.decisions, d)
	return nil
}

func testSettings() Settings {
	return Settings{
		StaffRoles: []string{"staff-role"},
		EmojiID:    "1234567890123456789",
		EmojiName:  "cassia_kurukuru",
	}
}

func staffActor() Actor {
	return Actor{ID: "mod-1", Name: "Mod", RoleIDs: []string{"staff-role", "other"}}
}

func testRequest() SubmissionRequest {
	return SubmissionRequest{
		ChannelID:     "chan-1",
		MessageID:     "orig-1",
		ImageURL:      "https://cdn.example/schedule.png",
		SubmitterID:   "111",
		SubmitterName: "streamer",
	}
}

func newTestMachine(extractor Extractor, messenger *fakeMessenger, recorder *fakeRecorder) *Machine {
	var rec DecisionRecorder
	if recorder != nil {
		rec = recorder
	}
	return NewMachine(NewRegistry(), extractor, messenger, rec, testSettings())
}

func TestSubmitReachesAwaitingDecision(t *testing.T) {
	messenger := newFakeMessenger()
	m := newTestMachine(&fakeExtractor{payload: validPayload}, messenger, nil)

	require.NoError(t, m.Submit(context.Background(), testRequest()))

	assert.True(t, m.Tracks("review-1"))
	assert.Equal(t, 1, m.Pending())
	require.Len(t, messenger.reviews, 1)
	assert.Contains(t, messenger.reviews[0], "Stream")
	assert.Contains(t, messenger.reviews[0], "<@111>")
}

func TestSubmitExtractionFailure(t *testing.T) {
	messenger := newFakeMessenger()
	recorder := &fakeRecorder{}
	m := newTestMachine(&fakeExtractor{err: errors.New("timeout")}, messenger, recorder)

	require.NoError(t, m.Submit(context.Background(), testRequest()))

	// PROCESSING → ERRORED: error message posted, nothing left pending,
	// no decision affordance exists.
	assert.Equal(t, 0, m.Pending())
	require.Len(t, messenger.errors, 1)
	assert.Empty(t, messenger.reviews)

	require.Len(t, recorder.decisions, 1)
	assert.Equal(t, string(model.StatusErrored), recorder.decisions[0].Status)
}

func TestSubmitMalformedPayload(t *testing.T) {
	messenger := newFakeMessenger()
	m := newTestMachine(&fakeExtractor{payload: "not xml at all"}, messenger, nil)

	require.NoError(t, m.Submit(context.Background(), testRequest()))

	assert.Equal(t, 0, m.Pending())
	require.Len(t, messenger.errors, 1)
	assert.Empty(t, messenger.reviews)
}

func TestDecideApprove(t *testing.T) {
	messenger := newFakeMessenger()
	recorder := &fakeRecorder{}
	m := newTestMachine(&fakeExtractor{payload: validPayload}, messenger, recorder)
	require.NoError(t, m.Submit(context.Background(), testRequest()))

	result := m.Decide("review-1", DecisionApprove, staffActor())

	assert.Equal(t, DecideApplied, result)
	assert.Equal(t, 0, m.Pending())
	require.Len(t, messenger.approved, 1)
	assert.Equal(t, 1, messenger.publishCount())

	require.Len(t, recorder.decisions, 1)
	assert.Equal(t, string(model.StatusApproved), recorder.decisions[0].Status)
	assert.Equal(t, "mod-1", recorder.decisions[0].ReviewerID)
}

func TestDecideReject(t *testing.T) {
	messenger := newFakeMessenger()
	recorder := &fakeRecorder{}
	m := newTestMachine(&fakeExtractor{payload: validPayload}, messenger, recorder)
	require.NoError(t, m.Submit(context.Background(), testRequest()))

	result := m.Decide("review-1", DecisionReject, staffActor())

	assert.Equal(t, DecideApplied, result)
	assert.Equal(t, 0, m.Pending())
	require.Len(t, messenger.rejected, 1)
	assert.Equal(t, 0, messenger.publishCount())
}

func TestDecideUnauthorized(t *testing.T) {
	messenger := newFakeMessenger()
	m := newTestMachine(&fakeExtractor{payload: validPayload}, messenger, nil)
	require.NoError(t, m.Submit(context.Background(), testRequest()))

	outsider := Actor{ID: "user-2", RoleIDs: []string{"member"}}
	result := m.Decide("review-1", DecisionApprove, outsider)

	assert.Equal(t, DecideUnauthorized, result)
	// The submission stays pending and nothing was published.
	got, ok := m.registry.Get("review-1")
	require.True(t, ok)
	assert.Equal(t, model.StatusAwaitingDecision, got.Status)
	assert.Equal(t, 0, messenger.publishCount())
}

func TestDecideTwiceIsIdempotent(t *testing.T) {
	messenger := newFakeMessenger()
	m := newTestMachine(&fakeExtractor{payload: validPayload}, messenger, nil)
	require.NoError(t, m.Submit(context.Background(), testRequest()))

	first := m.Decide("review-1", DecisionApprove, staffActor())
	second := m.Decide("review-1", DecisionReject, staffActor())

	assert.Equal(t, DecideApplied, first)
	assert.Equal(t, DecideStale, second)
	assert.Equal(t, 1, messenger.publishCount())
	assert.Empty(t, messenger.rejected)
}

func TestDecideUnknownMessage(t *testing.T) {
	messenger := newFakeMessenger()
	m := newTestMachine(&fakeExtractor{payload: validPayload}, messenger, nil)

	assert.Equal(t, DecideStale, m.Decide("never-seen", DecisionApprove, staffActor()))
}

func TestDecideRace(t *testing.T) {
	messenger := newFakeMessenger()
	m := newTestMachine(&fakeExtractor{payload: validPayload}, messenger, nil)
	require.NoError(t, m.Submit(context.Background(), testRequest()))

	// Two staff decide near-simultaneously with opposite outcomes.
	results := make(chan DecideResult, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		results <- m.Decide("review-1", DecisionApprove, staffActor())
	}()
	go func() {
		defer wg.Done()
		other := Actor{ID: "mod-2", Name: "Mod2", RoleIDs: []string{"staff-role"}}
		results <- m.Decide("review-1", DecisionReject, other)
	}()
	wg.Wait()
	close(results)

	appliedCount := 0
	for r := range results {
		if r == DecideApplied {
			appliedCount++
		}
	}

	// Exactly one decision wins; exactly one terminal action ran.
	assert.Equal(t, 1, appliedCount)
	assert.Equal(t, 1, messenger.publishCount()+len(messenger.rejected))
	assert.Equal(t, 0, m.Pending())
}

func TestReloadDuringProcessingDropsResult(t *testing.T) {
	gate := make(chan struct{})
	extractor := &fakeExtractor{payload: validPayload, gate: gate}
	messenger := newFakeMessenger()
	m := newTestMachine(extractor, messenger, nil)

	done := make(chan error, 1)
	go func() {
		done <- m.Submit(context.Background(), testRequest())
	}()

	// Let the submission register, then clear everything while the
	// extraction call is still in flight.
	require.Eventually(t, func() bool { return m.Pending() == 1 },
		time.Second, 5*time.Millisecond)
	m.Reconfigure(testSettings())
	close(gate)

	require.NoError(t, <-done)
	assert.Equal(t, 0, m.Pending())
	assert.Empty(t, messenger.reviews)
	assert.Empty(t, messenger.errors)
}

func TestEditEventTime(t *testing.T) {
	messenger := newFakeMessenger()
	m := newTestMachine(&fakeExtractor{payload: validPayload}, messenger, nil)
	require.NoError(t, m.Submit(context.Background(), testRequest()))

	require.NoError(t, m.EditEventTime("review-1", 1, "20:30", staffActor()))

	got, ok := m.registry.Get("review-1")
	require.True(t, ok)
	event := got.Document.Events[0]
	assert.Equal(t, "20:30", event.RawTime)
	require.NotNil(t, event.UTCInstant)
	assert.Equal(t, time.Date(2024, time.June, 30, 20, 30, 0, 0, time.UTC), *event.UTCInstant)

	require.Len(t, messenger.updates, 1)
	assert.Contains(t, messenger.updates[0], "<t:")
}

func TestEditEventTimeValidation(t *testing.T) {
	messenger := newFakeMessenger()
	m := newTestMachine(&fakeExtractor{payload: validPayload}, messenger, nil)
	require.NoError(t, m.Submit(context.Background(), testRequest()))

	outsider := Actor{ID: "user-2", RoleIDs: []string{"member"}}
	assert.ErrorIs(t, m.EditEventTime("review-1", 1, "20:30", outsider), ErrUnauthorized)

	assert.ErrorIs(t, m.EditEventTime("missing", 1, "20:30", staffActor()), ErrNotFound)

	err := m.EditEventTime("review-1", 5, "20:30", staffActor())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")

	err = m.EditEventTime("review-1", 1, "nonsense", staffActor())
	require.Error(t, err)
	// A failed edit must not clobber the existing instant's time string.
	got, _ := m.registry.Get("review-1")
	assert.Equal(t, "18:00", got.Document.Events[0].RawTime)
}

func TestReconfigureSwapsStaffRoles(t *testing.T) {
	messenger := newFakeMessenger()
	m := newTestMachine(&fakeExtractor{payload: validPayload}, messenger, nil)

	settings := testSettings()
	settings.StaffRoles = []string{"new-staff"}
	m.Reconfigure(settings)

	require.NoError(t, m.Submit(context.Background(), testRequest()))

	assert.Equal(t, DecideUnauthorized, m.Decide("review-1", DecisionApprove, staffActor()))

	newStaff := Actor{ID: "mod-3", RoleIDs: []string{"new-staff"}}
	assert.Equal(t, DecideApplied, m.Decide("review-1", DecisionApprove, newStaff))
}
