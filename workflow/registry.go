package workflow

import (
	"errors"
	"sync"

	"github.com/NiklasKy/QuingDiscordBot/model"
)

var (
	// ErrDuplicateSubmission means Create was called for a key that is
	// already registered. This is an internal invariant violation, not a
	// user-facing condition.
	ErrDuplicateSubmission = errors.New("duplicate submission")

	// ErrNotFound means no submission is registered under the given key.
	ErrNotFound = errors.New("submission not found")
)

// Registry is the in-memory store of in-flight submissions, keyed by
// review message ID (or a provisional ID while the submission is still
// processing). It exclusively owns the PendingSubmission instances; all
// mutation goes through Update so that check-then-transition sequences
// are atomic.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*model.PendingSubmission
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*model.PendingSubmission)}
}

// Create registers a new submission under the given key.
func (r *Registry) Create(id string, sub *model.PendingSubmission) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[id]; exists {
		return ErrDuplicateSubmission
	}
	sub.ID = id
	r.entries[id] = sub
	return nil
}

// Get returns a snapshot of the submission registered under id.
func (r *Registry) Get(id string) (model.PendingSubmission, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sub, ok := r.entries[id]
	if !ok {
		return model.PendingSubmission{}, false
	}
	return *sub, true
}

// Update applies mutate to the submission under id while holding the
// registry lock. The mutator must not block or call back into the
// registry; it exists so a caller can read state, validate and write
// state without an intervening interleaving.
func (r *Registry) Update(id string, mutate func(*model.PendingSubmission)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub, ok := r.entries[id]
	if !ok {
		return ErrNotFound
	}
	mutate(sub)
	return nil
}

// Rekey moves a submission from its provisional ID to the review message
// ID once the review message has been posted.
func (r *Registry) Rekey(oldID, newID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub, ok := r.entries[oldID]
	if !ok {
		return ErrNotFound
	}
	if _, exists := r.entries[newID]; exists {
		return ErrDuplicateSubmission
	}
	delete(r.entries, oldID)
	sub.ID = newID
	r.entries[newID] = sub
	return nil
}

// Remove deletes the submission under id. Removing an absent key is a
// no-op; late callbacks after a reload must not fail on it.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, id)
}

// ClearAll discards every in-flight submission and returns how many were
// dropped. Review messages already posted for them are left stale.
func (r *Registry) ClearAll() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.entries)
	r.entries = make(map[string]*model.PendingSubmission)
	return n
}

// Len returns the number of in-flight submissions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries)
}
