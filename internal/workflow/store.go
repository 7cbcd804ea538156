// Package workflow ties the pipeline together: the orchestrator turns
// transcripts into interactive notifications, the router fans a human
// decision out to email, channel broadcasts, and the CRM.
package workflow

import (
	"sync"
	"time"

	"github.com/dealflowhq/dealflow/internal/record"
	"github.com/dealflowhq/dealflow/internal/slack"
)

// Handle ties a record to the notification message posted for it.
type Handle struct {
	RecordID  string
	Ref       slack.MessageRef
	CreatedAt time.Time
	Outcome   record.Outcome
	DecidedAt time.Time
}

// Decided reports whether a decision was already recorded.
func (h Handle) Decided() bool {
	return h.Outcome != ""
}

// HandleStore tracks posted notifications and enforces the at-most-once
// decision guard.
type HandleStore interface {
	Put(id string, h Handle)
	Get(id string) (Handle, bool)

	// MarkDecided records the outcome for id. A second call for the
	// same id returns record.ErrAlreadyDecided, whatever the outcome.
	// Unknown ids are admitted and marked in one step so decisions
	// survive a restart that lost the in-memory state.
	MarkDecided(id string, outcome record.Outcome) error
}

// memoryStore is the in-process HandleStore.
type memoryStore struct {
	mu      sync.Mutex
	handles map[string]Handle
}

// NewMemoryStore creates an empty in-memory HandleStore.
func NewMemoryStore() HandleStore {
	return &memoryStore{handles: make(map[string]Handle)}
}

func (s *memoryStore) Put(id string, h Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// A decision can land between the notification post and this Put.
	// Overwriting it would reopen the double-delivery window.
	if existing, ok := s.handles[id]; ok && existing.Decided() {
		h.Outcome = existing.Outcome
		h.DecidedAt = existing.DecidedAt
	}
	s.handles[id] = h
}

func (s *memoryStore) Get(id string) (Handle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.handles[id]
	return h, ok
}

func (s *memoryStore) MarkDecided(id string, outcome record.Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.handles[id]
	if h.Decided() {
		return record.ErrAlreadyDecided
	}
	h.RecordID = id
	h.Outcome = outcome
	h.DecidedAt = time.Now()
	s.handles[id] = h
	return nil
}

var _ HandleStore = (*memoryStore)(nil)
