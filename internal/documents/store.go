package documents

import (
	"sync"
	"time"

	"github.com/kontor-dev/kontor/internal/apperr"
	"github.com/kontor-dev/kontor/internal/model"
)

// Store holds documents in memory. Status changes go through a
// check-and-set protocol: a writer reserves the document at an expected
// status, performs its side effects (ledger posting), then commits the
// new status or releases the reservation. Readers are never blocked by
// an in-flight booking and see either the old or the new state, nothing
// in between.
type Store struct {
	mu       sync.RWMutex
	byID     map[string]model.Document
	order    []string
	inFlight map[string]bool
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		byID:     make(map[string]model.Document),
		inFlight: make(map[string]bool),
	}
}

// Put inserts a new document.
func (s *Store) Put(doc model.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[doc.ID]; !exists {
		s.order = append(s.order, doc.ID)
	}
	s.byID[doc.ID] = doc
}

// Get returns a document by ID.
func (s *Store) Get(id string) (model.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.byID[id]
	if !ok {
		return model.Document{}, apperr.Newf(apperr.KindNotFound, "no document with id %q", id)
	}
	return doc, nil
}

// List returns documents in creation order, optionally filtered by type.
func (s *Store) List(filter model.DocumentType) []model.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]model.Document, 0, len(s.order))
	for _, id := range s.order {
		doc := s.byID[id]
		if filter != "" && doc.Type != filter {
			continue
		}
		result = append(result, doc)
	}
	return result
}

// UpdateDraft mutates a document that is still in its initial state.
// Any other status fails with InvalidStateError.
func (s *Store) UpdateDraft(id string, mutate func(*model.Document)) (model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.byID[id]
	if !ok {
		return model.Document{}, apperr.Newf(apperr.KindNotFound, "no document with id %q", id)
	}
	if doc.Status != InitialStatus(doc.Type) {
		return model.Document{}, apperr.Newf(apperr.KindInvalidState,
			"document %s is %s and can no longer be edited", id, doc.Status)
	}
	if s.inFlight[id] {
		return model.Document{}, apperr.Newf(apperr.KindConflict, "document %s is being booked", id)
	}

	mutate(&doc)
	doc.UpdatedAt = time.Now().UTC()
	s.byID[id] = doc
	return doc, nil
}

// reserve claims a document for a status transition. It fails with
// ConflictError when another transition is in flight, and returns the
// current document otherwise; the caller decides whether the current
// status permits its operation, then calls commit or release.
func (s *Store) reserve(id string) (model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.byID[id]
	if !ok {
		return model.Document{}, apperr.Newf(apperr.KindNotFound, "no document with id %q", id)
	}
	if s.inFlight[id] {
		return model.Document{}, apperr.Newf(apperr.KindConflict,
			"document %s: concurrent transition in progress", id)
	}
	s.inFlight[id] = true
	return doc, nil
}

// commit finishes a reserved transition, applying mutate atomically.
func (s *Store) commit(id string, status model.DocumentStatus, mutate func(*model.Document)) model.Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.byID[id]
	doc.Status = status
	if mutate != nil {
		mutate(&doc)
	}
	doc.UpdatedAt = time.Now().UTC()
	s.byID[id] = doc
	delete(s.inFlight, id)
	return doc
}

// setAttachment records an uploaded file's name and hash.
func (s *Store) setAttachment(id, filename, hash string) (model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.byID[id]
	if !ok {
		return model.Document{}, apperr.Newf(apperr.KindNotFound, "no document with id %q", id)
	}
	doc.AttachmentName = filename
	doc.AttachmentHash = hash
	doc.UpdatedAt = time.Now().UTC()
	s.byID[id] = doc
	return doc, nil
}

// release abandons a reservation, leaving the document untouched.
func (s *Store) release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, id)
}
