package session

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	// ErrNotFound indicates the user or reference code does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNotAccepted indicates the user has not acknowledged the terms yet.
	ErrNotAccepted = errors.New("terms not accepted")
)

// maxCodeAttempts bounds reference-code regeneration on collision.
const maxCodeAttempts = 100

// Store owns all per-user registration state: the user table and the
// pending-registration index. State is in-memory only and lost on restart.
// All operations serialize map access under one mutex; Guard additionally
// gives callers per-user exclusion across a read-decide-transition sequence.
type Store struct {
	mu      sync.Mutex
	users   map[string]*User
	pending map[string]string // reference code -> user id
	codes   map[string]bool   // every code ever issued this process

	userLocks keyedMutex
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{
		users:   make(map[string]*User),
		pending: make(map[string]string),
		codes:   make(map[string]bool),
	}
}

// Guard acquires the per-user lock for the given user id and returns a
// release function. The dispatch engine holds it across one event's gating
// decision and state transition so concurrent events for the same user never
// observe the same pre-state.
func (s *Store) Guard(userID string) func() {
	return s.userLocks.lock(userID)
}

// GetOrCreate returns the user for the given id, lazily creating a pending
// user with a fresh unique reference code on first contact.
func (s *Store) GetOrCreate(userID string) (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[userID]; ok {
		return *u, false
	}

	name := placeholderName()
	code := s.uniqueCode(name)

	u := &User{
		ID:            userID,
		DisplayName:   name,
		ReferenceCode: code,
		RegisteredAt:  time.Now().UTC(),
		Accepted:      false,
		Status:        StatusPending,
	}
	s.users[userID] = u
	s.pending[code] = userID
	s.codes[code] = true

	return *u, true
}

// uniqueCode generates a reference code, regenerating on collision. Must be
// called with s.mu held.
func (s *Store) uniqueCode(name string) string {
	for i := 0; i < maxCodeAttempts; i++ {
		code := referenceCode(name)
		if !s.codes[code] {
			return code
		}
	}
	// The 5-digit space is exhausted for this name; disambiguate with a
	// numbered suffix rather than hand out a duplicate.
	base := referenceCode(name)
	for i := 2; ; i++ {
		code := fmt.Sprintf("%s-%d", base, i)
		if !s.codes[code] {
			return code
		}
	}
}

// AcceptTerms marks the user as having acknowledged the terms and activates
// them. Idempotent for already-accepted users.
func (s *Store) AcceptTerms(userID string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return User{}, ErrNotFound
	}

	u.Accepted = true
	u.Status = StatusActive
	return *u, nil
}

// ResolveByReferenceCode looks a user up through the pending index only.
// Codes already consumed by CompleteOutOfBand report ErrNotFound even though
// the user record persists.
func (s *Store) ResolveByReferenceCode(code string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID, ok := s.pending[code]
	if !ok {
		return User{}, ErrNotFound
	}
	u, ok := s.users[userID]
	if !ok {
		return User{}, ErrNotFound
	}
	return *u, nil
}

// CompleteOutOfBand finishes an out-of-band registration. It succeeds only
// when the code is still in the pending index and the user has accepted the
// terms; on success the index entry is removed (one-shot) and the user is
// returned so the caller can send a one-time welcome notification.
func (s *Store) CompleteOutOfBand(code string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID, ok := s.pending[code]
	if !ok {
		return User{}, ErrNotFound
	}
	u, ok := s.users[userID]
	if !ok {
		return User{}, ErrNotFound
	}
	if !u.Accepted {
		return User{}, ErrNotAccepted
	}

	delete(s.pending, code)
	return *u, nil
}

// Count returns the number of known users.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}
