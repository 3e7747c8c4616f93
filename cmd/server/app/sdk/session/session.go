// Package session provides the per visitor state of the detector page.
package session

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/maypok86/otter/v2"
)

// CookieName is the cookie carrying the session id.
const CookieName = "aidetect_session"

// FromRequest returns the session id carried by the request cookie.
func FromRequest(r *http.Request) (uuid.UUID, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return uuid.UUID{}, false
	}

	id, err := uuid.Parse(c.Value)
	if err != nil {
		return uuid.UUID{}, false
	}

	return id, true
}

// Data represents what is remembered about one visitor.
type Data struct {
	SessionID   uuid.UUID
	State       State
	HaltReason  string
	StartedDate time.Time
	UpdatedDate time.Time
}

// Store holds sessions in memory. Sessions not touched within the time to
// live are dropped.
type Store struct {
	db *otter.Cache[string, Data]
	mu sync.Mutex
}

// NewStore constructs a session store.
func NewStore(maxSessions int, timeToLive time.Duration) (*Store, error) {
	if maxSessions <= 0 {
		maxSessions = 10_000
	}

	opt := otter.Options[string, Data]{
		MaximumSize:      maxSessions,
		ExpiryCalculator: otter.ExpiryWriting[string, Data](timeToLive),
	}

	cache, err := otter.New(&opt)
	if err != nil {
		return nil, fmt.Errorf("constructing cache: %w", err)
	}

	s := Store{
		db: cache,
	}

	return &s, nil
}

// Get returns the session for the id, creating an idle session when the id
// is unknown. The returned bool reports if the session was created.
func (s *Store) Get(sessionID uuid.UUID) (Data, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, found := s.db.GetIfPresent(sessionID.String())
	if !found {
		now := time.Now()

		data = Data{
			SessionID:   sessionID,
			State:       Idle,
			StartedDate: now,
			UpdatedDate: now,
		}
	}

	// Writing the entry back keeps an active session alive.
	s.db.Set(sessionID.String(), data)

	return data, !found
}

// Begin moves an idle session to analyzing. It returns false, with the
// current data, when the session is already analyzing or is halted.
func (s *Store) Begin(sessionID uuid.UUID) (Data, bool) {
	return s.transition(sessionID, func(data Data) (Data, bool) {
		if !data.State.Equal(Idle) {
			return data, false
		}

		data.State = Analyzing
		return data, true
	})
}

// End returns an analyzing session to idle.
func (s *Store) End(sessionID uuid.UUID) Data {
	data, _ := s.transition(sessionID, func(data Data) (Data, bool) {
		if !data.State.Equal(Analyzing) {
			return data, false
		}

		data.State = Idle
		return data, true
	})

	return data
}

// Halt moves the session to the terminal halted state, recording why.
func (s *Store) Halt(sessionID uuid.UUID, reason string) Data {
	data, _ := s.transition(sessionID, func(data Data) (Data, bool) {
		if data.State.Equal(Halted) {
			return data, false
		}

		data.State = Halted
		data.HaltReason = reason
		return data, true
	})

	return data
}

// Len returns the number of sessions being held.
func (s *Store) Len() int {
	var n int
	for range s.db.Coldest() {
		n++
	}

	return n
}

// Clear drops every session.
func (s *Store) Clear() {
	s.db.InvalidateAll()
}

func (s *Store) transition(sessionID uuid.UUID, fn func(Data) (Data, bool)) (Data, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, found := s.db.GetIfPresent(sessionID.String())
	if !found {
		now := time.Now()

		data = Data{
			SessionID:   sessionID,
			State:       Idle,
			StartedDate: now,
		}
	}

	data, changed := fn(data)
	if changed {
		data.UpdatedDate = time.Now()
	}

	s.db.Set(sessionID.String(), data)

	return data, changed
}
