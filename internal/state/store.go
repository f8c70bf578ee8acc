package state

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/five82/famwall/internal/familywall"
)

// Snapshot represents the latest data available to the UI.
type Snapshot struct {
	Account             string
	Family              *familywall.Family
	Events              []familywall.CalendarEvent // sorted by start
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive refresh failures
}

// HasFamily reports whether at least one refresh succeeded.
func (s Snapshot) HasFamily() bool {
	return s.Family != nil
}

// IsOffline returns true when the API has been unreachable for multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// SetAccount records the email of the logged-in account.
func (s *Store) SetAccount(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Account = email
}

// Update replaces the stored family and events. When err is non-nil the
// previous data is kept but the error is recorded for visibility.
func (s *Store) Update(family *familywall.Family, events []familywall.CalendarEvent, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.LastUpdated = time.Now()
		s.snapshot.ConsecutiveFailures++
		return
	}

	s.snapshot.Family = family
	s.snapshot.Events = SortedEvents(events)
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot. Family is shared; it is
// read-only.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Events = cloneEvents(s.snapshot.Events)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func cloneEvents(events []familywall.CalendarEvent) []familywall.CalendarEvent {
	if len(events) == 0 {
		return nil
	}
	dup := make([]familywall.CalendarEvent, len(events))
	copy(dup, events)
	return dup
}

// SortedEvents returns a copy of events ordered by parsed start. Events whose
// start cannot be parsed keep their relative order at the end.
func SortedEvents(events []familywall.CalendarEvent) []familywall.CalendarEvent {
	events = cloneEvents(events)
	slices.SortStableFunc(events, func(a, b familywall.CalendarEvent) int {
		at, bt := a.ParsedStart(), b.ParsedStart()
		switch {
		case at.IsZero() && bt.IsZero():
			return 0
		case at.IsZero():
			return 1
		case bt.IsZero():
			return -1
		}
		return at.Compare(bt)
	})
	return events
}
