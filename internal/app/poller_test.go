package app

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/famwall/internal/familywall"
	"github.com/five82/famwall/internal/state"
)

func TestCalculateBackoff(t *testing.T) {
	baseInterval := 2 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 2 * time.Second},
		{"negative failures", -1, 2 * time.Second},
		{"one failure", 1, 4 * time.Second},
		{"two failures", 2, 8 * time.Second},
		{"three failures", 3, 16 * time.Second},
		{"four failures capped", 4, 30 * time.Second}, // Would be 32s, capped to 30s
		{"many failures capped", 10, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, baseInterval)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, baseInterval, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_MaxCap(t *testing.T) {
	baseInterval := 2 * time.Second
	for failures := 0; failures <= 80; failures++ {
		got := calculateBackoff(failures, baseInterval)
		if got > maxBackoff {
			t.Errorf("calculateBackoff(%d, %v) = %v, exceeds maxBackoff %v", failures, baseInterval, got, maxBackoff)
		}
	}
}

func TestCalculateBackoff_LongIntervalNeverShrinks(t *testing.T) {
	for failures := 0; failures <= 5; failures++ {
		assert.Equal(t, time.Minute, calculateBackoff(failures, time.Minute))
	}
}

type stubCalendar struct {
	events []familywall.CalendarEvent
	err    error
}

func (s stubCalendar) CreateEvent(context.Context, familywall.Session, familywall.EventFields) (familywall.CalendarEvent, error) {
	return familywall.CalendarEvent{}, errors.New("not implemented")
}

func (s stubCalendar) DeleteEvent(context.Context, familywall.Session, string) (bool, error) {
	return false, errors.New("not implemented")
}

func (s stubCalendar) CalendarEvents(context.Context, familywall.Session, string) ([]familywall.CalendarEvent, error) {
	return s.events, s.err
}

type stubSource struct {
	mu       sync.Mutex
	calls    int
	err      error
	calendar stubCalendar
}

func (s *stubSource) Family(_ context.Context, sess familywall.Session) (*familywall.Family, error) {
	s.mu.Lock()
	s.calls++
	err := s.err
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	var snap familywall.Snapshot
	if jsonErr := json.Unmarshal([]byte(`{"a00":{"r":{"r":{"family_id":"fam-1","members":[{"firstName":"Ann"}]}}}}`), &snap); jsonErr != nil {
		return nil, jsonErr
	}
	return familywall.NewFamily(&snap, s.calendar, sess)
}

func (s *stubSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestRefresh_StoresFamilyAndEvents(t *testing.T) {
	store := &state.Store{}
	src := &stubSource{calendar: stubCalendar{events: []familywall.CalendarEvent{{EventID: "e1"}}}}

	require.NoError(t, refresh(context.Background(), store, src, familywall.SessionFromToken("tok")))

	snap := store.Snapshot()
	require.True(t, snap.HasFamily())
	assert.Equal(t, "fam-1", snap.Family.ID())
	assert.Equal(t, []familywall.CalendarEvent{{EventID: "e1"}}, snap.Events)
	assert.NoError(t, snap.LastError)
}

func TestRefresh_FamilyErrorKeepsPreviousData(t *testing.T) {
	store := &state.Store{}
	src := &stubSource{}
	require.NoError(t, refresh(context.Background(), store, src, familywall.Session{}))

	src.err = errors.New("offline")
	err := refresh(context.Background(), store, src, familywall.Session{})
	require.Error(t, err)

	snap := store.Snapshot()
	assert.True(t, snap.HasFamily())
	assert.Equal(t, 1, snap.ConsecutiveFailures)
	assert.ErrorContains(t, snap.LastError, "load family: offline")
}

func TestRefresh_CalendarErrorIsRecorded(t *testing.T) {
	store := &state.Store{}
	src := &stubSource{calendar: stubCalendar{err: errors.New("sync failed")}}

	err := refresh(context.Background(), store, src, familywall.Session{})
	require.Error(t, err)
	assert.False(t, store.Snapshot().HasFamily())
	assert.ErrorContains(t, store.Snapshot().LastError, "load calendar")
}

func TestStartPoller_RefreshNowAndStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := &state.Store{}
	src := &stubSource{}
	refreshNow := StartPoller(ctx, store, src, familywall.Session{}, time.Hour)

	refreshNow()
	refreshNow() // coalesced, must not block

	require.Eventually(t, func() bool {
		return src.callCount() >= 1 && store.Snapshot().HasFamily()
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
}

func TestStartPoller_TicksAtInterval(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := &stubSource{}
	StartPoller(ctx, &state.Store{}, src, familywall.Session{}, 20*time.Millisecond)

	require.Eventually(t, func() bool { return src.callCount() >= 3 }, 2*time.Second, 10*time.Millisecond)
}
