package app

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/five82/famwall/internal/familywall"
	"github.com/five82/famwall/internal/state"
)

const (
	defaultPollInterval = 60 * time.Second
	maxBackoff          = 30 * time.Second
)

// FamilySource loads a fresh Family view. *familywall.Client satisfies it.
type FamilySource interface {
	Family(ctx context.Context, sess familywall.Session) (*familywall.Family, error)
}

var _ FamilySource = (*familywall.Client)(nil)

// StartPoller launches a background goroutine that refreshes the store at
// interval, backing off while refreshes keep failing. It returns immediately.
// The returned function requests an out-of-band refresh and never blocks.
func StartPoller(ctx context.Context, store *state.Store, src FamilySource, sess familywall.Session, interval time.Duration) func() {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	now := make(chan struct{}, 1)
	go func() {
		for {
			wait := calculateBackoff(store.Snapshot().ConsecutiveFailures, interval)
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-now:
				timer.Stop()
			case <-timer.C:
			}
			_ = refresh(ctx, store, src, sess)
		}
	}()
	return func() {
		select {
		case now <- struct{}{}:
		default:
		}
	}
}

// calculateBackoff doubles interval per consecutive failure. The result is
// capped at maxBackoff, or at interval when interval is already longer.
func calculateBackoff(failures int, interval time.Duration) time.Duration {
	if failures <= 0 {
		return interval
	}
	limit := max(maxBackoff, interval)
	wait := interval
	for i := 0; i < failures; i++ {
		wait *= 2
		if wait >= limit {
			return limit
		}
	}
	return wait
}

func refresh(ctx context.Context, store *state.Store, src FamilySource, sess familywall.Session) error {
	family, err := src.Family(ctx, sess)
	if err != nil {
		err = fmt.Errorf("load family: %w", err)
		store.Update(nil, nil, err)
		logrus.WithError(err).Warnln("Family refresh failed")
		return err
	}
	events, err := family.CalendarEvents(ctx)
	if err != nil {
		err = fmt.Errorf("load calendar: %w", err)
		store.Update(nil, nil, err)
		logrus.WithError(err).Warnln("Calendar refresh failed")
		return err
	}
	store.Update(family, events, nil)
	logrus.WithFields(logrus.Fields{
		"family":  family.ID(),
		"members": len(family.Members()),
		"events":  len(events),
	}).Debugln("Refreshed family data")
	return nil
}
