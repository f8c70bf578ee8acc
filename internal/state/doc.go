// Package state holds the latest family data shared between the background
// poller and the dashboard.
//
// The poller is the single writer: each refresh calls Store.Update with the
// new Family view and calendar events, or with an error. On error the previous
// data is kept and only LastError, LastUpdated and ConsecutiveFailures change,
// so the UI keeps showing the last good state. After two failures in a row
// Snapshot.IsOffline reports true.
//
// Readers call Store.Snapshot, which copies the event slice and the error.
// The Family value is shared between snapshots; it is never mutated after
// construction.
//
// The zero Store is ready to use.
package state
