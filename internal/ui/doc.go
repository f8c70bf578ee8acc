// Package ui provides the famwall terminal dashboard built on Bubble Tea.
//
// # Views
//
// Five views share one layout: a list pane on the left and a scrollable
// detail pane (bubbles/viewport) on the right.
//
//   - Members: family members; detail shows rights, identifiers, devices
//   - Events: calendar events sorted by start
//   - Messages: message threads and their participants
//   - Account: overview, family settings, premium flags and cover media
//   - Log: the tail of the --log-file, colored by level
//
// Sections the API did not return are shown as "not available".
//
// # Data Flow
//
// The dashboard never calls the API. A tick fetches state.Store.Snapshot at
// PollTick; the app poller keeps the store current in the background. The r
// key asks the poller for an immediate refresh through Options.Refresh.
//
// # Key Bindings
//
//   - tab / shift+tab: next / previous view
//   - 1-5: jump to a view
//   - j/k, g/G: move in the list
//   - ctrl+d / ctrl+u: scroll the detail pane
//   - r: refresh now
//   - T: cycle theme (saved to the config file)
//   - h or ?: help
//   - e or ctrl+c: quit
package ui
