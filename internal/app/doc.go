// Package app wires configuration, login, polling and the dashboard together.
//
// Run loads the config and credentials, logs in once, performs an initial
// refresh and then hands the shared state.Store to the UI while a background
// poller keeps it current:
//
//	Run()
//	 ├─> config.LoadEnvFile / config.Load
//	 ├─> familywall.Client.Login
//	 ├─> refresh()        initial Family + calendar events
//	 ├─> StartPoller()    background refresh with backoff
//	 └─> ui.Run()         blocks until quit
//
// Refresh failures are recorded in the store and logged; the poller keeps
// running and waits longer between attempts while failures continue.
package app
