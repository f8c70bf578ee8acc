// Package config loads famwall settings.
//
// Settings live in a TOML file, ~/.config/famwall/config.toml by default.
// A missing file is not an error; every key falls back to a default:
//
//	base_url = "https://api.familywall.com/api"
//	timezone = "Europe/Paris"      # host timezone when empty
//	device_id = "webm16skcc5so1b181l4o"
//	login_retries = 3               # 0 disables retries
//	timeout_seconds = 30
//	poll_seconds = 60
//	theme = "Nightfox"            # Nightfox, Kanagawa or Slate
//	log_level = "info"
//	log_format = "text"             # or "json"
//
// Credentials are read from the environment only: FAMWALL_EMAIL and
// FAMWALL_PASSWORD, with the bare email and password variables as fallback.
// LoadEnvFile fills the environment from a .env file first.
package config
