// Package familywall provides an HTTP client for the FamilyWall web API.
//
// # Overview
//
// FamilyWall has no public API. This package speaks the same session-cookie
// protocol as the FamilyWall web app: it logs in, captures the session token,
// and replays it on every later call together with the browser headers the
// service expects. Responses are decoded into typed mirrors of the upstream
// JSON and reshaped into a stable model.
//
// # Architecture
//
// The package is split into a few files:
//
//   - client.go: Client, login, raw requests and every endpoint call
//   - session.go: the immutable Session value and form encoding
//   - envelope.go: Section, the optional {"r":{"r":...}} envelope
//   - types.go: raw upstream mirrors and the normalized output types
//   - family.go: Family, the read-only view over one snapshot
//
// # Client Usage
//
//	client, err := familywall.NewClient(familywall.Options{})
//	if err != nil {
//		return err
//	}
//
//	sess, err := client.Login(ctx, email, password)
//	if err != nil {
//		return err // errors.Is(err, familywall.ErrLoginFailed) when no cookie was issued
//	}
//
//	family, err := client.Family(ctx, sess)
//	if err != nil {
//		return err
//	}
//	events, err := family.CalendarEvents(ctx)
//
// # Sessions
//
// Login returns a Session rather than mutating the client. A Session carries
// the token and the Cookie header derived from it; both are set or both are
// empty. Every authenticated request adds a tokencsrf header with the token
// and the Cookie header. The zero Session is unauthenticated: Request and Do
// send such calls without credential headers, while the typed operations
// return ErrNotAuthenticated instead of calling the API.
//
// Because the client keeps no credentials, independent sessions can share one
// Client and run concurrently.
//
// # Login Retries
//
// The login endpoint sometimes answers without a JSESSIONID cookie. Login
// retries up to Options.LoginRetries extra times (3 by default) and then
// returns ErrLoginFailed. Network errors are not retried. After a successful
// login the client performs the webset/webget handshake the service requires;
// failures there are logged and otherwise ignored.
//
// # Envelopes
//
// Every endpoint returns top-level keys a00, a01, ... each wrapping its
// payload as {"r":{"r":<payload>}}. The API leaves out sections it did not
// compute or the caller cannot see. Section[T] models this: Get reports
// (payload, true) only when every level is present.
//
// The accgetallfamily snapshot maps its sections as follows:
//
//   - a00: family core (members, cover media); required
//   - a01: profile map keyed by account id
//   - a02: family list (opaque)
//   - a03: family settings
//   - a04: incoming invites (opaque)
//   - a05: message threads
//   - a06: account state, including premium flags
//
// # Normalization
//
// Family accessors rename and flatten the raw records:
//
//   - missing rights default to false
//   - an identifier is validated only when the raw value is the string "true"
//   - cover media resolution is synthesized as "<width>x<height>"
//   - absent optional sections are reported as absent, never as empty values
//
// # Upstream Quirks
//
// evtdelete reports success as the JSON string "true". DeleteEvent compares
// that string exactly; a JSON boolean true is reported as false.
//
// # Error Handling
//
// Errors are wrapped with context using fmt.Errorf:
//   - "execute request: ..." for transport failures
//   - "api <endpoint> returned status <code>" for HTTP errors
//   - "decode response: ..." for malformed JSON
//
// Sentinels (ErrLoginFailed, ErrNotAuthenticated, ErrMissingFamily,
// ErrMissingSection) can be matched with errors.Is.
package familywall
