package familywall

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	DefaultBaseURL      = "https://api.familywall.com/api"
	DefaultDeviceID     = "webm16skcc5so1b181l4o"
	DefaultLoginRetries = 3
	defaultTimeout      = 30 * time.Second

	partnerScope  = "Family"
	eventTimeZone = "Europe/London"
)

const (
	endpointLogin        = "log2in"
	endpointWebSet       = "webset"
	endpointWebGet       = "webget"
	endpointWebSocketURL = "webgetWebSocketUrl"
	endpointAllFamily    = "accgetallfamily"
	endpointEventCreate  = "evtcreate"
	endpointEventDelete  = "evtdelete"
	endpointEventSync    = "evtsync"
)

var (
	// ErrLoginFailed is returned when no session cookie was issued after all attempts.
	ErrLoginFailed = errors.New("familywall: login failed")
	// ErrNotAuthenticated is returned when an operation needs a logged-in session.
	ErrNotAuthenticated = errors.New("familywall: session is not authenticated")
	// ErrMissingFamily is returned when a snapshot lacks the family core section.
	ErrMissingFamily = errors.New("familywall: family section missing from response")
	// ErrMissingSection is returned when an event response lacks its a00 payload.
	ErrMissingSection = errors.New("familywall: a00 section missing from response")
)

// browserHeaders are sent on every request so the API treats the client like
// its own web app.
var browserHeaders = map[string]string{
	"Accept":             "application/json, text/javascript, */*; q=0.01",
	"Accept-Language":    "en-US,en;q=0.9",
	"Cache-Control":      "no-cache",
	"Pragma":             "no-cache",
	"Priority":           "u=1, i",
	"Sec-Ch-Ua":          `"Chromium";v="128", "Not;A=Brand";v="24", "Google Chrome";v="128"`,
	"Sec-Ch-Ua-Mobile":   "?0",
	"Sec-Ch-Ua-Platform": `"Windows"`,
	"Sec-Fetch-Dest":     "empty",
	"Sec-Fetch-Mode":     "cors",
	"Sec-Fetch-Site":     "same-site",
	"Referer":            "https://www.familywall.com/",
	"Referrer-Policy":    "strict-origin-when-cross-origin",
	"User-Agent":         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/128.0.0.0 Safari/537.36",
}

// Options configure a Client. Zero values select the defaults.
type Options struct {
	BaseURL  string
	Timezone string
	DeviceID string
	// LoginRetries is the number of extra login attempts after the first.
	// Zero uses DefaultLoginRetries; negative disables retries.
	LoginRetries int
	Timeout      time.Duration
	// HTTPClient replaces the underlying transport, mostly for tests.
	HTTPClient *http.Client
}

// Client performs every call against the FamilyWall API. It holds no
// credentials; each authenticated call takes the Session returned by Login.
type Client struct {
	http         *resty.Client
	baseURL      string
	timezone     string
	deviceID     string
	loginRetries int

	mu           sync.RWMutex
	webSocketURL string
	profiles     map[string]RawProfile
	family       *FamilyPayload
}

// NewClient builds a Client from opts.
func NewClient(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if !strings.Contains(base, "://") {
		return nil, fmt.Errorf("parse base url %q: missing scheme", opts.BaseURL)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	var rc *resty.Client
	if opts.HTTPClient != nil {
		rc = resty.NewWithClient(opts.HTTPClient)
	} else {
		rc = resty.New()
	}
	// Cookies are sent from the Session only; a jar would leak them across sessions.
	rc.SetCookieJar(nil).
		SetBaseURL(base).
		SetTimeout(timeout).
		SetHeaders(browserHeaders)

	retries := opts.LoginRetries
	switch {
	case retries == 0:
		retries = DefaultLoginRetries
	case retries < 0:
		retries = 0
	}

	timezone := strings.TrimSpace(opts.Timezone)
	if timezone == "" {
		timezone = HostTimezone()
	}

	deviceID := strings.TrimSpace(opts.DeviceID)
	if deviceID == "" {
		deviceID = DefaultDeviceID
	}

	return &Client{
		http:         rc,
		baseURL:      base,
		timezone:     timezone,
		deviceID:     deviceID,
		loginRetries: retries,
	}, nil
}

// Timezone returns the timezone sent with account state requests.
func (c *Client) Timezone() string { return c.timezone }

// Login authenticates and returns the resulting Session. When the API never
// issues a session cookie the call gives up after 1+LoginRetries attempts and
// returns ErrLoginFailed. Transport errors are returned without retrying.
func (c *Client) Login(ctx context.Context, identifier, secret string) (Session, error) {
	if c == nil {
		return Session{}, fmt.Errorf("client is nil")
	}
	fields := Fields{
		"partnerScope":              partnerScope,
		"a01call":                   "log2get",
		"transactional":             true,
		"a00generateAutologinToken": true,
		"a00identifier":             identifier,
		"a00password":               secret,
	}

	attempts := c.loginRetries + 1
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return Session{}, err
		}
		resp, err := c.send(ctx, Session{}, http.MethodPost, endpointLogin, fields)
		if err != nil {
			return Session{}, fmt.Errorf("login: %w", err)
		}
		token := sessionToken(resp.Cookies())
		if token == "" {
			logrus.WithFields(logrus.Fields{
				"attempt": attempt,
				"status":  resp.StatusCode(),
			}).Debugln("Login response carried no session cookie")
			continue
		}

		sess := SessionFromToken(token)
		c.handshake(ctx, sess)
		return sess, nil
	}

	logrus.WithField("attempts", attempts).Errorln("Failed to login")
	return Session{}, ErrLoginFailed
}

// handshake issues the webset/webget pair the API expects right after login.
// Their bodies are discarded and failures only logged.
func (c *Client) handshake(ctx context.Context, sess Session) {
	steps := []struct {
		endpoint string
		fields   Fields
	}{
		{endpointWebSet, Fields{"partnerScope": partnerScope, "var": "a", "value": "t"}},
		{endpointWebGet, Fields{"partnerScope": partnerScope, "var": "a"}},
	}
	for _, step := range steps {
		if err := c.call(ctx, sess, step.endpoint, step.fields, nil); err != nil {
			logrus.WithField("endpoint", step.endpoint).WithError(err).Warnln("Session handshake call failed")
		}
	}
}

// Request POSTs fields to endpoint and returns the raw JSON body. Credential
// headers are attached only when sess is authenticated.
func (c *Client) Request(ctx context.Context, sess Session, endpoint string, fields Fields) (json.RawMessage, error) {
	return c.Do(ctx, sess, http.MethodPost, endpoint, fields)
}

// Do is Request with an explicit HTTP method.
func (c *Client) Do(ctx context.Context, sess Session, method, endpoint string, fields Fields) (json.RawMessage, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var raw json.RawMessage
	if err := c.callMethod(ctx, sess, method, endpoint, fields, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// WebSocketURL fetches the push channel URL. The boolean is false when the
// API did not return one.
func (c *Client) WebSocketURL(ctx context.Context, sess Session) (string, bool, error) {
	if err := c.requireSession(sess); err != nil {
		return "", false, err
	}
	var payload struct {
		URL Section[string] `json:"a00"`
	}
	if err := c.call(ctx, sess, endpointWebSocketURL, Fields{"partnerScope": partnerScope}, &payload); err != nil {
		return "", false, err
	}
	u, ok := payload.URL.Get()
	if ok {
		c.mu.Lock()
		c.webSocketURL = u
		c.mu.Unlock()
	}
	return u, ok, nil
}

// AllFamilyData fetches every section of the family snapshot in one call.
func (c *Client) AllFamilyData(ctx context.Context, sess Session) (*Snapshot, error) {
	if err := c.requireSession(sess); err != nil {
		return nil, err
	}
	fields := Fields{
		"partnerScope":          partnerScope,
		"a01call":               "prfgetProfiles",
		"a02call":               "famlistfamily",
		"a03call":               "settingsgetperfamily",
		"a04call":               "famshowincominginvite",
		"a05call":               "imthreadlist",
		"a05isLoggedFamily":     false,
		"a06call":               "accgetstate",
		"a06deviceId":           c.deviceID,
		"a06modelType":          "WebFirebase",
		"a06applicationVersion": "",
		"a06timezone":           c.timezone,
	}
	var snap Snapshot
	if err := c.call(ctx, sess, endpointAllFamily, fields, &snap); err != nil {
		return nil, err
	}

	core, ok := snap.Family.Get()
	profiles, _ := snap.Profiles.Get()
	c.mu.Lock()
	c.profiles = profiles
	if ok {
		c.family = &core
	} else {
		c.family = nil
	}
	c.mu.Unlock()

	if !ok {
		return nil, ErrMissingFamily
	}
	return &snap, nil
}

// Family fetches a snapshot and wraps it in a Family view bound to sess.
func (c *Client) Family(ctx context.Context, sess Session) (*Family, error) {
	snap, err := c.AllFamilyData(ctx, sess)
	if err != nil {
		return nil, err
	}
	return NewFamily(snap, c, sess)
}

// CreateEvent creates a calendar event. Fields not supplied by the caller
// fall back to a non-recurring, reminder-less event without picture.
func (c *Client) CreateEvent(ctx context.Context, sess Session, event EventFields) (CalendarEvent, error) {
	if err := c.requireSession(sess); err != nil {
		return CalendarEvent{}, err
	}
	defaults := Fields{
		"partnerScope":       partnerScope,
		"picture":            "$empty",
		"timeZone":           eventTimeZone,
		"isToAll":            "false",
		"private":            "",
		"recurrencyInterval": "1",
		"recurrency":         "NONE",
		"byDay":              "",
		"byMonthDay":         "",
		"recurrencyEndDate":  "$empty",
		"reminderList":       "$empty",
	}
	fields := defaults.merge(Fields{
		"text":        event.Text,
		"startDate":   event.StartDate,
		"endDate":     event.EndDate,
		"color":       event.Color,
		"where":       event.Where,
		"description": event.Description,
	}).merge(event.Extra)

	var payload struct {
		Event Section[CalendarEvent] `json:"a00"`
	}
	if err := c.call(ctx, sess, endpointEventCreate, fields, &payload); err != nil {
		return CalendarEvent{}, err
	}
	created, ok := payload.Event.Get()
	if !ok {
		return CalendarEvent{}, fmt.Errorf("%s: %w", endpointEventCreate, ErrMissingSection)
	}
	return created, nil
}

// DeleteEvent deletes one event. It reports true only when the API answers
// with the string "true"; a JSON boolean does not count.
func (c *Client) DeleteEvent(ctx context.Context, sess Session, eventID string) (bool, error) {
	if err := c.requireSession(sess); err != nil {
		return false, err
	}
	fields := Fields{
		"partnerScope": partnerScope,
		"option":       "All",
		"eventId.0":    eventID,
	}
	var payload struct {
		Result Section[json.RawMessage] `json:"a00"`
	}
	if err := c.call(ctx, sess, endpointEventDelete, fields, &payload); err != nil {
		return false, err
	}
	raw, ok := payload.Result.Get()
	if !ok {
		return false, fmt.Errorf("%s: %w", endpointEventDelete, ErrMissingSection)
	}
	var result string
	if err := json.Unmarshal(raw, &result); err != nil {
		return false, nil
	}
	return result == "true", nil
}

// CalendarEvents runs a full sync of calendarKey and returns the
// updated-or-created events.
func (c *Client) CalendarEvents(ctx context.Context, sess Session, calendarKey string) ([]CalendarEvent, error) {
	if err := c.requireSession(sess); err != nil {
		return nil, err
	}
	fields := Fields{
		"partnerScope":       partnerScope,
		"calendarId":         calendarKey,
		"a01call":            "evtcallist",
		"a01withtask":        "true",
		"a01withmeal":        "true",
		"a01withfolder":      "true",
		"a01withAllFamilies": "true",
		"a01withExternal":    "true",
		"a01withOnError":     "true",
	}
	var payload struct {
		Sync Section[eventSyncPayload] `json:"a00"`
	}
	if err := c.call(ctx, sess, endpointEventSync, fields, &payload); err != nil {
		return nil, err
	}
	synced, ok := payload.Sync.Get()
	if !ok {
		return nil, fmt.Errorf("%s: %w", endpointEventSync, ErrMissingSection)
	}
	return synced.UpdatedCreated, nil
}

// CachedWebSocketURL returns the last URL seen by WebSocketURL.
func (c *Client) CachedWebSocketURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.webSocketURL
}

// CachedProfiles returns the profile map of the last snapshot, or nil.
func (c *Client) CachedProfiles() map[string]RawProfile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.profiles == nil {
		return nil
	}
	dup := make(map[string]RawProfile, len(c.profiles))
	for k, v := range c.profiles {
		dup[k] = v
	}
	return dup
}

// CachedFamily returns the family core of the last snapshot.
func (c *Client) CachedFamily() (FamilyPayload, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.family == nil {
		return FamilyPayload{}, false
	}
	return *c.family, true
}

func (c *Client) requireSession(sess Session) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if !sess.Authenticated() {
		return ErrNotAuthenticated
	}
	return nil
}

func (c *Client) call(ctx context.Context, sess Session, endpoint string, fields Fields, dest any) error {
	return c.callMethod(ctx, sess, http.MethodPost, endpoint, fields, dest)
}

func (c *Client) callMethod(ctx context.Context, sess Session, method, endpoint string, fields Fields, dest any) error {
	resp, err := c.send(ctx, sess, method, endpoint, fields)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("api %s returned status %d", endpoint, resp.StatusCode())
	}
	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// send is the only place that talks to the network.
func (c *Client) send(ctx context.Context, sess Session, method, endpoint string, fields Fields) (*resty.Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	endpoint = strings.TrimLeft(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		return nil, fmt.Errorf("endpoint is empty")
	}
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = http.MethodPost
	}

	req := c.http.R().SetContext(ctx)
	switch method {
	case http.MethodGet, http.MethodHead:
		// resty drops form bodies on these methods.
		req.SetQueryParamsFromValues(fields.Values())
	default:
		req.SetFormDataFromValues(fields.Values())
	}
	sess.apply(req.Header)

	requestID := uuid.NewString()
	log := logrus.WithFields(logrus.Fields{
		"endpoint": endpoint,
		"method":   method,
		"request":  requestID,
		"auth":     sess.Authenticated(),
	})
	log.Debugln("FamilyWall request")

	resp, err := req.Execute(method, "/"+endpoint)
	if err != nil {
		log.WithError(err).Debugln("FamilyWall request failed")
		return nil, fmt.Errorf("execute request: %w", err)
	}
	log.WithFields(logrus.Fields{
		"status":   resp.StatusCode(),
		"duration": resp.Time(),
	}).Debugln("FamilyWall response")
	return resp, nil
}

// HostTimezone returns the IANA name of the host timezone, or "UTC".
func HostTimezone() string {
	if tz := strings.TrimPrefix(strings.TrimSpace(os.Getenv("TZ")), ":"); tz != "" {
		if _, err := time.LoadLocation(tz); err == nil {
			return tz
		}
	}
	if target, err := os.Readlink("/etc/localtime"); err == nil {
		if _, name, ok := strings.Cut(filepath.ToSlash(target), "zoneinfo/"); ok && name != "" {
			return name
		}
	}
	if name := time.Local.String(); name != "" && name != "Local" {
		return name
	}
	return "UTC"
}
