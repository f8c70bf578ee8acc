package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/famwall/internal/familywall"
)

const familyJSON = `{
	"a00": {"r": {"r": {
		"family_id": "fam-1",
		"members": [
			{"firstName": "Alice", "role": "Admin", "right": "Admin",
			 "identifiers": [{"type": "Email", "value": "alice@example.com", "validated": "true"}]},
			{"firstName": "Bob", "role": "Member"}
		],
		"coverMedias": [{"pictureUrl": "https://img/1.jpg", "resolutionX": 1920, "resolutionY": 1080}]
	}}},
	"a03": {"r": {"r": {"familyId": "fam-1", "defaultReminderValue": 15}}}
}`

// upstream fakes the FamilyWall API for end-to-end command tests.
type upstream struct {
	mu    sync.Mutex
	forms map[string][]map[string]string
	body  map[string]string
}

func newUpstream(t *testing.T) (*upstream, string) {
	t.Helper()
	u := &upstream{
		forms: map[string][]map[string]string{},
		body: map[string]string{
			"accgetallfamily":    familyJSON,
			"evtsync":            `{"a00":{"r":{"r":{"updatedCreated":[{"eventId":"2","text":"Late","startDate":"2024-01-02T09:00:00"},{"eventId":"1","text":"Early","startDate":"2024-01-01T09:00:00"}]}}}}`,
			"evtdelete":          `{"a00":{"r":{"r":"true"}}}`,
			"evtcreate":          `{"a00":{"r":{"r":{"eventId":"new-1","text":"Swim"}}}}`,
			"webgetWebSocketUrl": `{}`,
		},
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		endpoint := strings.TrimPrefix(r.URL.Path, "/api/")
		form := map[string]string{}
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}
		u.mu.Lock()
		u.forms[endpoint] = append(u.forms[endpoint], form)
		body, ok := u.body[endpoint]
		u.mu.Unlock()

		if endpoint == "log2in" {
			w.Header().Add("Set-Cookie", "JSESSIONID=tok-1; Path=/")
		}
		if !ok {
			body = `{}`
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return u, server.URL + "/api"
}

func (u *upstream) lastForm(endpoint string) map[string]string {
	u.mu.Lock()
	defer u.mu.Unlock()
	forms := u.forms[endpoint]
	if len(forms) == 0 {
		return nil
	}
	return forms[len(forms)-1]
}

// runCLI executes the root command against baseURL and returns stdout.
func runCLI(t *testing.T, baseURL string, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("base_url = \""+baseURL+"\"\ntimezone = \"UTC\"\nlogin_retries = 0\n"), 0o600))
	envPath := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envPath, nil, 0o600))

	t.Setenv("FAMWALL_EMAIL", "alice@example.com")
	t.Setenv("FAMWALL_PASSWORD", "pw")

	root := newRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--config", cfgPath, "--env-file", envPath}, args...))
	err := root.Execute()
	return stdout.String(), err
}

func TestMembers_JSON(t *testing.T) {
	_, base := newUpstream(t)
	out, err := runCLI(t, base, "members", "-o", "json")
	require.NoError(t, err)

	var members []familywall.Member
	require.NoError(t, json.Unmarshal([]byte(out), &members))
	require.Len(t, members, 2)
	assert.Equal(t, "alice@example.com", members[0].Email)
	assert.True(t, members[0].Identifiers[0].Validated)
	assert.False(t, members[1].Rights.CanUpdate)
}

func TestMembers_ByNameMissingPrintsNull(t *testing.T) {
	_, base := newUpstream(t)
	out, err := runCLI(t, base, "members", "Carol", "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, "null", strings.TrimSpace(out))
}

func TestAbsentSectionText(t *testing.T) {
	_, base := newUpstream(t)
	for _, cmd := range []string{"messages", "premium"} {
		out, err := runCLI(t, base, cmd)
		require.NoError(t, err, cmd)
		assert.Contains(t, out, notAvailable, cmd)
	}

	out, err := runCLI(t, base, "profile", "acc-404", "-o", "yaml")
	require.NoError(t, err)
	assert.Equal(t, "null", strings.TrimSpace(out))
}

func TestSettingsAndMediaText(t *testing.T) {
	_, base := newUpstream(t)
	out, err := runCLI(t, base, "settings")
	require.NoError(t, err)
	assert.Contains(t, out, "Family settings")
	assert.Contains(t, out, "15")

	out, err = runCLI(t, base, "media")
	require.NoError(t, err)
	assert.Contains(t, out, "1920x1080")
}

func TestEventsList_SortedAndKeyedByFamily(t *testing.T) {
	up, base := newUpstream(t)
	out, err := runCLI(t, base, "events", "list", "-o", "json")
	require.NoError(t, err)

	var events []familywall.CalendarEvent
	require.NoError(t, json.Unmarshal([]byte(out), &events))
	require.Len(t, events, 2)
	assert.Equal(t, "1", events[0].EventID)
	assert.Equal(t, "calendar/fam-1", up.lastForm("evtsync")["calendarId"])
}

func TestEventsList_ICSToStdout(t *testing.T) {
	_, base := newUpstream(t)
	out, err := runCLI(t, base, "events", "list", "--ics", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "SUMMARY:Early")
}

func TestEventsCreate_SendsFields(t *testing.T) {
	up, base := newUpstream(t)
	out, err := runCLI(t, base, "events", "create",
		"--text", "Swim", "--start", "2024-09-18T10:00:00", "--end", "2024-09-18T11:00:00",
		"--field", "reminderList=15", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"eventId": "new-1"`)

	form := up.lastForm("evtcreate")
	assert.Equal(t, "Swim", form["text"])
	assert.Equal(t, "15", form["reminderList"])
	assert.Equal(t, "NONE", form["recurrency"])
}

func TestEventsCreate_RequiresText(t *testing.T) {
	_, base := newUpstream(t)
	_, err := runCLI(t, base, "events", "create", "--start", "x", "--end", "y")
	require.Error(t, err)
}

func TestEventsDelete(t *testing.T) {
	up, base := newUpstream(t)
	out, err := runCLI(t, base, "events", "delete", "evt-9")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted event evt-9")
	assert.Equal(t, "evt-9", up.lastForm("evtdelete")["eventId.0"])

	up.mu.Lock()
	up.body["evtdelete"] = `{"a00":{"r":{"r":"false"}}}`
	up.mu.Unlock()
	_, err = runCLI(t, base, "events", "delete", "evt-9")
	require.Error(t, err)
}

func TestWebSocket_Absent(t *testing.T) {
	_, base := newUpstream(t)
	out, err := runCLI(t, base, "websocket", "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, "null", strings.TrimSpace(out))
}

func TestRaw_WithJQ(t *testing.T) {
	up, base := newUpstream(t)
	out, err := runCLI(t, base, "raw", "accgetallfamily", "a01call=prfgetProfiles", "--jq", ".a00.r.r.members[].firstName")
	require.NoError(t, err)
	assert.Equal(t, "\"Alice\"\n\"Bob\"\n", out)

	form := up.lastForm("accgetallfamily")
	assert.Equal(t, "prfgetProfiles", form["a01call"])
	assert.Equal(t, "Family", form["partnerScope"])
}

func TestMissingCredentials(t *testing.T) {
	_, base := newUpstream(t)
	t.Setenv("FAMWALL_EMAIL", "")
	t.Setenv("email", "")

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("base_url = \""+base+"\"\n"), 0o600))
	envPath := filepath.Join(dir, "empty.env")
	require.NoError(t, os.WriteFile(envPath, nil, 0o600))

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--config", cfgPath, "--env-file", envPath, "settings"})
	require.Error(t, root.Execute())
}

func TestInvalidOutputFormat(t *testing.T) {
	_, base := newUpstream(t)
	_, err := runCLI(t, base, "settings", "-o", "xml")
	require.Error(t, err)
}

func TestParseFields(t *testing.T) {
	fields, err := parseFields([]string{"a=1", "b=x=y", "c=", "a=2"})
	require.NoError(t, err)
	assert.Equal(t, familywall.Fields{"a": "2", "b": "x=y", "c": ""}, fields)

	_, err = parseFields([]string{"novalue"})
	require.Error(t, err)
	_, err = parseFields([]string{"=v"})
	require.Error(t, err)
}
