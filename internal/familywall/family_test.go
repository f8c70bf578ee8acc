package familywall

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSnapshotJSON = `{
  "a00": {"r": {"r": {
    "family_id": "fam-1",
    "members": [
      {
        "firstName": "Alice",
        "role": "Admin",
        "lastLoginDate": "2024-09-17T20:00:00Z",
        "joinDate": "2020-01-01T00:00:00Z",
        "profileFamilyId": "pf-1",
        "pictureURI": "https://cdn.example/alice.png",
        "timeZone": "Europe/Paris",
        "right": "Admin",
        "devices": [{"deviceType": "Email", "deviceId": "d1", "value": "alice@example.com"}],
        "identifiers": [
          {"type": "Phone", "value": "+33100", "validated": "false"},
          {"type": "Email", "value": "alice@example.com", "validated": "true"}
        ],
        "medias": [{"pictureUrl": "https://cdn.example/m1.png", "rights": {"canUpdate": "true"}}],
        "rights": {"canUpdate": true, "canDelete": "false"}
      },
      {
        "firstName": "Bob",
        "role": "Member",
        "devices": [],
        "identifiers": [],
        "medias": []
      },
      {
        "firstName": "Alice",
        "role": "Child"
      }
    ],
    "coverMedias": [
      {"pictureUrl": "https://cdn.example/cover.jpg", "resolutionX": 1920, "resolutionY": 1080, "creationDate": "2024-01-01", "mimeType": "image/jpeg"}
    ]
  }}},
  "a01": {"r": {"r": {
    "acc-1": {
      "firstName": "Alice",
      "timeZone": "Europe/Paris",
      "accountId": "acc-1",
      "devices": [{"deviceType": "Email", "deviceId": "d1", "value": "alice@example.com"}],
      "medias": []
    },
    "acc-2": {"firstName": "Bob", "accountId": "acc-2", "medias": []}
  }}},
  "a02": {"r": {"r": [{"familyId": "fam-1"}]}},
  "a03": {"r": {"r": {"familyId": "fam-1", "defaultReminderValue": 15, "geolocSharing": "ALL", "calendarFirstDayOfWeek": "MONDAY"}}},
  "a05": {"r": {"r": [
    {"metaId": "th-1", "unreadCount": 2, "messageCount": 10,
     "participants": [{"accountId": "acc-1", "accountFirstname": "Alice", "lastReadMessageDate": "2024-09-17"}]}
  ]}},
  "a06": {"r": {"r": {"premium": {"fWPremiumMemberSubscriber": true, "familyQuota": 6, "geoFencingActivated": false, "audio": true, "videoAvailable": true}}}}
}`

func sampleFamily(t *testing.T, calendar CalendarService) *Family {
	t.Helper()
	var snap Snapshot
	require.NoError(t, json.Unmarshal([]byte(sampleSnapshotJSON), &snap))
	family, err := NewFamily(&snap, calendar, SessionFromToken("tok"))
	require.NoError(t, err)
	return family
}

type fakeCalendar struct {
	session   Session
	key       string
	deletedID string
	created   EventFields
	events    []CalendarEvent
}

func (f *fakeCalendar) CreateEvent(_ context.Context, sess Session, event EventFields) (CalendarEvent, error) {
	f.session = sess
	f.created = event
	return CalendarEvent{EventID: "new", Text: event.Text}, nil
}

func (f *fakeCalendar) DeleteEvent(_ context.Context, sess Session, eventID string) (bool, error) {
	f.session = sess
	f.deletedID = eventID
	return true, nil
}

func (f *fakeCalendar) CalendarEvents(_ context.Context, sess Session, calendarKey string) ([]CalendarEvent, error) {
	f.session = sess
	f.key = calendarKey
	return f.events, nil
}

func TestNewFamily_RequiresCore(t *testing.T) {
	_, err := NewFamily(&Snapshot{}, nil, Session{})
	require.ErrorIs(t, err, ErrMissingFamily)

	_, err = NewFamily(nil, nil, Session{})
	require.Error(t, err)
}

func TestFamily_IDAndCalendarKey(t *testing.T) {
	family := sampleFamily(t, nil)
	assert.Equal(t, "fam-1", family.ID())
	assert.Equal(t, "calendar/fam-1", family.CalendarKey())
}

func TestFamily_MembersNormalized(t *testing.T) {
	family := sampleFamily(t, nil)
	members := family.Members()
	require.Len(t, members, 3)

	alice := members[0]
	assert.Equal(t, "alice@example.com", alice.Email)
	assert.Equal(t, Rights{CanUpdate: true, CanDelete: false}, alice.Rights)
	require.Len(t, alice.Identifiers, 2)
	assert.False(t, alice.Identifiers[0].Validated)
	assert.True(t, alice.Identifiers[1].Validated)
	require.Len(t, alice.Medias, 1)
	assert.Equal(t, Media{PictureURL: "https://cdn.example/m1.png", CanUpdate: true}, alice.Medias[0])
	assert.Equal(t, []Device{{DeviceType: "Email", DeviceID: "d1", Value: "alice@example.com"}}, alice.Devices)

	bob := members[1]
	assert.Empty(t, bob.Email)
	assert.Equal(t, Rights{}, bob.Rights)
	assert.NotNil(t, bob.Identifiers)
	assert.Empty(t, bob.Identifiers)
}

func TestMemberFromRaw_FirstEmailIdentifierWins(t *testing.T) {
	member := memberFromRaw(RawMember{
		FirstName: "Carol",
		Identifiers: []RawIdentifier{
			{Type: "Phone", Value: "+33100000000"},
			{Type: "Email", Value: ""},
			{Type: "Email", Value: "carol@example.com"},
		},
	})
	assert.Empty(t, member.Email)
	require.Len(t, member.Identifiers, 3)
}

func TestFamily_MemberFirstMatchWins(t *testing.T) {
	family := sampleFamily(t, nil)

	alice, ok := family.Member("Alice")
	require.True(t, ok)
	assert.Equal(t, "Admin", alice.Role)

	_, ok = family.Member("alice")
	assert.False(t, ok)
}

func TestFamily_MemberProfile(t *testing.T) {
	family := sampleFamily(t, nil)

	profile, ok := family.MemberProfile("acc-1")
	require.True(t, ok)
	assert.Equal(t, "Alice", profile.FirstName)
	assert.Equal(t, "alice@example.com", profile.Email)

	bob, ok := family.MemberProfile("acc-2")
	require.True(t, ok)
	assert.Empty(t, bob.Email)

	_, ok = family.MemberProfile("missing")
	assert.False(t, ok)
}

func TestFamily_AbsentSections(t *testing.T) {
	snap := Snapshot{Family: Present(FamilyPayload{FamilyID: "f"})}
	family, err := NewFamily(&snap, nil, Session{})
	require.NoError(t, err)

	_, ok := family.MemberProfile("acc-1")
	assert.False(t, ok)
	_, ok = family.Settings()
	assert.False(t, ok)
	threads, ok := family.Messages()
	assert.False(t, ok)
	assert.Nil(t, threads)
	_, ok = family.PremiumDetails()
	assert.False(t, ok)
	_, ok = family.FamilyList()
	assert.False(t, ok)
	_, ok = family.Invites()
	assert.False(t, ok)
	assert.Empty(t, family.Members())
	assert.Empty(t, family.Media())
}

func TestFamily_Settings(t *testing.T) {
	family := sampleFamily(t, nil)
	settings, ok := family.Settings()
	require.True(t, ok)
	assert.Equal(t, FamilySettings{
		FamilyID:               "fam-1",
		ReminderValue:          "15",
		GeolocSharing:          "ALL",
		CalendarFirstDayOfWeek: "MONDAY",
	}, settings)
}

func TestFamily_MediaResolution(t *testing.T) {
	family := sampleFamily(t, nil)
	media := family.Media()
	require.Len(t, media, 1)
	assert.Equal(t, "1920x1080", media[0].Resolution)
	assert.Equal(t, "image/jpeg", media[0].MimeType)
}

func TestFamily_Messages(t *testing.T) {
	family := sampleFamily(t, nil)
	threads, ok := family.Messages()
	require.True(t, ok)
	require.Len(t, threads, 1)
	assert.Equal(t, "th-1", threads[0].ThreadID)
	assert.Equal(t, 2, threads[0].UnreadCount)
	assert.Equal(t, []ThreadParticipant{{AccountID: "acc-1", FirstName: "Alice", LastReadMessageDate: "2024-09-17"}}, threads[0].Participants)

	empty := Snapshot{
		Family:  Present(FamilyPayload{FamilyID: "f"}),
		Threads: Present([]RawThread{}),
	}
	family, err := NewFamily(&empty, nil, Session{})
	require.NoError(t, err)
	threads, ok = family.Messages()
	assert.True(t, ok)
	assert.NotNil(t, threads)
	assert.Empty(t, threads)
}

func TestFamily_PremiumDetails(t *testing.T) {
	family := sampleFamily(t, nil)
	premium, ok := family.PremiumDetails()
	require.True(t, ok)
	assert.Equal(t, PremiumDetails{
		PremiumMember: true,
		FamilyQuota:   6,
		PremiumFeatures: PremiumFeatures{
			AudioAvailable: true,
			VideoAvailable: true,
		},
	}, premium)

	noPremium := Snapshot{
		Family:  Present(FamilyPayload{FamilyID: "f"}),
		Account: Present(AccountState{}),
	}
	family, err := NewFamily(&noPremium, nil, Session{})
	require.NoError(t, err)
	_, ok = family.PremiumDetails()
	assert.False(t, ok)
}

func TestFamily_OpaqueSections(t *testing.T) {
	family := sampleFamily(t, nil)
	list, ok := family.FamilyList()
	require.True(t, ok)
	assert.JSONEq(t, `[{"familyId":"fam-1"}]`, string(list))

	_, ok = family.Invites()
	assert.False(t, ok)
}

func TestFamily_CalendarDelegation(t *testing.T) {
	calendar := &fakeCalendar{events: []CalendarEvent{{EventID: "1"}}}
	family := sampleFamily(t, calendar)
	ctx := context.Background()

	events, err := family.CalendarEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, calendar.events, events)
	assert.Equal(t, "calendar/fam-1", calendar.key)
	assert.Equal(t, "tok", calendar.session.Token())

	created, err := family.CreateCalendarEvent(ctx, EventFields{Text: "Swim"})
	require.NoError(t, err)
	assert.Equal(t, "new", created.EventID)
	assert.Equal(t, "Swim", calendar.created.Text)

	ok, err := family.DeleteCalendarEvent(ctx, "evt-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "evt-1", calendar.deletedID)
}

func TestFamily_NilCalendar(t *testing.T) {
	family := sampleFamily(t, nil)
	_, err := family.CalendarEvents(context.Background())
	require.Error(t, err)
}

func TestSnapshot_MarshalOmitsAbsentSections(t *testing.T) {
	family := sampleFamily(t, nil)
	data, err := json.Marshal(family.Snapshot())
	require.NoError(t, err)

	var back map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Contains(t, back, "a00")
	assert.NotContains(t, back, "a04")

	var again Snapshot
	require.NoError(t, json.Unmarshal(data, &again))
	core, ok := again.Family.Get()
	require.True(t, ok)
	assert.Equal(t, "fam-1", core.FamilyID)
}
