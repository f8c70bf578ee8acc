package familywall

import (
	"encoding/json"
	"strings"
	"time"
)

// Snapshot mirrors one accgetallfamily response. Only the family core (a00)
// is guaranteed; every other section may be absent.
type Snapshot struct {
	Family     Section[FamilyPayload]         `json:"a00,omitzero"`
	Profiles   Section[map[string]RawProfile] `json:"a01,omitzero"`
	FamilyList Section[json.RawMessage]       `json:"a02,omitzero"`
	Settings   Section[RawFamilySettings]     `json:"a03,omitzero"`
	Invites    Section[json.RawMessage]       `json:"a04,omitzero"`
	Threads    Section[[]RawThread]           `json:"a05,omitzero"`
	Account    Section[AccountState]          `json:"a06,omitzero"`
}

// FamilyPayload is the family core section.
type FamilyPayload struct {
	FamilyID    string          `json:"family_id"`
	Members     []RawMember     `json:"members"`
	CoverMedias []RawCoverMedia `json:"coverMedias"`
}

// RawMember is a member record as sent by the API.
type RawMember struct {
	FirstName       string          `json:"firstName"`
	Role            string          `json:"role"`
	LastLoginDate   string          `json:"lastLoginDate"`
	JoinDate        string          `json:"joinDate"`
	ProfileFamilyID string          `json:"profileFamilyId"`
	PictureURI      string          `json:"pictureURI,omitempty"`
	TimeZone        string          `json:"timeZone"`
	Right           string          `json:"right"`
	Devices         []RawDevice     `json:"devices"`
	Identifiers     []RawIdentifier `json:"identifiers"`
	Medias          []RawMedia      `json:"medias"`
	Rights          *RawRights      `json:"rights,omitempty"`
}

// RawDevice is a registered device of a member or profile.
type RawDevice struct {
	DeviceType string `json:"deviceType"`
	DeviceID   string `json:"deviceId"`
	Value      string `json:"value"`
}

// RawIdentifier is a login identifier. Validated is the string "true" or "false".
type RawIdentifier struct {
	Type      string `json:"type"`
	Value     string `json:"value"`
	Validated string `json:"validated"`
}

// RawRights carries optional update/delete permissions.
type RawRights struct {
	CanUpdate *Flag `json:"canUpdate,omitempty"`
	CanDelete *Flag `json:"canDelete,omitempty"`
}

// RawMedia is a picture attached to a member or profile.
type RawMedia struct {
	PictureURL string     `json:"pictureUrl"`
	Rights     *RawRights `json:"rights,omitempty"`
}

// RawCoverMedia is a family cover picture.
type RawCoverMedia struct {
	PictureURL   string `json:"pictureUrl"`
	ResolutionX  int    `json:"resolutionX"`
	ResolutionY  int    `json:"resolutionY"`
	CreationDate string `json:"creationDate"`
	MimeType     string `json:"mimeType"`
}

// RawProfile is one entry of the profile map, keyed by account id.
type RawProfile struct {
	FirstName  string      `json:"firstName"`
	TimeZone   string      `json:"timeZone"`
	AccountID  string      `json:"accountId"`
	PictureURI string      `json:"pictureURI,omitempty"`
	Devices    []RawDevice `json:"devices,omitempty"`
	Medias     []RawMedia  `json:"medias"`
}

// RawFamilySettings is the per-family settings section.
type RawFamilySettings struct {
	FamilyID               Text `json:"familyId"`
	DefaultReminderValue   Text `json:"defaultReminderValue"`
	GeolocSharing          Text `json:"geolocSharing"`
	CalendarFirstDayOfWeek Text `json:"calendarFirstDayOfWeek"`
}

// RawThread is a messaging thread summary.
type RawThread struct {
	MetaID       string                 `json:"metaId"`
	Participants []RawThreadParticipant `json:"participants"`
	UnreadCount  int                    `json:"unreadCount"`
	MessageCount int                    `json:"messageCount"`
}

// RawThreadParticipant is one participant of a thread.
type RawThreadParticipant struct {
	AccountID           string `json:"accountId"`
	AccountFirstname    string `json:"accountFirstname"`
	LastReadMessageDate string `json:"lastReadMessageDate"`
}

// AccountState is the accgetstate section.
type AccountState struct {
	Premium *RawPremium `json:"premium,omitempty"`
}

// RawPremium carries subscription flags.
type RawPremium struct {
	FWPremiumMemberSubscriber bool `json:"fWPremiumMemberSubscriber"`
	FamilyQuota               int  `json:"familyQuota"`
	GeoFencingActivated       bool `json:"geoFencingActivated"`
	Audio                     bool `json:"audio"`
	VideoAvailable            bool `json:"videoAvailable"`
}

// CalendarEvent is an event as returned by evtcreate and evtsync.
type CalendarEvent struct {
	EventID     string `json:"eventId"`
	Text        string `json:"text"`
	Description string `json:"description"`
	Where       string `json:"where"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
}

// ParsedStart returns StartDate as time.Time, or the zero time.
func (e CalendarEvent) ParsedStart() time.Time {
	return parseTime(e.StartDate)
}

// ParsedEnd returns EndDate as time.Time, or the zero time.
func (e CalendarEvent) ParsedEnd() time.Time {
	return parseTime(e.EndDate)
}

// EventFields are the caller-supplied fields of a new event. Extra entries
// are sent as-is and override both the defaults and the named fields.
type EventFields struct {
	Text        string
	StartDate   string
	EndDate     string
	Color       string
	Where       string
	Description string
	Extra       Fields
}

type eventSyncPayload struct {
	UpdatedCreated []CalendarEvent `json:"updatedCreated"`
}

// Member is the normalized view of a RawMember.
type Member struct {
	FirstName       string       `json:"firstName"`
	Email           string       `json:"email,omitempty"`
	Role            string       `json:"role"`
	LastLoginDate   string       `json:"lastLoginDate"`
	JoinDate        string       `json:"joinDate"`
	ProfileFamilyID string       `json:"profileFamilyId"`
	PictureURI      string       `json:"pictureURI,omitempty"`
	TimeZone        string       `json:"timeZone"`
	Right           string       `json:"right"`
	Devices         []Device     `json:"devices"`
	Identifiers     []Identifier `json:"identifiers"`
	Medias          []Media      `json:"medias"`
	Rights          Rights       `json:"rights"`
}

// Device is a member or profile device.
type Device struct {
	DeviceType string `json:"deviceType"`
	DeviceID   string `json:"deviceId"`
	Value      string `json:"value"`
}

// Identifier is a login identifier with its validation state.
type Identifier struct {
	Type      string `json:"type"`
	Value     string `json:"value"`
	Validated bool   `json:"validated"`
}

// Media is a member or profile picture with its rights flattened.
type Media struct {
	PictureURL string `json:"pictureUrl"`
	CanUpdate  bool   `json:"canUpdate"`
	CanDelete  bool   `json:"canDelete"`
}

// Rights are the update/delete permissions of a member.
type Rights struct {
	CanUpdate bool `json:"canUpdate"`
	CanDelete bool `json:"canDelete"`
}

// Profile is the normalized view of a RawProfile.
type Profile struct {
	FirstName  string  `json:"firstName"`
	Email      string  `json:"email,omitempty"`
	TimeZone   string  `json:"timeZone"`
	AccountID  string  `json:"accountId"`
	PictureURI string  `json:"pictureURI,omitempty"`
	Medias     []Media `json:"medias"`
}

// FamilySettings is the renamed settings section.
type FamilySettings struct {
	FamilyID               string `json:"familyId"`
	ReminderValue          string `json:"reminderValue"`
	GeolocSharing          string `json:"geolocSharing"`
	CalendarFirstDayOfWeek string `json:"calendarFirstDayOfWeek"`
}

// CoverMedia is a family cover picture with a synthesized resolution.
type CoverMedia struct {
	PictureURL   string `json:"pictureUrl"`
	Resolution   string `json:"resolution"`
	CreationDate string `json:"creationDate"`
	MimeType     string `json:"mimeType"`
}

// Thread is a messaging thread summary.
type Thread struct {
	ThreadID     string              `json:"threadId"`
	Participants []ThreadParticipant `json:"participants"`
	UnreadCount  int                 `json:"unreadCount"`
	MessageCount int                 `json:"messageCount"`
}

// ThreadParticipant is one participant of a Thread.
type ThreadParticipant struct {
	AccountID           string `json:"accountId"`
	FirstName           string `json:"firstName"`
	LastReadMessageDate string `json:"lastReadMessageDate"`
}

// PremiumDetails summarizes the account's premium state.
type PremiumDetails struct {
	PremiumMember   bool            `json:"premiumMember"`
	FamilyQuota     int             `json:"familyQuota"`
	PremiumFeatures PremiumFeatures `json:"premiumFeatures"`
}

// PremiumFeatures lists the premium feature flags.
type PremiumFeatures struct {
	GeoFencing     bool `json:"geoFencing"`
	AudioAvailable bool `json:"audioAvailable"`
	VideoAvailable bool `json:"videoAvailable"`
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts[:2] {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	for _, layout := range timeLayouts[2:] {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}
