package familywall

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// CalendarService is the subset of Client a Family delegates calendar calls to.
type CalendarService interface {
	CreateEvent(ctx context.Context, sess Session, event EventFields) (CalendarEvent, error)
	DeleteEvent(ctx context.Context, sess Session, eventID string) (bool, error)
	CalendarEvents(ctx context.Context, sess Session, calendarKey string) ([]CalendarEvent, error)
}

var _ CalendarService = (*Client)(nil)

// Family is a read-only view over one Snapshot. Accessors never fail: absent
// sections are reported through a false second return value.
type Family struct {
	snapshot *Snapshot
	core     FamilyPayload
	calendar CalendarService
	session  Session
}

// NewFamily wraps snap. The family core section must be present.
func NewFamily(snap *Snapshot, calendar CalendarService, sess Session) (*Family, error) {
	if snap == nil {
		return nil, fmt.Errorf("snapshot is nil")
	}
	core, ok := snap.Family.Get()
	if !ok {
		return nil, ErrMissingFamily
	}
	return &Family{
		snapshot: snap,
		core:     core,
		calendar: calendar,
		session:  sess,
	}, nil
}

// ID returns the family id captured from the snapshot.
func (f *Family) ID() string { return f.core.FamilyID }

// CalendarKey returns the calendar id used for event syncs.
func (f *Family) CalendarKey() string { return "calendar/" + f.core.FamilyID }

// Snapshot returns the underlying raw snapshot. Callers must not modify it.
func (f *Family) Snapshot() *Snapshot { return f.snapshot }

// Members returns every member in upstream order.
func (f *Family) Members() []Member {
	members := make([]Member, 0, len(f.core.Members))
	for _, m := range f.core.Members {
		members = append(members, memberFromRaw(m))
	}
	return members
}

// Member returns the first member whose first name matches exactly.
func (f *Family) Member(firstName string) (Member, bool) {
	for _, m := range f.core.Members {
		if m.FirstName == firstName {
			return memberFromRaw(m), true
		}
	}
	return Member{}, false
}

// MemberProfile looks up a profile by account id.
func (f *Family) MemberProfile(accountID string) (Profile, bool) {
	profiles, ok := f.snapshot.Profiles.Get()
	if !ok {
		return Profile{}, false
	}
	raw, ok := profiles[accountID]
	if !ok {
		return Profile{}, false
	}
	return profileFromRaw(raw), true
}

// Settings returns the family settings section.
func (f *Family) Settings() (FamilySettings, bool) {
	raw, ok := f.snapshot.Settings.Get()
	if !ok {
		return FamilySettings{}, false
	}
	return FamilySettings{
		FamilyID:               string(raw.FamilyID),
		ReminderValue:          string(raw.DefaultReminderValue),
		GeolocSharing:          string(raw.GeolocSharing),
		CalendarFirstDayOfWeek: string(raw.CalendarFirstDayOfWeek),
	}, true
}

// Media returns the family cover pictures.
func (f *Family) Media() []CoverMedia {
	media := make([]CoverMedia, 0, len(f.core.CoverMedias))
	for _, m := range f.core.CoverMedias {
		media = append(media, CoverMedia{
			PictureURL:   m.PictureURL,
			Resolution:   strconv.Itoa(m.ResolutionX) + "x" + strconv.Itoa(m.ResolutionY),
			CreationDate: m.CreationDate,
			MimeType:     m.MimeType,
		})
	}
	return media
}

// Messages returns the thread list. A present but empty section yields an
// empty, non-nil slice.
func (f *Family) Messages() ([]Thread, bool) {
	raw, ok := f.snapshot.Threads.Get()
	if !ok {
		return nil, false
	}
	threads := make([]Thread, 0, len(raw))
	for _, t := range raw {
		participants := make([]ThreadParticipant, 0, len(t.Participants))
		for _, p := range t.Participants {
			participants = append(participants, ThreadParticipant{
				AccountID:           p.AccountID,
				FirstName:           p.AccountFirstname,
				LastReadMessageDate: p.LastReadMessageDate,
			})
		}
		threads = append(threads, Thread{
			ThreadID:     t.MetaID,
			Participants: participants,
			UnreadCount:  t.UnreadCount,
			MessageCount: t.MessageCount,
		})
	}
	return threads, true
}

// PremiumDetails returns the premium state of the account.
func (f *Family) PremiumDetails() (PremiumDetails, bool) {
	state, ok := f.snapshot.Account.Get()
	if !ok || state.Premium == nil {
		return PremiumDetails{}, false
	}
	p := state.Premium
	return PremiumDetails{
		PremiumMember: p.FWPremiumMemberSubscriber,
		FamilyQuota:   p.FamilyQuota,
		PremiumFeatures: PremiumFeatures{
			GeoFencing:     p.GeoFencingActivated,
			AudioAvailable: p.Audio,
			VideoAvailable: p.VideoAvailable,
		},
	}, true
}

// FamilyList returns the raw famlistfamily section.
func (f *Family) FamilyList() (json.RawMessage, bool) {
	return f.snapshot.FamilyList.Get()
}

// Invites returns the raw incoming-invite section.
func (f *Family) Invites() (json.RawMessage, bool) {
	return f.snapshot.Invites.Get()
}

// CreateCalendarEvent delegates to the calendar service.
func (f *Family) CreateCalendarEvent(ctx context.Context, event EventFields) (CalendarEvent, error) {
	if f.calendar == nil {
		return CalendarEvent{}, fmt.Errorf("calendar service is nil")
	}
	return f.calendar.CreateEvent(ctx, f.session, event)
}

// DeleteCalendarEvent delegates to the calendar service.
func (f *Family) DeleteCalendarEvent(ctx context.Context, eventID string) (bool, error) {
	if f.calendar == nil {
		return false, fmt.Errorf("calendar service is nil")
	}
	return f.calendar.DeleteEvent(ctx, f.session, eventID)
}

// CalendarEvents syncs the family calendar.
func (f *Family) CalendarEvents(ctx context.Context) ([]CalendarEvent, error) {
	if f.calendar == nil {
		return nil, fmt.Errorf("calendar service is nil")
	}
	return f.calendar.CalendarEvents(ctx, f.session, f.CalendarKey())
}

func memberFromRaw(m RawMember) Member {
	member := Member{
		FirstName:       m.FirstName,
		Role:            m.Role,
		LastLoginDate:   m.LastLoginDate,
		JoinDate:        m.JoinDate,
		ProfileFamilyID: m.ProfileFamilyID,
		PictureURI:      m.PictureURI,
		TimeZone:        m.TimeZone,
		Right:           m.Right,
		Devices:         devicesFromRaw(m.Devices),
		Identifiers:     make([]Identifier, 0, len(m.Identifiers)),
		Medias:          mediasFromRaw(m.Medias),
		Rights:          rightsFromRaw(m.Rights),
	}
	var haveEmail bool
	for _, id := range m.Identifiers {
		if !haveEmail && id.Type == "Email" {
			member.Email = id.Value
			haveEmail = true
		}
		member.Identifiers = append(member.Identifiers, Identifier{
			Type:      id.Type,
			Value:     id.Value,
			Validated: id.Validated == "true",
		})
	}
	return member
}

func profileFromRaw(p RawProfile) Profile {
	profile := Profile{
		FirstName:  p.FirstName,
		TimeZone:   p.TimeZone,
		AccountID:  p.AccountID,
		PictureURI: p.PictureURI,
		Medias:     mediasFromRaw(p.Medias),
	}
	if len(p.Devices) > 0 {
		profile.Email = p.Devices[0].Value
	}
	return profile
}

func devicesFromRaw(raw []RawDevice) []Device {
	devices := make([]Device, 0, len(raw))
	for _, d := range raw {
		devices = append(devices, Device(d))
	}
	return devices
}

func mediasFromRaw(raw []RawMedia) []Media {
	medias := make([]Media, 0, len(raw))
	for _, m := range raw {
		r := rightsFromRaw(m.Rights)
		medias = append(medias, Media{
			PictureURL: m.PictureURL,
			CanUpdate:  r.CanUpdate,
			CanDelete:  r.CanDelete,
		})
	}
	return medias
}

func rightsFromRaw(r *RawRights) Rights {
	if r == nil {
		return Rights{}
	}
	return Rights{
		CanUpdate: r.CanUpdate != nil && bool(*r.CanUpdate),
		CanDelete: r.CanDelete != nil && bool(*r.CanDelete),
	}
}
