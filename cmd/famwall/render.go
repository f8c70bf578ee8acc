package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/five82/famwall/internal/familywall"
)

const notAvailable = "not available"

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(labelStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		})
}

func field(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %s %s\n", labelStyle.Render(label+":"), orDash(value))
}

func renderMembers(w io.Writer, members []familywall.Member) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Members (%d)", len(members))))
	if len(members) == 0 {
		fmt.Fprintln(w, infoStyle.Render("No members"))
		return
	}
	t := newTable("Name", "Role", "Email", "Right", "Last login")
	for _, m := range members {
		t.Row(m.FirstName, orDash(m.Role), orDash(m.Email), orDash(m.Right), orDash(m.LastLoginDate))
	}
	fmt.Fprintln(w, t.String())
}

func renderMember(w io.Writer, m familywall.Member) {
	fmt.Fprintln(w, titleStyle.Render(m.FirstName))
	field(w, "Email", m.Email)
	field(w, "Role", m.Role)
	field(w, "Right", m.Right)
	field(w, "Joined", m.JoinDate)
	field(w, "Last login", m.LastLoginDate)
	field(w, "Profile family", m.ProfileFamilyID)
	field(w, "Time zone", m.TimeZone)
	field(w, "Picture", m.PictureURI)
	field(w, "Can update", yesNo(m.Rights.CanUpdate))
	field(w, "Can delete", yesNo(m.Rights.CanDelete))

	if len(m.Identifiers) > 0 {
		fmt.Fprintln(w, headerStyle.Render("Identifiers"))
		for _, id := range m.Identifiers {
			mark := warningStyle.Render("unverified")
			if id.Validated {
				mark = successStyle.Render("verified")
			}
			fmt.Fprintf(w, "  %s %s (%s)\n", id.Type, id.Value, mark)
		}
	}
	if len(m.Devices) > 0 {
		fmt.Fprintln(w, headerStyle.Render("Devices"))
		for _, d := range m.Devices {
			fmt.Fprintf(w, "  %s %s %s\n", orDash(d.DeviceType), orDash(d.DeviceID), d.Value)
		}
	}
	renderMedias(w, m.Medias)
}

func renderProfile(w io.Writer, p familywall.Profile) {
	fmt.Fprintln(w, titleStyle.Render(p.FirstName))
	field(w, "Account", p.AccountID)
	field(w, "Email", p.Email)
	field(w, "Time zone", p.TimeZone)
	field(w, "Picture", p.PictureURI)
	renderMedias(w, p.Medias)
}

func renderMedias(w io.Writer, medias []familywall.Media) {
	if len(medias) == 0 {
		return
	}
	fmt.Fprintln(w, headerStyle.Render("Media"))
	for _, m := range medias {
		fmt.Fprintf(w, "  %s (update %s, delete %s)\n", m.PictureURL, yesNo(m.CanUpdate), yesNo(m.CanDelete))
	}
}

func renderSettings(w io.Writer, s familywall.FamilySettings) {
	fmt.Fprintln(w, titleStyle.Render("Family settings"))
	field(w, "Family", s.FamilyID)
	field(w, "Default reminder", s.ReminderValue)
	field(w, "Location sharing", s.GeolocSharing)
	field(w, "First day of week", s.CalendarFirstDayOfWeek)
}

func renderMedia(w io.Writer, media []familywall.CoverMedia) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Cover media (%d)", len(media))))
	if len(media) == 0 {
		fmt.Fprintln(w, infoStyle.Render("No cover pictures"))
		return
	}
	t := newTable("Resolution", "Type", "Created", "URL")
	for _, m := range media {
		t.Row(m.Resolution, orDash(m.MimeType), orDash(m.CreationDate), m.PictureURL)
	}
	fmt.Fprintln(w, t.String())
}

func renderThreads(w io.Writer, threads []familywall.Thread) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Threads (%d)", len(threads))))
	if len(threads) == 0 {
		fmt.Fprintln(w, infoStyle.Render("No threads"))
		return
	}
	t := newTable("Thread", "Participants", "Messages", "Unread")
	for _, th := range threads {
		names := make([]string, 0, len(th.Participants))
		for _, p := range th.Participants {
			names = append(names, orDash(p.FirstName))
		}
		t.Row(th.ThreadID, strings.Join(names, ", "), strconv.Itoa(th.MessageCount), strconv.Itoa(th.UnreadCount))
	}
	fmt.Fprintln(w, t.String())
}

func renderPremium(w io.Writer, p familywall.PremiumDetails) {
	fmt.Fprintln(w, titleStyle.Render("Premium"))
	field(w, "Premium member", yesNo(p.PremiumMember))
	field(w, "Family quota", strconv.Itoa(p.FamilyQuota))
	field(w, "Geofencing", yesNo(p.PremiumFeatures.GeoFencing))
	field(w, "Audio", yesNo(p.PremiumFeatures.AudioAvailable))
	field(w, "Video", yesNo(p.PremiumFeatures.VideoAvailable))
}

func renderEvents(w io.Writer, events []familywall.CalendarEvent) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Events (%d)", len(events))))
	if len(events) == 0 {
		fmt.Fprintln(w, infoStyle.Render("No events"))
		return
	}
	t := newTable("Start", "End", "Event", "Where", "ID")
	for _, e := range events {
		t.Row(formatWhen(e.ParsedStart(), e.StartDate), formatWhen(e.ParsedEnd(), e.EndDate), e.Text, orDash(e.Where), e.EventID)
	}
	fmt.Fprintln(w, t.String())
}

func renderEvent(w io.Writer, e familywall.CalendarEvent) {
	fmt.Fprintln(w, successStyle.Render("Created "+orDash(e.Text)))
	field(w, "ID", e.EventID)
	field(w, "Start", formatWhen(e.ParsedStart(), e.StartDate))
	field(w, "End", formatWhen(e.ParsedEnd(), e.EndDate))
	field(w, "Where", e.Where)
	field(w, "Description", e.Description)
}

func orDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func formatWhen(parsed time.Time, raw string) string {
	if parsed.IsZero() {
		return orDash(raw)
	}
	return parsed.Format("2006-01-02 15:04")
}
