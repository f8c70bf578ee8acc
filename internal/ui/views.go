package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/five82/famwall/internal/familywall"
	"github.com/five82/famwall/internal/logtail"
)

const notAvailable = "not available"

var accountSections = []string{"Overview", "Settings", "Premium", "Cover media"}

// rows returns the list labels of the current view.
func (m Model) rows() []string {
	return m.rowsFor(m.currentView)
}

func (m Model) rowsFor(v View) []string {
	fam := m.snapshot.Family
	switch v {
	case ViewMembers:
		if fam == nil {
			return nil
		}
		members := fam.Members()
		out := make([]string, 0, len(members))
		for _, mem := range members {
			out = append(out, padRight(mem.FirstName, 14)+" "+mem.Role)
		}
		return out

	case ViewEvents:
		out := make([]string, 0, len(m.snapshot.Events))
		for _, e := range m.snapshot.Events {
			out = append(out, formatWhen(e.ParsedStart(), e.StartDate)+"  "+e.Text)
		}
		return out

	case ViewMessages:
		if fam == nil {
			return nil
		}
		threads, _ := fam.Messages()
		out := make([]string, 0, len(threads))
		for _, t := range threads {
			label := threadLabel(t)
			if t.UnreadCount > 0 {
				label += fmt.Sprintf(" (%d)", t.UnreadCount)
			}
			out = append(out, label)
		}
		return out

	case ViewAccount:
		return accountSections

	case ViewLog:
		out := make([]string, 0, len(m.logs))
		for _, e := range m.logs {
			out = append(out, logLabel(e))
		}
		return out
	}
	return nil
}

func logLabel(e logtail.Entry) string {
	stamp := "--:--:--"
	if !e.Time.IsZero() {
		stamp = e.Time.Local().Format("15:04:05")
	}
	return stamp + " " + padRight(levelTag(e.Level), 5) + " " + e.Message
}

func levelTag(level logrus.Level) string {
	switch level {
	case logrus.WarnLevel:
		return "WARN"
	case logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel:
		return "ERROR"
	default:
		return strings.ToUpper(level.String())
	}
}

// levelStyle colors a log row by severity.
func levelStyle(styles Styles, level logrus.Level) lipgloss.Style {
	switch {
	case level <= logrus.ErrorLevel:
		return styles.DangerText
	case level == logrus.WarnLevel:
		return styles.WarningText
	case level == logrus.InfoLevel:
		return styles.Text
	default:
		return styles.FaintText
	}
}

func threadLabel(t familywall.Thread) string {
	names := make([]string, 0, len(t.Participants))
	for _, p := range t.Participants {
		if p.FirstName != "" {
			names = append(names, p.FirstName)
		}
	}
	if len(names) == 0 {
		return orDash(t.ThreadID)
	}
	return strings.Join(names, ", ")
}

func (m *Model) resizeDetail() {
	_, detailWidth, height := m.paneSizes()
	m.detail.Width = max(detailWidth-4, 0)
	m.detail.Height = max(height-2, 0)
}

// updateDetail re-renders the detail pane for the current selection.
func (m *Model) updateDetail(resetScroll bool) {
	m.detail.SetContent(m.detailContent())
	if resetScroll {
		m.detail.GotoTop()
	}
}

// paneSizes returns the list width, detail width and pane height.
func (m Model) paneSizes() (int, int, int) {
	height := max(m.height-2, 3)
	listWidth := min(max(m.width/3, 24), 48)
	if listWidth > m.width {
		listWidth = m.width
	}
	return listWidth, max(m.width-listWidth, 0), height
}

// renderBody renders the list pane next to the detail pane.
func (m Model) renderBody() string {
	styles := m.theme.Styles()
	listWidth, detailWidth, height := m.paneSizes()
	inner := height - 2

	list := m.renderList(listWidth-4, inner)
	left := styles.Focused.Width(listWidth - 2).Height(inner).Padding(0, 1).Render(list)
	right := styles.Pane.Width(max(detailWidth-2, 0)).Height(inner).Padding(0, 1).Render(m.detail.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

// renderList renders the visible window of rows around the selection.
func (m Model) renderList(width, height int) string {
	styles := m.theme.Styles()
	rows := m.rows()
	if len(rows) == 0 {
		return styles.FaintText.Render(m.emptyMessage())
	}

	sel := m.selected[m.currentView]
	start := 0
	if height > 0 && sel >= height {
		start = sel - height + 1
	}
	end := len(rows)
	if height > 0 {
		end = min(start+height, len(rows))
	}

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		text := padRight(truncate(rows[i], width), width)
		switch {
		case i == sel:
			lines = append(lines, styles.Selected.Render(text))
		case m.currentView == ViewLog && i < len(m.logs):
			lines = append(lines, levelStyle(styles, m.logs[i].Level).Render(text))
		default:
			lines = append(lines, styles.Text.Render(text))
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) emptyMessage() string {
	if m.currentView == ViewLog {
		if m.logPath == "" {
			return "Start with --log-file to follow the log here"
		}
		return "No log entries yet"
	}
	if !m.snapshot.HasFamily() {
		if m.snapshot.LastError != nil {
			return "FamilyWall unavailable"
		}
		return "Waiting for FamilyWall data..."
	}
	switch m.currentView {
	case ViewEvents:
		return "No calendar events"
	case ViewMessages:
		if _, ok := m.snapshot.Family.Messages(); !ok {
			return "Messages " + notAvailable
		}
		return "No message threads"
	}
	return "Nothing to show"
}

// detailContent renders the detail text of the selected row.
func (m Model) detailContent() string {
	fam := m.snapshot.Family
	if fam == nil && m.currentView != ViewAccount && m.currentView != ViewLog {
		return ""
	}
	sel := m.selected[m.currentView]
	d := newDetailWriter(m.theme.Styles())

	switch m.currentView {
	case ViewMembers:
		members := fam.Members()
		if sel < len(members) {
			d.member(members[sel])
		}
	case ViewEvents:
		if sel < len(m.snapshot.Events) {
			d.event(m.snapshot.Events[sel])
		}
	case ViewMessages:
		threads, _ := fam.Messages()
		if sel < len(threads) {
			d.thread(threads[sel])
		}
	case ViewAccount:
		m.accountDetail(d, sel)
	case ViewLog:
		if sel < len(m.logs) {
			d.logEntry(m.logs[sel])
		}
	}
	return d.String()
}

func (m Model) accountDetail(d *detailWriter, sel int) {
	snap := m.snapshot
	fam := snap.Family
	switch sel {
	case 0:
		d.title("Overview")
		d.field("Account", snap.Account)
		if fam == nil {
			d.field("Family", notAvailable)
			return
		}
		d.field("Family ID", fam.ID())
		d.field("Calendar", fam.CalendarKey())
		d.field("Members", fmt.Sprintf("%d", len(fam.Members())))
		d.field("Events", fmt.Sprintf("%d", len(snap.Events)))
		if !snap.LastUpdated.IsZero() {
			d.field("Updated", snap.LastUpdated.Format("2006-01-02 15:04:05"))
		}
		if snap.LastError != nil {
			d.field("Last error", snap.LastError.Error())
		}
	case 1:
		d.title("Settings")
		settings, ok := familySettings(fam)
		if !ok {
			d.line(notAvailable)
			return
		}
		d.field("Reminder", settings.ReminderValue)
		d.field("Geolocation", settings.GeolocSharing)
		d.field("Week starts", settings.CalendarFirstDayOfWeek)
	case 2:
		d.title("Premium")
		if fam == nil {
			d.line(notAvailable)
			return
		}
		premium, ok := fam.PremiumDetails()
		if !ok {
			d.line(notAvailable)
			return
		}
		d.field("Premium member", yesNo(premium.PremiumMember))
		d.field("Family quota", fmt.Sprintf("%d", premium.FamilyQuota))
		d.field("Geofencing", yesNo(premium.PremiumFeatures.GeoFencing))
		d.field("Audio", yesNo(premium.PremiumFeatures.AudioAvailable))
		d.field("Video", yesNo(premium.PremiumFeatures.VideoAvailable))
	case 3:
		d.title("Cover media")
		if fam == nil || len(fam.Media()) == 0 {
			d.line("none")
			return
		}
		for _, media := range fam.Media() {
			d.line(media.PictureURL)
			d.field("  Resolution", media.Resolution)
			d.field("  Type", media.MimeType)
			d.field("  Created", media.CreationDate)
		}
	}
}

func familySettings(fam *familywall.Family) (familywall.FamilySettings, bool) {
	if fam == nil {
		return familywall.FamilySettings{}, false
	}
	return fam.Settings()
}

// detailWriter accumulates styled label/value lines.
type detailWriter struct {
	b      strings.Builder
	styles Styles
}

func newDetailWriter(styles Styles) *detailWriter {
	return &detailWriter{styles: styles}
}

func (d *detailWriter) title(text string) {
	if d.b.Len() > 0 {
		d.b.WriteString("\n")
	}
	d.b.WriteString(d.styles.AccentText.Bold(true).Render(text))
	d.b.WriteString("\n")
}

func (d *detailWriter) field(label, value string) {
	d.b.WriteString(d.styles.MutedText.Render(padRight(label, 16)))
	d.b.WriteString(d.styles.Text.Render(orDash(value)))
	d.b.WriteString("\n")
}

func (d *detailWriter) line(text string) {
	d.b.WriteString(d.styles.Text.Render(text))
	d.b.WriteString("\n")
}

func (d *detailWriter) String() string {
	return strings.TrimRight(d.b.String(), "\n")
}

func (d *detailWriter) member(mem familywall.Member) {
	d.title(mem.FirstName)
	d.b.WriteString(d.styles.RoleStyle(mem.Role).Render(orDash(mem.Role)))
	d.b.WriteString("\n")
	d.field("Email", mem.Email)
	d.field("Right", mem.Right)
	d.field("Joined", mem.JoinDate)
	d.field("Last login", mem.LastLoginDate)
	d.field("Time zone", mem.TimeZone)
	d.field("Profile", mem.ProfileFamilyID)
	d.field("Can update", yesNo(mem.Rights.CanUpdate))
	d.field("Can delete", yesNo(mem.Rights.CanDelete))

	if len(mem.Identifiers) > 0 {
		d.title("Identifiers")
		for _, id := range mem.Identifiers {
			mark := d.styles.FaintText.Render("unverified")
			if id.Validated {
				mark = d.styles.SuccessText.Render("verified")
			}
			d.b.WriteString(padRight(id.Type, 10) + " " + id.Value + " " + mark + "\n")
		}
	}
	if len(mem.Devices) > 0 {
		d.title("Devices")
		for _, dev := range mem.Devices {
			d.field(dev.DeviceType, dev.Value)
		}
	}
	if len(mem.Medias) > 0 {
		d.title("Pictures")
		for _, media := range mem.Medias {
			d.line(media.PictureURL)
		}
	}
}

func (d *detailWriter) event(e familywall.CalendarEvent) {
	d.title(orDash(e.Text))
	d.field("Starts", formatWhen(e.ParsedStart(), e.StartDate))
	d.field("Ends", formatWhen(e.ParsedEnd(), e.EndDate))
	d.field("Where", e.Where)
	d.field("Event ID", e.EventID)
	if strings.TrimSpace(e.Description) != "" {
		d.title("Description")
		d.line(e.Description)
	}
}

func (d *detailWriter) thread(t familywall.Thread) {
	d.title(threadLabel(t))
	d.field("Thread ID", t.ThreadID)
	d.field("Messages", fmt.Sprintf("%d", t.MessageCount))
	d.field("Unread", fmt.Sprintf("%d", t.UnreadCount))
	if len(t.Participants) > 0 {
		d.title("Participants")
		for _, p := range t.Participants {
			d.field(orDash(p.FirstName), "last read "+orDash(p.LastReadMessageDate))
		}
	}
}

func (d *detailWriter) logEntry(e logtail.Entry) {
	d.title(levelTag(e.Level))
	if !e.Time.IsZero() {
		d.field("Time", e.Time.Local().Format("2006-01-02 15:04:05"))
	}
	d.b.WriteString(levelStyle(d.styles, e.Level).Render(e.Message))
	d.b.WriteString("\n")
	if keys := e.Keys(); len(keys) > 0 {
		d.title("Fields")
		for _, k := range keys {
			d.field(k, e.Fields[k])
		}
	}
}
