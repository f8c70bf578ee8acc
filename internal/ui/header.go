package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// headerBar collects status segments drawn on one background. Every word and
// separator carries the background because styled text resets it at its end.
type headerBar struct {
	bg       lipgloss.Color
	segments []string
}

func newHeaderBar(color string) *headerBar {
	return &headerBar{bg: lipgloss.Color(color)}
}

func (h *headerBar) fill(text string) string {
	return lipgloss.NewStyle().Background(h.bg).Render(text)
}

func (h *headerBar) paint(text string, style lipgloss.Style) string {
	style = style.Background(h.bg)
	words := strings.Split(text, " ")
	for i, w := range words {
		if w != "" {
			words[i] = style.Render(w)
		}
	}
	return strings.Join(words, h.fill(" "))
}

// add appends one segment; empty text is skipped.
func (h *headerBar) add(text string, style lipgloss.Style) {
	if text != "" {
		h.segments = append(h.segments, h.paint(text, style))
	}
}

// stat appends a "label: value" segment.
func (h *headerBar) stat(label, value string, styles Styles) {
	h.segments = append(h.segments, h.paint(label+":", styles.MutedText)+h.fill(" ")+h.paint(value, styles.Text))
}

func (h *headerBar) render(header lipgloss.Style, width int) string {
	line := header.Render(strings.Join(h.segments, h.fill("  ")))
	return lipgloss.NewStyle().Background(h.bg).Width(width).Render(line)
}

// renderHeader renders the status bar.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bar := newHeaderBar(m.theme.Surface)
	snap := m.snapshot

	bar.add("famwall", styles.Logo)

	switch {
	case !snap.HasFamily() && snap.LastError != nil:
		bar.add("FamilyWall unavailable", styles.DangerText)
		bar.add("Retrying...", styles.WarningText.Bold(true))
	case !snap.HasFamily():
		bar.add("Loading family...", styles.WarningText.Bold(true))
	case snap.IsOffline():
		bar.add("● OFFLINE", styles.DangerText)
	default:
		bar.add("● ONLINE", styles.SuccessText)
	}

	bar.add(snap.Account, styles.MutedText)
	if snap.HasFamily() {
		bar.stat("Members", fmt.Sprintf("%d", len(snap.Family.Members())), styles)
		bar.stat("Events", fmt.Sprintf("%d", len(snap.Events)), styles)
	}
	if !snap.LastUpdated.IsZero() {
		bar.add("updated "+snap.LastUpdated.Format("15:04:05"), styles.FaintText)
	}
	if snap.HasFamily() && snap.LastError != nil {
		bar.add(truncate(snap.LastError.Error(), 60), styles.DangerText)
	}

	return bar.render(styles.Header, m.width)
}

// renderCommandBar renders the view tabs and the short key hints.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles()
	var tabs []string
	for v := View(0); v < viewCount; v++ {
		label := fmt.Sprintf("%d %s", v+1, v)
		if v == m.currentView {
			tabs = append(tabs, styles.Selected.Padding(0, 1).Render(label))
		} else {
			tabs = append(tabs, styles.MutedText.Padding(0, 1).Render(label))
		}
	}

	var hints []string
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		hints = append(hints, styles.WarningText.Render(h.Key)+" "+styles.FaintText.Render(h.Desc))
	}
	return strings.Join(tabs, " ") + "   " + strings.Join(hints, "  ")
}
