package ui

import (
	"strings"
	"time"
)

// truncate shortens a string to the given limit, adding ellipsis if needed.
func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

// padRight pads a string with spaces to the given width.
func padRight(s string, width int) string {
	r := []rune(s)
	if width <= 0 || len(r) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(r))
}

// orDash returns "-" for blank values.
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

// formatWhen renders an upstream date for display, keeping the raw text when
// it cannot be parsed.
func formatWhen(parsed time.Time, raw string) string {
	if parsed.IsZero() {
		return orDash(raw)
	}
	if parsed.Hour() == 0 && parsed.Minute() == 0 && parsed.Second() == 0 {
		return parsed.Format("Mon Jan 2 2006")
	}
	return parsed.Format("Mon Jan 2 15:04")
}
