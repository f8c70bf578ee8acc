// Package logtail reads the tail of famwall's own log file.
//
// The dashboard writes logrus output to a file while it owns the terminal.
// Read returns the last lines of that file parsed back into entries so the
// log view can color them by level and list their fields.
//
// Both logrus formatters are understood:
//
//	time="2024-09-18T10:00:00Z" level=warning msg="Session handshake call failed" endpoint=webset
//	{"endpoint":"webset","level":"warning","msg":"Session handshake call failed","time":"2024-09-18T10:00:00Z"}
//
// Read uses a ring buffer of maxLines, so memory stays bounded however large
// the file grows. A missing file yields no entries. Lines in neither format
// are kept with the whole line as the message.
package logtail
