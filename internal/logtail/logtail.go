package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/go-logfmt/logfmt"
	"github.com/sirupsen/logrus"
)

// Entry is one parsed logrus record.
type Entry struct {
	Time    time.Time
	Level   logrus.Level
	Message string
	Fields  map[string]string
	Raw     string
}

// Keys returns the field names in sorted order.
func (e Entry) Keys() []string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Read returns at most maxLines entries from the end of the log file at path.
// A missing file yields no entries.
func Read(path string, maxLines int) ([]Entry, error) {
	lines, err := tail(path, maxLines)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		entries = append(entries, Parse(line))
	}
	return entries, nil
}

// Parse decodes a line written by logrus' JSON or text formatter. Lines in
// neither shape come back with the whole line as Message at info level.
func Parse(line string) Entry {
	entry := Entry{Level: logrus.InfoLevel, Raw: line, Fields: map[string]string{}}
	trimmed := strings.TrimSpace(line)
	var ok bool
	if strings.HasPrefix(trimmed, "{") {
		ok = parseJSON(trimmed, &entry)
	} else {
		ok = parseLogfmt(trimmed, &entry)
	}
	if ok {
		return entry
	}
	return Entry{Level: logrus.InfoLevel, Message: trimmed, Raw: line, Fields: map[string]string{}}
}

func parseJSON(line string, entry *Entry) bool {
	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return false
	}
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			entry.set(k, val)
		default:
			data, _ := json.Marshal(val)
			entry.set(k, string(data))
		}
	}
	return true
}

func (e *Entry) set(key, value string) {
	switch key {
	case logrus.FieldKeyTime:
		if t, err := time.Parse(time.RFC3339, value); err == nil {
			e.Time = t
			return
		}
	case logrus.FieldKeyLevel:
		if lvl, err := logrus.ParseLevel(value); err == nil {
			e.Level = lvl
			return
		}
	case logrus.FieldKeyMsg:
		e.Message = value
		return
	}
	e.Fields[key] = value
}

// parseLogfmt reads one text formatter record. A record needs a level or msg
// key to count; anything else is a plain line.
func parseLogfmt(line string, entry *Entry) bool {
	dec := logfmt.NewDecoder(strings.NewReader(line))
	if !dec.ScanRecord() {
		return false
	}
	var known bool
	pairs := map[string]string{}
	for dec.ScanKeyval() {
		key := string(dec.Key())
		if key == logrus.FieldKeyLevel || key == logrus.FieldKeyMsg {
			known = true
		}
		pairs[key] = string(dec.Value())
	}
	if dec.Err() != nil || !known {
		return false
	}
	for k, v := range pairs {
		entry.set(k, v)
	}
	return true
}

// tail returns at most maxLines from the end of the file at path.
func tail(path string, maxLines int) ([]string, error) {
	if maxLines <= 0 || path == "" {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	ring := make([]string, maxLines)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}
