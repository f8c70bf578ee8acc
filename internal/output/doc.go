// Package output renders command results as JSON, YAML or iCalendar and
// evaluates jq expressions over them.
package output
