package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/five82/famwall/internal/familywall"
	"github.com/five82/famwall/internal/output"
	"github.com/five82/famwall/internal/state"
)

func newEventsCmd(c *cli) *cobra.Command {
	events := &cobra.Command{
		Use:   "events",
		Short: "List, create and delete calendar events",
	}
	events.AddCommand(newEventsListCmd(c), newEventsCreateCmd(c), newEventsDeleteCmd(c))
	return events
}

func newEventsListCmd(c *cli) *cobra.Command {
	var icsPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the family calendar",
		Long: `Sync the family calendar and list its events ordered by start.

With --ics the events are written as an iCalendar feed instead; use "-" for
standard output.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			family, err := c.family(cmd.Context())
			if err != nil {
				return err
			}
			events, err := family.CalendarEvents(cmd.Context())
			if err != nil {
				return fmt.Errorf("load calendar: %w", err)
			}
			events = state.SortedEvents(events)

			if icsPath != "" {
				return writeICS(cmd.OutOrStdout(), icsPath, family.CalendarKey(), events)
			}
			if events == nil {
				events = []familywall.CalendarEvent{}
			}
			return c.emit(cmd.OutOrStdout(), events, true, func(w io.Writer) { renderEvents(w, events) })
		},
	}
	cmd.Flags().StringVar(&icsPath, "ics", "", "Write an iCalendar file to this path")
	return cmd
}

func writeICS(stdout io.Writer, path, name string, events []familywall.CalendarEvent) error {
	if path == "-" {
		return output.WriteICS(stdout, name, events)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create ics file: %w", err)
	}
	if err := output.WriteICS(f, name, events); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close ics file: %w", err)
	}
	logrus.WithFields(logrus.Fields{"path": path, "events": len(events)}).Infoln("Wrote calendar")
	return nil
}

func newEventsCreateCmd(c *cli) *cobra.Command {
	var (
		event familywall.EventFields
		extra []string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a calendar event",
		Long: `Create a non-recurring calendar event.

Dates use the FamilyWall format, for example 2024-09-18T10:00:00. Any other
upstream field can be set with --field key=value.`,
		Example: `  famwall events create --text "Swimming" --start 2024-09-18T10:00:00 --end 2024-09-18T11:00:00 --where Pool`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fields, err := parseFields(extra)
			if err != nil {
				return err
			}
			if len(fields) > 0 {
				event.Extra = fields
			}

			family, err := c.family(cmd.Context())
			if err != nil {
				return err
			}
			created, err := family.CreateCalendarEvent(cmd.Context(), event)
			if err != nil {
				return fmt.Errorf("create event: %w", err)
			}
			return c.emit(cmd.OutOrStdout(), created, true, func(w io.Writer) { renderEvent(w, created) })
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&event.Text, "text", "", "Event title")
	flags.StringVar(&event.StartDate, "start", "", "Start date")
	flags.StringVar(&event.EndDate, "end", "", "End date")
	flags.StringVar(&event.Color, "color", "", "Event color, for example #3B82F6")
	flags.StringVar(&event.Where, "where", "", "Location")
	flags.StringVar(&event.Description, "description", "", "Description")
	flags.StringArrayVar(&extra, "field", nil, "Extra upstream field as key=value (repeatable)")
	_ = cmd.MarkFlagRequired("text")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

// deleteResult is the structured output of events delete.
type deleteResult struct {
	EventID string `json:"eventId"`
	Deleted bool   `json:"deleted"`
}

func newEventsDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <event-id>",
		Short: "Delete a calendar event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			if id == "" {
				return fmt.Errorf("event id is empty")
			}
			family, err := c.family(cmd.Context())
			if err != nil {
				return err
			}
			deleted, err := family.DeleteCalendarEvent(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("delete event: %w", err)
			}
			result := deleteResult{EventID: id, Deleted: deleted}
			if err := c.emit(cmd.OutOrStdout(), result, true, func(w io.Writer) {
				if deleted {
					fmt.Fprintln(w, successStyle.Render("Deleted event "+id))
				} else {
					fmt.Fprintln(w, warningStyle.Render("FamilyWall did not delete event "+id))
				}
			}); err != nil {
				return err
			}
			if !deleted {
				return fmt.Errorf("event %s was not deleted", id)
			}
			return nil
		},
	}
}
