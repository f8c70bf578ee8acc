package main

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/five82/famwall/internal/familywall"
	"github.com/five82/famwall/internal/output"
)

func newRawCmd(c *cli) *cobra.Command {
	var (
		method     string
		expression string
	)

	cmd := &cobra.Command{
		Use:   "raw <endpoint> [key=value...]",
		Short: "Call any API endpoint with the logged-in session",
		Long: `Send an authenticated form request to one FamilyWall endpoint and print the
JSON response. partnerScope=Family is added unless given.

--jq filters the response with a jq expression; every result is printed.`,
		Example: `  famwall raw accgetallfamily a01call=prfgetProfiles --jq '.a01.r.r | keys'`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := parseFields(args[1:])
			if err != nil {
				return err
			}
			if _, ok := fields["partnerScope"]; !ok {
				fields["partnerScope"] = "Family"
			}

			client, sess, err := c.session(cmd.Context())
			if err != nil {
				return err
			}
			raw, err := client.Do(cmd.Context(), sess, method, args[0], fields)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if expression == "" {
				return c.writeValue(w, raw)
			}
			results, err := output.Query(raw, expression)
			if err != nil {
				return err
			}
			for _, r := range results {
				if err := c.writeValue(w, r); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&method, "method", "X", http.MethodPost, "HTTP method")
	cmd.Flags().StringVar(&expression, "jq", "", "jq expression applied to the response")
	return cmd
}

// writeValue prints one raw result. Text output is indented JSON.
func (c *cli) writeValue(w io.Writer, v any) error {
	format := c.format
	if format == output.FormatText {
		format = output.FormatJSON
	}
	return output.Write(w, format, v)
}

// parseFields turns key=value arguments into request fields. Later keys win.
func parseFields(args []string) (familywall.Fields, error) {
	fields := make(familywall.Fields, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid field %q: want key=value", arg)
		}
		fields[key] = value
	}
	return fields, nil
}
