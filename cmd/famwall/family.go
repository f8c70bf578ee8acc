package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newMembersCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "members [first-name]",
		Short: "List family members",
		Long: `List every family member in the order FamilyWall returns them.

With a first name, show the first member whose first name matches exactly.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			family, err := c.family(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(args) == 1 {
				member, ok := family.Member(args[0])
				return c.emit(w, member, ok, func(w io.Writer) { renderMember(w, member) })
			}
			members := family.Members()
			return c.emit(w, members, true, func(w io.Writer) { renderMembers(w, members) })
		},
	}
}

func newProfileCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "profile <account-id>",
		Short: "Show the profile of one account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			family, err := c.family(cmd.Context())
			if err != nil {
				return err
			}
			profile, ok := family.MemberProfile(args[0])
			return c.emit(cmd.OutOrStdout(), profile, ok, func(w io.Writer) { renderProfile(w, profile) })
		},
	}
}

func newSettingsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "settings",
		Short: "Show the family settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			family, err := c.family(cmd.Context())
			if err != nil {
				return err
			}
			settings, ok := family.Settings()
			return c.emit(cmd.OutOrStdout(), settings, ok, func(w io.Writer) { renderSettings(w, settings) })
		},
	}
}

func newMediaCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "media",
		Short: "List the family cover pictures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			family, err := c.family(cmd.Context())
			if err != nil {
				return err
			}
			media := family.Media()
			return c.emit(cmd.OutOrStdout(), media, true, func(w io.Writer) { renderMedia(w, media) })
		},
	}
}

func newMessagesCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "messages",
		Short: "List message threads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			family, err := c.family(cmd.Context())
			if err != nil {
				return err
			}
			threads, ok := family.Messages()
			return c.emit(cmd.OutOrStdout(), threads, ok, func(w io.Writer) { renderThreads(w, threads) })
		},
	}
}

func newPremiumCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "premium",
		Short: "Show the premium state of the account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			family, err := c.family(cmd.Context())
			if err != nil {
				return err
			}
			premium, ok := family.PremiumDetails()
			return c.emit(cmd.OutOrStdout(), premium, ok, func(w io.Writer) { renderPremium(w, premium) })
		},
	}
}

func newWebSocketCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "websocket",
		Short: "Print the push channel URL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, sess, err := c.session(cmd.Context())
			if err != nil {
				return err
			}
			url, ok, err := client.WebSocketURL(cmd.Context(), sess)
			if err != nil {
				return fmt.Errorf("fetch websocket url: %w", err)
			}
			return c.emit(cmd.OutOrStdout(), url, ok, func(w io.Writer) { fmt.Fprintln(w, url) })
		},
	}
}
