package main

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/five82/famwall/internal/app"
	"github.com/five82/famwall/internal/config"
	"github.com/five82/famwall/internal/familywall"
	"github.com/five82/famwall/internal/output"
)

// cli carries the flag values and the config loaded before any command runs.
type cli struct {
	configPath string
	envFile    string
	outputFlag string
	verbose    bool
	logFile    string
	pollEvery  int

	cfg    config.Config
	format output.Format
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "famwall",
		Short: "FamilyWall from the terminal",
		Long: `famwall signs in to FamilyWall with the credentials in FAMWALL_EMAIL and
FAMWALL_PASSWORD (or a .env file) and shows the family data.

Without a subcommand it opens the live dashboard. The subcommands print one
section and exit.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.preRunConfigE,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context(), app.Options{
				ConfigPath: c.configPath,
				EnvFile:    c.envFile,
				PollEvery:  c.pollEvery,
				LogPath:    c.logFile,
			})
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&c.configPath, "config", "c", "", "Path to the configuration file (default ~/.config/famwall/config.toml)")
	flags.StringVar(&c.envFile, "env-file", "", "Load credentials from this env file instead of ./.env")
	flags.StringVarP(&c.outputFlag, "output", "o", "text", "Output format: text, json or yaml")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "Enable debug logging")
	root.Flags().StringVar(&c.logFile, "log-file", "", "Write dashboard logs to this file")
	root.Flags().IntVar(&c.pollEvery, "poll", 0, "Dashboard refresh interval in seconds (default from config)")

	root.AddCommand(
		newMembersCmd(c),
		newProfileCmd(c),
		newSettingsCmd(c),
		newMediaCmd(c),
		newMessagesCmd(c),
		newPremiumCmd(c),
		newEventsCmd(c),
		newWebSocketCmd(c),
		newRawCmd(c),
	)
	return root
}

func (c *cli) preRunConfigE(cmd *cobra.Command, _ []string) error {
	format, err := output.ParseFormat(c.outputFlag)
	if err != nil {
		return err
	}
	c.format = format

	if c.envFile == "" {
		err = config.LoadEnvFile()
	} else {
		err = config.LoadEnvFile(c.envFile)
	}
	if err != nil {
		return err
	}

	c.cfg, err = config.Load(c.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	return configureLogging(c.cfg, c.verbose, cmd.ErrOrStderr())
}

// configureLogging applies the configured level and formatter to the
// standard logrus logger. verbose always selects debug.
func configureLogging(cfg config.Config, verbose bool, w io.Writer) error {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log_level %q: %w", cfg.LogLevel, err)
	}
	if verbose {
		level = logrus.DebugLevel
	}
	logrus.SetLevel(level)
	logrus.SetOutput(w)

	if cfg.LogFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}

// session logs in with the configured credentials.
func (c *cli) session(ctx context.Context) (*familywall.Client, familywall.Session, error) {
	client, sess, email, err := app.Login(ctx, c.cfg)
	if err != nil {
		return nil, familywall.Session{}, err
	}
	logrus.WithField("account", email).Debugln("Logged in")
	return client, sess, nil
}

// family logs in and fetches the family snapshot.
func (c *cli) family(ctx context.Context) (*familywall.Family, error) {
	client, sess, err := c.session(ctx)
	if err != nil {
		return nil, err
	}
	family, err := client.Family(ctx, sess)
	if err != nil {
		return nil, fmt.Errorf("load family: %w", err)
	}
	return family, nil
}

// emit prints v in the selected format. When ok is false the section is
// absent: text output says so and structured output prints null.
func (c *cli) emit(w io.Writer, v any, ok bool, text func(io.Writer)) error {
	if c.format != output.FormatText {
		if !ok {
			v = nil
		}
		return output.Write(w, c.format, v)
	}
	if !ok {
		_, err := fmt.Fprintln(w, infoStyle.Render(notAvailable))
		return err
	}
	text(w)
	return nil
}
