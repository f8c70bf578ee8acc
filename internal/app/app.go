package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/five82/famwall/internal/config"
	"github.com/five82/famwall/internal/familywall"
	"github.com/five82/famwall/internal/state"
	"github.com/five82/famwall/internal/ui"
)

// Options configure the dashboard.
type Options struct {
	ConfigPath string
	EnvFile    string // empty reads ./.env when present
	PollEvery  int    // seconds; zero uses the config value
	LogPath    string // empty discards logs while the dashboard runs
}

// Login logs in with the configured credentials and returns the client, the
// session and the account email. The dashboard and the CLI commands share it.
func Login(ctx context.Context, cfg config.Config) (*familywall.Client, familywall.Session, string, error) {
	email, password, err := cfg.Credentials()
	if err != nil {
		return nil, familywall.Session{}, "", err
	}
	client, err := familywall.NewClient(cfg.ClientOptions())
	if err != nil {
		return nil, familywall.Session{}, "", fmt.Errorf("init familywall client: %w", err)
	}
	sess, err := client.Login(ctx, email, password)
	if err != nil {
		return nil, familywall.Session{}, "", err
	}
	return client, sess, email, nil
}

// Run boots the dashboard until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	if err := loadEnv(opts.EnvFile); err != nil {
		return err
	}
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	client, sess, email, err := Login(ctx, cfg)
	if err != nil {
		return err
	}

	restore, err := redirectLogs(opts.LogPath)
	if err != nil {
		return err
	}
	defer restore()

	store := &state.Store{}
	store.SetAccount(email)

	interval := cfg.PollInterval
	if opts.PollEvery > 0 {
		interval = time.Duration(opts.PollEvery) * time.Second
	}

	// Do initial refresh to populate store before UI starts
	_ = refresh(ctx, store, client, sess)
	refreshNow := StartPoller(ctx, store, client, sess, interval)

	return ui.Run(ui.Options{
		Context:    ctx,
		Store:      store,
		Refresh:    refreshNow,
		ThemeName:  cfg.Theme,
		ConfigPath: cfg.Path,
		LogPath:    opts.LogPath,
	})
}

func loadEnv(path string) error {
	if path == "" {
		return config.LoadEnvFile()
	}
	return config.LoadEnvFile(path)
}

// redirectLogs keeps logrus from drawing over the alt screen.
func redirectLogs(path string) (func(), error) {
	prev := logrus.StandardLogger().Out
	if path == "" {
		logrus.SetOutput(io.Discard)
		return func() { logrus.SetOutput(prev) }, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	logrus.SetOutput(f)
	return func() {
		logrus.SetOutput(prev)
		_ = f.Close()
	}, nil
}
