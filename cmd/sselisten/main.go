// Command sselisten logs in, holds an SSE session open, and prints every
// event it receives until interrupted or until the session gives up.
package main

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kbukum/sseclient/bootstrap"
	"github.com/kbukum/sseclient/config"
	"github.com/kbukum/sseclient/logger"
	"github.com/kbukum/sseclient/observability"
	"github.com/kbukum/sseclient/session"
	"github.com/kbukum/sseclient/util"
	"github.com/kbukum/sseclient/version"
)

// errGaveUp ends the run when the session reports it could not refresh
// its token.
var errGaveUp = errors.New("session gave up: could not refresh the access token")

type rootOptions struct {
	configFile string
	envFile    string
	jsonLines  bool
	debug      bool

	sseURL      string
	loginURL    string
	hubURL      string
	email       string
	password    string
	hash        string
	hubID       string
	hubToken    string
	accessToken string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:          serviceName,
		Short:        "Hold an SSE session open and print its events",
		Version:      version.Full(),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configFile, "config", "c", "", "config file (default: search ./cmd/sselisten/config.yml, ./sselisten.yml, ...)")
	f.StringVar(&opts.envFile, "env-file", "", ".env file with SSE_* variables")
	f.BoolVar(&opts.jsonLines, "json", false, "print raw JSON payloads, one per line")
	f.BoolVarP(&opts.debug, "debug", "d", false, "debug logging")
	f.StringVar(&opts.sseURL, "sse-url", "", "event stream URL")
	f.StringVar(&opts.loginURL, "login-url", "", "user login URL")
	f.StringVar(&opts.hubURL, "hub-url", "", "hub login base URL")
	f.StringVar(&opts.email, "email", "", "user email")
	f.StringVar(&opts.password, "password", "", "user password")
	f.StringVar(&opts.hash, "password-hash", "", "pre-hashed user password")
	f.StringVar(&opts.hubID, "hub-id", "", "hub id")
	f.StringVar(&opts.hubToken, "hub-token", "", "hub token")
	f.StringVar(&opts.accessToken, "token", "", "access token to use without logging in")
	return cmd
}

// loadConfig reads file and environment configuration, then applies flags.
func loadConfig(opts *rootOptions) (*ListenConfig, error) {
	var cfg ListenConfig
	err := config.LoadConfig(serviceName, &cfg,
		config.WithConfigFile(opts.configFile),
		config.WithEnvFile(opts.envFile),
		config.WithEnvPrefix("SSE"),
	)
	if err != nil {
		return nil, err
	}
	opts.apply(&cfg)
	return &cfg, nil
}

func (o *rootOptions) apply(cfg *ListenConfig) {
	cfg.Session.SSEURL = util.Coalesce(o.sseURL, cfg.Session.SSEURL)
	cfg.Session.LoginURL = util.Coalesce(o.loginURL, cfg.Session.LoginURL)
	cfg.Session.HubLoginBaseURL = util.Coalesce(o.hubURL, cfg.Session.HubLoginBaseURL)
	cfg.Auth.Email = util.Coalesce(o.email, cfg.Auth.Email)
	cfg.Auth.Password = util.Coalesce(o.password, cfg.Auth.Password)
	cfg.Auth.PasswordHash = util.Coalesce(o.hash, cfg.Auth.PasswordHash)
	cfg.Auth.HubID = util.Coalesce(o.hubID, cfg.Auth.HubID)
	cfg.Auth.HubToken = util.Coalesce(o.hubToken, cfg.Auth.HubToken)
	cfg.Auth.AccessToken = util.Coalesce(o.accessToken, cfg.Auth.AccessToken)
	cfg.Debug = cfg.Debug || o.debug
}

func run(ctx context.Context, opts *rootOptions, out io.Writer) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	app, err := bootstrap.NewApp(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	if cfg.Telemetry.Enabled() {
		tel := observability.NewComponent(cfg.Telemetry, app.Name, app.Version, cfg.Environment)
		if err := app.RegisterComponent(tel); err != nil {
			return err
		}
	}

	p := newPrinter(out, opts.jsonLines)
	onEvent := func(e session.Event) {
		p.print(e)
		if e.IsTerminal() {
			cancel(errGaveUp)
		}
	}
	s, err := session.New(cfg.Session,
		session.WithLogger(app.Logger.WithComponent("session")),
		session.WithMeter(observability.Meter(serviceName)),
	)
	if err != nil {
		return err
	}
	if err := app.RegisterComponent(session.NewComponent("", s, onEvent, cfg.Auth.Authenticator())); err != nil {
		return err
	}

	app.Logger.Info("listening", logger.Fields(
		"url", cfg.Session.SSEURL,
		"auth", cfg.Auth.Method(),
		"client_id", s.ClientID(),
	))
	if err := app.Run(ctx); err != nil {
		return err
	}
	if cause := context.Cause(ctx); errors.Is(cause, errGaveUp) {
		return cause
	}
	return nil
}
