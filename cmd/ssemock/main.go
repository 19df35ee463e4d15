// Command ssemock serves a fake login and event-stream backend for trying
// sselisten and other session clients locally.
package main

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/sseclient/bootstrap"
	"github.com/kbukum/sseclient/config"
	"github.com/kbukum/sseclient/logger"
	"github.com/kbukum/sseclient/ssetest"
	"github.com/kbukum/sseclient/util"
	"github.com/kbukum/sseclient/version"
)

type rootOptions struct {
	configFile string
	envFile    string
	debug      bool

	addr      string
	ping      time.Duration
	pingSet   bool
	anonymous bool
	users     []string
	hubs      []string

	// ready is called with the running server once it listens.
	ready func(*ssetest.Server)
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
		Short:        "Serve a fake login and SSE backend",
		Version:      version.Full(),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.pingSet = cmd.Flags().Changed("ping")
			return run(cmd.Context(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configFile, "config", "c", "", "config file")
	f.StringVar(&opts.envFile, "env-file", "", ".env file with SSEMOCK_* variables")
	f.BoolVarP(&opts.debug, "debug", "d", false, "debug logging")
	f.StringVar(&opts.addr, "addr", "", "listen address (default 127.0.0.1:8088)")
	f.DurationVar(&opts.ping, "ping", ssetest.DefaultPingInterval, "keepalive interval, 0 disables")
	f.BoolVar(&opts.anonymous, "anonymous", false, "accept streams without an access token")
	f.StringArrayVarP(&opts.users, "user", "u", nil, "account as email:password, repeatable")
	f.StringArrayVar(&opts.hubs, "hub", nil, "hub credential as id:token, repeatable")
	return cmd
}

// loadConfig reads file and environment configuration, then applies flags.
func loadConfig(opts *rootOptions) (*MockConfig, error) {
	var cfg MockConfig
	err := config.LoadConfig(serviceName, &cfg,
		config.WithConfigFile(opts.configFile),
		config.WithEnvFile(opts.envFile),
		config.WithEnvPrefix("SSEMOCK"),
	)
	if err != nil {
		return nil, err
	}
	cfg.Addr = util.Coalesce(opts.addr, cfg.Addr)
	if opts.pingSet {
		cfg.PingInterval = opts.ping
		cfg.NoPing = opts.ping <= 0
	}
	cfg.Anonymous = cfg.Anonymous || opts.anonymous
	cfg.Debug = cfg.Debug || opts.debug
	for _, v := range opts.users {
		u, err := parseUser(v)
		if err != nil {
			return nil, err
		}
		cfg.Users = append(cfg.Users, u)
	}
	for _, v := range opts.hubs {
		h, err := parseHub(v)
		if err != nil {
			return nil, err
		}
		cfg.Hubs = append(cfg.Hubs, h)
	}
	return &cfg, nil
}

func run(ctx context.Context, opts *rootOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	app, err := bootstrap.NewApp(cfg)
	if err != nil {
		return err
	}

	srvOpts, err := cfg.serverOptions()
	if err != nil {
		return err
	}
	srv := ssetest.New(append(srvOpts, ssetest.WithLogger(app.Logger))...)
	if err := cfg.seed(srv); err != nil {
		srv.Close()
		return err
	}
	if err := app.RegisterComponent(ssetest.NewComponent(srv, cfg.Addr)); err != nil {
		return err
	}

	app.OnReady(func(context.Context) error {
		app.Logger.Info("endpoints", logger.Fields(
			"login", srv.LoginURL(),
			"hubs", srv.HubLoginBaseURL(),
			"stream", srv.StreamURL(),
			"users", len(cfg.Users),
			"hubs_configured", len(cfg.Hubs),
		))
		if opts.ready != nil {
			opts.ready(srv)
		}
		return nil
	})
	return app.Run(ctx)
}
