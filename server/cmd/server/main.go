package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/zkrest/zkrest/server/internal/api"
	"github.com/zkrest/zkrest/server/internal/auth"
	"github.com/zkrest/zkrest/server/internal/config"
	"github.com/zkrest/zkrest/server/internal/metrics"
	"github.com/zkrest/zkrest/server/internal/service"
	"github.com/zkrest/zkrest/server/internal/store"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "zkrest:", err)
		os.Exit(1)
	}
}

type flags struct {
	configPath string
	zookeeper  string
	listen     string
	logLevel   string
	backend    string
	validate   bool
}

func newRootCmd() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:           "zkrest",
		Short:         "HTTP/JSON gateway for ZooKeeper",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, overrides, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			if f.validate {
				fmt.Fprintln(cmd.OutOrStdout(), "configuration is valid")
				return nil
			}
			return run(cmd.Context(), cfg, f.configPath, overrides)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.configPath, "config", "c", "", "path to config file (optional)")
	fl.StringVar(&f.zookeeper, "zookeeper", config.DefaultServers, "ZooKeeper servers, e.g. zoo1:2181,zoo2:2181")
	fl.StringVar(&f.listen, "listen", config.DefaultListen, "address to listen on")
	fl.StringVar(&f.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	fl.StringVar(&f.backend, "backend", config.BackendZooKeeper, "store backend: zookeeper, memory")
	fl.BoolVar(&f.validate, "validate", false, "validate the configuration and exit")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "zkrest %s\n", Version)
		},
	})
	return cmd
}

// flagOverrides turns the explicitly set flags into config overrides. They
// are applied at startup and again on every reload.
func flagOverrides(cmd *cobra.Command, f flags) []config.Override {
	fl := cmd.Flags()
	var out []config.Override
	if fl.Changed("zookeeper") {
		servers := config.ParseServers(f.zookeeper)
		out = append(out, func(c *config.Config) { c.Store.Servers = servers })
	}
	if fl.Changed("listen") {
		out = append(out, func(c *config.Config) { c.Server.Listen = f.listen })
	}
	if fl.Changed("log-level") {
		out = append(out, func(c *config.Config) { c.Log.Level = f.logLevel })
	}
	if fl.Changed("backend") {
		out = append(out, func(c *config.Config) { c.Store.Backend = f.backend })
	}
	return out
}

// loadConfig reads the config file with the explicitly set flags on top.
func loadConfig(cmd *cobra.Command, f flags) (*config.Config, []config.Override, error) {
	overrides := flagOverrides(cmd, f)
	cfg, err := config.Load(f.configPath, overrides...)
	if err != nil {
		return nil, nil, err
	}
	return cfg, overrides, nil
}

// newDialer builds the store backend selected by cfg.
func newDialer(cfg config.StoreConfig, log *slog.Logger) (store.Dialer, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return store.NewMemory(), nil
	case config.BackendZooKeeper:
		return store.NewZooKeeper(store.ZooKeeperConfig{
			Servers:           cfg.Servers,
			ConnectionTimeout: cfg.ConnectionTimeout,
			SessionTimeout:    cfg.SessionTimeout,
			RetryTimes:        cfg.RetryTimes,
			RetryInterval:     cfg.RetryInterval,
		}, log)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

func run(ctx context.Context, cfg *config.Config, configPath string, overrides []config.Override) error {
	level := new(slog.LevelVar)
	level.Set(cfg.Log.SlogLevel())
	logger := newLogger(os.Stdout, cfg.Log.Format, level)
	slog.SetDefault(logger)

	slog.Info("zkrest starting",
		"listen", cfg.Server.Listen,
		"backend", cfg.Store.Backend,
		"servers", cfg.Store.Servers,
		"auth_mode", cfg.Server.Auth.Mode,
	)

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	dialer, err := newDialer(cfg.Store, logger)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}

	var m *metrics.Metrics
	if cfg.Server.Metrics {
		m = metrics.New()
	}
	svc := service.New(dialer, service.WithLogger(logger), service.WithMetrics(m))

	// The API key can change on config reload; the middleware reads it per request.
	var apiKey atomic.Pointer[string]
	key := cfg.Server.Auth.Key()
	apiKey.Store(&key)

	handler := api.New(svc, api.Options{
		Version: Version,
		Logger:  logger,
		Metrics: m,
		Middleware: auth.APIKey(
			cfg.Server.Auth.Mode,
			cfg.Server.Auth.EffectiveHeader(),
			func() string { return *apiKey.Load() },
		),
	})

	srv := &http.Server{
		Addr:              cfg.Server.Listen,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("HTTP server listening", "addr", cfg.Server.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if configPath != "" {
		g.Go(func() error {
			err := config.Watch(gctx, configPath, func(updated *config.Config) {
				reload(updated, level, &apiKey)
			}, overrides...)
			if err != nil {
				slog.Error("config watcher stopped", "err", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("zkrest shutting down")
		sctx, scancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer scancel()
		return srv.Shutdown(sctx)
	})

	return g.Wait()
}

// reload applies the settings that can change while the server runs.
func reload(cfg *config.Config, level *slog.LevelVar, apiKey *atomic.Pointer[string]) {
	level.Set(cfg.Log.SlogLevel())
	k := cfg.Server.Auth.Key()
	apiKey.Store(&k)
	slog.Info("config hot-reloaded", "log_level", cfg.Log.Level)
}
