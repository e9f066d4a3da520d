package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/afero"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/modi-go/internal/core/domain"
	"github.com/yndnr/modi-go/internal/infra/buildinfo"
	"github.com/yndnr/modi-go/internal/infra/confloader"
	"github.com/yndnr/modi-go/internal/infra/shutdown"
	"github.com/yndnr/modi-go/internal/server/config"
	"github.com/yndnr/modi-go/internal/server/httpserver"
	"github.com/yndnr/modi-go/internal/server/kernel"
	"github.com/yndnr/modi-go/internal/telemetry/logger"
	"github.com/yndnr/modi-go/internal/telemetry/metric"
)

func main() {
	app := &cli.App{
		Name:    "modi-server",
		Usage:   "Boot the component kernel and serve its configuration",
		Version: buildinfo.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the server configuration file (YAML)",
			},
			&cli.StringSliceFlag{
				Name:    "define",
				Aliases: []string{"D"},
				Usage:   "System property `KEY=VALUE`, may be repeated",
			},
			&cli.StringFlag{
				Name:  "home",
				Usage: "Install root; used when the home system property is unset",
			},
			&cli.StringFlag{
				Name:  "http-addr",
				Usage: "Admin listen address, e.g. 127.0.0.1:9464",
			},
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "Log changes to property files",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, layers, err := loadConfig(c)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		Output:    os.Stdout,
		AddSource: cfg.Log.AddSource,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)

	info := buildinfo.Get()
	log.Info("starting modi-server",
		"version", info.Version,
		"commit", info.Commit,
		"config_layers", layers,
	)

	system, err := cfg.Kernel.SystemProperties(c.StringSlice("define"))
	if err != nil {
		return fmt.Errorf("system properties: %w", err)
	}

	metrics := metric.NewRegistry()
	fsys := afero.NewOsFs()

	params := cfg.Kernel.StartupParams(system)
	params.Fs = fsys
	params.Logger = log
	params.Metrics = metrics

	ctx := context.Background()
	k, err := kernel.Boot(ctx, params)
	if err != nil {
		if domain.IsInitializationError(err) {
			return cli.Exit(fmt.Sprintf("boot aborted: %v", err), 2)
		}
		return fmt.Errorf("boot: %w", err)
	}
	log = log.With("boot_id", k.BootID().String())

	metrics.MustRegister(metric.NewCollector(k.Properties().Snapshot))

	shutdownHandler := shutdown.NewHandler(30*time.Second, shutdown.WithLogger(log))

	// Hooks run in reverse: the listener stops before the catalog.
	shutdownHandler.OnShutdown("catalog", func(context.Context) error {
		k.Stopping()
		return nil
	})

	var ready func(bool)
	if cfg.HTTP.Addr != "" {
		mux, h := httpserver.NewRouter(&httpserver.RouterConfig{
			Kernel:         k,
			Metrics:        metrics.Handler(),
			MetricsPath:    cfg.HTTP.MetricsPath,
			Logger:         logger.Slog(log),
			AdminAllowList: cfg.HTTP.AdminAllowList,
			RateLimit:      cfg.HTTP.RateLimit,
		})
		ready = h.SetReady
		srv := httpserver.New(cfg.HTTP.Addr, mux)

		shutdownHandler.OnShutdown("http", func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		})

		addr, err := srv.Start()
		if err != nil {
			k.Stopping()
			return err
		}
		log.Info("admin listener started", "addr", addr.String())
		go func() {
			if err := <-srv.Err(); err != nil {
				log.Error("admin listener failed", "error", err)
				shutdownHandler.Trigger()
			}
		}()
	}

	if cfg.Watch.Enabled {
		w, err := confloader.NewWatcher(
			confloader.WithWatcherLogger(logger.Slog(log)),
			confloader.WithDebounce(cfg.Watch.Debounce),
		)
		if err != nil {
			return fmt.Errorf("init watcher: %w", err)
		}
		log.Info("watching property sources", "files", k.Watch(w))

		watchCtx, stopWatch := context.WithCancel(ctx)
		go func() {
			if err := w.Run(watchCtx); err != nil {
				log.Error("property source watcher stopped", "error", err)
			}
		}()
		shutdownHandler.OnShutdown("watcher", func(context.Context) error {
			stopWatch()
			return w.Close()
		})
	}

	registry := kernel.NewLoggingRegistry(fsys, log)
	if err := k.Starting(registry); err != nil {
		shutdownHandler.Trigger()
		_ = shutdownHandler.Wait()
		return err
	}
	if ready != nil {
		ready(true)
	}

	log.Info("server started, press Ctrl+C to stop",
		"bean_sources", len(registry.Names()),
	)
	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig layers defaults, the config file, MODI_CONF_ environment
// variables and finally command line flags.
func loadConfig(c *cli.Context) (*config.ServerConfig, []string, error) {
	flags := map[string]any{}
	if c.IsSet("home") {
		flags["kernel.home"] = c.String("home")
	}
	if c.IsSet("http-addr") {
		flags["http.addr"] = c.String("http-addr")
	}
	if c.IsSet("watch") {
		flags["watch.enabled"] = c.Bool("watch")
	}
	if c.IsSet("log-level") {
		flags["log.level"] = c.String("log-level")
	}

	cfg := config.Default()
	loader := confloader.NewLoader(
		confloader.WithConfigFile(c.String("config")),
		confloader.WithFlags(flags),
	)
	if err := loader.Load(cfg); err != nil {
		return nil, nil, err
	}
	if err := config.Verify(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, loader.Applied(), nil
}
