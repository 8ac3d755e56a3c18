package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/meltforce/periodix/internal/catalog"
	"github.com/meltforce/periodix/internal/config"
	"github.com/meltforce/periodix/internal/ingest/alpha"
	"github.com/meltforce/periodix/internal/logging"
	periodixmcp "github.com/meltforce/periodix/internal/mcp"
	"github.com/meltforce/periodix/internal/metrics"
	"github.com/meltforce/periodix/internal/phase"
	"github.com/meltforce/periodix/internal/program"
	"github.com/meltforce/periodix/internal/server"
	"github.com/meltforce/periodix/internal/storage"
	"github.com/meltforce/periodix/internal/storage/sqlite"
	"github.com/meltforce/periodix/internal/store"
	"github.com/meltforce/periodix/internal/volume"
	"github.com/meltforce/periodix/internal/workout"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	catalogPath := flag.String("catalog", "", "exercise catalog YAML (defaults to the built-in catalog)")
	flag.Parse()

	boot := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		boot.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log, logCloser := logging.New(cfg.Log)
	defer logCloser.Close()
	log.Info("Periodix starting", "version", Version, "driver", cfg.Database.Driver)

	if err := run(cfg, *migrateOnly, *catalogPath, log); err != nil {
		log.Error("server failed", "error", err)
		logCloser.Close()
		os.Exit(1)
	}
}

func run(cfg *config.Config, migrateOnly bool, catalogPath string, log *slog.Logger) error {
	ctx := context.Background()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	s, closeStore, err := openStore(ctx, cfg.Database, migrateOnly, reg, log)
	if err != nil {
		return err
	}
	defer closeStore()
	if migrateOnly {
		log.Info("migrate-only: exiting")
		return nil
	}

	if err := syncCatalog(ctx, s, catalogPath, log); err != nil {
		return err
	}

	registry, err := cfg.Volume.Registry()
	if err != nil {
		return err
	}
	opts, err := cfg.Volume.Options()
	if err != nil {
		return err
	}

	m := metrics.NewManager("periodix", "server", reg)
	agg := volume.NewAggregator(s, registry, opts, log)
	programs := program.NewService(s, agg, m, log)

	deps := server.Deps{
		Store:    s,
		Volume:   agg,
		Programs: programs,
		Phases:   phase.NewEngine(s, m, log),
		Workouts: workout.NewService(s, opts.Location, log),
		Alpha:    alpha.NewProvider(s, log),
		Metrics:  m,
		APIKey:   cfg.Auth.APIKey,
		Log:      log,
	}
	if cfg.Metrics.On() {
		deps.Gatherer = reg
	}
	srv := server.New(deps)

	mcpSrv := periodixmcp.New(periodixmcp.NewLocal(agg, programs), Version, log)
	srv.SetMCP(mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			return periodixmcp.WithUserID(ctx, server.UserID(r))
		}),
	))

	// Start server: tsnet or plain HTTP
	var listener net.Listener
	if cfg.Tailscale.Enabled {
		tsServer := &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			return fmt.Errorf("tsnet start: %w", err)
		}
		defer tsServer.Close()

		lc, err := tsServer.LocalClient()
		if err != nil {
			return fmt.Errorf("tsnet local client: %w", err)
		}
		srv.SetTailscale(lc)

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			return fmt.Errorf("tsnet listen: %w", err)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("listen %s: %w", addr, err)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv, ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.Info("shutting down", "signal", sig)
	case err := <-serveErr:
		return fmt.Errorf("serving: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
	return nil
}

// openStore connects the configured backend. Postgres migrations run on
// every start; the sqlite schema is applied by Open.
func openStore(ctx context.Context, cfg config.DatabaseConfig, migrateOnly bool, reg prometheus.Registerer, log *slog.Logger) (store.Store, func(), error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		log.Info("database opened", "path", cfg.Path)
		return db, func() { db.Close() }, nil
	default:
		dsn := cfg.DSN()
		if err := storage.RunMigrations(dsn); err != nil {
			return nil, nil, fmt.Errorf("migration failed: %w", err)
		}
		log.Info("migrations applied")
		if migrateOnly {
			return nil, func() {}, nil
		}

		db, err := storage.New(ctx, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting database: %w", err)
		}
		reg.MustRegister(pgxpoolprometheus.NewCollector(db.Pool, map[string]string{"db_name": cfg.Name}))
		log.Info("database connected")
		return db, db.Close, nil
	}
}

func syncCatalog(ctx context.Context, s store.Store, path string, log *slog.Logger) error {
	exercises, err := catalog.Builtin()
	if path != "" {
		var data []byte
		data, err = os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading catalog: %w", err)
		}
		exercises, err = catalog.Parse(data)
	}
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}
	n, err := catalog.Sync(ctx, s, exercises)
	if err != nil {
		return fmt.Errorf("syncing catalog: %w", err)
	}
	log.Info("exercise catalog synced", "exercises", n)
	return nil
}
