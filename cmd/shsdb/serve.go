package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/subcommands"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/shsdb/reconciler/internal/api"
	"github.com/shsdb/reconciler/internal/commitlog"
	"github.com/shsdb/reconciler/internal/config"
	"github.com/shsdb/reconciler/internal/dashboard"
	"github.com/shsdb/reconciler/internal/ingestion"
	"github.com/shsdb/reconciler/internal/logger"
	"github.com/shsdb/reconciler/internal/metrics"
	"github.com/shsdb/reconciler/internal/natslog"
	"github.com/shsdb/reconciler/internal/reconciliation"
	"github.com/shsdb/reconciler/internal/repository"
)

const shutdownTimeout = 10 * time.Second

type serveCmd struct {
	port string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run the ingestion loops, the reconciliation engine and the HTTP API" }
func (*serveCmd) Usage() string {
	return `shsdb serve [-port <port>]

  Reads its configuration from the environment, an optional .env file and
  the YAML file named by SHSDB_CONFIG. Stops on SIGINT or SIGTERM.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.port, "port", "", "Listen port. Overrides PORT.")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if c.port != "" {
		cfg.Port = c.port
	}

	log := logger.InitLogger(cfg.LogLevel)
	if err := serve(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func openLog(ctx context.Context, cfg *config.Config, log *slog.Logger) (commitlog.Log, error) {
	switch cfg.CommitLog {
	case config.CommitLogSQLite:
		log.Info("opening commit log", "kind", cfg.CommitLog, "path", cfg.DBPath)
		return repository.Open(cfg.DBPath)
	case config.CommitLogNATS:
		log.Info("opening commit log", "kind", cfg.CommitLog, "url", cfg.NATSURL, "stream", cfg.NATSStream)
		return natslog.Connect(ctx, natslog.Config{URL: cfg.NATSURL, Stream: cfg.NATSStream}, log)
	case config.CommitLogMemory:
		log.Warn("using the in-memory commit log; nothing survives a restart")
		return commitlog.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown commit log %q", cfg.CommitLog)
	}
}

func serve(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	l, err := openLog(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open commit log: %w", err)
	}
	defer func() {
		if err := l.Close(); err != nil {
			log.Warn("close commit log", "error", err)
		}
	}()

	m := metrics.New()
	reports := ingestion.NewService(l, ingestion.Reports, m, log)
	csdb := ingestion.NewService(l, ingestion.References, m, log)
	engine := reconciliation.NewEngine(l, reconciliation.Config{
		TickInterval:       cfg.TickInterval,
		ReferenceRetention: cfg.ReferenceRetention,
	}, m, log)

	router := api.NewRouter(api.Deps{
		Reports:        reports,
		CSDB:           csdb,
		Dashboard:      dashboard.NewService(l, log),
		Engine:         engine,
		Metrics:        m,
		Logger:         log,
		MaxUploadBytes: cfg.MaxUploadBytes,
		UploadLimiter:  rate.NewLimiter(rate.Limit(cfg.IngestRatePerSec), cfg.IngestBurst),
	})
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return reports.Run(gctx) })
	g.Go(func() error { return csdb.Run(gctx) })
	g.Go(func() error { return engine.Run(gctx) })
	g.Go(func() error {
		log.Info("listening", "addr", srv.Addr, "commitlog", cfg.CommitLog)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
