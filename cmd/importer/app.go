package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dukerupert/billing-importer/internal"
	"github.com/dukerupert/billing-importer/internal/address"
	"github.com/dukerupert/billing-importer/internal/email"
	"github.com/dukerupert/billing-importer/internal/importer"
	"github.com/dukerupert/billing-importer/internal/platform"
	"github.com/dukerupert/billing-importer/internal/storage"
	"github.com/dukerupert/billing-importer/internal/telemetry"
)

// app holds the dependencies shared by every import command.
type app struct {
	cfg     *internal.Config
	logger  *slog.Logger
	client  *platform.Client
	metrics *telemetry.ImportMetrics
	store   storage.Storage
	mailer  email.Sender
	cleanup func()
}

type importFunc func(ctx context.Context, a *app, opts importer.Options) (*importer.Summary, error)

func newApp(ctx context.Context, stdin *os.File, stderr io.Writer) (*app, error) {
	cfg, err := loadConfig(stdin, stderr)
	if err != nil {
		return nil, fmt.Errorf("config initialization failed: %w", err)
	}

	logger := internal.NewLogger(stderr, cfg.Env, cfg.LogLevel)

	cleanup, err := telemetry.InitSentry(telemetry.SentryConfig{
		DSN:              cfg.Sentry.DSN,
		Enabled:          cfg.Sentry.Enabled,
		Environment:      cfg.Sentry.Environment,
		Release:          cfg.Sentry.Release,
		SampleRate:       cfg.Sentry.SampleRate,
		TracesSampleRate: cfg.Sentry.TracesSampleRate,
		Debug:            cfg.Sentry.Debug,
	}, logger)
	if err != nil {
		return nil, err
	}

	metrics := telemetry.NewImportMetrics("")

	client, err := platform.NewClient(platform.Config{
		BaseURL:    cfg.Platform.URI,
		Username:   cfg.Platform.Username,
		Password:   cfg.Platform.Password,
		HTTPClient: metrics.InstrumentClient(telemetry.NewHTTPClient(cfg.Platform.Timeout)),
		Logger:     logger,
	})
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("platform client initialization failed: %w", err)
	}

	store, err := storage.NewStorage(ctx, cfg.Archive)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("archive storage initialization failed: %w", err)
	}

	var mailer email.Sender
	if cfg.Report.Host != "" && len(cfg.Report.To) > 0 {
		mailer = email.NewSMTPSender(&email.SMTPConfig{
			Host:     cfg.Report.Host,
			Port:     int(cfg.Report.Port),
			Username: cfg.Report.Username,
			Password: cfg.Report.Password,
			From:     cfg.Report.From,
		}, logger)
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		client:  client,
		metrics: metrics,
		store:   store,
		mailer:  mailer,
		cleanup: cleanup,
	}, nil
}

// loadConfig reads the configuration, prompting for the password when it is
// missing and stdin is a terminal.
func loadConfig(stdin *os.File, stderr io.Writer) (*internal.Config, error) {
	cfg, err := internal.NewConfig()
	if !errors.Is(err, internal.ErrPasswordRequired) || stdin == nil || !term.IsTerminal(int(stdin.Fd())) {
		return cfg, err
	}

	fmt.Fprint(stderr, "Password: ")
	password, err := term.ReadPassword(int(stdin.Fd()))
	fmt.Fprintln(stderr)
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}

	if err := os.Setenv("PASSWORD", string(password)); err != nil {
		return nil, err
	}
	return internal.NewConfig()
}

// newResolver loads the country table and builds the address resolver.
func (a *app) newResolver(ctx context.Context) (*address.Resolver, error) {
	cache, err := address.NewReferenceCache(ctx, a.client, address.CacheConfig{
		Logger:   a.logger,
		Observer: a.metrics,
	})
	if err != nil {
		return nil, err
	}

	return address.NewResolver(a.client, cache, address.ResolverConfig{
		CountyCountry: a.cfg.Import.CountyCountry,
		Logger:        a.logger,
		Observer:      a.metrics,
	}), nil
}

// runImport wires the shared dependencies, runs one import and reports it.
func runImport(cmd *cobra.Command, kind, file string, fn importFunc) error {
	ctx := cmd.Context()

	stdin, _ := cmd.InOrStdin().(*os.File)
	a, err := newApp(ctx, stdin, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.cleanup()

	runID := uuid.NewString()
	opts := importer.Options{
		LogDir:   a.cfg.Import.LogDir,
		RunID:    runID,
		Logger:   a.logger,
		Observer: a.metrics,
	}

	summary, err := fn(ctx, a, opts)
	if summary != nil {
		printSummary(cmd.OutOrStdout(), summary)
	}
	if err != nil {
		telemetry.CaptureError(err, kind, runID, nil)
		a.pushMetrics(context.WithoutCancel(ctx), runID)
		return err
	}

	if a.store != nil {
		locations, err := importer.ArchiveLogs(ctx, a.store, summary)
		if err != nil {
			a.logger.Error("failed to archive run logs", "error", err)
			telemetry.CaptureError(err, kind, runID, nil)
		}
		for _, loc := range locations {
			fmt.Fprintf(cmd.OutOrStdout(), "Archived: %s\n", loc)
		}
	}

	a.sendReport(ctx, kind, file, summary)
	a.pushMetrics(ctx, runID)
	return nil
}

func (a *app) sendReport(ctx context.Context, kind, file string, s *importer.Summary) {
	if a.mailer == nil {
		return
	}

	msg, err := email.NewReportEmail(email.RunReport{
		Kind:       kind,
		RunID:      s.RunID,
		File:       file,
		Successes:  s.Successes,
		Failures:   s.Failures,
		FailureLog: s.FailureLog,
		SuccessLog: s.SuccessLog,
		Finished:   time.Now(),
	}, a.cfg.Report.To)
	if err == nil {
		_, err = a.mailer.Send(ctx, msg)
	}
	if err != nil {
		a.logger.Warn("run report not sent", "error", err)
	}
}

func (a *app) pushMetrics(ctx context.Context, runID string) {
	if a.cfg.Metrics.PushgatewayURL == "" {
		return
	}
	if err := a.metrics.Push(ctx, a.cfg.Metrics.PushgatewayURL, a.cfg.Metrics.Job, runID); err != nil {
		a.logger.Warn("metrics push failed", "error", err)
	}
}

func printSummary(w io.Writer, s *importer.Summary) {
	fmt.Fprintf(w, "Run %s: %d succeeded, %d failed\n", s.RunID, s.Successes, s.Failures)
	fmt.Fprintf(w, "Failures:  %s\n", s.FailureLog)
	fmt.Fprintf(w, "Successes: %s\n", s.SuccessLog)
}
