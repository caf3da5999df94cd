package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"landscaper/internal/aspect"
	"landscaper/internal/batch"
	"landscaper/internal/config"
	"landscaper/internal/journal"
	"landscaper/internal/logging"
	"landscaper/internal/montage"
	"landscaper/internal/pairing"
	"landscaper/internal/preflight"
	"landscaper/internal/runlock"
	"landscaper/internal/services"
	"landscaper/internal/services/magick"
	"landscaper/internal/services/sevenzip"
)

const (
	modeAuto = "auto"
	modePair = "pair"
)

// errDeleteFailures marks a run that completed but could not delete every
// original it was asked to.
var errDeleteFailures = errors.New("one or more originals could not be deleted")

type runRequest struct {
	mode   string
	root   string
	first  string
	second string
	flags  *runFlags
}

type runEnv struct {
	store  *journal.Store
	walker *batch.Walker
}

func executeRun(cmd *cobra.Command, ctx *commandContext, req runRequest) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	settings, err := req.flags.resolve(cmd, cfg)
	if err != nil {
		return err
	}
	if !settings.Journal {
		cfg.Journal.Enabled = false
	}

	if err := checkPreconditions(cfg, req, settings); err != nil {
		return err
	}

	if req.mode == modeAuto {
		lock, err := runlock.Acquire(cfg.Paths.StateDir, req.root)
		if err != nil {
			return err
		}
		defer func() { _ = lock.Release() }()
	}

	baseLogger, logPath, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	runID := uuid.NewString()
	runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	runCtx = services.WithRunID(runCtx, runID)
	logger := logging.WithContext(runCtx, logging.NewComponentLogger(baseLogger, "cli"))

	env, err := buildRunEnv(cfg, settings, baseLogger)
	if err != nil {
		return err
	}
	if env.store != nil {
		defer env.store.Close()
	}

	if settings.DryRun && settings.Dispose != config.DispositionNone {
		logging.WarnWithContext(logger, "dry run still applies disposition", "dry_run_disposition",
			logging.String("disposition", settings.Dispose),
			logging.String(logging.FieldErrorHint, "drop -d/-z to keep originals during a dry run"),
			logging.String(logging.FieldImpact, "originals of matched pairs are removed even though no montage is written"),
		)
	}

	target := req.root
	if req.mode == modePair {
		target = filepath.Dir(req.first)
	}
	logger.Info("run started",
		logging.String(logging.FieldEventType, "run_started"),
		logging.String("mode", req.mode),
		logging.String("root", target),
		logging.String("disposition", settings.Dispose),
		logging.Bool("dry_run", settings.DryRun),
		logging.Bool("resize", settings.Resize),
		logging.String("log_file", logPath),
	)
	if env.store != nil {
		if err := env.store.BeginRun(runCtx, runID, target, req.mode, settings.encode()); err != nil {
			logging.WarnWithContext(logger, "journal unavailable", "journal_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the journal path or run with --no-journal"),
			)
		}
	}

	started := time.Now()
	var stats batch.Stats
	var runErr error
	switch req.mode {
	case modePair:
		stats, runErr = env.walker.ProcessPair(runCtx, req.first, req.second)
	default:
		stats, runErr = env.walker.ProcessTree(runCtx, req.root, settings.Recursive)
	}

	status := journal.RunCompleted
	switch {
	case errors.Is(runErr, context.Canceled):
		status = journal.RunCanceled
	case runErr != nil:
		status = journal.RunFailed
	}
	if env.store != nil {
		if err := env.store.FinishRun(context.WithoutCancel(runCtx), runID, status, stats.Totals()); err != nil {
			logging.WarnWithContext(logger, "journal finish failed", "journal_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the journal path or run with --no-journal"),
			)
		}
	}

	logger.Info("run finished",
		logging.String(logging.FieldEventType, "run_finished"),
		logging.String("status", string(status)),
		logging.Duration("elapsed", time.Since(started)),
		logging.Int("matched", stats.Matched),
		logging.Int("composed", stats.Composed),
		logging.Int("failures", stats.Failures()),
	)

	out := cmd.OutOrStdout()
	fmt.Fprint(out, renderSummary(stats, settings.DryRun, shouldColorize(out)))

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			logging.WarnWithContext(logger, "run interrupted", "run_canceled",
				logging.String(logging.FieldErrorHint, "rerun to process the remaining pairs"),
				logging.String(logging.FieldImpact, "pairs after the interruption were not processed"),
			)
		}
		return runErr
	}
	if stats.ExitFailure() {
		return errDeleteFailures
	}
	return nil
}

func checkPreconditions(cfg *config.Config, req runRequest, settings runSettings) error {
	var results []preflight.Result
	switch req.mode {
	case modePair:
		results = preflight.RunAll(cfg, "", settings.Dispose)
		results = append(results,
			preflight.CheckImage(cfg, "First image", req.first),
			preflight.CheckImage(cfg, "Second image", req.second),
		)
	default:
		results = preflight.RunAll(cfg, req.root, settings.Dispose)
	}
	return preflight.Err(results)
}

func buildRunEnv(cfg *config.Config, settings runSettings, logger *slog.Logger) (*runEnv, error) {
	magickClient, err := magick.New(cfg.MagickBinary(), cfg.ImageMagick.TimeoutSeconds)
	if err != nil {
		return nil, err
	}
	var archiver montage.Archiver
	if settings.Dispose == config.DispositionArchive {
		sz, err := sevenzip.New(cfg.SevenZipBinary())
		if err != nil {
			return nil, err
		}
		archiver = sz
	}

	env := &runEnv{}
	var opts []batch.Option
	if settings.Journal {
		store, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			logging.WarnWithContext(logging.NewComponentLogger(logger, "cli"), "journal unavailable", "journal_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check journal.path or run with --no-journal"),
				logging.String(logging.FieldImpact, "run is not recorded in history"),
			)
		} else {
			env.store = store
			opts = append(opts, batch.WithRecorder(store))
		}
	}

	classifier := aspect.NewClassifier(magickClient)
	matcher := pairing.NewMatcher(classifier, logger)
	orchestrator := montage.New(magickClient, archiver, logger)
	selector := batch.Selector{Extensions: cfg.Images.Extensions, Suffix: cfg.Images.MontageSuffix}
	env.walker = batch.NewWalker(matcher, orchestrator, selector, settings.Options, logger, opts...)
	return env, nil
}
