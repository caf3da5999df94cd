package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"landscaper/internal/journal"
	"landscaper/internal/logging"
	"landscaper/internal/montage"
	"landscaper/internal/pairing"
	"landscaper/internal/services"
)

// ErrIneligiblePair is returned by ProcessPair when the matcher rejects the pair.
var ErrIneligiblePair = fmt.Errorf("%w: images cannot be combined", services.ErrValidation)

// Matcher decides pair eligibility.
type Matcher interface {
	Match(ctx context.Context, first, second string, resize bool) pairing.Decision
}

// Composer turns a matched pair into a montage.
type Composer interface {
	Compose(ctx context.Context, first, second string, firstHeight, secondHeight int, opts montage.Options) montage.Result
}

// Recorder persists pair outcomes.
type Recorder interface {
	Record(ctx context.Context, entry journal.Entry) error
}

// Option configures a Walker.
type Option func(*Walker)

// WithRecorder journals every matched pair.
func WithRecorder(r Recorder) Option {
	return func(w *Walker) {
		w.recorder = r
	}
}

// Walker drives matching and composition over directories.
type Walker struct {
	matcher  Matcher
	composer Composer
	recorder Recorder
	selector Selector
	options  montage.Options
	logger   *slog.Logger
}

// NewWalker constructs a Walker. opts are applied to every composed pair.
func NewWalker(matcher Matcher, composer Composer, selector Selector, options montage.Options, logger *slog.Logger, opts ...Option) *Walker {
	w := &Walker{
		matcher:  matcher,
		composer: composer,
		selector: selector,
		options:  options,
		logger:   logging.NewComponentLogger(logger, "walker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// ProcessTree pairs images in root and, when recursive, every subdirectory.
// It returns an error only for cancellation or when root cannot be listed;
// per-pair failures are counted in Stats.
func (w *Walker) ProcessTree(ctx context.Context, root string, recursive bool) (Stats, error) {
	var stats Stats
	logger := logging.WithContext(ctx, w.logger)

	dirs, err := Directories(root, recursive, logger)
	if err != nil {
		return stats, services.Wrap(services.ErrPrecondition, "walker", "enumerate", root, err)
	}
	logger.Info("run started",
		logging.String(logging.FieldEventType, "run_started"),
		logging.String("root", root),
		logging.Int("directories", len(dirs)),
		logging.Bool("recursive", recursive),
	)

	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Directories++
		if err := w.ProcessDirectory(ctx, dir, &stats); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

// ProcessDirectory runs one directory batch, accumulating into stats.
func (w *Walker) ProcessDirectory(ctx context.Context, dir string, stats *Stats) error {
	ctx = services.WithDirectory(ctx, dir)
	logger := logging.WithContext(ctx, w.logger)

	candidates, err := Candidates(dir, w.selector)
	if err != nil {
		logging.WarnWithContext(logger, "directory listing failed", "directory_unreadable",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check directory permissions"),
			logging.String(logging.FieldImpact, "images in this directory are not paired"),
		)
		return nil
	}
	stats.Candidates += len(candidates)
	if len(candidates) < 2 {
		logger.Debug("directory has fewer than two candidates", logging.Int("candidates", len(candidates)))
		return nil
	}
	logger.Debug("pairing directory", logging.Int("candidates", len(candidates)))

	// Output paths already produced in this directory, keyed to the first
	// image of the pair that claimed them. Same-stem images with different
	// extensions derive the same output name.
	claimed := make(map[string]string)
	consumed := make([]bool, len(candidates))
	for i := range candidates {
		if consumed[i] {
			continue
		}
		for j := i + 1; j < len(candidates); j++ {
			if consumed[j] {
				continue
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			decision := w.matcher.Match(ctx, candidates[i], candidates[j], w.options.Resize)
			stats.addDecision(decision)
			if !decision.Matched {
				continue
			}
			consumed[i], consumed[j] = true, true
			output := montage.OutputPath(candidates[i], w.options.Suffix, w.options.OutputFormat)
			if owner, taken := claimed[output]; taken {
				w.conflict(ctx, logger, dir, candidates[i], candidates[j], output, owner, stats)
				break
			}
			result := w.compose(ctx, logger, dir, candidates[i], candidates[j], decision, stats)
			if result.Transform != montage.TransformFailed {
				claimed[result.Output] = candidates[i]
			}
			if result.TransformErr != nil && ctx.Err() != nil {
				return ctx.Err()
			}
			break
		}
	}
	return nil
}

// ProcessPair is manual mode: it evaluates one explicit pair and composes it
// when eligible.
func (w *Walker) ProcessPair(ctx context.Context, first, second string) (Stats, error) {
	var stats Stats
	dir := filepath.Dir(first)
	ctx = services.WithDirectory(ctx, dir)
	logger := logging.WithContext(ctx, w.logger)

	if err := ctx.Err(); err != nil {
		return stats, err
	}
	stats.Directories = 1
	stats.Candidates = 2
	decision := w.matcher.Match(ctx, first, second, w.options.Resize)
	stats.addDecision(decision)
	if !decision.Matched {
		return stats, fmt.Errorf("%w (%s)", ErrIneligiblePair, decision.Reason)
	}
	result := w.compose(ctx, logger, dir, first, second, decision, &stats)
	if result.TransformErr != nil && ctx.Err() != nil {
		return stats, ctx.Err()
	}
	return stats, nil
}

func (w *Walker) compose(ctx context.Context, logger *slog.Logger, dir, first, second string, decision pairing.Decision, stats *Stats) montage.Result {
	logger.Info("pair matched",
		logging.String(logging.FieldEventType, "pair_matched"),
		logging.Image(logging.FieldFirst, first),
		logging.Image(logging.FieldSecond, second),
	)
	result := w.composer.Compose(ctx, first, second, decision.FirstHeight, decision.SecondHeight, w.options)
	stats.addResult(result)
	w.record(ctx, logger, dir, first, second, result)
	return result
}

// conflict skips a matched pair whose output name was already used by an
// earlier pair of this run. Neither the transform nor the disposition runs, so
// the originals stay in place.
func (w *Walker) conflict(ctx context.Context, logger *slog.Logger, dir, first, second, output, owner string, stats *Stats) {
	err := fmt.Errorf("output %s already written for %s in this run", filepath.Base(output), filepath.Base(owner))
	logging.WarnWithContext(logger, "montage output conflict", "montage_conflict",
		logging.Image(logging.FieldFirst, first),
		logging.Image(logging.FieldSecond, second),
		logging.Image(logging.FieldOutput, output),
		logging.Image("claimed_by", owner),
		logging.String(logging.FieldErrorHint, "rename one of the same-named images and rerun"),
		logging.String(logging.FieldImpact, "pair skipped; originals kept"),
	)
	result := montage.Result{
		Output:       output,
		Transform:    montage.TransformConflict,
		TransformErr: err,
		Disposition:  montage.DispositionNone,
	}
	stats.addResult(result)
	w.record(ctx, logger, dir, first, second, result)
}

func (w *Walker) record(ctx context.Context, logger *slog.Logger, dir, first, second string, result montage.Result) {
	if w.recorder == nil {
		return
	}
	runID, _ := services.RunIDFromContext(ctx)
	entry := journal.Entry{
		RunID:             runID,
		Directory:         dir,
		First:             first,
		Second:            second,
		Output:            result.Output,
		Transform:         string(result.Transform),
		Disposition:       string(result.Disposition),
		DispositionStatus: result.DispositionStatus(),
	}
	if err := errors.Join(result.TransformErr, result.DispositionErr()); err != nil {
		entry.Error = err.Error()
	}
	// A canceled context would make the insert fail; the outcome still happened.
	if err := w.recorder.Record(context.WithoutCancel(ctx), entry); err != nil {
		logging.WarnWithContext(logger, "journal write failed", "journal_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the journal path or run with --no-journal"),
			logging.String(logging.FieldImpact, "pair outcome missing from history"),
		)
	}
}
