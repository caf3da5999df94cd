package montage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"landscaper/internal/logging"
	"landscaper/internal/services"
)

const component = "montage"

// Option configures the Orchestrator.
type Option func(*Orchestrator)

// WithRemover replaces os.Remove for delete dispositions (primarily for tests).
func WithRemover(remove func(string) error) Option {
	return func(o *Orchestrator) {
		if remove != nil {
			o.remove = remove
		}
	}
}

// Orchestrator composes matched pairs and disposes of their sources.
type Orchestrator struct {
	composer Composer
	archiver Archiver
	remove   func(string) error
	logger   *slog.Logger
}

// New constructs an Orchestrator. archiver may be nil when archiving is never
// requested.
func New(composer Composer, archiver Archiver, logger *slog.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		composer: composer,
		archiver: archiver,
		remove:   os.Remove,
		logger:   logging.NewComponentLogger(logger, "montage"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Compose produces the montage for (first, second) and applies the configured
// disposition. Heights are the ones reported by the matcher in the same order.
func (o *Orchestrator) Compose(ctx context.Context, first, second string, firstHeight, secondHeight int, opts Options) Result {
	logger := logging.WithContext(ctx, o.logger)
	output := OutputPath(first, opts.Suffix, opts.OutputFormat)
	result := Result{Output: output, Disposition: normalizeDisposition(opts.Disposition)}

	switch {
	case opts.DryRun:
		result.Transform = TransformDryRun
		logger.Info("dry run: montage not written",
			logging.String(logging.FieldEventType, "montage_dry_run"),
			logging.Image(logging.FieldFirst, first),
			logging.Image(logging.FieldSecond, second),
			logging.Image(logging.FieldOutput, output),
		)
	case fileExists(output):
		result.Transform = TransformExisting
		logger.Info("montage already exists; transform skipped",
			logging.String(logging.FieldEventType, "montage_exists"),
			logging.Image(logging.FieldOutput, output),
		)
	default:
		if err := o.transform(ctx, logger, first, second, firstHeight, secondHeight, output, opts); err != nil {
			result.Transform = TransformFailed
			result.TransformErr = err
			if ctx.Err() != nil {
				return result
			}
			logging.WarnWithContext(logger, "montage transform failed", "montage_failed",
				logging.Image(logging.FieldFirst, first),
				logging.Image(logging.FieldSecond, second),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "run the magick command manually to inspect the failure"),
				logging.String(logging.FieldImpact, "originals kept; pair skipped"),
			)
			return result
		}
		result.Transform = TransformComposed
		logger.Info("montage composed",
			logging.String(logging.FieldEventType, "montage_composed"),
			logging.Image(logging.FieldFirst, first),
			logging.Image(logging.FieldSecond, second),
			logging.Image(logging.FieldOutput, output),
		)
	}

	switch result.Disposition {
	case DispositionDelete:
		result.Files = o.deleteOriginals(logger, first, second)
	case DispositionArchive:
		result.Files = o.archiveOriginals(ctx, logger, []string{first, second}, opts)
	}
	return result
}

func (o *Orchestrator) transform(ctx context.Context, logger *slog.Logger, first, second string, firstHeight, secondHeight int, output string, opts Options) error {
	if o.composer == nil {
		return services.Wrap(services.ErrConfiguration, component, "transform", "composer not configured", nil)
	}
	if opts.Resize {
		if target, percent, ok := ScalePlan(first, second, firstHeight, secondHeight); ok {
			logger.Debug("rescaling taller image",
				logging.Image("image", target),
				logging.Any("scale_percent", percent),
			)
			if err := o.composer.Rescale(ctx, target, percent, ""); err != nil {
				return fmt.Errorf("rescale %s: %w", filepath.Base(target), err)
			}
		}
	}
	if err := o.composer.Append(ctx, []string{first, second}, output, opts.OutputFormat); err != nil {
		return fmt.Errorf("append: %w", err)
	}
	if !fileExists(output) {
		return services.Wrap(services.ErrExternalTool, component, "transform", "output not produced: "+output, nil)
	}
	return nil
}

// deleteOriginals removes first then second. The first failure stops the
// sequence; the output is never rolled back.
func (o *Orchestrator) deleteOriginals(logger *slog.Logger, first, second string) []FileOutcome {
	outcomes := make([]FileOutcome, 0, 2)
	for idx, path := range []string{first, second} {
		err := o.remove(path)
		switch {
		case err == nil:
			outcomes = append(outcomes, FileOutcome{Path: path, Action: ActionDeleted})
		case errors.Is(err, os.ErrNotExist):
			outcomes = append(outcomes, FileOutcome{Path: path, Action: ActionAlreadyGone})
		default:
			outcomes = append(outcomes, FileOutcome{Path: path, Action: ActionFailed, Err: err})
			logging.ErrorWithContext(logger, "delete original failed", "delete_failed",
				logging.Image("file", path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check permissions on the directory"),
			)
			if idx == 0 {
				outcomes = append(outcomes, FileOutcome{Path: second, Action: ActionSkipped})
			}
			return outcomes
		}
	}
	logger.Debug("originals deleted", logging.Args(logging.Pair(first, second)...)...)
	return outcomes
}

// archiveOriginals archives each file independently; a failure on one never
// blocks the other.
func (o *Orchestrator) archiveOriginals(ctx context.Context, logger *slog.Logger, paths []string, opts Options) []FileOutcome {
	password := ""
	if opts.UsePassword {
		password = opts.ArchivePassword
	}
	outcomes := make([]FileOutcome, 0, len(paths))
	for _, path := range paths {
		if ctx.Err() != nil {
			outcomes = append(outcomes, FileOutcome{Path: path, Action: ActionSkipped, Err: ctx.Err()})
			continue
		}
		archive := ArchivePath(path, opts.ArchiveDirName, opts.ArchiveExtension)
		var err error
		if o.archiver == nil {
			err = services.Wrap(services.ErrConfiguration, component, "archive", "archiver not configured", nil)
		} else {
			err = o.archiver.Archive(ctx, path, archive, password)
		}
		if err != nil {
			outcomes = append(outcomes, FileOutcome{Path: path, Action: ActionFailed, Err: err})
			logging.WarnWithContext(logger, "archive original failed", "archive_failed",
				logging.Image("file", path),
				logging.String("archive", archive),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check that 7z is installed and the directory is writable"),
				logging.String(logging.FieldImpact, "original kept in place"),
			)
			continue
		}
		outcomes = append(outcomes, FileOutcome{Path: path, Action: ActionArchived})
		logger.Debug("original archived", logging.Image("file", path), logging.String("archive", archive))
	}
	return outcomes
}

func normalizeDisposition(d Disposition) Disposition {
	switch d {
	case DispositionDelete, DispositionArchive:
		return d
	default:
		return DispositionNone
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
