package pairing

import (
	"context"
	"log/slog"
	"path/filepath"

	"landscaper/internal/aspect"
	"landscaper/internal/logging"
)

// Decision reasons.
const (
	ReasonSelfPair         = "self_pair"
	ReasonClassifyFailed   = "classify_failed"
	ReasonLandscape        = "landscape"
	ReasonMixedOrientation = "mixed_orientation"
	ReasonWidthMismatch    = "width_mismatch"
	ReasonMatched          = "matched"
)

// Decision is the outcome of evaluating one ordered pair. Heights keep the
// (first, second) order of the call.
type Decision struct {
	Matched      bool
	FirstHeight  int
	SecondHeight int
	Reason       string
}

// Classifier measures a single image.
type Classifier interface {
	Classify(ctx context.Context, path string) (aspect.Info, error)
}

// Matcher evaluates pair eligibility.
type Matcher struct {
	classifier Classifier
	logger     *slog.Logger
}

// NewMatcher constructs a Matcher.
func NewMatcher(classifier Classifier, logger *slog.Logger) *Matcher {
	return &Matcher{
		classifier: classifier,
		logger:     logging.NewComponentLogger(logger, "matcher"),
	}
}

// Match decides whether first and second can be composed.
func (m *Matcher) Match(ctx context.Context, first, second string, resize bool) Decision {
	logger := logging.WithContext(ctx, m.logger)
	if SamePath(first, second) {
		return Decision{Reason: ReasonSelfPair}
	}

	a, errA := m.classifier.Classify(ctx, first)
	b, errB := m.classifier.Classify(ctx, second)
	if errA != nil || errB != nil {
		attrs := logging.Pair(first, second)
		if errA != nil {
			attrs = append(attrs, logging.Error(errA))
		} else {
			attrs = append(attrs, logging.Error(errB))
		}
		attrs = append(attrs,
			logging.String(logging.FieldErrorHint, "verify the files are readable images and ImageMagick is installed"),
			logging.String(logging.FieldImpact, "pair treated as not matching"),
		)
		logging.WarnWithContext(logger, "image classification failed", "classify_failed", attrs...)
		// Forced portrait/landscape so the pair can never match.
		a = aspect.Info{Width: a.Width, Height: a.Height, Class: aspect.Portrait}
		b = aspect.Info{Width: b.Width, Height: b.Height, Class: aspect.Landscape}
		return m.decide(logger, first, second, a, b, resize, ReasonClassifyFailed)
	}
	return m.decide(logger, first, second, a, b, resize, "")
}

func (m *Matcher) decide(logger *slog.Logger, first, second string, a, b aspect.Info, resize bool, forced string) Decision {
	decision := Decision{FirstHeight: a.Height, SecondHeight: b.Height}
	switch {
	case forced != "":
		decision.Reason = forced
	case a.Class == aspect.Landscape && b.Class == aspect.Landscape:
		decision.Reason = ReasonLandscape
	case a.Class != b.Class:
		decision.Reason = ReasonMixedOrientation
	case !resize && a.Width != b.Width:
		decision.Reason = ReasonWidthMismatch
	default:
		decision.Matched = true
		decision.Reason = ReasonMatched
	}

	result := "rejected"
	if decision.Matched {
		result = "matched"
	}
	attrs := logging.DecisionAttrs("pair_match", result, decision.Reason)
	attrs = append(attrs, logging.Pair(first, second)...)
	attrs = append(attrs,
		logging.Int("first_width", a.Width),
		logging.Int("second_width", b.Width),
		logging.Int("first_height", a.Height),
		logging.Int("second_height", b.Height),
	)
	logger.Debug("pair evaluated", logging.Args(attrs...)...)
	return decision
}

// SamePath reports whether a and b name the same file after cleaning and
// resolving to absolute form.
func SamePath(a, b string) bool {
	return normalizePath(a) == normalizePath(b)
}

func normalizePath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
