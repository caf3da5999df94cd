package batch_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"landscaper/internal/aspect"
	"landscaper/internal/batch"
	"landscaper/internal/journal"
	"landscaper/internal/logging"
	"landscaper/internal/montage"
	"landscaper/internal/pairing"
	"landscaper/internal/services"
)

// fakeClassifier answers by base name; unknown names are landscape.
type fakeClassifier map[string]aspect.Info

func (f fakeClassifier) Classify(_ context.Context, path string) (aspect.Info, error) {
	if _, err := os.Stat(path); err != nil {
		return aspect.Info{}, err
	}
	if info, ok := f[filepath.Base(path)]; ok {
		return info, nil
	}
	return aspect.Info{Width: 1200, Height: 800, Class: aspect.Landscape}, nil
}

type fakeComposer struct {
	appends [][]string
}

func (f *fakeComposer) Append(_ context.Context, inputs []string, output, _ string) error {
	f.appends = append(f.appends, append([]string(nil), inputs...))
	return os.WriteFile(output, []byte("montage"), 0o644)
}

func (f *fakeComposer) Rescale(context.Context, string, float64, string) error { return nil }

type memoryRecorder struct {
	entries []journal.Entry
}

func (m *memoryRecorder) Record(_ context.Context, e journal.Entry) error {
	m.entries = append(m.entries, e)
	return nil
}

type cancelingMatcher struct {
	cancel context.CancelFunc
	calls  int
}

func (c *cancelingMatcher) Match(context.Context, string, string, bool) pairing.Decision {
	c.calls++
	c.cancel()
	return pairing.Decision{Reason: pairing.ReasonWidthMismatch}
}

func portrait(w, h int) aspect.Info { return aspect.Info{Width: w, Height: h, Class: aspect.Portrait} }

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("img"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func selector() batch.Selector {
	return batch.Selector{Extensions: []string{"png", "jpg"}, Suffix: "_montage"}
}

func options() montage.Options {
	return montage.Options{OutputFormat: "png", Suffix: "_montage", Disposition: montage.DispositionNone}
}

func newWalker(classifier fakeClassifier, composer *fakeComposer, opts montage.Options, extra ...batch.Option) *batch.Walker {
	logger := logging.NewNop()
	matcher := pairing.NewMatcher(classifier, logger)
	orch := montage.New(composer, nil, logger)
	return batch.NewWalker(matcher, orch, selector(), opts, logger, extra...)
}

func TestProcessTreeThreePortraitsMakeOneMontage(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.jpg", "b.jpg", "c.jpg")
	classifier := fakeClassifier{"a.jpg": portrait(800, 1200), "b.jpg": portrait(800, 1200), "c.jpg": portrait(800, 1200)}
	composer := &fakeComposer{}

	stats, err := newWalker(classifier, composer, options()).ProcessTree(context.Background(), root, true)
	if err != nil {
		t.Fatalf("ProcessTree returned error: %v", err)
	}
	want := [][]string{{filepath.Join(root, "a.jpg"), filepath.Join(root, "b.jpg")}}
	if !reflect.DeepEqual(composer.appends, want) {
		t.Fatalf("appends = %v, want %v", composer.appends, want)
	}
	if stats.Matched != 1 || stats.Composed != 1 || stats.Candidates != 3 || stats.Directories != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if _, err := os.Stat(filepath.Join(root, "a_montage.png")); err != nil {
		t.Fatalf("expected montage output: %v", err)
	}
}

func TestProcessTreeSkipsConsumedAndMismatched(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.jpg", "b.jpg", "c.jpg", "d.jpg")
	// a matches only c; b matches only d.
	classifier := fakeClassifier{
		"a.jpg": portrait(800, 1200),
		"b.jpg": portrait(700, 1200),
		"c.jpg": portrait(800, 1100),
		"d.jpg": portrait(700, 1000),
	}
	composer := &fakeComposer{}

	stats, err := newWalker(classifier, composer, options()).ProcessTree(context.Background(), root, false)
	if err != nil {
		t.Fatalf("ProcessTree returned error: %v", err)
	}
	want := [][]string{
		{filepath.Join(root, "a.jpg"), filepath.Join(root, "c.jpg")},
		{filepath.Join(root, "b.jpg"), filepath.Join(root, "d.jpg")},
	}
	if !reflect.DeepEqual(composer.appends, want) {
		t.Fatalf("appends = %v, want %v", composer.appends, want)
	}
	// a-b, a-c, b-d; c and d are consumed before their own outer turn.
	if stats.Compared != 3 || stats.Matched != 2 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestProcessTreeIgnoresMontageOutputsAndOtherFiles(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.jpg", "a_montage.png", "b_MONTAGE.jpg", "notes.txt", "c.gif")
	classifier := fakeClassifier{
		"a.jpg":         portrait(800, 1200),
		"a_montage.png": portrait(800, 1200),
		"b_MONTAGE.jpg": portrait(800, 1200),
	}
	composer := &fakeComposer{}

	stats, err := newWalker(classifier, composer, options()).ProcessTree(context.Background(), root, true)
	if err != nil {
		t.Fatalf("ProcessTree returned error: %v", err)
	}
	if stats.Candidates != 1 || len(composer.appends) != 0 {
		t.Fatalf("montage outputs must not be candidates: stats=%+v appends=%v", stats, composer.appends)
	}
}

func TestProcessTreeNeverPairsAcrossDirectories(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.jpg")
	touch(t, filepath.Join(root, "sub"), "b.jpg", "c.jpg")
	touch(t, filepath.Join(root, "sub", "deeper"), "d.jpg")
	classifier := fakeClassifier{
		"a.jpg": portrait(800, 1200), "b.jpg": portrait(800, 1200),
		"c.jpg": portrait(800, 1200), "d.jpg": portrait(800, 1200),
	}

	composer := &fakeComposer{}
	stats, err := newWalker(classifier, composer, options()).ProcessTree(context.Background(), root, true)
	if err != nil {
		t.Fatalf("ProcessTree returned error: %v", err)
	}
	want := [][]string{{filepath.Join(root, "sub", "b.jpg"), filepath.Join(root, "sub", "c.jpg")}}
	if !reflect.DeepEqual(composer.appends, want) {
		t.Fatalf("appends = %v, want %v", composer.appends, want)
	}
	if stats.Directories != 3 {
		t.Fatalf("expected three directories, got %+v", stats)
	}

	composer = &fakeComposer{}
	stats, err = newWalker(classifier, composer, options()).ProcessTree(context.Background(), root, false)
	if err != nil {
		t.Fatalf("ProcessTree returned error: %v", err)
	}
	if stats.Directories != 1 || len(composer.appends) != 0 {
		t.Fatalf("non-recursive run should only see root: %+v", stats)
	}
}

func TestProcessTreeRecordsJournalEntries(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.jpg", "b.jpg")
	classifier := fakeClassifier{"a.jpg": portrait(800, 1200), "b.jpg": portrait(800, 1200)}
	recorder := &memoryRecorder{}
	opts := options()
	opts.DryRun = true

	ctx := services.WithRunID(context.Background(), "run-42")
	stats, err := newWalker(classifier, &fakeComposer{}, opts, batch.WithRecorder(recorder)).ProcessTree(ctx, root, true)
	if err != nil {
		t.Fatalf("ProcessTree returned error: %v", err)
	}
	if stats.DryRun != 1 || len(recorder.entries) != 1 {
		t.Fatalf("unexpected stats %+v entries %v", stats, recorder.entries)
	}
	entry := recorder.entries[0]
	if entry.RunID != "run-42" || entry.Transform != "dry_run" || entry.Directory != root || entry.Output != filepath.Join(root, "a_montage.png") {
		t.Fatalf("unexpected entry %+v", entry)
	}
}

func TestProcessTreeStopsOnCancellation(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.jpg", "b.jpg", "c.jpg")
	touch(t, filepath.Join(root, "sub"), "d.jpg", "e.jpg")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	matcher := &cancelingMatcher{cancel: cancel}
	walker := batch.NewWalker(matcher, montage.New(&fakeComposer{}, nil, nil), selector(), options(), nil)

	stats, err := walker.ProcessTree(ctx, root, true)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if matcher.calls != 1 || stats.Compared != 1 || stats.Directories != 1 {
		t.Fatalf("no comparison should follow cancellation: calls=%d stats=%+v", matcher.calls, stats)
	}
}

func TestProcessTreeMissingRoot(t *testing.T) {
	walker := newWalker(fakeClassifier{}, &fakeComposer{}, options())
	_, err := walker.ProcessTree(context.Background(), filepath.Join(t.TempDir(), "missing"), true)
	if !errors.Is(err, services.ErrPrecondition) {
		t.Fatalf("expected precondition error, got %v", err)
	}
}

func TestProcessPair(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.jpg", "b.jpg", "wide.jpg")
	classifier := fakeClassifier{"a.jpg": portrait(800, 1200), "b.jpg": portrait(800, 1200)}
	composer := &fakeComposer{}
	walker := newWalker(classifier, composer, options())

	stats, err := walker.ProcessPair(context.Background(), filepath.Join(root, "a.jpg"), filepath.Join(root, "b.jpg"))
	if err != nil || stats.Composed != 1 {
		t.Fatalf("expected composed pair, got %+v, %v", stats, err)
	}

	_, err = walker.ProcessPair(context.Background(), filepath.Join(root, "a.jpg"), filepath.Join(root, "wide.jpg"))
	if !errors.Is(err, batch.ErrIneligiblePair) {
		t.Fatalf("expected ineligible pair, got %v", err)
	}
}

func TestProcessTreeKeepsPairWhoseOutputNameIsTaken(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.jpg", "b.jpg", "a.png", "c.png")
	classifier := fakeClassifier{
		"a.jpg": portrait(800, 1200),
		"b.jpg": portrait(800, 1200),
		"a.png": portrait(700, 1000),
		"c.png": portrait(700, 1000),
	}
	composer := &fakeComposer{}
	recorder := &memoryRecorder{}
	opts := options()
	opts.Disposition = montage.DispositionDelete

	stats, err := newWalker(classifier, composer, opts, batch.WithRecorder(recorder)).ProcessTree(context.Background(), root, false)
	if err != nil {
		t.Fatalf("ProcessTree returned error: %v", err)
	}

	want := [][]string{{filepath.Join(root, "a.jpg"), filepath.Join(root, "b.jpg")}}
	if !reflect.DeepEqual(composer.appends, want) {
		t.Fatalf("appends = %v, want %v", composer.appends, want)
	}
	if stats.Matched != 2 || stats.Composed != 1 || stats.Existing != 0 || stats.Conflicts != 1 || stats.Deleted != 2 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if stats.Failures() != 1 || stats.ExitFailure() {
		t.Fatalf("conflict should count as a failure without failing the exit: %+v", stats)
	}
	for _, name := range []string{"a.png", "c.png"} {
		if _, err := os.Stat(filepath.Join(root, name)); err != nil {
			t.Fatalf("expected %s to be kept: %v", name, err)
		}
	}
	for _, name := range []string{"a.jpg", "b.jpg"} {
		if _, err := os.Stat(filepath.Join(root, name)); !os.IsNotExist(err) {
			t.Fatalf("expected %s to be deleted, stat err %v", name, err)
		}
	}

	if len(recorder.entries) != 2 {
		t.Fatalf("expected 2 journal entries, got %d", len(recorder.entries))
	}
	entry := recorder.entries[1]
	if entry.Transform != string(montage.TransformConflict) || entry.DispositionStatus != "none" || entry.Error == "" {
		t.Fatalf("unexpected conflict entry %+v", entry)
	}
}

func TestProcessTreeRerunStillDisposesExistingOutput(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.jpg", "b.jpg", "a_montage.png")
	classifier := fakeClassifier{"a.jpg": portrait(800, 1200), "b.jpg": portrait(800, 1200)}
	composer := &fakeComposer{}
	opts := options()
	opts.Disposition = montage.DispositionDelete

	stats, err := newWalker(classifier, composer, opts).ProcessTree(context.Background(), root, false)
	if err != nil {
		t.Fatalf("ProcessTree returned error: %v", err)
	}
	if len(composer.appends) != 0 || stats.Existing != 1 || stats.Conflicts != 0 || stats.Deleted != 2 {
		t.Fatalf("unexpected rerun stats %+v appends=%v", stats, composer.appends)
	}
}

func TestStatsDeleteFailureFailsExit(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.jpg", "b.jpg")
	classifier := fakeClassifier{"a.jpg": portrait(800, 1200), "b.jpg": portrait(800, 1200)}
	logger := logging.NewNop()
	orch := montage.New(&fakeComposer{}, nil, logger, montage.WithRemover(func(string) error {
		return errors.New("read-only file system")
	}))
	opts := options()
	opts.Disposition = montage.DispositionDelete
	walker := batch.NewWalker(pairing.NewMatcher(classifier, logger), orch, selector(), opts, logger)

	stats, err := walker.ProcessTree(context.Background(), root, false)
	if err != nil {
		t.Fatalf("delete failures must not abort the run: %v", err)
	}
	if stats.DeleteFailures != 1 || !stats.ExitFailure() || stats.Totals().Failures != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}
