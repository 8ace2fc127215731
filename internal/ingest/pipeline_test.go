package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/adityawarmanfw/lokerhub/internal/audit"
	"github.com/adityawarmanfw/lokerhub/internal/model"
	"github.com/adityawarmanfw/lokerhub/internal/ratelimit"
)

// fakeFetcher returns canned postings or a canned error.
type fakeFetcher struct {
	postings []model.RawPosting
	err      error
}

func (f *fakeFetcher) Fetch(_ context.Context) ([]model.RawPosting, error) {
	return f.postings, f.err
}

// defaultEnricher always returns the safe fallback, like an enricher
// whose classifier is failing for every call.
type defaultEnricher struct{}

func (defaultEnricher) Enrich(_ context.Context, _ string) model.Enrichment {
	return model.DefaultEnrichment()
}

// recordingStore tracks upserts in memory and reports duplicates by
// apply_url, optionally failing every call.
type recordingStore struct {
	byURL  map[string]int64
	order  []model.Job
	nextID int64
	err    error
}

func newRecordingStore() *recordingStore {
	return &recordingStore{byURL: make(map[string]int64)}
}

func (s *recordingStore) UpsertJob(_ context.Context, job model.Job) (int64, bool, error) {
	if s.err != nil {
		return 0, false, s.err
	}
	if id, ok := s.byURL[job.ApplyURL]; ok {
		return id, false, nil
	}
	s.nextID++
	s.byURL[job.ApplyURL] = s.nextID
	s.order = append(s.order, job)
	return s.nextID, true, nil
}

func (s *recordingStore) QueryJobs(_ context.Context, _ model.JobFilters, _, _ int) ([]model.Job, int, error) {
	return nil, 0, nil
}

func (s *recordingStore) GetJob(_ context.Context, _ int64) (model.Job, error) {
	return model.Job{}, model.ErrNotFound
}

func (s *recordingStore) SavePreference(_ context.Context, _ model.UserPreference) error { return nil }

func (s *recordingStore) GetPreference(_ context.Context, _ string) (model.UserPreference, error) {
	return model.UserPreference{}, model.ErrNotFound
}

func (s *recordingStore) Ping(_ context.Context) error { return nil }

// captureNotifier records every notified job.
type captureNotifier struct {
	jobs []model.Job
}

func (n *captureNotifier) Notify(jobs []model.Job) error {
	n.jobs = append(n.jobs, jobs...)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func posting(title, url string) model.RawPosting {
	return model.RawPosting{
		Title:       title,
		Company:     "Acme",
		Location:    "Jakarta",
		Description: "desc for " + title,
		ApplyURL:    url,
	}
}

func newTestPipeline(sources []Source, store model.JobStore, artifact *audit.Writer, notifier model.Notifier) *Pipeline {
	return NewPipeline(sources, defaultEnricher{}, store, ratelimit.NewKeyedLimiter(0), artifact, notifier, testLogger())
}

func TestRun_FailedSourceDegradesToEmpty(t *testing.T) {
	store := newRecordingStore()
	sources := []Source{
		{Name: "broken", Fetcher: &fakeFetcher{err: errors.New("connection timed out")}},
		{Name: "devboard", Fetcher: &fakeFetcher{postings: []model.RawPosting{
			posting("Go Engineer", "https://example.com/a"),
			posting("Data Analyst", "https://example.com/b"),
		}}},
	}

	p := newTestPipeline(sources, store, nil, nil)
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(store.order) != 2 {
		t.Errorf("upserted %d jobs, want 2 from the healthy source", len(store.order))
	}
}

func TestRun_DefaultEnrichmentStillProducesJobs(t *testing.T) {
	// An always-failing classifier must not prevent jobs from being stored.
	store := newRecordingStore()
	sources := []Source{
		{Name: "devboard", Fetcher: &fakeFetcher{postings: []model.RawPosting{
			posting("Backend Dev", "https://example.com/a"),
		}}},
	}

	p := newTestPipeline(sources, store, nil, nil)
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(store.order) != 1 {
		t.Fatalf("upserted %d jobs, want 1", len(store.order))
	}
	job := store.order[0]
	if job.ExperienceLevel != model.ExperienceUnknown || job.IsRemote || len(job.Skills) != 0 {
		t.Errorf("job enrichment = %+v, want safe defaults", job)
	}
	if job.Source != "devboard" {
		t.Errorf("Source = %q, want devboard", job.Source)
	}
}

func TestRun_StoreFailureAborts(t *testing.T) {
	store := newRecordingStore()
	store.err = errors.New("database is locked")
	sources := []Source{
		{Name: "devboard", Fetcher: &fakeFetcher{postings: []model.RawPosting{
			posting("Backend Dev", "https://example.com/a"),
		}}},
	}

	p := newTestPipeline(sources, store, nil, nil)
	if err := p.Run(context.Background()); err == nil {
		t.Fatal("expected run to abort on store failure")
	}
}

func TestRun_NotifiesOnlyNewJobs(t *testing.T) {
	store := newRecordingStore()
	fetcher := &fakeFetcher{postings: []model.RawPosting{
		posting("Go Engineer", "https://example.com/a"),
		posting("Data Analyst", "https://example.com/b"),
	}}
	sources := []Source{{Name: "devboard", Fetcher: fetcher}}

	n := &captureNotifier{}
	p := newTestPipeline(sources, store, nil, n)
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if len(n.jobs) != 2 {
		t.Fatalf("first run notified %d jobs, want 2", len(n.jobs))
	}

	// Second run sees the same postings: all updates, nothing to notify.
	n2 := &captureNotifier{}
	p2 := newTestPipeline(sources, store, nil, n2)
	if err := p2.Run(context.Background()); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if len(n2.jobs) != 0 {
		t.Errorf("second run notified %d jobs, want 0", len(n2.jobs))
	}
}

func TestRun_WritesArtifact(t *testing.T) {
	dir := t.TempDir()
	store := newRecordingStore()
	sources := []Source{
		{Name: "devboard", Fetcher: &fakeFetcher{postings: []model.RawPosting{
			posting("Go Engineer", "https://example.com/a"),
		}}},
	}

	p := newTestPipeline(sources, store, audit.NewWriter(dir), nil)
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	runs, err := audit.ListRuns(dir)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("found %d artifacts, want 1", len(runs))
	}

	records, err := audit.LoadRecords(runs[0].Path)
	if err != nil {
		t.Fatalf("LoadRecords: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("artifact has %d records, want 1", len(records))
	}
	rec := records[0]
	if rec.Title != "Go Engineer" || rec.Source != "devboard" {
		t.Errorf("record = %+v", rec)
	}
	if rec.ExperienceLevel != model.ExperienceUnknown {
		t.Errorf("record enrichment = %+v, want defaults", rec.Enrichment)
	}
	if rec.ScrapedAt.IsZero() {
		t.Error("ScrapedAt not stamped")
	}
}

func TestRun_ContextCancelledStops(t *testing.T) {
	store := newRecordingStore()
	sources := []Source{
		{Name: "devboard", Fetcher: &fakeFetcher{postings: []model.RawPosting{
			posting("Go Engineer", "https://example.com/a"),
		}}},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := newTestPipeline(sources, store, nil, nil)
	if err := p.Run(ctx); err == nil {
		t.Fatal("expected error when context already cancelled")
	}
	if len(store.order) != 0 {
		t.Errorf("upserted %d jobs after cancellation, want 0", len(store.order))
	}
}

func TestRun_EnrichmentPacingUsesLimiter(t *testing.T) {
	store := newRecordingStore()
	sources := []Source{
		{Name: "devboard", Fetcher: &fakeFetcher{postings: []model.RawPosting{
			posting("A", "https://example.com/a"),
			posting("B", "https://example.com/b"),
			posting("C", "https://example.com/c"),
		}}},
	}

	delay := 60 * time.Millisecond
	p := NewPipeline(sources, defaultEnricher{}, store, ratelimit.NewKeyedLimiter(delay), nil, nil, testLogger())

	start := time.Now()
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	// Three postings share the classifier key: at least two full gaps.
	if elapsed := time.Since(start); elapsed < 2*delay {
		t.Errorf("run took %v, want at least %v of pacing", elapsed, 2*delay)
	}
}

func TestRun_SourcePacingBetweenFetches(t *testing.T) {
	store := newRecordingStore()
	sources := []Source{
		{Name: "devboard", Fetcher: &fakeFetcher{postings: []model.RawPosting{
			posting("A", "https://example.com/a"),
		}}},
		{Name: "lokercards", Fetcher: &fakeFetcher{postings: []model.RawPosting{
			posting("B", "https://example.com/b"),
		}}},
	}

	delay := 60 * time.Millisecond
	p := NewPipeline(sources, defaultEnricher{}, store, ratelimit.NewKeyedLimiter(delay), nil, nil, testLogger())

	start := time.Now()
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	// Both fetches share one key, so the second must wait a full gap.
	if elapsed := time.Since(start); elapsed < delay {
		t.Errorf("run took %v, want at least %v between fetches", elapsed, delay)
	}
	if len(store.order) != 2 {
		t.Errorf("upserted %d jobs, want 2", len(store.order))
	}
}
