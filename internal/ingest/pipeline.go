package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/adityawarmanfw/lokerhub/internal/audit"
	"github.com/adityawarmanfw/lokerhub/internal/model"
	"github.com/adityawarmanfw/lokerhub/internal/ratelimit"
)

// classifierKey paces enrichment calls; sourceKey paces fetches. All
// sources share one key so consecutive fetches keep the minimum gap.
const (
	classifierKey = "classifier"
	sourceKey     = "source"
)

// Enricher maps a posting's description to structured fields. Total:
// implementations fall back to defaults instead of returning errors.
type Enricher interface {
	Enrich(ctx context.Context, description string) model.Enrichment
}

// Source pairs a configured source name with its fetch adapter.
type Source struct {
	Name    string
	Fetcher model.SourceFetcher
}

// Pipeline owns one batch ingestion run:
// fetch → enrich → merge → upsert, then artifact and notification.
// Sources are processed sequentially; a failed fetch degrades to an
// empty result for that source and the run continues. Only a store
// failure aborts the run.
type Pipeline struct {
	sources  []Source
	enricher Enricher
	store    model.JobStore
	limiter  *ratelimit.KeyedLimiter
	artifact *audit.Writer // nil disables the run artifact
	notifier model.Notifier
	logger   *slog.Logger
}

// NewPipeline creates a pipeline wired with all its dependencies.
func NewPipeline(
	sources []Source,
	enricher Enricher,
	store model.JobStore,
	limiter *ratelimit.KeyedLimiter,
	artifact *audit.Writer,
	notifier model.Notifier,
	logger *slog.Logger,
) *Pipeline {
	return &Pipeline{
		sources:  sources,
		enricher: enricher,
		store:    store,
		limiter:  limiter,
		artifact: artifact,
		notifier: notifier,
		logger:   logger,
	}
}

// Run executes one ingestion run. Partial success is the expected steady
// state: some sources may return nothing and some postings may carry
// default enrichment, and the run still commits everything it processed.
func (p *Pipeline) Run(ctx context.Context) error {
	start := time.Now().UTC()

	var processed []audit.Record
	var newJobs []model.Job
	var fetched, inserted, updated int

	for _, src := range p.sources {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err := p.limiter.Wait(ctx, sourceKey); err != nil {
			return err
		}

		postings, err := src.Fetcher.Fetch(ctx)
		if err != nil {
			// Degraded outcome: empty result for this source, run continues.
			p.logger.Warn("fetch failed, skipping source", "source", src.Name, "error", err)
			continue
		}
		p.logger.Info("fetched source", "source", src.Name, "postings", len(postings))
		fetched += len(postings)

		for _, raw := range postings {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			// Fixed per-posting pacing for the classification capability.
			if err := p.limiter.Wait(ctx, classifierKey); err != nil {
				return err
			}

			enrichment := p.enricher.Enrich(ctx, raw.Description)
			job := Merge(raw, enrichment, src.Name, time.Now().UTC())

			id, created, err := p.store.UpsertJob(ctx, job)
			if err != nil {
				// Store unavailable is the one fatal condition. Previously
				// committed jobs stay committed; a re-run repairs the rest.
				return fmt.Errorf("ingestion aborted: %w", err)
			}
			job.ID = id

			if created {
				inserted++
				newJobs = append(newJobs, job)
			} else {
				updated++
			}

			processed = append(processed, audit.Record{
				RawPosting: raw,
				Enrichment: enrichment,
				Source:     src.Name,
				ScrapedAt:  job.CreatedAt,
			})
		}
	}

	if p.artifact != nil {
		path, err := p.artifact.Write(start, processed)
		if err != nil {
			p.logger.Warn("failed to write run artifact", "error", err)
		} else {
			p.logger.Info("run artifact written", "path", path, "records", len(processed))
		}
	}

	if len(newJobs) > 0 && p.notifier != nil {
		if err := p.notifier.Notify(newJobs); err != nil {
			p.logger.Warn("notification failed", "error", err)
		}
	}

	p.logger.Info("ingestion run complete",
		"sources", len(p.sources),
		"fetched", fetched,
		"inserted", inserted,
		"updated", updated,
		"elapsed", time.Since(start).String(),
	)

	return nil
}
