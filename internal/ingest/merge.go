package ingest

import (
	"time"

	"github.com/adityawarmanfw/lokerhub/internal/model"
)

// Merge combines a raw posting with its enrichment into the canonical
// Job shape. Pure combination, no I/O, no validation: raw fields are
// copied verbatim (including degraded "Unknown" placeholders), the
// enrichment is overlaid, and the source tag and ingest time are
// stamped. The store assigns identity and authoritative timestamps.
func Merge(raw model.RawPosting, enrichment model.Enrichment, sourceTag string, ingestTime time.Time) model.Job {
	return model.Job{
		Title:           raw.Title,
		Company:         raw.Company,
		Location:        raw.Location,
		Description:     raw.Description,
		SalaryMin:       raw.SalaryMin,
		SalaryMax:       raw.SalaryMax,
		ApplyURL:        raw.ApplyURL,
		Source:          sourceTag,
		Skills:          enrichment.Skills,
		ExperienceLevel: enrichment.ExperienceLevel,
		IsRemote:        enrichment.IsRemote,
		CreatedAt:       ingestTime,
		UpdatedAt:       ingestTime,
	}
}
