package model

import (
	"context"
	"time"
)

// RawPosting is what a source adapter extracts from a feed, board API, or
// page before enrichment. All fields are free text with no validation
// guarantees; Company and Location degrade to "Unknown" when a source
// doesn't carry them.
type RawPosting struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Description string `json:"description"`
	SalaryMin   *int64 `json:"salary_min,omitempty"`
	SalaryMax   *int64 `json:"salary_max,omitempty"`
	ApplyURL    string `json:"apply_url"`
}

// Experience levels the classifier is expected to return.
const (
	ExperienceJunior  = "junior"
	ExperienceMid     = "mid"
	ExperienceSenior  = "senior"
	ExperienceUnknown = "unknown"
)

// Enrichment holds the AI-extracted structured fields for one posting.
// It is always fully populated: enrichment failures produce
// DefaultEnrichment, never a partial record.
type Enrichment struct {
	Skills          []string `json:"skills"`
	ExperienceLevel string   `json:"experience_level"`
	IsRemote        bool     `json:"is_remote"`
}

// DefaultEnrichment is the safe fallback used when no classifier is
// configured or the classification call fails in any way.
func DefaultEnrichment() Enrichment {
	return Enrichment{
		Skills:          []string{},
		ExperienceLevel: ExperienceUnknown,
		IsRemote:        false,
	}
}

// Job is the canonical durable entity. Identity is the auto-assigned ID;
// the dedup key across ingestion runs is ApplyURL (unique in the store).
// UpdatedAt is internal bookkeeping and not part of the API response shape.
type Job struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Company         string    `json:"company"`
	Location        string    `json:"location,omitempty"`
	Description     string    `json:"description,omitempty"`
	SalaryMin       *int64    `json:"salary_min"`
	SalaryMax       *int64    `json:"salary_max"`
	ApplyURL        string    `json:"apply_url"`
	Source          string    `json:"source,omitempty"`
	Skills          []string  `json:"skills"`
	ExperienceLevel string    `json:"experience_level,omitempty"`
	IsRemote        bool      `json:"is_remote"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"-"`
}

// UserPreference holds one user's search and notification preferences,
// keyed by a unique UserID. The ingestion pipeline never touches it.
type UserPreference struct {
	ID                 int64     `json:"id"`
	UserID             string    `json:"user_id"`
	Keywords           []string  `json:"keywords"`
	PreferredLocations []string  `json:"preferred_locations"`
	MinSalary          *int64    `json:"min_salary"`
	MaxSalary          *int64    `json:"max_salary"`
	ExperienceLevels   []string  `json:"experience_levels"`
	RemoteOnly         bool      `json:"remote_only"`
	EmailNotifications bool      `json:"email_notifications"`
	PushNotifications  bool      `json:"push_notifications"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"-"`
}

// SourceFetcher retrieves raw postings from a single source (feed, board
// API, or HTML page). Adapters return an error on network or parse
// failure; the pipeline degrades that to an empty result for the source.
type SourceFetcher interface {
	Fetch(ctx context.Context) ([]RawPosting, error)
}

// JobFilters are the independently optional query filters. All supplied
// filters are ANDed together.
type JobFilters struct {
	Keyword   string // case-insensitive substring against title OR description
	Location  string // case-insensitive substring against location
	MinSalary *int64 // keep jobs whose salary_min is present and >= this
}

// JobStore is the durable keyed collection of jobs and user preferences.
type JobStore interface {
	// UpsertJob inserts the job or, when a job with the same apply_url
	// exists, updates its mutable fields. Returns the stored ID and
	// whether a new row was created. Idempotent by dedup key.
	UpsertJob(ctx context.Context, job Job) (int64, bool, error)
	// QueryJobs returns the page-th contiguous window (1-based) of the
	// filtered set ordered by ID, plus the total filtered count.
	QueryJobs(ctx context.Context, f JobFilters, page, perPage int) ([]Job, int, error)
	// GetJob returns ErrNotFound when no job has the given ID.
	GetJob(ctx context.Context, id int64) (Job, error)

	SavePreference(ctx context.Context, pref UserPreference) error
	// GetPreference returns ErrNotFound when the user has no stored preference.
	GetPreference(ctx context.Context, userID string) (UserPreference, error)

	Ping(ctx context.Context) error
}

// Notifier announces newly inserted jobs after an ingestion run.
type Notifier interface {
	Notify(jobs []Job) error
}
