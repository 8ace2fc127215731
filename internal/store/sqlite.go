package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/adityawarmanfw/lokerhub/internal/model"
)

// Ensure SQLiteStore implements model.JobStore.
var _ model.JobStore = (*SQLiteStore)(nil)

// SQLiteStore persists jobs and user preferences in a SQLite database.
// The ingest and serve processes share the same file; SQLite's write
// serialization plus the unique apply_url constraint guarantee that one
// logical posting is never stored twice, even under concurrent runs.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	title            TEXT NOT NULL,
	company          TEXT NOT NULL,
	location         TEXT,
	description      TEXT,
	salary_min       INTEGER,
	salary_max       INTEGER,
	apply_url        TEXT NOT NULL UNIQUE,
	source           TEXT,
	skills           TEXT,
	experience_level TEXT,
	is_remote        INTEGER NOT NULL DEFAULT 0,
	created_at       DATETIME NOT NULL,
	updated_at       DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_jobs_created_at ON jobs(created_at);
CREATE INDEX IF NOT EXISTS idx_jobs_location   ON jobs(location);
CREATE INDEX IF NOT EXISTS idx_jobs_salary     ON jobs(salary_min, salary_max);

CREATE TABLE IF NOT EXISTS user_preferences (
	id                  INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id             TEXT NOT NULL UNIQUE,
	keywords            TEXT,
	preferred_locations TEXT,
	min_salary          INTEGER,
	max_salary          INTEGER,
	experience_levels   TEXT,
	remote_only         INTEGER NOT NULL DEFAULT 0,
	email_notifications INTEGER NOT NULL DEFAULT 1,
	push_notifications  INTEGER NOT NULL DEFAULT 1,
	created_at          DATETIME NOT NULL,
	updated_at          DATETIME NOT NULL
);
`

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and
// ensures the schema exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// UpsertJob inserts job or, when a row with the same apply_url exists,
// updates its mutable fields and bumps updated_at. created_at is never
// touched on conflict, so created_at = updated_at identifies a freshly
// inserted row. The single statement is its own atomic unit.
func (s *SQLiteStore) UpsertJob(ctx context.Context, job model.Job) (int64, bool, error) {
	now := time.Now().UTC()

	skills, err := marshalStrings(job.Skills)
	if err != nil {
		return 0, false, fmt.Errorf("upserting job %q: %w", job.ApplyURL, err)
	}

	var id int64
	var created bool
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO jobs (title, company, location, description, salary_min, salary_max,
		                  apply_url, source, skills, experience_level, is_remote,
		                  created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(apply_url) DO UPDATE SET
			title            = excluded.title,
			company          = excluded.company,
			location         = excluded.location,
			description      = excluded.description,
			salary_min       = excluded.salary_min,
			salary_max       = excluded.salary_max,
			source           = excluded.source,
			skills           = excluded.skills,
			experience_level = excluded.experience_level,
			is_remote        = excluded.is_remote,
			updated_at       = excluded.updated_at
		RETURNING id, created_at = updated_at`,
		job.Title, job.Company, job.Location, job.Description, job.SalaryMin, job.SalaryMax,
		job.ApplyURL, job.Source, skills, job.ExperienceLevel, boolToInt(job.IsRemote),
		now, now,
	).Scan(&id, &created)
	if err != nil {
		return 0, false, fmt.Errorf("upserting job %q: %w", job.ApplyURL, err)
	}

	return id, created, nil
}

const jobColumns = `id, title, company, location, description, salary_min, salary_max,
	apply_url, source, skills, experience_level, is_remote, created_at, updated_at`

// QueryJobs returns one page of the filtered job set, ordered by id, plus
// the total filtered count. An out-of-range page yields an empty slice
// and the real total, never an error.
func (s *SQLiteStore) QueryJobs(ctx context.Context, f model.JobFilters, page, perPage int) ([]model.Job, int, error) {
	where, args := buildJobFilters(f)

	var total int
	countQuery := "SELECT COUNT(*) FROM jobs" + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting jobs: %w", err)
	}

	query := "SELECT " + jobColumns + " FROM jobs" + where + " ORDER BY id LIMIT ? OFFSET ?"
	rows, err := s.db.QueryContext(ctx, query, append(args, perPage, (page-1)*perPage)...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]model.Job, 0, perPage)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("querying jobs: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("querying jobs: %w", err)
	}

	return jobs, total, nil
}

// buildJobFilters assembles the WHERE clause for the optional filters.
// All supplied filters are ANDed together.
func buildJobFilters(f model.JobFilters) (string, []any) {
	var clauses []string
	var args []any

	if f.Keyword != "" {
		kw := "%" + strings.ToLower(f.Keyword) + "%"
		clauses = append(clauses, "(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)")
		args = append(args, kw, kw)
	}
	if f.Location != "" {
		clauses = append(clauses, "LOWER(location) LIKE ?")
		args = append(args, "%"+strings.ToLower(f.Location)+"%")
	}
	if f.MinSalary != nil {
		clauses = append(clauses, "salary_min IS NOT NULL AND salary_min >= ?")
		args = append(args, *f.MinSalary)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// GetJob returns the job with the given id, or model.ErrNotFound.
func (s *SQLiteStore) GetJob(ctx context.Context, id int64) (model.Job, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+jobColumns+" FROM jobs WHERE id = ?", id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Job{}, model.ErrNotFound
	}
	if err != nil {
		return model.Job{}, fmt.Errorf("getting job %d: %w", id, err)
	}
	return job, nil
}

// SavePreference upserts a user's preference record keyed by user_id.
func (s *SQLiteStore) SavePreference(ctx context.Context, pref model.UserPreference) error {
	now := time.Now().UTC()

	keywords, err := marshalStrings(pref.Keywords)
	if err != nil {
		return fmt.Errorf("saving preference for %q: %w", pref.UserID, err)
	}
	locations, err := marshalStrings(pref.PreferredLocations)
	if err != nil {
		return fmt.Errorf("saving preference for %q: %w", pref.UserID, err)
	}
	levels, err := marshalStrings(pref.ExperienceLevels)
	if err != nil {
		return fmt.Errorf("saving preference for %q: %w", pref.UserID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO user_preferences (user_id, keywords, preferred_locations, min_salary, max_salary,
		                              experience_levels, remote_only, email_notifications, push_notifications,
		                              created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			keywords            = excluded.keywords,
			preferred_locations = excluded.preferred_locations,
			min_salary          = excluded.min_salary,
			max_salary          = excluded.max_salary,
			experience_levels   = excluded.experience_levels,
			remote_only         = excluded.remote_only,
			email_notifications = excluded.email_notifications,
			push_notifications  = excluded.push_notifications,
			updated_at          = excluded.updated_at`,
		pref.UserID, keywords, locations, pref.MinSalary, pref.MaxSalary,
		levels, boolToInt(pref.RemoteOnly), boolToInt(pref.EmailNotifications), boolToInt(pref.PushNotifications),
		now, now,
	)
	if err != nil {
		return fmt.Errorf("saving preference for %q: %w", pref.UserID, err)
	}
	return nil
}

// GetPreference returns the preference for userID, or model.ErrNotFound.
func (s *SQLiteStore) GetPreference(ctx context.Context, userID string) (model.UserPreference, error) {
	var pref model.UserPreference
	var keywords, locations, levels sql.NullString
	var remoteOnly, email, push int

	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, keywords, preferred_locations, min_salary, max_salary,
		       experience_levels, remote_only, email_notifications, push_notifications,
		       created_at, updated_at
		FROM user_preferences WHERE user_id = ?`, userID,
	).Scan(&pref.ID, &pref.UserID, &keywords, &locations, &pref.MinSalary, &pref.MaxSalary,
		&levels, &remoteOnly, &email, &push, &pref.CreatedAt, &pref.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.UserPreference{}, model.ErrNotFound
	}
	if err != nil {
		return model.UserPreference{}, fmt.Errorf("getting preference for %q: %w", userID, err)
	}

	if pref.Keywords, err = unmarshalStrings(keywords); err != nil {
		return model.UserPreference{}, fmt.Errorf("getting preference for %q: %w", userID, err)
	}
	if pref.PreferredLocations, err = unmarshalStrings(locations); err != nil {
		return model.UserPreference{}, fmt.Errorf("getting preference for %q: %w", userID, err)
	}
	if pref.ExperienceLevels, err = unmarshalStrings(levels); err != nil {
		return model.UserPreference{}, fmt.Errorf("getting preference for %q: %w", userID, err)
	}
	pref.RemoteOnly = remoteOnly != 0
	pref.EmailNotifications = email != 0
	pref.PushNotifications = push != 0

	return pref, nil
}

// Ping reports store connectivity; used by the /health endpoint.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanJob(row scanner) (model.Job, error) {
	var job model.Job
	var location, description, source, level, skills sql.NullString
	var isRemote int

	err := row.Scan(&job.ID, &job.Title, &job.Company, &location, &description,
		&job.SalaryMin, &job.SalaryMax, &job.ApplyURL, &source, &skills,
		&level, &isRemote, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return model.Job{}, err
	}

	job.Location = location.String
	job.Description = description.String
	job.Source = source.String
	job.ExperienceLevel = level.String
	job.IsRemote = isRemote != 0
	if job.Skills, err = unmarshalStrings(skills); err != nil {
		return model.Job{}, err
	}

	return job, nil
}

// marshalStrings encodes a string slice as a JSON text column. nil maps
// to SQL NULL so un-enriched rows stay distinguishable from empty lists.
func marshalStrings(items []string) (any, error) {
	if items == nil {
		return nil, nil
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encoding string list: %w", err)
	}
	return string(data), nil
}

func unmarshalStrings(col sql.NullString) ([]string, error) {
	if !col.Valid || col.String == "" {
		return nil, nil
	}
	var items []string
	if err := json.Unmarshal([]byte(col.String), &items); err != nil {
		return nil, fmt.Errorf("decoding string list: %w", err)
	}
	return items, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
