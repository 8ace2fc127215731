package store

import (
	"context"

	"github.com/adityawarmanfw/lokerhub/internal/model"
)

// NopStore is a no-op store used in dry-run mode. Upserts report every
// job as newly created and nothing is persisted.
type NopStore struct{}

func NewNopStore() *NopStore { return &NopStore{} }

func (s *NopStore) UpsertJob(ctx context.Context, job model.Job) (int64, bool, error) {
	return 0, true, nil
}

func (s *NopStore) QueryJobs(ctx context.Context, f model.JobFilters, page, perPage int) ([]model.Job, int, error) {
	return nil, 0, nil
}

func (s *NopStore) GetJob(ctx context.Context, id int64) (model.Job, error) {
	return model.Job{}, model.ErrNotFound
}

func (s *NopStore) SavePreference(ctx context.Context, pref model.UserPreference) error {
	return nil
}

func (s *NopStore) GetPreference(ctx context.Context, userID string) (model.UserPreference, error) {
	return model.UserPreference{}, model.ErrNotFound
}

func (s *NopStore) Ping(ctx context.Context) error { return nil }
