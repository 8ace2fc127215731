package notifier

import (
	"log/slog"

	"github.com/adityawarmanfw/lokerhub/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes newly ingested jobs to the given logger as
// structured messages.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each new job via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// SendTestMessage pushes one dummy job through the notifier so the
// integration can be verified without running an ingest.
func SendTestMessage(n model.Notifier) error {
	min, max := int64(10000000), int64(20000000)
	testJob := model.Job{
		Title:           "Test Notification",
		Company:         "LokerHub",
		Location:        "Jakarta",
		SalaryMin:       &min,
		SalaryMax:       &max,
		ApplyURL:        "https://example.com/test",
		Source:          "test",
		Skills:          []string{"go"},
		ExperienceLevel: model.ExperienceMid,
	}
	return n.Notify([]model.Job{testJob})
}

// Notify logs each job with its headline fields. Returns nil (stdout
// logging does not fail).
func (n *LogNotifier) Notify(jobs []model.Job) error {
	for _, j := range jobs {
		args := []any{"company", j.Company, "title", j.Title, "location", j.Location, "url", j.ApplyURL, "source", j.Source}
		if j.SalaryMin != nil {
			args = append(args, "salary_min", *j.SalaryMin)
		}
		n.logger.Info("new job", args...)
	}
	return nil
}
