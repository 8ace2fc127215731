package filter

import (
	"testing"

	"github.com/adityawarmanfw/lokerhub/internal/model"
)

func int64p(v int64) *int64 { return &v }

func sampleJob() model.Job {
	return model.Job{
		Title:           "Senior Backend Developer",
		Company:         "Tech Startup Indonesia",
		Location:        "Jakarta, Indonesia",
		Description:     "Backend services with Python and PostgreSQL",
		SalaryMin:       int64p(15000000),
		SalaryMax:       int64p(25000000),
		ExperienceLevel: model.ExperienceSenior,
		IsRemote:        false,
	}
}

func TestMatchesPreference(t *testing.T) {
	tests := []struct {
		name string
		pref model.UserPreference
		want bool
	}{
		{
			name: "empty preference matches all",
			pref: model.UserPreference{},
			want: true,
		},
		{
			name: "keyword in title",
			pref: model.UserPreference{Keywords: []string{"backend"}},
			want: true,
		},
		{
			name: "keyword in description only",
			pref: model.UserPreference{Keywords: []string{"postgresql"}},
			want: true,
		},
		{
			name: "keyword absent",
			pref: model.UserPreference{Keywords: []string{"flutter"}},
			want: false,
		},
		{
			name: "location substring case-insensitive",
			pref: model.UserPreference{PreferredLocations: []string{"jakarta"}},
			want: true,
		},
		{
			name: "location mismatch",
			pref: model.UserPreference{PreferredLocations: []string{"Bandung"}},
			want: false,
		},
		{
			name: "min salary satisfied",
			pref: model.UserPreference{MinSalary: int64p(12000000)},
			want: true,
		},
		{
			name: "min salary too high",
			pref: model.UserPreference{MinSalary: int64p(20000000)},
			want: false,
		},
		{
			name: "max salary exceeded",
			pref: model.UserPreference{MaxSalary: int64p(20000000)},
			want: false,
		},
		{
			name: "experience level match",
			pref: model.UserPreference{ExperienceLevels: []string{"mid", "senior"}},
			want: true,
		},
		{
			name: "experience level mismatch",
			pref: model.UserPreference{ExperienceLevels: []string{"junior"}},
			want: false,
		},
		{
			name: "remote only rejects on-site",
			pref: model.UserPreference{RemoteOnly: true},
			want: false,
		},
		{
			name: "all criteria conjoined",
			pref: model.UserPreference{
				Keywords:           []string{"backend"},
				PreferredLocations: []string{"Indonesia"},
				MinSalary:          int64p(10000000),
				ExperienceLevels:   []string{"senior"},
			},
			want: true,
		},
		{
			name: "one failing criterion rejects",
			pref: model.UserPreference{
				Keywords:           []string{"backend"},
				PreferredLocations: []string{"Indonesia"},
				RemoteOnly:         true,
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchesPreference(sampleJob(), tt.pref); got != tt.want {
				t.Errorf("MatchesPreference = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchesPreference_MinSalaryRequiresPresence(t *testing.T) {
	job := sampleJob()
	job.SalaryMin = nil
	job.SalaryMax = nil

	pref := model.UserPreference{MinSalary: int64p(1)}
	if MatchesPreference(job, pref) {
		t.Error("job without salary must not satisfy a min_salary preference")
	}
}
