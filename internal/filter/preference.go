package filter

import (
	"strings"

	"github.com/adityawarmanfw/lokerhub/internal/model"
)

// MatchesPreference reports whether a job satisfies a user's stored
// search preference. Every populated criterion must hold; empty
// criteria are treated as "match all". Matching is case-insensitive
// substring, consistent with the query API filters.
func MatchesPreference(job model.Job, pref model.UserPreference) bool {
	if len(pref.Keywords) > 0 && !matchesAnyKeyword(job, pref.Keywords) {
		return false
	}

	if len(pref.PreferredLocations) > 0 {
		locationLower := strings.ToLower(job.Location)
		matched := false
		for _, loc := range pref.PreferredLocations {
			if strings.Contains(locationLower, strings.ToLower(loc)) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if pref.MinSalary != nil {
		if job.SalaryMin == nil || *job.SalaryMin < *pref.MinSalary {
			return false
		}
	}
	if pref.MaxSalary != nil {
		if job.SalaryMax == nil || *job.SalaryMax > *pref.MaxSalary {
			return false
		}
	}

	if len(pref.ExperienceLevels) > 0 {
		matched := false
		for _, level := range pref.ExperienceLevels {
			if strings.EqualFold(job.ExperienceLevel, level) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if pref.RemoteOnly && !job.IsRemote {
		return false
	}

	return true
}

// matchesAnyKeyword checks the job's title and description for any of
// the preference keywords.
func matchesAnyKeyword(job model.Job, keywords []string) bool {
	titleLower := strings.ToLower(job.Title)
	descLower := strings.ToLower(job.Description)
	for _, kw := range keywords {
		kwLower := strings.ToLower(kw)
		if strings.Contains(titleLower, kwLower) || strings.Contains(descLower, kwLower) {
			return true
		}
	}
	return false
}
