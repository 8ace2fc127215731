package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adityawarmanfw/lokerhub/internal/filter"
	"github.com/adityawarmanfw/lokerhub/internal/model"
)

const (
	defaultPage    = 1
	defaultPerPage = 10
	maxPerPage     = 100

	// matchScanPageSize bounds how many jobs are pulled from the store
	// per round while scanning for preference matches.
	matchScanPageSize = 100
)

// jobListResponse is the pagination envelope for job listings.
type jobListResponse struct {
	Jobs    []model.Job `json:"jobs"`
	Total   int         `json:"total"`
	Page    int         `json:"page"`
	PerPage int         `json:"per_page"`
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "lokerhub API is running",
	})
}

// handleHealth reports liveness plus a store-connectivity indicator.
func (s *Server) handleHealth(c *gin.Context) {
	database := "connected"
	status := "healthy"
	if err := s.store.Ping(c.Request.Context()); err != nil {
		s.logger.Warn("store ping failed", "error", err)
		database = "unavailable"
		status = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"database":  database,
	})
}

// handleListJobs serves filtered, paginated reads over the store.
// Out-of-range pagination values are clamped rather than rejected.
func (s *Server) handleListJobs(c *gin.Context) {
	page, perPage := parsePagination(c)

	filters := model.JobFilters{
		Keyword:  c.Query("keyword"),
		Location: c.Query("location"),
	}
	if raw := c.Query("min_salary"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "min_salary must be an integer"})
			return
		}
		filters.MinSalary = &v
	}

	jobs, total, err := s.store.QueryJobs(c.Request.Context(), filters, page, perPage)
	if err != nil {
		s.logger.Error("job query failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query jobs"})
		return
	}

	c.JSON(http.StatusOK, jobListResponse{
		Jobs:    jobs,
		Total:   total,
		Page:    page,
		PerPage: perPage,
	})
}

func (s *Server) handleGetJob(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "job id must be an integer"})
		return
	}

	job, err := s.store.GetJob(c.Request.Context(), id)
	if errors.Is(err, model.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	if err != nil {
		s.logger.Error("job lookup failed", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load job"})
		return
	}

	c.JSON(http.StatusOK, job)
}

// preferencePayload is the writable subset of a user preference.
type preferencePayload struct {
	Keywords           []string `json:"keywords"`
	PreferredLocations []string `json:"preferred_locations"`
	MinSalary          *int64   `json:"min_salary"`
	MaxSalary          *int64   `json:"max_salary"`
	ExperienceLevels   []string `json:"experience_levels"`
	RemoteOnly         bool     `json:"remote_only"`
	EmailNotifications bool     `json:"email_notifications"`
	PushNotifications  bool     `json:"push_notifications"`
}

func (s *Server) handleSavePreference(c *gin.Context) {
	var payload preferencePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid preference payload: " + err.Error()})
		return
	}

	pref := model.UserPreference{
		UserID:             c.Param("user_id"),
		Keywords:           payload.Keywords,
		PreferredLocations: payload.PreferredLocations,
		MinSalary:          payload.MinSalary,
		MaxSalary:          payload.MaxSalary,
		ExperienceLevels:   payload.ExperienceLevels,
		RemoteOnly:         payload.RemoteOnly,
		EmailNotifications: payload.EmailNotifications,
		PushNotifications:  payload.PushNotifications,
	}

	if err := s.store.SavePreference(c.Request.Context(), pref); err != nil {
		s.logger.Error("preference save failed", "user_id", pref.UserID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save preferences"})
		return
	}

	saved, err := s.store.GetPreference(c.Request.Context(), pref.UserID)
	if err != nil {
		s.logger.Error("preference readback failed", "user_id", pref.UserID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load saved preferences"})
		return
	}

	c.JSON(http.StatusOK, saved)
}

func (s *Server) handleGetPreference(c *gin.Context) {
	userID := c.Param("user_id")

	pref, err := s.store.GetPreference(c.Request.Context(), userID)
	if errors.Is(err, model.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no preferences for user"})
		return
	}
	if err != nil {
		s.logger.Error("preference lookup failed", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load preferences"})
		return
	}

	c.JSON(http.StatusOK, pref)
}

// handleListMatches pages through the store and returns jobs satisfying
// the user's stored preference, in the same envelope as /jobs.
func (s *Server) handleListMatches(c *gin.Context) {
	userID := c.Param("user_id")
	page, perPage := parsePagination(c)

	pref, err := s.store.GetPreference(c.Request.Context(), userID)
	if errors.Is(err, model.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no preferences for user"})
		return
	}
	if err != nil {
		s.logger.Error("preference lookup failed", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load preferences"})
		return
	}

	var matched []model.Job
	for scanPage := 1; ; scanPage++ {
		jobs, _, err := s.store.QueryJobs(c.Request.Context(), model.JobFilters{}, scanPage, matchScanPageSize)
		if err != nil {
			s.logger.Error("match scan failed", "user_id", userID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query jobs"})
			return
		}
		for _, job := range jobs {
			if filter.MatchesPreference(job, pref) {
				matched = append(matched, job)
			}
		}
		if len(jobs) < matchScanPageSize {
			break
		}
	}

	if matched == nil {
		matched = []model.Job{}
	}

	total := len(matched)
	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}

	c.JSON(http.StatusOK, jobListResponse{
		Jobs:    matched[start:end],
		Total:   total,
		Page:    page,
		PerPage: perPage,
	})
}

// parsePagination reads page/per_page, applying defaults and clamping
// out-of-range values into page >= 1 and 1 <= per_page <= 100.
func parsePagination(c *gin.Context) (page, perPage int) {
	page = defaultPage
	if raw := c.Query("page"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			page = v
		}
	}
	if page < 1 {
		page = 1
	}

	perPage = defaultPerPage
	if raw := c.Query("per_page"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			perPage = v
		}
	}
	if perPage < 1 {
		perPage = 1
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	return page, perPage
}
