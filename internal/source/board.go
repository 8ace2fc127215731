package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/adityawarmanfw/lokerhub/internal/model"
)

// boardPosting represents a single job in a JSON board API response.
type boardPosting struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Description string `json:"description"`
	SalaryMin   *int64 `json:"salary_min"`
	SalaryMax   *int64 `json:"salary_max"`
	ApplyURL    string `json:"apply_url"`
}

// boardResponse is the enveloped variant of a board API response.
type boardResponse struct {
	Jobs []boardPosting `json:"jobs"`
}

// BoardSource fetches postings from a JSON board API endpoint. The
// endpoint may return either a bare array of postings or an object with
// a "jobs" array.
type BoardSource struct {
	name   string
	url    string
	client *http.Client
}

// NewBoardSource creates an adapter for a JSON board endpoint.
func NewBoardSource(name, url string, client *http.Client) *BoardSource {
	return &BoardSource{
		name:   name,
		url:    url,
		client: client,
	}
}

// Fetch retrieves the board listing and normalizes it into raw postings.
// Entries without a title or apply link are skipped.
func (s *BoardSource) Fetch(ctx context.Context) ([]model.RawPosting, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("board fetch for %s: %w", s.name, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("board fetch for %s: %w", s.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("board fetch for %s: unexpected status %d", s.name, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("board fetch for %s: %w", s.name, err)
	}

	raw, err := decodeBoardBody(body)
	if err != nil {
		return nil, fmt.Errorf("board fetch for %s: %w", s.name, err)
	}

	postings := make([]model.RawPosting, 0, len(raw))
	for _, bp := range raw {
		if bp.Title == "" || bp.ApplyURL == "" {
			continue
		}
		postings = append(postings, model.RawPosting{
			Title:       bp.Title,
			Company:     orUnknown(bp.Company),
			Location:    orUnknown(bp.Location),
			Description: extractText(bp.Description),
			SalaryMin:   bp.SalaryMin,
			SalaryMax:   bp.SalaryMax,
			ApplyURL:    bp.ApplyURL,
		})
	}

	return postings, nil
}

// decodeBoardBody accepts both response shapes: a bare JSON array or an
// object enveloping a "jobs" array.
func decodeBoardBody(body []byte) ([]boardPosting, error) {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var arr []boardPosting
		if err := json.Unmarshal(trimmed, &arr); err != nil {
			return nil, fmt.Errorf("decode listing array: %w", err)
		}
		return arr, nil
	}

	var env boardResponse
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("decode listing object: %w", err)
	}
	return env.Jobs, nil
}
