package source

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/adityawarmanfw/lokerhub/internal/config"
	"github.com/adityawarmanfw/lokerhub/internal/model"
)

// Defaults match the common job-card markup; per-source overrides come
// from config because selectors are site-specific and brittle.
var defaultSelectors = config.CardSelectors{
	Card:        "div.job-card",
	Title:       "h2.title",
	Company:     "span.company",
	Location:    "span.location",
	Description: "div.description",
	Link:        "a.apply",
}

// HTMLCardSource scrapes postings from a listing page that renders one
// card element per job.
type HTMLCardSource struct {
	name      string
	url       string
	selectors config.CardSelectors
	client    *http.Client
}

// NewHTMLCardSource creates an adapter for an HTML card page. Empty
// selector fields fall back to the defaults.
func NewHTMLCardSource(name, url string, selectors config.CardSelectors, client *http.Client) *HTMLCardSource {
	return &HTMLCardSource{
		name:      name,
		url:       url,
		selectors: fillSelectors(selectors),
		client:    client,
	}
}

func fillSelectors(s config.CardSelectors) config.CardSelectors {
	if s.Card == "" {
		s.Card = defaultSelectors.Card
	}
	if s.Title == "" {
		s.Title = defaultSelectors.Title
	}
	if s.Company == "" {
		s.Company = defaultSelectors.Company
	}
	if s.Location == "" {
		s.Location = defaultSelectors.Location
	}
	if s.Description == "" {
		s.Description = defaultSelectors.Description
	}
	if s.Link == "" {
		s.Link = defaultSelectors.Link
	}
	return s
}

// Fetch retrieves the page and extracts one posting per card. Cards
// without a title or apply link are skipped. Zero cards is a legitimate
// degraded outcome (the site's markup may have changed), not an error.
func (s *HTMLCardSource) Fetch(ctx context.Context) ([]model.RawPosting, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("html fetch for %s: %w", s.name, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("html fetch for %s: %w", s.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("html fetch for %s: unexpected status %d", s.name, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("html fetch for %s: %w", s.name, err)
	}

	var postings []model.RawPosting
	doc.Find(s.selectors.Card).Each(func(_ int, card *goquery.Selection) {
		title := strings.TrimSpace(card.Find(s.selectors.Title).Text())
		link, _ := card.Find(s.selectors.Link).Attr("href")
		if title == "" || link == "" {
			return
		}

		postings = append(postings, model.RawPosting{
			Title:       title,
			Company:     orUnknown(card.Find(s.selectors.Company).Text()),
			Location:    orUnknown(card.Find(s.selectors.Location).Text()),
			Description: strings.Join(strings.Fields(card.Find(s.selectors.Description).Text()), " "),
			ApplyURL:    link,
		})
	})

	return postings, nil
}
