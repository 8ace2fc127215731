package source

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mmcdole/gofeed"

	"github.com/adityawarmanfw/lokerhub/internal/model"
)

// FeedSource fetches postings from an RSS/Atom job feed.
type FeedSource struct {
	name   string
	url    string
	parser *gofeed.Parser
}

// NewFeedSource creates an adapter for an RSS/Atom feed. The given client
// bounds the fetch timeout.
func NewFeedSource(name, url string, client *http.Client) *FeedSource {
	parser := gofeed.NewParser()
	parser.Client = client
	return &FeedSource{
		name:   name,
		url:    url,
		parser: parser,
	}
}

// Fetch retrieves the feed and normalizes its items into raw postings.
// Items without a title or link are skipped; feeds rarely carry a
// location, so it degrades to "Unknown".
func (s *FeedSource) Fetch(ctx context.Context) ([]model.RawPosting, error) {
	feed, err := s.parser.ParseURLWithContext(s.url, ctx)
	if err != nil {
		return nil, fmt.Errorf("feed fetch for %s: %w", s.name, err)
	}

	postings := make([]model.RawPosting, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Title == "" || item.Link == "" {
			continue
		}

		company := ""
		if item.Author != nil {
			company = item.Author.Name
		}

		description := item.Content
		if description == "" {
			description = item.Description
		}

		postings = append(postings, model.RawPosting{
			Title:       item.Title,
			Company:     orUnknown(company),
			Location:    "Unknown",
			Description: extractText(description),
			ApplyURL:    item.Link,
		})
	}

	return postings, nil
}
