package feed

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/mmcdole/gofeed"
	"github.com/mxchestnut/workshelf/internal/api"
	"github.com/mxchestnut/workshelf/internal/config"
	"github.com/mxchestnut/workshelf/pkg/models"
)

// Assembler builds the activity feed: platform entries merged with posts
// from followed authors' RSS feeds, newest first.
type Assembler struct {
	client *api.Client
	parser *gofeed.Parser
	feeds  []config.AuthorFeed
	logger *log.Logger
}

func NewAssembler(client *api.Client, feeds []config.AuthorFeed, logger *log.Logger) *Assembler {
	return &Assembler{
		client: client,
		parser: gofeed.NewParser(),
		feeds:  feeds,
		logger: logger,
	}
}

// Assemble fetches the platform feed and merges in author RSS items. A
// failing RSS feed is logged and skipped so one dead blog never breaks the
// page; a failing platform feed is an error.
func (a *Assembler) Assemble(ctx context.Context) ([]models.FeedEntry, error) {
	entries, err := a.client.Feed(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading platform feed: %w", err)
	}

	for _, af := range a.feeds {
		items, err := a.fetchAuthorFeed(ctx, af)
		if err != nil {
			a.logger.Printf("feed: skipping %s: %v", af.URL, err)
			continue
		}
		entries = append(entries, items...)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].PublishedAt.After(entries[j].PublishedAt)
	})
	return entries, nil
}

func (a *Assembler) fetchAuthorFeed(ctx context.Context, af config.AuthorFeed) ([]models.FeedEntry, error) {
	parsed, err := a.parser.ParseURLWithContext(af.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}

	name := af.Name
	if name == "" {
		name = parsed.Title
	}

	var entries []models.FeedEntry
	for _, item := range parsed.Items {
		if item.PublishedParsed == nil {
			continue
		}
		entries = append(entries, models.FeedEntry{
			ID:          item.GUID,
			Kind:        "author_post",
			Author:      name,
			Title:       item.Title,
			Body:        item.Description,
			URL:         item.Link,
			PublishedAt: *item.PublishedParsed,
		})
	}
	return entries, nil
}
