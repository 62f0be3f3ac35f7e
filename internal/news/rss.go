package news

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"sentiment-trading/internal/interfaces"
	"sentiment-trading/internal/logger"
	"sentiment-trading/internal/types"
)

// DefaultFeeds are crypto market news feeds used when none are configured
var DefaultFeeds = []string{
	"https://www.coindesk.com/arc/outboundfeeds/rss/",
	"https://cointelegraph.com/rss",
	"https://decrypt.co/feed",
}

// RSSSource reads articles from RSS/Atom feeds
type RSSSource struct {
	feeds  []string
	parser *gofeed.Parser
}

var _ interfaces.ArticleSource = (*RSSSource)(nil)

// NewRSSSource keeps only http(s) feed URLs
func NewRSSSource(feeds []string, timeout time.Duration) *RSSSource {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	valid := make([]string, 0, len(feeds))
	for _, feed := range feeds {
		if strings.HasPrefix(feed, "http://") || strings.HasPrefix(feed, "https://") {
			valid = append(valid, feed)
		}
	}

	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}
	parser.UserAgent = userAgent

	return &RSSSource{feeds: valid, parser: parser}
}

func (r *RSSSource) Name() string { return "rss" }

// Fetch reads every feed in order until maxArticles matching items are
// collected. A failing feed is logged and skipped; Fetch fails only when
// every feed fails.
func (r *RSSSource) Fetch(ctx context.Context, query string, maxArticles int) ([]types.Article, error) {
	articles := []types.Article{}
	var lastErr error
	failed := 0

	for _, feedURL := range r.feeds {
		if maxArticles > 0 && len(articles) >= maxArticles {
			break
		}

		items, err := r.fetchFeed(ctx, feedURL)
		if err != nil {
			logger.ErrorWithErr(ctx, "Failed to read feed", err, "feed", feedURL)
			lastErr = err
			failed++
			continue
		}

		for _, a := range items {
			if maxArticles > 0 && len(articles) >= maxArticles {
				break
			}
			if matchesQuery(a, query) {
				articles = append(articles, a)
			}
		}
	}

	if len(r.feeds) > 0 && failed == len(r.feeds) {
		return nil, fmt.Errorf("all %d feeds failed: %w", failed, lastErr)
	}
	return articles, nil
}

func (r *RSSSource) fetchFeed(ctx context.Context, feedURL string) ([]types.Article, error) {
	feed, err := r.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed %s: %w", feedURL, err)
	}

	source := strings.TrimSpace(feed.Title)
	if source == "" {
		source = r.Name()
	}

	articles := make([]types.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		title := CleanHTML(item.Title)
		if title == "" {
			continue
		}

		content := item.Description
		if content == "" {
			content = item.Content
		}

		var ts int64
		switch {
		case item.PublishedParsed != nil:
			ts = item.PublishedParsed.Unix()
		case item.UpdatedParsed != nil:
			ts = item.UpdatedParsed.Unix()
		}

		articles = append(articles, types.Article{
			Title:     title,
			Content:   CleanHTML(content),
			Source:    source,
			Timestamp: ts,
			URL:       item.Link,
		})
	}
	return articles, nil
}
