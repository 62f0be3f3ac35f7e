package news

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
	"github.com/gocolly/colly/v2"

	"sentiment-trading/internal/interfaces"
	"sentiment-trading/internal/logger"
	"sentiment-trading/internal/types"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// minContentLength is the listing snippet size below which the article page
// itself is fetched
const minContentLength = 100

// Site describes one scraped news site
type Site struct {
	Name       string
	BaseURL    string
	SearchPath string // e.g. "/tag/{query}/"
	Selectors  ArticleSelectors
	Delay      time.Duration
}

// ArticleSelectors are the CSS selectors for one listing page
type ArticleSelectors struct {
	ArticleContainer string
	Title            string
	URL              string
	Content          string
	PublishedAt      string // element carrying a datetime attribute or RFC3339 text
}

// Scraper pulls article listings from news sites with colly
type Scraper struct {
	sites   []Site
	timeout time.Duration
	enrich  bool
}

var _ interfaces.ArticleSource = (*Scraper)(nil)

// NewScraper scrapes sites, or DefaultSites when none are given. With enrich
// set, short listing snippets are replaced by the readable article body.
func NewScraper(sites []Site, timeout time.Duration, enrich bool) *Scraper {
	if len(sites) == 0 {
		sites = DefaultSites()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Scraper{sites: sites, timeout: timeout, enrich: enrich}
}

// DefaultSites returns crypto news sites with listing selectors
func DefaultSites() []Site {
	return []Site{
		{
			Name:       "CoinDesk",
			BaseURL:    "https://www.coindesk.com",
			SearchPath: "/search?s={query}",
			Selectors: ArticleSelectors{
				ArticleContainer: "div.searchResults div.flex",
				Title:            "h6",
				URL:              "a",
				Content:          "p",
				PublishedAt:      "time",
			},
			Delay: 2 * time.Second,
		},
		{
			Name:       "CoinTelegraph",
			BaseURL:    "https://cointelegraph.com",
			SearchPath: "/tags/{query}",
			Selectors: ArticleSelectors{
				ArticleContainer: "article.post-card-inline",
				Title:            "span.post-card-inline__title",
				URL:              "a.post-card-inline__title-link",
				Content:          "p.post-card-inline__text",
				PublishedAt:      "time",
			},
			Delay: 2 * time.Second,
		},
		{
			Name:       "Decrypt",
			BaseURL:    "https://decrypt.co",
			SearchPath: "/search?q={query}",
			Selectors: ArticleSelectors{
				ArticleContainer: "article",
				Title:            "h3",
				URL:              "a",
				Content:          "p",
				PublishedAt:      "time",
			},
			Delay: 2 * time.Second,
		},
	}
}

func (s *Scraper) Name() string { return "scrape" }

// Fetch splits maxArticles evenly across sites. A failing site is logged and
// skipped; Fetch fails only when every site fails.
func (s *Scraper) Fetch(ctx context.Context, query string, maxArticles int) ([]types.Article, error) {
	// perSite 0 means unlimited
	perSite := 0
	if maxArticles > 0 {
		perSite = max(maxArticles/len(s.sites), 1)
	}

	all := []types.Article{}
	var lastErr error
	failed := 0

	for _, site := range s.sites {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		articles, err := s.scrapeSite(ctx, site, query, perSite)
		if err != nil {
			logger.ErrorWithErr(ctx, "Failed to scrape site", err, "site", site.Name, "query", query)
			lastErr = err
			failed++
			continue
		}
		all = append(all, articles...)
	}

	if failed == len(s.sites) {
		return nil, fmt.Errorf("all %d sites failed: %w", failed, lastErr)
	}
	return all, nil
}

func (s *Scraper) scrapeSite(ctx context.Context, site Site, query string, maxArticles int) ([]types.Article, error) {
	articles := []types.Article{}

	c := colly.NewCollector(
		colly.AllowedDomains(getDomain(site.BaseURL)),
		colly.MaxDepth(1),
		colly.UserAgent(userAgent),
	)
	c.SetRequestTimeout(s.timeout)
	if site.Delay > 0 {
		if err := c.Limit(&colly.LimitRule{DomainGlob: "*", Parallelism: 1, Delay: site.Delay}); err != nil {
			return nil, fmt.Errorf("invalid limit rule for %s: %w", site.Name, err)
		}
	}

	c.OnHTML(site.Selectors.ArticleContainer, func(e *colly.HTMLElement) {
		if maxArticles > 0 && len(articles) >= maxArticles {
			return
		}

		title := collapse(e.ChildText(site.Selectors.Title))
		if title == "" {
			return
		}

		articleURL := e.ChildAttr(site.Selectors.URL, "href")
		if articleURL == "" {
			return
		}
		if !strings.HasPrefix(articleURL, "http") {
			articleURL = strings.TrimRight(site.BaseURL, "/") + "/" + strings.TrimLeft(articleURL, "/")
		}

		articles = append(articles, types.Article{
			Title:     title,
			Content:   collapse(e.ChildText(site.Selectors.Content)),
			Source:    site.Name,
			Timestamp: publishedAt(e, site.Selectors.PublishedAt),
			URL:       articleURL,
		})
	})

	var visitErr error
	c.OnError(func(r *colly.Response, err error) {
		visitErr = err
		logger.ErrorWithErr(ctx, "Scraping error", err, "site", site.Name, "url", r.Request.URL.String(), "status", r.StatusCode)
	})

	searchURL := strings.TrimRight(site.BaseURL, "/") +
		strings.ReplaceAll(site.SearchPath, "{query}", url.PathEscape(strings.ToLower(query)))

	if err := c.Visit(searchURL); err != nil {
		return nil, fmt.Errorf("failed to visit %s: %w", searchURL, err)
	}
	c.Wait()

	if visitErr != nil && len(articles) == 0 {
		return nil, fmt.Errorf("failed to scrape %s: %w", searchURL, visitErr)
	}

	if s.enrich {
		s.enrichArticles(ctx, articles)
	}
	return articles, nil
}

// enrichArticles replaces short snippets with the article body in place
func (s *Scraper) enrichArticles(ctx context.Context, articles []types.Article) {
	for i := range articles {
		if len(articles[i].Content) >= minContentLength || ctx.Err() != nil {
			continue
		}

		page, err := readability.FromURL(articles[i].URL, s.timeout)
		if err != nil {
			logger.Warn(ctx, "Failed to fetch article body", "url", articles[i].URL, "error", err)
			continue
		}
		if body := collapse(page.TextContent); body != "" {
			articles[i].Content = body
		}
	}
}

func publishedAt(e *colly.HTMLElement, selector string) int64 {
	if selector == "" {
		return 0
	}
	raw := e.ChildAttr(selector, "datetime")
	if raw == "" {
		raw = strings.TrimSpace(e.ChildText(selector))
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.Unix()
	}
	return 0
}

func getDomain(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
