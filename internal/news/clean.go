package news

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"sentiment-trading/internal/types"
)

// CleanHTML strips markup from feed and page fragments and collapses
// whitespace. Input that fails to parse is returned whitespace-collapsed.
func CleanHTML(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return collapse(fragment)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return collapse(fragment)
	}
	doc.Find("script, style, noscript").Remove()
	return collapse(doc.Text())
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// matchesQuery is a case-insensitive substring test over title and content.
// An empty query matches everything.
func matchesQuery(article types.Article, query string) bool {
	query = strings.TrimSpace(query)
	if query == "" {
		return true
	}
	text := strings.ToLower(article.Title + " " + article.Content)
	return strings.Contains(text, strings.ToLower(query))
}
