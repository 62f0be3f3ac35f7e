package newsobs

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"sentiment-trading/internal/interfaces"
	"sentiment-trading/internal/logger"
	"sentiment-trading/internal/trace"
	"sentiment-trading/internal/types"
)

type observableSource struct {
	source interfaces.ArticleSource
}

var _ interfaces.ArticleSource = (*observableSource)(nil)

func Wrap(source interfaces.ArticleSource) interfaces.ArticleSource {
	return &observableSource{
		source: source,
	}
}

func (o *observableSource) Name() string {
	return o.source.Name()
}

func (o *observableSource) Fetch(ctx context.Context, query string, maxArticles int) ([]types.Article, error) {
	ctx, span := trace.StartProviderSpan(ctx, "news.Fetch", o.source.Name(),
		trace.QueryKey.String(query),
		attribute.Int("max_articles", maxArticles),
	)

	logger.DebugSkip(ctx, 1, "Fetching articles",
		"source", o.source.Name(),
		"query", query,
		"max_articles", maxArticles,
	)

	articles, err := o.source.Fetch(ctx, query, maxArticles)
	trace.EndProviderSpan(span, len(articles), err)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Article fetch failed", err,
			"source", o.source.Name(),
			"query", query,
		)
		return nil, err
	}

	logger.InfoSkip(ctx, 1, "Article fetch completed",
		"source", o.source.Name(),
		"query", query,
		"articles", len(articles),
	)

	return articles, nil
}
