package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/rss-pull/app/database"
	"github.com/lysyi3m/rss-pull/app/feed"
	"github.com/lysyi3m/rss-pull/app/fetch"
)

type ExtractContentTask struct {
	Task
	FeedConfig  *feed.Config
	fetcher     Fetcher
	extractor   Extractor
	articleRepo database.ArticleRepository
}

func NewExtractContentTask(feedName string, feedConfig *feed.Config, fetcher Fetcher, extractor Extractor, articleRepo database.ArticleRepository) *ExtractContentTask {
	return &ExtractContentTask{
		Task:        NewTask(TaskTypeExtractContent, feedName),
		FeedConfig:  feedConfig,
		fetcher:     fetcher,
		extractor:   extractor,
		articleRepo: articleRepo,
	}
}

func (t *ExtractContentTask) Execute(ctx context.Context) error {
	if err := checkCanceled(ctx); err != nil {
		return err
	}

	if !t.FeedConfig.Settings.ExtractContent {
		slog.Debug("Content extraction disabled for feed", "feed", t.FeedName)
		return nil
	}

	articles, err := t.articleRepo.GetArticlesForExtraction(t.FeedName, t.FeedConfig.Settings.MaxItems)
	if err != nil {
		return fmt.Errorf("failed to get articles for content extraction: %w", err)
	}

	if len(articles) == 0 {
		slog.Debug("No articles need content extraction", "feed", t.FeedName)
		return nil
	}

	successCount := 0
	errorCount := 0

	for _, article := range articles {
		if err := checkCanceled(ctx); err != nil {
			return err
		}

		if err := t.extractArticle(ctx, article); err != nil {
			// Left pending, the next run tries again.
			slog.Error("Failed to extract content for article", "article_id", article.ArticleID, "url", article.Source, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"feed", t.FeedName,
		"duration", t.GetDuration(),
		"success", successCount,
		"errors", errorCount)

	return nil
}

func (t *ExtractContentTask) extractArticle(ctx context.Context, article database.ArticleForExtraction) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, t.FeedConfig.Settings.GetTimeout())
	defer cancel()

	page, err := t.fetcher.Fetch(timeoutCtx, fetch.Request{URL: article.Source, SkipCache: t.FeedConfig.Settings.SkipCache})
	if err != nil {
		return fmt.Errorf("failed to fetch article page: %w", err)
	}

	content, err := t.extractor.Run(page, article.Source)
	if err != nil {
		return fmt.Errorf("failed to extract content: %w", err)
	}

	if err := t.articleRepo.UpdateExtractedContent(t.FeedName, article.ArticleID, content, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to update extracted content: %w", err)
	}

	slog.Debug("Content extracted successfully", "article_id", article.ArticleID, "url", article.Source, "content_length", len(content))
	return nil
}
