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

type LoadFeedTask struct {
	Task
	FeedConfig  *feed.Config
	fetcher     Fetcher
	parser      feed.FormatParser
	feedRepo    database.FeedRepository
	articleRepo database.ArticleRepository
	callback    Callback
}

func NewLoadFeedTask(feedName string, feedConfig *feed.Config, fetcher Fetcher, parser feed.FormatParser,
	feedRepo database.FeedRepository, articleRepo database.ArticleRepository, callback Callback) *LoadFeedTask {
	if callback == nil {
		callback = LogCallback{}
	}

	return &LoadFeedTask{
		Task:        NewTask(TaskTypeLoadFeed, feedName),
		FeedConfig:  feedConfig,
		fetcher:     fetcher,
		parser:      parser,
		feedRepo:    feedRepo,
		articleRepo: articleRepo,
		callback:    callback,
	}
}

func (t *LoadFeedTask) Execute(ctx context.Context) error {
	if err := checkCanceled(ctx); err != nil {
		return err
	}

	if !t.FeedConfig.Settings.Enabled {
		slog.Debug("Feed disabled, skipping", "feed", t.FeedName)
		return nil
	}

	t.callback.OnPreLoad(t.FeedName)

	data, err := t.fetchFeed(ctx)
	if err != nil {
		t.callback.OnLoadFailed(t.FeedName, err)
		return fmt.Errorf("failed to fetch feed: %w", err)
	}

	parsed := t.parser.Parse(data)

	if err := t.storeChannel(parsed.Channel); err != nil {
		return fmt.Errorf("failed to store feed metadata: %w", err)
	}

	duplicateCount := 0
	newCount := 0

	for _, article := range parsed.Articles {
		isDuplicate, err := t.articleRepo.CheckDuplicate(t.FeedName, article.ID)
		if err != nil {
			return fmt.Errorf("failed to check for duplicates: %w", err)
		}
		if isDuplicate {
			duplicateCount++
			continue
		}

		if err := t.articleRepo.UpsertArticle(ToDatabaseArticle(t.FeedName, article)); err != nil {
			return fmt.Errorf("failed to store article: %w", err)
		}
		newCount++
	}

	t.callback.OnLoaded(t.FeedName, parsed)

	slog.Info("Task completed",
		"type", t.GetType(),
		"feed", t.FeedName,
		"duration", t.GetDuration(),
		"total", len(parsed.Articles),
		"duplicates", duplicateCount,
		"new", newCount)

	return nil
}

func (t *LoadFeedTask) fetchFeed(ctx context.Context) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, t.FeedConfig.Settings.GetTimeout())
	defer cancel()

	return t.fetcher.Fetch(timeoutCtx, RequestFor(t.FeedConfig))
}

func (t *LoadFeedTask) storeChannel(channel feed.Channel) error {
	nextFetch := time.Now().UTC().Add(t.FeedConfig.Settings.GetRefreshInterval())

	metadata := database.FeedMetadata{
		Title:       channel.Title,
		Description: channel.Description,
		Link:        channel.Link,
		ImageURL:    channel.Image,
		Language:    channel.Language,
		Encoding:    channel.Encoding,
	}

	return t.feedRepo.UpdateFeedMetadata(t.FeedName, metadata, nextFetch)
}

// RequestFor builds the download request described by a feed config.
func RequestFor(feedConfig *feed.Config) fetch.Request {
	return fetch.Request{
		URL:        feedConfig.URL,
		Search:     feedConfig.Request.Search,
		Page:       feedConfig.Request.Page,
		Individual: feedConfig.Request.Individual,
		SkipCache:  feedConfig.Settings.SkipCache,
	}
}

// RequestURL identifies the feed's download without its page number.
func RequestURL(feedConfig *feed.Config) string {
	return fetch.ToSafeURL(RequestFor(feedConfig))
}

func ToDatabaseArticle(feedName string, article feed.Article) database.Article {
	dbArticle := database.Article{
		FeedName:    feedName,
		ArticleID:   article.ID,
		Title:       article.Title,
		Description: article.Description,
		Content:     article.Content,
		ImageURL:    article.Image,
		Source:      article.Source,
		Comments:    article.Comments,
		Author:      article.Author,
		Tags:        article.Tags,
	}

	if !article.Date.IsZero() {
		publishedAt := article.Date.UTC()
		dbArticle.PublishedAt = &publishedAt
	}

	if article.Enclosure != nil {
		dbArticle.EnclosureURL = article.Enclosure.URL
		dbArticle.EnclosureLength = article.Enclosure.Length
		dbArticle.EnclosureType = article.Enclosure.MimeType
	}

	return dbArticle
}
