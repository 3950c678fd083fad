package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/rss-pull/app/database"
	"github.com/lysyi3m/rss-pull/app/feed"
)

type SyncFeedConfigTask struct {
	Task
	FeedConfig *feed.Config
	feedRepo   database.FeedRepository
}

func NewSyncFeedConfigTask(feedName string, feedConfig *feed.Config, feedRepo database.FeedRepository) *SyncFeedConfigTask {
	return &SyncFeedConfigTask{
		Task:       NewTask(TaskTypeSyncFeedConfig, feedName),
		FeedConfig: feedConfig,
		feedRepo:   feedRepo,
	}
}

func (t *SyncFeedConfigTask) Execute(ctx context.Context) error {
	if err := checkCanceled(ctx); err != nil {
		return err
	}

	// The stored row follows the full request URL so search and paging
	// changes show up in the API.
	if err := t.feedRepo.UpsertFeed(t.FeedConfig.Name, RequestURL(t.FeedConfig)); err != nil {
		return fmt.Errorf("failed to sync feed config to database: %w", err)
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"feed", t.FeedName,
		"duration", t.GetDuration())

	return nil
}
