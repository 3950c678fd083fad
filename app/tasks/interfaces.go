package tasks

import (
	"context"

	"github.com/lysyi3m/rss-pull/app/feed"
	"github.com/lysyi3m/rss-pull/app/fetch"
)

// TaskSchedulerInterface is what the HTTP API needs from the scheduler.
//
//	scheduler := NewScheduler(deps, interval, workerCount)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueLoad(feedConfig)
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	EnqueueSync(feedConfig *feed.Config) (TaskInterface, error)
	EnqueueLoad(feedConfig *feed.Config) (TaskInterface, error)
}

// Fetcher hands back a complete document for a request.
type Fetcher interface {
	Fetch(ctx context.Context, req fetch.Request) ([]byte, error)
}

var _ Fetcher = (*fetch.Downloader)(nil)

// Extractor turns a downloaded article page into body markup.
type Extractor interface {
	Run(page []byte, source string) (string, error)
}

var _ Extractor = (*feed.ContentExtractor)(nil)
