package tasks

import (
	"log/slog"

	"github.com/lysyi3m/rss-pull/app/feed"
)

// Callback receives the lifecycle of every feed load. OnLoadFailed is only
// reported for download failures; parsing never fails.
type Callback interface {
	OnPreLoad(feedName string)
	OnLoaded(feedName string, parsed *feed.ParsedFeed)
	OnLoadFailed(feedName string, err error)
}

// LogCallback reports load events through slog.
type LogCallback struct{}

var _ Callback = LogCallback{}

func (LogCallback) OnPreLoad(feedName string) {
	slog.Debug("Loading feed", "feed", feedName)
}

func (LogCallback) OnLoaded(feedName string, parsed *feed.ParsedFeed) {
	slog.Debug("Feed loaded", "feed", feedName, "title", parsed.Channel.Title, "articles", len(parsed.Articles))
}

func (LogCallback) OnLoadFailed(feedName string, err error) {
	slog.Warn("Feed load failed", "feed", feedName, "error", err)
}
