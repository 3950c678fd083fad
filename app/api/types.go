package api

import (
	"github.com/lysyi3m/rss-pull/app/database"
	"github.com/lysyi3m/rss-pull/app/feed"
	"github.com/lysyi3m/rss-pull/app/tasks"
)

type GeneratorInterface interface {
	Run(channel feed.Channel, articles []feed.Article) (string, error)
}

var _ GeneratorInterface = (*feed.Generator)(nil)

// Upper bound on documents posted to /parse.
const maxParseBodySize = 10 << 20

type Handler struct {
	feedRepo     database.FeedRepository
	articleRepo  database.ArticleRepository
	configCache  *feed.ConfigCache
	scheduler    tasks.TaskSchedulerInterface
	parsers      map[feed.Format]*feed.Parser
	baseURL      string
	version      string
	maxParseBody int64
}

// ArticlesResponse is the JSON body of GET /feeds/:name/articles.
type ArticlesResponse struct {
	Feed     string         `json:"feed"`
	Channel  feed.Channel   `json:"channel"`
	Articles []feed.Article `json:"articles"`
	Total    int            `json:"total"`
}

func toChannel(stored *database.Feed) feed.Channel {
	return feed.Channel{
		Title:       stored.Title,
		Description: stored.Description,
		Language:    stored.Language,
		Link:        stored.Link,
		Image:       stored.ImageURL,
		Encoding:    stored.Encoding,
	}
}

func toArticle(stored database.Article) feed.Article {
	article := feed.Article{
		ID:          stored.ArticleID,
		Title:       stored.Title,
		Description: stored.Description,
		Content:     stored.Content,
		Image:       stored.ImageURL,
		Source:      stored.Source,
		Comments:    stored.Comments,
		Author:      stored.Author,
		Tags:        stored.Tags,
	}

	if stored.PublishedAt != nil {
		article.Date = *stored.PublishedAt
	}

	if stored.EnclosureURL != "" {
		article.Enclosure = &feed.Enclosure{
			URL:      stored.EnclosureURL,
			Length:   stored.EnclosureLength,
			MimeType: stored.EnclosureType,
		}
	}

	return article
}

func toArticles(stored []database.Article) []feed.Article {
	articles := make([]feed.Article, 0, len(stored))
	for _, article := range stored {
		articles = append(articles, toArticle(article))
	}
	return articles
}
