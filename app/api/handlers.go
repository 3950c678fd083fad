package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/rss-pull/app/database"
	"github.com/lysyi3m/rss-pull/app/feed"
	"github.com/lysyi3m/rss-pull/app/tasks"
)

func NewHandler(configCache *feed.ConfigCache, feedRepo database.FeedRepository,
	articleRepo database.ArticleRepository, scheduler tasks.TaskSchedulerInterface,
	baseURL, version string) *Handler {
	parsers := make(map[feed.Format]*feed.Parser)
	for _, format := range []feed.Format{feed.FormatAuto, feed.FormatRSS2, feed.FormatAtom} {
		parsers[format] = feed.NewParser(format)
	}

	return &Handler{
		feedRepo:     feedRepo,
		articleRepo:  articleRepo,
		configCache:  configCache,
		scheduler:    scheduler,
		parsers:      parsers,
		baseURL:      strings.TrimRight(baseURL, "/"),
		version:      version,
		maxParseBody: maxParseBodySize,
	}
}

// loadStored resolves a configured feed and its stored row, answering the
// request itself when either is missing.
func (h *Handler) loadStored(c *gin.Context, name string) (*feed.Config, *database.Feed, bool) {
	feedConfig, err := h.configCache.GetConfig(name)
	if err != nil {
		slog.Error("Feed configuration not found", "feed", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Feed configuration not found"})
		return nil, nil, false
	}

	stored, err := h.feedRepo.GetFeed(name)
	if err != nil {
		slog.Error("Database error", "operation", "get_feed", "feed", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return nil, nil, false
	}

	if stored == nil {
		slog.Error("Feed not found in database", "feed", name)
		c.JSON(http.StatusNotFound, gin.H{"error": "Feed not found in database"})
		return nil, nil, false
	}

	return feedConfig, stored, true
}

func (h *Handler) GetFeed(c *gin.Context) {
	name := c.Param("name")

	feedConfig, stored, ok := h.loadStored(c, name)
	if !ok {
		return
	}

	articles, err := h.articleRepo.GetArticles(name, feedConfig.Settings.MaxItems)
	if err != nil {
		slog.Error("Database error", "operation", "get_articles", "feed", name, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	selfLink := ""
	if h.baseURL != "" {
		selfLink = h.baseURL + "/feeds/" + name
	}

	generator := feed.NewGenerator(selfLink, "RSS Pull/"+h.version)
	rss, err := generator.Run(toChannel(stored), toArticles(articles))
	if err != nil {
		slog.Error("RSS generation error", "feed", name, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("X-Feed-Items", strconv.Itoa(len(articles)))
	c.Header("X-Feed-Name", name)
	c.Header("X-Last-Updated", stored.UpdatedAt.Format(time.RFC3339))

	c.Data(http.StatusOK, "application/xml; charset=utf-8", []byte(rss))
}

func (h *Handler) GetFeedArticles(c *gin.Context) {
	name := c.Param("name")

	feedConfig, stored, ok := h.loadStored(c, name)
	if !ok {
		return
	}

	limit := feedConfig.Settings.MaxItems
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
			return
		}
		limit = min(parsed, limit)
	}

	articles, err := h.articleRepo.GetArticles(name, limit)
	if err != nil {
		slog.Error("Database error", "operation", "get_articles", "feed", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, ArticlesResponse{
		Feed:     name,
		Channel:  toChannel(stored),
		Articles: toArticles(articles),
		Total:    len(articles),
	})
}

// ParseDocument parses the request body as a feed without storing anything.
func (h *Handler) ParseDocument(c *gin.Context) {
	format, err := feed.ParseFormat(c.Query("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxParseBody)
	data, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit)})
			return
		}
		slog.Error("Failed to read request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	if len(data) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request body is empty"})
		return
	}

	parsed := h.parsers[format].Parse(data)

	c.Header("X-Feed-Items", strconv.Itoa(len(parsed.Articles)))
	c.JSON(http.StatusOK, parsed)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"status":    "ok",
		"version":   h.version,
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if feedCount, err := h.feedRepo.GetFeedCount(); err == nil {
		health["feeds"] = feedCount
	}

	health["loaded_configurations"] = h.configCache.GetConfigCount()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) APIListFeeds(c *gin.Context) {
	configs := h.configCache.GetConfigs()

	feeds := make([]map[string]interface{}, 0, len(configs))

	for _, feedConfig := range configs {
		feedInfo := map[string]interface{}{
			"name":             feedConfig.Name,
			"url":              feedConfig.URL,
			"format":           feedConfig.Format,
			"title":            "",
			"enabled":          feedConfig.Settings.Enabled,
			"max_items":        feedConfig.Settings.MaxItems,
			"refresh_interval": feedConfig.Settings.GetRefreshInterval().String(),
		}

		if stored, err := h.feedRepo.GetFeed(feedConfig.Name); err == nil && stored != nil {
			feedInfo["title"] = stored.Title
			feedInfo["last_fetched_at"] = stored.LastFetchedAt
			feedInfo["next_fetch_at"] = stored.NextFetchAt
			feedInfo["updated_at"] = stored.UpdatedAt
		}

		if articleCount, err := h.articleRepo.GetArticleCount(feedConfig.Name); err == nil {
			feedInfo["article_count"] = articleCount
		}

		feeds = append(feeds, feedInfo)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"feeds": feeds,
		"total": len(feeds),
	})
}

func (h *Handler) APIGetFeedDetails(c *gin.Context) {
	name := c.Param("name")

	feedConfig, stored, ok := h.loadStored(c, name)
	if !ok {
		return
	}

	details := map[string]interface{}{
		"name":             name,
		"url":              feedConfig.URL,
		"format":           feedConfig.Format,
		"title":            stored.Title,
		"enabled":          feedConfig.Settings.Enabled,
		"max_items":        feedConfig.Settings.MaxItems,
		"refresh_interval": feedConfig.Settings.GetRefreshInterval().String(),
		"timeout":          feedConfig.Settings.GetTimeout().String(),
		"extract_content":  feedConfig.Settings.ExtractContent,
		"channel":          toChannel(stored),
	}

	details["database"] = map[string]interface{}{
		"name":            stored.Name,
		"feed_url":        stored.FeedURL,
		"last_fetched_at": stored.LastFetchedAt,
		"next_fetch_at":   stored.NextFetchAt,
		"created_at":      stored.CreatedAt,
		"updated_at":      stored.UpdatedAt,
	}

	if total, err := h.articleRepo.GetArticleCount(name); err == nil {
		details["articles"] = total
	}

	c.JSON(http.StatusOK, details)
}

func (h *Handler) APIReloadFeed(c *gin.Context) {
	name := c.Param("name")

	if _, err := h.configCache.GetConfig(name); err != nil {
		slog.Error("Feed configuration not found", "feed", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Feed configuration not found"})
		return
	}

	feedConfig, err := h.configCache.LoadConfig(name)
	if err != nil {
		slog.Error("Error reloading configuration", "feed", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to reload configuration",
			"details": err.Error(),
		})
		return
	}

	var enqueued []gin.H
	for _, enqueue := range []func(*feed.Config) (tasks.TaskInterface, error){h.scheduler.EnqueueSync, h.scheduler.EnqueueLoad} {
		task, err := enqueue(feedConfig)
		if errors.Is(err, tasks.ErrTaskPending) {
			slog.Info("Task already pending, not enqueued again", "feed", name, "type", string(task.GetType()))
			enqueued = append(enqueued, gin.H{"id": task.GetID(), "type": task.GetType(), "skipped": true})
			continue
		}
		if err != nil {
			slog.Error("Error enqueueing task", "feed", name, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to enqueue task",
				"details": err.Error(),
			})
			return
		}
		enqueued = append(enqueued, gin.H{"id": task.GetID(), "type": task.GetType()})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Configuration for %s reloaded and tasks enqueued", name),
		"feed": gin.H{
			"name":   name,
			"url":    feedConfig.URL,
			"format": feedConfig.Format,
		},
		"tasks": enqueued,
	})
}
