package feed

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const configFileExt = ".yml"

// ConfigCache holds the per-feed source definitions read from the feeds
// directory. Each <name>.yml file describes where a document is fetched
// from, which format parser reads it and how the request is shaped.
type ConfigCache struct {
	feedsDir string
	cache    map[string]*Config
	mu       sync.RWMutex
}

func NewConfigCache(feedsDir string) *ConfigCache {
	return &ConfigCache{
		feedsDir: feedsDir,
		cache:    make(map[string]*Config),
	}
}

// Run loads every source definition in the feeds directory. A missing
// directory leaves the cache empty; any invalid file aborts the load.
func (cc *ConfigCache) Run() error {
	if _, err := os.Stat(cc.feedsDir); errors.Is(err, os.ErrNotExist) {
		slog.Debug("Feeds directory not found, no sources loaded", "dir", cc.feedsDir)
		return nil
	}

	files, err := filepath.Glob(filepath.Join(cc.feedsDir, "*"+configFileExt))
	if err != nil {
		return fmt.Errorf("failed to list source definitions: %w", err)
	}

	for _, file := range files {
		feedName := strings.TrimSuffix(filepath.Base(file), configFileExt)

		feedConfig, err := cc.LoadConfig(feedName)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Source loaded",
			"feed", feedName,
			"format", feedConfig.Format,
			"request_search", feedConfig.Request.Search,
			"request_page", feedConfig.Request.Page,
			"individual", feedConfig.Request.Individual,
			"enabled", feedConfig.Settings.Enabled)
	}

	return nil
}

// LoadConfig (re)reads one source definition and replaces its cached copy.
func (cc *ConfigCache) LoadConfig(feedName string) (*Config, error) {
	path := filepath.Join(cc.feedsDir, feedName+configFileExt)

	feedConfig, err := readConfigFile(path)
	if err != nil {
		return nil, err
	}
	feedConfig.Name = feedName

	if err := cc.validateConfig(feedConfig); err != nil {
		return nil, fmt.Errorf("invalid source definition %s: %w", path, err)
	}

	cc.mu.Lock()
	cc.cache[feedName] = feedConfig
	cc.mu.Unlock()

	return feedConfig, nil
}

func (cc *ConfigCache) GetConfig(feedName string) (*Config, error) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	if feedConfig, ok := cc.cache[feedName]; ok {
		return feedConfig, nil
	}
	return nil, fmt.Errorf("feed config with name '%s' not found", feedName)
}

// GetConfigs returns a copy of the cache keyed by feed name.
func (cc *ConfigCache) GetConfigs() map[string]*Config {
	return cc.selectConfigs(func(*Config) bool { return true })
}

// GetEnabledConfigs returns the sources the scheduler should fetch.
func (cc *ConfigCache) GetEnabledConfigs() map[string]*Config {
	return cc.selectConfigs(func(feedConfig *Config) bool { return feedConfig.Settings.Enabled })
}

func (cc *ConfigCache) selectConfigs(keep func(*Config) bool) map[string]*Config {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	selected := make(map[string]*Config, len(cc.cache))
	for name, feedConfig := range cc.cache {
		if keep(feedConfig) {
			selected[name] = feedConfig
		}
	}
	return selected
}

// FeedFormat resolves the parser format of a cached source.
func (cc *ConfigCache) FeedFormat(feedName string) (Format, error) {
	feedConfig, err := cc.GetConfig(feedName)
	if err != nil {
		return FormatAuto, err
	}
	return ParseFormat(feedConfig.Format)
}

func (cc *ConfigCache) GetConfigCount() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.cache)
}

// readConfigFile decodes a source definition and fills unset settings.
// An omitted format means the parser detects it from the document root.
func readConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read source definition: %w", err)
	}

	var feedConfig Config
	if err := yaml.Unmarshal(data, &feedConfig); err != nil {
		return nil, fmt.Errorf("failed to decode source definition: %w", err)
	}

	if feedConfig.Format == "" {
		feedConfig.Format = FormatAuto.String()
	}

	settings := &feedConfig.Settings
	if settings.RefreshInterval == 0 {
		settings.RefreshInterval = defaultRefreshInterval
	}
	if settings.MaxItems == 0 {
		settings.MaxItems = defaultMaxItems
	}
	if settings.Timeout == 0 {
		settings.Timeout = defaultTimeout
	}

	return &feedConfig, nil
}

// validateConfig checks a source definition. Keys in the errors use the
// YAML names so they can be matched against the file.
func (cc *ConfigCache) validateConfig(feedConfig *Config) error {
	if feedConfig == nil {
		return fmt.Errorf("source definition is nil")
	}
	if feedConfig.Name == "" {
		return fmt.Errorf("feed name is required")
	}
	if feedConfig.URL == "" {
		return fmt.Errorf("url is required")
	}
	if _, err := url.ParseRequestURI(feedConfig.URL); err != nil {
		return fmt.Errorf("url must be absolute: %w", err)
	}

	if _, err := ParseFormat(feedConfig.Format); err != nil {
		return fmt.Errorf("format: %w", err)
	}

	if feedConfig.Request.Page < 0 {
		return fmt.Errorf("request.page must be non-negative, got %d", feedConfig.Request.Page)
	}

	for key, value := range map[string]int{
		"settings.refresh_interval": feedConfig.Settings.RefreshInterval,
		"settings.max_items":        feedConfig.Settings.MaxItems,
		"settings.timeout":          feedConfig.Settings.Timeout,
	} {
		if value < 0 {
			return fmt.Errorf("%s must be non-negative, got %d", key, value)
		}
	}

	return nil
}
