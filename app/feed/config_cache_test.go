package feed

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name+".yml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestConfigCacheLoadValidConfig(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "blog", `
url: "https://example.com/"
format: rss2

request:
  search: "go feeds"
  page: 2

settings:
  enabled: true
  refresh_interval: 1800
  max_items: 25
  timeout: 15
  skip_cache: true
  extract_content: true
`)

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	if configCache.GetConfigCount() != 1 {
		t.Errorf("Expected 1 feedConfig, got %d", configCache.GetConfigCount())
	}

	feedConfig, err := configCache.GetConfig("blog")
	if err != nil {
		t.Fatal(err)
	}

	if feedConfig.Name != "blog" {
		t.Errorf("Expected name 'blog', got '%s'", feedConfig.Name)
	}
	if feedConfig.URL != "https://example.com/" {
		t.Errorf("Expected URL 'https://example.com/', got '%s'", feedConfig.URL)
	}
	if feedConfig.Request.Search != "go feeds" || feedConfig.Request.Page != 2 {
		t.Errorf("Expected request search 'go feeds' page 2, got %+v", feedConfig.Request)
	}
	if feedConfig.Settings.RefreshInterval != 1800 {
		t.Errorf("Expected refresh interval 1800, got %d", feedConfig.Settings.RefreshInterval)
	}
	if feedConfig.Settings.MaxItems != 25 {
		t.Errorf("Expected max items 25, got %d", feedConfig.Settings.MaxItems)
	}
	if !feedConfig.Settings.SkipCache || !feedConfig.Settings.ExtractContent {
		t.Errorf("Expected skip_cache and extract_content, got %+v", feedConfig.Settings)
	}

	format, err := configCache.FeedFormat("blog")
	if err != nil {
		t.Fatal(err)
	}
	if format != FormatRSS2 {
		t.Errorf("Expected format rss2, got %s", format)
	}
}

func TestConfigCacheLoadConfigWithDefaults(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "minimal", `
url: "https://example.com/feed.xml"
settings:
  enabled: true
`)

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	feedConfig, err := configCache.GetConfig("minimal")
	if err != nil {
		t.Fatal(err)
	}

	if feedConfig.Settings.RefreshInterval != 3600 {
		t.Errorf("Expected default refresh interval 3600, got %d", feedConfig.Settings.RefreshInterval)
	}
	if feedConfig.Settings.MaxItems != 100 {
		t.Errorf("Expected default max items 100, got %d", feedConfig.Settings.MaxItems)
	}
	if feedConfig.Settings.Timeout != 30 {
		t.Errorf("Expected default timeout 30, got %d", feedConfig.Settings.Timeout)
	}
	if feedConfig.Format != "auto" {
		t.Errorf("Expected default format 'auto', got '%s'", feedConfig.Format)
	}
}

func TestConfigCacheInvalidConfigs(t *testing.T) {
	tests := map[string]string{
		"missing url":   "settings:\n  enabled: true\n",
		"bad format":    "url: \"https://example.com/\"\nformat: json\n",
		"negative page": "url: \"https://example.com/\"\nrequest:\n  page: -1\n",
		"relative url":  "url: \"feed.xml\"\n",
		"broken yaml":   "url: [unterminated\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			tempDir := t.TempDir()
			writeConfig(t, tempDir, "invalid", content)

			if err := NewConfigCache(tempDir).Run(); err == nil {
				t.Error("Expected error for invalid feedConfig")
			}
		})
	}
}

func TestConfigCacheMissingDirectory(t *testing.T) {
	configCache := NewConfigCache(filepath.Join(t.TempDir(), "absent"))
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}
	if configCache.GetConfigCount() != 0 {
		t.Errorf("Expected 0 feedConfigs, got %d", configCache.GetConfigCount())
	}
}

func TestConfigCacheReloadConfig(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "news", "url: \"https://example.com/feed.xml\"\n")

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	writeConfig(t, tempDir, "news", "url: \"https://example.com/new-feed.xml\"\nformat: atom\nsettings:\n  max_items: 50\n")

	reloaded, err := configCache.LoadConfig("news")
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.URL != "https://example.com/new-feed.xml" {
		t.Errorf("Expected updated URL, got '%s'", reloaded.URL)
	}
	if reloaded.Settings.MaxItems != 50 {
		t.Errorf("Expected updated max_items 50, got %d", reloaded.Settings.MaxItems)
	}

	cached, err := configCache.GetConfig("news")
	if err != nil {
		t.Fatal(err)
	}
	if cached.Format != "atom" {
		t.Errorf("Expected cache to hold the reloaded config, got format '%s'", cached.Format)
	}

	if _, err := configCache.LoadConfig("nonexistent"); err == nil {
		t.Error("Expected error for non-existent config")
	}
}

func TestConfigCacheGetConfigs(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "feed1", "url: \"https://example.com/feed1.xml\"\nsettings:\n  enabled: true\n")
	writeConfig(t, tempDir, "feed2", "url: \"https://example.com/feed2.xml\"\nsettings:\n  enabled: false\n")

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	allConfigs := configCache.GetConfigs()
	if len(allConfigs) != 2 {
		t.Errorf("Expected 2 configs, got %d", len(allConfigs))
	}

	delete(allConfigs, "feed1")
	if configCache.GetConfigCount() != 2 {
		t.Error("Modifying returned configs map affected the cache")
	}

	enabled := configCache.GetEnabledConfigs()
	if len(enabled) != 1 || enabled["feed1"] == nil {
		t.Errorf("Expected only feed1 enabled, got %v", enabled)
	}

	_, err := configCache.GetConfig("FEED1")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("Expected case-sensitive 'not found' error, got: %v", err)
	}
}

func TestConfigCacheValidateConfig(t *testing.T) {
	configCache := NewConfigCache("")

	if err := configCache.validateConfig(nil); err == nil {
		t.Error("Expected error for nil feedConfig")
	}

	feedConfig := &Config{Name: "", URL: "https://example.com/feed.xml"}
	if err := configCache.validateConfig(feedConfig); err == nil {
		t.Error("Expected error for empty feed name")
	}

	feedConfig.Name = "test-feed"
	feedConfig.Settings.Timeout = -1
	if err := configCache.validateConfig(feedConfig); err == nil {
		t.Error("Expected error for negative timeout")
	}

	feedConfig.Settings.Timeout = 30
	feedConfig.Request.Page = -2
	if err := configCache.validateConfig(feedConfig); err == nil || !strings.Contains(err.Error(), "request.page") {
		t.Errorf("Expected request.page error, got: %v", err)
	}

	feedConfig.Request = ConfigRequest{Search: "golang", Page: 1, Individual: true}
	if err := configCache.validateConfig(feedConfig); err != nil {
		t.Errorf("Expected no error for valid feedConfig, got: %v", err)
	}
}

func TestConfigSettingsDurations(t *testing.T) {
	settings := ConfigSettings{RefreshInterval: 90, Timeout: 5}
	if settings.GetRefreshInterval() != 90*time.Second {
		t.Errorf("Expected 90s refresh interval, got %v", settings.GetRefreshInterval())
	}
	if settings.GetTimeout() != 5*time.Second {
		t.Errorf("Expected 5s timeout, got %v", settings.GetTimeout())
	}

	var empty ConfigSettings
	if empty.GetRefreshInterval() != time.Hour || empty.GetTimeout() != 30*time.Second {
		t.Errorf("Expected defaults for unset settings, got %v / %v", empty.GetRefreshInterval(), empty.GetTimeout())
	}
}
