package feed

import (
	"fmt"
	"time"
)

const (
	defaultRefreshInterval = 3600
	defaultMaxItems        = 100
	defaultTimeout         = 30
)

// Parsed feed types

type Channel struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Language    string `json:"language,omitempty"`
	Link        string `json:"link,omitempty"`
	Image       string `json:"image,omitempty"`
	Encoding    string `json:"encoding,omitempty"` // canonical name of the document's declared encoding
}

type Article struct {
	ID          int64      `json:"id"` // non-negative, derived from the article's fields
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"` // plain text
	Content     string     `json:"content,omitempty"`     // raw body markup
	Image       string     `json:"image,omitempty"`       // thumbnail pulled from description/summary
	Source      string     `json:"source,omitempty"`
	Comments    string     `json:"comments,omitempty"`
	Author      string     `json:"author,omitempty"`
	Date        time.Time  `json:"date"` // zero when the feed date could not be parsed
	Tags        []string   `json:"tags,omitempty"`
	Enclosure   *Enclosure `json:"enclosure,omitempty"`
}

type Enclosure struct {
	URL      string `json:"url"`
	Length   int64  `json:"length"`
	MimeType string `json:"mime_type"`
}

type ParsedFeed struct {
	Channel  Channel   `json:"channel"`
	Articles []Article `json:"articles"`
}

// AddTag inserts tag unless it is empty or already present.
func (a *Article) AddTag(tag string) {
	if tag == "" {
		return
	}
	for _, existing := range a.Tags {
		if existing == tag {
			return
		}
	}
	a.Tags = append(a.Tags, tag)
}

// ShortString is the one-line summary logged for every parsed article.
func (a *Article) ShortString() string {
	return fmt.Sprintf("Article{id=%d, title=%q, source=%q, date=%s}",
		a.ID, a.Title, a.Source, a.Date.Format(time.RFC3339))
}

func NewParsedFeed() *ParsedFeed {
	return &ParsedFeed{Articles: []Article{}}
}

// Clear resets the channel and drops all articles.
func (f *ParsedFeed) Clear() {
	f.Channel = Channel{}
	f.Articles = []Article{}
}

func (f *ParsedFeed) AddArticle(article Article) {
	f.Articles = append(f.Articles, article)
}

// Configuration types

type Config struct {
	Name     string         // Derived from filename (without .yml extension)
	URL      string         `yaml:"url"`
	Format   string         `yaml:"format"` // rss2, atom or auto
	Request  ConfigRequest  `yaml:"request"`
	Settings ConfigSettings `yaml:"settings"`
}

type ConfigRequest struct {
	Search     string `yaml:"search"`
	Page       int    `yaml:"page"`
	Individual bool   `yaml:"individual"` // URL points at a single article, not a feed
}

type ConfigSettings struct {
	Enabled         bool `yaml:"enabled"`
	RefreshInterval int  `yaml:"refresh_interval"` // seconds
	MaxItems        int  `yaml:"max_items"`
	Timeout         int  `yaml:"timeout"`         // seconds
	SkipCache       bool `yaml:"skip_cache"`      // bypass the HTTP response cache
	ExtractContent  bool `yaml:"extract_content"` // enable content extraction
}

// GetRefreshInterval returns the refresh interval as time.Duration
func (s *ConfigSettings) GetRefreshInterval() time.Duration {
	if s.RefreshInterval <= 0 {
		return defaultRefreshInterval * time.Second
	}
	return time.Duration(s.RefreshInterval) * time.Second
}

// GetTimeout returns the timeout as time.Duration
func (s *ConfigSettings) GetTimeout() time.Duration {
	if s.Timeout <= 0 {
		return defaultTimeout * time.Second
	}
	return time.Duration(s.Timeout) * time.Second
}
