package database

import (
	"time"
)

type Feed struct {
	Name          string // Configuration feed identifier derived from filename
	FeedURL       string // Feed URL from configuration
	Title         string
	Description   string
	Link          string // Homepage URL from the channel's <link>
	ImageURL      string
	Language      string
	Encoding      string // Declared encoding of the last parsed document
	LastFetchedAt *time.Time
	NextFetchAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Article struct {
	FeedName           string
	ArticleID          int64
	Title              string
	Description        string
	Content            string
	ImageURL           string
	Source             string
	Comments           string
	Author             string
	PublishedAt        *time.Time
	Tags               []string
	EnclosureURL       string
	EnclosureLength    int64
	EnclosureType      string
	ContentExtractedAt *time.Time
	CreatedAt          time.Time
}

// FeedMetadata is the channel information stored after each successful load.
type FeedMetadata struct {
	Title       string
	Description string
	Link        string
	ImageURL    string
	Language    string
	Encoding    string
}

type ArticleForExtraction struct {
	ArticleID int64
	Source    string
}
