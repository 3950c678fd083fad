package feed

import (
	"strings"
	"testing"
	"time"
)

func sampleArticles() []Article {
	first := Article{
		Title:       "Test Item 1",
		Description: "Fish & chips\n\nSecond paragraph",
		Content:     "<p>Body with ]]> marker</p>",
		Image:       "https://example.com/thumb.jpg",
		Source:      "https://example.com/item1",
		Comments:    "https://example.com/item1/feed/",
		Author:      "Test Author",
		Date:        time.Date(2023, 7, 3, 10, 0, 0, 0, time.UTC),
		Tags:        []string{"Technology", "Programming"},
		Enclosure:   &Enclosure{URL: "http://x/a.mp3", Length: 1024, MimeType: "audio/mpeg"},
	}
	first.ID = articleID(&first)

	second := Article{
		Title:  "Test Item 2",
		Source: "https://example.com/item2",
	}
	second.ID = articleID(&second)

	return []Article{first, second}
}

func TestGeneratorRun(t *testing.T) {
	channel := Channel{
		Title:       "Test Feed",
		Link:        "https://example.com",
		Description: "Test Description",
		Language:    "en",
		Image:       "https://example.com/icon.png",
	}

	generator := NewGenerator("http://localhost:8080/feeds/test-feed", "RSS-Pull/dev")
	rss, err := generator.Run(channel, sampleArticles())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	expected := []string{
		`<?xml version="1.0" encoding="UTF-8"?>`,
		`<rss version="2.0"`,
		`xmlns:content="http://purl.org/rss/1.0/modules/content/"`,
		`<title>Test Feed</title>`,
		`<link>https://example.com</link>`,
		`<atom:link href="http://localhost:8080/feeds/test-feed" rel="self" type="application/rss+xml" />`,
		`<generator>RSS-Pull/dev</generator>`,
		`<url>https://example.com/icon.png</url>`,
		`<dc:creator>Test Author</dc:creator>`,
		`<wfw:commentRss>https://example.com/item1/feed/</wfw:commentRss>`,
		`<category>Technology</category>`,
		`<pubDate>Mon, 03 Jul 2023 10:00:00 +0000</pubDate>`,
		`<enclosure url="http://x/a.mp3" length="1024" type="audio/mpeg" />`,
		`<![CDATA[<p>Body with ]]]]><![CDATA[> marker</p>]]>`,
		`<guid isPermaLink="false">`,
	}
	for _, fragment := range expected {
		if !strings.Contains(rss, fragment) {
			t.Errorf("Expected output to contain %s", fragment)
		}
	}

	if strings.Count(rss, "<item>") != 2 {
		t.Errorf("Expected 2 items, got: %d", strings.Count(rss, "<item>"))
	}
}

func TestGeneratorRoundTrip(t *testing.T) {
	articles := sampleArticles()
	channel := Channel{Title: "Round Trip", Link: "https://example.com/", Language: "en"}

	rss, err := NewGenerator("", "test").Run(channel, articles)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	parsed := NewRSS2Parser().Parse([]byte(rss))
	if parsed.Channel.Title != channel.Title || parsed.Channel.Link != channel.Link {
		t.Errorf("Expected channel %+v, got: %+v", channel, parsed.Channel)
	}
	if len(parsed.Articles) != len(articles) {
		t.Fatalf("Expected %d articles, got: %d", len(articles), len(parsed.Articles))
	}

	for i, original := range articles {
		got := parsed.Articles[i]
		if got.ID != original.ID {
			t.Errorf("Expected article %d id %d, got: %d", i, original.ID, got.ID)
		}
		if got.Description != original.Description {
			t.Errorf("Expected description %q, got: %q", original.Description, got.Description)
		}
		if got.Content != original.Content {
			t.Errorf("Expected content %q, got: %q", original.Content, got.Content)
		}
		if got.Image != original.Image {
			t.Errorf("Expected image %q, got: %q", original.Image, got.Image)
		}
	}
}

func TestGeneratorEmptyFeed(t *testing.T) {
	rss, err := NewGenerator("", "").Run(Channel{Title: "Empty"}, nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if strings.Contains(rss, "<item>") {
		t.Error("Expected no items")
	}
	if strings.Contains(rss, "atom:link") {
		t.Error("Expected no self link when none is configured")
	}
	if !strings.HasSuffix(rss, "</channel>\n</rss>") {
		t.Error("Expected closed document")
	}
}
