package feed

import (
	"testing"
	"time"
)

const atomSample = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom" xml:lang="en">
  <title>Atom Feed</title>
  <subtitle>Atom Subtitle</subtitle>
  <logo>https://example.com/logo.png</logo>
  <link rel="self" href="https://example.com/feed.atom"/>
  <link href="https://example.com/"/>
  <author><name>Feed Owner</name></author>
  <entry>
    <title>Atom Entry</title>
    <link rel="alternate" href="https://example.com/entry"/>
    <link rel="replies" href="https://example.com/entry/comments"/>
    <author><name>John Smith</name></author>
    <category term="go"/>
    <category term="feeds"/>
    <published>2023-07-03T10:00:00Z</published>
    <updated>2023-07-04T10:00:00Z</updated>
    <summary type="html">&lt;img src="http://x/pic.jpg" width="600" height="400"/&gt;&lt;p&gt;Summary text&lt;/p&gt;</summary>
    <content type="html">&lt;div&gt;&lt;img src="http://x/pic.jpg"/&gt;Full body&lt;/div&gt;</content>
  </entry>
  <entry>
    <title>Tracking Pixel</title>
    <link href="https://example.com/pixel"/>
    <updated>2023-07-05T08:30:00+02:00</updated>
    <summary type="html">&lt;img src="http://x/px.gif" width="3" height="3"/&gt;Tiny</summary>
  </entry>
</feed>`

func TestAtomParseChannel(t *testing.T) {
	parsed := NewAtomParser().Parse([]byte(atomSample))
	channel := parsed.Channel

	if channel.Title != "Atom Feed" {
		t.Errorf("Expected title 'Atom Feed', got: %s", channel.Title)
	}
	if channel.Description != "Atom Subtitle" {
		t.Errorf("Expected description 'Atom Subtitle', got: %s", channel.Description)
	}
	if channel.Image != "https://example.com/logo.png" {
		t.Errorf("Expected image 'https://example.com/logo.png', got: %s", channel.Image)
	}
	if channel.Language != "en" {
		t.Errorf("Expected language 'en', got: %s", channel.Language)
	}
	if channel.Link != "https://example.com/" {
		t.Errorf("Expected link 'https://example.com/', got: %s", channel.Link)
	}
	if channel.Encoding != "utf-8" {
		t.Errorf("Expected encoding 'utf-8', got: %s", channel.Encoding)
	}
}

func TestAtomParseEntries(t *testing.T) {
	parsed := NewAtomParser().Parse([]byte(atomSample))

	if len(parsed.Articles) != 2 {
		t.Fatalf("Expected 2 articles, got: %d", len(parsed.Articles))
	}

	entry := parsed.Articles[0]
	if entry.Title != "Atom Entry" {
		t.Errorf("Expected title 'Atom Entry', got: %s", entry.Title)
	}
	if entry.Source != "https://example.com/entry" {
		t.Errorf("Expected source 'https://example.com/entry', got: %s", entry.Source)
	}
	if entry.Comments != "https://example.com/entry/comments" {
		t.Errorf("Expected comments link, got: %s", entry.Comments)
	}
	if entry.Author != "John Smith" {
		t.Errorf("Expected author 'John Smith', got: %s", entry.Author)
	}
	if len(entry.Tags) != 2 || entry.Tags[0] != "go" || entry.Tags[1] != "feeds" {
		t.Errorf("Expected tags [go feeds], got: %v", entry.Tags)
	}
	if !entry.Date.Equal(time.Date(2023, 7, 3, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected published date to win over updated, got: %v", entry.Date)
	}
	if entry.Image != "http://x/pic.jpg" {
		t.Errorf("Expected image 'http://x/pic.jpg', got: %s", entry.Image)
	}
	if entry.Description != "Summary text" {
		t.Errorf("Expected description 'Summary text', got: %q", entry.Description)
	}
	if entry.Content != "Full body" {
		t.Errorf("Expected content without divs and thumbnail, got: %q", entry.Content)
	}

	pixel := parsed.Articles[1]
	if pixel.Image != "" {
		t.Errorf("Expected tracking pixel to be dropped, got: %s", pixel.Image)
	}
	if pixel.Source != "https://example.com/pixel" {
		t.Errorf("Expected link without rel to be alternate, got: %s", pixel.Source)
	}
	if pixel.Author != "" {
		t.Errorf("Expected no author, got: %s", pixel.Author)
	}
	expected := time.Date(2023, 7, 5, 6, 30, 0, 0, time.UTC)
	if !pixel.Date.Equal(expected) {
		t.Errorf("Expected updated date %v, got: %v", expected, pixel.Date)
	}
}

func TestAtomTruncatedDocument(t *testing.T) {
	doc := `<feed xmlns="http://www.w3.org/2005/Atom">
  <entry><title>Kept</title></entry>
  <entry><title>Lost</title>`

	parsed := NewAtomParser().Parse([]byte(doc))
	if len(parsed.Articles) != 1 {
		t.Fatalf("Expected 1 article, got: %d", len(parsed.Articles))
	}
	if parsed.Articles[0].Title != "Kept" {
		t.Errorf("Expected article 'Kept', got: %s", parsed.Articles[0].Title)
	}
}

func TestAtomRejectsRFC822Dates(t *testing.T) {
	doc := `<feed xmlns="http://www.w3.org/2005/Atom"><entry>
		<title>Odd Date</title>
		<published>Mon, 03 Jul 2023 10:00:00 +0000</published>
	</entry></feed>`

	parsed := NewAtomParser().Parse([]byte(doc))
	if len(parsed.Articles) != 1 {
		t.Fatalf("Expected article with bad date to be kept, got: %d", len(parsed.Articles))
	}
	if !parsed.Articles[0].Date.IsZero() {
		t.Errorf("Expected zero date, got: %v", parsed.Articles[0].Date)
	}
}
