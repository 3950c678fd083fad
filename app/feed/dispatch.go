package feed

import (
	"crypto/sha256"
	"encoding/binary"
	"log/slog"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	xpp "github.com/mmcdole/goxpp"
)

// articleField assigns the text of a recognized element to an article.
type articleField func(a *Article, text string)

// channelField assigns the text of a recognized element to the channel.
type channelField func(c *Channel, text string)

// eventReader wraps the pull parser with a single event of push-back, so a
// text lookup that runs into a tag leaves that tag for the main loop.
type eventReader struct {
	p       *xpp.XMLPullParser
	pending bool
	started bool
}

func (r *eventReader) next() (xpp.XMLEventType, error) {
	if r.pending {
		r.pending = false
		return r.p.Event, nil
	}
	event, err := r.p.Next()
	if err == nil {
		r.started = true
	}
	return event, err
}

// text joins the text events directly following the current start tag.
// found is false when the element had no text (empty or nested markup).
func (r *eventReader) text() (value string, found bool, err error) {
	var b strings.Builder
	for {
		event, err := r.p.Next()
		if err != nil {
			return "", false, err
		}
		if event != xpp.Text {
			r.pending = true
			break
		}
		found = true
		b.WriteString(r.p.Text)
	}
	return strings.TrimSpace(b.String()), found, nil
}

// parseURI keeps value when it parses as a URI reference.
func parseURI(value string, logger *slog.Logger) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if _, err := url.Parse(value); err != nil {
		logger.Warn("Error parsing URI", "uri", value, "error", err)
		return ""
	}
	return value
}

func setOnce(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

// articleID derives a stable non-negative identifier from the article's
// fields. Tag order does not matter.
func articleID(a *Article) int64 {
	tags := make([]string, len(a.Tags))
	copy(tags, a.Tags)
	sort.Strings(tags)

	h := sha256.New()
	write := func(s string) {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}

	write(a.Title)
	write(a.Description)
	write(a.Content)
	write(a.Image)
	write(a.Source)
	write(a.Comments)
	write(a.Author)
	write(a.Date.UTC().Format(time.RFC3339Nano))
	write(strings.Join(tags, "\x1f"))
	if a.Enclosure != nil {
		write(a.Enclosure.URL)
		write(strconv.FormatInt(a.Enclosure.Length, 10))
		write(a.Enclosure.MimeType)
	}

	sum := h.Sum(nil)
	return int64(binary.BigEndian.Uint64(sum[:8]) & math.MaxInt64)
}

// finishArticle runs the end-of-entry steps shared by both formats.
func finishArticle(feed *ParsedFeed, a *Article, logger *slog.Logger) {
	a.ID = articleID(a)

	if a.Image != "" && a.Content != "" {
		a.Content = stripFirstImage(a.Content)
	}

	logger.Info("Article parsed", "article", a.ShortString())
	feed.AddArticle(*a)
}
