package feed

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/go-shiori/go-readability"
)

// ContentExtractor recovers an article body from the article's web page, for
// feeds that only ship a summary.
type ContentExtractor struct{}

func NewContentExtractor() *ContentExtractor {
	return &ContentExtractor{}
}

// Run returns the readable body of page. source, when set, resolves relative
// links inside the body. The result has its <div> wrappers stripped like
// content read from a feed.
func (e *ContentExtractor) Run(page []byte, source string) (string, error) {
	if len(page) == 0 {
		return "", fmt.Errorf("HTML data is empty")
	}

	var pageURL *url.URL
	if source != "" {
		parsed, err := url.Parse(source)
		if err != nil {
			return "", fmt.Errorf("invalid article source: %w", err)
		}
		pageURL = parsed
	}

	article, err := readability.FromReader(bytes.NewReader(page), pageURL)
	if err != nil {
		return "", fmt.Errorf("failed to extract content: %w", err)
	}

	content := strings.TrimSpace(stripDivs(article.Content))
	if content == "" {
		return "", fmt.Errorf("no content extracted from HTML data")
	}

	slog.Debug("Content extracted", "source", source, "title", article.Title, "content_length", len(content))

	return content, nil
}
