package fetch

import (
	"net/url"
	"strconv"
	"strings"
)

const individualSuffix = "feed/?withoutcomments=1"

// Request describes one feed download.
type Request struct {
	URL        string
	Search     string
	Page       int
	Individual bool // URL is a single article; its comment-free feed is fetched
	SkipCache  bool
}

// ToURL builds the address to download, including pagination.
func ToURL(req Request) string {
	return buildURL(req, true)
}

// ToSafeURL is ToURL without pagination. It identifies the feed regardless of
// the requested page.
func ToSafeURL(req Request) string {
	return buildURL(req, false)
}

func buildURL(req Request, paged bool) string {
	if req.Individual {
		return req.URL + individualSuffix
	}

	var b strings.Builder
	b.WriteString(req.URL)

	separator := "?"
	if strings.Contains(req.URL, "?") {
		separator = "&"
	}

	if req.Search != "" {
		b.WriteString(separator)
		b.WriteString("s=")
		b.WriteString(url.QueryEscape(req.Search))
		separator = "&"
	}

	if paged && req.Page > 1 {
		b.WriteString(separator)
		b.WriteString("paged=")
		b.WriteString(strconv.Itoa(req.Page))
	}

	return b.String()
}
