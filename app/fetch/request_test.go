package fetch

import "testing"

func TestToURL(t *testing.T) {
	tests := []struct {
		name     string
		req      Request
		expected string
	}{
		{"plain", Request{URL: "https://example.com/feed/"}, "https://example.com/feed/"},
		{"individual", Request{URL: "https://example.com/2023/07/post/", Individual: true, Search: "ignored", Page: 3}, "https://example.com/2023/07/post/feed/?withoutcomments=1"},
		{"search", Request{URL: "https://example.com/feed/", Search: "go & xml"}, "https://example.com/feed/?s=go+%26+xml"},
		{"page", Request{URL: "https://example.com/feed/", Page: 2}, "https://example.com/feed/?paged=2"},
		{"first page", Request{URL: "https://example.com/feed/", Page: 1}, "https://example.com/feed/"},
		{"search and page", Request{URL: "https://example.com/feed/", Search: "go", Page: 4}, "https://example.com/feed/?s=go&paged=4"},
		{"existing query", Request{URL: "https://example.com/?feed=rss2", Page: 2}, "https://example.com/?feed=rss2&paged=2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := ToURL(tt.req); result != tt.expected {
				t.Errorf("Expected '%s', got: '%s'", tt.expected, result)
			}
		})
	}
}

func TestToSafeURL(t *testing.T) {
	req := Request{URL: "https://example.com/feed/", Search: "go", Page: 4}
	if result := ToSafeURL(req); result != "https://example.com/feed/?s=go" {
		t.Errorf("Expected pagination to be dropped, got: '%s'", result)
	}
}
