package feed

import "testing"

func TestExtractFirstImageMinSize(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
		expected string
	}{
		{"tracking pixel", `<img width="3" height="3" src="http://x/px.gif">`, ""},
		{"regular image", `<img width="600" height="400" src="http://x/pic.jpg">`, "http://x/pic.jpg"},
		{"one small side", `<img width="3" height="400" src="http://x/tall.jpg">`, "http://x/tall.jpg"},
		{"no dimensions", `<img src="http://x/plain.jpg">`, "http://x/plain.jpg"},
		{"non-numeric dimensions", `<img width="auto" height="2" src="http://x/auto.jpg">`, "http://x/auto.jpg"},
		{"leading prose", `Some text & more <b>bold</b> <IMG SRC="http://x/upper.jpg"/>`, "http://x/upper.jpg"},
		{"no image", `<p>No pictures here</p>`, ""},
		{"empty", ``, ""},
		{"resize suffix kept", `<img src="http://x/pic-300x200.jpg">`, "http://x/pic-300x200.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ExtractFirstImage(tt.fragment, ImageModeMinSize)
			if result != tt.expected {
				t.Errorf("Expected '%s', got: '%s'", tt.expected, result)
			}
		})
	}
}

func TestExtractFirstImageStripDimensions(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
		expected string
	}{
		{"resize suffix", `<img src="http://x/pic-300x200.jpg" width="1" height="1">`, "http://x/pic.jpg"},
		{"no suffix", `<img src="http://x/pic.jpg">`, "http://x/pic.jpg"},
		{"unclosed tag", `<p><img src="http://x/photo-1024x768.png"></p>`, "http://x/photo.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ExtractFirstImage(tt.fragment, ImageModeStripDimensions)
			if result != tt.expected {
				t.Errorf("Expected '%s', got: '%s'", tt.expected, result)
			}
		})
	}
}

func TestExtractFirstImageSkipsMissingSrc(t *testing.T) {
	result := ExtractFirstImage(`<img alt="none"><img src="http://x/second.jpg">`, ImageModeMinSize)
	if result != "http://x/second.jpg" {
		t.Errorf("Expected second image, got: '%s'", result)
	}
}
