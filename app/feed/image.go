package feed

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	xpp "github.com/mmcdole/goxpp"
)

type ImageMode int

const (
	// ImageModeMinSize drops images whose declared width and height are both
	// below minImageSize (tracking pixels, spacers).
	ImageModeMinSize ImageMode = iota
	// ImageModeStripDimensions removes a "-<w>x<h>" resize suffix from the src
	// without looking at width/height attributes.
	ImageModeStripDimensions
)

const (
	minImageSize   = 5
	fragmentHeader = `<?xml version="1.0" encoding="utf-8"?>` + "\n"
)

var (
	imgTagPattern   = regexp.MustCompile(`(?i)<img`)
	dimensionSuffix = regexp.MustCompile(`-\d{1,4}x\d{1,4}`)
)

type ImageExtractor struct {
	mode   ImageMode
	logger *slog.Logger
}

func NewImageExtractor(mode ImageMode, logger *slog.Logger) *ImageExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImageExtractor{mode: mode, logger: logger}
}

// ExtractFirstImage returns the src of the first usable <img> in fragment, or
// an empty string.
func ExtractFirstImage(fragment string, mode ImageMode) string {
	return NewImageExtractor(mode, nil).Run(fragment)
}

func (e *ImageExtractor) Run(fragment string) string {
	loc := imgTagPattern.FindStringIndex(fragment)
	if loc == nil {
		return ""
	}

	// Prose before the tag would make the fragment an invalid document.
	doc := fragmentHeader + fragment[loc[0]:]
	p := xpp.NewXMLPullParser(strings.NewReader(doc), false, nil)

	for {
		event, err := p.Next()
		if err != nil {
			e.logger.Warn("Error pulling image link", "error", err)
			return ""
		}
		if event == xpp.EndDocument {
			return ""
		}
		if event != xpp.StartTag || !strings.EqualFold(p.Name, "img") {
			continue
		}

		src, ok := attribute(p, "src")
		if !ok || src == "" {
			continue
		}
		return e.clean(p, src)
	}
}

func (e *ImageExtractor) clean(p *xpp.XMLPullParser, src string) string {
	if e.mode == ImageModeStripDimensions {
		return dimensionSuffix.ReplaceAllString(src, "")
	}

	width, widthErr := numericAttribute(p, "width")
	height, heightErr := numericAttribute(p, "height")
	if widthErr != nil || heightErr != nil {
		// No usable size given, assume a real image.
		return src
	}
	if width < minImageSize && height < minImageSize {
		return ""
	}
	return src
}

func numericAttribute(p *xpp.XMLPullParser, name string) (int, error) {
	value, _ := attribute(p, name)
	return strconv.Atoi(strings.TrimSpace(value))
}
