package feed

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	imgElement    = regexp.MustCompile(`(?is)<img.+?>`)
	divElement    = regexp.MustCompile(`(?i)</?div[^>]*>`)
	inlineSpaces  = regexp.MustCompile(`[ \t\r\f\v\x{00a0}]+`)
	blankLineRuns = regexp.MustCompile(`\n{3,}`)
)

// htmlToText renders a description/summary fragment as plain text. Images are
// removed first; they are reported through Article.Image instead.
func htmlToText(fragment string) string {
	withoutImages := imgElement.ReplaceAllString(fragment, "")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(withoutImages))
	if err != nil {
		return strings.TrimSpace(withoutImages)
	}

	doc.Find("script, style").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, li, h1, h2, h3, h4, h5, h6, blockquote").AppendHtml("\n\n")

	return normalizeText(doc.Text())
}

func normalizeText(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(inlineSpaces.ReplaceAllString(line, " "))
	}
	joined := strings.Join(lines, "\n")
	return strings.TrimSpace(blankLineRuns.ReplaceAllString(joined, "\n\n"))
}

// stripDivs drops <div> and </div> wrappers from a content body.
func stripDivs(content string) string {
	return divElement.ReplaceAllString(content, "")
}

// stripFirstImage removes the first <img> of content; it duplicates the
// already extracted thumbnail.
func stripFirstImage(content string) string {
	loc := imgElement.FindStringIndex(content)
	if loc == nil {
		return content
	}
	return content[:loc[0]] + content[loc[1]:]
}
