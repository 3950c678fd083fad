package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"
)

// Generator writes stored channels and articles back out as RSS 2.0. The
// output reads back through RSS2Parser to the same articles.
type Generator struct {
	selfLink string
	name     string
}

func NewGenerator(selfLink, name string) *Generator {
	return &Generator{selfLink: selfLink, name: name}
}

func (g *Generator) Run(channel Channel, articles []Article) (string, error) {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/" xmlns:wfw="http://wellformedweb.org/CommentAPI/" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", channel.Title, 4)
	g.writeElement(&buf, "link", channel.Link, 4)
	g.writeElement(&buf, "description", channel.Description, 4)

	if g.selfLink != "" {
		fmt.Fprintf(&buf, "    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
			html.EscapeString(g.selfLink))
	}

	lastBuildDate := time.Now()
	if len(articles) > 0 && !articles[0].Date.IsZero() {
		lastBuildDate = articles[0].Date
	}
	g.writeElement(&buf, "lastBuildDate", lastBuildDate.Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", g.name, 4)
	g.writeElement(&buf, "language", channel.Language, 4)

	if channel.Image != "" {
		buf.WriteString("    <image>\n")
		g.writeElement(&buf, "url", channel.Image, 6)
		g.writeElement(&buf, "title", channel.Title, 6)
		g.writeElement(&buf, "link", channel.Link, 6)
		buf.WriteString("    </image>\n")
	}

	for i := range articles {
		g.writeArticle(&buf, &articles[i])
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (g *Generator) writeArticle(buf *bytes.Buffer, article *Article) {
	buf.WriteString("    <item>\n")

	g.writeElement(buf, "guid isPermaLink=\"false\"", strconv.FormatInt(article.ID, 10), 6)
	g.writeElement(buf, "title", article.Title, 6)
	g.writeElement(buf, "link", article.Source, 6)
	g.writeElement(buf, "description", descriptionMarkup(article), 6)

	if article.Content != "" {
		buf.WriteString("      <content:encoded><![CDATA[")
		// "]]>" cannot appear inside a CDATA section.
		buf.WriteString(strings.ReplaceAll(article.Content, "]]>", "]]]]><![CDATA[>"))
		buf.WriteString("]]></content:encoded>\n")
	}

	g.writeElement(buf, "wfw:commentRss", article.Comments, 6)
	g.writeElement(buf, "dc:creator", article.Author, 6)

	if !article.Date.IsZero() {
		g.writeElement(buf, "pubDate", article.Date.Format(time.RFC1123Z), 6)
	}

	for _, tag := range article.Tags {
		g.writeElement(buf, "category", tag, 6)
	}

	if article.Enclosure != nil && article.Enclosure.URL != "" {
		fmt.Fprintf(buf, "      <enclosure url=\"%s\" length=\"%d\" type=\"%s\" />\n",
			html.EscapeString(article.Enclosure.URL),
			article.Enclosure.Length,
			html.EscapeString(article.Enclosure.MimeType))
	}

	buf.WriteString("    </item>\n")
}

// descriptionMarkup puts the thumbnail back in front of the plain text so
// readers (and RSS2Parser) pick it up again.
func descriptionMarkup(article *Article) string {
	text := html.EscapeString(article.Description)
	if article.Image == "" {
		return text
	}
	return fmt.Sprintf(`<img src="%s" />%s`, html.EscapeString(article.Image), text)
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	closing, _, _ := strings.Cut(tag, " ")

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(closing)
	buf.WriteString(">\n")
}
