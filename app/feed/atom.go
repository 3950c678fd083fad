package feed

import (
	"bytes"
	"log/slog"
	"strings"
	"time"

	xpp "github.com/mmcdole/goxpp"
)

var atomPlain = map[string]bool{atomNamespace: true}

// AtomParser reads Atom 1.0 documents. It keeps no per-document state and
// may be shared.
type AtomParser struct {
	logger        *slog.Logger
	layouts       []DateLayout
	images        *ImageExtractor
	channelFields map[string]channelField
	articleFields map[string]articleField
}

var _ FormatParser = (*AtomParser)(nil)

func NewAtomParser(opts ...Option) *AtomParser {
	o := newOptions(AtomDateLayouts, opts)
	ap := &AtomParser{
		logger:  o.logger,
		layouts: o.layouts,
		images:  NewImageExtractor(ImageModeMinSize, o.logger),
	}

	ap.channelFields = map[string]channelField{
		"title":    func(c *Channel, text string) { setOnce(&c.Title, text) },
		"subtitle": func(c *Channel, text string) { setOnce(&c.Description, text) },
		"logo":     func(c *Channel, text string) { setOnce(&c.Image, parseURI(text, ap.logger)) },
	}

	ap.articleFields = map[string]articleField{
		"title": func(a *Article, text string) { a.Title = text },
		"summary": func(a *Article, text string) {
			a.Image = parseURI(ap.images.Run(text), ap.logger)
			a.Description = htmlToText(text)
		},
		"content":   func(a *Article, text string) { a.Content = stripDivs(text) },
		"published": func(a *Article, text string) { a.Date = NormalizeDate(text, ap.layouts, ap.logger) },
		"updated": func(a *Article, text string) {
			if a.Date.IsZero() {
				a.Date = NormalizeDate(text, ap.layouts, ap.logger)
			}
		},
	}

	return ap
}

func (ap *AtomParser) Parse(data []byte) *ParsedFeed {
	start := time.Now()
	parsed := NewParsedFeed()
	channel := &parsed.Channel

	sniffer := &encodingSniffer{}
	r := &eventReader{p: newPullParser(bytes.NewReader(data), sniffer)}

	var (
		insideArticle bool
		insideAuthor  bool
		article       *Article
	)

loop:
	for {
		event, err := r.next()
		if err != nil {
			ap.logger.Error("Error parsing Atom feed", "error", err, "articles", len(parsed.Articles))
			break
		}

		switch event {
		case xpp.EndDocument:
			break loop

		case xpp.StartTag:
			name := qualifiedName(r.p, atomPlain)

			switch {
			case name == "feed":
				if lang, ok := attribute(r.p, "lang"); ok {
					setOnce(&channel.Language, strings.TrimSpace(lang))
				}
			case name == "entry":
				insideArticle = true
				insideAuthor = false
				article = &Article{}
			case insideArticle:
				if err := ap.handleArticleTag(r, name, article, &insideAuthor); err != nil {
					ap.logger.Error("Error parsing Atom feed", "error", err, "articles", len(parsed.Articles))
					break loop
				}
			case name == "link":
				if rel := linkRel(r.p); rel == "alternate" {
					href, _ := attribute(r.p, "href")
					setOnce(&channel.Link, parseURI(href, ap.logger))
				}
			default:
				setter, ok := ap.channelFields[name]
				if !ok {
					continue
				}
				text, found, err := r.text()
				if err != nil {
					ap.logger.Error("Error parsing Atom feed", "error", err, "articles", len(parsed.Articles))
					break loop
				}
				if found {
					setter(channel, text)
				}
			}

		case xpp.EndTag:
			if !insideArticle {
				continue
			}
			switch strings.ToLower(r.p.Name) {
			case "author":
				insideAuthor = false
			case "entry":
				insideArticle = false
				finishArticle(parsed, article, ap.logger)
				article = nil
			}
		}
	}

	channel.Encoding = sniffer.Encoding(r.started)

	ap.logger.Debug("Feed parsed", "format", FormatAtom.String(), "articles", len(parsed.Articles), "duration", time.Since(start))
	return parsed
}

func (ap *AtomParser) handleArticleTag(r *eventReader, name string, article *Article, insideAuthor *bool) error {
	switch name {
	case "author":
		*insideAuthor = true
		return nil
	case "category":
		if term, ok := attribute(r.p, "term"); ok {
			article.AddTag(strings.TrimSpace(term))
		}
		return nil
	case "link":
		href, _ := attribute(r.p, "href")
		switch linkRel(r.p) {
		case "alternate":
			article.Source = parseURI(href, ap.logger)
		case "replies":
			article.Comments = parseURI(href, ap.logger)
		}
		return nil
	}

	setter, ok := ap.articleFields[name]
	if name == "name" && *insideAuthor {
		setter, ok = func(a *Article, text string) { a.Author = text }, true
	}
	if !ok {
		return nil
	}

	text, found, err := r.text()
	if err != nil {
		return err
	}
	if found {
		setter(article, text)
	}
	return nil
}

// linkRel reports the rel of an Atom link; a missing rel means alternate.
func linkRel(p *xpp.XMLPullParser) string {
	rel, ok := attribute(p, "rel")
	rel = strings.ToLower(strings.TrimSpace(rel))
	if !ok || rel == "" {
		return "alternate"
	}
	return rel
}
