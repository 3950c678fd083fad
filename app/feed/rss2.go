package feed

import (
	"bytes"
	"log/slog"
	"strconv"
	"strings"
	"time"

	xpp "github.com/mmcdole/goxpp"
)

const rdfRoot = "rdf:rdf"

// RSS2Parser reads RSS 2.0 documents (and RSS 1.0, whose items sit next to
// the channel element). It keeps no per-document state and may be shared.
type RSS2Parser struct {
	logger        *slog.Logger
	layouts       []DateLayout
	images        *ImageExtractor
	channelFields map[string]channelField
	articleFields map[string]articleField
}

var _ FormatParser = (*RSS2Parser)(nil)

func NewRSS2Parser(opts ...Option) *RSS2Parser {
	o := newOptions(RSS2DateLayouts, opts)
	rp := &RSS2Parser{
		logger:  o.logger,
		layouts: o.layouts,
		images:  NewImageExtractor(ImageModeStripDimensions, o.logger),
	}

	rp.channelFields = map[string]channelField{
		"title":       func(c *Channel, text string) { setOnce(&c.Title, text) },
		"description": func(c *Channel, text string) { setOnce(&c.Description, text) },
		"language":    func(c *Channel, text string) { setOnce(&c.Language, text) },
		"link":        func(c *Channel, text string) { setOnce(&c.Link, parseURI(text, rp.logger)) },
	}

	rp.articleFields = map[string]articleField{
		"link":  func(a *Article, text string) { a.Source = parseURI(text, rp.logger) },
		"title": func(a *Article, text string) { a.Title = text },
		"description": func(a *Article, text string) {
			a.Image = parseURI(rp.images.Run(text), rp.logger)
			a.Description = htmlToText(text)
		},
		"content:encoded": func(a *Article, text string) { a.Content = stripDivs(text) },
		"wfw:commentrss":  func(a *Article, text string) { a.Comments = text },
		"category":        func(a *Article, text string) { a.AddTag(text) },
		"dc:creator":      func(a *Article, text string) { a.Author = text },
		"author":          func(a *Article, text string) { setOnce(&a.Author, text) },
		"pubdate":         func(a *Article, text string) { a.Date = NormalizeDate(text, rp.layouts, rp.logger) },
		"a10:updated": func(a *Article, text string) {
			if a.Date.IsZero() {
				a.Date = NormalizeDate(text, rp.layouts, rp.logger)
			}
		},
	}

	return rp
}

func (rp *RSS2Parser) Parse(data []byte) *ParsedFeed {
	start := time.Now()
	parsed := NewParsedFeed()
	channel := &parsed.Channel

	sniffer := &encodingSniffer{}
	r := &eventReader{p: newPullParser(bytes.NewReader(data), sniffer)}

	var (
		root               string
		insideChannel      bool
		insideArticle      bool
		insideChannelImage bool
		article            *Article
	)

loop:
	for {
		event, err := r.next()
		if err != nil {
			rp.logger.Error("Error parsing RSS2 feed", "error", err, "articles", len(parsed.Articles))
			break
		}

		switch event {
		case xpp.EndDocument:
			break loop

		case xpp.StartTag:
			name := qualifiedName(r.p, nil)
			if root == "" {
				root = name
				// RSS 1.0 keeps its items outside the channel element.
				insideChannel = root == rdfRoot
			}

			switch {
			case name == "channel":
				insideChannel = true
			case !insideChannel:
			case insideArticle:
				if err := rp.handleArticleTag(r, name, article); err != nil {
					rp.logger.Error("Error parsing RSS2 feed", "error", err, "articles", len(parsed.Articles))
					break loop
				}
			case insideChannelImage:
				if name != "url" {
					continue
				}
				text, found, err := r.text()
				if err != nil {
					rp.logger.Error("Error parsing RSS2 feed", "error", err, "articles", len(parsed.Articles))
					break loop
				}
				if found {
					setOnce(&channel.Image, parseURI(text, rp.logger))
				}
			case name == "item":
				insideArticle = true
				article = &Article{}
			case name == "image":
				insideChannelImage = true
			default:
				setter, ok := rp.channelFields[name]
				if !ok {
					continue
				}
				text, found, err := r.text()
				if err != nil {
					rp.logger.Error("Error parsing RSS2 feed", "error", err, "articles", len(parsed.Articles))
					break loop
				}
				if found {
					setter(channel, text)
				}
			}

		case xpp.EndTag:
			if !insideChannel {
				continue
			}
			name := strings.ToLower(r.p.Name)
			switch {
			case name == "channel":
				insideChannel = root == rdfRoot
				insideChannelImage = false
				insideArticle = false
			case insideChannelImage && name == "image":
				insideChannelImage = false
			case insideArticle && name == "item":
				insideArticle = false
				finishArticle(parsed, article, rp.logger)
				article = nil
			}
		}
	}

	// Only known once the decoder has read the XML declaration.
	channel.Encoding = sniffer.Encoding(r.started)

	rp.logger.Debug("Feed parsed", "format", FormatRSS2.String(), "articles", len(parsed.Articles), "duration", time.Since(start))
	return parsed
}

func (rp *RSS2Parser) handleArticleTag(r *eventReader, name string, article *Article) error {
	if name == "enclosure" {
		// Enclosures are empty elements; everything lives in the attributes.
		article.Enclosure = rp.enclosure(r.p)
		return nil
	}

	setter, ok := rp.articleFields[name]
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

func (rp *RSS2Parser) enclosure(p *xpp.XMLPullParser) *Enclosure {
	enclosure := &Enclosure{}

	if value, ok := attribute(p, "url"); ok {
		enclosure.URL = parseURI(value, rp.logger)
	}
	if value, ok := attribute(p, "type"); ok {
		enclosure.MimeType = strings.TrimSpace(value)
	}
	if value, ok := attribute(p, "length"); ok {
		length, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil || length < 0 {
			rp.logger.Warn("Error parsing enclosure length", "length", value)
		} else {
			enclosure.Length = length
		}
	}

	return enclosure
}
