package feed

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/mmcdole/gofeed"
)

type Format int

const (
	FormatAuto Format = iota
	FormatRSS2
	FormatAtom
)

func (f Format) String() string {
	switch f {
	case FormatRSS2:
		return "rss2"
	case FormatAtom:
		return "atom"
	default:
		return "auto"
	}
}

// ParseFormat maps a config or query value to a Format. Empty means auto.
func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "auto":
		return FormatAuto, nil
	case "rss2", "rss":
		return FormatRSS2, nil
	case "atom":
		return FormatAtom, nil
	default:
		return FormatAuto, fmt.Errorf("unknown feed format: %s", value)
	}
}

// FormatParser turns one complete document into a ParsedFeed. Structural
// errors end the pass early; whatever was read up to that point is returned.
type FormatParser interface {
	Parse(data []byte) *ParsedFeed
}

type options struct {
	logger  *slog.Logger
	layouts []DateLayout
}

type Option func(*options)

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithDateLayouts replaces the format's default date layouts, in priority order.
func WithDateLayouts(layouts ...DateLayout) Option {
	return func(o *options) {
		if len(layouts) > 0 {
			o.layouts = layouts
		}
	}
}

func newOptions(layouts []DateLayout, opts []Option) options {
	o := options{logger: slog.Default(), layouts: layouts}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Parser is the entry point for callers. It holds the active FormatParser;
// with FormatAuto the format is detected per document instead.
type Parser struct {
	mu     sync.RWMutex
	format Format
	active FormatParser
	rss2   *RSS2Parser
	atom   *AtomParser
	logger *slog.Logger
}

func NewParser(format Format, opts ...Option) *Parser {
	o := newOptions(nil, opts)
	p := &Parser{
		format: format,
		rss2:   NewRSS2Parser(opts...),
		atom:   NewAtomParser(opts...),
		logger: o.logger,
	}

	switch format {
	case FormatRSS2:
		p.active = p.rss2
	case FormatAtom:
		p.active = p.atom
	}

	return p
}

// SetFormatParser pins the parser used for every document, replacing
// format detection.
func (p *Parser) SetFormatParser(fp FormatParser) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active = fp
}

func (p *Parser) Parse(data []byte) *ParsedFeed {
	p.mu.RLock()
	active := p.active
	p.mu.RUnlock()

	if active == nil {
		format := Detect(data)
		p.logger.Debug("Detected feed format", "format", format.String())
		if format == FormatAtom {
			active = p.atom
		} else {
			active = p.rss2
		}
	}

	return active.Parse(data)
}

func (p *Parser) ParseString(document string) *ParsedFeed {
	return p.Parse([]byte(document))
}

// Detect sniffs the document's root element. RSS 0.9x/1.0/2.0 map to
// FormatRSS2, Atom to FormatAtom, anything else falls back to FormatRSS2.
func Detect(data []byte) Format {
	switch gofeed.DetectFeedType(bytes.NewReader(data)) {
	case gofeed.FeedTypeAtom:
		return FormatAtom
	default:
		return FormatRSS2
	}
}
