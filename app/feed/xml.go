package feed

import (
	"io"
	"strings"

	xpp "github.com/mmcdole/goxpp"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/htmlindex"
)

const atomNamespace = "http://www.w3.org/2005/Atom"

// Canonical prefixes for the extension namespaces the RSS2 dispatch knows about.
// They win over whatever prefix the document declared.
var canonicalPrefixes = map[string]string{
	"http://purl.org/rss/1.0/modules/content/": "content",
	"http://wellformedweb.org/CommentAPI/":     "wfw",
	"http://purl.org/dc/elements/1.1/":         "dc",
}

// encodingSniffer records the charset label the XML decoder hands to its
// CharsetReader. The decoder only asks for non UTF-8 declarations.
type encodingSniffer struct {
	label  string
	failed bool
}

func (s *encodingSniffer) reader(label string, input io.Reader) (io.Reader, error) {
	s.label = label
	r, err := charset.NewReaderLabel(label, input)
	if err != nil {
		s.failed = true
		return nil, err
	}
	return r, nil
}

// Encoding is only meaningful once the decoder has read past the XML declaration.
func (s *encodingSniffer) Encoding(started bool) string {
	if s.failed || !started {
		return ""
	}
	if s.label == "" {
		return "utf-8"
	}
	return canonicalEncoding(s.label)
}

func canonicalEncoding(label string) string {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(label))
	}
	name, err := htmlindex.Name(enc)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(label))
	}
	return name
}

func newPullParser(r io.Reader, sniffer *encodingSniffer) *xpp.XMLPullParser {
	return xpp.NewXMLPullParser(r, false, sniffer.reader)
}

// qualifiedName returns the lower-cased "prefix:local" name of the current
// element. Namespaces listed in plain are reported without a prefix.
func qualifiedName(p *xpp.XMLPullParser, plain map[string]bool) string {
	local := strings.ToLower(p.Name)
	space := strings.TrimSpace(p.Space)
	if space == "" || plain[space] {
		return local
	}

	prefix, ok := canonicalPrefixes[space]
	if !ok {
		if declared, found := p.Spaces[space]; found {
			prefix = declared
		} else {
			// Go's decoder leaves undeclared prefixes in Space untouched.
			prefix = space
		}
	}
	if prefix == "" {
		return local
	}
	return strings.ToLower(prefix) + ":" + local
}

// attribute looks up an attribute by local name, ignoring case.
func attribute(p *xpp.XMLPullParser, name string) (string, bool) {
	for _, attr := range p.Attrs {
		if strings.EqualFold(attr.Name.Local, name) {
			return attr.Value, true
		}
	}
	return "", false
}
