package feed

import (
	"log/slog"
	"strings"
	"time"
)

// DateLayout is one textual date encoding accepted by the normalizer.
type DateLayout struct {
	Name   string
	Layout string
	// UTCSuffix rewrites a trailing "Z" to "+0000" before parsing.
	UTCSuffix bool
	// ZoneNames replaces a trailing RFC-822 zone name with its numeric
	// offset. Values ending in anything else miss this layout.
	ZoneNames bool
}

var (
	LayoutRFC822          = DateLayout{Name: "rfc822", Layout: "Mon, 2 Jan 2006 15:04:05 -0700"}
	LayoutRFC822Zone      = DateLayout{Name: "rfc822-zone", Layout: "Mon, 2 Jan 2006 15:04:05 -0700", ZoneNames: true}
	LayoutRFC822Short     = DateLayout{Name: "rfc822-short", Layout: "Mon, 2 Jan 06 15:04:05 -0700"}
	LayoutRFC822ShortZone = DateLayout{Name: "rfc822-short-zone", Layout: "Mon, 2 Jan 06 15:04:05 -0700", ZoneNames: true}
	LayoutISO8601         = DateLayout{Name: "iso8601", Layout: "2006-01-02T15:04:05-0700", UTCSuffix: true}
	LayoutRFC3339         = DateLayout{Name: "rfc3339", Layout: time.RFC3339Nano}
)

// RSS2 feeds are RFC-822 first; some emit Atom style dates as a fallback.
var RSS2DateLayouts = []DateLayout{
	LayoutRFC822,
	LayoutRFC822Zone,
	LayoutRFC822Short,
	LayoutRFC822ShortZone,
	LayoutISO8601,
	LayoutRFC3339,
}

var AtomDateLayouts = []DateLayout{
	LayoutISO8601,
	LayoutRFC3339,
}

// Zone names defined by RFC 822 section 5.1. Military single letter zones
// other than Z are ambiguous in practice and are not accepted.
var rfc822Zones = map[string]string{
	"UT":  "+0000",
	"GMT": "+0000",
	"Z":   "+0000",
	"EST": "-0500",
	"EDT": "-0400",
	"CST": "-0600",
	"CDT": "-0500",
	"MST": "-0700",
	"MDT": "-0600",
	"PST": "-0800",
	"PDT": "-0700",
}

// replaceZoneName swaps the trailing zone name of value for its offset.
func replaceZoneName(value string) (string, bool) {
	i := strings.LastIndexByte(value, ' ')
	if i < 0 {
		return "", false
	}
	offset, ok := rfc822Zones[strings.ToUpper(value[i+1:])]
	if !ok {
		return "", false
	}
	return value[:i+1] + offset, true
}

// NormalizeDate tries each layout in order and returns the first successful
// parse. It returns the zero time when every layout fails.
func NormalizeDate(text string, layouts []DateLayout, logger *slog.Logger) time.Time {
	value := strings.TrimSpace(text)
	if value == "" {
		return time.Time{}
	}

	for _, layout := range layouts {
		candidate := value
		if layout.UTCSuffix && strings.HasSuffix(candidate, "Z") {
			candidate = strings.TrimSuffix(candidate, "Z") + "+0000"
		}
		if layout.ZoneNames {
			replaced, ok := replaceZoneName(candidate)
			if !ok {
				if logger != nil {
					logger.Debug("Date layout did not match", "date", value, "layout", layout.Name)
				}
				continue
			}
			candidate = replaced
		}

		parsed, err := time.Parse(layout.Layout, candidate)
		if err == nil {
			return parsed
		}
		if logger != nil {
			logger.Debug("Date layout did not match", "date", value, "layout", layout.Name)
		}
	}

	if logger != nil {
		logger.Warn("Error parsing date", "date", value)
	}
	return time.Time{}
}
