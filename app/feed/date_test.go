package feed

import (
	"testing"
	"time"
)

func TestNormalizeDateRoundTrip(t *testing.T) {
	cases := []struct {
		layout DateLayout
		input  string
	}{
		{LayoutRFC822, "Mon, 3 Jul 2023 10:00:00 +0200"},
		{LayoutRFC822Short, "Tue, 3 Jan 23 10:00:00 -0500"},
		{LayoutISO8601, "2023-01-03T10:00:00+0100"},
		{LayoutRFC3339, "2023-01-03T10:00:00.5+01:00"},
	}

	for _, tc := range cases {
		parsed := NormalizeDate(tc.input, RSS2DateLayouts, nil)
		if parsed.IsZero() {
			t.Errorf("Expected %s to parse, got zero time", tc.input)
			continue
		}
		if formatted := parsed.Format(tc.layout.Layout); formatted != tc.input {
			t.Errorf("Expected %s layout to reproduce %s, got: %s", tc.layout.Name, tc.input, formatted)
		}
	}

	// Zone names are rewritten to numeric offsets, so compare instants.
	zoneCases := []struct {
		input    string
		expected time.Time
	}{
		{"Tue, 10 Jun 2003 04:00:00 EST", time.Date(2003, 6, 10, 9, 0, 0, 0, time.UTC)},
		{"Tue, 10 Jun 2003 04:00:00 PDT", time.Date(2003, 6, 10, 11, 0, 0, 0, time.UTC)},
		{"Tue, 10 Jun 2003 04:00:00 CDT", time.Date(2003, 6, 10, 9, 0, 0, 0, time.UTC)},
		{"Tue, 3 Jan 2023 10:00:00 GMT", time.Date(2023, 1, 3, 10, 0, 0, 0, time.UTC)},
		{"Tue, 3 Jan 2023 10:00:00 UT", time.Date(2023, 1, 3, 10, 0, 0, 0, time.UTC)},
		{"Tue, 3 Jan 23 10:00:00 MST", time.Date(2023, 1, 3, 17, 0, 0, 0, time.UTC)},
		{"Tue, 3 Jan 23 10:00:00 EDT", time.Date(2023, 1, 3, 14, 0, 0, 0, time.UTC)},
	}

	for _, tc := range zoneCases {
		parsed := NormalizeDate(tc.input, RSS2DateLayouts, nil)
		if !parsed.Equal(tc.expected) {
			t.Errorf("Expected %s to be %v, got: %v", tc.input, tc.expected, parsed.UTC())
		}
	}
}

func TestNormalizeDateUnknownZoneName(t *testing.T) {
	for _, input := range []string{
		"Tue, 3 Jan 2023 10:00:00 CET",
		"Tue, 3 Jan 2023 10:00:00 XYZ",
		"Tue, 3 Jan 23 10:00:00 A",
	} {
		if parsed := NormalizeDate(input, RSS2DateLayouts, nil); !parsed.IsZero() {
			t.Errorf("Expected zero time for %q, got: %v", input, parsed)
		}
	}
}

func TestNormalizeDateUTCSuffix(t *testing.T) {
	parsed := NormalizeDate("2023-07-03T10:00:00Z", AtomDateLayouts, nil)
	expected := time.Date(2023, 7, 3, 10, 0, 0, 0, time.UTC)

	if !parsed.Equal(expected) {
		t.Errorf("Expected %v, got: %v", expected, parsed)
	}
}

func TestNormalizeDateFailure(t *testing.T) {
	for _, input := range []string{"not-a-date", "", "   "} {
		if parsed := NormalizeDate(input, RSS2DateLayouts, nil); !parsed.IsZero() {
			t.Errorf("Expected zero time for %q, got: %v", input, parsed)
		}
	}
}

func TestNormalizeDateLayoutOrder(t *testing.T) {
	rfc822 := "Mon, 03 Jul 2023 10:00:00 +0000"

	if parsed := NormalizeDate(rfc822, RSS2DateLayouts, nil); parsed.IsZero() {
		t.Error("Expected RSS2 layouts to accept RFC-822 dates")
	}
	if parsed := NormalizeDate(rfc822, AtomDateLayouts, nil); !parsed.IsZero() {
		t.Errorf("Expected Atom layouts to reject RFC-822 dates, got: %v", parsed)
	}
	if parsed := NormalizeDate("2023-07-03T10:00:00Z", RSS2DateLayouts, nil); parsed.IsZero() {
		t.Error("Expected RSS2 layouts to fall back to ISO-8601")
	}
}
