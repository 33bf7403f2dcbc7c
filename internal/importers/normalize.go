package importers

import (
	"math"
	"strconv"
	"strings"
	"time"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	"02.01.2006",
	"02/01/2006",
}

// parseDate tries the accepted date layouts in order. Unparseable values
// yield nil rather than an error so a bad date never sinks a whole record.
func parseDate(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}

// parseIntField reads an integer column leniently: fractional input is
// truncated, garbage is discarded.
func parseIntField(value string) *int {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if n, err := strconv.Atoi(value); err == nil {
		return &n
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		n := int(f)
		return &n
	}
	return nil
}

// parseTrackerRating converts Book Tracker ratings to the 1..10 scale.
// Values up to 5 are assumed to come from a five-star widget and are doubled
// with rounding; larger values are taken as already ten-based.
func parseTrackerRating(value string) *int {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil
	}
	var n int
	if f <= 5 {
		n = int(math.Round(f * 2))
	} else {
		n = int(f)
	}
	return clampRating(n)
}

// parseRating reads a rating already on the 1..10 scale, discarding values
// outside it.
func parseRating(value string) *int {
	n := parseIntField(value)
	if n == nil {
		return nil
	}
	return clampRating(*n)
}

func clampRating(n int) *int {
	if n < 1 || n > 10 {
		return nil
	}
	return &n
}

// firstLanguage picks the first language out of a comma-separated list and
// trims it to the column width.
func firstLanguage(value string, maxLen int) string {
	value, _, _ = strings.Cut(value, ",")
	value = strings.TrimSpace(value)
	runes := []rune(value)
	if len(runes) > maxLen {
		value = string(runes[:maxLen])
	}
	return value
}

// splitNames breaks a delimited name list into trimmed, non-empty parts.
func splitNames(value string, sep string) []string {
	var names []string
	for _, part := range strings.Split(value, sep) {
		part = strings.TrimSpace(part)
		if part != "" {
			names = append(names, part)
		}
	}
	return names
}
