package importers

import (
	"fmt"
	"strings"

	"github.com/Andrei800/booknest/internal/entities"
)

// trackerStatuses translates Book Tracker reading statuses onto the catalog
// status enum. Kept as data so new source vocabularies stay additive.
var trackerStatuses = map[string]entities.BookStatus{
	"read":         entities.StatusFinished,
	"reading":      entities.StatusReading,
	"want_to_read": entities.StatusPlanned,
	"on_hold":      entities.StatusOnHold,
	"dropped":      entities.StatusDropped,
}

// trackerStates covers exports where readingStatus is blank and only the
// shelf state is known.
var trackerStates = map[string]entities.BookStatus{
	"bookshelf": entities.StatusPlanned,
	"owned":     entities.StatusPlanned,
}

type trackerFormatRule struct {
	substring string
	format    entities.BookFormat
}

var trackerFormats = []trackerFormatRule{
	{"audiobook", entities.FormatAudiobook},
	{"ebook", entities.FormatEbook},
	{"e-book", entities.FormatEbook},
	{"hardcover", entities.FormatPaper},
	{"paperback", entities.FormatPaper},
}

func mapTrackerStatus(status, state string) entities.BookStatus {
	if mapped, ok := trackerStatuses[strings.ToLower(status)]; ok {
		return mapped
	}
	if mapped, ok := trackerStates[strings.ToLower(state)]; ok {
		return mapped
	}
	return entities.StatusPlanned
}

func mapTrackerFormat(types string) entities.BookFormat {
	lower := strings.ToLower(types)
	for _, rule := range trackerFormats {
		if strings.Contains(lower, rule.substring) {
			return rule.format
		}
	}
	return entities.FormatPaper
}

// ParseBookTrackerCSV maps a Book Tracker app export onto canonical records.
// Recognized columns: title, subtitle, authors, categories/tags,
// readingStatus, state, types, pages, userRating, languages, startReading,
// endReading, location, isbn10/isbn13, remoteImageUrl/thumbnailRemoteImageUrl,
// releaseYear/originalReleaseYear, description.
func ParseBookTrackerCSV(text string) ([]Record, error) {
	rows, err := readTable(text)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		if row.err != nil {
			records = append(records, Record{ParseError: fmt.Sprintf("malformed CSV row: %v", row.err)})
			continue
		}

		language := firstLanguage(row.get("languages"), 10)
		if language == "" {
			language = "ru"
		}

		rec := Record{
			Title:         row.get("title"),
			Subtitle:      row.get("subtitle"),
			Description:   row.get("description"),
			Language:      language,
			Format:        mapTrackerFormat(row.get("types")),
			Status:        mapTrackerStatus(row.get("readingStatus"), row.get("state")),
			TotalPages:    parseIntField(row.get("pages")),
			Rating:        parseTrackerRating(row.get("userRating")),
			PublishedYear: parseIntField(row.get("releaseYear", "originalReleaseYear")),
			StartedAt:     parseDate(row.get("startReading")),
			FinishedAt:    parseDate(row.get("endReading")),
			Location:      row.get("location"),
			CoverURL:      row.get("remoteImageUrl", "thumbnailRemoteImageUrl"),
			ISBN:          row.get("isbn13", "isbn10"),
			Authors:       splitNames(row.get("authors"), ","),
			Genres:        splitNames(row.get("categories", "tags"), ","),
		}
		rec.finalize()
		records = append(records, rec)
	}
	return records, nil
}
