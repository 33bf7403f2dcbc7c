package importers

import (
	"fmt"

	"github.com/Andrei800/booknest/internal/entities"
)

// ParseGenericCSV maps the documented import schema onto canonical records.
// Expected columns: title (required), authors/author, genres/genre, status,
// format, language, total_pages, current_page, rating, notes, location,
// published_year, started_at, finished_at, plus optional subtitle and
// description. Unrecognized status and format values fall back to the
// catalog defaults.
func ParseGenericCSV(text string) ([]Record, error) {
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

		language := row.get("language")
		if language == "" {
			language = "ru"
		}

		rec := Record{
			Title:         row.get("title"),
			Subtitle:      row.get("subtitle"),
			Description:   row.get("description"),
			Language:      language,
			Format:        entities.ParseFormat(row.get("format")),
			Status:        entities.ParseStatus(row.get("status")),
			TotalPages:    parseIntField(row.get("total_pages")),
			StartedAt:     parseDate(row.get("started_at")),
			FinishedAt:    parseDate(row.get("finished_at")),
			Rating:        parseRating(row.get("rating")),
			PublishedYear: parseIntField(row.get("published_year")),
			Notes:         row.get("notes"),
			Location:      row.get("location"),
			Authors:       splitNames(row.get("authors", "author"), ","),
			Genres:        splitNames(row.get("genres", "genre"), ","),
		}
		if page := parseIntField(row.get("current_page")); page != nil {
			rec.CurrentPage = *page
		}
		rec.finalize()
		records = append(records, rec)
	}
	return records, nil
}
