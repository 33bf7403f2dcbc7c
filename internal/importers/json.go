package importers

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Andrei800/booknest/internal/entities"
)

// stringOrList accepts both "Name" and ["Name", "Other"] in source JSON,
// since hand-written files frequently use a bare string for a single value.
type stringOrList []string

func (s *stringOrList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*s = stringOrList{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*s = stringOrList(list)
	return nil
}

type jsonBook struct {
	Title         string       `json:"title"`
	Subtitle      string       `json:"subtitle"`
	Description   string       `json:"description"`
	Language      string       `json:"language"`
	Format        string       `json:"format"`
	Status        string       `json:"status"`
	TotalPages    *int         `json:"total_pages"`
	CurrentPage   int          `json:"current_page"`
	Rating        *int         `json:"rating"`
	Notes         string       `json:"notes"`
	Quotes        []string     `json:"quotes"`
	Location      string       `json:"location"`
	CoverURL      string       `json:"cover_url"`
	PublishedYear *int         `json:"published_year"`
	ISBN          string       `json:"isbn"`
	Authors       stringOrList `json:"authors"`
	Genres        stringOrList `json:"genres"`
}

// ParseJSONBooks maps a JSON document onto canonical records. The document
// is either a bare array of book objects or an envelope with a "books" key,
// matching the shape this application exports. A malformed document is a
// format error; a malformed element only fails that one record.
func ParseJSONBooks(data []byte) ([]Record, error) {
	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		var envelope struct {
			Books []json.RawMessage `json:"books"`
		}
		if err := json.Unmarshal(data, &envelope); err != nil {
			return nil, formatErrorf("malformed JSON: %v", err)
		}
		elements = envelope.Books
	}

	records := make([]Record, 0, len(elements))
	for _, element := range elements {
		var book jsonBook
		if err := json.Unmarshal(element, &book); err != nil {
			records = append(records, Record{ParseError: fmt.Sprintf("invalid book object: %v", err)})
			continue
		}

		language := book.Language
		if language == "" {
			language = "ru"
		}

		var rating *int
		if book.Rating != nil {
			rating = clampRating(*book.Rating)
		}

		rec := Record{
			Title:         book.Title,
			Subtitle:      book.Subtitle,
			Description:   book.Description,
			Language:      language,
			Format:        entities.ParseFormat(book.Format),
			Status:        entities.ParseStatus(book.Status),
			TotalPages:    book.TotalPages,
			CurrentPage:   book.CurrentPage,
			Rating:        rating,
			Notes:         book.Notes,
			Quotes:        book.Quotes,
			Location:      book.Location,
			CoverURL:      book.CoverURL,
			PublishedYear: book.PublishedYear,
			ISBN:          book.ISBN,
			Authors:       trimNames(book.Authors),
			Genres:        trimNames(book.Genres),
		}
		rec.finalize()
		records = append(records, rec)
	}
	return records, nil
}

func trimNames(names []string) []string {
	var out []string
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name != "" {
			out = append(out, name)
		}
	}
	return out
}
