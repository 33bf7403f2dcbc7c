package exporters

import (
	"encoding/json"
	"time"

	"github.com/Andrei800/booknest/internal/entities"
)

type exportedBook struct {
	ID            uint     `json:"id"`
	Title         string   `json:"title"`
	Subtitle      *string  `json:"subtitle"`
	Authors       []string `json:"authors"`
	Genres        []string `json:"genres"`
	Description   *string  `json:"description"`
	Language      string   `json:"language"`
	Format        string   `json:"format"`
	Status        string   `json:"status"`
	TotalPages    *int     `json:"total_pages"`
	CurrentPage   int      `json:"current_page"`
	Progress      float64  `json:"progress"`
	StartedAt     *string  `json:"started_at"`
	FinishedAt    *string  `json:"finished_at"`
	PublishedYear *int     `json:"published_year"`
	Rating        *int     `json:"rating"`
	Notes         *string  `json:"notes"`
	Quotes        []string `json:"quotes"`
	Location      *string  `json:"location"`
	CoverURL      *string  `json:"cover_url"`
	ISBN          *string  `json:"isbn"`
	CreatedAt     string   `json:"created_at"`
	UpdatedAt     string   `json:"updated_at"`
}

type exportEnvelope struct {
	ExportedAt string         `json:"exported_at"`
	TotalBooks int            `json:"total_books"`
	Books      []exportedBook `json:"books"`
}

// ExportJSON serializes the full catalog, including fields the CSV column
// set cannot carry, wrapped in an envelope with the export timestamp and
// book count. Pretty output indents with two spaces.
func ExportJSON(books []entities.Book, pretty bool, now time.Time) ([]byte, error) {
	envelope := exportEnvelope{
		ExportedAt: now.Format(timestampLayout),
		TotalBooks: len(books),
		Books:      make([]exportedBook, 0, len(books)),
	}

	for _, book := range books {
		quotes := book.Quotes
		if quotes == nil {
			quotes = []string{}
		}
		envelope.Books = append(envelope.Books, exportedBook{
			ID:            book.ID,
			Title:         book.Title,
			Subtitle:      optString(book.Subtitle),
			Authors:       book.AuthorNames(),
			Genres:        book.GenreNames(),
			Description:   optString(book.Description),
			Language:      book.Language,
			Format:        string(book.Format),
			Status:        string(book.Status),
			TotalPages:    book.TotalPages,
			CurrentPage:   book.CurrentPage,
			Progress:      book.Progress(),
			StartedAt:     optTimestamp(book.StartedAt),
			FinishedAt:    optTimestamp(book.FinishedAt),
			PublishedYear: book.PublishedYear,
			Rating:        book.Rating,
			Notes:         optString(book.Notes),
			Quotes:        quotes,
			Location:      optString(book.Location),
			CoverURL:      optString(book.CoverURL),
			ISBN:          optString(book.ISBN),
			CreatedAt:     book.CreatedAt.Format(timestampLayout),
			UpdatedAt:     book.UpdatedAt.Format(timestampLayout),
		})
	}

	if pretty {
		return json.MarshalIndent(envelope, "", "  ")
	}
	return json.Marshal(envelope)
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optTimestamp(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.Format(timestampLayout)
	return &formatted
}
