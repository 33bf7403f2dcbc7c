package importers

import (
	"time"

	"github.com/Andrei800/booknest/internal/entities"
)

// Record is the canonical normalized form shared by every import source.
// Each source parser maps its native columns or keys onto this shape; the
// pipeline then persists records one by one.
type Record struct {
	Title       string
	Subtitle    string
	Description string
	Language    string

	Format entities.BookFormat
	Status entities.BookStatus

	TotalPages  *int
	CurrentPage int

	StartedAt  *time.Time
	FinishedAt *time.Time

	PublishedYear *int
	Rating        *int

	Notes  string
	Quotes []string

	Location string
	CoverURL string
	ISBN     string

	Authors []string
	Genres  []string

	// ParseError marks a record that could not be decoded from the source
	// document. The pipeline counts it as failed without touching the store.
	ParseError string
}

// finalize applies cross-field consistency rules after source mapping:
// finished books with a known page count read as fully read.
func (r *Record) finalize() {
	if r.Status == entities.StatusFinished && r.TotalPages != nil {
		r.CurrentPage = *r.TotalPages
	}
}
