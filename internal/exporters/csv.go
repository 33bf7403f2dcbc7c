package exporters

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"

	"github.com/Andrei800/booknest/internal/entities"
)

var csvHeaders = []string{
	"id", "title", "subtitle", "authors", "genres", "language",
	"format", "status", "total_pages", "current_page", "progress",
	"started_at", "finished_at", "published_year", "rating",
	"notes", "location", "cover_url", "isbn", "created_at",
}

// ExportCSV serializes the catalog as UTF-8 CSV with one row per book.
// Author and genre sets are joined with ", " inside a single cell, the
// reverse of how the importers split them.
func ExportCSV(books []entities.Book) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(csvHeaders); err != nil {
		return nil, err
	}

	for _, book := range books {
		created := book.CreatedAt
		row := []string{
			strconv.FormatUint(uint64(book.ID), 10),
			book.Title,
			book.Subtitle,
			strings.Join(book.AuthorNames(), ", "),
			strings.Join(book.GenreNames(), ", "),
			book.Language,
			string(book.Format),
			string(book.Status),
			formatOptionalInt(book.TotalPages),
			strconv.Itoa(book.CurrentPage),
			strconv.FormatFloat(book.Progress(), 'f', -1, 64),
			formatTimestamp(book.StartedAt),
			formatTimestamp(book.FinishedAt),
			formatOptionalInt(book.PublishedYear),
			formatOptionalInt(book.Rating),
			book.Notes,
			book.Location,
			book.CoverURL,
			book.ISBN,
			created.Format(timestampLayout),
		}
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatOptionalInt(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}
