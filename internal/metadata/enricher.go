package metadata

import (
	"context"
	"fmt"
	"strings"

	"github.com/Andrei800/booknest/internal/database"
	"github.com/Andrei800/booknest/internal/entities"
)

// Fetcher is the metadata lookup the enricher runs against, satisfied by
// Service.
type Fetcher interface {
	FetchBookMetadata(ctx context.Context, title, author string) (*BookMetadata, error)
}

// BookStore is the slice of the database the enricher needs.
type BookStore interface {
	GetBookByID(id uint) (*entities.Book, error)
	FillBookMetadata(id uint, fields database.MetadataFields) error
	GetBooksMissingCovers() ([]entities.Book, error)
}

// EnrichmentResult reports which fields a single enrichment filled in.
type EnrichmentResult struct {
	Book          *entities.Book `json:"book"`
	FieldsUpdated []string       `json:"fields_updated"`
	Source        string         `json:"source"`
}

// Enricher fills empty book fields from external catalogs. Existing values
// are never overwritten; a user's hand-picked cover always wins.
type Enricher struct {
	fetcher Fetcher
	db      BookStore
}

func NewEnricher(fetcher Fetcher, db BookStore) *Enricher {
	return &Enricher{fetcher: fetcher, db: db}
}

// EnrichBook looks the book up by title and first author and fills in
// whatever is missing.
func (e *Enricher) EnrichBook(ctx context.Context, bookID uint) (*EnrichmentResult, error) {
	book, err := e.db.GetBookByID(bookID)
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}

	author := ""
	if names := book.AuthorNames(); len(names) > 0 {
		author = names[0]
	}

	found, err := e.fetcher.FetchBookMetadata(ctx, book.Title, author)
	if err != nil {
		return nil, fmt.Errorf("metadata search failed: %w", err)
	}
	if found == nil {
		return &EnrichmentResult{Book: book}, nil
	}

	fields, updated := buildFill(book, found)
	if len(updated) > 0 {
		if err := e.db.FillBookMetadata(bookID, fields); err != nil {
			return nil, fmt.Errorf("update book metadata: %w", err)
		}
		book, err = e.db.GetBookByID(bookID)
		if err != nil {
			return nil, fmt.Errorf("refresh book: %w", err)
		}
	}

	return &EnrichmentResult{
		Book:          book,
		FieldsUpdated: updated,
		Source:        found.Source,
	}, nil
}

// BulkEnrichmentResult summarizes a cover backfill run.
type BulkEnrichmentResult struct {
	TotalBooks int      `json:"total_books"`
	Enriched   int      `json:"enriched"`
	Failed     int      `json:"failed"`
	Skipped    int      `json:"skipped"`
	Errors     []string `json:"errors,omitempty"`
}

// EnrichAllMissing backfills every book without a cover. Individual lookup
// failures are collected, not fatal.
func (e *Enricher) EnrichAllMissing(ctx context.Context) (*BulkEnrichmentResult, error) {
	books, err := e.db.GetBooksMissingCovers()
	if err != nil {
		return nil, fmt.Errorf("get books missing covers: %w", err)
	}

	result := &BulkEnrichmentResult{TotalBooks: len(books)}
	for _, book := range books {
		select {
		case <-ctx.Done():
			result.Errors = append(result.Errors, "operation cancelled")
			return result, ctx.Err()
		default:
		}

		enriched, err := e.EnrichBook(ctx, book.ID)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", book.Title, err))
			continue
		}
		if len(enriched.FieldsUpdated) > 0 {
			result.Enriched++
		} else {
			result.Skipped++
		}
	}
	return result, nil
}

func buildFill(book *entities.Book, found *BookMetadata) (database.MetadataFields, []string) {
	var fields database.MetadataFields
	var updated []string

	if book.CoverURL == "" && found.CoverURL != "" {
		fields.CoverURL = found.CoverURL
		updated = append(updated, "cover_url")
	}
	if book.Description == "" && found.Description != "" {
		fields.Description = found.Description
		updated = append(updated, "description")
	}
	if book.PublishedYear == nil && found.PublishedYear > 0 {
		year := found.PublishedYear
		fields.PublishedYear = &year
		updated = append(updated, "published_year")
	}
	if book.ExternalID == "" && found.ExternalID != "" {
		fields.ExternalID = strings.TrimSpace(found.ExternalID)
		updated = append(updated, "external_id")
	}
	return fields, updated
}
