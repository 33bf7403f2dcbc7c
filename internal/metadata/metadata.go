package metadata

import "context"

// BookMetadata is what an external catalog knows about a book. Only fields
// the catalog actually returned are set.
type BookMetadata struct {
	Title         string   `json:"title,omitempty"`
	Authors       []string `json:"authors,omitempty"`
	Genres        []string `json:"genres,omitempty"`
	ISBN          string   `json:"isbn,omitempty"`
	CoverURL      string   `json:"cover_url,omitempty"`
	Description   string   `json:"description,omitempty"`
	PublishedYear int      `json:"published_year,omitempty"`
	TotalPages    int      `json:"total_pages,omitempty"`
	Language      string   `json:"language,omitempty"`
	ExternalID    string   `json:"external_id,omitempty"`
	Source        string   `json:"source"`
}

// CoverOption is one cover candidate offered to the user when picking a
// cover manually.
type CoverOption struct {
	URL     string `json:"url"`
	Source  string `json:"source"`
	Title   string `json:"title"`
	Authors string `json:"authors"`
}

// Provider fetches book metadata from one external catalog.
type Provider interface {
	SearchByTitle(ctx context.Context, title, author string) (*BookMetadata, error)
	SearchByISBN(ctx context.Context, isbn string) (*BookMetadata, error)
	SearchCovers(ctx context.Context, title, author string) ([]CoverOption, error)
}

// Service chains metadata providers: Google Books first, Open Library as
// the fallback when Google has no cover for the book.
type Service struct {
	google      *GoogleBooksClient
	openLibrary *OpenLibraryClient
}

func NewService(google *GoogleBooksClient, openLibrary *OpenLibraryClient) *Service {
	return &Service{google: google, openLibrary: openLibrary}
}

// FetchBookMetadata searches both catalogs for a book. A result without a
// cover URL triggers the fallback; if neither source has a cover, whatever
// partial metadata was found is still returned.
func (s *Service) FetchBookMetadata(ctx context.Context, title, author string) (*BookMetadata, error) {
	result, err := s.google.SearchByTitle(ctx, title, author)
	if err == nil && result != nil && result.CoverURL != "" {
		return result, nil
	}

	fallback, fallbackErr := s.openLibrary.SearchByTitle(ctx, title, author)
	if fallbackErr == nil && fallback != nil && fallback.CoverURL != "" {
		return fallback, nil
	}

	if result != nil {
		return result, nil
	}
	if fallback != nil {
		return fallback, nil
	}
	if err != nil {
		return nil, err
	}
	return nil, fallbackErr
}

// LookupISBN resolves full book metadata by ISBN, trying Google Books
// before Open Library.
func (s *Service) LookupISBN(ctx context.Context, isbn string) (*BookMetadata, error) {
	result, err := s.google.SearchByISBN(ctx, isbn)
	if err == nil && result != nil && result.Title != "" {
		return result, nil
	}
	return s.openLibrary.SearchByISBN(ctx, isbn)
}

// SearchCovers collects cover candidates from both catalogs, deduplicated
// by URL and capped at limit.
func (s *Service) SearchCovers(ctx context.Context, title, author string, limit int) ([]CoverOption, error) {
	if limit <= 0 {
		limit = 8
	}

	var covers []CoverOption
	if fromGoogle, err := s.google.SearchCovers(ctx, title, author); err == nil {
		covers = append(covers, fromGoogle...)
	}
	if fromOL, err := s.openLibrary.SearchCovers(ctx, title, author); err == nil {
		covers = append(covers, fromOL...)
	}

	seen := make(map[string]bool, len(covers))
	unique := make([]CoverOption, 0, len(covers))
	for _, cover := range covers {
		if seen[cover.URL] {
			continue
		}
		seen[cover.URL] = true
		unique = append(unique, cover)
		if len(unique) == limit {
			break
		}
	}
	return unique, nil
}
