package database

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Andrei800/booknest/internal/entities"
)

// BookFilter describes the list query: free-text search, field filters,
// sorting and pagination.
type BookFilter struct {
	Search    string
	Status    entities.BookStatus
	Format    entities.BookFormat
	Author    string
	Genre     string
	Language  string
	MinRating int
	Year      int
	SortBy    string
	SortOrder string
	Page      int
	PerPage   int
}

var bookSortColumns = map[string]string{
	"created_at":  "books.created_at",
	"title":       "books.title",
	"rating":      "books.rating",
	"finished_at": "books.finished_at",
}

// CreateBook persists a book together with its author and genre names,
// resolving each name with exact-match get-or-create. The whole operation
// runs in one transaction.
func (d *Database) CreateBook(book *entities.Book, authorNames, genreNames []string) error {
	return d.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(book).Error; err != nil {
			return err
		}

		for _, name := range authorNames {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			author, err := getOrCreateAuthor(tx, name)
			if err != nil {
				return err
			}
			if err := tx.Model(book).Association("Authors").Append(author); err != nil {
				return err
			}
		}

		for _, name := range genreNames {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			genre, err := getOrCreateGenre(tx, name)
			if err != nil {
				return err
			}
			if err := tx.Model(book).Association("Genres").Append(genre); err != nil {
				return err
			}
		}

		return nil
	})
}

func (d *Database) GetBookByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := d.DB.Preload("Authors").Preload("Genres").First(&book, id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// GetBookByTitle looks a book up by exact title match.
func (d *Database) GetBookByTitle(title string) (*entities.Book, error) {
	var book entities.Book
	err := d.DB.Preload("Authors").Preload("Genres").Where("title = ?", title).First(&book).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// BookTitleExists reports whether a book with exactly this title is already
// cataloged. The import pipeline uses it for its duplicate check.
func (d *Database) BookTitleExists(title string) (bool, error) {
	var count int64
	err := d.DB.Model(&entities.Book{}).Where("title = ?", title).Count(&count).Error
	return count > 0, err
}

// ListBooks returns a filtered, sorted, paginated page of books plus the
// total match count.
func (d *Database) ListBooks(f BookFilter) ([]entities.Book, int64, error) {
	query := d.DB.Model(&entities.Book{})

	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		query = query.
			Joins("LEFT JOIN book_authors ON book_authors.book_id = books.id").
			Joins("LEFT JOIN authors ON authors.id = book_authors.author_id").
			Where("LOWER(books.title) LIKE LOWER(?) OR LOWER(authors.name) LIKE LOWER(?)", pattern, pattern)
	}
	if f.Status != "" {
		query = query.Where("books.status = ?", f.Status)
	}
	if f.Format != "" {
		query = query.Where("books.format = ?", f.Format)
	}
	if f.Language != "" {
		query = query.Where("books.language = ?", f.Language)
	}
	if f.MinRating > 0 {
		query = query.Where("books.rating >= ?", f.MinRating)
	}
	if f.Year > 0 {
		query = query.Where("books.published_year = ?", f.Year)
	}
	if f.Author != "" {
		query = query.
			Joins("JOIN book_authors fa ON fa.book_id = books.id").
			Joins("JOIN authors fan ON fan.id = fa.author_id").
			Where("LOWER(fan.name) LIKE LOWER(?)", "%"+f.Author+"%")
	}
	if f.Genre != "" {
		query = query.
			Joins("JOIN book_genres fg ON fg.book_id = books.id").
			Joins("JOIN genres fgn ON fgn.id = fg.genre_id").
			Where("LOWER(fgn.name) LIKE LOWER(?)", "%"+f.Genre+"%")
	}

	// The author join can match a book more than once, so the count keys on
	// distinct ids. SQLite rejects COUNT(DISTINCT books.*).
	countQuery := query.Session(&gorm.Session{})
	if f.Search != "" {
		countQuery = countQuery.Distinct("books.id")
	}
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := bookSortColumns[f.SortBy]
	if !ok {
		column = "books.created_at"
	}
	direction := "DESC"
	if strings.EqualFold(f.SortOrder, "asc") {
		direction = "ASC"
	}
	query = query.Order(fmt.Sprintf("%s %s", column, direction))

	page := f.Page
	if page < 1 {
		page = 1
	}
	perPage := f.PerPage
	if perPage < 1 {
		perPage = 20
	}

	if f.Search != "" {
		query = query.Distinct("books.*")
	}
	var books []entities.Book
	err := query.Preload("Authors").Preload("Genres").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&books).Error
	return books, total, err
}

// GetAllBooks returns the full catalog in insertion order, used by export.
func (d *Database) GetAllBooks() ([]entities.Book, error) {
	var books []entities.Book
	err := d.DB.Preload("Authors").Preload("Genres").Order("books.id ASC").Find(&books).Error
	return books, err
}

func (d *Database) SaveBook(book *entities.Book) error {
	return d.DB.Omit("Authors", "Genres").Save(book).Error
}

// ReplaceBookAuthors swaps the book's author set for the given names,
// resolving each with exact-match get-or-create.
func (d *Database) ReplaceBookAuthors(book *entities.Book, names []string) error {
	return d.DB.Transaction(func(tx *gorm.DB) error {
		authors := make([]entities.Author, 0, len(names))
		for _, name := range names {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			author, err := getOrCreateAuthor(tx, name)
			if err != nil {
				return err
			}
			authors = append(authors, *author)
		}
		return tx.Model(book).Association("Authors").Replace(authors)
	})
}

// ReplaceBookGenres swaps the book's genre set for the given names.
func (d *Database) ReplaceBookGenres(book *entities.Book, names []string) error {
	return d.DB.Transaction(func(tx *gorm.DB) error {
		genres := make([]entities.Genre, 0, len(names))
		for _, name := range names {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			genre, err := getOrCreateGenre(tx, name)
			if err != nil {
				return err
			}
			genres = append(genres, *genre)
		}
		return tx.Model(book).Association("Genres").Replace(genres)
	})
}

// DeleteBook removes a book and its associations. Authors and genres
// themselves are kept.
func (d *Database) DeleteBook(id uint) error {
	return d.DB.Transaction(func(tx *gorm.DB) error {
		var book entities.Book
		if err := tx.First(&book, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&book).Association("Authors").Clear(); err != nil {
			return err
		}
		if err := tx.Model(&book).Association("Genres").Clear(); err != nil {
			return err
		}
		if err := tx.Where("book_id = ?", id).Delete(&entities.ReadingSession{}).Error; err != nil {
			return err
		}
		return tx.Delete(&book).Error
	})
}

// MetadataFields carries externally fetched metadata. Only fields that are
// currently empty on the book get filled in.
type MetadataFields struct {
	CoverURL      string
	Description   string
	PublishedYear *int
	ExternalID    string
}

// FillBookMetadata applies fetched metadata to a book without overwriting
// anything the user already entered.
func (d *Database) FillBookMetadata(id uint, fields MetadataFields) error {
	return d.DB.Transaction(func(tx *gorm.DB) error {
		var book entities.Book
		if err := tx.First(&book, id).Error; err != nil {
			return err
		}

		updates := map[string]any{}
		if fields.CoverURL != "" && book.CoverURL == "" {
			updates["cover_url"] = fields.CoverURL
		}
		if fields.Description != "" && book.Description == "" {
			updates["description"] = fields.Description
		}
		if fields.PublishedYear != nil && book.PublishedYear == nil {
			updates["published_year"] = *fields.PublishedYear
		}
		if fields.ExternalID != "" && book.ExternalID == "" {
			updates["external_id"] = fields.ExternalID
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&book).Updates(updates).Error
	})
}

// GetBooksMissingCovers lists books without a cover URL, oldest first.
func (d *Database) GetBooksMissingCovers() ([]entities.Book, error) {
	var books []entities.Book
	err := d.DB.Preload("Authors").
		Where("cover_url = '' OR cover_url IS NULL").
		Order("books.id ASC").Find(&books).Error
	return books, err
}

// AddReadingSession records one reading sitting for a book.
func (d *Database) AddReadingSession(session *entities.ReadingSession) error {
	if session.Date.IsZero() {
		session.Date = time.Now()
	}
	return d.DB.Create(session).Error
}

// GetReadingSessions returns a book's reading sessions, newest first.
func (d *Database) GetReadingSessions(bookID uint) ([]entities.ReadingSession, error) {
	var sessions []entities.ReadingSession
	err := d.DB.Where("book_id = ?", bookID).Order("date DESC, id DESC").Find(&sessions).Error
	return sessions, err
}
