package importers

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/Andrei800/booknest/internal/entities"
)

// entityResolver resolves author and genre names for a single record inside
// its transaction. Lookups are case-insensitive so a file mixing "tolstoy"
// and "Tolstoy" never produces two author rows, and a per-record seen set
// collapses duplicate names within one cell.
type entityResolver struct {
	tx          *gorm.DB
	seenAuthors map[string]bool
	seenGenres  map[string]bool
}

func newEntityResolver(tx *gorm.DB) *entityResolver {
	return &entityResolver{
		tx:          tx,
		seenAuthors: make(map[string]bool),
		seenGenres:  make(map[string]bool),
	}
}

func (r *entityResolver) attachAuthors(book *entities.Book, names []string) error {
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" || r.seenAuthors[key] {
			continue
		}
		r.seenAuthors[key] = true

		author, err := findOrCreateAuthor(r.tx, name)
		if err != nil {
			return err
		}
		if err := r.tx.Model(book).Association("Authors").Append(author); err != nil {
			return err
		}
	}
	return nil
}

func (r *entityResolver) attachGenres(book *entities.Book, names []string) error {
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" || r.seenGenres[key] {
			continue
		}
		r.seenGenres[key] = true

		genre, err := findOrCreateGenre(r.tx, name)
		if err != nil {
			return err
		}
		if err := r.tx.Model(book).Association("Genres").Append(genre); err != nil {
			return err
		}
	}
	return nil
}

func findOrCreateAuthor(tx *gorm.DB, name string) (*entities.Author, error) {
	name = strings.TrimSpace(name)
	var author entities.Author
	err := tx.Where("LOWER(name) = LOWER(?)", name).First(&author).Error
	if err == nil {
		return &author, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	author = entities.Author{Name: name}
	if err := tx.Create(&author).Error; err != nil {
		return nil, err
	}
	return &author, nil
}

func findOrCreateGenre(tx *gorm.DB, name string) (*entities.Genre, error) {
	name = strings.TrimSpace(name)
	var genre entities.Genre
	err := tx.Where("LOWER(name) = LOWER(?)", name).First(&genre).Error
	if err == nil {
		return &genre, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	genre = entities.Genre{Name: name}
	if err := tx.Create(&genre).Error; err != nil {
		return nil, err
	}
	return &genre, nil
}
