package database

import (
	"errors"

	"gorm.io/gorm"

	"github.com/Andrei800/booknest/internal/entities"
)

// ErrEntityInUse is returned when deleting an author or genre that still has
// books attached.
var ErrEntityInUse = errors.New("entity still has books attached")

// ErrAlreadyExists is returned when creating an author or genre whose name
// is already taken.
var ErrAlreadyExists = errors.New("entity already exists")

func getOrCreateAuthor(tx *gorm.DB, name string) (*entities.Author, error) {
	var author entities.Author
	err := tx.Where("name = ?", name).First(&author).Error
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

func getOrCreateGenre(tx *gorm.DB, name string) (*entities.Genre, error) {
	var genre entities.Genre
	err := tx.Where("name = ?", name).First(&genre).Error
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

// GetOrCreateAuthor resolves an author name with exact-match get-or-create.
func (d *Database) GetOrCreateAuthor(name string) (*entities.Author, error) {
	return getOrCreateAuthor(d.DB, name)
}

// GetOrCreateGenre resolves a genre name with exact-match get-or-create.
func (d *Database) GetOrCreateGenre(name string) (*entities.Genre, error) {
	return getOrCreateGenre(d.DB, name)
}

func (d *Database) ListAuthors(search string, limit int) ([]entities.Author, error) {
	query := d.DB.Model(&entities.Author{})
	if search != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+search+"%")
	}
	if limit <= 0 {
		limit = 100
	}
	var authors []entities.Author
	err := query.Order("name ASC").Limit(limit).Find(&authors).Error
	return authors, err
}

func (d *Database) GetAuthorByID(id uint) (*entities.Author, error) {
	var author entities.Author
	if err := d.DB.First(&author, id).Error; err != nil {
		return nil, err
	}
	return &author, nil
}

func (d *Database) GetAuthorBooks(id uint) ([]entities.Book, error) {
	var author entities.Author
	err := d.DB.Preload("Books").Preload("Books.Authors").Preload("Books.Genres").
		First(&author, id).Error
	if err != nil {
		return nil, err
	}
	return author.Books, nil
}

func (d *Database) CreateAuthor(name string) (*entities.Author, error) {
	var existing entities.Author
	err := d.DB.Where("name = ?", name).First(&existing).Error
	if err == nil {
		return nil, ErrAlreadyExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	author := entities.Author{Name: name}
	if err := d.DB.Create(&author).Error; err != nil {
		return nil, err
	}
	return &author, nil
}

func (d *Database) DeleteAuthor(id uint) error {
	var author entities.Author
	if err := d.DB.First(&author, id).Error; err != nil {
		return err
	}
	count := d.DB.Model(&author).Association("Books").Count()
	if count > 0 {
		return ErrEntityInUse
	}
	return d.DB.Delete(&author).Error
}

func (d *Database) ListGenres(search string, limit int) ([]entities.Genre, error) {
	query := d.DB.Model(&entities.Genre{})
	if search != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+search+"%")
	}
	if limit <= 0 {
		limit = 100
	}
	var genres []entities.Genre
	err := query.Order("name ASC").Limit(limit).Find(&genres).Error
	return genres, err
}

func (d *Database) GetGenreByID(id uint) (*entities.Genre, error) {
	var genre entities.Genre
	if err := d.DB.First(&genre, id).Error; err != nil {
		return nil, err
	}
	return &genre, nil
}

func (d *Database) CreateGenre(name string) (*entities.Genre, error) {
	var existing entities.Genre
	err := d.DB.Where("name = ?", name).First(&existing).Error
	if err == nil {
		return nil, ErrAlreadyExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	genre := entities.Genre{Name: name}
	if err := d.DB.Create(&genre).Error; err != nil {
		return nil, err
	}
	return &genre, nil
}

func (d *Database) DeleteGenre(id uint) error {
	var genre entities.Genre
	if err := d.DB.First(&genre, id).Error; err != nil {
		return err
	}
	count := d.DB.Model(&genre).Association("Books").Count()
	if count > 0 {
		return ErrEntityInUse
	}
	return d.DB.Delete(&genre).Error
}

// EntityCount pairs an author or genre with how many books reference it.
type EntityCount struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	BooksCount int    `json:"books_count"`
}

// PopularAuthors lists authors by descending book count.
func (d *Database) PopularAuthors(limit int) ([]EntityCount, error) {
	if limit <= 0 {
		limit = 10
	}
	var results []EntityCount
	err := d.DB.Model(&entities.Author{}).
		Select("authors.id, authors.name, COUNT(book_authors.book_id) AS books_count").
		Joins("JOIN book_authors ON book_authors.author_id = authors.id").
		Group("authors.id, authors.name").
		Order("books_count DESC").
		Limit(limit).
		Scan(&results).Error
	return results, err
}

// PopularGenres lists genres by descending book count.
func (d *Database) PopularGenres(limit int) ([]EntityCount, error) {
	if limit <= 0 {
		limit = 10
	}
	var results []EntityCount
	err := d.DB.Model(&entities.Genre{}).
		Select("genres.id, genres.name, COUNT(book_genres.book_id) AS books_count").
		Joins("JOIN book_genres ON book_genres.genre_id = genres.id").
		Group("genres.id, genres.name").
		Order("books_count DESC").
		Limit(limit).
		Scan(&results).Error
	return results, err
}
