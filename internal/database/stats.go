package database

import (
	"fmt"
	"math"

	"gorm.io/gorm"

	"github.com/Andrei800/booknest/internal/entities"
)

type OverviewStats struct {
	TotalBooks    int64    `json:"total_books"`
	BooksFinished int64    `json:"books_finished"`
	BooksReading  int64    `json:"books_reading"`
	BooksPlanned  int64    `json:"books_planned"`
	BooksWishlist int64    `json:"books_wishlist"`
	PagesReadTotal int64   `json:"pages_read_total"`
	AverageRating *float64 `json:"average_rating"`
}

type MonthlyStats struct {
	Month         string `json:"month"`
	BooksFinished int64  `json:"books_finished"`
	PagesRead     int64  `json:"pages_read"`
}

type YearlyStats struct {
	Year          int            `json:"year"`
	BooksFinished int64          `json:"books_finished"`
	PagesRead     int64          `json:"pages_read"`
	Monthly       []MonthlyStats `json:"monthly"`
}

type AuthorStats struct {
	Name          string   `json:"name"`
	BooksCount    int      `json:"books_count"`
	AverageRating *float64 `json:"average_rating"`
}

type GenreStats struct {
	Name       string `json:"name"`
	BooksCount int    `json:"books_count"`
}

func (d *Database) statusCount(status entities.BookStatus) (int64, error) {
	var count int64
	err := d.DB.Model(&entities.Book{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

func (d *Database) GetOverviewStats() (OverviewStats, error) {
	var stats OverviewStats

	if err := d.DB.Model(&entities.Book{}).Count(&stats.TotalBooks).Error; err != nil {
		return stats, err
	}

	var err error
	if stats.BooksFinished, err = d.statusCount(entities.StatusFinished); err != nil {
		return stats, err
	}
	if stats.BooksReading, err = d.statusCount(entities.StatusReading); err != nil {
		return stats, err
	}
	if stats.BooksPlanned, err = d.statusCount(entities.StatusPlanned); err != nil {
		return stats, err
	}
	if stats.BooksWishlist, err = d.statusCount(entities.StatusWishlist); err != nil {
		return stats, err
	}

	var pages *int64
	if err := d.DB.Model(&entities.Book{}).Select("SUM(current_page)").Scan(&pages).Error; err != nil {
		return stats, err
	}
	if pages != nil {
		stats.PagesReadTotal = *pages
	}

	var avg *float64
	err = d.DB.Model(&entities.Book{}).
		Where("rating IS NOT NULL").
		Select("AVG(rating)").Scan(&avg).Error
	if err != nil {
		return stats, err
	}
	if avg != nil {
		rounded := math.Round(*avg*10) / 10
		stats.AverageRating = &rounded
	}

	return stats, nil
}

func (d *Database) GetYearlyStats(year int) (YearlyStats, error) {
	stats := YearlyStats{Year: year, Monthly: []MonthlyStats{}}

	// Fresh builder per query: gorm statements accumulate state when reused.
	finishedIn := func(pattern, value string) *gorm.DB {
		return d.DB.Model(&entities.Book{}).
			Where("status = ?", entities.StatusFinished).
			Where(fmt.Sprintf("strftime('%s', finished_at) = ?", pattern), value)
	}

	yearValue := fmt.Sprintf("%04d", year)
	if err := finishedIn("%Y", yearValue).Count(&stats.BooksFinished).Error; err != nil {
		return stats, err
	}

	var pages *int64
	if err := finishedIn("%Y", yearValue).Select("SUM(total_pages)").Scan(&pages).Error; err != nil {
		return stats, err
	}
	if pages != nil {
		stats.PagesRead = *pages
	}

	for month := 1; month <= 12; month++ {
		monthly := MonthlyStats{Month: fmt.Sprintf("%04d-%02d", year, month)}

		if err := finishedIn("%Y-%m", monthly.Month).Count(&monthly.BooksFinished).Error; err != nil {
			return stats, err
		}
		var monthPages *int64
		if err := finishedIn("%Y-%m", monthly.Month).Select("SUM(total_pages)").Scan(&monthPages).Error; err != nil {
			return stats, err
		}
		if monthPages != nil {
			monthly.PagesRead = *monthPages
		}

		stats.Monthly = append(stats.Monthly, monthly)
	}

	return stats, nil
}

func (d *Database) GetTopAuthors(limit int, finishedOnly bool) ([]AuthorStats, error) {
	if limit <= 0 {
		limit = 10
	}

	query := d.DB.Model(&entities.Author{}).
		Select("authors.name, COUNT(book_authors.book_id) AS books_count, AVG(books.rating) AS average_rating").
		Joins("JOIN book_authors ON book_authors.author_id = authors.id").
		Joins("JOIN books ON books.id = book_authors.book_id")

	if finishedOnly {
		query = query.Where("books.status = ?", entities.StatusFinished)
	}

	var results []AuthorStats
	err := query.Group("authors.id, authors.name").
		Order("books_count DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	for i := range results {
		if results[i].AverageRating != nil {
			rounded := math.Round(*results[i].AverageRating*10) / 10
			results[i].AverageRating = &rounded
		}
	}
	return results, nil
}

func (d *Database) GetTopGenres(limit int, finishedOnly bool) ([]GenreStats, error) {
	if limit <= 0 {
		limit = 10
	}

	query := d.DB.Model(&entities.Genre{}).
		Select("genres.name, COUNT(book_genres.book_id) AS books_count").
		Joins("JOIN book_genres ON book_genres.genre_id = genres.id").
		Joins("JOIN books ON books.id = book_genres.book_id")

	if finishedOnly {
		query = query.Where("books.status = ?", entities.StatusFinished)
	}

	var results []GenreStats
	err := query.Group("genres.id, genres.name").
		Order("books_count DESC").
		Limit(limit).
		Scan(&results).Error
	return results, err
}
