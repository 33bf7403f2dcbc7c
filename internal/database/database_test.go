package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Andrei800/booknest/internal/entities"
)

// setupTestDB creates a fresh test database
func setupTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func intPtr(n int) *int { return &n }

func timePtr(t time.Time) *time.Time { return &t }

func TestCreateBook(t *testing.T) {
	db := setupTestDB(t)

	book := &entities.Book{Title: "Мастер и Маргарита", Language: "ru"}
	err := db.CreateBook(book, []string{"Михаил Булгаков"}, []string{"Классика", "Фантастика"})
	require.NoError(t, err)
	require.NotZero(t, book.ID)

	loaded, err := db.GetBookByID(book.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Михаил Булгаков"}, loaded.AuthorNames())
	assert.ElementsMatch(t, []string{"Классика", "Фантастика"}, loaded.GenreNames())
}

func TestCreateBook_SharesAuthorRows(t *testing.T) {
	db := setupTestDB(t)

	first := &entities.Book{Title: "Первая"}
	require.NoError(t, db.CreateBook(first, []string{"Автор"}, nil))
	second := &entities.Book{Title: "Вторая"}
	require.NoError(t, db.CreateBook(second, []string{"Автор"}, nil))

	authors, err := db.ListAuthors("", 0)
	require.NoError(t, err)
	assert.Len(t, authors, 1)

	books, err := db.GetAuthorBooks(authors[0].ID)
	require.NoError(t, err)
	assert.Len(t, books, 2)
}

func TestBookTitleExists(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.CreateBook(&entities.Book{Title: "Есть"}, nil, nil))

	exists, err := db.BookTitleExists("Есть")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = db.BookTitleExists("Нет")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestListBooks_Filters(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.CreateBook(&entities.Book{
		Title: "Finished Paper", Status: entities.StatusFinished,
		Format: entities.FormatPaper, Language: "ru", Rating: intPtr(9),
	}, []string{"Author One"}, []string{"Drama"}))
	require.NoError(t, db.CreateBook(&entities.Book{
		Title: "Reading Ebook", Status: entities.StatusReading,
		Format: entities.FormatEbook, Language: "en", Rating: intPtr(5),
	}, []string{"Author Two"}, []string{"Comedy"}))

	books, total, err := db.ListBooks(BookFilter{Status: entities.StatusFinished})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, books, 1)
	assert.Equal(t, "Finished Paper", books[0].Title)

	_, total, err = db.ListBooks(BookFilter{Format: entities.FormatEbook})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	_, total, err = db.ListBooks(BookFilter{Language: "en"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	_, total, err = db.ListBooks(BookFilter{MinRating: 8})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	books, total, err = db.ListBooks(BookFilter{Author: "author one"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, books, 1)
	assert.Equal(t, "Finished Paper", books[0].Title)

	_, total, err = db.ListBooks(BookFilter{Genre: "comedy"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestListBooks_SearchMatchesTitleAndAuthor(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.CreateBook(&entities.Book{Title: "War and Peace"}, []string{"Leo Tolstoy"}, nil))
	require.NoError(t, db.CreateBook(&entities.Book{Title: "Other"}, []string{"Somebody"}, nil))

	_, total, err := db.ListBooks(BookFilter{Search: "war"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	_, total, err = db.ListBooks(BookFilter{Search: "tolstoy"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestListBooks_SearchCountsBookOnce(t *testing.T) {
	db := setupTestDB(t)

	// Both authors match the pattern; the join must not double-count the book.
	require.NoError(t, db.CreateBook(&entities.Book{Title: "Сборник"},
		[]string{"Иван Иванов", "Пётр Иванов"}, nil))

	books, total, err := db.ListBooks(BookFilter{Search: "Иванов"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, books, 1)
	assert.Equal(t, "Сборник", books[0].Title)
}

func TestListBooks_SortAndPagination(t *testing.T) {
	db := setupTestDB(t)

	for _, title := range []string{"B", "A", "C"} {
		require.NoError(t, db.CreateBook(&entities.Book{Title: title}, nil, nil))
	}

	books, total, err := db.ListBooks(BookFilter{SortBy: "title", SortOrder: "asc", Page: 1, PerPage: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, books, 2)
	assert.Equal(t, "A", books[0].Title)
	assert.Equal(t, "B", books[1].Title)

	books, _, err = db.ListBooks(BookFilter{SortBy: "title", SortOrder: "asc", Page: 2, PerPage: 2})
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "C", books[0].Title)
}

func TestDeleteBook_KeepsAuthors(t *testing.T) {
	db := setupTestDB(t)

	book := &entities.Book{Title: "Временная"}
	require.NoError(t, db.CreateBook(book, []string{"Остаётся"}, []string{"Жанр"}))
	require.NoError(t, db.AddReadingSession(&entities.ReadingSession{BookID: book.ID, PagesRead: 10}))

	require.NoError(t, db.DeleteBook(book.ID))

	_, err := db.GetBookByID(book.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	authors, err := db.ListAuthors("", 0)
	require.NoError(t, err)
	assert.Len(t, authors, 1)

	sessions, err := db.GetReadingSessions(book.ID)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestFillBookMetadata_OnlyFillsEmpty(t *testing.T) {
	db := setupTestDB(t)

	book := &entities.Book{Title: "С обложкой", CoverURL: "https://example.com/mine.jpg"}
	require.NoError(t, db.CreateBook(book, nil, nil))

	err := db.FillBookMetadata(book.ID, MetadataFields{
		CoverURL:      "https://example.com/other.jpg",
		Description:   "Найденное описание",
		PublishedYear: intPtr(1966),
	})
	require.NoError(t, err)

	loaded, err := db.GetBookByID(book.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/mine.jpg", loaded.CoverURL, "user cover is never overwritten")
	assert.Equal(t, "Найденное описание", loaded.Description)
	require.NotNil(t, loaded.PublishedYear)
	assert.Equal(t, 1966, *loaded.PublishedYear)
}

func TestGetBooksMissingCovers(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.CreateBook(&entities.Book{Title: "Без обложки"}, nil, nil))
	require.NoError(t, db.CreateBook(&entities.Book{Title: "С обложкой", CoverURL: "https://example.com/c.jpg"}, nil, nil))

	books, err := db.GetBooksMissingCovers()
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Без обложки", books[0].Title)
}

func TestAuthorLifecycle(t *testing.T) {
	db := setupTestDB(t)

	author, err := db.CreateAuthor("Уникальный")
	require.NoError(t, err)

	_, err = db.CreateAuthor("Уникальный")
	assert.ErrorIs(t, err, ErrAlreadyExists)

	book := &entities.Book{Title: "Его книга"}
	require.NoError(t, db.CreateBook(book, []string{"Уникальный"}, nil))

	err = db.DeleteAuthor(author.ID)
	assert.ErrorIs(t, err, ErrEntityInUse)

	require.NoError(t, db.DeleteBook(book.ID))
	require.NoError(t, db.DeleteAuthor(author.ID))

	_, err = db.GetAuthorByID(author.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestGenreLifecycle(t *testing.T) {
	db := setupTestDB(t)

	genre, err := db.CreateGenre("Фантастика")
	require.NoError(t, err)

	_, err = db.CreateGenre("Фантастика")
	assert.ErrorIs(t, err, ErrAlreadyExists)

	book := &entities.Book{Title: "Жанровая"}
	require.NoError(t, db.CreateBook(book, nil, []string{"Фантастика"}))

	assert.ErrorIs(t, db.DeleteGenre(genre.ID), ErrEntityInUse)
	require.NoError(t, db.DeleteBook(book.ID))
	require.NoError(t, db.DeleteGenre(genre.ID))
}

func TestPopularAuthors(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.CreateBook(&entities.Book{Title: "Одна"}, []string{"Популярный"}, nil))
	require.NoError(t, db.CreateBook(&entities.Book{Title: "Две"}, []string{"Популярный"}, nil))
	require.NoError(t, db.CreateBook(&entities.Book{Title: "Три"}, []string{"Редкий"}, nil))

	popular, err := db.PopularAuthors(10)
	require.NoError(t, err)
	require.Len(t, popular, 2)
	assert.Equal(t, "Популярный", popular[0].Name)
	assert.Equal(t, 2, popular[0].BooksCount)
}

func TestReplaceBookAuthors(t *testing.T) {
	db := setupTestDB(t)

	book := &entities.Book{Title: "Переименованная"}
	require.NoError(t, db.CreateBook(book, []string{"Старый"}, nil))

	require.NoError(t, db.ReplaceBookAuthors(book, []string{"Новый", "Второй"}))

	loaded, err := db.GetBookByID(book.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Новый", "Второй"}, loaded.AuthorNames())
}

func TestGetOverviewStats(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.CreateBook(&entities.Book{
		Title: "Прочитана", Status: entities.StatusFinished,
		TotalPages: intPtr(300), CurrentPage: 300, Rating: intPtr(9),
	}, nil, nil))
	require.NoError(t, db.CreateBook(&entities.Book{
		Title: "Читаю", Status: entities.StatusReading,
		TotalPages: intPtr(200), CurrentPage: 50, Rating: intPtr(6),
	}, nil, nil))
	require.NoError(t, db.CreateBook(&entities.Book{
		Title: "План", Status: entities.StatusPlanned,
	}, nil, nil))

	stats, err := db.GetOverviewStats()
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.TotalBooks)
	assert.EqualValues(t, 1, stats.BooksFinished)
	assert.EqualValues(t, 1, stats.BooksReading)
	assert.EqualValues(t, 1, stats.BooksPlanned)
	assert.EqualValues(t, 350, stats.PagesReadTotal)
	require.NotNil(t, stats.AverageRating)
	assert.InDelta(t, 7.5, *stats.AverageRating, 0.01)
}

func TestGetYearlyStats(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.CreateBook(&entities.Book{
		Title: "Январская", Status: entities.StatusFinished,
		TotalPages: intPtr(100), CurrentPage: 100,
		FinishedAt: timePtr(time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC)),
	}, nil, nil))
	require.NoError(t, db.CreateBook(&entities.Book{
		Title: "Мартовская", Status: entities.StatusFinished,
		TotalPages: intPtr(250), CurrentPage: 250,
		FinishedAt: timePtr(time.Date(2023, 3, 2, 0, 0, 0, 0, time.UTC)),
	}, nil, nil))
	require.NoError(t, db.CreateBook(&entities.Book{
		Title: "Прошлогодняя", Status: entities.StatusFinished,
		TotalPages: intPtr(500), CurrentPage: 500,
		FinishedAt: timePtr(time.Date(2022, 7, 1, 0, 0, 0, 0, time.UTC)),
	}, nil, nil))

	stats, err := db.GetYearlyStats(2023)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.BooksFinished)
	assert.EqualValues(t, 350, stats.PagesRead)
	require.Len(t, stats.Monthly, 12)
	assert.EqualValues(t, 1, stats.Monthly[0].BooksFinished)
	assert.EqualValues(t, 100, stats.Monthly[0].PagesRead)
	assert.EqualValues(t, 1, stats.Monthly[2].BooksFinished)
	assert.EqualValues(t, 0, stats.Monthly[1].BooksFinished)
}

func TestGetTopAuthors(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.CreateBook(&entities.Book{
		Title: "Раз", Status: entities.StatusFinished, Rating: intPtr(8),
	}, []string{"Лидер"}, nil))
	require.NoError(t, db.CreateBook(&entities.Book{
		Title: "Два", Status: entities.StatusFinished, Rating: intPtr(10),
	}, []string{"Лидер"}, nil))
	require.NoError(t, db.CreateBook(&entities.Book{
		Title: "В планах", Status: entities.StatusPlanned,
	}, []string{"Новичок"}, nil))

	top, err := db.GetTopAuthors(5, true)
	require.NoError(t, err)
	require.Len(t, top, 1, "finished_only excludes planned books")
	assert.Equal(t, "Лидер", top[0].Name)
	assert.Equal(t, 2, top[0].BooksCount)
	require.NotNil(t, top[0].AverageRating)
	assert.InDelta(t, 9.0, *top[0].AverageRating, 0.01)

	top, err = db.GetTopAuthors(5, false)
	require.NoError(t, err)
	assert.Len(t, top, 2)
}

func TestReadingSessions(t *testing.T) {
	db := setupTestDB(t)

	book := &entities.Book{Title: "С сессиями"}
	require.NoError(t, db.CreateBook(book, nil, nil))

	first := &entities.ReadingSession{BookID: book.ID, PagesRead: 30, Date: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}
	second := &entities.ReadingSession{BookID: book.ID, PagesRead: 45, Date: time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, db.AddReadingSession(first))
	require.NoError(t, db.AddReadingSession(second))

	sessions, err := db.GetReadingSessions(book.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, 45, sessions[0].PagesRead, "newest first")
}

func TestAddReadingSession_DefaultsDate(t *testing.T) {
	db := setupTestDB(t)

	book := &entities.Book{Title: "Сегодня"}
	require.NoError(t, db.CreateBook(book, nil, nil))

	session := &entities.ReadingSession{BookID: book.ID, PagesRead: 5}
	require.NoError(t, db.AddReadingSession(session))
	assert.False(t, session.Date.IsZero())
}
