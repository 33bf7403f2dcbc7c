package http

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Andrei800/booknest/internal/database"
	"github.com/Andrei800/booknest/internal/entities"
)

func TestAuthorsEndpoints(t *testing.T) {
	router, db := setupServer(t)

	require.NoError(t, db.CreateBook(&entities.Book{Title: "Одна"}, []string{"Плодовитый"}, nil))
	require.NoError(t, db.CreateBook(&entities.Book{Title: "Две"}, []string{"Плодовитый"}, nil))

	w := doJSON(t, router, http.MethodGet, "/api/authors", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var authors []entities.Author
	decodeBody(t, w, &authors)
	require.Len(t, authors, 1)

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/authors/%d/books", authors[0].ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var books []BookView
	decodeBody(t, w, &books)
	assert.Len(t, books, 2)

	w = doJSON(t, router, http.MethodGet, "/api/authors/popular", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var popular []database.EntityCount
	decodeBody(t, w, &popular)
	require.Len(t, popular, 1)
	assert.Equal(t, 2, popular[0].BooksCount)
}

func TestCreateAuthor_Conflict(t *testing.T) {
	router, _ := setupServer(t)

	w := doJSON(t, router, http.MethodPost, "/api/authors", map[string]any{"name": "Единственный"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/authors", map[string]any{"name": "Единственный"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/authors", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteAuthor_InUse(t *testing.T) {
	router, db := setupServer(t)

	book := &entities.Book{Title: "Занятая"}
	require.NoError(t, db.CreateBook(book, []string{"Занятый"}, nil))

	authors, err := db.ListAuthors("", 0)
	require.NoError(t, err)
	require.Len(t, authors, 1)

	w := doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/authors/%d", authors[0].ID), nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/authors/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGenresEndpoints(t *testing.T) {
	router, db := setupServer(t)

	require.NoError(t, db.CreateBook(&entities.Book{Title: "Жанровая"}, nil, []string{"Фантастика"}))

	w := doJSON(t, router, http.MethodGet, "/api/genres", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var genres []entities.Genre
	decodeBody(t, w, &genres)
	require.Len(t, genres, 1)
	assert.Equal(t, "Фантастика", genres[0].Name)

	w = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/genres/%d", genres[0].ID), nil)
	assert.Equal(t, http.StatusConflict, w.Code, "genre still attached to a book")
}

func TestStatsEndpoints(t *testing.T) {
	router, db := setupServer(t)

	pages := 200
	require.NoError(t, db.CreateBook(&entities.Book{
		Title: "Готова", Status: entities.StatusFinished,
		TotalPages: &pages, CurrentPage: 200,
	}, []string{"Автор"}, []string{"Жанр"}))

	w := doJSON(t, router, http.MethodGet, "/api/stats/overview", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var overview database.OverviewStats
	decodeBody(t, w, &overview)
	assert.EqualValues(t, 1, overview.TotalBooks)
	assert.EqualValues(t, 1, overview.BooksFinished)

	w = doJSON(t, router, http.MethodGet, "/api/stats/yearly?year=50", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/stats/top-genres", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var genres []database.GenreStats
	decodeBody(t, w, &genres)
	require.Len(t, genres, 1)
	assert.Equal(t, "Жанр", genres[0].Name)
}
