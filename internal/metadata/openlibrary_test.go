package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOpenLibraryClient(server *httptest.Server) *OpenLibraryClient {
	client := NewOpenLibraryClient()
	client.baseURL = server.URL
	client.coversURL = "https://covers.example.com"
	client.httpClient = server.Client()
	client.rateLimiter = newRateLimiter(0)
	return client
}

func TestOpenLibrarySearchByTitle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search.json":
			assert.Equal(t, "Мастер и Маргарита", r.URL.Query().Get("title"))
			w.Write([]byte(`{"numFound": 1, "docs": [{
				"key": "/works/OL123W",
				"title": "Мастер и Маргарита",
				"author_name": ["Михаил Булгаков"],
				"first_publish_year": 1966,
				"cover_i": 42
			}]}`))
		case "/works/OL123W.json":
			w.Write([]byte(`{"description": {"value": "Роман о визите дьявола в Москву."}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := newTestOpenLibraryClient(server)
	found, err := client.SearchByTitle(context.Background(), "Мастер и Маргарита", "Булгаков")
	require.NoError(t, err)

	assert.Equal(t, "Мастер и Маргарита", found.Title)
	assert.Equal(t, []string{"Михаил Булгаков"}, found.Authors)
	assert.Equal(t, 1966, found.PublishedYear)
	assert.Equal(t, "https://covers.example.com/b/id/42-L.jpg", found.CoverURL)
	assert.Equal(t, "Роман о визите дьявола в Москву.", found.Description)
	assert.Equal(t, openLibrarySource, found.Source)
}

func TestOpenLibrarySearchByISBN(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/isbn/9780306406157.json":
			w.Write([]byte(`{
				"key": "/books/OL7B",
				"title": "Найденная",
				"publish_date": "1994",
				"number_of_pages": 320,
				"authors": [{"key": "/authors/OL1A"}]
			}`))
		case "/authors/OL1A.json":
			w.Write([]byte(`{"name": "Автор Книги"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := newTestOpenLibraryClient(server)
	found, err := client.SearchByISBN(context.Background(), "978-0-306-40615-7")
	require.NoError(t, err)

	assert.Equal(t, "Найденная", found.Title)
	assert.Equal(t, "9780306406157", found.ISBN)
	assert.Equal(t, 320, found.TotalPages)
	assert.Equal(t, 1994, found.PublishedYear)
	assert.Equal(t, []string{"Автор Книги"}, found.Authors)
	assert.Equal(t, "https://covers.example.com/b/isbn/9780306406157-L.jpg", found.CoverURL,
		"no cover id falls back to the ISBN cover URL")
}

func TestOpenLibrarySearchCovers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"numFound": 2, "docs": [
			{"title": "С обложкой", "cover_i": 7, "author_name": ["Кто-то"]},
			{"title": "Без обложки"}
		]}`))
	}))
	defer server.Close()

	client := newTestOpenLibraryClient(server)
	covers, err := client.SearchCovers(context.Background(), "запрос", "")
	require.NoError(t, err)
	require.Len(t, covers, 1)
	assert.Equal(t, "https://covers.example.com/b/id/7-L.jpg", covers[0].URL)
	assert.Equal(t, "Open Library", covers[0].Source)
}

func TestRateLimiter(t *testing.T) {
	limiter := newRateLimiter(50 * time.Millisecond)

	start := time.Now()
	limiter.wait()
	limiter.wait()
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond, "second call waits out the interval")
}
