package metadata

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGoogleClient(server *httptest.Server, language string) *GoogleBooksClient {
	client := NewGoogleBooksClient("", language)
	client.baseURL = server.URL
	client.httpClient = server.Client()
	return client
}

func googleVolumeResponse(items ...googleVolume) string {
	data, _ := json.Marshal(googleVolumeList{TotalItems: len(items), Items: items})
	return string(data)
}

func TestGoogleSearchByTitle_LanguageRetry(t *testing.T) {
	var queries []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.RawQuery)
		if r.URL.Query().Get("langRestrict") != "" {
			w.Write([]byte(googleVolumeResponse()))
			return
		}
		w.Write([]byte(googleVolumeResponse(googleVolume{
			ID: "vol1",
			VolumeInfo: googleVolumeInfo{
				Title:         "Мастер и Маргарита",
				Authors:       []string{"Михаил Булгаков"},
				PublishedDate: "1966-01-01",
				PageCount:     480,
				ImageLinks:    googleImageLinks{Thumbnail: "http://example.com/t.jpg&edge=curl"},
			},
		})))
	}))
	defer server.Close()

	client := newTestGoogleClient(server, "ru")
	found, err := client.SearchByTitle(context.Background(), "Мастер и Маргарита", "Булгаков")
	require.NoError(t, err)
	require.Len(t, queries, 2, "empty restricted result retries without langRestrict")

	assert.Equal(t, "Мастер и Маргарита", found.Title)
	assert.Equal(t, 1966, found.PublishedYear)
	assert.Equal(t, 480, found.TotalPages)
	assert.Equal(t, "vol1", found.ExternalID)
	assert.Equal(t, googleBooksSource, found.Source)
	assert.Equal(t, "https://example.com/t.jpg", found.CoverURL, "https forced, page curl stripped")
}

func TestGoogleSearchByTitle_NoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(googleVolumeResponse()))
	}))
	defer server.Close()

	client := newTestGoogleClient(server, "")
	_, err := client.SearchByTitle(context.Background(), "Несуществующая", "")
	assert.Error(t, err)
}

func TestGoogleSearchByISBN(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "isbn:9780306406157", r.URL.Query().Get("q"))
		w.Write([]byte(googleVolumeResponse(googleVolume{
			ID:         "vol2",
			VolumeInfo: googleVolumeInfo{Title: "Найденная"},
		})))
	}))
	defer server.Close()

	client := newTestGoogleClient(server, "")
	found, err := client.SearchByISBN(context.Background(), "978-0-306-40615-7")
	require.NoError(t, err)
	assert.Equal(t, "Найденная", found.Title)
	assert.Equal(t, "9780306406157", found.ISBN, "separators stripped")

	_, err = client.SearchByISBN(context.Background(), "123")
	assert.Error(t, err, "wrong length is rejected before any request")
}

func TestGoogleSearchCovers_ZoomUpgrade(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(googleVolumeResponse(
			googleVolume{VolumeInfo: googleVolumeInfo{
				Title:      "Первая",
				ImageLinks: googleImageLinks{Thumbnail: "https://example.com/a.jpg?zoom=1"},
			}},
			googleVolume{VolumeInfo: googleVolumeInfo{Title: "Без обложки"}},
		)))
	}))
	defer server.Close()

	client := newTestGoogleClient(server, "")
	covers, err := client.SearchCovers(context.Background(), "Первая", "")
	require.NoError(t, err)
	require.Len(t, covers, 1, "volumes without images are dropped")
	assert.Equal(t, "https://example.com/a.jpg?zoom=3", covers[0].URL)
	assert.Equal(t, "Google Books", covers[0].Source)
}

func TestBestImageLink(t *testing.T) {
	assert.Equal(t, "", bestImageLink(googleImageLinks{}))
	assert.Equal(t, "https://x/xl.jpg", bestImageLink(googleImageLinks{
		ExtraLarge: "https://x/xl.jpg",
		Thumbnail:  "https://x/t.jpg",
	}), "largest image wins")
	assert.Equal(t, "https://x/t.jpg", bestImageLink(googleImageLinks{
		Thumbnail: "http://x/t.jpg&edge=curl",
	}))
}

func TestNormalizeISBN(t *testing.T) {
	assert.Equal(t, "9780306406157", normalizeISBN("978-0-306-40615-7"))
	assert.Equal(t, "0306406152", normalizeISBN("0 306 40615 2"))
	assert.Equal(t, "", normalizeISBN("12345"))
	assert.Equal(t, "", normalizeISBN(""))
}
