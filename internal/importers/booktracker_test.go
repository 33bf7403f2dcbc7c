package importers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Andrei800/booknest/internal/entities"
)

func TestParseBookTrackerCSV(t *testing.T) {
	text := "title;authors;readingStatus;types;pages;userRating;languages;startReading;endReading;isbn13;categories\n" +
		"Мастер и Маргарита;Михаил Булгаков;read;PAPERBACK;300;4.5;ru,en;2023-01-10;2023-02-01;9785170878895;Классика, Фантастика\n"

	records, err := ParseBookTrackerCSV(text)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "Мастер и Маргарита", rec.Title)
	assert.Equal(t, []string{"Михаил Булгаков"}, rec.Authors)
	assert.Equal(t, entities.StatusFinished, rec.Status)
	assert.Equal(t, entities.FormatPaper, rec.Format)
	require.NotNil(t, rec.TotalPages)
	assert.Equal(t, 300, *rec.TotalPages)
	assert.Equal(t, 300, rec.CurrentPage, "finished books read to the last page")
	require.NotNil(t, rec.Rating)
	assert.Equal(t, 9, *rec.Rating, "4.5 stars on the ten scale")
	assert.Equal(t, "ru", rec.Language, "first language only")
	require.NotNil(t, rec.StartedAt)
	assert.Equal(t, "2023-01-10", rec.StartedAt.Format(time.DateOnly))
	require.NotNil(t, rec.FinishedAt)
	assert.Equal(t, "9785170878895", rec.ISBN)
	assert.Equal(t, []string{"Классика", "Фантастика"}, rec.Genres)
}

func TestMapTrackerStatus(t *testing.T) {
	assert.Equal(t, entities.StatusFinished, mapTrackerStatus("read", ""))
	assert.Equal(t, entities.StatusFinished, mapTrackerStatus("READ", ""))
	assert.Equal(t, entities.StatusReading, mapTrackerStatus("reading", ""))
	assert.Equal(t, entities.StatusPlanned, mapTrackerStatus("want_to_read", ""))
	assert.Equal(t, entities.StatusOnHold, mapTrackerStatus("on_hold", ""))
	assert.Equal(t, entities.StatusDropped, mapTrackerStatus("dropped", ""))

	// With no recognized status the shelf state decides.
	assert.Equal(t, entities.StatusPlanned, mapTrackerStatus("", "bookshelf"))
	assert.Equal(t, entities.StatusPlanned, mapTrackerStatus("", "owned"))
	assert.Equal(t, entities.StatusPlanned, mapTrackerStatus("", ""))
	assert.Equal(t, entities.StatusPlanned, mapTrackerStatus("mystery", "mystery"))
}

func TestMapTrackerFormat(t *testing.T) {
	assert.Equal(t, entities.FormatAudiobook, mapTrackerFormat("AUDIOBOOK"))
	assert.Equal(t, entities.FormatEbook, mapTrackerFormat("ebook, kindle"))
	assert.Equal(t, entities.FormatEbook, mapTrackerFormat("E-Book"))
	assert.Equal(t, entities.FormatPaper, mapTrackerFormat("Hardcover"))
	assert.Equal(t, entities.FormatPaper, mapTrackerFormat("paperback"))
	assert.Equal(t, entities.FormatPaper, mapTrackerFormat(""))
	assert.Equal(t, entities.FormatPaper, mapTrackerFormat("something else"))
}

func TestParseBookTrackerCSV_Defaults(t *testing.T) {
	text := "title;authors\nБез метаданных;Кто-то\n"

	records, err := ParseBookTrackerCSV(text)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "ru", rec.Language)
	assert.Equal(t, entities.StatusPlanned, rec.Status)
	assert.Equal(t, entities.FormatPaper, rec.Format)
	assert.Nil(t, rec.Rating)
	assert.Nil(t, rec.TotalPages)
}

func TestParseBookTrackerCSV_ISBNAndCoverPreference(t *testing.T) {
	text := "title;isbn10;isbn13;remoteImageUrl;thumbnailRemoteImageUrl\n" +
		"Книга;0306406152;9780306406157;https://example.com/big.jpg;https://example.com/small.jpg\n" +
		"Другая;0306406152;;;https://example.com/small.jpg\n"

	records, err := ParseBookTrackerCSV(text)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "9780306406157", records[0].ISBN, "isbn13 wins over isbn10")
	assert.Equal(t, "https://example.com/big.jpg", records[0].CoverURL)
	assert.Equal(t, "0306406152", records[1].ISBN)
	assert.Equal(t, "https://example.com/small.jpg", records[1].CoverURL)
}

func TestParseBookTrackerCSV_EmptyFile(t *testing.T) {
	records, err := ParseBookTrackerCSV("")
	require.NoError(t, err)
	assert.Empty(t, records)
}
