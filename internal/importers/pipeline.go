package importers

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/Andrei800/booknest/internal/entities"
)

// Pipeline persists normalized records one transaction per record, so one
// bad row never rolls back its neighbours. Duplicate titles are skipped,
// blank titles and store failures are counted as failed, and processing
// always continues to the end of the batch.
type Pipeline struct {
	db *gorm.DB
}

func NewPipeline(db *gorm.DB) *Pipeline {
	return &Pipeline{db: db}
}

// Run imports the batch and reports per-record outcomes. The returned error
// is reserved for store-level failures that invalidate the whole run.
func (p *Pipeline) Run(records []Record) (Result, error) {
	result := newResult()
	for i, rec := range records {
		result.add(p.processRecord(i+1, rec))
	}
	return result, nil
}

func (p *Pipeline) processRecord(position int, rec Record) rowResult {
	if rec.ParseError != "" {
		return rowResult{rowFailed, fmt.Sprintf("record %d: %s", position, rec.ParseError)}
	}

	title := strings.TrimSpace(rec.Title)
	if title == "" {
		return rowResult{rowFailed, fmt.Sprintf("record %d: empty title", position)}
	}

	var existing entities.Book
	err := p.db.Where("title = ?", title).First(&existing).Error
	if err == nil {
		return rowResult{rowSkipped, fmt.Sprintf("record %d: book %q already exists", position, title)}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return rowResult{rowFailed, fmt.Sprintf("record %d: %v", position, err)}
	}

	err = p.db.Transaction(func(tx *gorm.DB) error {
		book := buildBook(title, rec)
		if err := tx.Create(&book).Error; err != nil {
			return err
		}

		resolver := newEntityResolver(tx)
		if err := resolver.attachAuthors(&book, rec.Authors); err != nil {
			return err
		}
		return resolver.attachGenres(&book, rec.Genres)
	})
	if err != nil {
		return rowResult{rowFailed, fmt.Sprintf("record %d: %v", position, err)}
	}
	return rowResult{outcome: rowImported}
}

func buildBook(title string, rec Record) entities.Book {
	language := rec.Language
	if language == "" {
		language = "ru"
	}
	format := rec.Format
	if format == "" {
		format = entities.FormatPaper
	}
	status := rec.Status
	if status == "" {
		status = entities.StatusPlanned
	}

	return entities.Book{
		Title:         title,
		Subtitle:      rec.Subtitle,
		Description:   rec.Description,
		Language:      language,
		Format:        format,
		Status:        status,
		TotalPages:    rec.TotalPages,
		CurrentPage:   rec.CurrentPage,
		StartedAt:     rec.StartedAt,
		FinishedAt:    rec.FinishedAt,
		PublishedYear: rec.PublishedYear,
		Rating:        rec.Rating,
		Notes:         rec.Notes,
		Quotes:        rec.Quotes,
		Location:      rec.Location,
		CoverURL:      rec.CoverURL,
		ISBN:          rec.ISBN,
	}
}
