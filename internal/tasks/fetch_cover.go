package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/Andrei800/booknest/internal/metadata"
)

// FetchCoverTask fills in a newly created book's cover and missing metadata
// from external catalogs.
type FetchCoverTask struct {
	BookID uint `json:"book_id"`
}

func (t FetchCoverTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "fetch_cover",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// FetchCoverProcessor builds the processor for cover fetch tasks.
func FetchCoverProcessor(enricher *metadata.Enricher) backlite.QueueProcessor[FetchCoverTask] {
	return func(ctx context.Context, task FetchCoverTask) error {
		if enricher == nil {
			return fmt.Errorf("enricher not configured")
		}

		result, err := enricher.EnrichBook(ctx, task.BookID)
		if err != nil {
			return fmt.Errorf("fetch cover for book %d: %w", task.BookID, err)
		}

		if len(result.FieldsUpdated) > 0 {
			log.Printf("[TASK] Book %d (%s): filled %v from %s",
				task.BookID, result.Book.Title, result.FieldsUpdated, result.Source)
		} else {
			log.Printf("[TASK] Book %d (%s): nothing to fill",
				task.BookID, result.Book.Title)
		}
		return nil
	}
}

// NewFetchCoverQueue creates the backlite queue for cover fetch tasks.
func NewFetchCoverQueue(enricher *metadata.Enricher) backlite.Queue {
	return backlite.NewQueue(FetchCoverProcessor(enricher))
}
