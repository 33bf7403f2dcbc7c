// Package audit records import runs so the user can see where their
// catalog came from.
package audit

import (
	"log"

	"gorm.io/gorm"

	"github.com/Andrei800/booknest/internal/entities"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// LogImport records an import run. Failures are logged and swallowed; a
// broken history table must not fail the import itself.
func (s *Service) LogImport(source, filename string, success, failed, skipped int) {
	event := entities.ImportEvent{
		Source:   source,
		Filename: filename,
		Success:  success,
		Failed:   failed,
		Skipped:  skipped,
	}
	if err := s.db.Create(&event).Error; err != nil {
		log.Printf("Failed to record import event: %v", err)
	}
}

// RecentImports lists the latest import runs, newest first.
func (s *Service) RecentImports(limit int) ([]entities.ImportEvent, error) {
	if limit <= 0 {
		limit = 20
	}
	var events []entities.ImportEvent
	err := s.db.Order("created_at DESC, id DESC").Limit(limit).Find(&events).Error
	return events, err
}
