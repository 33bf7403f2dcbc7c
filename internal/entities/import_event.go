package entities

import "time"

// ImportEvent records one bulk import run for the history view.
type ImportEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Source    string    `gorm:"size:50;not null" json:"source"`
	Filename  string    `gorm:"size:500" json:"filename,omitempty"`
	Success   int       `json:"success"`
	Failed    int       `json:"failed"`
	Skipped   int       `json:"skipped"`
	CreatedAt time.Time `json:"created_at"`
}

func (ImportEvent) TableName() string {
	return "import_events"
}
