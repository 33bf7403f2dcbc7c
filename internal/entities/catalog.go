package entities

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

type BookStatus string

const (
	StatusPlanned  BookStatus = "planned"
	StatusReading  BookStatus = "reading"
	StatusFinished BookStatus = "finished"
	StatusOnHold   BookStatus = "on_hold"
	StatusDropped  BookStatus = "dropped"
	StatusWishlist BookStatus = "wishlist"
)

type BookFormat string

const (
	FormatPaper     BookFormat = "paper"
	FormatEbook     BookFormat = "ebook"
	FormatAudiobook BookFormat = "audiobook"
)

var validStatuses = map[BookStatus]bool{
	StatusPlanned:  true,
	StatusReading:  true,
	StatusFinished: true,
	StatusOnHold:   true,
	StatusDropped:  true,
	StatusWishlist: true,
}

var validFormats = map[BookFormat]bool{
	FormatPaper:     true,
	FormatEbook:     true,
	FormatAudiobook: true,
}

// ParseStatus maps an external status string onto the closed status set.
// Unrecognized values fall back to "planned" rather than passing through.
func ParseStatus(s string) BookStatus {
	status := BookStatus(strings.ToLower(strings.TrimSpace(s)))
	if validStatuses[status] {
		return status
	}
	return StatusPlanned
}

// ParseFormat maps an external format string onto the closed format set.
// Unrecognized values fall back to "paper".
func ParseFormat(s string) BookFormat {
	format := BookFormat(strings.ToLower(strings.TrimSpace(s)))
	if validFormats[format] {
		return format
	}
	return FormatPaper
}

// IsValidStatus reports whether s names a known reading status.
func IsValidStatus(s string) bool {
	return validStatuses[BookStatus(s)]
}

// IsValidFormat reports whether s names a known book format.
func IsValidFormat(s string) bool {
	return validFormats[BookFormat(s)]
}

// StringList stores an ordered list of strings as a JSON column.
// Used for book quotes.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (l *StringList) Scan(value any) error {
	if value == nil {
		*l = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for StringList: %T", value)
	}
	if len(data) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(data, l)
}

type Author struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:255;not null" json:"name"`
	Books     []Book    `gorm:"many2many:book_authors;" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

type Genre struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Books     []Book    `gorm:"many2many:book_genres;" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

type Book struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Title       string `gorm:"index;size:500;not null" json:"title"`
	Subtitle    string `gorm:"size:500" json:"subtitle,omitempty"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	Language    string `gorm:"size:50;default:'ru'" json:"language"`

	Format BookFormat `gorm:"size:50;default:'paper'" json:"format"`
	Status BookStatus `gorm:"size:50;default:'planned';index" json:"status"`

	TotalPages  *int `json:"total_pages,omitempty"`
	CurrentPage int  `gorm:"default:0" json:"current_page"`

	StartedAt     *time.Time `json:"started_at,omitempty"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
	PublishedYear *int       `json:"published_year,omitempty"`

	Rating *int       `json:"rating,omitempty"` // 1-10
	Notes  string     `gorm:"type:text" json:"notes,omitempty"`
	Quotes StringList `gorm:"type:text" json:"quotes,omitempty"`

	Location string `gorm:"size:255" json:"location,omitempty"`

	CoverURL   string `gorm:"size:1000" json:"cover_url,omitempty"`
	ExternalID string `gorm:"size:100" json:"external_id,omitempty"`
	ISBN       string `gorm:"size:20" json:"isbn,omitempty"`

	Authors []Author `gorm:"many2many:book_authors;" json:"authors,omitempty"`
	Genres  []Genre  `gorm:"many2many:book_genres;" json:"genres,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Progress returns the reading progress as a percentage rounded to one
// decimal. Books with an unknown or zero page count report 0.
func (b *Book) Progress() float64 {
	if b.TotalPages == nil || *b.TotalPages == 0 {
		return 0
	}
	return math.Round(float64(b.CurrentPage)/float64(*b.TotalPages)*1000) / 10
}

// AuthorNames returns the book's author names in association order.
func (b *Book) AuthorNames() []string {
	names := make([]string, 0, len(b.Authors))
	for _, a := range b.Authors {
		names = append(names, a.Name)
	}
	return names
}

// GenreNames returns the book's genre names in association order.
func (b *Book) GenreNames() []string {
	names := make([]string, 0, len(b.Genres))
	for _, g := range b.Genres {
		names = append(names, g.Name)
	}
	return names
}

// ReadingSession records one sitting of reading a book, used for statistics.
type ReadingSession struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	BookID          uint      `gorm:"index;not null" json:"book_id"`
	Date            time.Time `json:"date"`
	PagesRead       int       `gorm:"default:0" json:"pages_read"`
	DurationMinutes *int      `json:"duration_minutes,omitempty"`
	Notes           string    `gorm:"type:text" json:"notes,omitempty"`
	Book            Book      `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Author) TableName() string {
	return "authors"
}

func (Genre) TableName() string {
	return "genres"
}

func (Book) TableName() string {
	return "books"
}

func (ReadingSession) TableName() string {
	return "reading_sessions"
}
