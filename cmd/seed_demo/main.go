// Command seed_demo creates a demo catalog with a handful of public domain
// books in various reading states.
// Usage: go run cmd/seed_demo/main.go [-db path/to/demo.db]
package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/Andrei800/booknest/internal/database"
	"github.com/Andrei800/booknest/internal/entities"
)

const defaultDemoDatabasePath = "./demo/booknest_demo.db"

type demoBook struct {
	book    entities.Book
	authors []string
	genres  []string
}

func main() {
	dbPath := flag.String("db", defaultDemoDatabasePath, "path to the demo database file")
	flag.Parse()

	log.Printf("Generating demo catalog at %s...", *dbPath)

	if err := os.Remove(*dbPath); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to remove existing demo database: %v", err)
	}

	db, err := database.NewDatabase(*dbPath)
	if err != nil {
		log.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	for _, demo := range demoBooks() {
		book := demo.book
		if err := db.CreateBook(&book, demo.authors, demo.genres); err != nil {
			log.Printf("Failed to save book %s: %v", book.Title, err)
			continue
		}
		log.Printf("Saved: %s (%s)", book.Title, book.Status)
	}

	addReadingSessions(db)

	log.Println("Demo catalog generated successfully!")
}

func demoBooks() []demoBook {
	now := time.Now()
	daysAgo := func(n int) *time.Time {
		t := now.AddDate(0, 0, -n)
		return &t
	}

	return []demoBook{
		{
			book: entities.Book{
				Title:         "Мастер и Маргарита",
				Language:      "ru",
				Format:        entities.FormatPaper,
				Status:        entities.StatusFinished,
				TotalPages:    intPtr(480),
				CurrentPage:   480,
				StartedAt:     daysAgo(60),
				FinishedAt:    daysAgo(40),
				PublishedYear: intPtr(1966),
				Rating:        intPtr(10),
				Notes:         "Перечитать весной.",
				Quotes:        entities.StringList{"Рукописи не горят."},
				Location:      "Полка 2",
			},
			authors: []string{"Михаил Булгаков"},
			genres:  []string{"Классика", "Фантастика"},
		},
		{
			book: entities.Book{
				Title:         "Преступление и наказание",
				Language:      "ru",
				Format:        entities.FormatEbook,
				Status:        entities.StatusReading,
				TotalPages:    intPtr(672),
				CurrentPage:   250,
				StartedAt:     daysAgo(14),
				PublishedYear: intPtr(1866),
			},
			authors: []string{"Фёдор Достоевский"},
			genres:  []string{"Классика"},
		},
		{
			book: entities.Book{
				Title:         "The Time Machine",
				Language:      "en",
				Format:        entities.FormatPaper,
				Status:        entities.StatusFinished,
				TotalPages:    intPtr(118),
				CurrentPage:   118,
				StartedAt:     daysAgo(120),
				FinishedAt:    daysAgo(110),
				PublishedYear: intPtr(1895),
				Rating:        intPtr(8),
			},
			authors: []string{"H. G. Wells"},
			genres:  []string{"Фантастика"},
		},
		{
			book: entities.Book{
				Title:         "Война и мир",
				Language:      "ru",
				Format:        entities.FormatAudiobook,
				Status:        entities.StatusOnHold,
				TotalPages:    intPtr(1225),
				CurrentPage:   300,
				StartedAt:     daysAgo(200),
				PublishedYear: intPtr(1869),
				Notes:         "Отложил на третьем томе.",
			},
			authors: []string{"Лев Толстой"},
			genres:  []string{"Классика", "История"},
		},
		{
			book: entities.Book{
				Title:         "Pride and Prejudice",
				Language:      "en",
				Format:        entities.FormatEbook,
				Status:        entities.StatusPlanned,
				TotalPages:    intPtr(432),
				PublishedYear: intPtr(1813),
			},
			authors: []string{"Jane Austen"},
			genres:  []string{"Классика", "Роман"},
		},
		{
			book: entities.Book{
				Title:         "Вишнёвый сад",
				Language:      "ru",
				Format:        entities.FormatPaper,
				Status:        entities.StatusDropped,
				TotalPages:    intPtr(96),
				CurrentPage:   30,
				StartedAt:     daysAgo(90),
				PublishedYear: intPtr(1904),
				Rating:        intPtr(5),
			},
			authors: []string{"Антон Чехов"},
			genres:  []string{"Классика", "Драма"},
		},
	}
}

// addReadingSessions logs a few sittings for the book currently in progress
// so the statistics endpoints have data to show.
func addReadingSessions(db *database.Database) {
	book, err := db.GetBookByTitle("Преступление и наказание")
	if err != nil {
		log.Printf("Failed to find in-progress book for sessions: %v", err)
		return
	}

	sessions := []entities.ReadingSession{
		{BookID: book.ID, Date: time.Now().AddDate(0, 0, -14), PagesRead: 80, DurationMinutes: intPtr(90)},
		{BookID: book.ID, Date: time.Now().AddDate(0, 0, -7), PagesRead: 100, DurationMinutes: intPtr(120)},
		{BookID: book.ID, Date: time.Now().AddDate(0, 0, -2), PagesRead: 70},
	}
	for i := range sessions {
		if err := db.AddReadingSession(&sessions[i]); err != nil {
			log.Printf("Failed to add reading session: %v", err)
		}
	}
	log.Printf("Added %d reading sessions for %s", len(sessions), book.Title)
}

func intPtr(n int) *int {
	return &n
}
