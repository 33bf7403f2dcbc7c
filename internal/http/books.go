package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Andrei800/booknest/internal/database"
	"github.com/Andrei800/booknest/internal/entities"
	"github.com/Andrei800/booknest/internal/tasks"
)

type BooksController struct {
	db          *database.Database
	taskClient  *tasks.Client
	fetchCovers bool
}

func NewBooksController(db *database.Database, taskClient *tasks.Client, fetchCovers bool) *BooksController {
	return &BooksController{
		db:          db,
		taskClient:  taskClient,
		fetchCovers: fetchCovers,
	}
}

// BookView decorates a book with its computed reading progress.
type BookView struct {
	entities.Book
	Progress float64 `json:"progress"`
}

func newBookView(book entities.Book) BookView {
	return BookView{Book: book, Progress: book.Progress()}
}

func newBookViews(books []entities.Book) []BookView {
	views := make([]BookView, 0, len(books))
	for _, book := range books {
		views = append(views, newBookView(book))
	}
	return views
}

type bookPayload struct {
	Title         string   `json:"title" binding:"required"`
	Subtitle      string   `json:"subtitle"`
	Description   string   `json:"description"`
	Language      string   `json:"language"`
	Format        string   `json:"format"`
	Status        string   `json:"status"`
	TotalPages    *int     `json:"total_pages"`
	CurrentPage   int      `json:"current_page"`
	StartedAt     string   `json:"started_at"`
	FinishedAt    string   `json:"finished_at"`
	PublishedYear *int     `json:"published_year"`
	Rating        *int     `json:"rating"`
	Notes         string   `json:"notes"`
	Quotes        []string `json:"quotes"`
	Location      string   `json:"location"`
	CoverURL      string   `json:"cover_url"`
	ISBN          string   `json:"isbn"`
	Authors       []string `json:"authors"`
	Genres        []string `json:"genres"`
}

func (p *bookPayload) validate() string {
	if p.Status != "" && !entities.IsValidStatus(p.Status) {
		return "unknown status: " + p.Status
	}
	if p.Format != "" && !entities.IsValidFormat(p.Format) {
		return "unknown format: " + p.Format
	}
	if p.Rating != nil && (*p.Rating < 1 || *p.Rating > 10) {
		return "rating must be between 1 and 10"
	}
	return ""
}

var requestDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseRequestDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	for _, layout := range requestDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}

// Create adds a book to the catalog. When cover fetching is enabled and the
// payload has no cover URL, a background task fills it in later.
func (bc *BooksController) Create(c *gin.Context) {
	var payload bookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, "invalid book payload: "+err.Error())
		return
	}
	if msg := payload.validate(); msg != "" {
		respondBadRequest(c, msg)
		return
	}

	status := entities.StatusPlanned
	if payload.Status != "" {
		status = entities.BookStatus(payload.Status)
	}
	format := entities.FormatPaper
	if payload.Format != "" {
		format = entities.BookFormat(payload.Format)
	}
	language := payload.Language
	if language == "" {
		language = "ru"
	}

	book := entities.Book{
		Title:         payload.Title,
		Subtitle:      payload.Subtitle,
		Description:   payload.Description,
		Language:      language,
		Format:        format,
		Status:        status,
		TotalPages:    payload.TotalPages,
		CurrentPage:   payload.CurrentPage,
		StartedAt:     parseRequestDate(payload.StartedAt),
		FinishedAt:    parseRequestDate(payload.FinishedAt),
		PublishedYear: payload.PublishedYear,
		Rating:        payload.Rating,
		Notes:         payload.Notes,
		Quotes:        payload.Quotes,
		Location:      payload.Location,
		CoverURL:      payload.CoverURL,
		ISBN:          payload.ISBN,
	}

	if err := bc.db.CreateBook(&book, payload.Authors, payload.Genres); err != nil {
		respondInternalError(c, "create book", err)
		return
	}

	if bc.fetchCovers && bc.taskClient != nil && book.CoverURL == "" {
		if _, err := bc.taskClient.Add(tasks.FetchCoverTask{BookID: book.ID}).Save(); err != nil {
			// Cover fetch is best effort; the book itself is already saved.
			respondCreatedBook(c, bc.db, book.ID)
			return
		}
	}
	respondCreatedBook(c, bc.db, book.ID)
}

func respondCreatedBook(c *gin.Context, db *database.Database, id uint) {
	created, err := db.GetBookByID(id)
	if err != nil {
		respondInternalError(c, "load created book", err)
		return
	}
	c.JSON(http.StatusCreated, newBookView(*created))
}

// List returns a filtered, paginated page of the catalog.
func (bc *BooksController) List(c *gin.Context) {
	filter := database.BookFilter{
		Search:    c.Query("search"),
		Author:    c.Query("author"),
		Genre:     c.Query("genre"),
		Language:  c.Query("language"),
		MinRating: parseQueryInt(c, "min_rating", 0),
		Year:      parseQueryInt(c, "year", 0),
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
		Page:      parseQueryInt(c, "page", 1),
		PerPage:   parseQueryInt(c, "per_page", 20),
	}
	if status := c.Query("status"); status != "" {
		if !entities.IsValidStatus(status) {
			respondBadRequest(c, "unknown status: "+status)
			return
		}
		filter.Status = entities.BookStatus(status)
	}
	if format := c.Query("format"); format != "" {
		if !entities.IsValidFormat(format) {
			respondBadRequest(c, "unknown format: "+format)
			return
		}
		filter.Format = entities.BookFormat(format)
	}

	books, total, err := bc.db.ListBooks(filter)
	if err != nil {
		respondInternalError(c, "list books", err)
		return
	}

	perPage := filter.PerPage
	if perPage < 1 {
		perPage = 20
	}
	totalPages := int((total + int64(perPage) - 1) / int64(perPage))

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:       newBookViews(books),
		Total:      total,
		Page:       filter.Page,
		PerPage:    perPage,
		TotalPages: totalPages,
	})
}

// Get returns one book with its authors and genres.
func (bc *BooksController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.db.GetBookByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, "get book", err)
		return
	}
	c.JSON(http.StatusOK, newBookView(*book))
}

type bookUpdatePayload struct {
	Title         *string   `json:"title"`
	Subtitle      *string   `json:"subtitle"`
	Description   *string   `json:"description"`
	Language      *string   `json:"language"`
	Format        *string   `json:"format"`
	Status        *string   `json:"status"`
	TotalPages    *int      `json:"total_pages"`
	CurrentPage   *int      `json:"current_page"`
	StartedAt     *string   `json:"started_at"`
	FinishedAt    *string   `json:"finished_at"`
	PublishedYear *int      `json:"published_year"`
	Rating        *int      `json:"rating"`
	Notes         *string   `json:"notes"`
	Quotes        *[]string `json:"quotes"`
	Location      *string   `json:"location"`
	CoverURL      *string   `json:"cover_url"`
	ISBN          *string   `json:"isbn"`
	Authors       *[]string `json:"authors"`
	Genres        *[]string `json:"genres"`
}

// Update applies a partial update: only fields present in the payload
// change, including full replacement of author and genre sets.
func (bc *BooksController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var payload bookUpdatePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, "invalid book payload: "+err.Error())
		return
	}
	if payload.Status != nil && !entities.IsValidStatus(*payload.Status) {
		respondBadRequest(c, "unknown status: "+*payload.Status)
		return
	}
	if payload.Format != nil && !entities.IsValidFormat(*payload.Format) {
		respondBadRequest(c, "unknown format: "+*payload.Format)
		return
	}
	if payload.Rating != nil && (*payload.Rating < 1 || *payload.Rating > 10) {
		respondBadRequest(c, "rating must be between 1 and 10")
		return
	}
	if payload.Title != nil && *payload.Title == "" {
		respondBadRequest(c, "title cannot be empty")
		return
	}

	book, err := bc.db.GetBookByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, "get book", err)
		return
	}

	applyBookUpdate(book, &payload)
	if err := bc.db.SaveBook(book); err != nil {
		respondInternalError(c, "update book", err)
		return
	}

	if payload.Authors != nil {
		if err := bc.db.ReplaceBookAuthors(book, *payload.Authors); err != nil {
			respondInternalError(c, "update book authors", err)
			return
		}
	}
	if payload.Genres != nil {
		if err := bc.db.ReplaceBookGenres(book, *payload.Genres); err != nil {
			respondInternalError(c, "update book genres", err)
			return
		}
	}

	updated, err := bc.db.GetBookByID(id)
	if err != nil {
		respondInternalError(c, "reload book", err)
		return
	}
	c.JSON(http.StatusOK, newBookView(*updated))
}

func applyBookUpdate(book *entities.Book, p *bookUpdatePayload) {
	if p.Title != nil {
		book.Title = *p.Title
	}
	if p.Subtitle != nil {
		book.Subtitle = *p.Subtitle
	}
	if p.Description != nil {
		book.Description = *p.Description
	}
	if p.Language != nil {
		book.Language = *p.Language
	}
	if p.Format != nil {
		book.Format = entities.BookFormat(*p.Format)
	}
	if p.Status != nil {
		book.Status = entities.BookStatus(*p.Status)
	}
	if p.TotalPages != nil {
		book.TotalPages = p.TotalPages
	}
	if p.CurrentPage != nil {
		book.CurrentPage = *p.CurrentPage
	}
	if p.StartedAt != nil {
		book.StartedAt = parseRequestDate(*p.StartedAt)
	}
	if p.FinishedAt != nil {
		book.FinishedAt = parseRequestDate(*p.FinishedAt)
	}
	if p.PublishedYear != nil {
		book.PublishedYear = p.PublishedYear
	}
	if p.Rating != nil {
		book.Rating = p.Rating
	}
	if p.Notes != nil {
		book.Notes = *p.Notes
	}
	if p.Quotes != nil {
		book.Quotes = *p.Quotes
	}
	if p.Location != nil {
		book.Location = *p.Location
	}
	if p.CoverURL != nil {
		book.CoverURL = *p.CoverURL
	}
	if p.ISBN != nil {
		book.ISBN = *p.ISBN
	}
}

// Delete removes a book along with its association rows and reading
// sessions.
func (bc *BooksController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := bc.db.DeleteBook(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, "delete book", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// StartReading marks a book as being read, stamping the start date on first
// use only.
func (bc *BooksController) StartReading(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.db.GetBookByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, "get book", err)
		return
	}

	book.Status = entities.StatusReading
	if book.StartedAt == nil {
		now := time.Now()
		book.StartedAt = &now
	}

	if err := bc.db.SaveBook(book); err != nil {
		respondInternalError(c, "start reading", err)
		return
	}
	c.JSON(http.StatusOK, newBookView(*book))
}

// FinishReading marks a book finished, snaps the page position to the end
// and optionally records a rating.
func (bc *BooksController) FinishReading(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	rating := parseQueryInt(c, "rating", 0)
	if raw := c.Query("rating"); raw != "" && (rating < 1 || rating > 10) {
		respondBadRequest(c, "rating must be between 1 and 10")
		return
	}

	book, err := bc.db.GetBookByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, "get book", err)
		return
	}

	now := time.Now()
	book.Status = entities.StatusFinished
	book.FinishedAt = &now
	if book.TotalPages != nil {
		book.CurrentPage = *book.TotalPages
	}
	if rating >= 1 && rating <= 10 {
		book.Rating = &rating
	}

	if err := bc.db.SaveBook(book); err != nil {
		respondInternalError(c, "finish reading", err)
		return
	}
	c.JSON(http.StatusOK, newBookView(*book))
}

// UpdateProgress moves the reading position. Reaching the last page
// finishes the book; any progress on a planned book starts it.
func (bc *BooksController) UpdateProgress(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	currentPage := parseQueryInt(c, "current_page", -1)
	if currentPage < 0 {
		respondBadRequest(c, "current_page must be a non-negative integer")
		return
	}

	book, err := bc.db.GetBookByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, "get book", err)
		return
	}

	pagesRead := currentPage - book.CurrentPage
	book.CurrentPage = currentPage

	now := time.Now()
	if book.Status == entities.StatusPlanned && currentPage > 0 {
		book.Status = entities.StatusReading
		if book.StartedAt == nil {
			book.StartedAt = &now
		}
	}
	if book.TotalPages != nil && currentPage >= *book.TotalPages {
		book.Status = entities.StatusFinished
		if book.FinishedAt == nil {
			book.FinishedAt = &now
		}
	}

	if err := bc.db.SaveBook(book); err != nil {
		respondInternalError(c, "update progress", err)
		return
	}

	if pagesRead > 0 {
		session := entities.ReadingSession{BookID: book.ID, Date: now, PagesRead: pagesRead}
		if err := bc.db.AddReadingSession(&session); err != nil {
			respondInternalError(c, "record reading session", err)
			return
		}
	}
	c.JSON(http.StatusOK, newBookView(*book))
}

// Sessions lists a book's recorded reading sessions, newest first.
func (bc *BooksController) Sessions(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := bc.db.GetBookByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, "get book", err)
		return
	}

	sessions, err := bc.db.GetReadingSessions(id)
	if err != nil {
		respondInternalError(c, "list reading sessions", err)
		return
	}
	c.JSON(http.StatusOK, sessions)
}
