package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Andrei800/booknest/internal/covers"
	"github.com/Andrei800/booknest/internal/database"
	"github.com/Andrei800/booknest/internal/metadata"
)

type CoversController struct {
	db       *database.Database
	service  *metadata.Service
	enricher *metadata.Enricher
	cache    *covers.Cache
}

func NewCoversController(db *database.Database, service *metadata.Service, enricher *metadata.Enricher, cache *covers.Cache) *CoversController {
	return &CoversController{db: db, service: service, enricher: enricher, cache: cache}
}

// Search lists cover candidates for a free-form title and optional author.
func (cc *CoversController) Search(c *gin.Context) {
	title := c.Query("title")
	if title == "" {
		respondBadRequest(c, "title is required")
		return
	}

	covers, err := cc.service.SearchCovers(
		c.Request.Context(),
		title,
		c.Query("author"),
		parseQueryInt(c, "limit", 8),
	)
	if err != nil {
		respondInternalError(c, "search covers", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"covers": covers})
}

// LookupISBN resolves full book metadata by ISBN for form pre-filling.
func (cc *CoversController) LookupISBN(c *gin.Context) {
	isbn := c.Param("isbn")
	if isbn == "" {
		respondBadRequest(c, "isbn is required")
		return
	}

	found, err := cc.service.LookupISBN(c.Request.Context(), isbn)
	if err != nil || found == nil || found.Title == "" {
		respondNotFound(c, "book with this ISBN")
		return
	}
	c.JSON(http.StatusOK, found)
}

// BookCovers lists cover candidates for an already cataloged book.
func (cc *CoversController) BookCovers(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := cc.db.GetBookByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, "get book", err)
		return
	}

	author := ""
	if names := book.AuthorNames(); len(names) > 0 {
		author = names[0]
	}

	covers, err := cc.service.SearchCovers(c.Request.Context(), book.Title, author, 8)
	if err != nil {
		respondInternalError(c, "search covers", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"covers": covers})
}

type coverPayload struct {
	CoverURL string `json:"cover_url" binding:"required"`
}

// SetBookCover pins a user-picked cover URL on a book.
func (cc *CoversController) SetBookCover(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var payload coverPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, "cover_url is required")
		return
	}

	book, err := cc.db.GetBookByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, "get book", err)
		return
	}

	book.CoverURL = payload.CoverURL
	if err := cc.db.SaveBook(book); err != nil {
		respondInternalError(c, "update cover", err)
		return
	}

	// The cached image belongs to the old URL now.
	if cc.cache != nil {
		if err := cc.cache.Invalidate(book.ID); err != nil {
			respondInternalError(c, "invalidate cover cache", err)
			return
		}
	}
	c.JSON(http.StatusOK, newBookView(*book))
}

// CoverImage serves the book's cover image from the local disk cache,
// downloading it on first access.
func (cc *CoversController) CoverImage(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := cc.db.GetBookByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, "get book", err)
		return
	}
	if book.CoverURL == "" {
		respondNotFound(c, "cover image")
		return
	}

	path, err := cc.cache.Get(c.Request.Context(), book.ID, book.CoverURL)
	if err != nil {
		respondInternalError(c, "fetch cover image", err)
		return
	}
	c.File(path)
}

// EnrichBook fills a book's missing cover and metadata from external
// catalogs on demand.
func (cc *CoversController) EnrichBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := cc.enricher.EnrichBook(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, "enrich book", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Backfill fetches covers for every book that lacks one.
func (cc *CoversController) Backfill(c *gin.Context) {
	result, err := cc.enricher.EnrichAllMissing(c.Request.Context())
	if err != nil && result == nil {
		respondInternalError(c, "backfill covers", err)
		return
	}
	c.JSON(http.StatusOK, result)
}
