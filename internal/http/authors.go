package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Andrei800/booknest/internal/database"
)

type AuthorsController struct {
	db *database.Database
}

func NewAuthorsController(db *database.Database) *AuthorsController {
	return &AuthorsController{db: db}
}

func (ac *AuthorsController) List(c *gin.Context) {
	authors, err := ac.db.ListAuthors(c.Query("search"), parseQueryInt(c, "limit", 100))
	if err != nil {
		respondInternalError(c, "list authors", err)
		return
	}
	c.JSON(http.StatusOK, authors)
}

// Popular lists authors ordered by how many books reference them.
func (ac *AuthorsController) Popular(c *gin.Context) {
	authors, err := ac.db.PopularAuthors(parseQueryInt(c, "limit", 10))
	if err != nil {
		respondInternalError(c, "list popular authors", err)
		return
	}
	c.JSON(http.StatusOK, authors)
}

func (ac *AuthorsController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	author, err := ac.db.GetAuthorByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "author")
			return
		}
		respondInternalError(c, "get author", err)
		return
	}
	c.JSON(http.StatusOK, author)
}

// Books lists an author's books with their full association sets.
func (ac *AuthorsController) Books(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	books, err := ac.db.GetAuthorBooks(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "author")
			return
		}
		respondInternalError(c, "list author books", err)
		return
	}
	c.JSON(http.StatusOK, newBookViews(books))
}

type namePayload struct {
	Name string `json:"name" binding:"required"`
}

func (ac *AuthorsController) Create(c *gin.Context) {
	var payload namePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, "name is required")
		return
	}

	name := strings.TrimSpace(payload.Name)
	if name == "" {
		respondBadRequest(c, "name is required")
		return
	}

	author, err := ac.db.CreateAuthor(name)
	if err != nil {
		if errors.Is(err, database.ErrAlreadyExists) {
			respondConflict(c, "author already exists")
			return
		}
		respondInternalError(c, "create author", err)
		return
	}
	c.JSON(http.StatusCreated, author)
}

// Delete removes an author; refused while any book still references them.
func (ac *AuthorsController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	err := ac.db.DeleteAuthor(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "author")
			return
		}
		if errors.Is(err, database.ErrEntityInUse) {
			respondConflict(c, "author still has books")
			return
		}
		respondInternalError(c, "delete author", err)
		return
	}
	c.Status(http.StatusNoContent)
}
