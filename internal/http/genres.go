package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Andrei800/booknest/internal/database"
)

type GenresController struct {
	db *database.Database
}

func NewGenresController(db *database.Database) *GenresController {
	return &GenresController{db: db}
}

func (gc *GenresController) List(c *gin.Context) {
	genres, err := gc.db.ListGenres(c.Query("search"), parseQueryInt(c, "limit", 100))
	if err != nil {
		respondInternalError(c, "list genres", err)
		return
	}
	c.JSON(http.StatusOK, genres)
}

// Popular lists genres ordered by how many books reference them.
func (gc *GenresController) Popular(c *gin.Context) {
	genres, err := gc.db.PopularGenres(parseQueryInt(c, "limit", 10))
	if err != nil {
		respondInternalError(c, "list popular genres", err)
		return
	}
	c.JSON(http.StatusOK, genres)
}

func (gc *GenresController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	genre, err := gc.db.GetGenreByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "genre")
			return
		}
		respondInternalError(c, "get genre", err)
		return
	}
	c.JSON(http.StatusOK, genre)
}

func (gc *GenresController) Create(c *gin.Context) {
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

	genre, err := gc.db.CreateGenre(name)
	if err != nil {
		if errors.Is(err, database.ErrAlreadyExists) {
			respondConflict(c, "genre already exists")
			return
		}
		respondInternalError(c, "create genre", err)
		return
	}
	c.JSON(http.StatusCreated, genre)
}

// Delete removes a genre; refused while any book still references it.
func (gc *GenresController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	err := gc.db.DeleteGenre(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "genre")
			return
		}
		if errors.Is(err, database.ErrEntityInUse) {
			respondConflict(c, "genre still has books")
			return
		}
		respondInternalError(c, "delete genre", err)
		return
	}
	c.Status(http.StatusNoContent)
}
