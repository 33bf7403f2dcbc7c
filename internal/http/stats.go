package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Andrei800/booknest/internal/database"
)

type StatsController struct {
	db *database.Database
}

func NewStatsController(db *database.Database) *StatsController {
	return &StatsController{db: db}
}

// Overview returns catalog-wide counters and the average rating.
func (sc *StatsController) Overview(c *gin.Context) {
	stats, err := sc.db.GetOverviewStats()
	if err != nil {
		respondInternalError(c, "compute overview stats", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Yearly returns per-month reading totals for one year, defaulting to the
// current one.
func (sc *StatsController) Yearly(c *gin.Context) {
	year := parseQueryInt(c, "year", time.Now().Year())
	if year < 1000 || year > 9999 {
		respondBadRequest(c, "invalid year")
		return
	}

	stats, err := sc.db.GetYearlyStats(year)
	if err != nil {
		respondInternalError(c, "compute yearly stats", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// TopAuthors ranks authors by book count, optionally over finished books
// only.
func (sc *StatsController) TopAuthors(c *gin.Context) {
	stats, err := sc.db.GetTopAuthors(
		parseQueryInt(c, "limit", 10),
		parseQueryBool(c, "finished_only", false),
	)
	if err != nil {
		respondInternalError(c, "compute top authors", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// TopGenres ranks genres by book count, optionally over finished books only.
func (sc *StatsController) TopGenres(c *gin.Context) {
	stats, err := sc.db.GetTopGenres(
		parseQueryInt(c, "limit", 10),
		parseQueryBool(c, "finished_only", false),
	)
	if err != nil {
		respondInternalError(c, "compute top genres", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
