package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Andrei800/booknest/internal/audit"
	"github.com/Andrei800/booknest/internal/covers"
	"github.com/Andrei800/booknest/internal/database"
	"github.com/Andrei800/booknest/internal/metadata"
	"github.com/Andrei800/booknest/internal/tasks"
)

// RouterConfig carries every dependency the HTTP surface needs. A nil
// TaskClient disables background cover fetching; covers are then only
// fetched through the explicit enrich endpoints.
type RouterConfig struct {
	DB             *database.Database
	Metadata       *metadata.Service
	Enricher       *metadata.Enricher
	TaskClient     *tasks.Client
	CoverCache     *covers.Cache
	AllowedOrigins []string
	FetchCovers    bool
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	router.Use(cors.New(corsConfig))

	healthController := NewHealthController(cfg.DB)
	router.GET("/health", healthController.Health)

	api := router.Group("/api")

	books := NewBooksController(cfg.DB, cfg.TaskClient, cfg.FetchCovers)
	api.GET("/books", books.List)
	api.POST("/books", books.Create)
	api.GET("/books/:id", books.Get)
	api.PATCH("/books/:id", books.Update)
	api.DELETE("/books/:id", books.Delete)
	api.POST("/books/:id/start-reading", books.StartReading)
	api.POST("/books/:id/finish-reading", books.FinishReading)
	api.POST("/books/:id/update-progress", books.UpdateProgress)
	api.GET("/books/:id/sessions", books.Sessions)

	authors := NewAuthorsController(cfg.DB)
	api.GET("/authors", authors.List)
	api.POST("/authors", authors.Create)
	api.GET("/authors/popular", authors.Popular)
	api.GET("/authors/:id", authors.Get)
	api.GET("/authors/:id/books", authors.Books)
	api.DELETE("/authors/:id", authors.Delete)

	genres := NewGenresController(cfg.DB)
	api.GET("/genres", genres.List)
	api.POST("/genres", genres.Create)
	api.GET("/genres/popular", genres.Popular)
	api.GET("/genres/:id", genres.Get)
	api.DELETE("/genres/:id", genres.Delete)

	stats := NewStatsController(cfg.DB)
	api.GET("/stats/overview", stats.Overview)
	api.GET("/stats/yearly", stats.Yearly)
	api.GET("/stats/top-authors", stats.TopAuthors)
	api.GET("/stats/top-genres", stats.TopGenres)

	auditService := audit.NewService(cfg.DB.DB)
	importExport := NewImportExportController(cfg.DB, auditService)
	api.POST("/import-export/import/booktracker", importExport.ImportBookTracker)
	api.POST("/import-export/import/csv", importExport.ImportCSV)
	api.POST("/import-export/import/json", importExport.ImportJSON)
	api.GET("/import-export/export/csv", importExport.ExportCSV)
	api.GET("/import-export/export/json", importExport.ExportJSON)
	api.GET("/import-export/template/csv", importExport.Template)
	api.GET("/import-export/history", importExport.History)

	if cfg.Metadata != nil && cfg.Enricher != nil {
		coversController := NewCoversController(cfg.DB, cfg.Metadata, cfg.Enricher, cfg.CoverCache)
		api.GET("/covers/search", coversController.Search)
		api.GET("/covers/isbn/:isbn", coversController.LookupISBN)
		api.POST("/covers/backfill", coversController.Backfill)
		api.GET("/books/:id/covers", coversController.BookCovers)
		api.PATCH("/books/:id/cover", coversController.SetBookCover)
		api.POST("/books/:id/enrich", coversController.EnrichBook)
		if cfg.CoverCache != nil {
			api.GET("/books/:id/cover-image", coversController.CoverImage)
		}
	}

	return router
}
