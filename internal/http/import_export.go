package http

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Andrei800/booknest/internal/audit"
	"github.com/Andrei800/booknest/internal/database"
	"github.com/Andrei800/booknest/internal/exporters"
	"github.com/Andrei800/booknest/internal/importers"
)

type ImportExportController struct {
	db           *database.Database
	auditService *audit.Service
}

func NewImportExportController(db *database.Database, auditService *audit.Service) *ImportExportController {
	return &ImportExportController{db: db, auditService: auditService}
}

// readUpload pulls the uploaded file out of the multipart form and enforces
// the expected extension. Returns the content and the original filename.
func readUpload(c *gin.Context, extension string) ([]byte, string, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondBadRequest(c, "no file provided")
		return nil, "", false
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), extension) {
		respondBadRequest(c, "file must be in "+strings.TrimPrefix(extension, ".")+" format")
		return nil, "", false
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondBadRequest(c, "unable to read uploaded file")
		return nil, "", false
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		respondBadRequest(c, "unable to read uploaded file")
		return nil, "", false
	}
	return content, fileHeader.Filename, true
}

// runImport persists parsed records and writes the aggregate result. Format
// errors map to 400, store failures to 500; per-record failures are part of
// the 200 response body.
func (ic *ImportExportController) runImport(c *gin.Context, source, filename string, records []importers.Record, parseErr error) {
	if parseErr != nil {
		var formatErr *importers.FormatError
		if errors.As(parseErr, &formatErr) {
			respondBadRequest(c, formatErr.Reason)
			return
		}
		respondInternalError(c, "import", parseErr)
		return
	}

	pipeline := importers.NewPipeline(ic.db.DB)
	result, err := pipeline.Run(records)
	if err != nil {
		respondInternalError(c, "import", err)
		return
	}

	if ic.auditService != nil {
		ic.auditService.LogImport(source, filename, result.Success, result.Failed, result.Skipped)
	}
	c.JSON(http.StatusOK, result)
}

// History lists recent import runs.
func (ic *ImportExportController) History(c *gin.Context) {
	events, err := ic.auditService.RecentImports(parseQueryInt(c, "limit", 20))
	if err != nil {
		respondInternalError(c, "list import history", err)
		return
	}
	c.JSON(http.StatusOK, events)
}

// ImportBookTracker imports a Book Tracker app CSV export. The file
// encoding is detected automatically; the delimiter is sniffed from the
// header line.
func (ic *ImportExportController) ImportBookTracker(c *gin.Context) {
	content, filename, ok := readUpload(c, ".csv")
	if !ok {
		return
	}

	text := importers.DetectAndDecode(content)
	records, err := importers.ParseBookTrackerCSV(text)
	ic.runImport(c, "booktracker", filename, records, err)
}

// ImportCSV imports the documented generic CSV schema.
func (ic *ImportExportController) ImportCSV(c *gin.Context) {
	content, filename, ok := readUpload(c, ".csv")
	if !ok {
		return
	}

	text, err := importers.DecodeWithFallback(content)
	if err != nil {
		ic.runImport(c, "csv", filename, nil, err)
		return
	}
	records, err := importers.ParseGenericCSV(text)
	ic.runImport(c, "csv", filename, records, err)
}

// ImportJSON imports a JSON document, either a bare book array or the
// envelope this application exports.
func (ic *ImportExportController) ImportJSON(c *gin.Context) {
	content, filename, ok := readUpload(c, ".json")
	if !ok {
		return
	}

	records, err := importers.ParseJSONBooks(content)
	ic.runImport(c, "json", filename, records, err)
}

// ExportCSV downloads the whole catalog as CSV.
func (ic *ImportExportController) ExportCSV(c *gin.Context) {
	books, err := ic.db.GetAllBooks()
	if err != nil {
		respondInternalError(c, "export csv", err)
		return
	}

	data, err := exporters.ExportCSV(books)
	if err != nil {
		respondInternalError(c, "export csv", err)
		return
	}

	filename := exporters.ExportFilename("csv", time.Now())
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv", data)
}

// ExportJSON downloads the whole catalog as JSON, pretty-printed unless
// pretty=false.
func (ic *ImportExportController) ExportJSON(c *gin.Context) {
	books, err := ic.db.GetAllBooks()
	if err != nil {
		respondInternalError(c, "export json", err)
		return
	}

	pretty := parseQueryBool(c, "pretty", true)
	data, err := exporters.ExportJSON(books, pretty, time.Now())
	if err != nil {
		respondInternalError(c, "export json", err)
		return
	}

	filename := exporters.ExportFilename("json", time.Now())
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/json", data)
}

// Template downloads the generic CSV import template.
func (ic *ImportExportController) Template(c *gin.Context) {
	data, err := exporters.CSVTemplate()
	if err != nil {
		respondInternalError(c, "build template", err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+exporters.TemplateFilename)
	c.Data(http.StatusOK, "text/csv", data)
}
