package exporters

import (
	"bytes"
	"encoding/csv"
)

// TemplateFilename is the fixed attachment name for the import template.
const TemplateFilename = "booknest_import_template.csv"

var templateHeaders = []string{
	"title", "authors", "genres", "language", "format", "status",
	"total_pages", "current_page", "rating", "notes", "location", "published_year",
}

var templateExample = []string{
	"Мастер и Маргарита",
	"Михаил Булгаков",
	"Классика, Фантастика",
	"ru",
	"paper",
	"finished",
	"480",
	"480",
	"10",
	"Отличная книга!",
	"Полка 2",
	"1966",
}

// CSVTemplate returns the import template: the generic importer's column
// set plus one filled-in example row.
func CSVTemplate() ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(templateHeaders); err != nil {
		return nil, err
	}
	if err := writer.Write(templateExample); err != nil {
		return nil, err
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
