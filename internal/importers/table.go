package importers

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"
)

// tableRow is one data row addressed by header name, mirroring how a
// spreadsheet user thinks about the file. Missing columns read as empty.
type tableRow struct {
	index  map[string]int
	values []string
	err    error
}

// get returns the first non-empty value among the given column names.
func (r tableRow) get(names ...string) string {
	for _, name := range names {
		i, ok := r.index[name]
		if !ok || i >= len(r.values) {
			continue
		}
		if v := strings.TrimSpace(r.values[i]); v != "" {
			return v
		}
	}
	return ""
}

// readTable parses delimited text into header-addressed rows. The delimiter
// is sniffed from the header line. A row that cannot be parsed is kept with
// its error so the caller can report it by position instead of aborting the
// whole file.
func readTable(text string) ([]tableRow, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = detectDelimiter(text)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, formatErrorf("invalid CSV header: %v", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}

	var rows []tableRow
	for {
		values, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			rows = append(rows, tableRow{index: index, err: err})
			continue
		}
		rows = append(rows, tableRow{index: index, values: values})
	}
	return rows, nil
}
