package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	enc "github.com/mowbraylabs/retailpulse/internal/encoding"
)

// ParsedTable is the raw intermediate form of an uploaded budget file:
// a header row plus data rows, order-preserving and 1:1 with file rows.
// Nothing is reordered or deduplicated at this stage.
type ParsedTable struct {
	Headers []string
	Rows    [][]string
}

// Ingest splits raw delimited text into a header row and data rows. The
// input is decoded to UTF-8 first (Excel exports are often BOM'd or
// Windows-1252). The first row with a non-empty cell is the header; every
// later row whose first cell is non-empty becomes a data row. Rows with an
// empty date cell are dropped silently; they are not malformed, just the
// padding Excel likes to emit.
func Ingest(r io.Reader) (*ParsedTable, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	reader := csv.NewReader(utf8r)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true    // Allow sloppy quotes if necessary

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	table := &ParsedTable{}

	headerFound := false

	for _, record := range records {
		for i, cell := range record {
			record[i] = strings.TrimSpace(cell)
		}

		if !headerFound {
			if isBlankRow(record) {
				continue
			}

			table.Headers = record
			headerFound = true

			continue
		}

		if len(record) == 0 || record[0] == "" {
			continue
		}

		table.Rows = append(table.Rows, record)
	}

	return table, nil
}

func isBlankRow(record []string) bool {
	for _, cell := range record {
		if cell != "" {
			return false
		}
	}

	return true
}

// cell safely gets a value from a row; short rows read as empty cells.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return row[idx]
}
