// Package ingest turns the published company spreadsheet into directory records.
package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrMalformedSource indicates the CSV has no parseable header row.
var ErrMalformedSource = errors.New("malformed csv header")

// byte-order-mark bytes stripped from the first header cell (UTF-8 and UTF-16 marks).
var bomBytes = []byte{0xEF, 0xBB, 0xBF, 0xFE, 0xFF}

// Row maps normalized header names to trimmed cell values. Keys keeps the
// header order so heuristic scans are deterministic.
type Row struct {
	Keys   []string
	Values map[string]string
}

// Get returns the value stored under key, or "".
func (r Row) Get(key string) string {
	return r.Values[key]
}

// Table is a parsed CSV: the normalized header and the qualifying rows.
type Table struct {
	Header []string
	Rows   []Row
}

// ParseTable reads comma-separated data with standard double-quote escaping.
// Rows with fewer than two non-empty cells are treated as separators and skipped.
func ParseTable(raw []byte) (*Table, error) {
	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	headerRaw, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrMalformedSource
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedSource, err)
	}

	header := normalizeHeader(headerRaw)
	keys := uniqueKeys(header)
	table := &Table{Header: header}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		if countNonEmpty(record) < 2 {
			continue
		}

		values := make(map[string]string, len(header))
		for i, key := range header {
			value := ""
			if i < len(record) {
				value = strings.TrimSpace(record[i])
			}
			values[key] = value
		}
		table.Rows = append(table.Rows, Row{Keys: keys, Values: values})
	}

	return table, nil
}

func normalizeHeader(raw []string) []string {
	header := make([]string, len(raw))
	for i, cell := range raw {
		cell = strings.TrimSpace(cell)
		if i == 0 {
			cell = strings.TrimSpace(stripBOM(cell))
		}
		header[i] = strings.ToLower(cell)
	}
	return header
}

func stripBOM(value string) string {
	b := []byte(value)
	i := 0
	for i < len(b) && bytes.IndexByte(bomBytes, b[i]) >= 0 {
		i++
	}
	return string(b[i:])
}

// uniqueKeys keeps the first position of each header name; later duplicates
// overwrite the value but not the scan order.
func uniqueKeys(header []string) []string {
	seen := make(map[string]struct{}, len(header))
	keys := make([]string, 0, len(header))
	for _, key := range header {
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	return keys
}

func countNonEmpty(record []string) int {
	count := 0
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			count++
		}
	}
	return count
}
