package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Warning is a non-fatal issue found while reading an input table. Warnings
// are logged and the affected rows recovered or skipped; they never abort
// the run.
type Warning struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// RawTable is an input table after header extraction: row maps keyed by the
// source header names, before canonicalization.
type RawTable struct {
	Headers  []string
	Records  []map[string]string
	Warnings []Warning
}

// readCSV parses CSV bytes into a RawTable. skipRows leading rows are
// discarded before the header row (the client roster export carries a
// three-row banner block above its headers). Mismatched column counts are
// padded or truncated with a warning rather than rejected.
func readCSV(data []byte, skipRows int) (*RawTable, error) {
	decoded, _, err := DetectAndDecode(data)
	if err != nil {
		return nil, fmt.Errorf("encoding detection failed: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(decoded))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	for i := 0; i < skipRows; i++ {
		if _, err := reader.Read(); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, errors.New("file ends inside the banner block: no header row found")
			}
			return nil, fmt.Errorf("failed to skip banner row %d: %w", i+1, err)
		}
	}

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty file: no header row found")
		}
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}

	table := &RawTable{Headers: headers}
	headerCount := len(headers)
	rowNum := skipRows + 1 // 1-indexed source row of the header

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowNum++

		if err != nil {
			table.Warnings = append(table.Warnings, Warning{
				Row:     rowNum,
				Message: fmt.Sprintf("parse error: %v", err),
			})
			continue
		}

		if len(row) != headerCount {
			if len(row) < headerCount {
				table.Warnings = append(table.Warnings, Warning{
					Row:     rowNum,
					Message: fmt.Sprintf("row has %d columns, expected %d; padding with empty values", len(row), headerCount),
				})
				padded := make([]string, headerCount)
				copy(padded, row)
				row = padded
			} else {
				table.Warnings = append(table.Warnings, Warning{
					Row:     rowNum,
					Message: fmt.Sprintf("row has %d columns, expected %d; truncating extra columns", len(row), headerCount),
				})
				row = row[:headerCount]
			}
		}

		record := make(map[string]string, headerCount)
		empty := true
		for i, h := range headers {
			if strings.TrimSpace(row[i]) != "" {
				empty = false
			}
			record[h] = row[i]
		}
		if empty {
			continue
		}
		table.Records = append(table.Records, record)
	}

	return table, nil
}
