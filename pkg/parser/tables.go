// Package parser reads the two dashboard exports — the activity log and the
// client roster — from xlsx or csv files into header-canonicalized tables.
// It owns structural validation (required columns) and the roster's
// banner-block skipping; the reconciliation core never sees either concern.
package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// clientBannerRows is the banner/header block the dashboard prepends to the
// roster export; the row after it carries the real column headers.
const clientBannerRows = 3

// Table is an input table ready for the pipeline: records keyed by canonical
// field names, plus any recovered-row warnings.
type Table struct {
	Records  []map[string]string
	Warnings []Warning
}

// ReadActivityTable reads the activity log. Required columns: year, month,
// activity class, manager, subject name. Header matching is case-insensitive
// with trimming.
func ReadActivityTable(path string) (*Table, error) {
	raw, err := readFile(path, 0)
	if err != nil {
		return nil, fmt.Errorf("activity table: %w", err)
	}
	if missing := missingColumns(raw.Headers, activityRequired); len(missing) > 0 {
		return nil, &ValidationError{Table: "activity", Missing: missing}
	}
	return &Table{Records: canonicalize(raw.Records), Warnings: raw.Warnings}, nil
}

// ReadClientTable reads the client roster, skipping the three-row banner
// block above its headers. Only the client name column is required; type,
// manager, location and the monetary columns are optional.
func ReadClientTable(path string) (*Table, error) {
	raw, err := readFile(path, clientBannerRows)
	if err != nil {
		return nil, fmt.Errorf("client table: %w", err)
	}
	if missing := missingColumns(raw.Headers, clientRequired); len(missing) > 0 {
		return nil, &ValidationError{Table: "client", Missing: missing}
	}
	return &Table{Records: canonicalize(raw.Records), Warnings: raw.Warnings}, nil
}

// readFile dispatches on file extension: .xlsx workbooks or .csv exports.
func readFile(path string, skipRows int) (*RawTable, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return readXLSX(path, skipRows)
	case ".csv", ".txt":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return readCSV(data, skipRows)
	default:
		return nil, fmt.Errorf("unsupported file type %q (want .xlsx or .csv)", filepath.Ext(path))
	}
}
