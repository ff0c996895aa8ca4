package parser

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// readXLSX loads the first worksheet of an xlsx file into a RawTable.
// skipRows leading rows are discarded before the header row. Short rows are
// padded: excelize truncates trailing empty cells per row.
func readXLSX(path string, skipRows int) (*RawTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no worksheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet %q: %w", sheets[0], err)
	}
	if len(rows) <= skipRows {
		return nil, fmt.Errorf("worksheet %q has no header row", sheets[0])
	}
	rows = rows[skipRows:]

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	table := &RawTable{Headers: headers}
	for _, row := range rows[1:] {
		record := make(map[string]string, len(headers))
		empty := true
		for i, h := range headers {
			value := ""
			if i < len(row) {
				value = row[i]
			}
			if strings.TrimSpace(value) != "" {
				empty = false
			}
			record[h] = value
		}
		if empty {
			continue
		}
		table.Records = append(table.Records, record)
	}

	return table, nil
}
