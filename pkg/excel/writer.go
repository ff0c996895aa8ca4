// Package excel renders a report partition into a styled xlsx workbook: a
// master "Database" sheet plus one sheet per client type.
package excel

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"clientreport/pkg/currency"
	"clientreport/pkg/report"
	"clientreport/pkg/schema"
)

// MasterSheet is the name of the all-records sheet.
const MasterSheet = "Database"

// Workbook colors.
const (
	colorHeader   = "004C97"
	colorAltRow   = "F2F2F2"
	colorFlagged  = "FF9999"
	colorHealthy  = "A6F3A6"
	colorGridline = "D9D9D9"
)

const maxColumnWidth = 45

// reportColumns is the fixed output column order. The type column is
// appended on the master sheet only.
var reportColumns = []string{
	"Location", "Manager", "Client", "Year", "Month",
	"Last Activity", "Needs Reassignment",
	"Quoted €", "Approved €", "Invoiced €", "Collected €",
}

const verdictColumn = 7 // 1-based position of "Needs Reassignment"

type styleSet struct {
	header int
	base   int
	alt    int
	yes    int
	no     int
}

// Write renders the partition to path. Monetary fields are formatted as
// currency text here, at the presentation boundary; the reconciliation core
// never sees formatted amounts.
func Write(path string, p *report.Partition) error {
	f := excelize.NewFile()
	defer f.Close()

	styles, err := buildStyles(f)
	if err != nil {
		return fmt.Errorf("failed to build styles: %w", err)
	}

	if err := f.SetSheetName(f.GetSheetName(0), MasterSheet); err != nil {
		return err
	}
	if err := writeSheet(f, MasterSheet, p.Master, true, styles); err != nil {
		return fmt.Errorf("master sheet: %w", err)
	}

	for _, category := range p.Categories {
		name := sheetName(category.Label)
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("sheet %q: %w", name, err)
		}
		if err := writeSheet(f, name, category.Records, false, styles); err != nil {
			return fmt.Errorf("sheet %q: %w", name, err)
		}
	}

	if p.DefaultSheet != "" {
		if idx, err := f.GetSheetIndex(sheetName(p.DefaultSheet)); err == nil && idx >= 0 {
			f.SetActiveSheet(idx)
		}
	}

	return f.SaveAs(path)
}

func writeSheet(f *excelize.File, sheet string, records []schema.UnifiedRecord, withType bool, styles styleSet) error {
	headers := reportColumns
	if withType {
		headers = append(append([]string{}, reportColumns...), "Type")
	}
	widths := make([]int, len(headers))

	headerRow := make([]interface{}, len(headers))
	for i, h := range headers {
		headerRow[i] = h
		widths[i] = len(h)
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return err
	}

	for i, record := range records {
		values := rowValues(record, withType)
		for col, v := range values {
			if s, ok := v.(string); ok && len(s) > widths[col] {
				widths[col] = len(s)
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}

	return styleSheet(f, sheet, records, len(headers), widths, styles)
}

func rowValues(r schema.UnifiedRecord, withType bool) []interface{} {
	values := []interface{}{
		r.Location, r.Manager, r.Name, r.Year, r.Month,
		r.LastClass, r.NeedsReassignment,
		currency.Reformat(r.Quoted), currency.Reformat(r.Approved),
		currency.Reformat(r.Invoiced), currency.Reformat(r.Collected),
	}
	if withType {
		values = append(values, r.Type)
	}
	return values
}

func styleSheet(f *excelize.File, sheet string, records []schema.UnifiedRecord, cols int, widths []int, styles styleSet) error {
	lastCol, err := excelize.ColumnNumberToName(cols)
	if err != nil {
		return err
	}
	lastRow := len(records) + 1

	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", styles.header); err != nil {
		return err
	}

	for i := range records {
		row := i + 2
		rowStyle := styles.base
		if row%2 == 0 {
			rowStyle = styles.alt
		}
		if err := f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("%s%d", lastCol, row), rowStyle); err != nil {
			return err
		}

		verdictCell, err := excelize.CoordinatesToCellName(verdictColumn, row)
		if err != nil {
			return err
		}
		switch records[i].NeedsReassignment {
		case schema.VerdictYes:
			err = f.SetCellStyle(sheet, verdictCell, verdictCell, styles.yes)
		case schema.VerdictNo:
			err = f.SetCellStyle(sheet, verdictCell, verdictCell, styles.no)
		}
		if err != nil {
			return err
		}
	}

	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		w := float64(width + 2)
		if w > maxColumnWidth {
			w = maxColumnWidth
		}
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}

	return f.AutoFilter(sheet, fmt.Sprintf("A1:%s%d", lastCol, lastRow), nil)
}

func buildStyles(f *excelize.File) (styleSet, error) {
	border := []excelize.Border{
		{Type: "top", Style: 1, Color: colorGridline},
		{Type: "bottom", Style: 1, Color: colorGridline},
		{Type: "left", Style: 1, Color: colorGridline},
		{Type: "right", Style: 1, Color: colorGridline},
	}
	center := &excelize.Alignment{Horizontal: "center", Vertical: "center"}

	var s styleSet
	var err error

	s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{colorHeader}},
		Alignment: center,
	})
	if err != nil {
		return s, err
	}

	s.base, err = f.NewStyle(&excelize.Style{Border: border, Alignment: center})
	if err != nil {
		return s, err
	}
	s.alt, err = f.NewStyle(&excelize.Style{
		Border:    border,
		Alignment: center,
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{colorAltRow}},
	})
	if err != nil {
		return s, err
	}
	s.yes, err = f.NewStyle(&excelize.Style{
		Border:    border,
		Alignment: center,
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{colorFlagged}},
	})
	if err != nil {
		return s, err
	}
	s.no, err = f.NewStyle(&excelize.Style{
		Border:    border,
		Alignment: center,
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{colorHealthy}},
	})
	return s, err
}

// sheetName clips a category label to a legal worksheet name.
func sheetName(label string) string {
	replacer := strings.NewReplacer(":", " ", "\\", " ", "/", " ", "?", " ", "*", " ", "[", " ", "]", " ")
	name := strings.TrimSpace(replacer.Replace(label))
	if name == "" {
		name = "Sheet"
	}
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}
