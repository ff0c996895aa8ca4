// Package report groups the unified record set into the views the workbook
// writer emits: one master view plus one view per client type.
package report

import (
	"sort"

	"clientreport/pkg/schema"
)

// CategoryUncategorized labels rows whose client type is blank.
const CategoryUncategorized = "Uncategorized"

// Category is one per-type view: its normalized label and its rows, sorted by
// client name ascending.
type Category struct {
	Label   string
	Records []schema.UnifiedRecord
}

// Partition is the full presentation layout. Master keeps every record in its
// original order; Categories are ordered lexicographically by label, and each
// record appears in exactly one of them. DefaultSheet names the category the
// workbook should open on, empty when no preferred category exists.
type Partition struct {
	Master       []schema.UnifiedRecord
	Categories   []Category
	DefaultSheet string
}

// Build partitions the unified record set by client-type label.
func Build(records []schema.UnifiedRecord) *Partition {
	p := &Partition{Master: records}

	buckets := make(map[string][]schema.UnifiedRecord)
	for _, record := range records {
		label := schema.FixClientType(record.Type)
		if label == "" {
			label = CategoryUncategorized
		}
		buckets[label] = append(buckets[label], record)
	}

	labels := make([]string, 0, len(buckets))
	for label := range buckets {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	p.Categories = make([]Category, 0, len(labels))
	for _, label := range labels {
		rows := buckets[label]
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].Name < rows[j].Name
		})
		p.Categories = append(p.Categories, Category{Label: label, Records: rows})
		if label == schema.CategoryAdministrators {
			p.DefaultSheet = label
		}
	}

	return p
}
