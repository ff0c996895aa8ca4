package parser

import (
	"fmt"
	"sort"
	"strings"
)

// Canonical field names used by the rest of the pipeline. The readers map
// whatever headers the source files carry onto these before handing tables on.
const (
	FieldYear     = "year"
	FieldMonth    = "month"
	FieldClass    = "activityClass"
	FieldManager  = "manager"
	FieldSubject  = "subjectName"
	FieldLocation = "location"

	FieldClient    = "clientName"
	FieldType      = "clientType"
	FieldQuoted    = "quoted"
	FieldApproved  = "approved"
	FieldInvoiced  = "invoiced"
	FieldCollected = "collected"
)

// headerSynonyms maps normalized source headers to canonical field names.
// The dashboard exports use the Italian labels; the English forms are
// accepted for hand-edited files.
var headerSynonyms = map[string]string{
	"anno": FieldYear,
	"year": FieldYear,

	"mese":  FieldMonth,
	"month": FieldMonth,

	"classeattivita":  FieldClass,
	"classeattività":  FieldClass,
	"activityclass":   FieldClass,
	"ultimaattivita":  FieldClass,
	"ultimaattività":  FieldClass,

	"responsabile":             FieldManager,
	"responsabilegestionale":   FieldManager,
	"responsabile(gestionale)": FieldManager,
	"manager":                  FieldManager,

	"nomesoggetto": FieldSubject,
	"soggetto":     FieldSubject,
	"subject":      FieldSubject,
	"subjectname":  FieldSubject,

	"sede":     FieldLocation,
	"location": FieldLocation,

	"cliente":    FieldClient,
	"client":     FieldClient,
	"clientname": FieldClient,

	"tipo":       FieldType,
	"type":       FieldType,
	"clienttype": FieldType,

	"preventivato":  FieldQuoted,
	"preventivato€": FieldQuoted,
	"quoted":        FieldQuoted,

	"deliberato":  FieldApproved,
	"deliberato€": FieldApproved,
	"approved":    FieldApproved,

	"fatturato":  FieldInvoiced,
	"fatturato€": FieldInvoiced,
	"invoiced":   FieldInvoiced,

	"incassato":  FieldCollected,
	"incassato€": FieldCollected,
	"collected":  FieldCollected,
}

// activityRequired and clientRequired are the structural validation sets:
// a table missing any of these aborts the run before reconciliation.
var (
	activityRequired = []string{FieldYear, FieldMonth, FieldClass, FieldManager, FieldSubject}
	clientRequired   = []string{FieldClient}
)

// ValidationError reports required columns absent from an input table. It is
// the only error whose text reaches the end user verbatim.
type ValidationError struct {
	Table   string
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s table is missing required column(s): %s", e.Table, strings.Join(e.Missing, ", "))
}

// normalizeHeader lowercases a header and strips whitespace, underscores,
// and hyphens, so matching is case- and spacing-insensitive.
func normalizeHeader(header string) string {
	s := strings.ToLower(strings.TrimSpace(header))
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "_", "")
	s = strings.ReplaceAll(s, "-", "")
	return s
}

// canonicalize rewrites a raw table's record keys onto canonical field names.
// Headers with no known mapping are dropped; the first header claiming a
// canonical field wins.
func canonicalize(records []map[string]string) []map[string]string {
	out := make([]map[string]string, 0, len(records))
	for _, record := range records {
		mapped := make(map[string]string, len(record))

		keys := make([]string, 0, len(record))
		for k := range record {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			field, ok := headerSynonyms[normalizeHeader(k)]
			if !ok {
				continue
			}
			if _, claimed := mapped[field]; !claimed {
				mapped[field] = strings.TrimSpace(record[k])
			}
		}
		out = append(out, mapped)
	}
	return out
}

// missingColumns returns the required fields absent from the header set.
func missingColumns(headers []string, required []string) []string {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		if field, ok := headerSynonyms[normalizeHeader(h)]; ok {
			present[field] = true
		}
	}
	var missing []string
	for _, field := range required {
		if !present[field] {
			missing = append(missing, field)
		}
	}
	return missing
}
