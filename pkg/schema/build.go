package schema

import (
	"math"
	"strconv"
	"strings"

	"clientreport/pkg/parser"
)

// BuildActivities converts canonicalized activity rows into ActivityRecords,
// deriving the normalized subject key, the priority rank, and the period
// validity flag. Rows with malformed year/month are kept — their invalid
// period degrades them later rather than aborting the run.
func BuildActivities(records []map[string]string) []ActivityRecord {
	out := make([]ActivityRecord, 0, len(records))
	for _, record := range records {
		subject := strings.TrimSpace(record[parser.FieldSubject])
		class := strings.TrimSpace(record[parser.FieldClass])

		year, yearOK := parseWholeNumber(record[parser.FieldYear])
		month, monthOK := parseWholeNumber(record[parser.FieldMonth])
		periodValid := yearOK && monthOK && month >= 1 && month <= 12

		out = append(out, ActivityRecord{
			Subject:     subject,
			SubjectNorm: NormalizeName(subject),
			Year:        year,
			Month:       month,
			PeriodValid: periodValid,
			Class:       class,
			Priority:    PriorityRank(class),
			Manager:     strings.TrimSpace(record[parser.FieldManager]),
			Location:    strings.TrimSpace(record[parser.FieldLocation]),
		})
	}
	return out
}

// BuildClients converts canonicalized roster rows into ClientRecords.
// Rows without a client name are dropped.
func BuildClients(records []map[string]string) []ClientRecord {
	out := make([]ClientRecord, 0, len(records))
	for _, record := range records {
		name := strings.TrimSpace(record[parser.FieldClient])
		if name == "" {
			continue
		}

		// A roster with no type column at all is the administrators extract;
		// a blank value in a present column stays blank for the partitioner
		// to label.
		rawType, hasTypeColumn := record[parser.FieldType]
		clientType := FixClientType(rawType)
		if !hasTypeColumn {
			clientType = CategoryAdministrators
		}

		out = append(out, ClientRecord{
			Name:      name,
			NameNorm:  NormalizeName(name),
			Type:      clientType,
			Manager:   strings.TrimSpace(record[parser.FieldManager]),
			Location:  strings.TrimSpace(record[parser.FieldLocation]),
			Quoted:    strings.TrimSpace(record[parser.FieldQuoted]),
			Approved:  strings.TrimSpace(record[parser.FieldApproved]),
			Invoiced:  strings.TrimSpace(record[parser.FieldInvoiced]),
			Collected: strings.TrimSpace(record[parser.FieldCollected]),
		})
	}
	return out
}

// parseWholeNumber reads an integer that spreadsheet round-tripping may have
// turned into a float ("2025" or "2025.0"). Fractional values are rejected.
func parseWholeNumber(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}
