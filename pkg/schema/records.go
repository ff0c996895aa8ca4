package schema

import "strings"

// ActivityRecord is one row of the activity log: a logged interaction with a
// client or prospect, identified only by a free-text subject name.
type ActivityRecord struct {
	Subject     string `json:"subject"`
	SubjectNorm string `json:"subjectNorm"`
	Year        int    `json:"year"`
	Month       int    `json:"month"`
	// PeriodValid reports whether Year/Month parsed cleanly from the source
	// row. Invalid periods never abort the run; the engine degrades them to
	// the no-activity outcome.
	PeriodValid bool   `json:"periodValid"`
	Class       string `json:"class"`
	Priority    int    `json:"priority"`
	Manager     string `json:"manager"`
	Location    string `json:"location"`
}

// ClientRecord is one row of the client roster. Monetary fields keep their
// source text form until the presentation boundary.
type ClientRecord struct {
	Name     string `json:"name"`
	NameNorm string `json:"nameNorm"`
	Type     string `json:"type"`
	Manager  string `json:"manager"`
	Location string `json:"location"`

	Quoted    string `json:"quoted"`
	Approved  string `json:"approved"`
	Invoiced  string `json:"invoiced"`
	Collected string `json:"collected"`
}

// UnifiedRecord is one row of the final report: a roster client enriched with
// its latest activity and staleness verdict, or an orphaned activity subject
// synthesized into a client-equivalent row. Year and Month are strings so a
// missing activity renders blank rather than zero.
type UnifiedRecord struct {
	Location          string `json:"location"`
	Manager           string `json:"manager"`
	Name              string `json:"name"`
	Year              string `json:"year"`
	Month             string `json:"month"`
	LastClass         string `json:"lastClass"`
	NeedsReassignment string `json:"needsReassignment"`

	Quoted    string `json:"quoted"`
	Approved  string `json:"approved"`
	Invoiced  string `json:"invoiced"`
	Collected string `json:"collected"`

	Type string `json:"type"`
}

// Verdict strings for UnifiedRecord.NeedsReassignment.
const (
	VerdictYes = "Yes"
	VerdictNo  = "No"
)

// CategoryAdministrators is the fallback client-type bucket: orphaned
// activity subjects and rosters without a type column land here.
const CategoryAdministrators = "Administrators"

// lowestPriority is the rank assigned to activity classes outside the known
// table, sorting them after every ranked class.
const lowestPriority = 999

// priorityRanks orders activity classes for same-period tie-breaking.
// Keys are the exact source labels including their two-digit prefix.
var priorityRanks = map[string]int{
	"04 RICHIESTE":    1,
	"06 PREVENTIVI":   2,
	"03 INCONTRI":     3,
	"07 DELIBERE":     4,
	"05 SOPRALLUOGHI": 5,
	"01 TELEFONATE":   6,
	"02 APPUNTAMENTI": 7,
}

// PriorityRank returns the tie-break rank for an activity class label.
// Matching is exact-string; unknown labels rank last.
func PriorityRank(class string) int {
	if rank, ok := priorityRanks[class]; ok {
		return rank
	}
	return lowestPriority
}

// FixClientType repairs a roster type label: trim, capitalize the first
// letter, and collapse any administrator spelling onto the canonical bucket.
// Blank input stays blank; the caller decides the fallback label.
func FixClientType(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "amministrator") || strings.HasPrefix(lower, "administrator") {
		return CategoryAdministrators
	}
	return strings.ToUpper(lower[:1]) + lower[1:]
}
