// Package engine aligns the client roster with the activity log. For every
// roster client it resolves the most relevant activity through a strategy
// cascade (direct normalized-name match, reversed-word match, optional fuzzy
// match), computes a staleness verdict against a configured reference period,
// and synthesizes client-equivalent rows for activity subjects the roster
// does not know.
package engine

import (
	"fmt"
	"sort"

	"clientreport/pkg/schema"
)

// OrphanPolicy selects the staleness verdict for orphaned-activity rows.
// The upstream pipelines disagree here: some flag every orphan, others apply
// the same elapsed-months rule as matched clients. Both are kept as explicit
// policies; AlwaysFlag is the default, since an orphaned activity belongs to
// no tracked client and is de facto unassigned.
type OrphanPolicy string

const (
	OrphanAlwaysFlag OrphanPolicy = "always_flag"
	OrphanSameRule   OrphanPolicy = "same_rule"
)

// DefaultFuzzyThreshold is the minimum similarity the fuzzy strategy accepts.
const DefaultFuzzyThreshold = 0.85

// DefaultStaleAfterMonths is the elapsed-months bound beyond which a client
// needs reassignment.
const DefaultStaleAfterMonths = 2

// MatchStrategy names the cascade step that resolved a client.
type MatchStrategy string

const (
	MatchDirect   MatchStrategy = "direct"
	MatchReversed MatchStrategy = "reversed"
	MatchFuzzy    MatchStrategy = "fuzzy"
	MatchNone     MatchStrategy = "none"
)

// Config carries one run's reconciliation parameters. The reference period is
// injected here and never read from the clock, so staleness is testable with
// fixed anchors and consistent across the whole run.
type Config struct {
	RefYear  int
	RefMonth int

	// StaleAfterMonths: a client whose last activity is more than this many
	// months before the reference period needs reassignment. Zero means the
	// default of 2.
	StaleAfterMonths int

	// Fuzzy enables the third matching strategy. Matcher defaults to
	// LevenshteinMatcher when nil.
	Fuzzy          bool
	FuzzyThreshold float64
	Matcher        IdentityMatcher

	OrphanPolicy OrphanPolicy
}

// Validate rejects configurations the engine cannot run with.
func (c Config) Validate() error {
	if c.RefYear <= 0 || c.RefMonth < 1 || c.RefMonth > 12 {
		return fmt.Errorf("invalid reference period %d-%02d", c.RefYear, c.RefMonth)
	}
	if c.FuzzyThreshold < 0 || c.FuzzyThreshold > 1 {
		return fmt.Errorf("fuzzy threshold %.2f out of range [0, 1]", c.FuzzyThreshold)
	}
	switch c.OrphanPolicy {
	case "", OrphanAlwaysFlag, OrphanSameRule:
	default:
		return fmt.Errorf("unknown orphan policy %q", c.OrphanPolicy)
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.StaleAfterMonths == 0 {
		c.StaleAfterMonths = DefaultStaleAfterMonths
	}
	if c.FuzzyThreshold == 0 {
		c.FuzzyThreshold = DefaultFuzzyThreshold
	}
	if c.Matcher == nil {
		c.Matcher = LevenshteinMatcher{}
	}
	if c.OrphanPolicy == "" {
		c.OrphanPolicy = OrphanAlwaysFlag
	}
	return c
}

// Stats aggregates one reconciliation run for the log and console summary.
type Stats struct {
	Clients         int `json:"clients"`
	DirectMatches   int `json:"directMatches"`
	ReversedMatches int `json:"reversedMatches"`
	FuzzyMatches    int `json:"fuzzyMatches"`
	Unmatched       int `json:"unmatched"`
	OrphanGroups    int `json:"orphanGroups"`
	NeedReassign    int `json:"needReassign"`
}

// Result is the unified record set: one row per roster client followed by one
// row per orphaned-activity group.
type Result struct {
	Records []schema.UnifiedRecord
	Stats   Stats
}

// Reconcile produces the unified record set for one run.
func Reconcile(clients []schema.ClientRecord, activities []schema.ActivityRecord, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	index := BuildActivityIndex(activities)
	result := &Result{Records: make([]schema.UnifiedRecord, 0, len(clients))}
	result.Stats.Clients = len(clients)

	// Subject keys claimed by reversed or fuzzy matches: those activities
	// already contribute to a client row and must not resurface as orphans.
	consumed := make(map[string]bool)

	for _, client := range clients {
		candidates, matchedKey, strategy := matchClient(client.NameNorm, index, cfg)
		if strategy == MatchReversed || strategy == MatchFuzzy {
			consumed[matchedKey] = true
		}
		switch strategy {
		case MatchDirect:
			result.Stats.DirectMatches++
		case MatchReversed:
			result.Stats.ReversedMatches++
		case MatchFuzzy:
			result.Stats.FuzzyMatches++
		}

		record := schema.UnifiedRecord{
			Location:  client.Location,
			Manager:   client.Manager,
			Name:      client.Name,
			Type:      client.Type,
			Quoted:    client.Quoted,
			Approved:  client.Approved,
			Invoiced:  client.Invoiced,
			Collected: client.Collected,
		}

		last, ok := selectLatest(candidates)
		if !ok {
			// No activity on record, or only activities whose period never
			// parsed: the client is unconditionally due for reassignment.
			if strategy == MatchNone {
				result.Stats.Unmatched++
			}
			record.NeedsReassignment = schema.VerdictYes
		} else {
			record.Year = fmt.Sprintf("%d", last.Year)
			record.Month = fmt.Sprintf("%d", last.Month)
			record.LastClass = last.Class
			record.NeedsReassignment = verdict(last, cfg)
		}
		if record.NeedsReassignment == schema.VerdictYes {
			result.Stats.NeedReassign++
		}
		result.Records = append(result.Records, record)
	}

	orphans := orphanRecords(clients, activities, consumed, cfg)
	result.Stats.OrphanGroups = len(orphans)
	for _, record := range orphans {
		if record.NeedsReassignment == schema.VerdictYes {
			result.Stats.NeedReassign++
		}
	}
	result.Records = append(result.Records, orphans...)

	return result, nil
}

// matchClient runs the strategy cascade, stopping at the first strategy that
// yields at least one candidate. It returns the subject key that matched so
// the caller can mark it attributed.
func matchClient(nameNorm string, index *ActivityIndex, cfg Config) ([]schema.ActivityRecord, string, MatchStrategy) {
	if candidates := index.BySubject[nameNorm]; len(candidates) > 0 {
		return candidates, nameNorm, MatchDirect
	}
	if nameNorm == "" {
		return nil, "", MatchNone
	}
	if reversed := schema.ReverseWords(nameNorm); len(index.BySubject[reversed]) > 0 {
		return index.BySubject[reversed], reversed, MatchReversed
	}
	if cfg.Fuzzy {
		best, score := cfg.Matcher.BestMatch(nameNorm, index.Subjects)
		if best != "" && score >= cfg.FuzzyThreshold {
			return index.BySubject[best], best, MatchFuzzy
		}
	}
	return nil, "", MatchNone
}

// selectLatest orders candidates by (year, month, priority rank) ascending
// and returns the tail element. Among same-period activities this lands on
// the highest rank number; that convention is pinned by test and kept as-is.
// Candidates with an invalid period are excluded up front, so a false return
// means nothing usable matched.
func selectLatest(candidates []schema.ActivityRecord) (schema.ActivityRecord, bool) {
	usable := make([]schema.ActivityRecord, 0, len(candidates))
	for _, c := range candidates {
		if c.PeriodValid {
			usable = append(usable, c)
		}
	}
	if len(usable) == 0 {
		return schema.ActivityRecord{}, false
	}

	sort.SliceStable(usable, func(i, j int) bool {
		a, b := usable[i], usable[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.Month != b.Month {
			return a.Month < b.Month
		}
		return a.Priority < b.Priority
	})
	return usable[len(usable)-1], true
}

// verdict applies the staleness rule: more than StaleAfterMonths months
// between the activity period and the reference period means reassignment.
func verdict(last schema.ActivityRecord, cfg Config) string {
	monthsElapsed := (cfg.RefYear-last.Year)*12 + (cfg.RefMonth - last.Month)
	if monthsElapsed > cfg.StaleAfterMonths {
		return schema.VerdictYes
	}
	return schema.VerdictNo
}

// orphanRecords synthesizes one row per activity subject that no client row
// claimed, neither through the roster name set nor through a reversed or
// fuzzy match. Orphans are grouped by their raw subject name, in
// first-appearance order, and each group's latest activity is selected with
// the same ordering rule as matched clients.
func orphanRecords(clients []schema.ClientRecord, activities []schema.ActivityRecord, consumed map[string]bool, cfg Config) []schema.UnifiedRecord {
	rosterNames := make(map[string]bool, len(clients))
	for _, client := range clients {
		rosterNames[client.NameNorm] = true
	}

	groups := make(map[string][]schema.ActivityRecord)
	var order []string
	for _, act := range activities {
		if act.SubjectNorm == "" || rosterNames[act.SubjectNorm] || consumed[act.SubjectNorm] {
			continue
		}
		if _, seen := groups[act.Subject]; !seen {
			order = append(order, act.Subject)
		}
		groups[act.Subject] = append(groups[act.Subject], act)
	}

	records := make([]schema.UnifiedRecord, 0, len(order))
	for _, subject := range order {
		group := groups[subject]
		record := schema.UnifiedRecord{
			Name: subject,
			Type: schema.CategoryAdministrators,
		}

		last, ok := selectLatest(group)
		if ok {
			record.Location = last.Location
			record.Manager = last.Manager
			record.Year = fmt.Sprintf("%d", last.Year)
			record.Month = fmt.Sprintf("%d", last.Month)
			record.LastClass = last.Class
		} else {
			// Every activity in the group has an unparseable period; fall
			// back to the first row's manager and location so the report
			// still names someone accountable.
			record.Location = group[0].Location
			record.Manager = group[0].Manager
		}

		switch {
		case cfg.OrphanPolicy == OrphanSameRule && ok:
			record.NeedsReassignment = verdict(last, cfg)
		default:
			record.NeedsReassignment = schema.VerdictYes
		}

		records = append(records, record)
	}
	return records
}
