package engine

import (
	"sort"

	"clientreport/pkg/schema"
)

// ActivityIndex groups the activity log by normalized subject name for the
// match cascade, keeping the subject keys in sorted order so the fuzzy
// strategy scans a deterministic candidate list.
type ActivityIndex struct {
	BySubject map[string][]schema.ActivityRecord
	Subjects  []string
}

// BuildActivityIndex constructs an ActivityIndex from the activity table.
// Rows with an empty normalized subject are not indexed: they can never
// belong to a client and would otherwise match blank roster names.
func BuildActivityIndex(activities []schema.ActivityRecord) *ActivityIndex {
	index := &ActivityIndex{
		BySubject: make(map[string][]schema.ActivityRecord),
	}
	for _, act := range activities {
		if act.SubjectNorm == "" {
			continue
		}
		index.BySubject[act.SubjectNorm] = append(index.BySubject[act.SubjectNorm], act)
	}

	index.Subjects = make([]string, 0, len(index.BySubject))
	for subject := range index.BySubject {
		index.Subjects = append(index.Subjects, subject)
	}
	sort.Strings(index.Subjects)

	return index
}
