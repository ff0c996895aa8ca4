package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clientreport/pkg/schema"
)

// refCfg anchors staleness at 2025-11 for all engine tests.
func refCfg() Config {
	return Config{RefYear: 2025, RefMonth: 11}
}

func activity(subject string, year, month int, class string) schema.ActivityRecord {
	return schema.ActivityRecord{
		Subject:     subject,
		SubjectNorm: schema.NormalizeName(subject),
		Year:        year,
		Month:       month,
		PeriodValid: true,
		Class:       class,
		Priority:    schema.PriorityRank(class),
	}
}

func client(name, clientType string) schema.ClientRecord {
	return schema.ClientRecord{
		Name:     name,
		NameNorm: schema.NormalizeName(name),
		Type:     clientType,
	}
}

func TestReconcileLatestPeriodWins(t *testing.T) {
	clients := []schema.ClientRecord{client("Mario Rossi", "Privato")}
	activities := []schema.ActivityRecord{
		activity("rossi mario", 2025, 6, "04 RICHIESTE"),
		activity("rossi mario", 2025, 9, "07 DELIBERE"),
	}

	result, err := Reconcile(clients, activities, refCfg())
	require.NoError(t, err)
	require.Len(t, result.Records, 1)

	r := result.Records[0]
	assert.Equal(t, "Mario Rossi", r.Name)
	assert.Equal(t, "2025", r.Year)
	assert.Equal(t, "9", r.Month)
	assert.Equal(t, "07 DELIBERE", r.LastClass)
	// monthsElapsed = 2, inside the window.
	assert.Equal(t, schema.VerdictNo, r.NeedsReassignment)
	assert.Equal(t, 1, result.Stats.ReversedMatches)
}

func TestReconcileStalenessBoundary(t *testing.T) {
	cases := []struct {
		name    string
		year    int
		month   int
		verdict string
	}{
		{"two months ago stays", 2025, 9, schema.VerdictNo},
		{"three months ago flags", 2025, 8, schema.VerdictYes},
		{"same period stays", 2025, 11, schema.VerdictNo},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clients := []schema.ClientRecord{client("acme srl", "Impresa")}
			activities := []schema.ActivityRecord{
				activity("acme srl", tc.year, tc.month, "01 TELEFONATE"),
			}
			result, err := Reconcile(clients, activities, refCfg())
			require.NoError(t, err)
			assert.Equal(t, tc.verdict, result.Records[0].NeedsReassignment)
		})
	}
}

func TestReconcileNoMatchFlagsClient(t *testing.T) {
	clients := []schema.ClientRecord{client("Mario Rossi", "Privato")}

	result, err := Reconcile(clients, nil, refCfg())
	require.NoError(t, err)
	require.Len(t, result.Records, 1)

	r := result.Records[0]
	assert.Equal(t, schema.VerdictYes, r.NeedsReassignment)
	assert.Empty(t, r.Year)
	assert.Empty(t, r.Month)
	assert.Empty(t, r.LastClass)
	assert.Equal(t, 1, result.Stats.Unmatched)
}

func TestReconcileDirectBeatsReversed(t *testing.T) {
	// Both orders exist in the log; the direct key must win without the
	// reversed strategy ever being consulted.
	clients := []schema.ClientRecord{client("Bianchi Luca", "Privato")}
	activities := []schema.ActivityRecord{
		activity("bianchi luca", 2025, 3, "01 TELEFONATE"),
		activity("luca bianchi", 2025, 10, "07 DELIBERE"),
	}

	result, err := Reconcile(clients, activities, refCfg())
	require.NoError(t, err)

	r := result.Records[0]
	assert.Equal(t, "3", r.Month)
	assert.Equal(t, "01 TELEFONATE", r.LastClass)
	assert.Equal(t, 1, result.Stats.DirectMatches)
	assert.Equal(t, 0, result.Stats.ReversedMatches)
}

func TestReconcileSamePeriodTieBreak(t *testing.T) {
	// Ascending (year, month, rank) sort, take tail: among same-period
	// activities the highest rank number is selected. Pinned behavior.
	clients := []schema.ClientRecord{client("acme srl", "Impresa")}
	activities := []schema.ActivityRecord{
		activity("acme srl", 2024, 5, "04 RICHIESTE"),    // rank 1
		activity("acme srl", 2024, 5, "02 APPUNTAMENTI"), // rank 7
	}

	for i := 0; i < 10; i++ {
		result, err := Reconcile(clients, activities, refCfg())
		require.NoError(t, err)
		assert.Equal(t, "02 APPUNTAMENTI", result.Records[0].LastClass)
	}
}

func TestReconcileUnknownClassRanksLast(t *testing.T) {
	clients := []schema.ClientRecord{client("acme srl", "Impresa")}
	activities := []schema.ActivityRecord{
		activity("acme srl", 2024, 5, "02 APPUNTAMENTI"), // rank 7
		activity("acme srl", 2024, 5, "99 ALTRO"),        // rank 999, sorts after
	}

	result, err := Reconcile(clients, activities, refCfg())
	require.NoError(t, err)
	assert.Equal(t, "99 ALTRO", result.Records[0].LastClass)
}

func TestReconcileOrphanGrouping(t *testing.T) {
	clients := []schema.ClientRecord{client("Mario Rossi", "Privato")}
	acme1 := activity("acme SRL", 2025, 10, "01 TELEFONATE")
	acme1.Manager = "Verdi"
	acme1.Location = "Genova"
	acme2 := activity("acme SRL", 2025, 4, "07 DELIBERE")
	activities := []schema.ActivityRecord{
		activity("rossi mario", 2025, 9, "07 DELIBERE"),
		acme1,
		acme2,
	}

	result, err := Reconcile(clients, activities, refCfg())
	require.NoError(t, err)
	require.Len(t, result.Records, 2)
	assert.Equal(t, 1, result.Stats.OrphanGroups)

	orphan := result.Records[1]
	// Raw subject casing is preserved.
	assert.Equal(t, "acme SRL", orphan.Name)
	assert.Equal(t, schema.CategoryAdministrators, orphan.Type)
	assert.Equal(t, "Verdi", orphan.Manager)
	assert.Equal(t, "Genova", orphan.Location)
	assert.Equal(t, "10", orphan.Month)
	assert.Equal(t, "01 TELEFONATE", orphan.LastClass)
	// always_flag default: orphans are flagged even with recent activity.
	assert.Equal(t, schema.VerdictYes, orphan.NeedsReassignment)
	assert.Empty(t, orphan.Quoted)
	assert.Empty(t, orphan.Collected)
}

func TestReconcileOrphanSameRulePolicy(t *testing.T) {
	cfg := refCfg()
	cfg.OrphanPolicy = OrphanSameRule

	activities := []schema.ActivityRecord{
		activity("acme SRL", 2025, 10, "01 TELEFONATE"),
		activity("stale spa", 2024, 1, "01 TELEFONATE"),
	}

	result, err := Reconcile(nil, activities, cfg)
	require.NoError(t, err)
	require.Len(t, result.Records, 2)
	assert.Equal(t, schema.VerdictNo, result.Records[0].NeedsReassignment)
	assert.Equal(t, schema.VerdictYes, result.Records[1].NeedsReassignment)
}

func TestReconcileCoverageInvariant(t *testing.T) {
	clients := []schema.ClientRecord{
		client("Mario Rossi", "Privato"),
		client("Bianchi Luca", "Condominio"),
		client("Nessuna Attivita", "Privato"),
	}
	activities := []schema.ActivityRecord{
		activity("rossi mario", 2025, 9, "07 DELIBERE"),
		activity("bianchi luca", 2025, 8, "04 RICHIESTE"),
		activity("orfano uno", 2025, 1, "01 TELEFONATE"),
		activity("orfano uno", 2025, 2, "01 TELEFONATE"),
		activity("orfano due", 2025, 3, "03 INCONTRI"),
	}

	result, err := Reconcile(clients, activities, refCfg())
	require.NoError(t, err)

	// |clients| + |orphan groups| rows, no duplicates.
	require.Len(t, result.Records, 5)
	seen := make(map[string]bool)
	for _, r := range result.Records {
		require.False(t, seen[r.Name], "duplicate row for %q", r.Name)
		seen[r.Name] = true
	}
}

func TestReconcileInvalidPeriodDegrades(t *testing.T) {
	bad := activity("rossi mario", 0, 0, "04 RICHIESTE")
	bad.PeriodValid = false

	clients := []schema.ClientRecord{client("Mario Rossi", "Privato")}
	result, err := Reconcile(clients, []schema.ActivityRecord{bad}, refCfg())
	require.NoError(t, err)

	r := result.Records[0]
	assert.Empty(t, r.Year)
	assert.Empty(t, r.LastClass)
	assert.Equal(t, schema.VerdictYes, r.NeedsReassignment)
}

func TestReconcileFuzzyMatch(t *testing.T) {
	cfg := refCfg()
	cfg.Fuzzy = true

	clients := []schema.ClientRecord{client("Mario Rosi", "Privato")} // typo
	activities := []schema.ActivityRecord{
		activity("mario rossi", 2025, 10, "03 INCONTRI"),
	}

	result, err := Reconcile(clients, activities, cfg)
	require.NoError(t, err)

	r := result.Records[0]
	assert.Equal(t, "03 INCONTRI", r.LastClass)
	assert.Equal(t, 1, result.Stats.FuzzyMatches)
	// The matched activity is no orphan.
	assert.Equal(t, 0, result.Stats.OrphanGroups)
}

func TestReconcileFuzzyBelowThresholdStaysUnmatched(t *testing.T) {
	cfg := refCfg()
	cfg.Fuzzy = true
	cfg.FuzzyThreshold = 0.95

	clients := []schema.ClientRecord{client("Mario Rosi", "Privato")}
	activities := []schema.ActivityRecord{
		activity("mario rossi", 2025, 10, "03 INCONTRI"),
	}

	result, err := Reconcile(clients, activities, cfg)
	require.NoError(t, err)
	assert.Equal(t, schema.VerdictYes, result.Records[0].NeedsReassignment)
	assert.Equal(t, 1, result.Stats.Unmatched)
	// The activity stays orphaned in its own row.
	assert.Equal(t, 1, result.Stats.OrphanGroups)
}

func TestReconcileFuzzyDisabledByDefault(t *testing.T) {
	clients := []schema.ClientRecord{client("Mario Rosi", "Privato")}
	activities := []schema.ActivityRecord{
		activity("mario rossi", 2025, 10, "03 INCONTRI"),
	}

	result, err := Reconcile(clients, activities, refCfg())
	require.NoError(t, err)
	assert.Equal(t, schema.VerdictYes, result.Records[0].NeedsReassignment)
	assert.Equal(t, 0, result.Stats.FuzzyMatches)
}

func TestConfigValidate(t *testing.T) {
	assert.Error(t, Config{RefYear: 2025, RefMonth: 13}.Validate())
	assert.Error(t, Config{RefYear: 0, RefMonth: 1}.Validate())
	assert.Error(t, Config{RefYear: 2025, RefMonth: 11, FuzzyThreshold: 1.5}.Validate())
	assert.Error(t, Config{RefYear: 2025, RefMonth: 11, OrphanPolicy: "sometimes"}.Validate())
	assert.NoError(t, refCfg().Validate())
}
