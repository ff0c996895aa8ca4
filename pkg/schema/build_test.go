package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clientreport/pkg/parser"
)

func TestBuildActivities(t *testing.T) {
	records := []map[string]string{
		{
			parser.FieldSubject:  "  Mario ROSSI ",
			parser.FieldYear:     "2025",
			parser.FieldMonth:    "9",
			parser.FieldClass:    "04 RICHIESTE",
			parser.FieldManager:  "Bianchi",
			parser.FieldLocation: "Milano",
		},
		{
			parser.FieldSubject: "Acme SRL",
			parser.FieldYear:    "2025.0",
			parser.FieldMonth:   "10.0",
			parser.FieldClass:   "qualcosa di nuovo",
		},
	}

	activities := BuildActivities(records)
	require.Len(t, activities, 2)

	first := activities[0]
	assert.Equal(t, "Mario ROSSI", first.Subject)
	assert.Equal(t, "mario rossi", first.SubjectNorm)
	assert.Equal(t, 2025, first.Year)
	assert.Equal(t, 9, first.Month)
	assert.True(t, first.PeriodValid)
	assert.Equal(t, 1, first.Priority)
	assert.Equal(t, "Bianchi", first.Manager)
	assert.Equal(t, "Milano", first.Location)

	second := activities[1]
	assert.Equal(t, 2025, second.Year)
	assert.Equal(t, 10, second.Month)
	assert.True(t, second.PeriodValid)
	assert.Equal(t, lowestPriority, second.Priority)
}

func TestBuildActivitiesInvalidPeriods(t *testing.T) {
	cases := []struct {
		name  string
		year  string
		month string
	}{
		{"blank year", "", "9"},
		{"blank month", "2025", ""},
		{"non-numeric", "duemila", "9"},
		{"fractional", "2025.5", "9"},
		{"month zero", "2025", "0"},
		{"month thirteen", "2025", "13"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			activities := BuildActivities([]map[string]string{{
				parser.FieldSubject: "X",
				parser.FieldYear:    tc.year,
				parser.FieldMonth:   tc.month,
			}})
			require.Len(t, activities, 1)
			assert.False(t, activities[0].PeriodValid)
		})
	}
}

func TestBuildClients(t *testing.T) {
	records := []map[string]string{
		{
			parser.FieldClient:    " Mario Rossi ",
			parser.FieldType:      "amministratore",
			parser.FieldManager:   "Bianchi",
			parser.FieldLocation:  "Milano",
			parser.FieldQuoted:    "1.234,56",
			parser.FieldCollected: "100",
		},
		{parser.FieldClient: ""},
		{parser.FieldClient: "   "},
		{parser.FieldClient: "Acme SRL", parser.FieldType: ""},
	}

	clients := BuildClients(records)
	require.Len(t, clients, 2)

	assert.Equal(t, "Mario Rossi", clients[0].Name)
	assert.Equal(t, "mario rossi", clients[0].NameNorm)
	assert.Equal(t, CategoryAdministrators, clients[0].Type)
	assert.Equal(t, "1.234,56", clients[0].Quoted)

	// A present but blank type column stays blank.
	assert.Equal(t, "", clients[1].Type)
}

func TestBuildClientsWithoutTypeColumn(t *testing.T) {
	clients := BuildClients([]map[string]string{
		{parser.FieldClient: "Mario Rossi"},
	})
	require.Len(t, clients, 1)
	assert.Equal(t, CategoryAdministrators, clients[0].Type)
}
