package findings

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord() Record {
	return Record{
		Regulation:        "GDPR",
		TotalRequirements: 10,
		CompliantCount:    6,
		NonCompliantCount: 2,
		WarningsCount:     2,
		Issues: []Issue{
			{ID: "1", Title: "No DPO", Status: StatusError, Description: "No data protection officer named.", Suggestion: "Appoint a DPO.", Regulation: "GDPR", Section: "Art. 37", Severity: "high", RiskLevel: "high"},
			{ID: "2", Title: "Retention", Status: StatusWarning, Description: "Retention periods vague.", Suggestion: "Define periods.", Regulation: "GDPR", Section: "Art. 5", Severity: "medium", RiskLevel: "medium"},
		},
		Summary: Summary{OverallStatus: OverallNonCompliant, HighRiskIssues: 1, MediumRiskIssues: 1},
	}
}

func TestRecover_RoundTripInsideProse(t *testing.T) {
	want := sampleRecord()
	data, err := json.MarshalIndent(want, "", "  ")
	require.NoError(t, err)

	raw := "Here is the analysis you asked for:\n" + string(data) + "\nLet me know if you need more."
	out := Recover(raw, "GDPR")

	assert.Equal(t, StrategyExtracted, out.Strategy)
	assert.False(t, out.Fallback())
	assert.Equal(t, want, out.Record)
}

func TestRecover_DirectWithTrailingComma(t *testing.T) {
	out := Recover(`{"total_requirements": 1, "compliant_count": 2,}`, "NIST")

	assert.Equal(t, StrategyDirect, out.Strategy)
	assert.Equal(t, "NIST", out.Record.Regulation)
	assert.Equal(t, 1, out.Record.TotalRequirements)
	assert.Equal(t, 2, out.Record.CompliantCount)
	assert.Empty(t, out.Record.Error)
}

func TestRecover_CodeFence(t *testing.T) {
	raw := "```json\n{\"regulation\": \"HIPAA\", \"issues\": [{\"title\": \"x\",},], // trailing\n}\n```"
	out := Recover(raw, "HIPAA")

	assert.Equal(t, StrategyExtracted, out.Strategy)
	require.Len(t, out.Record.Issues, 1)
	assert.Equal(t, "x", out.Record.Issues[0].Title)
}

func TestRecover_CommentInsideStringKept(t *testing.T) {
	out := Recover(`{"issues": [{"description": "see http://example.com"}]}`, "GDPR")

	require.Len(t, out.Record.Issues, 1)
	assert.Equal(t, "see http://example.com", out.Record.Issues[0].Description)
}

func TestRecover_Fallbacks(t *testing.T) {
	long := strings.Repeat("é", 800)
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"prose only", "I could not analyze the documents."},
		{"truncated", `{"regulation": "GDPR", "issues": [`},
		{"array", `[1, 2, 3]`},
		{"long prose", long},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Recover(tt.raw, "GDPR")

			assert.Equal(t, StrategyFallback, out.Strategy)
			assert.True(t, out.Fallback())
			assert.Equal(t, "GDPR", out.Record.Regulation)
			assert.Equal(t, OverallUnknown, out.Record.Summary.OverallStatus)
			assert.NotNil(t, out.Record.Issues)
			assert.Empty(t, out.Record.Issues)
			assert.True(t, strings.HasPrefix(out.Record.Error, "LLM did not return valid JSON. Raw output: "))

			kept := strings.TrimPrefix(out.Record.Error, "LLM did not return valid JSON. Raw output: ")
			assert.LessOrEqual(t, utf8.RuneCountInString(kept), 500)
			assert.True(t, strings.HasPrefix(tt.raw, kept))
		})
	}
}

func TestRecover_LenientCoercion(t *testing.T) {
	raw := `{
		"regulation": "",
		"total_requirements": "12",
		"compliant_count": 4.7,
		"non_compliant_count": -3,
		"warnings_count": null,
		"issues": [{"id": 7, "title": "t", "status": "warning"}, "junk", 3],
		"summary": {"overall_status": "partial", "critical_issues": "1"}
	}`
	out := Recover(raw, "ISO27001")

	r := out.Record
	assert.Equal(t, StrategyDirect, out.Strategy)
	assert.Equal(t, "ISO27001", r.Regulation)
	assert.Equal(t, 12, r.TotalRequirements)
	assert.Equal(t, 4, r.CompliantCount)
	assert.Equal(t, 0, r.NonCompliantCount)
	assert.Equal(t, 0, r.WarningsCount)
	require.Len(t, r.Issues, 1)
	assert.Equal(t, "7", r.Issues[0].ID)
	assert.Equal(t, OverallPartial, r.Summary.OverallStatus)
	assert.Equal(t, 1, r.Summary.CriticalIssues)
}

func TestRecover_EmptyObject(t *testing.T) {
	out := Recover(`{}`, "NIST")

	assert.Equal(t, StrategyDirect, out.Strategy)
	assert.Equal(t, "NIST", out.Record.Regulation)
	assert.NotNil(t, out.Record.Issues)
	assert.False(t, out.Fallback())
}

func TestRecover_PanicBecomesFallback(t *testing.T) {
	saved := strategies
	t.Cleanup(func() { strategies = saved })
	strategies = []strategy{{StrategyDirect, func(string) (string, bool) { panic("boom") }}}

	out := Recover(`{"regulation": "GDPR"}`, "GDPR")

	assert.Equal(t, StrategyFallback, out.Strategy)
	assert.Equal(t, "Exception during response recovery: boom", out.Record.Error)
}

func TestBackendFallback(t *testing.T) {
	r := BackendFallback("HIPAA", assert.AnError)

	assert.True(t, r.IsFallback())
	assert.Equal(t, "Exception in compliance gap analysis: "+assert.AnError.Error(), r.Error)
	assert.Equal(t, OverallUnknown, r.Summary.OverallStatus)
}

func TestStripLineComment(t *testing.T) {
	assert.Equal(t, `"a": 1,`, stripLineComment(`"a": 1, // note`))
	assert.Equal(t, `"u": "http://x"`, stripLineComment(`"u": "http://x"`))
	assert.Equal(t, `"q": "say \"//\""`, stripLineComment(`"q": "say \"//\""`))
}

func TestAggregate(t *testing.T) {
	second := Record{
		Regulation:        "NIST",
		TotalRequirements: 5,
		CompliantCount:    5,
		Issues: []Issue{
			{Title: "a", Status: StatusSuccess, Severity: "LOW"},
			{Title: "b", Status: StatusWarning},
			{Title: "c", Status: StatusError, Severity: "critical"},
			{Title: "d", Status: StatusWarning, Severity: "unusual"},
		},
	}
	entries := []Entry{{Code: "GDPR", Record: sampleRecord()}, {Code: "NIST", Record: second}}

	got := Aggregate(entries)
	assert.Equal(t, 15, got.RulesChecked)
	assert.Equal(t, 11, got.Passed)
	assert.Equal(t, 2, got.Warnings)
	assert.Equal(t, 2, got.Failures)
	assert.Equal(t, 6, got.TotalIssues)
	assert.Equal(t, []SeverityCount{
		{Name: "Critical", Value: 1, Color: "#EF4444"},
		{Name: "High", Value: 1, Color: "#F59E0B"},
		{Name: "Medium", Value: 2, Color: "#3B82F6"},
		{Name: "Low", Value: 1, Color: "#10B981"},
	}, got.Severity)

	empty := Aggregate(nil)
	assert.Len(t, empty.Severity, 4)
	assert.Zero(t, empty.TotalIssues)
}

func TestRisks(t *testing.T) {
	entries := []Entry{{Code: "GDPR", Record: Record{Issues: []Issue{
		{Status: StatusSuccess, Title: "ok"},
		{Status: StatusWarning, Section: "Art. 5"},
		{Status: StatusError, Title: "Breach", Severity: "high", Suggestion: "Notify"},
	}}}}

	risks := Risks(entries)
	require.Len(t, risks, 2)
	assert.Equal(t, Risk{
		ID: 1, Title: DefaultTitle, Description: DefaultDescription, Severity: "medium",
		Regulation: "GDPR Art. 5", Recommendation: DefaultRecommendation,
	}, risks[0])
	assert.Equal(t, 2, risks[1].ID)
	assert.Equal(t, "Breach", risks[1].Title)
	assert.Equal(t, "Notify", risks[1].Recommendation)

	assert.NotNil(t, Risks(nil))
}

func TestFlattenIssues(t *testing.T) {
	entries := []Entry{
		{Code: "GDPR", Record: sampleRecord()},
		{Code: "HIPAA", Record: Record{TotalRequirements: 3, Issues: []Issue{{}}}},
	}

	list := FlattenIssues(entries)
	require.Len(t, list.Issues, 3)
	assert.Equal(t, 13, list.TotalRequirements)
	assert.Equal(t, 6, list.CompliantCount)
	assert.Equal(t, 2, list.NonCompliantCount)

	last := list.Issues[2]
	assert.Equal(t, 3, last.ID)
	assert.Equal(t, "HIPAA", last.Regulation)
	assert.Equal(t, StatusWarning, last.Status)
	assert.Equal(t, DefaultSection, last.Section)
	assert.Equal(t, DefaultTitle, last.Title)
}

func TestOverallStatus(t *testing.T) {
	assert.Equal(t, LabelCompliant, OverallStatus(nil))
	assert.Equal(t, LabelPartial, OverallStatus([]Entry{{Record: Record{WarningsCount: 1}}}))
	assert.Equal(t, LabelNonCompliant, OverallStatus([]Entry{
		{Record: Record{WarningsCount: 1}},
		{Record: Record{NonCompliantCount: 1}},
	}))
}

func TestByCode(t *testing.T) {
	gdpr := sampleRecord()
	hipaa := Fallback("HIPAA", "timeout")
	records, order := ByCode([]Entry{{Code: "HIPAA", Record: hipaa}, {Code: "GDPR", Record: gdpr}})

	assert.Equal(t, []string{"HIPAA", "GDPR"}, order)
	assert.Equal(t, map[string]Record{"GDPR": gdpr, "HIPAA": hipaa}, records)

	records, order = ByCode(nil)
	assert.NotNil(t, records)
	assert.Empty(t, records)
	assert.NotNil(t, order)
}
