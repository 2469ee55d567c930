package findings

import (
	"fmt"
	"strings"
)

// Dashboard defaults for issue fields the model left blank.
const (
	DefaultTitle          = "Compliance Issue"
	DefaultDescription    = "No description available"
	DefaultRecommendation = "Review and address the identified compliance gap."
	DefaultSection        = "General"
)

// Overall compliance labels across all analyzed regulations.
const (
	LabelCompliant    = "Compliant"
	LabelPartial      = "Partial"
	LabelNonCompliant = "Non-Compliant"
)

// SeverityCount is one slice of the severity chart.
type SeverityCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

// Totals summarises every record for the dashboard.
type Totals struct {
	RulesChecked int             `json:"rules_checked"`
	Passed       int             `json:"passed"`
	Warnings     int             `json:"warnings"`
	Failures     int             `json:"failures"`
	Severity     []SeverityCount `json:"severity_data"`
	TotalIssues  int             `json:"total_issues"`
}

var severityOrder = []SeverityCount{
	{Name: "Critical", Color: "#EF4444"},
	{Name: "High", Color: "#F59E0B"},
	{Name: "Medium", Color: "#3B82F6"},
	{Name: "Low", Color: "#10B981"},
}

// Aggregate sums counts across entries and buckets issues by severity.
// Issues without a severity count as Medium; unrecognised severities are
// counted in TotalIssues only.
func Aggregate(entries []Entry) Totals {
	t := Totals{Severity: make([]SeverityCount, len(severityOrder))}
	copy(t.Severity, severityOrder)

	for _, e := range entries {
		r := e.Record
		t.RulesChecked += r.TotalRequirements
		t.Passed += r.CompliantCount
		t.Warnings += r.WarningsCount
		t.Failures += r.NonCompliantCount
		for _, is := range r.Issues {
			t.TotalIssues++
			sev := titleCase(is.Severity)
			if sev == "" {
				sev = "Medium"
			}
			for i := range t.Severity {
				if t.Severity[i].Name == sev {
					t.Severity[i].Value++
				}
			}
		}
	}
	return t
}

// Risk is a warning or error issue presented as a risk entry.
type Risk struct {
	ID             int    `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Severity       string `json:"severity"`
	Regulation     string `json:"regulation"`
	Recommendation string `json:"recommendation"`
}

// Risks lists every warning and error issue, numbered from 1.
func Risks(entries []Entry) []Risk {
	risks := []Risk{}
	for _, e := range entries {
		for _, is := range e.Record.Issues {
			if is.Status != StatusWarning && is.Status != StatusError {
				continue
			}
			risks = append(risks, Risk{
				ID:             len(risks) + 1,
				Title:          orDefault(is.Title, DefaultTitle),
				Description:    orDefault(is.Description, DefaultDescription),
				Severity:       orDefault(is.Severity, "medium"),
				Regulation:     fmt.Sprintf("%s %s", e.Code, is.Section),
				Recommendation: orDefault(is.Suggestion, DefaultRecommendation),
			})
		}
	}
	return risks
}

// NumberedIssue is an issue as listed on the compliance tab.
type NumberedIssue struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Status      string `json:"status"`
	Description string `json:"description"`
	Suggestion  string `json:"suggestion"`
	Regulation  string `json:"regulation"`
	Section     string `json:"section"`
}

// IssueList is every issue plus the summed requirement counts.
type IssueList struct {
	Issues            []NumberedIssue `json:"issues"`
	TotalRequirements int             `json:"total_requirements"`
	CompliantCount    int             `json:"compliant_count"`
	NonCompliantCount int             `json:"non_compliant_count"`
}

// FlattenIssues numbers every issue across entries and fills blank fields.
func FlattenIssues(entries []Entry) IssueList {
	out := IssueList{Issues: []NumberedIssue{}}
	for _, e := range entries {
		r := e.Record
		out.TotalRequirements += r.TotalRequirements
		out.CompliantCount += r.CompliantCount
		out.NonCompliantCount += r.NonCompliantCount
		for _, is := range r.Issues {
			out.Issues = append(out.Issues, NumberedIssue{
				ID:          len(out.Issues) + 1,
				Title:       orDefault(is.Title, DefaultTitle),
				Status:      orDefault(is.Status, StatusWarning),
				Description: orDefault(is.Description, DefaultDescription),
				Suggestion:  orDefault(is.Suggestion, DefaultRecommendation),
				Regulation:  e.Code,
				Section:     orDefault(is.Section, DefaultSection),
			})
		}
	}
	return out
}

// OverallStatus is Non-Compliant if any record has non-compliant findings,
// Partial if any has warnings, and Compliant otherwise.
func OverallStatus(entries []Entry) string {
	status := LabelCompliant
	for _, e := range entries {
		if e.Record.NonCompliantCount > 0 {
			return LabelNonCompliant
		}
		if e.Record.WarningsCount > 0 {
			status = LabelPartial
		}
	}
	return status
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func titleCase(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
