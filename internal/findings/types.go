// Package findings models per-regulation analysis results and recovers them
// from unstructured model output.
package findings

// Issue status values.
const (
	StatusSuccess = "success"
	StatusWarning = "warning"
	StatusError   = "error"
)

// Overall status values carried in Summary.OverallStatus.
const (
	OverallCompliant    = "compliant"
	OverallPartial      = "partial"
	OverallNonCompliant = "non_compliant"
	OverallUnknown      = "unknown"
)

// Issue is one finding within a regulation's analysis.
type Issue struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Status      string `json:"status"`
	Description string `json:"description"`
	Suggestion  string `json:"suggestion"`
	Regulation  string `json:"regulation"`
	Section     string `json:"section"`
	Severity    string `json:"severity"`
	RiskLevel   string `json:"risk_level"`
}

// Summary rolls up a regulation's issues.
type Summary struct {
	OverallStatus    string `json:"overall_status"`
	CriticalIssues   int    `json:"critical_issues"`
	HighRiskIssues   int    `json:"high_risk_issues"`
	MediumRiskIssues int    `json:"medium_risk_issues"`
	LowRiskIssues    int    `json:"low_risk_issues"`
}

// Record is the structured result of one regulation's analysis. A record
// recovered from model output and a fallback record have the same shape;
// a non-empty Error marks the fallback.
type Record struct {
	Regulation        string  `json:"regulation"`
	TotalRequirements int     `json:"total_requirements"`
	CompliantCount    int     `json:"compliant_count"`
	NonCompliantCount int     `json:"non_compliant_count"`
	WarningsCount     int     `json:"warnings_count"`
	Issues            []Issue `json:"issues"`
	Summary           Summary `json:"summary"`
	Error             string  `json:"error,omitempty"`
}

// IsFallback reports whether the record stands in for an unparseable or
// failed analysis.
func (r Record) IsFallback() bool {
	return r.Error != ""
}

// Entry pairs a regulation code with its record, in analysis order.
type Entry struct {
	Code   string
	Record Record
}

// ByCode maps each regulation code to its record. order keeps the
// analysis order, which the map loses.
func ByCode(entries []Entry) (records map[string]Record, order []string) {
	records = make(map[string]Record, len(entries))
	order = make([]string, 0, len(entries))
	for _, e := range entries {
		records[e.Code] = e.Record
		order = append(order, e.Code)
	}
	return records, order
}

// Fallback builds the canonical "unknown" record for regulation carrying
// cause in Error.
func Fallback(regulation, cause string) Record {
	return Record{
		Regulation: regulation,
		Issues:     []Issue{},
		Summary:    Summary{OverallStatus: OverallUnknown},
		Error:      cause,
	}
}

// BackendFallback is the record stored when the model backend itself fails.
func BackendFallback(regulation string, err error) Record {
	return Fallback(regulation, "Exception in compliance gap analysis: "+err.Error())
}
