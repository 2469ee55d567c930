package findings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Strategy names the recovery step that produced a record.
type Strategy string

const (
	StrategyDirect    Strategy = "direct"
	StrategyExtracted Strategy = "extracted"
	StrategyFallback  Strategy = "fallback"
)

// rawExcerptLimit bounds how much raw model output a fallback record keeps.
const rawExcerptLimit = 500

// Outcome is the result of recovering a record from model output. Record is
// always usable; Strategy says how it was obtained.
type Outcome struct {
	Record   Record
	Strategy Strategy
}

// Fallback reports whether the record is the canonical fallback.
func (o Outcome) Fallback() bool {
	return o.Record.IsFallback()
}

type strategy struct {
	name      Strategy
	candidate func(raw string) (string, bool)
}

// strategies run in order; the first candidate that decodes to a JSON
// object wins.
var strategies = []strategy{
	{StrategyDirect, func(raw string) (string, bool) { return raw, true }},
	{StrategyExtracted, outermostObject},
}

// Recover turns raw model output into a Record for regulation. It never
// fails: output that cannot be decoded, and any panic raised while
// decoding, yield the fallback record with the cause in Error.
func Recover(raw, regulation string) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = Outcome{
				Record:   Fallback(regulation, fmt.Sprintf("Exception during response recovery: %v", r)),
				Strategy: StrategyFallback,
			}
		}
	}()

	for _, s := range strategies {
		text, ok := s.candidate(raw)
		if !ok {
			continue
		}
		obj, err := decodeObject(cleanJSON(text))
		if err != nil {
			continue
		}
		return Outcome{Record: fromMap(obj, regulation), Strategy: s.name}
	}

	return Outcome{
		Record:   Fallback(regulation, "LLM did not return valid JSON. Raw output: "+excerpt(raw, rawExcerptLimit)),
		Strategy: StrategyFallback,
	}
}

// excerpt returns at most n runes of s.
func excerpt(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

var errNotObject = errors.New("not a JSON object")

// decodeObject parses exactly one JSON object. Numbers are kept as
// json.Number so integer counts survive untouched.
func decodeObject(s string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after JSON value")
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, errNotObject
	}
	return obj, nil
}

// fromMap coerces a decoded object into a Record. Missing fields take zero
// values, numbers may arrive as strings and ids as numbers.
func fromMap(m map[string]any, regulation string) Record {
	r := Record{
		Regulation:        asString(m["regulation"]),
		TotalRequirements: asCount(m["total_requirements"]),
		CompliantCount:    asCount(m["compliant_count"]),
		NonCompliantCount: asCount(m["non_compliant_count"]),
		WarningsCount:     asCount(m["warnings_count"]),
		Issues:            asIssues(m["issues"]),
		Summary:           asSummary(m["summary"]),
		Error:             asString(m["error"]),
	}
	if strings.TrimSpace(r.Regulation) == "" {
		r.Regulation = regulation
	}
	return r
}

func asIssues(v any) []Issue {
	list, _ := v.([]any)
	issues := make([]Issue, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		issues = append(issues, Issue{
			ID:          asString(m["id"]),
			Title:       asString(m["title"]),
			Status:      asString(m["status"]),
			Description: asString(m["description"]),
			Suggestion:  asString(m["suggestion"]),
			Regulation:  asString(m["regulation"]),
			Section:     asString(m["section"]),
			Severity:    asString(m["severity"]),
			RiskLevel:   asString(m["risk_level"]),
		})
	}
	return issues
}

func asSummary(v any) Summary {
	m, _ := v.(map[string]any)
	return Summary{
		OverallStatus:    asString(m["overall_status"]),
		CriticalIssues:   asCount(m["critical_issues"]),
		HighRiskIssues:   asCount(m["high_risk_issues"]),
		MediumRiskIssues: asCount(m["medium_risk_issues"]),
		LowRiskIssues:    asCount(m["low_risk_issues"]),
	}
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// asCount reads a non-negative integer, truncating fractions. Anything
// unreadable counts as zero.
func asCount(v any) int {
	var f float64
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			f = float64(n)
		} else if x, err := t.Float64(); err == nil {
			f = x
		}
	case string:
		s := strings.TrimSpace(t)
		if n, err := strconv.Atoi(s); err == nil {
			f = float64(n)
		} else if x, err := strconv.ParseFloat(s, 64); err == nil {
			f = x
		}
	case float64:
		f = t
	}
	switch {
	case f <= 0 || math.IsNaN(f):
		return 0
	case f > math.MaxInt32:
		return math.MaxInt32
	}
	return int(f)
}
