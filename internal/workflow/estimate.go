package workflow

import (
	"github.com/ziadkadry99/regaudit/internal/document"
	"github.com/ziadkadry99/regaudit/internal/findings"
	"github.com/ziadkadry99/regaudit/internal/llm"
	"github.com/ziadkadry99/regaudit/internal/regulation"
	"github.com/ziadkadry99/regaudit/internal/session"
)

// CostEstimate predicts the model usage of analyzing a session against a
// set of regulations and writing the report. Output tokens assume every
// call uses its full MaxTokens budget, so totals are an upper bound.
type CostEstimate struct {
	Model         string
	Calls         int
	InputTokens   int
	OutputTokens  int
	EstimatedCost float64
	// PriceKnown is false when the model has no price entry and the cost
	// is reported as zero.
	PriceKnown    bool
	CostBreakdown map[string]float64 // per operation: one per regulation, plus "report"
}

// Estimate computes a CostEstimate without calling the model.
func (o *Orchestrator) Estimate(s *session.Session, codes []string) CostEstimate {
	est := CostEstimate{
		Model:         o.opts.Model,
		PriceKnown:    llm.KnownPrice(o.opts.Model),
		CostBreakdown: make(map[string]float64),
	}
	docs := document.Texts(s.Documents, o.opts.MaxChunks)

	var entries []findings.Entry
	for _, code := range codes {
		code = regulation.Normalize(code)
		if code == "" {
			continue
		}
		in := llm.EstimateTokens(analysisSystemPrompt + analysisPrompt(code, regulation.Lookup(code), docs, s.Company.Description))
		est.add(code, in, o.opts.MaxTokens)
		entries = append(entries, findings.Entry{Code: code, Record: findings.Fallback(code, "")})
	}
	if len(entries) == 0 {
		return est
	}

	// The report prompt carries each analysis record, which is at most
	// one analysis reply long.
	summary, _ := FindingsSummary(entries)
	in := llm.EstimateTokens(reportSystemPrompt+reportPrompt(s.Company.Description, len(s.Documents), summary)) +
		len(entries)*o.opts.MaxTokens
	est.add("report", in, o.opts.MaxTokens)
	return est
}

func (e *CostEstimate) add(op string, in, out int) {
	cost := llm.EstimateCost(e.Model, in, out)
	e.Calls++
	e.InputTokens += in
	e.OutputTokens += out
	e.EstimatedCost += cost
	e.CostBreakdown[op] += cost
}
