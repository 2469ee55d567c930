package workflow

import (
	"fmt"
	"strings"
)

const analysisSystemPrompt = `You are a compliance expert. You compare a company's internal documentation with regulatory requirements and report gaps as structured JSON. Base every finding on the material provided.`

const analysisPromptTemplate = `Analyze the company's documentation against %[1]s requirements.

REGULATION REQUIREMENTS:
%[2]s

COMPANY DOCUMENTATION:
%[3]s

COMPANY DESCRIPTION: %[4]s

Return a JSON object with exactly this structure. Always return every field, using zeros and empty lists when nothing applies. Return only the JSON, with no markdown and no commentary.

{
  "regulation": "%[1]s",
  "total_requirements": <number>,
  "compliant_count": <number>,
  "non_compliant_count": <number>,
  "warnings_count": <number>,
  "issues": [
    {
      "id": <unique_id>,
      "title": "<requirement being assessed>",
      "status": "success|warning|error",
      "description": "<what the documentation shows or lacks>",
      "suggestion": "<specific remediation>",
      "regulation": "%[1]s",
      "section": "<regulation section>",
      "severity": "critical|high|medium|low",
      "risk_level": "high|medium|low"
    }
  ],
  "summary": {
    "overall_status": "compliant|partial|non_compliant",
    "critical_issues": <number>,
    "high_risk_issues": <number>,
    "medium_risk_issues": <number>,
    "low_risk_issues": <number>
  }
}

Status meanings: success is compliant, warning is partially implemented, error is non-compliant.`

const reportSystemPrompt = `You are a compliance consultant writing an assessment report for company leadership. Be professional, specific and actionable.`

const reportPromptTemplate = `Write a compliance assessment report from the analysis results below.

COMPANY: %s
DOCUMENT CHUNKS ANALYZED: %d

ANALYSIS RESULTS:%s

Structure the report with these sections:
# EXECUTIVE SUMMARY
# COMPANY OVERVIEW
# OVERALL COMPLIANCE POSTURE
# DETAILED FINDINGS BY REGULATION
For each regulation: compliant areas, identified gaps, partial implementations and risk assessment.
# RISK PRIORITIZATION MATRIX
# REMEDIATION RECOMMENDATIONS
# IMPLEMENTATION TIMELINE
# CONCLUSION`

func analysisPrompt(code, requirements string, docs []string, description string) string {
	if strings.TrimSpace(description) == "" {
		description = "Not provided"
	}
	return fmt.Sprintf(analysisPromptTemplate, code, requirements, strings.Join(docs, "\n"), description)
}

func reportPrompt(description string, chunks int, findingsSummary string) string {
	if strings.TrimSpace(description) == "" {
		description = "Company under assessment"
	}
	return fmt.Sprintf(reportPromptTemplate, description, chunks, findingsSummary)
}

// ReportHeader is the fixed metadata block that starts every report.
func ReportHeader(description string, regulations []string, chunks int) string {
	if description == "" {
		description = "Unknown Company"
	}
	return fmt.Sprintf("COMPLIANCE ASSESSMENT REPORT\nGenerated: %s\nRegulations Analyzed: %s\nDocument Chunks: %d\nAnalysis Date: Auto-generated\n%s\n",
		description, strings.Join(regulations, ", "), chunks, strings.Repeat("=", 60))
}
