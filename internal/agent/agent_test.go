package agent

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/regaudit/internal/document"
	"github.com/ziadkadry99/regaudit/internal/llm"
	"github.com/ziadkadry99/regaudit/internal/llm/llmtest"
	"github.com/ziadkadry99/regaudit/internal/session"
	"github.com/ziadkadry99/regaudit/internal/workflow"
)

func TestParseAction(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Action
	}{
		{
			name: "bare json",
			text: `{"action": "compliance_gap_analysis", "action_input": "GDPR"}`,
			want: Action{Name: "compliance_gap_analysis", Input: "GDPR"},
		},
		{
			name: "json inside prose",
			text: "Sure, next I will analyze.\n```json\n{\"action\": \"compliance_gap_analysis\",\n \"action_input\": \"HIPAA\"}\n```",
			want: Action{Name: "compliance_gap_analysis", Input: "HIPAA"},
		},
		{
			name: "final answer json",
			text: `{"action": "Final Answer", "action_input": "All done."}`,
			want: Action{Name: FinalAnswer, Input: "All done."},
		},
		{
			name: "non-string input",
			text: `{"action": "compliance_gap_analysis", "action_input": ["GDPR"]}`,
			want: Action{Name: "compliance_gap_analysis", Input: `["GDPR"]`},
		},
		{
			name: "final answer marker",
			text: "Thought: I have what I need.\nFinal Answer: The report is ready.\nThanks",
			want: Action{Name: FinalAnswer, Input: "The report is ready.\nThanks"},
		},
		{
			name: "plain prose",
			text: "Hello! How can I help?",
			want: Action{Name: FinalAnswer, Input: Clarification},
		},
		{
			name: "empty",
			text: "",
			want: Action{Name: FinalAnswer, Input: Clarification},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseAction(tt.text))
		})
	}
}

func TestParseAction_BrokenJSON(t *testing.T) {
	a := ParseAction(`{"action": compliance_gap_analysis}`)
	assert.True(t, a.Final())
	assert.True(t, strings.HasPrefix(a.Input, "Parsing error occurred: "))

	a = ParseAction("{\"action\": oops}\nFinal Answer: fine")
	assert.Equal(t, Action{Name: FinalAnswer, Input: "fine"}, a)
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "Agent parsing error during report generation. Please try again.",
		ErrorMessage(errors.New("OUTPUT_PARSING_FAILURE: bad"), "report generation"))
	assert.Equal(t, "Agent reached maximum iterations during agent request. Please try a simpler request.",
		ErrorMessage(errMaxIterations, "agent request"))
	assert.Equal(t, "Error during x: boom", ErrorMessage(errors.New("boom"), "x"))
	assert.Equal(t, "msg", ErrorMessage(&workflow.StepError{Kind: workflow.ErrNoFindings, Message: "msg"}, "x"))
}

const gdprJSON = `{"regulation":"GDPR","total_requirements":4,"compliant_count":1,"non_compliant_count":2,"warnings_count":1,"issues":[],"summary":{"overall_status":"partial"}}`

// scripted answers agent turns from agentReplies and analysis/report
// prompts with fixed text, telling them apart by the system prompt.
func scripted(agentReplies ...string) *llmtest.Provider {
	turn := 0
	return &llmtest.Provider{Fn: func(req llm.CompletionRequest) (string, error) {
		sys := req.Messages[0].Content
		switch {
		case strings.Contains(sys, "You have access to these tools"):
			if turn >= len(agentReplies) {
				return `{"action": "get_compliance_status", "action_input": ""}`, nil
			}
			turn++
			return agentReplies[turn-1], nil
		case strings.Contains(sys, "assessment report"):
			return "# EXECUTIVE SUMMARY\nGaps found.", nil
		default:
			return gdprJSON, nil
		}
	}}
}

func setup(t *testing.T, p llm.Provider) (*Executor, *session.Session) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.md")
	require.NoError(t, os.WriteFile(path, []byte("# Policy\n\nWe encrypt customer data and keep access logs."), 0o644))

	o := workflow.New(p, document.NewChunker(document.DefaultOptions(), nil, nil), workflow.DefaultOptions(), nil)
	tools := WorkflowTools(o, func(string) []string { return []string{path} })
	return NewExecutor(p, tools, 0, nil), session.New("agent")
}

func TestRun_FullWorkflow(t *testing.T) {
	p := scripted(
		`{"action": "ingest_company_documents", "action_input": "Acme Corp - SaaS"}`,
		`{"action": "process_uploaded_files", "action_input": ""}`,
		`{"action": "compliance_gap_analysis", "action_input": "gdpr"}`,
		`{"action": "generate_compliance_report", "action_input": ""}`,
	)
	e, s := setup(t, p)

	res, err := e.Run(context.Background(), s, "Assess Acme against GDPR and write the report")
	require.NoError(t, err)
	assert.False(t, res.Stopped)
	assert.Equal(t, 4, res.Iterations)
	require.Len(t, res.Steps, 4)
	assert.Contains(t, res.Steps[2].Observation, "Found 2 non-compliant issues and 1 warnings")
	assert.True(t, strings.HasPrefix(res.Output, "COMPLIANCE ASSESSMENT REPORT"))
	assert.Equal(t, res.Output, s.LastReport)
	assert.Equal(t, []string{"GDPR"}, s.Regulations())
}

func TestRun_FinalAnswer(t *testing.T) {
	e, s := setup(t, scripted("Final Answer: Please upload your documents first."))

	res, err := e.Run(context.Background(), s, "hi")
	require.NoError(t, err)
	assert.Equal(t, "Please upload your documents first.", res.Output)
	assert.Empty(t, res.Steps)
}

func TestRun_StepErrorsBecomeObservations(t *testing.T) {
	p := scripted(
		`{"action": "compliance_gap_analysis", "action_input": "GDPR"}`,
		`{"action": "unknown_tool", "action_input": ""}`,
		`{"action": "Final Answer", "action_input": "stopping"}`,
	)
	e, s := setup(t, p)

	res, err := e.Run(context.Background(), s, "analyze")
	require.NoError(t, err)
	require.Len(t, res.Steps, 2)
	assert.Contains(t, res.Steps[0].Observation, "No company documents loaded")
	assert.Contains(t, res.Steps[1].Observation, "Tool 'unknown_tool' not found")
	assert.Equal(t, "stopping", res.Output)
	assert.Contains(t, p.LastPrompt(), "Observation: No company documents loaded")
}

func TestRun_MaxIterations(t *testing.T) {
	e, s := setup(t, scripted())

	res, err := e.Run(context.Background(), s, "loop forever")
	require.NoError(t, err)
	assert.True(t, res.Stopped)
	assert.Equal(t, DefaultMaxIterations, res.Iterations)
	assert.Equal(t, "Agent reached maximum iterations during agent request. Please try a simpler request.", res.Output)
}

func TestRun_BackendFault(t *testing.T) {
	p := llmtest.New()
	p.Err = errors.New("service unavailable")
	e, s := setup(t, p)

	res, err := e.Run(context.Background(), s, "hi")
	require.NoError(t, err)
	assert.Equal(t, "Error during agent request: service unavailable", res.Output)
}

func TestRun_Cancelled(t *testing.T) {
	e, s := setup(t, scripted())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Run(ctx, s, "hi")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInvoke(t *testing.T) {
	e, s := setup(t, scripted())

	out, err := e.Invoke(context.Background(), s, ToolIngest, "  Acme  ")
	require.NoError(t, err)
	assert.Contains(t, out, "Acme")
	assert.Equal(t, "Acme", s.Company.Description)

	_, err = e.Invoke(context.Background(), s, "nope", "")
	assert.Error(t, err)

	out, err = e.Invoke(context.Background(), s, ToolStatus, "")
	require.NoError(t, err)
	assert.Contains(t, out, "Company Description: Acme")
	assert.Contains(t, out, "Ready for Report: No")
}

func TestWorkflowTools_NoSearchWithoutIndex(t *testing.T) {
	e, _ := setup(t, scripted())
	assert.NotContains(t, e.Tools(), ToolSearch)
	assert.Equal(t, []string{ToolIngest, ToolProcess, ToolAnalyze, ToolReport, ToolStatus}, e.Tools())
}
