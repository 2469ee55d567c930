package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ziadkadry99/regaudit/internal/llm"
	"github.com/ziadkadry99/regaudit/internal/session"
)

// DefaultMaxIterations bounds the tool loop when none is configured.
const DefaultMaxIterations = 5

// Tool is an operation the model may call.
type Tool struct {
	Name        string
	Description string
	// ReturnDirect tools end the loop with their output as the answer.
	ReturnDirect bool
	Run          func(ctx context.Context, s *session.Session, input string) (string, error)
}

// Step is one tool call and what it returned.
type Step struct {
	Action      Action `json:"action"`
	Observation string `json:"observation"`
}

// Result is the outcome of an agent request.
type Result struct {
	Output     string `json:"output"`
	Steps      []Step `json:"steps"`
	Iterations int    `json:"iterations"`
	// Stopped is set when the iteration limit ended the loop.
	Stopped bool `json:"stopped"`
}

// Executor runs the think-act-observe loop.
type Executor struct {
	provider      llm.Provider
	tools         []Tool
	byName        map[string]Tool
	maxIterations int
	model         string
	maxTokens     int
	logger        *slog.Logger
}

// NewExecutor creates an executor over tools. maxIterations <= 0 uses
// DefaultMaxIterations.
func NewExecutor(provider llm.Provider, tools []Tool, maxIterations int, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	byName := make(map[string]Tool, len(tools))
	for _, t := range tools {
		byName[t.Name] = t
	}
	return &Executor{
		provider:      provider,
		tools:         tools,
		byName:        byName,
		maxIterations: maxIterations,
		logger:        logger,
	}
}

// SetModel overrides the model and output budget used for agent turns.
func (e *Executor) SetModel(model string, maxTokens int) {
	e.model = model
	e.maxTokens = maxTokens
}

// Tools lists the tool names in registration order.
func (e *Executor) Tools() []string {
	names := make([]string, len(e.tools))
	for i, t := range e.tools {
		names[i] = t.Name
	}
	return names
}

// Run handles one request. The caller must hold the session exclusively.
// Model and tool failures become a descriptive Output; Run itself only
// fails when ctx is done.
func (e *Executor) Run(ctx context.Context, s *session.Session, input string) (Result, error) {
	var res Result
	system := e.systemPrompt()

	for res.Iterations < e.maxIterations {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Iterations++

		resp, err := e.provider.Complete(ctx, llm.CompletionRequest{
			Model:     e.model,
			Messages:  llm.Prompt(system, userPrompt(input, res.Steps)),
			MaxTokens: e.maxTokens,
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return res, ctxErr
			}
			e.logger.Error("agent model call failed", "session", s.ID, "iteration", res.Iterations, "error", err)
			res.Output = ErrorMessage(err, "agent request")
			return res, nil
		}

		action := ParseAction(resp.Content)
		e.logger.Debug("agent action", "session", s.ID, "iteration", res.Iterations, "action", action.Name)
		if action.Final() {
			res.Output = action.Input
			return res, nil
		}

		tool, ok := e.byName[action.Name]
		if !ok {
			res.Steps = append(res.Steps, Step{
				Action:      action,
				Observation: fmt.Sprintf("Tool '%s' not found. Valid tools: %s.", action.Name, strings.Join(e.Tools(), ", ")),
			})
			continue
		}

		out, err := e.runTool(ctx, tool, s, action.Input)
		if err != nil {
			out = ErrorMessage(err, tool.Name)
		} else if tool.ReturnDirect {
			res.Steps = append(res.Steps, Step{Action: action, Observation: out})
			res.Output = out
			return res, nil
		}
		res.Steps = append(res.Steps, Step{Action: action, Observation: out})
	}

	e.logger.Warn("agent stopped at iteration limit", "session", s.ID, "limit", e.maxIterations)
	res.Stopped = true
	res.Output = ErrorMessage(errMaxIterations, "agent request")
	return res, nil
}

// Invoke runs a single tool by name without consulting the model.
func (e *Executor) Invoke(ctx context.Context, s *session.Session, name, input string) (string, error) {
	tool, ok := e.byName[name]
	if !ok {
		return "", fmt.Errorf("tool '%s' not found", name)
	}
	return e.runTool(ctx, tool, s, input)
}

func (e *Executor) runTool(ctx context.Context, tool Tool, s *session.Session, input string) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tool %s panicked: %v", tool.Name, r)
		}
	}()
	return tool.Run(ctx, s, strings.TrimSpace(input))
}

func (e *Executor) systemPrompt() string {
	var b strings.Builder
	b.WriteString("You are a compliance expert assistant. You have access to these tools:\n\n")
	for _, t := range e.tools {
		fmt.Fprintf(&b, "%s: %s\n", t.Name, t.Description)
	}
	fmt.Fprintf(&b, `
Typical workflow: set up ingestion with the company description, process the uploaded files, run a gap analysis per regulation, then generate the report.

Always respond with one JSON object and nothing else:
{"action": "tool_name", "action_input": "plain string input"}

Valid actions: %s or "%s". Use "%s" with your reply to the user as action_input once you are done.`,
		strings.Join(e.Tools(), ", "), FinalAnswer, FinalAnswer)
	return b.String()
}

func userPrompt(input string, steps []Step) string {
	if len(steps) == 0 {
		return input
	}
	var b strings.Builder
	b.WriteString(input)
	b.WriteString("\n\nPrevious steps:\n")
	for _, st := range steps {
		fmt.Fprintf(&b, "Action: %s\nAction Input: %s\nObservation: %s\n", st.Action.Name, st.Action.Input, st.Observation)
	}
	b.WriteString("\nDecide the next action.")
	return b.String()
}
