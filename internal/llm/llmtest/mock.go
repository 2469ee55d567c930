// Package llmtest provides a scripted llm.Provider for tests.
package llmtest

import (
	"context"
	"sync"

	"github.com/ziadkadry99/regaudit/internal/llm"
)

// Provider replays canned replies in order. When the script runs out the
// last reply repeats. Err, when set, fails every call.
type Provider struct {
	mu      sync.Mutex
	Replies []string
	Err     error
	// Fn, when set, computes the reply instead of Replies.
	Fn    func(req llm.CompletionRequest) (string, error)
	Calls []llm.CompletionRequest
}

// New returns a provider that answers with replies in sequence.
func New(replies ...string) *Provider {
	return &Provider{Replies: replies}
}

func (p *Provider) Name() string { return "mock" }

func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls = append(p.Calls, req)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.Err != nil {
		return nil, p.Err
	}

	var content string
	if p.Fn != nil {
		var err error
		content, err = p.Fn(req)
		if err != nil {
			return nil, err
		}
	} else if len(p.Replies) > 0 {
		idx := len(p.Calls) - 1
		if idx >= len(p.Replies) {
			idx = len(p.Replies) - 1
		}
		content = p.Replies[idx]
	}

	return &llm.CompletionResponse{
		Content:      content,
		InputTokens:  llm.EstimateTokens(req.InputText()),
		OutputTokens: llm.EstimateTokens(content),
		Model:        "mock-model",
		FinishReason: "stop",
	}, nil
}

// CallCount returns how many completions were requested.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Calls)
}

// LastPrompt returns the final message of the most recent request.
func (p *Provider) LastPrompt() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.Calls) == 0 {
		return ""
	}
	msgs := p.Calls[len(p.Calls)-1].Messages
	if len(msgs) == 0 {
		return ""
	}
	return msgs[len(msgs)-1].Content
}
