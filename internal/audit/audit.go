// Package audit keeps a persistent trail of workflow operations. Session
// state itself is never stored; only a summary of what was done to it.
package audit

import (
	"context"
	"time"
)

// ActorType identifies who triggered an operation.
type ActorType string

const (
	ActorUser   ActorType = "user"
	ActorAgent  ActorType = "agent"
	ActorCLI    ActorType = "cli"
	ActorMCP    ActorType = "mcp"
	ActorSystem ActorType = "system"
)

// Action names a workflow operation.
type Action string

const (
	ActionIngest  Action = "ingest"
	ActionProcess Action = "process"
	ActionAnalyze Action = "analyze"
	ActionReport  Action = "report"
	ActionReset   Action = "reset"
)

// Outcome values.
const (
	OutcomeOK       = "ok"
	OutcomeFallback = "fallback"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Entry is a single audit trail record.
type Entry struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	SessionID  string    `json:"session_id"`
	ActorType  ActorType `json:"actor_type"`
	Action     Action    `json:"action"`
	Outcome    string    `json:"outcome"`
	Regulation string    `json:"regulation,omitempty"`
	Summary    string    `json:"summary"`
	Detail     string    `json:"detail,omitempty"`
}

type actorKey struct{}

// WithActor tags ctx with the actor recorded for operations run under it.
func WithActor(ctx context.Context, actor ActorType) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom returns the actor stored in ctx, or ActorSystem.
func ActorFrom(ctx context.Context) ActorType {
	if a, ok := ctx.Value(actorKey{}).(ActorType); ok && a != "" {
		return a
	}
	return ActorSystem
}
