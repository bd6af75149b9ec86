package llm

import (
	"context"
)

// Provider role strings for conversation history. The provider side knows
// only two speakers; internal system turns are replayed as the user.
const (
	HistoryRoleUser  = "user"
	HistoryRoleModel = "model"
)

// HistoryMessage is one prior turn as the provider sees it.
type HistoryMessage struct {
	Role string
	Text string
}

// GenerateRequest is the full request contract for a text generation call.
type GenerateRequest struct {
	// System is the system instruction (persona preamble, possibly prefixed
	// by a per-session override). Empty means no system instruction.
	System string

	// History holds the prior turns, oldest first, excluding the new turn.
	History []HistoryMessage

	// Prompt is the new turn: assembled context blocks followed by the raw
	// user text.
	Prompt string

	// Generation parameters. Zero values fall back to provider defaults.
	MaxTokens   int
	Temperature float64
}

// Provider generates text from a system instruction, conversation history and
// a prompt. Implementations wrap the hosted completion APIs.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req *GenerateRequest) (string, error)
}
