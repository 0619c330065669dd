// Package guidance implements the HealBuddy chatbot flow: a user message is
// classified into one of three intents, then dispatched to a specialized
// responder. Safety and therapist-handoff replies are hard-coded; only
// general chat reaches the language model for generation. Every failure is
// converted to a safe fallback reply at the orchestrator boundary, so
// callers always receive a displayable response.
package guidance

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"
)

// Role tags one side of the conversation.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one role-tagged utterance in the dialogue history.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Request carries the current user message plus the prior conversation,
// oldest turn first. The caller owns the history; this package never
// persists or mutates it.
type Request struct {
	Message string
	History []Turn
}

// Result is the sole output of the orchestrator. Response is always
// non-empty, even on failure. Error carries the failure detail for
// diagnostics only and must never be shown raw to the end user.
type Result struct {
	Response string
	Error    string
}

// ChatCompleter is the slice of the OpenAI client the guidance flow needs.
// *openai.Client satisfies it; tests substitute a scripted fake.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

var (
	// ErrEmptyMessage is returned when a blank message reaches a component
	// that requires one. The orchestrator short-circuits before this point.
	ErrEmptyMessage = errors.New("guidance: empty message")
	// ErrUnknownLabel is returned when the model produces an intent label
	// outside the three-value contract.
	ErrUnknownLabel = errors.New("guidance: unknown intent label")
	// ErrNoChoices is returned when the completion API responds without
	// any choices.
	ErrNoChoices = errors.New("guidance: completion returned no choices")
)
