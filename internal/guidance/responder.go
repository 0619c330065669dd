package guidance

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const respondTimeout = 30 * time.Second

// SafetyResponse is the fixed crisis reply. It is never produced by the
// model: generated crisis text is an unacceptable risk surface, so the
// helpline numbers are hard-coded and returned byte-identical every time.
const SafetyResponse = "I hear that you're going through a very difficult time. Please know that you are not alone and help is available. If you are in crisis or immediate danger, please reach out to one of these resources right away: \n- **National Suicide Prevention Lifeline**: Call or text 988 \n- **Crisis Text Line**: Text 'HOME' to 741741 \nFor immediate danger, please call 911. Your safety is the most important thing."

// TherapistHandoffResponse is the fixed reply pointing at the therapist
// marketplace. No model call.
const TherapistHandoffResponse = "It sounds like talking to a professional could be really helpful. You're taking a brave step. I can help you find someone to talk to. \n\n[Browse our therapist marketplace](/therapists) to find the right fit for you."

// FallbackResponse is shown whenever a completion call fails. The raw
// error travels in Result.Error for diagnostics, never in this text.
const FallbackResponse = "I'm having a little trouble connecting right now. Please try again in a moment. \U0001F60A"

// RephraseResponse covers the defensive branch for an intent value outside
// the known set.
const RephraseResponse = "I'm not sure how to respond to that. Could you try rephrasing? \U0001F60A"

// EmptyMessageResponse is returned for blank input without calling the
// classifier at all.
const EmptyMessageResponse = "I'm here whenever you're ready. Type a message and we can talk. \U0001F60A"

// ChatResponder generates the general-chat reply: persona system prompt
// plus the full conversation history, current message last.
type ChatResponder struct {
	client ChatCompleter
	model  string
	cfg    PromptConfig
}

func NewChatResponder(client ChatCompleter, model string, cfg PromptConfig) *ChatResponder {
	return &ChatResponder{client: client, model: model, cfg: cfg}
}

// Respond issues one generation call and returns the model text verbatim.
// It never fabricates a reply locally; a failed call is the orchestrator's
// problem.
func (r *ChatResponder) Respond(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.Message) == "" {
		return "", ErrEmptyMessage
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: r.cfg.System,
	})
	for _, turn := range req.History {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    completionRole(turn.Role),
			Content: turn.Text,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Message,
	})

	ctx, cancel := context.WithTimeout(ctx, respondTimeout)
	defer cancel()

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       r.model,
		Temperature: r.cfg.Temperature,
		MaxTokens:   r.cfg.MaxTokens,
		Messages:    messages,
	})
	if err != nil {
		return "", fmt.Errorf("generate reply: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("generate reply: %w", ErrNoChoices)
	}
	text := resp.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("generate reply: empty completion text")
	}
	return text, nil
}

// completionRole coerces a history role to a wire role. Anything outside
// the known set is treated as a user turn rather than rejected.
func completionRole(role Role) string {
	switch role {
	case RoleAssistant:
		return openai.ChatMessageRoleAssistant
	case RoleUser:
		return openai.ChatMessageRoleUser
	default:
		return openai.ChatMessageRoleUser
	}
}
