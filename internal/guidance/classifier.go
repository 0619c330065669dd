package guidance

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const classifyTimeout = 10 * time.Second

// Classifier routes a user message to one of the three intents with a
// single completion call constrained to JSON output. It never defaults on
// failure; the orchestrator decides the fallback.
type Classifier struct {
	client ChatCompleter
	model  string
	cfg    PromptConfig
}

func NewClassifier(client ChatCompleter, model string, cfg PromptConfig) *Classifier {
	return &Classifier{client: client, model: model, cfg: cfg}
}

// Classify issues one classification call and validates the returned label
// against the three permitted intents. Any network error, empty response,
// or out-of-contract label surfaces as an error.
func (c *Classifier) Classify(ctx context.Context, message string) (Intent, error) {
	if message == "" {
		return "", ErrEmptyMessage
	}

	ctx, cancel := context.WithTimeout(ctx, classifyTimeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: c.cfg.System},
			{Role: openai.ChatMessageRoleUser, Content: message},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", fmt.Errorf("classify: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("classify: %w", ErrNoChoices)
	}

	raw := resp.Choices[0].Message.Content
	label, err := parseIntentJSON(raw)
	if err != nil {
		return "", err
	}
	intent, ok := ParseIntent(label)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownLabel, label)
	}
	return intent, nil
}

type intentEnvelope struct {
	Intent string `json:"intent"`
}

// parseIntentJSON decodes the model output. Models occasionally wrap JSON
// in prose or code fences, so a failed decode retries on the outermost
// brace-delimited slice before giving up.
func parseIntentJSON(raw string) (string, error) {
	var env intentEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err == nil {
		return env.Intent, nil
	}
	first := -1
	last := -1
	for i, r := range raw {
		if r == '{' {
			first = i
			break
		}
	}
	for i := len(raw) - 1; i >= 0; i-- {
		if raw[i] == '}' {
			last = i
			break
		}
	}
	if first >= 0 && last > first {
		if err := json.Unmarshal([]byte(raw[first:last+1]), &env); err == nil {
			return env.Intent, nil
		}
	}
	return "", fmt.Errorf("classify: decode intent JSON (raw content: %.120s): %w", raw, ErrUnknownLabel)
}
