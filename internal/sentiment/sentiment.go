// Package sentiment scores journal entries with a single JSON-constrained
// completion call. Scores are clamped to [-1, 1] regardless of what the
// model claims.
package sentiment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"healspace-backend/internal/guidance"
)

const analyzeTimeout = 20 * time.Second

var ErrEmptyEntry = errors.New("sentiment: empty journal entry")

// Result is the sentiment of one journal entry. Score ranges from -1
// (negative) to 1 (positive).
type Result struct {
	Score float64 `json:"sentimentScore"`
	Label string  `json:"sentimentLabel"`
}

const systemPrompt = `Analyze the sentiment of the journal entry the user provides. Respond ONLY with a JSON object of the form {"sentimentScore": <number between -1 and 1>, "sentimentLabel": "<positive|negative|neutral or similar short label>"}. The sentimentScore must be a number between -1 and 1. No markdown, no explanation.`

// Analyzer runs sentiment analysis against an injected completion client.
type Analyzer struct {
	client guidance.ChatCompleter
	model  string
}

func NewAnalyzer(client guidance.ChatCompleter, model string) *Analyzer {
	return &Analyzer{client: client, model: model}
}

// Analyze scores a single journal entry.
func (a *Analyzer) Analyze(ctx context.Context, entry string) (Result, error) {
	if strings.TrimSpace(entry) == "" {
		return Result{}, ErrEmptyEntry
	}

	ctx, cancel := context.WithTimeout(ctx, analyzeTimeout)
	defer cancel()

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     a.model,
		MaxTokens: 64,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: entry},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("sentiment: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Result{}, fmt.Errorf("sentiment: no choices returned")
	}

	var out Result
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &out); err != nil {
		return Result{}, fmt.Errorf("sentiment: decode result JSON: %w", err)
	}
	out.Score = clamp(out.Score)
	if out.Label == "" {
		out.Label = labelFor(out.Score)
	}
	return out, nil
}

func clamp(score float64) float64 {
	if score > 1 {
		return 1
	}
	if score < -1 {
		return -1
	}
	return score
}

func labelFor(score float64) string {
	switch {
	case score > 0.2:
		return "positive"
	case score < -0.2:
		return "negative"
	default:
		return "neutral"
	}
}
