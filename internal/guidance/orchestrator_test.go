package guidance

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// fakeCompleter scripts one reply or error per call, in order, and records
// every request it receives.
type fakeCompleter struct {
	replies  []string
	errs     []error
	requests []openai.ChatCompletionRequest
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	i := len(f.requests)
	f.requests = append(f.requests, req)
	if i < len(f.errs) && f.errs[i] != nil {
		return openai.ChatCompletionResponse{}, f.errs[i]
	}
	var reply string
	if i < len(f.replies) {
		reply = f.replies[i]
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: reply}},
		},
	}, nil
}

func newTestOrchestrator(fake ChatCompleter) *Orchestrator {
	return NewOrchestrator(fake, "test-model", DefaultPromptSpec())
}

func TestGuideSafetyIntent(t *testing.T) {
	fake := &fakeCompleter{replies: []string{`{"intent": "safety"}`}}
	o := newTestOrchestrator(fake)

	res := o.Guide(context.Background(), Request{Message: "I want to kill myself"})

	if res.Response != SafetyResponse {
		t.Fatalf("expected the exact static safety text, got %q", res.Response)
	}
	if res.Error != "" {
		t.Fatalf("expected no error, got %q", res.Error)
	}
	// The safety reply must be static: one classification call, zero
	// generation calls.
	if len(fake.requests) != 1 {
		t.Fatalf("expected exactly 1 completion call, got %d", len(fake.requests))
	}
	if !strings.Contains(res.Response, "988") {
		t.Fatalf("safety text must include the 988 lifeline")
	}
	if !strings.Contains(res.Response, "741741") {
		t.Fatalf("safety text must include the Crisis Text Line number")
	}
	if !strings.Contains(res.Response, "911") {
		t.Fatalf("safety text must include the emergency number")
	}
}

func TestGuideSafetyIgnoresHistory(t *testing.T) {
	fake := &fakeCompleter{replies: []string{`{"intent": "safety"}`}}
	o := newTestOrchestrator(fake)

	res := o.Guide(context.Background(), Request{
		Message: "I can't do this anymore",
		History: []Turn{
			{Role: RoleUser, Text: "hi"},
			{Role: RoleAssistant, Text: "hello!"},
		},
	})

	if res.Response != SafetyResponse {
		t.Fatalf("history must not alter the safety reply, got %q", res.Response)
	}
	if len(fake.requests) != 1 {
		t.Fatalf("expected 1 call, got %d", len(fake.requests))
	}
}

func TestGuideTherapistHandoff(t *testing.T) {
	fake := &fakeCompleter{replies: []string{`{"intent": "therapist_handoff"}`}}
	o := newTestOrchestrator(fake)

	res := o.Guide(context.Background(), Request{Message: "I think I need to see a real therapist"})

	if res.Response != TherapistHandoffResponse {
		t.Fatalf("expected the static handoff text, got %q", res.Response)
	}
	if !strings.Contains(res.Response, "/therapists") {
		t.Fatalf("handoff text must point at the therapist marketplace")
	}
	if res.Error != "" {
		t.Fatalf("expected no error, got %q", res.Error)
	}
	if len(fake.requests) != 1 {
		t.Fatalf("expected 1 call, got %d", len(fake.requests))
	}
}

func TestGuideGeneralChat(t *testing.T) {
	fake := &fakeCompleter{replies: []string{
		`{"intent": "general_chat"}`,
		"Main theek hoon, thanks for asking! \U0001F60A",
	}}
	o := newTestOrchestrator(fake)

	res := o.Guide(context.Background(), Request{Message: "How was your day"})

	if res.Response != "Main theek hoon, thanks for asking! \U0001F60A" {
		t.Fatalf("expected the model text verbatim, got %q", res.Response)
	}
	if res.Error != "" {
		t.Fatalf("expected no error, got %q", res.Error)
	}
	if len(fake.requests) != 2 {
		t.Fatalf("expected classification + generation, got %d calls", len(fake.requests))
	}

	// With empty history, the generation call carries the persona system
	// prompt plus exactly one user turn holding the message.
	gen := fake.requests[1]
	if len(gen.Messages) != 2 {
		t.Fatalf("expected 2 messages in generation call, got %d", len(gen.Messages))
	}
	if gen.Messages[0].Role != openai.ChatMessageRoleSystem {
		t.Fatalf("first generation message must be the system prompt")
	}
	if gen.Messages[1].Role != openai.ChatMessageRoleUser || gen.Messages[1].Content != "How was your day" {
		t.Fatalf("last generation message must be the current user message, got %+v", gen.Messages[1])
	}
}

func TestGuideHistoryOrderPreserved(t *testing.T) {
	fake := &fakeCompleter{replies: []string{
		`{"intent": "general_chat"}`,
		"reply",
	}}
	o := newTestOrchestrator(fake)

	history := []Turn{
		{Role: RoleUser, Text: "first"},
		{Role: RoleAssistant, Text: "second"},
		{Role: RoleUser, Text: "third"},
	}
	o.Guide(context.Background(), Request{Message: "fourth", History: history})

	gen := fake.requests[1]
	got := gen.Messages[1:] // skip system prompt
	want := []struct {
		role, text string
	}{
		{openai.ChatMessageRoleUser, "first"},
		{openai.ChatMessageRoleAssistant, "second"},
		{openai.ChatMessageRoleUser, "third"},
		{openai.ChatMessageRoleUser, "fourth"},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d turns, got %d", len(want), len(got))
	}
	for i, w := range want {
		if got[i].Role != w.role || got[i].Content != w.text {
			t.Fatalf("turn %d: expected %s %q, got %s %q", i, w.role, w.text, got[i].Role, got[i].Content)
		}
	}
}

func TestGuideClassificationFailure(t *testing.T) {
	fake := &fakeCompleter{errs: []error{errors.New("connection refused")}}
	o := newTestOrchestrator(fake)

	res := o.Guide(context.Background(), Request{Message: "hello"})

	if res.Response != FallbackResponse {
		t.Fatalf("expected the fallback text, got %q", res.Response)
	}
	if res.Error == "" || !strings.Contains(res.Error, "connection refused") {
		t.Fatalf("expected the failure detail in Error, got %q", res.Error)
	}
	if len(fake.requests) != 1 {
		t.Fatalf("generation must be skipped after a classifier failure, got %d calls", len(fake.requests))
	}
}

func TestGuideGenerationFailure(t *testing.T) {
	fake := &fakeCompleter{
		replies: []string{`{"intent": "general_chat"}`},
		errs:    []error{nil, errors.New("upstream timeout")},
	}
	o := newTestOrchestrator(fake)

	res := o.Guide(context.Background(), Request{Message: "hello"})

	if res.Response != FallbackResponse {
		t.Fatalf("expected the fallback text, got %q", res.Response)
	}
	if !strings.Contains(res.Error, "upstream timeout") {
		t.Fatalf("expected the failure detail in Error, got %q", res.Error)
	}
}

func TestGuideUnknownLabelFallsBack(t *testing.T) {
	fake := &fakeCompleter{replies: []string{`{"intent": "poetry"}`}}
	o := newTestOrchestrator(fake)

	res := o.Guide(context.Background(), Request{Message: "hello"})

	if res.Response != FallbackResponse {
		t.Fatalf("an out-of-contract label is a classification failure, got %q", res.Response)
	}
	if res.Error == "" {
		t.Fatalf("expected a populated error")
	}
	if len(fake.requests) != 1 {
		t.Fatalf("expected no generation call, got %d calls", len(fake.requests))
	}
}

func TestGuideEmptyMessage(t *testing.T) {
	for _, msg := range []string{"", "   ", "\n\t"} {
		fake := &fakeCompleter{}
		o := newTestOrchestrator(fake)

		res := o.Guide(context.Background(), Request{Message: msg})

		if res.Response != EmptyMessageResponse {
			t.Fatalf("message %q: expected the prompt-to-type reply, got %q", msg, res.Response)
		}
		if res.Error != "" {
			t.Fatalf("blank input is not a failure, got error %q", res.Error)
		}
		if len(fake.requests) != 0 {
			t.Fatalf("blank input must not reach the classifier, got %d calls", len(fake.requests))
		}
	}
}

// hangingCompleter answers scripted replies until call hangAt, where it
// blocks until the call's context expires, like an upstream that never
// responds.
type hangingCompleter struct {
	replies []string
	hangAt  int
	calls   int
}

func (h *hangingCompleter) CreateChatCompletion(ctx context.Context, _ openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	i := h.calls
	h.calls++
	if i == h.hangAt {
		<-ctx.Done()
		return openai.ChatCompletionResponse{}, ctx.Err()
	}
	var reply string
	if i < len(h.replies) {
		reply = h.replies[i]
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: reply}},
		},
	}, nil
}

func TestGuideClassificationTimeoutFallsBack(t *testing.T) {
	fake := &hangingCompleter{hangAt: 0}
	o := newTestOrchestrator(fake)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	res := o.Guide(ctx, Request{Message: "hello"})

	if res.Response != FallbackResponse {
		t.Fatalf("expected fallback on hung classification, got %q", res.Response)
	}
	if res.Error == "" {
		t.Fatal("expected the timeout detail in the error field")
	}
	if !strings.Contains(res.Error, "context") {
		t.Fatalf("error should carry the context expiry, got %q", res.Error)
	}
}

func TestGuideGenerationTimeoutFallsBack(t *testing.T) {
	fake := &hangingCompleter{replies: []string{`{"intent": "general_chat"}`}, hangAt: 1}
	o := newTestOrchestrator(fake)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	res := o.Guide(ctx, Request{Message: "hello"})

	if res.Response != FallbackResponse {
		t.Fatalf("expected fallback on hung generation, got %q", res.Response)
	}
	if res.Error == "" {
		t.Fatal("expected the timeout detail in the error field")
	}
	if fake.calls != 2 {
		t.Fatalf("expected 2 completion calls, got %d", fake.calls)
	}
}

func TestGuideResponseNeverEmpty(t *testing.T) {
	cases := []struct {
		name string
		fake *fakeCompleter
		req  Request
	}{
		{"safety", &fakeCompleter{replies: []string{`{"intent": "safety"}`}}, Request{Message: "x"}},
		{"handoff", &fakeCompleter{replies: []string{`{"intent": "therapist_handoff"}`}}, Request{Message: "x"}},
		{"chat", &fakeCompleter{replies: []string{`{"intent": "general_chat"}`, "ok"}}, Request{Message: "x"}},
		{"classifier error", &fakeCompleter{errs: []error{errors.New("boom")}}, Request{Message: "x"}},
		{"garbage label", &fakeCompleter{replies: []string{"not json at all"}}, Request{Message: "x"}},
		{"empty input", &fakeCompleter{}, Request{Message: ""}},
	}
	for _, tc := range cases {
		res := newTestOrchestrator(tc.fake).Guide(context.Background(), tc.req)
		if strings.TrimSpace(res.Response) == "" {
			t.Fatalf("%s: Response must never be empty", tc.name)
		}
		// Error is populated if and only if a fallback path was taken.
		if (res.Response == FallbackResponse) != (res.Error != "") {
			t.Fatalf("%s: error field out of step with fallback: response=%q error=%q", tc.name, res.Response, res.Error)
		}
	}
}
