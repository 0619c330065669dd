package guidance

import (
	"context"
	"log"
	"strings"
)

// Orchestrator sequences classification and response generation into one
// call-response unit. Guide is the only entry point the HTTP layer uses.
type Orchestrator struct {
	classifier *Classifier
	responder  *ChatResponder
}

// NewOrchestrator wires the classifier and general-chat responder against
// the same completion client. The client is injected so tests can script
// model behavior without network access.
func NewOrchestrator(client ChatCompleter, model string, spec PromptSpec) *Orchestrator {
	return &Orchestrator{
		classifier: NewClassifier(client, model, spec.Classifier),
		responder:  NewChatResponder(client, model, spec.Persona),
	}
}

// Guide runs message -> intent -> responder and swallows every failure
// into a user-safe result. It never panics and never returns an error;
// Result.Response is always non-empty.
func (o *Orchestrator) Guide(ctx context.Context, req Request) Result {
	if strings.TrimSpace(req.Message) == "" {
		// Blank input short-circuits before any model call.
		return Result{Response: EmptyMessageResponse}
	}

	intent, err := o.classifier.Classify(ctx, req.Message)
	if err != nil {
		log.Printf("[guidance] intent classification failed: %v", err)
		return Result{Response: FallbackResponse, Error: err.Error()}
	}

	switch intent {
	case IntentSafety:
		return Result{Response: SafetyResponse}
	case IntentTherapistHandoff:
		return Result{Response: TherapistHandoffResponse}
	case IntentGeneralChat:
		text, err := o.responder.Respond(ctx, req)
		if err != nil {
			log.Printf("[guidance] reply generation failed: %v", err)
			return Result{Response: FallbackResponse, Error: err.Error()}
		}
		return Result{Response: text}
	default:
		// Classify validates its output, so this branch should be
		// unreachable; keep it safe anyway.
		return Result{Response: RephraseResponse}
	}
}
