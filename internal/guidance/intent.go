package guidance

import "strings"

// Intent is the classified category of a user message. It drives which
// responder produces the reply.
type Intent string

const (
	// IntentSafety covers messages expressing self-harm, suicide, crisis,
	// or immediate danger. Highest priority when signals overlap.
	IntentSafety Intent = "safety"
	// IntentTherapistHandoff covers a clear desire to talk to a human or
	// professional, or issues beyond a chatbot's scope.
	IntentTherapistHandoff Intent = "therapist_handoff"
	// IntentGeneralChat covers everything else: general conversation,
	// wellness questions, emotional support.
	IntentGeneralChat Intent = "general_chat"
)

// ParseIntent validates a raw label against the three permitted intents.
// Any other value is rejected; the classifier treats that as a
// classification failure rather than trusting the model's contract.
func ParseIntent(s string) (Intent, bool) {
	switch Intent(strings.ToLower(strings.TrimSpace(s))) {
	case IntentSafety:
		return IntentSafety, true
	case IntentTherapistHandoff:
		return IntentTherapistHandoff, true
	case IntentGeneralChat:
		return IntentGeneralChat, true
	}
	return "", false
}
