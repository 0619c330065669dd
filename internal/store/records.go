package store

import "time"

// Message is one turn of a chat session transcript.
type Message struct {
	Role    string
	Content string
}

// Account statuses. Pending accounts can browse but the frontend gates
// booking and chat-request actions on Active.
const (
	StatusActive          = "active"
	StatusPendingConsent  = "pending_consent"
	StatusPendingApproval = "pending_approval"
)

// Account is a HealSpace user or therapist account. Under-18 signups hold
// a consent token until a parent approves.
type Account struct {
	ID           string    `json:"id"`
	DisplayName  string    `json:"displayName"`
	Email        string    `json:"email"`
	Role         string    `json:"role"` // "user" or "therapist"
	Age          int       `json:"age"`
	ParentEmail  string    `json:"parentEmail,omitempty"`
	Status       string    `json:"status"`
	ConsentToken string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// JournalEntry is a stored journal entry with its sentiment.
type JournalEntry struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	Text           string    `json:"text"`
	SentimentScore float64   `json:"sentimentScore"`
	SentimentLabel string    `json:"sentimentLabel"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Chat request statuses.
const (
	ChatRequestPending  = "pending"
	ChatRequestAccepted = "accepted"
	ChatRequestDeclined = "declined"
)

// ChatRequest is a user's request to open a chat with a therapist.
type ChatRequest struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	TherapistID string    `json:"therapistId"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CircleJoinRequest is a pending-approval request to join a support circle.
type CircleJoinRequest struct {
	ID        string    `json:"id"`
	CircleID  string    `json:"circleId"`
	UserID    string    `json:"userId"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}
