package types

// ChatTurn mirrors one history turn on the wire.
type ChatTurn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type ChatRequest struct {
	SessionID string     `json:"sessionId,omitempty"`
	Message   string     `json:"message"`
	History   []ChatTurn `json:"history,omitempty"`
}

// ChatResponse carries the chatbot reply. Error holds the diagnostic
// detail when a fallback path was taken; the frontend logs it but never
// renders it to the user.
type ChatResponse struct {
	SessionID string `json:"sessionId,omitempty"`
	Response  string `json:"response"`
	Error     string `json:"error,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type SentimentRequest struct {
	Entry string `json:"entry"`
}

type SentimentResponse struct {
	SentimentScore float64 `json:"sentimentScore"`
	SentimentLabel string  `json:"sentimentLabel"`
}

type JournalEntryRequest struct {
	UserID string `json:"userId"`
	Text   string `json:"text"`
}

type BookingRequest struct {
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
}

type ChatRequestCreate struct {
	UserID      string `json:"userId"`
	TherapistID string `json:"therapistId"`
}

type StatusUpdate struct {
	Status string `json:"status"`
}

type JoinCircleRequest struct {
	UserID string `json:"userId"`
}

type SignupRequest struct {
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	Age         int    `json:"age"`
	ParentEmail string `json:"parentEmail,omitempty"`
}

type ConsentRequest struct {
	Token string `json:"token"`
}
