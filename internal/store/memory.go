package store

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("store: not found")
	ErrDuplicateEmail = errors.New("store: email already registered")
)

// Profile is the identity attached to a session after OAuth sign-in.
type Profile struct {
	Email string
	Name  string
}

// MemoryStore holds session transcripts and OAuth state. When no database
// is configured it also holds accounts, journal entries, chat requests,
// and circle join requests. Safe for concurrent use.
type MemoryStore struct {
	mu          sync.RWMutex
	sessions    map[string][]Message
	maxMessages int
	// OAuth state mapping per session (for CSRF protection)
	oauthStateBySession map[string]string
	sessionByOAuthState map[string]string
	profileBySession    map[string]Profile

	accountsByEmail       map[string]*Account
	accountByConsentToken map[string]string // token -> email
	journalByUser         map[string][]JournalEntry
	chatRequests          map[string]*ChatRequest
	circleJoins           map[string]*CircleJoinRequest
}

func NewMemoryStore(maxMessages int) *MemoryStore {
	return &MemoryStore{
		sessions:              make(map[string][]Message),
		maxMessages:           maxMessages,
		oauthStateBySession:   make(map[string]string),
		sessionByOAuthState:   make(map[string]string),
		profileBySession:      make(map[string]Profile),
		accountsByEmail:       make(map[string]*Account),
		accountByConsentToken: make(map[string]string),
		journalByUser:         make(map[string][]JournalEntry),
		chatRequests:          make(map[string]*ChatRequest),
		circleJoins:           make(map[string]*CircleJoinRequest),
	}
}

// --- session transcripts ---

func (m *MemoryStore) Append(sessionID string, msg Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionID] = append(m.sessions[sessionID], msg)
	m.trimLocked(sessionID)
}

func (m *MemoryStore) Get(sessionID string) []Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	msgs := m.sessions[sessionID]
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}

func (m *MemoryStore) trimLocked(sessionID string) {
	if m.maxMessages <= 0 {
		return
	}
	msgs := m.sessions[sessionID]
	if len(msgs) > m.maxMessages {
		m.sessions[sessionID] = msgs[len(msgs)-m.maxMessages:]
	}
}

// --- OAuth helpers ---

func (m *MemoryStore) SetOAuthState(sessionID, state string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.oauthStateBySession[sessionID] = state
	m.sessionByOAuthState[state] = sessionID
}

func (m *MemoryStore) GetOAuthState(sessionID string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.oauthStateBySession[sessionID]
}

func (m *MemoryStore) ClearOAuthState(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.oauthStateBySession[sessionID]; ok {
		delete(m.sessionByOAuthState, st)
		delete(m.oauthStateBySession, sessionID)
	}
}

func (m *MemoryStore) GetSessionByOAuthState(state string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessionByOAuthState[state]
}

func (m *MemoryStore) SetProfile(sessionID string, p Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profileBySession[sessionID] = p
}

func (m *MemoryStore) GetProfile(sessionID string) (Profile, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profileBySession[sessionID]
	return p, ok
}

// --- accounts ---

// CreateAccount registers an account. Email is the natural key.
func (m *MemoryStore) CreateAccount(acc *Account) error {
	key := strings.ToLower(strings.TrimSpace(acc.Email))
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accountsByEmail[key]; ok {
		return ErrDuplicateEmail
	}
	cp := *acc
	m.accountsByEmail[key] = &cp
	if cp.ConsentToken != "" {
		m.accountByConsentToken[cp.ConsentToken] = key
	}
	return nil
}

func (m *MemoryStore) GetAccount(email string) (*Account, error) {
	key := strings.ToLower(strings.TrimSpace(email))
	m.mu.RLock()
	defer m.mu.RUnlock()
	acc, ok := m.accountsByEmail[key]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *acc
	return &cp, nil
}

// ApproveConsent activates the account holding the given consent token.
// The token is single-use.
func (m *MemoryStore) ApproveConsent(token string) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key, ok := m.accountByConsentToken[token]
	if !ok {
		return nil, ErrNotFound
	}
	acc := m.accountsByEmail[key]
	acc.Status = StatusActive
	acc.ConsentToken = ""
	delete(m.accountByConsentToken, token)
	cp := *acc
	return &cp, nil
}

// --- journal entries ---

func (m *MemoryStore) AppendJournalEntry(e JournalEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.journalByUser[e.UserID] = append(m.journalByUser[e.UserID], e)
	return nil
}

func (m *MemoryStore) ListJournalEntries(userID string) ([]JournalEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := m.journalByUser[userID]
	out := make([]JournalEntry, len(entries))
	copy(out, entries)
	return out, nil
}

// --- chat requests ---

func (m *MemoryStore) CreateChatRequest(userID, therapistID string) (*ChatRequest, error) {
	req := &ChatRequest{
		ID:          uuid.NewString(),
		UserID:      userID,
		TherapistID: therapistID,
		Status:      ChatRequestPending,
		CreatedAt:   time.Now(),
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chatRequests[req.ID] = req
	cp := *req
	return &cp, nil
}

func (m *MemoryStore) UpdateChatRequestStatus(id, status string) (*ChatRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.chatRequests[id]
	if !ok {
		return nil, ErrNotFound
	}
	req.Status = status
	cp := *req
	return &cp, nil
}

// --- circle join requests ---

func (m *MemoryStore) CreateCircleJoinRequest(circleID, userID string) (*CircleJoinRequest, error) {
	req := &CircleJoinRequest{
		ID:        uuid.NewString(),
		CircleID:  circleID,
		UserID:    userID,
		Status:    "pending",
		CreatedAt: time.Now(),
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.circleJoins[req.ID] = req
	cp := *req
	return &cp, nil
}
