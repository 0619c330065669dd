package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"healspace-backend/internal/db"
)

// DatabaseStore persists accounts, journal entries, chat requests, circle
// join requests, and bookings in PostgreSQL.
type DatabaseStore struct {
	db *db.DB
}

func NewDatabaseStore(database *db.DB) *DatabaseStore {
	return &DatabaseStore{db: database}
}

// --- accounts ---

func (ds *DatabaseStore) CreateAccount(acc *Account) error {
	if acc.Email == "" || acc.DisplayName == "" {
		return fmt.Errorf("email and display_name are required")
	}
	query := `
		INSERT INTO accounts (id, display_name, email, role, age, parent_email, status, consent_token, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	`
	_, err := ds.db.Exec(query,
		acc.ID, acc.DisplayName, acc.Email, acc.Role, acc.Age,
		nullable(acc.ParentEmail), acc.Status, nullable(acc.ConsentToken),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (ds *DatabaseStore) GetAccount(email string) (*Account, error) {
	query := `
		SELECT id, display_name, email, role, age, COALESCE(parent_email, ''), status, COALESCE(consent_token, ''), created_at
		FROM accounts
		WHERE lower(email) = lower($1)
	`
	var acc Account
	err := ds.db.QueryRow(query, email).Scan(
		&acc.ID, &acc.DisplayName, &acc.Email, &acc.Role, &acc.Age,
		&acc.ParentEmail, &acc.Status, &acc.ConsentToken, &acc.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &acc, nil
}

func (ds *DatabaseStore) ApproveConsent(token string) (*Account, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	query := `
		UPDATE accounts
		SET status = $1, consent_token = NULL
		WHERE consent_token = $2
		RETURNING id, display_name, email, role, age, COALESCE(parent_email, ''), status, created_at
	`
	var acc Account
	err := ds.db.QueryRow(query, StatusActive, token).Scan(
		&acc.ID, &acc.DisplayName, &acc.Email, &acc.Role, &acc.Age,
		&acc.ParentEmail, &acc.Status, &acc.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to approve consent: %w", err)
	}
	return &acc, nil
}

// --- journal entries ---

func (ds *DatabaseStore) AppendJournalEntry(e JournalEntry) error {
	query := `
		INSERT INTO journal_entries (id, user_id, text, sentiment_score, sentiment_label, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := ds.db.Exec(query, e.ID, e.UserID, e.Text, e.SentimentScore, e.SentimentLabel, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save journal entry: %w", err)
	}
	return nil
}

func (ds *DatabaseStore) ListJournalEntries(userID string) ([]JournalEntry, error) {
	query := `
		SELECT id, user_id, text, sentiment_score, sentiment_label, created_at
		FROM journal_entries
		WHERE user_id = $1
		ORDER BY created_at ASC
	`
	rows, err := ds.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}
	defer rows.Close()

	var out []JournalEntry
	for rows.Next() {
		var e JournalEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Text, &e.SentimentScore, &e.SentimentLabel, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// --- chat requests ---

func (ds *DatabaseStore) CreateChatRequest(userID, therapistID string) (*ChatRequest, error) {
	if userID == "" || therapistID == "" {
		return nil, fmt.Errorf("user_id and therapist_id are required")
	}
	req := &ChatRequest{
		ID:          uuid.NewString(),
		UserID:      userID,
		TherapistID: therapistID,
		Status:      ChatRequestPending,
		CreatedAt:   time.Now(),
	}
	query := `
		INSERT INTO chat_requests (id, user_id, therapist_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := ds.db.Exec(query, req.ID, req.UserID, req.TherapistID, req.Status, req.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to create chat request: %w", err)
	}
	return req, nil
}

func (ds *DatabaseStore) UpdateChatRequestStatus(id, status string) (*ChatRequest, error) {
	query := `
		UPDATE chat_requests
		SET status = $1
		WHERE id = $2
		RETURNING id, user_id, therapist_id, status, created_at
	`
	var req ChatRequest
	err := ds.db.QueryRow(query, status, id).Scan(
		&req.ID, &req.UserID, &req.TherapistID, &req.Status, &req.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update chat request: %w", err)
	}
	return &req, nil
}

// --- circle join requests ---

func (ds *DatabaseStore) CreateCircleJoinRequest(circleID, userID string) (*CircleJoinRequest, error) {
	req := &CircleJoinRequest{
		ID:        uuid.NewString(),
		CircleID:  circleID,
		UserID:    userID,
		Status:    "pending",
		CreatedAt: time.Now(),
	}
	query := `
		INSERT INTO circle_join_requests (id, circle_id, user_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := ds.db.Exec(query, req.ID, req.CircleID, req.UserID, req.Status, req.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to create circle join request: %w", err)
	}
	return req, nil
}

// --- bookings ---

// SaveBooking records a completed booking for auditing.
func (ds *DatabaseStore) SaveBooking(id, therapistID, userName, userEmail, meetingLink string, createdAt time.Time) error {
	query := `
		INSERT INTO bookings (id, therapist_id, user_name, user_email, meeting_link, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := ds.db.Exec(query, id, therapistID, userName, userEmail, meetingLink, createdAt); err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// isUniqueViolation reports whether err is a postgres unique_violation
// (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
