// Package booking creates therapy-session bookings: it issues a unique
// meeting link and notifies the therapist. Persistence is left to the
// caller so the service works with or without a database.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"healspace-backend/internal/therapist"
)

const defaultMeetingBaseURL = "https://meet.healspace.app"

var (
	ErrUnknownTherapist = errors.New("booking: unknown therapist")
	ErrMissingFields    = errors.New("booking: user name and email are required")
)

// Booking is one confirmed session request.
type Booking struct {
	ID            string    `json:"id"`
	TherapistID   string    `json:"therapistId"`
	TherapistName string    `json:"therapistName"`
	UserName      string    `json:"userName"`
	UserEmail     string    `json:"userEmail"`
	MeetingLink   string    `json:"meetingLink"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Notifier delivers the booking notification to the therapist.
type Notifier interface {
	NotifyBooking(ctx context.Context, therapistEmail string, b Booking) error
}

type Service struct {
	notifier Notifier
	baseURL  string
	now      func() time.Time
}

func NewService(notifier Notifier, meetingBaseURL string) *Service {
	if meetingBaseURL == "" {
		meetingBaseURL = defaultMeetingBaseURL
	}
	return &Service{
		notifier: notifier,
		baseURL:  strings.TrimRight(meetingBaseURL, "/"),
		now:      time.Now,
	}
}

// Book validates the request, mints a unique meeting link, and notifies
// the therapist. A notification failure fails the booking; the caller can
// retry.
func (s *Service) Book(ctx context.Context, therapistID, userName, userEmail string) (Booking, error) {
	th, ok := therapist.ByID(therapistID)
	if !ok {
		return Booking{}, ErrUnknownTherapist
	}
	if strings.TrimSpace(userName) == "" || strings.TrimSpace(userEmail) == "" {
		return Booking{}, ErrMissingFields
	}

	b := Booking{
		ID:            uuid.NewString(),
		TherapistID:   th.ID,
		TherapistName: th.Name,
		UserName:      userName,
		UserEmail:     userEmail,
		MeetingLink:   fmt.Sprintf("%s/%s", s.baseURL, uuid.NewString()),
		CreatedAt:     s.now(),
	}

	if err := s.notifier.NotifyBooking(ctx, th.Email, b); err != nil {
		return Booking{}, fmt.Errorf("booking: notify therapist: %w", err)
	}
	return b, nil
}

// LogNotifier writes the booking email to the process log instead of
// sending it. Default when SMTP is not configured.
type LogNotifier struct{}

func (LogNotifier) NotifyBooking(_ context.Context, therapistEmail string, b Booking) error {
	log.Println("--- NEW THERAPY SESSION BOOKING ---")
	log.Println("To:", therapistEmail)
	log.Println("Subject: New Therapy Session Booking")
	log.Printf("  User Name: %s", b.UserName)
	log.Printf("  User Email: %s", b.UserEmail)
	log.Printf("  Therapist: %s", b.TherapistName)
	log.Printf("  Meeting Link: %s", b.MeetingLink)
	log.Println("--- END OF BOOKING EMAIL ---")
	return nil
}
