package booking

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPConfig holds the outbound mail settings. Host empty means SMTP is
// disabled and the LogNotifier should be used instead.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// SMTPNotifier sends the booking email over plain SMTP with AUTH.
type SMTPNotifier struct {
	cfg SMTPConfig
	// send is swappable for tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	if cfg.Port == "" {
		cfg.Port = "587"
	}
	return &SMTPNotifier{cfg: cfg, send: smtp.SendMail}
}

func (n *SMTPNotifier) NotifyBooking(_ context.Context, therapistEmail string, b Booking) error {
	subject := fmt.Sprintf("New HealSpace Booking with %s", b.TherapistName)
	body := strings.Join([]string{
		"Hi!",
		"",
		fmt.Sprintf("This is a confirmation that a HealSpace session has been booked for you with %s.", b.TherapistName),
		"",
		fmt.Sprintf("The user (%s, %s) has requested this session.", b.UserName, b.UserEmail),
		fmt.Sprintf("Meeting link: %s", b.MeetingLink),
		"",
		"We're looking forward to this session!",
		"",
		"- The HealSpace Team",
	}, "\r\n")

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		n.cfg.From, therapistEmail, subject, body)

	addr := n.cfg.Host + ":" + n.cfg.Port
	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}
	if err := n.send(addr, auth, n.cfg.From, []string{therapistEmail}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
