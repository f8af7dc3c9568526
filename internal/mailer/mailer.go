package mailer

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/wneessen/go-mail"
)

// Mailer delivers transactional email over SMTP. When no credentials are
// configured it degrades to logging the message, which is how development
// environments run.
type Mailer struct {
	host string
	port int
	user string
	pass string
	from string
}

// New builds a Mailer. An invalid port falls back to 587.
func New(host, port, user, pass, from string) *Mailer {
	p, err := strconv.Atoi(port)
	if err != nil || p <= 0 {
		p = 587
	}
	return &Mailer{host: host, port: p, user: user, pass: pass, from: from}
}

func (m *Mailer) configured() bool {
	return m.user != "" && m.pass != ""
}

// SendOTP delivers the verification-code email.
func (m *Mailer) SendOTP(ctx context.Context, email, name, code string) error {
	if !m.configured() {
		log.Printf("OTP email (dev mode): to=%s code=%s expires_in=10m", email, code)
		return nil
	}

	html, err := renderOTPEmail(name, code)
	if err != nil {
		return fmt.Errorf("failed to render OTP email: %w", err)
	}
	text := fmt.Sprintf(
		"Hello %s!\n\nYour focusaint verification code is: %s\n\nThis code will expire in 10 minutes.\n\nIf you didn't request this code, please ignore this email.",
		displayName(name), code,
	)

	return m.send(ctx, email, "Account verification code", html, text)
}

// SendReminder delivers the daily keep-your-streak email.
func (m *Mailer) SendReminder(ctx context.Context, email, name string, currentStreak int) error {
	if !m.configured() {
		log.Printf("Reminder email (dev mode): to=%s streak=%d", email, currentStreak)
		return nil
	}

	html, err := renderReminderEmail(name, currentStreak)
	if err != nil {
		return fmt.Errorf("failed to render reminder email: %w", err)
	}
	text := fmt.Sprintf(
		"Hello %s!\n\nYou haven't logged a focus session today. A quick session keeps your %d-day streak alive.",
		displayName(name), currentStreak,
	)

	return m.send(ctx, email, "Don't lose your streak", html, text)
}

func (m *Mailer) send(ctx context.Context, to, subject, html, text string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid to address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, text)
	msg.AddAlternativeString(mail.TypeTextHTML, html)

	client, err := mail.NewClient(m.host,
		mail.WithPort(m.port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.user),
		mail.WithPassword(m.pass),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func displayName(name string) string {
	if name == "" {
		return "there"
	}
	return name
}
