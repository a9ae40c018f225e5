package email

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/medibook/booking-api/internal/model"
	"github.com/medibook/booking-api/pkg/circuitbreaker"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type smtpService struct {
	dialer  *gomail.Dialer
	from    string
	breaker *circuitbreaker.CircuitBreaker
}

// NewSMTPService creates an email service backed by plain SMTP. Works
// against Mailhog in development without authentication. A circuit
// breaker keeps a dead relay from stalling every notification.
func NewSMTPService(cfg SMTPConfig) Service {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &smtpService{
		dialer: dialer,
		from:   cfg.From,
		breaker: circuitbreaker.New(circuitbreaker.Settings{
			Name:        "smtp",
			MaxFailures: 5,
			Timeout:     time.Minute,
		}),
	}
}

func (s *smtpService) SendWelcome(ctx context.Context, to, name string) error {
	body := fmt.Sprintf(`
		<h2>Hello %s,</h2>
		<p>Welcome to MediBook! You can now search practitioners and book appointments online.</p>
	`, name)
	return s.send(ctx, to, "MediBook - Welcome", body)
}

func (s *smtpService) SendAppointmentConfirmation(ctx context.Context, to, patientName, practitionerName string, date model.Date, start model.TimeOfDay, appointmentType model.AppointmentType) error {
	body := fmt.Sprintf(`
		<h2>Hello %s,</h2>
		<p>Your appointment has been confirmed.</p>
		<ul>
			<li>Practitioner: %s</li>
			<li>Date: %s</li>
			<li>Time: %s</li>
			<li>Type: %s</li>
		</ul>
	`, patientName, practitionerName, date, start, appointmentType)
	return s.send(ctx, to, "MediBook - Appointment confirmed", body)
}

func (s *smtpService) SendAppointmentCancellation(ctx context.Context, to, patientName, practitionerName string, date model.Date, start model.TimeOfDay) error {
	body := fmt.Sprintf(`
		<h2>Hello %s,</h2>
		<p>Your appointment with %s on %s at %s has been cancelled.</p>
	`, patientName, practitionerName, date, start)
	return s.send(ctx, to, "MediBook - Appointment cancelled", body)
}

func (s *smtpService) send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", wrapLayout(htmlBody))

	err := s.breaker.Execute(func() error {
		return s.dialer.DialAndSend(m)
	})
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

func wrapLayout(content string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		%s
		<p style="text-align: center; color: #666; font-size: 12px; margin-top: 20px;">
			MediBook - HealthTech Solutions
		</p>
	</div>
</body>
</html>`, content)
}
