package email

import (
	"fmt"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/pkg/logger"
)

// EmailService sends transactional mail to patients. Sends are
// best-effort; callers log failures and carry on.
type EmailService interface {
	SendAppointmentConfirmation(to string, apt *model.Appointment, bill *model.Bill) error
	SendPaymentReceipt(to string, bill *model.Bill) error
}

type Config struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type emailService struct {
	dialer *gomail.Dialer
	from   string
	logger *logger.Logger
}

func NewEmailService(cfg Config, logger *logger.Logger) EmailService {
	return &emailService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		logger: logger,
	}
}

func (s *emailService) SendAppointmentConfirmation(to string, apt *model.Appointment, bill *model.Bill) error {
	subject := fmt.Sprintf("Appointment confirmed - %s", apt.Code)
	body := fmt.Sprintf(`
		<h2>Your appointment is confirmed</h2>
		<p>Reference: <strong>%s</strong></p>
		<p>Department: %s</p>
		<p>Date: %s</p>
		<p>Consultation fee (incl. tax): %.2f</p>
		<p>Bill reference: %s</p>
	`, apt.Code, apt.Department, apt.StartTime.Format(time.RFC1123), bill.TotalAmount, bill.Code)
	return s.send(to, subject, body)
}

func (s *emailService) SendPaymentReceipt(to string, bill *model.Bill) error {
	subject := fmt.Sprintf("Payment receipt - %s", bill.Code)
	body := fmt.Sprintf(`
		<h2>Payment received</h2>
		<p>Bill reference: <strong>%s</strong></p>
		<p>Subtotal: %.2f</p>
		<p>Tax: %.2f</p>
		<p>Discount: %.2f</p>
		<p>Total paid: <strong>%.2f</strong></p>
	`, bill.Code, bill.Subtotal, bill.Tax, bill.Discount, bill.TotalAmount)
	return s.send(to, subject, body)
}

func (s *emailService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// NoopService satisfies EmailService without an SMTP server. Used in
// tests and local development.
type NoopService struct{}

func (NoopService) SendAppointmentConfirmation(string, *model.Appointment, *model.Bill) error {
	return nil
}

func (NoopService) SendPaymentReceipt(string, *model.Bill) error { return nil }
