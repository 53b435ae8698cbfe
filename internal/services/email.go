package services

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/pkg"
)

// EmailService handles email operations
type EmailService interface {
	SendVerificationEmail(ctx context.Context, email, name, code string) error
	SendShareNotificationEmail(ctx context.Context, email, subject, message string) error
}

// SMTPEmailService implements email service using SMTP
type SMTPEmailService struct {
	host      string
	port      string
	username  string
	password  string
	fromEmail string
	fromName  string
	logger    *pkg.Logger
}

// EmailConfig represents email configuration
type EmailConfig struct {
	Host      string `json:"host"`
	Port      string `json:"port"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	FromEmail string `json:"from_email"`
	FromName  string `json:"from_name"`
}

// NewSMTPEmailService creates a new SMTP email service
func NewSMTPEmailService(config *EmailConfig, logger *pkg.Logger) EmailService {
	return &SMTPEmailService{
		host:      config.Host,
		port:      config.Port,
		username:  config.Username,
		password:  config.Password,
		fromEmail: config.FromEmail,
		fromName:  config.FromName,
		logger:    logger.WithPrefix("email"),
	}
}

// SendVerificationEmail sends an email verification code
func (s *SMTPEmailService) SendVerificationEmail(ctx context.Context, email, name, code string) error {
	subject := "Verify your email address"
	body := fmt.Sprintf("Hello %s,\r\n\r\nYour verification code is: %s\r\n\r\nThe code expires shortly, so use it soon.\r\n", name, code)
	return s.send(email, subject, body)
}

// SendShareNotificationEmail sends a sharing activity notice
func (s *SMTPEmailService) SendShareNotificationEmail(ctx context.Context, email, subject, message string) error {
	return s.send(email, subject, message+"\r\n")
}

func (s *SMTPEmailService) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n%s",
		s.fromName, s.fromEmail, to, subject, body)

	addr := s.host + ":" + s.port
	auth := smtp.PlainAuth("", s.username, s.password, s.host)

	if err := smtp.SendMail(addr, auth, s.fromEmail, []string{to}, []byte(msg)); err != nil {
		s.logger.Error("failed to send email", map[string]interface{}{
			"to":    to,
			"error": err.Error(),
		})
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Debug("email sent", map[string]interface{}{
		"to": to,
	})
	return nil
}

// NopEmailService drops every email. Used in development and tests.
type NopEmailService struct{}

// SendVerificationEmail does nothing
func (NopEmailService) SendVerificationEmail(ctx context.Context, email, name, code string) error {
	return nil
}

// SendShareNotificationEmail does nothing
func (NopEmailService) SendShareNotificationEmail(ctx context.Context, email, subject, message string) error {
	return nil
}
