package services

import (
	"fmt"
	"html"

	"gopkg.in/gomail.v2"
)

type EmailService interface {
	SendWelcomeEmail(email, name string) error
	SendDueReminderEmail(email, taskTitle, due string) error
}

type emailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) EmailService {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return &emailService{
		dialer: dialer,
		from:   fromEmail,
	}
}

func (s *emailService) SendWelcomeEmail(email, name string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Welcome to TaskMaster!")

	body := fmt.Sprintf(`
		<h2>Welcome to TaskMaster, %s!</h2>
		<p>Your account has been created. You can start adding tasks right away.</p>
		<p>Best regards,<br>The TaskMaster Team</p>
	`, html.EscapeString(name))

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}
	return nil
}

func (s *emailService) SendDueReminderEmail(email, taskTitle, due string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Task due soon: "+taskTitle)

	body := fmt.Sprintf(`
		<h3>A task is coming due</h3>
		<p><strong>%s</strong> is due %s.</p>
		<p>Open TaskMaster to finish or reschedule it.</p>
	`, html.EscapeString(taskTitle), html.EscapeString(due))

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send reminder email: %w", err)
	}
	return nil
}
