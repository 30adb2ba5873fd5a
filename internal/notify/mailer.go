package notify

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/gomail.v2"
)

// RequestEmail carries the template variables for the new-request email
// sent to the administrator.
type RequestEmail struct {
	Name        string
	Email       string
	PhoneNumber string
	Service     string
	Message     string
	Date        time.Time
}

// Mailer sends transactional email. Implementations must be safe for
// concurrent use.
type Mailer interface {
	SendNewRequestEmail(to string, email RequestEmail) error
}

// SMTPConfig holds mail transport settings.
type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
}

// SMTPMailer sends mail through an SMTP relay.
type SMTPMailer struct {
	config SMTPConfig
	dialer *gomail.Dialer
}

// NewSMTPMailer constructs a mailer from transport settings.
func NewSMTPMailer(config SMTPConfig) *SMTPMailer {
	dialer := gomail.NewDialer(config.Host, config.Port, config.Username, config.Password)
	return &SMTPMailer{config: config, dialer: dialer}
}

// SendNewRequestEmail notifies the administrator about a freshly submitted
// service request.
func (m *SMTPMailer) SendNewRequestEmail(to string, email RequestEmail) error {
	phone := strings.TrimSpace(email.PhoneNumber)
	if phone == "" {
		phone = "Not provided"
	}
	date := FormatRequestDate(email.Date)

	subject := fmt.Sprintf("New service request: %s", email.Service)
	htmlBody := fmt.Sprintf(`
		<html>
		<body>
			<h2>New Service Request</h2>
			<p><strong>Name:</strong> %s</p>
			<p><strong>Email:</strong> %s</p>
			<p><strong>Phone:</strong> %s</p>
			<p><strong>Service:</strong> %s</p>
			<p><strong>Message:</strong></p>
			<p>%s</p>
			<p><strong>Submitted:</strong> %s</p>
		</body>
		</html>
	`, email.Name, email.Email, phone, email.Service, email.Message, date)

	plainBody := fmt.Sprintf(`New Service Request

Name: %s
Email: %s
Phone: %s
Service: %s
Message:
%s

Submitted: %s
`, email.Name, email.Email, phone, email.Service, email.Message, date)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.config.FromAddress)
	msg.SetHeader("To", to)
	msg.SetHeader("Reply-To", email.Email)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", plainBody)
	msg.AddAlternative("text/html", htmlBody)

	return m.dialer.DialAndSend(msg)
}

// FormatRequestDate renders timestamps the way the notification template
// expects, e.g. "01 Sep 2026, 3:04 PM".
func FormatRequestDate(t time.Time) string {
	return t.Format("02 Jan 2006, 3:04 PM")
}
