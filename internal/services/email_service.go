package services

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/siteguard/backend/internal/models"
)

const testMessageTemplate = `<html>
<body style="font-family: Arial, sans-serif; color: #333;">
	<h2>SMTP ayarları test mesajı</h2>
	<p>Bu mesajı görüyorsanız giden e-posta ayarlarınız doğru çalışıyor.</p>
	<table cellpadding="4">
		<tr><td><b>Sunucu</b></td><td>{{.Host}}:{{.Port}}</td></tr>
		<tr><td><b>Güvenlik</b></td><td>{{.SecurityType}}</td></tr>
		<tr><td><b>Gönderen</b></td><td>{{.FromAddress}}</td></tr>
	</table>
</body>
</html>`

// EmailService submits mail over SMTP using the stored settings. Credentials
// come in per call, already decrypted by the settings layer.
type EmailService struct {
	testTemplate *template.Template
}

func NewEmailService() *EmailService {
	return &EmailService{
		testTemplate: template.Must(template.New("test_message").Parse(testMessageTemplate)),
	}
}

// SendMail sends an HTML email via the configured SMTP server.
func (s *EmailService) SendMail(settings *models.MailSettings, to, subject, htmlBody string) error {
	if settings == nil || settings.Host == "" {
		return fmt.Errorf("mail provider not configured")
	}

	from := settings.FromAddress
	if settings.FromName != "" {
		from = fmt.Sprintf("%s <%s>", settings.FromName, settings.FromAddress)
	}

	message := fmt.Sprintf("From: %s\r\n", from)
	message += fmt.Sprintf("To: %s\r\n", to)
	message += fmt.Sprintf("Subject: %s\r\n", subject)
	message += "MIME-Version: 1.0\r\n"
	message += "Content-Type: text/html; charset=\"UTF-8\"\r\n"
	message += "\r\n"
	message += htmlBody

	return s.sendSMTP(settings, to, []byte(message))
}

// SendTestMessage sends the templated settings-check email.
func (s *EmailService) SendTestMessage(settings *models.MailSettings, to string) error {
	var body bytes.Buffer
	if err := s.testTemplate.Execute(&body, settings); err != nil {
		return fmt.Errorf("failed to render test message: %w", err)
	}
	return s.SendMail(settings, to, "SMTP ayarları testi", body.String())
}

// sendSMTP submits the message using the configured security type: SSL is
// implicit TLS on connect, TLS negotiates STARTTLS, None submits in the
// clear.
func (s *EmailService) sendSMTP(settings *models.MailSettings, to string, message []byte) error {
	addr := fmt.Sprintf("%s:%d", settings.Host, settings.Port)

	var auth smtp.Auth
	if settings.Username != "" {
		auth = smtp.PlainAuth("", settings.Username, settings.Password, settings.Host)
	}

	if settings.SecurityType == models.MailSecuritySSL {
		tlsConfig := &tls.Config{ServerName: settings.Host}

		conn, err := tls.Dial("tcp", addr, tlsConfig)
		if err != nil {
			return fmt.Errorf("failed to connect to SMTP server: %w", err)
		}
		defer conn.Close()

		client, err := smtp.NewClient(conn, settings.Host)
		if err != nil {
			return fmt.Errorf("failed to create SMTP client: %w", err)
		}
		defer client.Close()

		if auth != nil {
			if err := client.Auth(auth); err != nil {
				return fmt.Errorf("SMTP authentication failed: %w", err)
			}
		}

		if err := client.Mail(settings.FromAddress); err != nil {
			return err
		}
		if err := client.Rcpt(to); err != nil {
			return err
		}

		w, err := client.Data()
		if err != nil {
			return err
		}
		if _, err = w.Write(message); err != nil {
			return err
		}
		if err = w.Close(); err != nil {
			return err
		}

		return client.Quit()
	}

	// STARTTLS (negotiated by smtp.SendMail when the server offers it) or
	// plain submission for SecurityType None.
	return smtp.SendMail(addr, auth, settings.FromAddress, []string{to}, message)
}
