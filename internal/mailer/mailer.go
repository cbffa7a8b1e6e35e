// Package mailer sends transactional email over SMTP.
package mailer

import (
	"fmt"

	"tintuc/internal/config"
	"tintuc/internal/middleware"
	"tintuc/internal/observability"

	"gopkg.in/gomail.v2"
)

// Mailer sends account emails. Implementations must be safe for concurrent use.
type Mailer interface {
	SendVerificationEmail(to, name, token string) error
	SendPasswordResetEmail(to, name, token string) error
}

type smtpMailer struct {
	dialer      *gomail.Dialer
	from        string
	frontendURL string
}

// NewSMTPMailer builds a Mailer from SMTP config. Returns an error when the
// SMTP host is not configured; callers decide whether mail is optional.
func NewSMTPMailer(cfg *config.Config) (Mailer, error) {
	if cfg.SMTPHost == "" {
		return nil, fmt.Errorf("SMTP host is not configured")
	}
	return &smtpMailer{
		dialer:      gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		from:        cfg.EmailFrom,
		frontendURL: cfg.FrontendURL,
	}, nil
}

func (m *smtpMailer) send(kind, to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		observability.EmailsSent.WithLabelValues(kind, "error").Inc()
		middleware.Logger.Error("failed to send email", "kind", kind, "to", to, "error", err)
		return fmt.Errorf("failed to send %s email: %w", kind, err)
	}
	observability.EmailsSent.WithLabelValues(kind, "success").Inc()
	middleware.Logger.Info("email sent", "kind", kind, "to", to)
	return nil
}

func (m *smtpMailer) SendVerificationEmail(to, name, token string) error {
	link := fmt.Sprintf("%s/verify-email?token=%s", m.frontendURL, token)
	body := fmt.Sprintf(`
		<h2>Chào mừng bạn đến với Tin Tức, %s!</h2>
		<p>Vui lòng xác nhận địa chỉ email của bạn bằng cách nhấn vào liên kết dưới đây:</p>
		<p><a href="%s">Xác nhận email</a></p>
		<p>Nếu bạn không tạo tài khoản này, hãy bỏ qua email này.</p>`, name, link)
	return m.send("verification", to, "Xác nhận địa chỉ email của bạn", body)
}

func (m *smtpMailer) SendPasswordResetEmail(to, name, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", m.frontendURL, token)
	body := fmt.Sprintf(`
		<h2>Xin chào %s,</h2>
		<p>Chúng tôi nhận được yêu cầu đặt lại mật khẩu cho tài khoản của bạn.</p>
		<p><a href="%s">Đặt lại mật khẩu</a></p>
		<p>Liên kết này sẽ hết hạn sau 1 giờ. Nếu bạn không yêu cầu, hãy bỏ qua email này.</p>`, name, link)
	return m.send("password_reset", to, "Đặt lại mật khẩu", body)
}

// NoopMailer discards all email. Used when SMTP is not configured and in tests.
type NoopMailer struct{}

func (NoopMailer) SendVerificationEmail(to, name, token string) error {
	middleware.Logger.Warn("mailer not configured, dropping verification email", "to", to)
	return nil
}

func (NoopMailer) SendPasswordResetEmail(to, name, token string) error {
	middleware.Logger.Warn("mailer not configured, dropping password reset email", "to", to)
	return nil
}
