package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"shop-backend/internal/config"
	"shop-backend/pkg/logger"
)

type EmailService interface {
	SendEmail(ctx context.Context, req EmailRequest) error
}

type smtpEmailService struct {
	addr string
	from string
	auth smtp.Auth
}

// NewSMTPEmailService sends through a plain SMTP relay. Auth is used only when a user is configured.
func NewSMTPEmailService(cfg config.EmailConfig) EmailService {
	svc := &smtpEmailService{
		addr: fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		from: cfg.From,
	}
	if cfg.SMTPUser != "" {
		svc.auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost)
	}
	return svc
}

func (s *smtpEmailService) SendEmail(ctx context.Context, req EmailRequest) error {
	if len(req.To) == 0 {
		return fmt.Errorf("email has no recipients")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := buildMessage(s.from, req)
	recipients := append(append([]string{}, req.To...), req.Cc...)

	if err := smtp.SendMail(s.addr, s.auth, s.from, recipients, msg); err != nil {
		logger.ErrorWithFields("failed to send email", err, map[string]interface{}{
			"to":        req.To,
			"smtp_addr": s.addr,
		})
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func buildMessage(from string, req EmailRequest) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(req.To, ", "))
	if len(req.Cc) > 0 {
		fmt.Fprintf(&b, "Cc: %s\r\n", strings.Join(req.Cc, ", "))
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", req.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	if req.IsHTML {
		b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	} else {
		b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	}
	b.WriteString("\r\n")
	b.WriteString(req.Body)
	return []byte(b.String())
}
