package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"
)

// Sender dispatches one-time passcodes. It is an interface so tests can
// substitute a fake instead of a live SMTP connection.
type Sender interface {
	SendOTP(ctx context.Context, toEmail, code string) error
}

// SMTPConfig groups transport settings for cleaner function signatures.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	AppName  string
}

// SMTPSender delivers mail over SMTP using go-mail. The client is built once
// at startup and reused for every dispatch.
type SMTPSender struct {
	client *gomail.Client
	cfg    *SMTPConfig
}

func NewSMTPSender(cfg *SMTPConfig) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}

	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSMandatory),
	}
	// Implicit TLS for SMTPS, STARTTLS for everything else.
	if cfg.Port == 465 {
		opts = append(opts, gomail.WithSSL())
	}
	if cfg.User != "" && cfg.Password != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.User),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating mail client: %w", err)
	}
	return &SMTPSender{client: client, cfg: cfg}, nil
}

func (s *SMTPSender) SendOTP(ctx context.Context, toEmail, code string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.cfg.AppName, s.cfg.User); err != nil {
		return fmt.Errorf("setting from address: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("setting to address: %w", err)
	}

	msg.Subject(fmt.Sprintf("%s - Your Verification Code", s.cfg.AppName))
	msg.SetBodyString(gomail.TypeTextPlain, fmt.Sprintf(
		"Hello,\n\n"+
			"Your %s verification code is: %s\n\n"+
			"It is valid for 5 minutes. If you did not request this email, please ignore it.\n\n"+
			"Best regards,\nThe %s Team",
		s.cfg.AppName, code, s.cfg.AppName))

	return s.client.DialAndSendWithContext(ctx, msg)
}
