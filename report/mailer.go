package report

import (
	"bytes"
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	SSL      bool
}

// Mailer sends monthly reports over SMTP.
type Mailer struct {
	client *mail.Client
	from   string
}

func NewMailer(cfg MailConfig) (*Mailer, error) {
	opts := []mail.Option{mail.WithPort(cfg.Port)}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	if cfg.SSL {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create mail client: %w", err)
	}

	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return &Mailer{client: client, from: from}, nil
}

// BuildMessage renders m as a plain text mail with the timesheet attached.
func BuildMessage(from, to string, m Month) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("invalid sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	msg.Subject(m.Title())
	msg.SetBodyString(mail.TypeTextPlain, Text(m))

	csv, err := CSV(m)
	if err != nil {
		return nil, fmt.Errorf("render timesheet: %w", err)
	}
	name := fmt.Sprintf("timesheet-%04d-%02d.csv", m.Year, int(m.Month))
	if err := msg.AttachReader(name, bytes.NewReader(csv), mail.WithFileContentType("text/csv")); err != nil {
		return nil, fmt.Errorf("attach timesheet: %w", err)
	}
	return msg, nil
}

func (s *Mailer) Send(ctx context.Context, to string, m Month) error {
	msg, err := BuildMessage(s.from, to, m)
	if err != nil {
		return err
	}
	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send report: %w", err)
	}
	return nil
}
