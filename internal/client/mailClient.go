package client

import (
	"fmt"
	"net/smtp"

	"novella-shop/internal/config"
)

type MailClient interface {
	Send(to, subject, body string) error
}

type smtpMailClient struct {
	addr string
	from string
	auth smtp.Auth
}

func NewMailClient(cfg *config.SMTP) MailClient {
	var auth smtp.Auth
	if cfg.User != "" {
		auth = smtp.PlainAuth("", cfg.User, cfg.Pass, cfg.Host)
	}

	return &smtpMailClient{
		addr: cfg.Host + ":" + cfg.Port,
		from: cfg.From,
		auth: auth,
	}
}

func (c *smtpMailClient) Send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		c.from, to, subject, body)

	if err := smtp.SendMail(c.addr, c.auth, c.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}
