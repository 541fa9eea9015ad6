package notify

import (
	"context"
	"fmt"
	"log"

	"gopkg.in/gomail.v2"

	"amparo/pkg/models"
)

// SMTPConfig são as credenciais do servidor de email.
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
}

// SMTPChannel entrega alertas por email para contatos sem device token.
type SMTPChannel struct {
	cfg    SMTPConfig
	dialer *gomail.Dialer
}

func NewSMTPChannel(cfg SMTPConfig) (*SMTPChannel, error) {
	if cfg.Username == "" || cfg.Password == "" {
		return nil, fmt.Errorf("SMTP credentials not configured")
	}

	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)

	return &SMTPChannel{cfg: cfg, dialer: dialer}, nil
}

func (c *SMTPChannel) Name() string { return "email" }

func (c *SMTPChannel) Send(ctx context.Context, contact models.Contact, text string) error {
	if contact.Email == "" {
		return fmt.Errorf("contato %s sem email", contact.Name)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("%s <%s>", c.cfg.FromName, c.cfg.FromEmail))
	m.SetHeader("To", contact.Email)
	m.SetHeader("Subject", "🚨 ALERTA DE CRISE - Rede de Apoio")
	m.SetBody("text/html", crisisAlertTemplate(contact.Name, text))

	if err := c.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Printf("📧 Email de crise enviado para: %s", contact.Email)
	return nil
}

func crisisAlertTemplate(contactName, text string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; background-color: #f4f4f4; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background: #ffffff; border-radius: 8px; overflow: hidden;">
		<div style="background: #d32f2f; color: #ffffff; padding: 16px 24px;">
			<h2 style="margin: 0;">🚨 Alerta de Crise</h2>
		</div>
		<div style="padding: 24px;">
			<p>Olá, <strong>%s</strong>.</p>
			<p>Uma pessoa que confia em você pediu ajuda agora:</p>
			<blockquote style="border-left: 4px solid #d32f2f; margin: 16px 0; padding: 8px 16px; background: #fbe9e7; white-space: pre-line;">%s</blockquote>
			<p>Entre em contato com ela o quanto antes.</p>
		</div>
		<div style="background: #eeeeee; color: #777777; padding: 12px 24px; font-size: 12px;">
			Amparo - Rede de Apoio
		</div>
	</div>
</body>
</html>`, contactName, text)
}
