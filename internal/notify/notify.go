// Package notify entrega mensagens de alerta de crise aos contatos de apoio
// através de canais plugáveis (push FCM, email SMTP, console).
package notify

import (
	"context"
	"log"

	"amparo/pkg/models"
)

// Channel entrega uma mensagem formatada para um contato e reporta o
// resultado. O orquestrador aplica um timeout por chamada; implementações
// devem respeitar o cancelamento do contexto.
type Channel interface {
	Name() string
	Send(ctx context.Context, contact models.Contact, message string) error
}

// ConsoleChannel registra a entrega apenas no log. É o canal de
// desenvolvimento quando nenhum gateway externo está configurado.
type ConsoleChannel struct{}

func NewConsoleChannel() *ConsoleChannel {
	return &ConsoleChannel{}
}

func (c *ConsoleChannel) Name() string { return "console" }

func (c *ConsoleChannel) Send(ctx context.Context, contact models.Contact, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	log.Printf("📨 [console] Alerta para %s (%s): %s", contact.Name, contact.Phone, message)
	return nil
}
