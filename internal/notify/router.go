package notify

import (
	"context"
	"fmt"

	"amparo/pkg/models"
)

// Router escolhe o canal de entrega conforme os dados do contato:
// device token → push, email → email, senão o canal de fallback.
type Router struct {
	push     Channel
	email    Channel
	fallback Channel
}

// NewRouter aceita canais nulos; um contato sem canal disponível resulta em
// erro de entrega, registrado como falha do destinatário.
func NewRouter(push, email, fallback Channel) *Router {
	return &Router{push: push, email: email, fallback: fallback}
}

func (r *Router) Name() string { return "router" }

func (r *Router) Send(ctx context.Context, contact models.Contact, message string) error {
	switch {
	case contact.DeviceToken != "" && r.push != nil:
		return r.push.Send(ctx, contact, message)
	case contact.Email != "" && r.email != nil:
		return r.email.Send(ctx, contact, message)
	case r.fallback != nil:
		return r.fallback.Send(ctx, contact, message)
	default:
		return fmt.Errorf("nenhum canal de entrega disponível para %s", contact.Name)
	}
}
