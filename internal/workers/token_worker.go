package workers

import (
	"context"
	"fmt"
	"log"
	"time"

	"amparo/pkg/models"
)

// TokenStore expõe os contatos com device token e o flag de validade.
type TokenStore interface {
	ListWithDeviceToken(ctx context.Context) ([]models.Contact, error)
	SetTokenValid(ctx context.Context, contactID int64, valid bool) error
}

// TokenValidator testa se um device token ainda é aceito pelo gateway push.
type TokenValidator interface {
	ValidateToken(ctx context.Context, deviceToken string) bool
}

// TokenCheckWorker revalida periodicamente os device tokens dos contatos e
// marca os expirados. Nunca toca no flag ativo: o snapshot do fan-out só
// depende do que o usuário habilitou.
type TokenCheckWorker struct {
	store     TokenStore
	validator TokenValidator
	interval  time.Duration
}

func NewTokenCheckWorker(store TokenStore, validator TokenValidator, interval time.Duration) *TokenCheckWorker {
	return &TokenCheckWorker{
		store:     store,
		validator: validator,
		interval:  interval,
	}
}

func (w *TokenCheckWorker) Name() string { return "validacao_tokens" }

func (w *TokenCheckWorker) Interval() time.Duration { return w.interval }

func (w *TokenCheckWorker) Run(ctx context.Context) error {
	contatos, err := w.store.ListWithDeviceToken(ctx)
	if err != nil {
		return fmt.Errorf("failed to list contatos with token: %w", err)
	}

	var invalid int
	for _, contato := range contatos {
		if err := ctx.Err(); err != nil {
			return err
		}

		valid := w.validator.ValidateToken(ctx, contato.DeviceToken)
		if valid == contato.TokenValid {
			continue
		}

		if err := w.store.SetTokenValid(ctx, contato.ID, valid); err != nil {
			log.Printf("⚠️  Falha ao atualizar token_valido do contato %d: %v", contato.ID, err)
			continue
		}

		if !valid {
			invalid++
			log.Printf("⚠️  Device token expirado para contato %s (id %d)", contato.Name, contato.ID)
		}
	}

	if invalid > 0 {
		log.Printf("🔎 Validação de tokens: %d de %d contato(s) com token expirado", invalid, len(contatos))
	}

	return nil
}
