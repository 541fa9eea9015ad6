package alerts

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"amparo/internal/notify"
	"amparo/pkg/models"
)

// Directory resolve o snapshot de contatos habilitados no momento do disparo.
type Directory interface {
	ListEnabled(ctx context.Context, ownerID string) ([]models.Contact, error)
}

// Enricher resolve a localização em melhor esforço; nunca falha o disparo.
type Enricher interface {
	Enrich(ctx context.Context, raw *models.Location) *models.Location
}

// Users verifica se o usuário que dispara o alerta existe.
type Users interface {
	UserExists(ctx context.Context, userID string) (bool, error)
}

// Publisher recebe o alerta persistido para distribuição em tempo real.
type Publisher interface {
	Publish(ownerID string, alert *models.Alert)
}

// Options parametriza o motor de disparo.
type Options struct {
	DispatchTimeout time.Duration // orçamento total do fan-out
	ChannelTimeout  time.Duration // timeout por tentativa de entrega
	DefaultMessage  string
}

// Dispatcher orquestra um alerta de crise de ponta a ponta: resolve contatos,
// enriquece com localização, formata, faz fan-out concorrente e persiste um
// registro consistente independentemente de falhas individuais.
type Dispatcher struct {
	users     Users
	directory Directory
	enricher  Enricher
	channel   notify.Channel
	store     Store
	publisher Publisher
	opts      Options
}

func NewDispatcher(users Users, directory Directory, enricher Enricher, channel notify.Channel, store Store, opts Options) *Dispatcher {
	if opts.DispatchTimeout <= 0 {
		opts.DispatchTimeout = 10 * time.Second
	}
	if opts.ChannelTimeout <= 0 {
		opts.ChannelTimeout = 5 * time.Second
	}
	if opts.DefaultMessage == "" {
		opts.DefaultMessage = "Preciso de ajuda urgente!"
	}

	return &Dispatcher{
		users:     users,
		directory: directory,
		enricher:  enricher,
		channel:   channel,
		store:     store,
		opts:      opts,
	}
}

// SetPublisher registra o destino opcional de eventos em tempo real.
func (d *Dispatcher) SetPublisher(p Publisher) {
	d.publisher = p
}

// Send dispara um alerta de crise. Falhas por destinatário são dados dentro
// do alerta retornado, nunca erro da operação: os únicos erros visíveis são
// usuário desconhecido, entrada inválida e cancelamento antes do fan-out.
func (d *Dispatcher) Send(ctx context.Context, userID string, intent models.AlertIntent) (*models.Alert, error) {
	exists, err := d.users.UserExists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify usuario: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: usuário desconhecido", models.ErrNotFound)
	}

	message := d.opts.DefaultMessage
	if intent.Message != nil {
		message = strings.TrimSpace(*intent.Message)
		if message == "" {
			return nil, fmt.Errorf("%w: mensagem vazia", models.ErrInvalidInput)
		}
	}

	contatos, err := d.directory.ListEnabled(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contatos: %w", err)
	}

	var loc *models.Location
	if d.enricher != nil {
		loc = d.enricher.Enrich(ctx, intent.RawLocation)
	} else if intent.RawLocation != nil {
		copied := *intent.RawLocation
		loc = &copied
	}

	text := FormatMessage(message, loc)

	// Cancelamento antes do fan-out: nada é persistido.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrCancelled, err)
	}

	recipients := d.fanOut(ctx, contatos, text)

	alert := &models.Alert{
		ID:         uuid.NewString(),
		OwnerID:    userID,
		Message:    text,
		Location:   loc,
		Recipients: recipients,
		Status:     DeriveStatus(recipients),
		CreatedAt:  time.Now().UTC(),
	}

	// Persistir sempre, mesmo com o contexto do chamador cancelado no meio
	// do fan-out: o registro honesto do que aconteceu não pode se perder.
	storeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := d.store.Append(storeCtx, alert); err != nil {
		return nil, fmt.Errorf("failed to persist alerta: %w", err)
	}

	if d.publisher != nil {
		d.publisher.Publish(userID, alert)
	}

	log.Printf("🚨 Alerta %s disparado por %s: status=%s destinatarios=%d",
		alert.ID, userID, alert.Status, len(alert.Recipients))

	return alert, nil
}

// fanOut entrega a mensagem a todos os contatos concorrentemente, dentro do
// orçamento total de disparo. Cada tentativa produz exatamente um
// RecipientOutcome; nenhum destinatário lento atrasa os demais.
func (d *Dispatcher) fanOut(ctx context.Context, contatos []models.Contact, text string) []models.RecipientOutcome {
	recipients := make([]models.RecipientOutcome, len(contatos))
	if len(contatos) == 0 {
		return recipients
	}

	dispatchCtx, cancel := context.WithTimeout(ctx, d.opts.DispatchTimeout)
	defer cancel()

	var wg sync.WaitGroup
	for i, contato := range contatos {
		wg.Add(1)
		go func(i int, contato models.Contact) {
			defer wg.Done()
			// Cada goroutine escreve apenas no próprio índice.
			recipients[i] = d.attempt(dispatchCtx, contato, text)
		}(i, contato)
	}
	wg.Wait()

	return recipients
}

// attempt faz uma tentativa de entrega com timeout próprio. Sempre retorna um
// resultado, ainda que o canal externo trave.
func (d *Dispatcher) attempt(ctx context.Context, contato models.Contact, text string) models.RecipientOutcome {
	outcome := models.RecipientOutcome{
		ContactID:   contato.ID,
		ContactName: contato.Name,
		AttemptedAt: time.Now().UTC(),
	}

	callCtx, cancel := context.WithTimeout(ctx, d.opts.ChannelTimeout)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- d.channel.Send(callCtx, contato, text)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			outcome.Status = models.ChannelFailed
			outcome.Error = err.Error()
		} else {
			outcome.Status = models.ChannelSent
		}
	case <-callCtx.Done():
		outcome.Status = models.ChannelFailed
		if errors.Is(ctx.Err(), context.Canceled) {
			outcome.Error = "cancelado"
		} else {
			outcome.Error = "timeout"
		}
	}

	return outcome
}

// History retorna os alertas do usuário em ordem decrescente de criação.
func (d *Dispatcher) History(ctx context.Context, userID string) ([]models.Alert, error) {
	alertas, err := d.store.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	if alertas == nil {
		alertas = []models.Alert{}
	}
	return alertas, nil
}

// Get retorna um alerta do usuário. Alerta de outro dono é indistinguível de
// alerta inexistente.
func (d *Dispatcher) Get(ctx context.Context, userID, alertID string) (*models.Alert, error) {
	return d.store.Get(ctx, userID, alertID)
}
