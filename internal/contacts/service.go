package contacts

import (
	"context"
	"fmt"
	"strings"

	"amparo/pkg/models"
)

// CreateInput são os campos aceitos na criação de um contato.
// Enabled nulo assume true.
type CreateInput struct {
	Name         string `json:"nome"`
	Phone        string `json:"telefone"`
	Relationship string `json:"relacionamento"`
	Enabled      *bool  `json:"ativo,omitempty"`
	DeviceToken  string `json:"device_token,omitempty"`
	Email        string `json:"email,omitempty"`
}

// UpdateInput são os campos aceitos na atualização parcial de um contato.
type UpdateInput struct {
	Name         *string `json:"nome,omitempty"`
	Phone        *string `json:"telefone,omitempty"`
	Relationship *string `json:"relacionamento,omitempty"`
	Enabled      *bool   `json:"ativo,omitempty"`
	DeviceToken  *string `json:"device_token,omitempty"`
	Email        *string `json:"email,omitempty"`
}

// Service aplica as regras de negócio sobre os contatos de apoio.
// Todas as operações são escopadas ao usuário autenticado.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) Create(ctx context.Context, ownerID string, input CreateInput) (*models.Contact, error) {
	name := strings.TrimSpace(input.Name)
	phone := strings.TrimSpace(input.Phone)
	relationship := strings.TrimSpace(input.Relationship)

	if name == "" || phone == "" || relationship == "" {
		return nil, fmt.Errorf("%w: nome, telefone e relacionamento são obrigatórios", models.ErrInvalidInput)
	}

	enabled := true
	if input.Enabled != nil {
		enabled = *input.Enabled
	}

	contato := &models.Contact{
		OwnerID:      ownerID,
		Name:         name,
		Phone:        phone,
		Relationship: relationship,
		Enabled:      enabled,
		DeviceToken:  strings.TrimSpace(input.DeviceToken),
		Email:        strings.TrimSpace(input.Email),
	}

	if err := s.store.Insert(ctx, contato); err != nil {
		return nil, err
	}

	return contato, nil
}

func (s *Service) Get(ctx context.Context, ownerID string, id int64) (*models.Contact, error) {
	return s.store.Get(ctx, ownerID, id)
}

func (s *Service) List(ctx context.Context, ownerID string) ([]models.Contact, error) {
	return s.store.List(ctx, ownerID)
}

// ListEnabled devolve o snapshot de contatos habilitados usado pelo fan-out.
func (s *Service) ListEnabled(ctx context.Context, ownerID string) ([]models.Contact, error) {
	return s.store.ListEnabled(ctx, ownerID)
}

func (s *Service) Update(ctx context.Context, ownerID string, id int64, input UpdateInput) (*models.Contact, error) {
	contato, err := s.store.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		contato.Name = strings.TrimSpace(*input.Name)
	}
	if input.Phone != nil {
		contato.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.Relationship != nil {
		contato.Relationship = strings.TrimSpace(*input.Relationship)
	}
	if input.Enabled != nil {
		contato.Enabled = *input.Enabled
	}
	if input.DeviceToken != nil {
		contato.DeviceToken = strings.TrimSpace(*input.DeviceToken)
	}
	if input.Email != nil {
		contato.Email = strings.TrimSpace(*input.Email)
	}

	if contato.Name == "" || contato.Phone == "" || contato.Relationship == "" {
		return nil, fmt.Errorf("%w: nome, telefone e relacionamento são obrigatórios", models.ErrInvalidInput)
	}

	if err := s.store.Update(ctx, contato); err != nil {
		return nil, err
	}

	return contato, nil
}

func (s *Service) Delete(ctx context.Context, ownerID string, id int64) error {
	return s.store.Delete(ctx, ownerID, id)
}

// Toggle inverte o flag ativo do contato. Duas chamadas seguidas devolvem o
// contato ao estado original.
func (s *Service) Toggle(ctx context.Context, ownerID string, id int64) (*models.Contact, error) {
	contato, err := s.store.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	contato.Enabled = !contato.Enabled

	if err := s.store.Update(ctx, contato); err != nil {
		return nil, err
	}

	return contato, nil
}
