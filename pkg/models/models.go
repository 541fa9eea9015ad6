package models

import "time"

// AlertStatus é derivado exclusivamente da lista de destinatários (nunca
// gravado como campo mutável independente).
type AlertStatus string

const (
	StatusNoRecipients       AlertStatus = "sem_destinatarios"
	StatusDelivered          AlertStatus = "entregue"
	StatusPartiallyDelivered AlertStatus = "parcialmente_entregue"
	StatusFailed             AlertStatus = "falhou"
)

// ChannelStatus é o resultado de uma tentativa de entrega para um contato.
type ChannelStatus string

const (
	ChannelSent   ChannelStatus = "enviado"
	ChannelFailed ChannelStatus = "falhou"
)

// Contact é um contato de apoio do usuário. O fan-out de alertas considera
// apenas contatos com Enabled=true no momento do disparo (snapshot).
type Contact struct {
	ID           int64     `json:"id"`
	OwnerID      string    `json:"usuario_id"`
	Name         string    `json:"nome"`
	Phone        string    `json:"telefone"`
	Relationship string    `json:"relacionamento"`
	Enabled      bool      `json:"ativo"`
	DeviceToken  string    `json:"device_token,omitempty"`
	Email        string    `json:"email,omitempty"`
	TokenValid   bool      `json:"token_valido"`
	CreatedAt    time.Time `json:"criado_em"`
	UpdatedAt    time.Time `json:"atualizado_em"`
}

// Location é produzida pelo enriquecedor; nunca é obrigatória para um alerta.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"endereco,omitempty"`
}

// AlertIntent é a entrada do chamador ao disparar um alerta de crise.
// Message nula usa a mensagem padrão; presente porém vazia é entrada inválida.
type AlertIntent struct {
	Message     *string   `json:"mensagem,omitempty"`
	RawLocation *Location `json:"localizacao,omitempty"`
}

// RecipientOutcome registra o resultado imutável de uma tentativa de entrega.
type RecipientOutcome struct {
	ContactID   int64         `json:"contato_id"`
	ContactName string        `json:"contato_nome"`
	Status      ChannelStatus `json:"status"`
	Error       string        `json:"erro,omitempty"`
	AttemptedAt time.Time     `json:"tentado_em"`
}

// Alert é o agregado persistido de um alerta de crise: a mensagem final,
// a localização opcional e um RecipientOutcome por contato considerado.
type Alert struct {
	ID         string             `json:"id"`
	OwnerID    string             `json:"usuario_id"`
	Message    string             `json:"mensagem"`
	Location   *Location          `json:"localizacao,omitempty"`
	Recipients []RecipientOutcome `json:"destinatarios"`
	Status     AlertStatus        `json:"status"`
	CreatedAt  time.Time          `json:"criado_em"`
}
