package contacts

import (
	"context"
	"database/sql"
	"fmt"

	"amparo/pkg/models"
)

// Store persiste os contatos de apoio, sempre escopados ao usuário dono.
type Store interface {
	Insert(ctx context.Context, c *models.Contact) error
	Get(ctx context.Context, ownerID string, id int64) (*models.Contact, error)
	Update(ctx context.Context, c *models.Contact) error
	Delete(ctx context.Context, ownerID string, id int64) error
	List(ctx context.Context, ownerID string) ([]models.Contact, error)
	ListEnabled(ctx context.Context, ownerID string) ([]models.Contact, error)
}

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const contactColumns = `
	id, usuario_id, nome, telefone, relacionamento, ativo,
	COALESCE(device_token, ''), COALESCE(email, ''), token_valido,
	criado_em, atualizado_em
`

func (s *PostgresStore) Insert(ctx context.Context, c *models.Contact) error {
	query := `
		INSERT INTO contatos_apoio (usuario_id, nome, telefone, relacionamento, ativo, device_token, email, token_valido, criado_em, atualizado_em)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), true, NOW(), NOW())
		RETURNING id, token_valido, criado_em, atualizado_em
	`

	err := s.db.QueryRowContext(ctx, query,
		c.OwnerID, c.Name, c.Phone, c.Relationship, c.Enabled, c.DeviceToken, c.Email,
	).Scan(&c.ID, &c.TokenValid, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert contato: %w", err)
	}

	return nil
}

func (s *PostgresStore) Get(ctx context.Context, ownerID string, id int64) (*models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contatos_apoio WHERE usuario_id = $1 AND id = $2`

	var c models.Contact
	err := s.db.QueryRowContext(ctx, query, ownerID, id).Scan(
		&c.ID, &c.OwnerID, &c.Name, &c.Phone, &c.Relationship, &c.Enabled,
		&c.DeviceToken, &c.Email, &c.TokenValid, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query contato: %w", err)
	}

	return &c, nil
}

func (s *PostgresStore) Update(ctx context.Context, c *models.Contact) error {
	query := `
		UPDATE contatos_apoio
		SET nome = $1, telefone = $2, relacionamento = $3, ativo = $4,
		    device_token = NULLIF($5, ''), email = NULLIF($6, ''), atualizado_em = NOW()
		WHERE usuario_id = $7 AND id = $8
	`

	result, err := s.db.ExecContext(ctx, query,
		c.Name, c.Phone, c.Relationship, c.Enabled, c.DeviceToken, c.Email,
		c.OwnerID, c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update contato: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrNotFound
	}

	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, ownerID string, id int64) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM contatos_apoio WHERE usuario_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		return fmt.Errorf("failed to delete contato: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrNotFound
	}

	return nil
}

func (s *PostgresStore) List(ctx context.Context, ownerID string) ([]models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contatos_apoio WHERE usuario_id = $1 ORDER BY criado_em ASC`
	return s.queryContacts(ctx, query, ownerID)
}

func (s *PostgresStore) ListEnabled(ctx context.Context, ownerID string) ([]models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contatos_apoio WHERE usuario_id = $1 AND ativo = true ORDER BY criado_em ASC`
	return s.queryContacts(ctx, query, ownerID)
}

// ListWithDeviceToken lista todos os contatos com device token registrado,
// independentemente do dono. Usado pelo worker de validação de tokens.
func (s *PostgresStore) ListWithDeviceToken(ctx context.Context) ([]models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contatos_apoio WHERE device_token IS NOT NULL AND device_token <> ''`
	return s.queryContacts(ctx, query)
}

// SetTokenValid marca a validade do device token sem tocar no flag ativo.
func (s *PostgresStore) SetTokenValid(ctx context.Context, contactID int64, valid bool) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE contatos_apoio SET token_valido = $1, atualizado_em = NOW() WHERE id = $2`,
		valid, contactID)
	if err != nil {
		return fmt.Errorf("failed to update token_valido: %w", err)
	}
	return nil
}

func (s *PostgresStore) queryContacts(ctx context.Context, query string, args ...interface{}) ([]models.Contact, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query contatos: %w", err)
	}
	defer rows.Close()

	var contatos []models.Contact
	for rows.Next() {
		var c models.Contact
		err := rows.Scan(
			&c.ID, &c.OwnerID, &c.Name, &c.Phone, &c.Relationship, &c.Enabled,
			&c.DeviceToken, &c.Email, &c.TokenValid, &c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contato: %w", err)
		}
		contatos = append(contatos, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contatos: %w", err)
	}

	return contatos, nil
}
