package alerts

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"amparo/pkg/models"
)

// Store persiste alertas de crise. Append é a única mutação: alertas são
// imutáveis depois de criados e nunca são atualizados ou removidos aqui.
type Store interface {
	Append(ctx context.Context, alert *models.Alert) error
	ListByOwner(ctx context.Context, ownerID string) ([]models.Alert, error)
	Get(ctx context.Context, ownerID, alertID string) (*models.Alert, error)
}

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, alert *models.Alert) error {
	destinatarios, err := json.Marshal(alert.Recipients)
	if err != nil {
		return fmt.Errorf("failed to marshal destinatarios: %w", err)
	}

	var lat, lon sql.NullFloat64
	var endereco sql.NullString
	if alert.Location != nil {
		lat = sql.NullFloat64{Float64: alert.Location.Latitude, Valid: true}
		lon = sql.NullFloat64{Float64: alert.Location.Longitude, Valid: true}
		if alert.Location.Address != "" {
			endereco = sql.NullString{String: alert.Location.Address, Valid: true}
		}
	}

	query := `
		INSERT INTO alertas_crise (id, usuario_id, mensagem, latitude, longitude, endereco, destinatarios, criado_em)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = s.db.ExecContext(ctx, query,
		alert.ID, alert.OwnerID, alert.Message, lat, lon, endereco, destinatarios, alert.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert alerta: %w", err)
	}

	return nil
}

func (s *PostgresStore) ListByOwner(ctx context.Context, ownerID string) ([]models.Alert, error) {
	query := `
		SELECT id, usuario_id, mensagem, latitude, longitude, endereco, destinatarios, criado_em
		FROM alertas_crise
		WHERE usuario_id = $1
		ORDER BY criado_em DESC
	`

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query alertas: %w", err)
	}
	defer rows.Close()

	var alertas []models.Alert
	for rows.Next() {
		alert, err := scanAlert(rows.Scan)
		if err != nil {
			return nil, err
		}
		alertas = append(alertas, *alert)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate alertas: %w", err)
	}

	return alertas, nil
}

func (s *PostgresStore) Get(ctx context.Context, ownerID, alertID string) (*models.Alert, error) {
	query := `
		SELECT id, usuario_id, mensagem, latitude, longitude, endereco, destinatarios, criado_em
		FROM alertas_crise
		WHERE usuario_id = $1 AND id = $2
	`

	alert, err := scanAlert(s.db.QueryRowContext(ctx, query, ownerID, alertID).Scan)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	return alert, err
}

func scanAlert(scan func(dest ...interface{}) error) (*models.Alert, error) {
	var a models.Alert
	var lat, lon sql.NullFloat64
	var endereco sql.NullString
	var destinatarios []byte

	err := scan(&a.ID, &a.OwnerID, &a.Message, &lat, &lon, &endereco, &destinatarios, &a.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan alerta: %w", err)
	}

	if lat.Valid && lon.Valid {
		a.Location = &models.Location{
			Latitude:  lat.Float64,
			Longitude: lon.Float64,
			Address:   endereco.String,
		}
	}

	a.Recipients = []models.RecipientOutcome{}
	if len(destinatarios) > 0 {
		if err := json.Unmarshal(destinatarios, &a.Recipients); err != nil {
			return nil, fmt.Errorf("failed to unmarshal destinatarios: %w", err)
		}
	}

	a.Status = DeriveStatus(a.Recipients)

	return &a, nil
}
