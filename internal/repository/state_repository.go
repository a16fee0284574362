package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type stateRepository struct {
	db *sqlx.DB
}

func NewStateRepository(db *sqlx.DB) StateRepository {
	return &stateRepository{db: db}
}

// Load returns nil, nil for a session that has never been saved.
func (r *stateRepository) Load(ctx context.Context, sessionID string) ([]byte, error) {
	var payload []byte

	err := r.db.GetContext(ctx, &payload, `SELECT payload FROM client_state WHERE session_id = $1`, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка при чтении состояния сессии: %w", err)
	}

	return payload, nil
}

func (r *stateRepository) Save(ctx context.Context, sessionID string, payload []byte) error {
	query := `
		INSERT INTO client_state (session_id, payload, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (session_id) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()
	`

	if _, err := r.db.ExecContext(ctx, query, sessionID, string(payload)); err != nil {
		return fmt.Errorf("ошибка при сохранении состояния сессии: %w", err)
	}

	return nil
}

func (r *stateRepository) Delete(ctx context.Context, sessionID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM client_state WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("ошибка при удалении состояния сессии: %w", err)
	}
	return nil
}
