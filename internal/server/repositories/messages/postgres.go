// Package messages provides PostgreSQL-backed storage for club chat messages.
package messages

import (
	"context"
	"fmt"

	"github.com/bierclub/bier/internal/dbx"
	"github.com/bierclub/bier/internal/server/models"
)

// PostgresRepository implements message storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, m *models.Message) error {
	query := `
		INSERT INTO club_messages (club_id, user_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowContext(ctx, query, m.ClubID, m.UserID, m.Content).Scan(&m.ID, &m.CreatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListByClub(ctx context.Context, clubID int64, limit int) ([]models.Message, error) {
	query := `
		SELECT id, club_id, user_id, content, created_at
		FROM club_messages
		WHERE club_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, clubID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select messages: %w", err)
	}
	defer rows.Close()

	var result []models.Message
	for rows.Next() {
		var item models.Message
		if err := rows.Scan(&item.ID, &item.ClubID, &item.UserID, &item.Content, &item.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
