package tokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bierclub/bier/internal/common"
	"github.com/bierclub/bier/internal/dbx"
	"github.com/bierclub/bier/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, t *models.ExpiringToken) error {
	query := `
		INSERT INTO expiring_tokens (id, user_id, kind, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query, t.ID, t.UserID, string(t.Kind), t.ExpiresAt).Scan(&t.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Take(ctx context.Context, id uuid.UUID, kind models.TokenKind, now time.Time) (int64, error) {
	query := `
		DELETE FROM expiring_tokens
		WHERE id = $1 AND kind = $2 AND expires_at > $3
		RETURNING user_id
	`
	var userID int64
	err := r.db.QueryRowContext(ctx, query, id, string(kind), now).Scan(&userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return userID, nil
}

func (r *PostgresRepository) DeleteByUserKind(ctx context.Context, userID int64, kind models.TokenKind) (int64, error) {
	query := `DELETE FROM expiring_tokens WHERE user_id = $1 AND kind = $2`
	res, err := r.db.ExecContext(ctx, query, userID, string(kind))
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return rowsAffected(res)
}

func (r *PostgresRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expiring_tokens WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return rowsAffected(res)
}

func rowsAffected(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}
