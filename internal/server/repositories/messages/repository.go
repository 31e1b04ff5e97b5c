package messages

import (
	"context"

	"github.com/bierclub/bier/internal/server/models"
)

// Repository persists club chat messages. Content passes through as
// stored, i.e. hex ciphertext.
type Repository interface {
	Create(ctx context.Context, m *models.Message) error
	// ListByClub returns up to limit messages of clubID, newest first.
	ListByClub(ctx context.Context, clubID int64, limit int) ([]models.Message, error)
}
