package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bierclub/bier/internal/common"
	"github.com/bierclub/bier/internal/cryptox"
	"github.com/bierclub/bier/internal/logging"
	"github.com/bierclub/bier/internal/server/models"
)

// maxMessageLen is the content limit in runes.
const maxMessageLen = 4000

// List page sizes. A non-positive limit means DefaultListLimit; larger
// limits are capped at MaxListLimit.
const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// User-facing validation messages for Send.
const (
	MsgMessageEmpty   = "message must not be empty"
	MsgMessageTooLong = "message must be at most 4000 characters"
)

// ChatService stores club chat messages encrypted at rest.
type ChatService struct {
	deps    Deps
	secrets Secrets
	log     logging.Logger
}

func NewChatService(deps Deps, secrets Secrets) *ChatService {
	return &ChatService{
		deps:    deps,
		secrets: secrets,
		log:     deps.logger().With("module", "chat"),
	}
}

// Send encrypts content and stores it as a message from the caller. The
// returned message carries the plaintext.
func (s *ChatService) Send(ctx context.Context, id Identity, clubID int64, content string) (*models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, common.NewValidationError("content", MsgMessageEmpty)
	}
	if utf8.RuneCountInString(content) > maxMessageLen {
		return nil, common.NewValidationError("content", MsgMessageTooLong)
	}

	blob, err := cryptox.EncryptHex([]byte(content), s.secrets.Key)
	if err != nil {
		return nil, fmt.Errorf("%w: encrypt message: %v", common.ErrCrypto, err)
	}

	userID := id.UserID
	msg := &models.Message{ClubID: clubID, UserID: &userID, Content: blob}
	if err := s.deps.Repos.Messages(s.deps.DB).Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}

	msg.Content = content
	return msg, nil
}

// List returns up to limit messages of clubID, newest first. A message
// that fails to decrypt is returned with common.UndecryptablePlaceholder
// as its content.
func (s *ChatService) List(ctx context.Context, _ Identity, clubID int64, limit int) ([]models.Message, error) {
	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}

	msgs, err := s.deps.Repos.Messages(s.deps.DB).ListByClub(ctx, clubID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	for i := range msgs {
		plain, err := cryptox.DecryptHex(msgs[i].Content, s.secrets.Key)
		if err != nil {
			s.deps.Metrics.ChatDecryptFailure()
			s.log.Warn(ctx, "message failed to decrypt", "message_id", msgs[i].ID, "club_id", clubID, "error", err)
			msgs[i].Content = common.UndecryptablePlaceholder
			continue
		}
		msgs[i].Content = string(plain)
	}

	return msgs, nil
}
