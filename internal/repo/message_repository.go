package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/FRONT-END-BOOTCAMP-PLUS-4/sik-share-server/internal/db"
	"github.com/FRONT-END-BOOTCAMP-PLUS-4/sik-share-server/internal/model"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type messageRepository struct {
	messages *db.Repository[model.Message]
	receipts *db.Repository[model.ReadReceipt]
	logger   *zap.Logger
}

type MessageRepository interface {
	InsertMessage(ctx context.Context, msg *model.Message) (*model.Message, error)
	UnreadMessageIDs(ctx context.Context, chatID int64, kind model.ConversationKind, userID string) ([]string, error)
	CountUnread(ctx context.Context, chatID int64, kind model.ConversationKind, userID string) (int64, error)
	FilterMessages(ctx context.Context, chatID int64, kind model.ConversationKind, page int64) (*db.PaginatedResult[model.Message], error)
}

func NewMessageRepository(messages *db.Repository[model.Message], receipts *db.Repository[model.ReadReceipt], logger *zap.Logger) MessageRepository {
	return &messageRepository{
		messages: messages,
		receipts: receipts,
		logger:   logger,
	}
}

// -----------------------------------------------------------------------------
// InsertMessage
// -----------------------------------------------------------------------------

func (m *messageRepository) InsertMessage(ctx context.Context, msg *model.Message) (*model.Message, error) {
	if err := m.validateMessage(msg); err != nil {
		return nil, err
	}

	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			if err := waitForRetry(ctx, attempt); err != nil {
				return nil, err
			}
		}

		result, err := m.messages.Create(ctx, *msg)
		if err == nil {
			saved := *msg
			if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
				saved.ID = oid
			}

			m.logger.Info("message inserted",
				zap.String("message_id", saved.ID.Hex()),
				zap.Int64("chat_id", msg.ChatID),
				zap.String("kind", string(msg.Kind)),
				zap.Int("attempt", attempt+1),
			)
			return &saved, nil
		}

		lastErr = err

		if !isRetryableError(err) {
			break
		}

		m.logger.Warn("insert attempt failed, retrying",
			zap.Error(err),
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", maxRetries),
		)
	}

	m.logger.Error("failed to insert message after all retries",
		zap.Error(lastErr),
		zap.Int64("chat_id", msg.ChatID),
	)

	return nil, fmt.Errorf("insert message failed: %w", lastErr)
}

// -----------------------------------------------------------------------------
// UnreadMessageIDs / CountUnread
// -----------------------------------------------------------------------------

// UnreadMessageIDs returns the ids of messages in the conversation that were
// authored by someone other than userID and carry no read receipt by userID.
func (m *messageRepository) UnreadMessageIDs(ctx context.Context, chatID int64, kind model.ConversationKind, userID string) ([]string, error) {
	if err := m.validateLookup(chatID, userID); err != nil {
		return nil, err
	}

	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	candidates, err := m.messages.FindAll(ctx, db.NewFilter().
		Eq("chat_id", chatID).
		Eq("kind", kind).
		Ne("sender_id", userID).
		Build())
	if err != nil {
		return nil, m.handleReadError(err, chatID)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	ids := lo.Map(candidates, func(msg model.Message, _ int) primitive.ObjectID {
		return msg.ID
	})

	receipts, err := m.receipts.FindAll(ctx, db.NewFilter().
		In("message_id", ids).
		Eq("user_id", userID).
		Build())
	if err != nil {
		return nil, m.handleReadError(err, chatID)
	}

	read := lo.SliceToMap(receipts, func(r model.ReadReceipt) (primitive.ObjectID, struct{}) {
		return r.MessageID, struct{}{}
	})

	unread := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := read[id]; !ok {
			unread = append(unread, id.Hex())
		}
	}

	m.logger.Debug("unread messages resolved",
		zap.Int64("chat_id", chatID),
		zap.String("user_id", userID),
		zap.Int("unread", len(unread)),
	)
	return unread, nil
}

// CountUnread is the chat-list badge number: messages in the conversation not
// authored by userID and not yet receipted by userID.
func (m *messageRepository) CountUnread(ctx context.Context, chatID int64, kind model.ConversationKind, userID string) (int64, error) {
	ids, err := m.UnreadMessageIDs(ctx, chatID, kind, userID)
	if err != nil {
		return 0, err
	}
	return int64(len(ids)), nil
}

// -----------------------------------------------------------------------------
// FilterMessages
// -----------------------------------------------------------------------------

func (m *messageRepository) FilterMessages(ctx context.Context, chatID int64, kind model.ConversationKind, page int64) (*db.PaginatedResult[model.Message], error) {
	if chatID <= 0 {
		return nil, ErrInvalidChatID
	}

	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	filter := db.NewFilter().Eq("chat_id", chatID).Eq("kind", kind).Build()

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			if err := waitForRetry(ctx, attempt); err != nil {
				return nil, err
			}
			m.logger.Warn("retrying filter messages",
				zap.Int64("chat_id", chatID),
				zap.Int("attempt", attempt+1),
			)
		}

		result, err := m.messages.FindWithPagination(ctx, filter, db.PaginationParams{
			Page:     page,
			PageSize: 15,
			SortBy:   "created_at",
			SortDesc: false,
		})
		if err == nil {
			return result, nil
		}

		lastErr = err

		if !isRetryableError(err) {
			break
		}
	}

	return nil, m.handleReadError(lastErr, chatID)
}

// -----------------------------------------------------------------------------
// Private Helper Methods
// -----------------------------------------------------------------------------

func (m *messageRepository) validateMessage(msg *model.Message) error {
	if msg == nil {
		return ErrInvalidMessage
	}
	if msg.ChatID <= 0 {
		return ErrInvalidChatID
	}
	if msg.SenderID == "" {
		return ErrInvalidUserID
	}
	return nil
}

func (m *messageRepository) validateLookup(chatID int64, userID string) error {
	if chatID <= 0 {
		return ErrInvalidChatID
	}
	if userID == "" {
		return ErrInvalidUserID
	}
	return nil
}

func (m *messageRepository) handleReadError(err error, chatID int64) error {
	if errors.Is(err, context.DeadlineExceeded) {
		m.logger.Error("read timeout", zap.Int64("chat_id", chatID))
		return ErrOperationTimeout
	}

	if errors.Is(err, context.Canceled) {
		m.logger.Debug("read cancelled", zap.Int64("chat_id", chatID))
		return err
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil // Not an error, just empty result
	}

	m.logger.Error("read failed", zap.Error(err), zap.Int64("chat_id", chatID))
	return fmt.Errorf("read messages failed: %w", err)
}
