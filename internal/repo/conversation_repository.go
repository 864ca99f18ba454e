package repo

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/FRONT-END-BOOTCAMP-PLUS-4/sik-share-server/internal/db"
	"github.com/FRONT-END-BOOTCAMP-PLUS-4/sik-share-server/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type conversationRepository struct {
	conversations *db.Repository[model.Conversation]
	logger        *zap.Logger
}

type ConversationRepository interface {
	Conversation(ctx context.Context, chatID int64, kind model.ConversationKind) (*model.Conversation, error)
	Participants(ctx context.Context, chatID int64, kind model.ConversationKind) ([]string, error)
	TouchLastMessage(ctx context.Context, chatID int64, kind model.ConversationKind, last model.LastMessage) error
	ListForUser(ctx context.Context, userID string) ([]model.Conversation, error)
}

func NewConversationRepository(conversations *db.Repository[model.Conversation], logger *zap.Logger) ConversationRepository {
	return &conversationRepository{
		conversations: conversations,
		logger:        logger,
	}
}

// Conversation fetches one conversation by its external chat id and kind.
// Returns (nil, nil) when the conversation does not exist.
func (r *conversationRepository) Conversation(ctx context.Context, chatID int64, kind model.ConversationKind) (*model.Conversation, error) {
	if chatID <= 0 {
		return nil, ErrInvalidChatID
	}

	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	conversation, err := r.conversations.FindOne(ctx, r.byChat(chatID, kind))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			r.logger.Debug("conversation not found",
				zap.Int64("chat_id", chatID),
				zap.String("kind", string(kind)),
			)
			return nil, nil
		}
		r.logger.Error("failed to fetch conversation",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to fetch conversation: %w", err)
	}

	return conversation, nil
}

// Participants returns the opaque user ids enrolled in the conversation.
func (r *conversationRepository) Participants(ctx context.Context, chatID int64, kind model.ConversationKind) ([]string, error) {
	conversation, err := r.Conversation(ctx, chatID, kind)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, nil
	}
	return conversation.ParticipantIDs, nil
}

// TouchLastMessage updates the conversation's last-message preview after a
// successful message insert.
func (r *conversationRepository) TouchLastMessage(ctx context.Context, chatID int64, kind model.ConversationKind, last model.LastMessage) error {
	if chatID <= 0 {
		return ErrInvalidChatID
	}

	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	_, err := r.conversations.Update(ctx, r.byChat(chatID, kind), bson.M{
		"last_message":    last,
		"last_message_at": last.SentAt,
	})
	if err != nil {
		r.logger.Error("failed to touch last message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
		return fmt.Errorf("touch last message failed: %w", err)
	}
	return nil
}

// ListForUser returns every active conversation the user participates in,
// most recently active first.
func (r *conversationRepository) ListForUser(ctx context.Context, userID string) ([]model.Conversation, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}

	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	conversations, err := r.conversations.FindAll(ctx, db.NewFilter().
		Contains("participant_ids", userID).
		Eq("is_active", true).
		Build())
	if err != nil {
		r.logger.Error("failed to list conversations", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("list conversations failed: %w", err)
	}

	sort.Slice(conversations, func(i, j int) bool {
		return conversations[i].LastMessageAt.After(conversations[j].LastMessageAt)
	})

	r.logger.Debug("conversations retrieved",
		zap.String("user_id", userID),
		zap.Int("count", len(conversations)),
	)
	return conversations, nil
}

func (r *conversationRepository) byChat(chatID int64, kind model.ConversationKind) bson.M {
	return db.NewFilter().Eq("chat_id", chatID).Eq("kind", kind).Build()
}
