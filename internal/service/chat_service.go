package service

import (
	"context"

	"github.com/FRONT-END-BOOTCAMP-PLUS-4/sik-share-server/internal/db"
	"github.com/FRONT-END-BOOTCAMP-PLUS-4/sik-share-server/internal/model"
	"github.com/FRONT-END-BOOTCAMP-PLUS-4/sik-share-server/internal/repo"
	"go.uber.org/zap"
)

// ChatService backs the REST endpoints: the initial chat-list snapshot and
// paged message history. The live deltas for the same data flow through the
// socket engine.
type ChatService interface {
	ListConversations(ctx context.Context, userID string) ([]model.ConversationSummary, error)
	RoomMessages(ctx context.Context, chatID int64, kind model.ConversationKind, page int64) (*db.PaginatedResult[model.Message], error)
}

type chatService struct {
	messages repo.MessageRepository
	convs    repo.ConversationRepository
	logger   *zap.Logger
}

func NewChatService(messages repo.MessageRepository, convs repo.ConversationRepository, logger *zap.Logger) ChatService {
	return &chatService{
		messages: messages,
		convs:    convs,
		logger:   logger,
	}
}

// ListConversations returns every conversation the user participates in,
// each with that user's unread count and the last-message preview.
func (s *chatService) ListConversations(ctx context.Context, userID string) ([]model.ConversationSummary, error) {
	conversations, err := s.convs.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]model.ConversationSummary, 0, len(conversations))
	for _, conv := range conversations {
		unread, err := s.messages.CountUnread(ctx, conv.ChatID, conv.Kind, userID)
		if err != nil {
			// A stale badge beats a failed list load.
			s.logger.Warn("unread count failed",
				zap.Int64("chat_id", conv.ChatID),
				zap.String("user_id", userID),
				zap.Error(err),
			)
		}
		summaries = append(summaries, model.ConversationSummary{
			Conversation: conv,
			UnreadCount:  unread,
		})
	}
	return summaries, nil
}

func (s *chatService) RoomMessages(ctx context.Context, chatID int64, kind model.ConversationKind, page int64) (*db.PaginatedResult[model.Message], error) {
	return s.messages.FilterMessages(ctx, chatID, kind, page)
}
