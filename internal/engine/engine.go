// Package engine keeps socket presence, room membership, and read-receipt
// state consistent for the two chat domains. Events for different
// conversations interleave freely; nothing here serializes two sends into the
// same conversation. Per-row insert atomicity and the receipt unique index
// are what prevent corruption, so delivery order within a room follows
// persistence-commit order, not wall-clock send order.
package engine

import (
	"context"

	"github.com/FRONT-END-BOOTCAMP-PLUS-4/sik-share-server/internal/model"
	"github.com/FRONT-END-BOOTCAMP-PLUS-4/sik-share-server/internal/presence"
	"go.uber.org/zap"
)

// MessageStore is the slice of message persistence the engine consumes.
type MessageStore interface {
	InsertMessage(ctx context.Context, msg *model.Message) (*model.Message, error)
	UnreadMessageIDs(ctx context.Context, chatID int64, kind model.ConversationKind, userID string) ([]string, error)
	CountUnread(ctx context.Context, chatID int64, kind model.ConversationKind, userID string) (int64, error)
}

// ReceiptStore records read receipts; creation must be idempotent per
// (message, user).
type ReceiptStore interface {
	CreateReceipt(ctx context.Context, messageID, userID string) (bool, error)
}

// ConversationStore resolves participants and the last-message preview.
type ConversationStore interface {
	Conversation(ctx context.Context, chatID int64, kind model.ConversationKind) (*model.Conversation, error)
	Participants(ctx context.Context, chatID int64, kind model.ConversationKind) ([]string, error)
	TouchLastMessage(ctx context.Context, chatID int64, kind model.ConversationKind, last model.LastMessage) error
}

// Engine coordinates the connection registry, room membership, message
// intake, read-receipt reconciliation, and broadcast fanout. One instance per
// server process; membership is authoritative for this instance only.
type Engine struct {
	registry *presence.Registry
	rooms    *presence.Rooms
	fanout   *Fanout
	messages MessageStore
	receipts ReceiptStore
	convs    ConversationStore
	logger   *zap.Logger
}

type Deps struct {
	Registry      *presence.Registry
	Rooms         *presence.Rooms
	Fanout        *Fanout
	Messages      MessageStore
	Receipts      ReceiptStore
	Conversations ConversationStore
	Logger        *zap.Logger
}

func New(deps Deps) *Engine {
	return &Engine{
		registry: deps.Registry,
		rooms:    deps.Rooms,
		fanout:   deps.Fanout,
		messages: deps.Messages,
		receipts: deps.Receipts,
		convs:    deps.Conversations,
		logger:   deps.Logger,
	}
}

// SubscribeChatList joins the connection to the user's chat-list channel and
// binds the connection to that user.
func (e *Engine) SubscribeChatList(connID, userID string) {
	e.registry.Identify(connID, userID)
	e.rooms.Join(connID, ChatListRoom(userID))

	e.logger.Debug("chat list subscribed",
		zap.String("conn_id", connID),
		zap.String("user_id", userID),
	)
}

// UnsubscribeChatList leaves the user's chat-list channel. The registry
// binding stays; only disconnect purges it.
func (e *Engine) UnsubscribeChatList(connID, userID string) {
	e.rooms.Leave(connID, ChatListRoom(userID))
}

// JoinRoom enters a conversation room, reconciles the joining user's read
// state, announces the transition to the room, and refreshes the joiner's own
// chat-list entry. Reconciliation failures do not undo the join; the next
// join catches up.
func (e *Engine) JoinRoom(ctx context.Context, connID string, chatID int64, kind model.ConversationKind, userID string) {
	e.registry.Identify(connID, userID)

	roomID := RoomFor(kind, chatID)
	e.rooms.Join(connID, roomID)

	e.logger.Info("room joined",
		zap.String("conn_id", connID),
		zap.String("room_id", roomID),
		zap.String("user_id", userID),
	)

	readIDs := e.reconcile(ctx, chatID, kind, userID)
	if len(readIDs) > 0 {
		e.fanout.PublishReadTransition(roomID, readIDs)
	}

	// The joiner's own unread count just changed; peers' counts did not.
	if summary, err := e.listSummary(ctx, chatID, kind, userID); err == nil {
		e.fanout.PublishListUpdate(userID, summary)
	}
}

// LeaveRoom exits a conversation room. Unknown rooms are a no-op.
func (e *Engine) LeaveRoom(connID string, chatID int64, kind model.ConversationKind) {
	roomID := RoomFor(kind, chatID)
	e.rooms.Leave(connID, roomID)

	e.logger.Info("room left",
		zap.String("conn_id", connID),
		zap.String("room_id", roomID),
	)
}

// Disconnect purges every trace of a connection: all room memberships and
// the registry binding. Runs synchronously so no later fanout can resolve the
// dead connection.
func (e *Engine) Disconnect(connID string) {
	left := e.rooms.ForgetConn(connID)
	e.registry.Forget(connID)

	e.logger.Info("connection purged",
		zap.String("conn_id", connID),
		zap.Int("rooms_left", len(left)),
	)
}

// listSummary builds a user's chat-list entry from the conversation's
// last-message preview and the user's own unread count.
func (e *Engine) listSummary(ctx context.Context, chatID int64, kind model.ConversationKind, userID string) (model.ChatListSummary, error) {
	unread, err := e.messages.CountUnread(ctx, chatID, kind, userID)
	if err != nil {
		e.logger.Error("unread count failed",
			zap.Int64("chat_id", chatID),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return model.ChatListSummary{}, err
	}

	summary := model.ChatListSummary{
		ChatID:      chatID,
		UnreadCount: unread,
		Type:        kind,
	}

	conversation, err := e.convs.Conversation(ctx, chatID, kind)
	if err == nil && conversation != nil {
		summary.LastMessageAt = conversation.LastMessageAt
		if conversation.LastMessage != nil {
			summary.LastMessage = conversation.LastMessage.Content
		}
	}
	return summary, nil
}
