package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/FRONT-END-BOOTCAMP-PLUS-4/sik-share-server/internal/model"
	"go.uber.org/zap"
)

// SendMessage validates and persists an incoming message, applies co-presence
// read-marking for pairwise chats, and fans the result out to the room and
// the affected chat-list channels.
//
// The store write is the gate: if it fails nothing is broadcast and the error
// goes back to the sender's connection only. connID is the sender's
// connection, excluded from the co-presence check but not from the echo.
func (e *Engine) SendMessage(ctx context.Context, connID string, chatID int64, kind model.ConversationKind, senderID, content string) error {
	msg := &model.Message{
		ChatID:    chatID,
		Kind:      kind,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	saved, err := e.messages.InsertMessage(ctx, msg)
	if err != nil {
		return fmt.Errorf("persist message: %w", err)
	}

	roomID := RoomFor(kind, chatID)

	// A co-present recipient reads the message before the first broadcast,
	// so their client never flashes it as unread. Group chats skip this:
	// their unread population resolves lazily on each member's next join.
	if kind == model.KindShare {
		saved.Read = e.markCoPresentRead(ctx, connID, roomID, saved)
	}

	last := model.LastMessage{
		MessageID: saved.ID.Hex(),
		Content:   saved.Content,
		SenderID:  saved.SenderID,
		SentAt:    saved.CreatedAt,
	}
	if err := e.convs.TouchLastMessage(ctx, chatID, kind, last); err != nil {
		// Preview is cosmetic; the message itself is already durable.
		e.logger.Warn("last message preview not updated",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}

	e.fanout.PublishMessage(roomID, saved)
	e.publishListUpdates(ctx, saved)
	return nil
}

// markCoPresentRead creates immediate receipts for every other user currently
// in the room and reports whether any were recorded.
func (e *Engine) markCoPresentRead(ctx context.Context, senderConn, roomID string, msg *model.Message) bool {
	read := false
	for _, connID := range e.rooms.Members(roomID) {
		if connID == senderConn {
			continue
		}

		userID, ok := e.registry.UserOf(connID)
		if !ok || userID == msg.SenderID {
			continue
		}

		if _, err := e.receipts.CreateReceipt(ctx, msg.ID.Hex(), userID); err != nil {
			// Join-time reconciliation will catch this message up.
			e.logger.Warn("co-presence receipt failed",
				zap.String("message_id", msg.ID.Hex()),
				zap.String("user_id", userID),
				zap.Error(err),
			)
			continue
		}
		read = true
	}
	return read
}

// publishListUpdates pushes a fresh summary to every participant's chat-list
// channel, each with their own independently computed unread count. The
// sender is included: their list shows the new last message at unread zero.
func (e *Engine) publishListUpdates(ctx context.Context, msg *model.Message) {
	participants, err := e.convs.Participants(ctx, msg.ChatID, msg.Kind)
	if err != nil {
		e.logger.Error("participants lookup failed",
			zap.Int64("chat_id", msg.ChatID),
			zap.Error(err),
		)
		return
	}

	for _, userID := range participants {
		unread, err := e.messages.CountUnread(ctx, msg.ChatID, msg.Kind, userID)
		if err != nil {
			e.logger.Error("unread count failed",
				zap.Int64("chat_id", msg.ChatID),
				zap.String("user_id", userID),
				zap.Error(err),
			)
			continue
		}

		e.fanout.PublishListUpdate(userID, model.ChatListSummary{
			ChatID:        msg.ChatID,
			UnreadCount:   unread,
			LastMessage:   msg.Content,
			LastMessageAt: msg.CreatedAt,
			Type:          msg.Kind,
		})
	}
}
