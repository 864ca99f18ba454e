package engine

import (
	"context"

	"github.com/FRONT-END-BOOTCAMP-PLUS-4/sik-share-server/internal/model"
	"go.uber.org/zap"
)

// reconcile catches a user's read state up to the present: every message in
// the conversation authored by someone else and not yet receipted by the user
// gets a receipt, and the ids that transitioned to read are returned.
//
// Safe under concurrent invocation for the same user (reconnect storms):
// receipt creation is idempotent per (message, user), so however many times
// this runs the end state is one receipt per pair. A duplicate during the
// loop means a concurrent twin won the race for that id; the message is read
// either way, so the id still counts as transitioned.
func (e *Engine) reconcile(ctx context.Context, chatID int64, kind model.ConversationKind, userID string) []string {
	unread, err := e.messages.UnreadMessageIDs(ctx, chatID, kind, userID)
	if err != nil {
		e.logger.Error("unread lookup failed",
			zap.Int64("chat_id", chatID),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil
	}

	readIDs := make([]string, 0, len(unread))
	for _, messageID := range unread {
		if _, err := e.receipts.CreateReceipt(ctx, messageID, userID); err != nil {
			e.logger.Warn("receipt not recorded",
				zap.String("message_id", messageID),
				zap.String("user_id", userID),
				zap.Error(err),
			)
			continue
		}
		readIDs = append(readIDs, messageID)
	}

	if len(readIDs) > 0 {
		e.logger.Info("read state reconciled",
			zap.Int64("chat_id", chatID),
			zap.String("user_id", userID),
			zap.Int("count", len(readIDs)),
		)
	}
	return readIDs
}
