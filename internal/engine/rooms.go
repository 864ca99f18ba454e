package engine

import (
	"fmt"

	"github.com/FRONT-END-BOOTCAMP-PLUS-4/sik-share-server/internal/model"
)

// Room id namespaces. Conversation rooms and chat-list channels share one
// flat namespace in the membership manager; the prefix keeps them apart.
func ShareRoom(chatID int64) string {
	return fmt.Sprintf("share:%d", chatID)
}

func GroupRoom(chatID int64) string {
	return fmt.Sprintf("groupbuy:%d", chatID)
}

// ChatListRoom is the per-user channel carrying conversation-list deltas.
func ChatListRoom(userID string) string {
	return "chatlist:" + userID
}

// RoomFor maps a conversation to its room id.
func RoomFor(kind model.ConversationKind, chatID int64) string {
	if kind == model.KindGroupBuy {
		return GroupRoom(chatID)
	}
	return ShareRoom(chatID)
}
