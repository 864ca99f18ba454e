package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Conversation is a chat room document. ChatID is the external id the
// relational side assigns to the share or group-buy chat; Kind tells the two
// apart. Participant ids are opaque external user ids.
type Conversation struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ChatID         int64              `json:"chatId" bson:"chat_id"`
	Kind           ConversationKind   `json:"kind" bson:"kind"`
	ParticipantIDs []string           `json:"participantIds" bson:"participant_ids"`
	CreatedAt      time.Time          `json:"createdAt" bson:"created_at"`
	LastMessageAt  time.Time          `json:"lastMessageAt" bson:"last_message_at"`
	LastMessage    *LastMessage       `json:"lastMessage" bson:"last_message"`
	IsActive       bool               `json:"isActive" bson:"is_active"`
}

// LastMessage stores the most recent message preview on the conversation.
type LastMessage struct {
	MessageID string    `json:"messageId" bson:"message_id"`
	Content   string    `json:"content" bson:"content"`
	SenderID  string    `json:"senderId" bson:"sender_id"`
	SentAt    time.Time `json:"sentAt" bson:"sent_at"`
}

// ConversationSummary is a conversation plus the unread count computed for
// a single user, as served by the chat-list REST endpoint.
type ConversationSummary struct {
	Conversation
	UnreadCount int64 `json:"unreadCount"`
}

// ChatListSummary is the delta pushed over a user's chat-list channel when a
// conversation's unread count or last message changes.
type ChatListSummary struct {
	ChatID        int64            `json:"chatId"`
	UnreadCount   int64            `json:"unreadCount"`
	LastMessage   string           `json:"lastMessage"`
	LastMessageAt time.Time        `json:"lastMessageAt"`
	Type          ConversationKind `json:"type"`
}
