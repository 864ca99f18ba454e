package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ConversationKind discriminates the two message domains.
type ConversationKind string

const (
	KindShare    ConversationKind = "share"    // pairwise owner/recipient chat
	KindGroupBuy ConversationKind = "groupBuy" // group-buy participant chat
)

// Valid reports whether k is one of the two known kinds.
func (k ConversationKind) Valid() bool {
	return k == KindShare || k == KindGroupBuy
}

// Message is a chat message document. Content is immutable after insert;
// read state lives in the read_receipts collection, never on the message row.
type Message struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ChatID    int64              `json:"chatId" bson:"chat_id"`
	Kind      ConversationKind   `json:"kind" bson:"kind"`
	SenderID  string             `json:"senderId" bson:"sender_id"`
	Content   string             `json:"content" bson:"content"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`

	// Read is derived for the broadcast payload only (co-presence read at
	// send time). It is never persisted.
	Read bool `json:"read" bson:"-"`
}

// ReadReceipt records that UserID has read MessageID. The collection holds a
// unique index on (message_id, user_id), so receipt creation is naturally
// idempotent per pair.
type ReadReceipt struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	MessageID primitive.ObjectID `json:"messageId" bson:"message_id"`
	UserID    string             `json:"userId" bson:"user_id"`
	ReadAt    time.Time          `json:"readAt" bson:"read_at"`
}

// ErrorPayload is an error response sent to a client over the socket.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
