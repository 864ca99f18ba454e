package event

import "encoding/json"

// Event Types - Client to Server
const (
	// EventSubscribeChatList - join the per-user chat-list channel
	EventSubscribeChatList = "subscribeChatList"

	// EventUnsubscribeChatList - leave the per-user chat-list channel
	EventUnsubscribeChatList = "unsubscribeChatList"

	// EventJoinRoom - join a pairwise share chat room
	EventJoinRoom = "joinRoom"

	// EventJoinGroupRoom - join a group-buy chat room
	EventJoinGroupRoom = "joinGroupRoom"

	// EventChatMessage - send a message into a share chat
	EventChatMessage = "chat message"

	// EventGroupChatMessage - send a message into a group-buy chat
	EventGroupChatMessage = "groupbuy chat message"

	// EventLeaveRoom - leave a conversation room
	EventLeaveRoom = "leaveRoom"
)

// Event Types - Server to Client
const (
	// EventMessagesRead - message ids that just transitioned to read
	EventMessagesRead = "messagesRead"

	// EventChatListUpdate - share chat-list delta for one conversation
	EventChatListUpdate = "chatListUpdate"

	// EventGroupChatListUpdate - group-buy chat-list delta
	EventGroupChatListUpdate = "groupBuyChatListUpdate"

	// EventError - error payload, sent to the originating connection only
	EventError = "error"
)

// WsEvent is the envelope for every socket frame in both directions. The
// payload stays raw until the event name decides how to decode it.
type WsEvent struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// New wraps a payload struct into a WsEvent envelope.
func New(name string, payload any) (WsEvent, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return WsEvent{}, err
	}
	return WsEvent{Event: name, Payload: raw}, nil
}

// SubscribeChatList is the payload of subscribeChatList / unsubscribeChatList.
type SubscribeChatList struct {
	UserID string `json:"userId"`
}

// JoinRoom is the payload of joinRoom and joinGroupRoom.
type JoinRoom struct {
	ChatID int64  `json:"chatId"`
	UserID string `json:"userId"`
}

// ChatMessage is the payload of "chat message" and "groupbuy chat message".
type ChatMessage struct {
	ChatID   int64  `json:"chatId"`
	SenderID string `json:"senderId"`
	Content  string `json:"content"`
}

// LeaveRoom is the payload of leaveRoom. Type defaults to the share kind
// when omitted.
type LeaveRoom struct {
	ChatID int64  `json:"chatId"`
	Type   string `json:"type,omitempty"`
}

// MessagesRead is the payload of the messagesRead server event.
type MessagesRead struct {
	ReadIDs []string `json:"readIds"`
}
