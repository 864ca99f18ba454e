package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/FRONT-END-BOOTCAMP-PLUS-4/sik-share-server/internal/event"
	"github.com/FRONT-END-BOOTCAMP-PLUS-4/sik-share-server/internal/model"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errStoreDown = errors.New("store unavailable")

// memStore is a stateful in-memory stand-in for the three store interfaces.
// Receipt creation carries the same idempotency contract as the Mongo
// implementation: one receipt per (message, user), duplicates report
// created=false without erroring.
type memStore struct {
	mu          sync.Mutex
	failInserts bool
	failReads   bool

	messages []model.Message
	receipts map[string]map[string]struct{} // message id -> user ids
	convs    map[string]*model.Conversation
}

func newMemStore() *memStore {
	return &memStore{
		receipts: make(map[string]map[string]struct{}),
		convs:    make(map[string]*model.Conversation),
	}
}

func convKey(chatID int64, kind model.ConversationKind) string {
	return fmt.Sprintf("%s:%d", kind, chatID)
}

func (s *memStore) seedConversation(chatID int64, kind model.ConversationKind, participants ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.convs[convKey(chatID, kind)] = &model.Conversation{
		ChatID:         chatID,
		Kind:           kind,
		ParticipantIDs: participants,
		IsActive:       true,
	}
}

func (s *memStore) seedMessage(chatID int64, kind model.ConversationKind, senderID, content string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := model.Message{
		ID:       primitive.NewObjectID(),
		ChatID:   chatID,
		Kind:     kind,
		SenderID: senderID,
		Content:  content,
	}
	s.messages = append(s.messages, msg)
	return msg.ID.Hex()
}

func (s *memStore) InsertMessage(_ context.Context, msg *model.Message) (*model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failInserts {
		return nil, errStoreDown
	}
	saved := *msg
	saved.ID = primitive.NewObjectID()
	s.messages = append(s.messages, saved)
	out := saved
	return &out, nil
}

func (s *memStore) UnreadMessageIDs(_ context.Context, chatID int64, kind model.ConversationKind, userID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failReads {
		return nil, errStoreDown
	}
	var ids []string
	for _, msg := range s.messages {
		if msg.ChatID != chatID || msg.Kind != kind || msg.SenderID == userID {
			continue
		}
		if _, read := s.receipts[msg.ID.Hex()][userID]; !read {
			ids = append(ids, msg.ID.Hex())
		}
	}
	return ids, nil
}

func (s *memStore) CountUnread(ctx context.Context, chatID int64, kind model.ConversationKind, userID string) (int64, error) {
	ids, err := s.UnreadMessageIDs(ctx, chatID, kind, userID)
	if err != nil {
		return 0, err
	}
	return int64(len(ids)), nil
}

func (s *memStore) CreateReceipt(_ context.Context, messageID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failInserts {
		return false, errStoreDown
	}
	users, ok := s.receipts[messageID]
	if !ok {
		users = make(map[string]struct{})
		s.receipts[messageID] = users
	}
	if _, exists := users[userID]; exists {
		return false, nil
	}
	users[userID] = struct{}{}
	return true, nil
}

func (s *memStore) Conversation(_ context.Context, chatID int64, kind model.ConversationKind) (*model.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.convs[convKey(chatID, kind)]
	if !ok {
		return nil, nil
	}
	out := *conv
	return &out, nil
}

func (s *memStore) Participants(ctx context.Context, chatID int64, kind model.ConversationKind) ([]string, error) {
	conv, err := s.Conversation(ctx, chatID, kind)
	if err != nil || conv == nil {
		return nil, err
	}
	return conv.ParticipantIDs, nil
}

func (s *memStore) TouchLastMessage(_ context.Context, chatID int64, kind model.ConversationKind, last model.LastMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if conv, ok := s.convs[convKey(chatID, kind)]; ok {
		conv.LastMessage = &last
		conv.LastMessageAt = last.SentAt
	}
	return nil
}

func (s *memStore) hasReceipt(messageID, userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.receipts[messageID][userID]
	return ok
}

func (s *memStore) receiptCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, users := range s.receipts {
		n += len(users)
	}
	return n
}

func (s *memStore) messageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// recordingSink collects every event delivered to one fake connection.
type recordingSink struct {
	mu     sync.Mutex
	events []event.WsEvent
}

func (r *recordingSink) Send(ev event.WsEvent) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return true
}

func (r *recordingSink) named(name string) []event.WsEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []event.WsEvent
	for _, ev := range r.events {
		if ev.Event == name {
			out = append(out, ev)
		}
	}
	return out
}

func (r *recordingSink) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// sinkDir is a Directory backed by a plain map.
type sinkDir struct {
	mu    sync.Mutex
	sinks map[string]*recordingSink
}

func newSinkDir() *sinkDir {
	return &sinkDir{sinks: make(map[string]*recordingSink)}
}

func (d *sinkDir) connect(connID string) *recordingSink {
	d.mu.Lock()
	defer d.mu.Unlock()
	sink := &recordingSink{}
	d.sinks[connID] = sink
	return sink
}

func (d *sinkDir) Sink(connID string) (Sink, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	sink, ok := d.sinks[connID]
	return sink, ok
}
