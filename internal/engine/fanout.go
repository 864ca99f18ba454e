package engine

import (
	"github.com/FRONT-END-BOOTCAMP-PLUS-4/sik-share-server/internal/event"
	"github.com/FRONT-END-BOOTCAMP-PLUS-4/sik-share-server/internal/model"
	"github.com/FRONT-END-BOOTCAMP-PLUS-4/sik-share-server/internal/presence"
	"go.uber.org/zap"
)

// Sink is one deliverable connection. Send returns false when the event could
// not be enqueued (client closed or egress full); fanout treats that as a
// dropped delivery, never as an error.
type Sink interface {
	Send(ev event.WsEvent) bool
}

// Directory resolves a connection id to its live sink. The transport layer
// implements it; tests substitute a map.
type Directory interface {
	Sink(connID string) (Sink, bool)
}

// Fanout delivers events to the current members of a room. It never touches
// persistence: membership and the directory are all it reads.
type Fanout struct {
	rooms  *presence.Rooms
	dir    Directory
	logger *zap.Logger
}

func NewFanout(rooms *presence.Rooms, dir Directory, logger *zap.Logger) *Fanout {
	return &Fanout{
		rooms:  rooms,
		dir:    dir,
		logger: logger,
	}
}

// PublishMessage echoes a persisted message to every connection in its room,
// the sender's own included; the echo doubles as the send acknowledgement.
func (f *Fanout) PublishMessage(roomID string, msg *model.Message) {
	name := event.EventChatMessage
	if msg.Kind == model.KindGroupBuy {
		name = event.EventGroupChatMessage
	}

	ev, err := event.New(name, msg)
	if err != nil {
		f.logger.Error("failed to encode message event", zap.Error(err))
		return
	}
	f.emit(roomID, ev)
}

// PublishReadTransition tells room members which message ids are now read.
func (f *Fanout) PublishReadTransition(roomID string, readIDs []string) {
	if len(readIDs) == 0 {
		return
	}

	ev, err := event.New(event.EventMessagesRead, event.MessagesRead{ReadIDs: readIDs})
	if err != nil {
		f.logger.Error("failed to encode read transition", zap.Error(err))
		return
	}
	f.emit(roomID, ev)
}

// PublishListUpdate delivers a conversation-list delta to one user's
// chat-list channel only. Users without a subscribed connection simply miss
// the delta; their next list fetch shows current state.
func (f *Fanout) PublishListUpdate(userID string, summary model.ChatListSummary) {
	name := event.EventChatListUpdate
	if summary.Type == model.KindGroupBuy {
		name = event.EventGroupChatListUpdate
	}

	ev, err := event.New(name, summary)
	if err != nil {
		f.logger.Error("failed to encode list update", zap.Error(err))
		return
	}
	f.emit(ChatListRoom(userID), ev)
}

func (f *Fanout) emit(roomID string, ev event.WsEvent) {
	for _, connID := range f.rooms.Members(roomID) {
		sink, ok := f.dir.Sink(connID)
		if !ok {
			// left between the snapshot and now
			continue
		}
		if !sink.Send(ev) {
			f.logger.Warn("event dropped",
				zap.String("room_id", roomID),
				zap.String("conn_id", connID),
				zap.String("event", ev.Event),
			)
		}
	}
}
