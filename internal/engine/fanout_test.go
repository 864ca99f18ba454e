package engine

import (
	"testing"

	"github.com/FRONT-END-BOOTCAMP-PLUS-4/sik-share-server/internal/event"
	"github.com/FRONT-END-BOOTCAMP-PLUS-4/sik-share-server/internal/model"
	"github.com/FRONT-END-BOOTCAMP-PLUS-4/sik-share-server/internal/presence"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newTestFanout() (*Fanout, *presence.Rooms, *sinkDir) {
	rooms := presence.NewRooms()
	dir := newSinkDir()
	return NewFanout(rooms, dir, zap.NewNop()), rooms, dir
}

func TestFanout_RoomIsolation(t *testing.T) {
	req := require.New(t)
	fan, rooms, dir := newTestFanout()

	inRoom := dir.connect("conn-in")
	rooms.Join("conn-in", ShareRoom(7))
	elsewhere := dir.connect("conn-out")
	rooms.Join("conn-out", ShareRoom(8))

	fan.PublishMessage(ShareRoom(7), &model.Message{
		ID:       primitive.NewObjectID(),
		ChatID:   7,
		Kind:     model.KindShare,
		SenderID: "userA",
		Content:  "hi",
	})

	req.Equal(1, inRoom.count())
	req.Zero(elsewhere.count())
}

func TestFanout_SenderReceivesOwnEcho(t *testing.T) {
	req := require.New(t)
	fan, rooms, dir := newTestFanout()

	sender := dir.connect("conn-s")
	rooms.Join("conn-s", ShareRoom(7))

	fan.PublishMessage(ShareRoom(7), &model.Message{ID: primitive.NewObjectID(), Kind: model.KindShare})

	req.Len(sender.named(event.EventChatMessage), 1)
}

func TestFanout_ListUpdateTargetsOneUserOnly(t *testing.T) {
	req := require.New(t)
	fan, rooms, dir := newTestFanout()

	target := dir.connect("conn-b")
	rooms.Join("conn-b", ChatListRoom("userB"))
	other := dir.connect("conn-c")
	rooms.Join("conn-c", ChatListRoom("userC"))

	fan.PublishListUpdate("userB", model.ChatListSummary{ChatID: 7, UnreadCount: 1, Type: model.KindShare})

	req.Equal(1, target.count())
	req.Zero(other.count())
}

func TestFanout_GroupSummaryUsesGroupEventName(t *testing.T) {
	req := require.New(t)
	fan, rooms, dir := newTestFanout()

	sink := dir.connect("conn-p")
	rooms.Join("conn-p", ChatListRoom("p1"))

	fan.PublishListUpdate("p1", model.ChatListSummary{ChatID: 3, Type: model.KindGroupBuy})

	req.Len(sink.named(event.EventGroupChatListUpdate), 1)
	req.Empty(sink.named(event.EventChatListUpdate))
}

func TestFanout_EmptyReadTransitionIsSilent(t *testing.T) {
	req := require.New(t)
	fan, rooms, dir := newTestFanout()

	sink := dir.connect("conn-a")
	rooms.Join("conn-a", ShareRoom(7))

	fan.PublishReadTransition(ShareRoom(7), nil)

	req.Zero(sink.count())
}

func TestFanout_UnknownRoomIsNoOp(t *testing.T) {
	fan, _, _ := newTestFanout()

	// No members, no directory entries: must not panic or emit
	fan.PublishReadTransition(ShareRoom(99), []string{"x"})
	fan.PublishListUpdate("ghost", model.ChatListSummary{})
}
