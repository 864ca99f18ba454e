package presence

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRooms_Join_And_Members(t *testing.T) {
	req := require.New(t)
	rooms := NewRooms()
	connA := uuid.NewString()
	connB := uuid.NewString()

	// Given an empty room map
	req.Empty(rooms.Members("share:7"))

	// When two connections join the same room
	rooms.Join(connA, "share:7")
	rooms.Join(connB, "share:7")

	// Then both are members
	members := rooms.Members("share:7")
	req.Len(members, 2)
	req.Contains(members, connA)
	req.Contains(members, connB)
}

func TestRooms_Join_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	rooms := NewRooms()
	connID := uuid.NewString()

	rooms.Join(connID, "share:7")
	rooms.Join(connID, "share:7")

	req.Len(rooms.Members("share:7"), 1)
}

func TestRooms_Connection_In_Multiple_Rooms(t *testing.T) {
	req := require.New(t)
	rooms := NewRooms()
	connID := uuid.NewString()

	// A client typically sits in its conversation room and its own
	// chat-list channel at the same time.
	rooms.Join(connID, "share:7")
	rooms.Join(connID, "groupbuy:3")
	rooms.Join(connID, "chatlist:user-1")

	req.Contains(rooms.Members("share:7"), connID)
	req.Contains(rooms.Members("groupbuy:3"), connID)
	req.Contains(rooms.Members("chatlist:user-1"), connID)
}

func TestRooms_Leave_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	rooms := NewRooms()
	connID := uuid.NewString()

	rooms.Join(connID, "share:7")
	rooms.Leave(connID, "share:7")
	rooms.Leave(connID, "share:7")

	req.Empty(rooms.Members("share:7"))

	// Leaving a room never joined is a no-op too
	rooms.Leave(connID, "share:99")
}

func TestRooms_Empty_Room_Is_Dropped(t *testing.T) {
	req := require.New(t)
	rooms := NewRooms()
	connID := uuid.NewString()

	rooms.Join(connID, "share:7")
	rooms.Leave(connID, "share:7")

	req.Empty(rooms.Snapshot())
}

func TestRooms_ForgetConn_Leaves_Every_Room(t *testing.T) {
	req := require.New(t)
	rooms := NewRooms()
	connID := uuid.NewString()
	other := uuid.NewString()

	// Given a connection in three rooms, one shared
	rooms.Join(connID, "share:7")
	rooms.Join(connID, "groupbuy:3")
	rooms.Join(connID, "chatlist:user-1")
	rooms.Join(other, "share:7")

	// When it disconnects
	left := rooms.ForgetConn(connID)

	// Then it is gone from every room but others keep their membership
	req.ElementsMatch([]string{"share:7", "groupbuy:3", "chatlist:user-1"}, left)
	req.Equal([]string{other}, rooms.Members("share:7"))
	req.Empty(rooms.Members("groupbuy:3"))

	// And a second forget returns nothing
	req.Empty(rooms.ForgetConn(connID))
}
