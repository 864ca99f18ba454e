package hub

import (
	"github.com/FRONT-END-BOOTCAMP-PLUS-4/sik-share-server/internal/model"
	"github.com/FRONT-END-BOOTCAMP-PLUS-4/sik-share-server/internal/presence"
)

// MonitorService provides methods to gather hub statistics
type MonitorService struct {
	hub      *Hub
	registry *presence.Registry
	rooms    *presence.Rooms
}

// NewMonitorService creates a new monitor service
func NewMonitorService(hub *Hub, registry *presence.Registry, rooms *presence.Rooms) *MonitorService {
	return &MonitorService{hub: hub, registry: registry, rooms: rooms}
}

// GetStats gathers and returns all hub statistics
func (ms *MonitorService) GetStats() model.MonitorResponse {
	connected := ms.hub.ConnectionCount()

	status := "healthy"
	if connected == 0 {
		status = "idle"
	}

	snapshot := ms.rooms.Snapshot()
	rooms := make([]model.RoomInfo, 0, len(snapshot))
	for roomID, members := range snapshot {
		rooms = append(rooms, model.RoomInfo{
			RoomID:        roomID,
			TotalMembers:  len(members),
			ConnectionIDs: members,
		})
	}

	clients := make([]model.ClientInfo, 0, connected)
	for _, connID := range ms.hub.connectionIDs() {
		info := model.ClientInfo{ConnectionID: connID}
		if userID, ok := ms.registry.UserOf(connID); ok {
			info.UserID = userID
		}
		clients = append(clients, info)
	}

	return model.MonitorResponse{
		Status:      status,
		Connections: connected,
		Identified:  ms.registry.Identified(),
		TotalRooms:  len(rooms),
		Rooms:       rooms,
		Clients:     clients,
	}
}
