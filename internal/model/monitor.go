package model

// -----------------------------------------------------------------
// Monitor API Response Models
// -----------------------------------------------------------------

// MonitorResponse is the main response for the monitor API
type MonitorResponse struct {
	Status      string       `json:"status"`      // "healthy" or "idle"
	Connections int          `json:"connections"` // Clients currently connected
	Identified  int          `json:"identified"`  // Connections bound to a user id
	TotalRooms  int          `json:"totalRooms"`  // Rooms with at least one member
	Rooms       []RoomInfo   `json:"rooms"`       // Details of each room
	Clients     []ClientInfo `json:"clients"`     // List of connected clients
}

// RoomInfo contains information about a single room
type RoomInfo struct {
	RoomID        string   `json:"roomId"`
	TotalMembers  int      `json:"totalMembers"`
	ConnectionIDs []string `json:"connectionIds"`
}

// ClientInfo contains information about a connected client
type ClientInfo struct {
	ConnectionID string `json:"connectionId"`
	UserID       string `json:"userId,omitempty"` // Empty until the client identifies
}
