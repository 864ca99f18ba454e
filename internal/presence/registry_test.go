package presence

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Identify_And_Lookup(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connID := uuid.NewString()

	// Given no connection is identified
	_, ok := registry.UserOf(connID)
	req.False(ok)

	// When a connection identifies as a user
	registry.Identify(connID, "user-1")

	// Then both lookup directions resolve
	userID, ok := registry.UserOf(connID)
	req.True(ok)
	req.Equal("user-1", userID)

	resolved, ok := registry.ConnOf("user-1")
	req.True(ok)
	req.Equal(connID, resolved)
}

func TestRegistry_Identify_LastWriterWins(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	oldConn := uuid.NewString()
	newConn := uuid.NewString()

	// Given a user identified on an old connection
	registry.Identify(oldConn, "user-1")

	// When the same user identifies on a new connection
	registry.Identify(newConn, "user-1")

	// Then the new connection displaces the old mapping
	resolved, ok := registry.ConnOf("user-1")
	req.True(ok)
	req.Equal(newConn, resolved)

	_, ok = registry.UserOf(oldConn)
	req.False(ok)
}

func TestRegistry_Identify_Rebind_Connection(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connID := uuid.NewString()

	// Given a connection identified as one user
	registry.Identify(connID, "user-1")

	// When the connection re-identifies as another user
	registry.Identify(connID, "user-2")

	// Then the old user binding is gone
	userID, ok := registry.UserOf(connID)
	req.True(ok)
	req.Equal("user-2", userID)

	_, ok = registry.ConnOf("user-1")
	req.False(ok)
}

func TestRegistry_Forget(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connID := uuid.NewString()

	registry.Identify(connID, "user-1")
	registry.Forget(connID)

	_, ok := registry.UserOf(connID)
	req.False(ok)
	_, ok = registry.ConnOf("user-1")
	req.False(ok)
	req.Zero(registry.Identified())

	// Forgetting an unknown connection is a no-op
	registry.Forget(uuid.NewString())
}

func TestRegistry_Forget_Does_Not_Clobber_Newer_Binding(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	oldConn := uuid.NewString()
	newConn := uuid.NewString()

	// Given a reconnect displaced the old connection
	registry.Identify(oldConn, "user-1")
	registry.Identify(newConn, "user-1")

	// When the stale connection's disconnect arrives late
	registry.Forget(oldConn)

	// Then the newer binding survives
	resolved, ok := registry.ConnOf("user-1")
	req.True(ok)
	req.Equal(newConn, resolved)
}
