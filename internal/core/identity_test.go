package core

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityLoginRejectsBlankNames(t *testing.T) {
	reg := NewIdentityRegistry()

	for _, name := range []string{"", "   ", "\t\n"} {
		_, err := reg.Login("c1", name)
		require.ErrorIs(t, err, ErrInvalidUsername, "name %q", name)
	}
	_, ok := reg.WhoIs("c1")
	assert.False(t, ok)
	assert.Empty(t, reg.OnlineUsernames())
}

func TestIdentityLoginTrimsAndResolves(t *testing.T) {
	reg := NewIdentityRegistry()

	ident, err := reg.Login("c1", "  alice ")
	require.NoError(t, err)
	assert.Equal(t, "alice", ident.Username)
	assert.Empty(t, ident.Revoked)

	conn, ok := reg.Resolve("alice")
	require.True(t, ok)
	assert.Equal(t, "c1", conn)

	name, ok := reg.WhoIs("c1")
	require.True(t, ok)
	assert.Equal(t, "alice", name)
}

func TestIdentityTakeOver(t *testing.T) {
	reg := NewIdentityRegistry()

	_, err := reg.Login("old", "alice")
	require.NoError(t, err)

	ident, err := reg.Login("new", "alice")
	require.NoError(t, err)
	assert.Equal(t, "old", ident.Revoked)

	conn, ok := reg.Resolve("alice")
	require.True(t, ok)
	assert.Equal(t, "new", conn)

	_, ok = reg.WhoIs("old")
	assert.False(t, ok, "revoked connection must lose its binding")

	// Logging out the revoked connection must not touch the new holder.
	_, ok = reg.Logout("old")
	assert.False(t, ok)
	conn, ok = reg.Resolve("alice")
	require.True(t, ok)
	assert.Equal(t, "new", conn)
}

func TestIdentityLogoutIsIdempotent(t *testing.T) {
	reg := NewIdentityRegistry()
	_, err := reg.Login("c1", "alice")
	require.NoError(t, err)

	name, ok := reg.Logout("c1")
	require.True(t, ok)
	assert.Equal(t, "alice", name)

	_, ok = reg.Logout("c1")
	assert.False(t, ok)
	_, ok = reg.Resolve("alice")
	assert.False(t, ok)
}

func TestIdentityOnlineUsernamesSorted(t *testing.T) {
	reg := NewIdentityRegistry()
	for i, name := range []string{"carol", "alice", "bob"} {
		_, err := reg.Login(fmt.Sprintf("c%d", i), name)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"alice", "bob", "carol"}, reg.OnlineUsernames())
}

func TestIdentityConcurrentTakeOverKeepsMapsInverse(t *testing.T) {
	reg := NewIdentityRegistry()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			conn := fmt.Sprintf("c%d", i)
			_, _ = reg.Login(conn, "alice")
			if i%3 == 0 {
				reg.Logout(conn)
			}
		}(i)
	}
	wg.Wait()

	reg.mu.RLock()
	defer reg.mu.RUnlock()
	assert.LessOrEqual(t, len(reg.byUser), 1)
	assert.Equal(t, len(reg.byUser), len(reg.byConn))
	for user, conn := range reg.byUser {
		assert.Equal(t, user, reg.byConn[conn])
	}
}
