package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoomDirectoryJoinIsIdempotent(t *testing.T) {
	d := NewRoomDirectory()

	assert.True(t, d.Join("devs", "alice"))
	assert.False(t, d.Join("devs", "alice"))
	assert.Equal(t, []string{"alice"}, d.MembersOf("devs"))
	assert.Equal(t, []string{"devs", GlobalRoom}, d.Rooms())
}

func TestRoomDirectoryLeave(t *testing.T) {
	d := NewRoomDirectory()
	d.Join("devs", "alice")
	d.Join("devs", "bob")

	assert.True(t, d.Leave("devs", "alice"))
	assert.False(t, d.Leave("devs", "alice"), "leaving twice is a no-op")
	assert.False(t, d.Leave("ghost", "alice"), "leaving an unknown room is a no-op")
	assert.Equal(t, []string{"bob"}, d.MembersOf("devs"))

	d.Leave("devs", "bob")
	assert.Equal(t, []string{GlobalRoom}, d.Rooms(), "empty rooms are collected")
	assert.Empty(t, d.MembersOf("devs"))
}

func TestRoomDirectoryKeepsGlobal(t *testing.T) {
	d := NewRoomDirectory()
	d.Join(GlobalRoom, "alice")
	d.Leave(GlobalRoom, "alice")
	assert.Equal(t, []string{GlobalRoom}, d.Rooms())
}

func TestRoomDirectorySwitch(t *testing.T) {
	d := NewRoomDirectory()
	d.Join(GlobalRoom, "alice")

	d.Switch(GlobalRoom, "devs", "alice")
	assert.False(t, d.IsMember(GlobalRoom, "alice"))
	assert.True(t, d.IsMember("devs", "alice"))

	// Switching from a room the user is not in still joins the target.
	d.Switch("random", "ops", "alice")
	assert.True(t, d.IsMember("ops", "alice"))
	assert.True(t, d.IsMember("devs", "alice"))

	d.Switch("ops", "ops", "alice")
	assert.True(t, d.IsMember("ops", "alice"))
}

func TestRoomDirectoryLeaveAll(t *testing.T) {
	d := NewRoomDirectory()
	d.Join(GlobalRoom, "alice")
	d.Join("devs", "alice")
	d.Join("devs", "bob")

	left := d.LeaveAll("alice")
	assert.Equal(t, []string{"devs", GlobalRoom}, left)
	assert.Empty(t, d.MembersOf(GlobalRoom))
	assert.Equal(t, []string{"bob"}, d.MembersOf("devs"))
}
