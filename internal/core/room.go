package core

import (
	"sort"
	"sync"
)

// GlobalRoom always exists and is joined on login.
const GlobalRoom = "global"

// room is the membership set of one named room.
type room struct {
	name    string
	members map[string]struct{}
}

func (r *room) add(username string) bool {
	if _, exists := r.members[username]; exists {
		return false
	}
	r.members[username] = struct{}{}
	return true
}

func (r *room) remove(username string) bool {
	if _, exists := r.members[username]; !exists {
		return false
	}
	delete(r.members, username)
	return true
}

func (r *room) empty() bool {
	return len(r.members) == 0
}

// RoomDirectory tracks which usernames are members of which rooms.
// Rooms are created lazily on first join; empty rooms other than
// GlobalRoom are dropped. Message history lives in MessageLog and is not
// affected by the directory dropping a room.
type RoomDirectory struct {
	mu    sync.RWMutex
	rooms map[string]*room
}

// NewRoomDirectory creates a directory holding only the global room.
func NewRoomDirectory() *RoomDirectory {
	d := &RoomDirectory{rooms: make(map[string]*room)}
	d.getOrCreate(GlobalRoom)
	return d
}

// getOrCreate must be called with mu held for writing.
func (d *RoomDirectory) getOrCreate(name string) *room {
	if r, ok := d.rooms[name]; ok {
		return r
	}
	r := &room{name: name, members: make(map[string]struct{})}
	d.rooms[name] = r
	return r
}

// Join adds username to the room. Returns true if newly added.
func (d *RoomDirectory) Join(name, username string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.getOrCreate(name).add(username)
}

// Leave removes username from the room. Leaving a room one is not in
// is a no-op and returns false.
func (d *RoomDirectory) Leave(name, username string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.leaveLocked(name, username)
}

func (d *RoomDirectory) leaveLocked(name, username string) bool {
	r, ok := d.rooms[name]
	if !ok {
		return false
	}
	removed := r.remove(username)
	if r.empty() && name != GlobalRoom {
		delete(d.rooms, name)
	}
	return removed
}

// Switch leaves from and joins to under one lock, so no reader observes
// the username in neither or both rooms.
func (d *RoomDirectory) Switch(from, to, username string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if from != "" && from != to {
		d.leaveLocked(from, username)
	}
	d.getOrCreate(to).add(username)
}

// LeaveAll removes username from every room and returns the rooms it left, sorted.
func (d *RoomDirectory) LeaveAll(username string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	var left []string
	for name := range d.rooms {
		if d.leaveLocked(name, username) {
			left = append(left, name)
		}
	}
	sort.Strings(left)
	return left
}

// MembersOf returns the sorted member usernames of a room.
func (d *RoomDirectory) MembersOf(name string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	r, ok := d.rooms[name]
	if !ok {
		return []string{}
	}
	members := make([]string, 0, len(r.members))
	for username := range r.members {
		members = append(members, username)
	}
	sort.Strings(members)
	return members
}

// IsMember reports whether username is in the room.
func (d *RoomDirectory) IsMember(name, username string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	r, ok := d.rooms[name]
	if !ok {
		return false
	}
	_, member := r.members[username]
	return member
}

// Rooms returns the sorted names of all live rooms.
func (d *RoomDirectory) Rooms() []string {
	d.mu.RLock()
	names := make([]string, 0, len(d.rooms))
	for name := range d.rooms {
		names = append(names, name)
	}
	d.mu.RUnlock()

	sort.Strings(names)
	return names
}
