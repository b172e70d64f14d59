package core

import (
	"sort"
	"strings"
	"sync"
)

// Identity is the result of a successful login.
type Identity struct {
	Username string
	// Revoked is the connection that held Username before this login, if any.
	Revoked string
}

// IdentityRegistry binds usernames to live connections. A username maps to
// at most one connection; byUser and byConn are kept as mutual inverses.
type IdentityRegistry struct {
	mu     sync.RWMutex
	byUser map[string]string
	byConn map[string]string
}

// NewIdentityRegistry creates an empty registry.
func NewIdentityRegistry() *IdentityRegistry {
	return &IdentityRegistry{
		byUser: make(map[string]string),
		byConn: make(map[string]string),
	}
}

// Login binds username to connID. If another connection holds the name it
// loses it in the same critical section (take-over); that connection is
// reported in Identity.Revoked but is not closed.
func (r *IdentityRegistry) Login(connID, username string) (Identity, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return Identity{}, ErrInvalidUsername
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ident := Identity{Username: username}

	// A connection holds one name at a time.
	if prev, ok := r.byConn[connID]; ok && prev != username {
		delete(r.byUser, prev)
	}

	if holder, ok := r.byUser[username]; ok && holder != connID {
		delete(r.byConn, holder)
		ident.Revoked = holder
	}

	r.byUser[username] = connID
	r.byConn[connID] = username
	return ident, nil
}

// Logout drops the binding for connID. Calling it for an unbound
// connection is a no-op.
func (r *IdentityRegistry) Logout(connID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	username, ok := r.byConn[connID]
	if !ok {
		return "", false
	}
	delete(r.byConn, connID)
	delete(r.byUser, username)
	return username, true
}

// Resolve returns the connection bound to username.
func (r *IdentityRegistry) Resolve(username string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	connID, ok := r.byUser[username]
	return connID, ok
}

// WhoIs returns the username bound to connID.
func (r *IdentityRegistry) WhoIs(connID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	username, ok := r.byConn[connID]
	return username, ok
}

// OnlineUsernames returns a sorted snapshot of bound usernames.
func (r *IdentityRegistry) OnlineUsernames() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.byUser))
	for name := range r.byUser {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)
	return names
}
