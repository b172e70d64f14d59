package core

// Presence derives the online-user list from the identity registry.
type Presence struct {
	identities *IdentityRegistry
}

// NewPresence creates a presence broadcaster over identities.
func NewPresence(identities *IdentityRegistry) *Presence {
	return &Presence{identities: identities}
}

// Snapshot returns the sorted list of online usernames.
func (p *Presence) Snapshot() []string {
	return p.identities.OnlineUsernames()
}

// Event builds the onlineUsers event for the current snapshot.
func (p *Presence) Event() *Event {
	return &Event{Kind: EventOnlineUsers, Users: p.Snapshot()}
}
