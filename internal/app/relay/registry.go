/*
Package relay contains the core logic of the chat relay.

This file defines the Registry, which owns the mapping from case-insensitive
usernames to stable user identities and their live connections. The registry
is not self-locking: the hub serializes every mutation and every read used for
a delivery decision under its own lock.
*/
package relay

import (
	"fmt"
	"sort"
	"strings"

	"relaychat/internal/app/user"
	"relaychat/internal/pkg/errs"
	"relaychat/internal/pkg/randx"
)

// Identity is a registry record. Once minted, the record persists for the
// life of the process so that history attribution survives the user going
// offline; only the client binding comes and goes.
type Identity struct {
	// ID is the stable opaque identifier.
	ID string

	// Username is the display form of the name. Uniqueness and lookup use the
	// case-folded form; the display form is preserved.
	Username string

	// client is the live connection currently bound to this identity, or nil
	// when the user is offline. A live client is referenced by exactly one
	// identity at a time.
	client *Client
}

// Online reports whether the identity is currently bound to a live connection.
func (id *Identity) Online() bool {
	return id.client != nil
}

// Registry maps usernames to identities and maintains the derived
// connection-to-identity index so that no lookup ever scans.
type Registry struct {
	byName   map[string]*Identity // case-folded username -> identity
	byID     map[string]*Identity
	byClient map[*Client]*Identity
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName:   make(map[string]*Identity),
		byID:     make(map[string]*Identity),
		byClient: make(map[*Client]*Identity),
	}
}

// Register binds c to an identity for the desired username. If the desired
// name is already bound to a live connection, the first free "name#N" suffix
// is chosen instead. The final name reuses an existing offline record (and
// its stable id) when one exists; otherwise a fresh identity is minted.
// Returns ErrUsernameRequired when the name is empty after trimming.
func (r *Registry) Register(desired string, c *Client) (*Identity, *errs.CustomError) {
	desired = strings.TrimSpace(desired)
	if desired == "" {
		return nil, errs.NewError(errs.ErrUsernameRequired)
	}

	candidate := desired
	for suffix := 1; ; suffix++ {
		existing, taken := r.byName[fold(candidate)]
		if !taken || !existing.Online() {
			break
		}
		candidate = fmt.Sprintf("%s#%d", desired, suffix)
	}

	key := fold(candidate)
	ident, ok := r.byName[key]
	if ok {
		// Reuse the inactive record, keeping its stable id but adopting the
		// display form the user just asked for.
		ident.Username = candidate
	} else {
		ident = &Identity{
			ID:       randx.UserID(),
			Username: candidate,
		}
		r.byName[key] = ident
		r.byID[ident.ID] = ident
	}

	ident.client = c
	r.byClient[c] = ident

	return ident, nil
}

// IdentityFor returns the identity currently bound to c, or nil.
func (r *Registry) IdentityFor(c *Client) *Identity {
	return r.byClient[c]
}

// Lookup resolves a username (case-insensitive) or a stable id to its
// identity, online or not. Returns nil when neither matches.
func (r *Registry) Lookup(nameOrID string) *Identity {
	if ident, ok := r.byName[fold(nameOrID)]; ok {
		return ident
	}
	return r.byID[nameOrID]
}

// LookupID resolves a stable id to its identity, or nil.
func (r *Registry) LookupID(id string) *Identity {
	return r.byID[id]
}

// SetOffline clears the binding between c and its identity, if any, and
// returns the identity that went offline. The record itself is kept.
func (r *Registry) SetOffline(c *Client) *Identity {
	ident, ok := r.byClient[c]
	if !ok {
		return nil
	}

	delete(r.byClient, c)
	ident.client = nil

	return ident
}

// ListAll returns a presence snapshot of every identity registered this
// session, sorted by folded username so the ordering is stable.
func (r *Registry) ListAll() []user.Presence {
	keys := make([]string, 0, len(r.byName))
	for key := range r.byName {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	list := make([]user.Presence, 0, len(keys))
	for _, key := range keys {
		ident := r.byName[key]
		list = append(list, user.Presence{
			ID:       ident.ID,
			Username: ident.Username,
			Online:   ident.Online(),
		})
	}

	return list
}

// activeClients returns the live connection of every online identity.
func (r *Registry) activeClients() []*Client {
	clients := make([]*Client, 0, len(r.byClient))
	for c := range r.byClient {
		clients = append(clients, c)
	}
	return clients
}
