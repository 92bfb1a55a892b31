package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAssignsIdentity(t *testing.T) {
	r := NewRegistry()
	c := newTestClient(nil)

	ident, cerr := r.Register("Alice", c)
	require.Nil(t, cerr)

	assert.Equal(t, "Alice", ident.Username)
	assert.NotEmpty(t, ident.ID)
	assert.True(t, ident.Online())
	assert.Same(t, ident, r.IdentityFor(c))
}

func TestRegisterRejectsEmptyUsername(t *testing.T) {
	r := NewRegistry()

	_, cerr := r.Register("   ", newTestClient(nil))
	require.NotNil(t, cerr)
	assert.Equal(t, "Username required", cerr.Message)
}

func TestRegisterDisambiguatesActiveName(t *testing.T) {
	r := NewRegistry()

	first, cerr := r.Register("alice", newTestClient(nil))
	require.Nil(t, cerr)

	second, cerr := r.Register("Alice", newTestClient(nil))
	require.Nil(t, cerr)

	assert.Equal(t, "Alice#1", second.Username)
	assert.NotEqual(t, first.ID, second.ID)

	third, cerr := r.Register("ALICE", newTestClient(nil))
	require.Nil(t, cerr)
	assert.Equal(t, "ALICE#2", third.Username)
}

func TestRegisterReusesInactiveRecord(t *testing.T) {
	r := NewRegistry()
	c := newTestClient(nil)

	first, cerr := r.Register("Bob", c)
	require.Nil(t, cerr)
	firstID := first.ID

	r.SetOffline(c)

	again, cerr := r.Register("bob", newTestClient(nil))
	require.Nil(t, cerr)

	assert.Equal(t, firstID, again.ID)
	assert.Equal(t, "bob", again.Username)
}

func TestAtMostOneActiveIdentityPerFoldedName(t *testing.T) {
	r := NewRegistry()

	for _, name := range []string{"Carol", "carol", "CAROL", "caRol"} {
		_, cerr := r.Register(name, newTestClient(nil))
		require.Nil(t, cerr)
	}

	active := make(map[string]int)
	for _, p := range r.ListAll() {
		if p.Online {
			active[fold(p.Username)]++
		}
	}
	for folded, count := range active {
		assert.Equal(t, 1, count, "folded name %q bound to %d active connections", folded, count)
	}
}

func TestSetOfflineKeepsRecord(t *testing.T) {
	r := NewRegistry()
	c := newTestClient(nil)

	ident, cerr := r.Register("Dave", c)
	require.Nil(t, cerr)

	gone := r.SetOffline(c)
	assert.Same(t, ident, gone)
	assert.False(t, ident.Online())
	assert.Nil(t, r.IdentityFor(c))

	// History attribution still resolves.
	assert.Same(t, ident, r.Lookup("dave"))
	assert.Same(t, ident, r.LookupID(ident.ID))

	// A second SetOffline for the same connection is a no-op.
	assert.Nil(t, r.SetOffline(c))
}

func TestLookupByNameOrID(t *testing.T) {
	r := NewRegistry()

	ident, cerr := r.Register("Erin", newTestClient(nil))
	require.Nil(t, cerr)

	assert.Same(t, ident, r.Lookup("erin"))
	assert.Same(t, ident, r.Lookup("ERIN"))
	assert.Same(t, ident, r.Lookup(ident.ID))
	assert.Nil(t, r.Lookup("nobody"))
}

func TestListAllIsStableAndComplete(t *testing.T) {
	r := NewRegistry()

	c1 := newTestClient(nil)
	_, cerr := r.Register("zoe", c1)
	require.Nil(t, cerr)
	_, cerr = r.Register("Adam", newTestClient(nil))
	require.Nil(t, cerr)

	r.SetOffline(c1)

	list := r.ListAll()
	require.Len(t, list, 2)
	assert.Equal(t, "Adam", list[0].Username)
	assert.True(t, list[0].Online)
	assert.Equal(t, "zoe", list[1].Username)
	assert.False(t, list[1].Online)

	assert.Equal(t, list, r.ListAll())
}
