package registry

import (
	"sync"
	"testing"

	"github.com/ayusman/bird/internal/cursor"
	"github.com/ayusman/bird/internal/hand"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCursor(t *testing.T) (*cursor.Cursor, *hand.MockSource) {
	t.Helper()
	src := hand.NewMockSource()
	src.SetFrame(hand.CuppedHandFrame())
	c, err := cursor.New(src, cursor.DefaultConfig())
	require.NoError(t, err)
	return c, src
}

func TestRegister(t *testing.T) {
	r := New()
	c, _ := newCursor(t)

	e, err := r.Register("", hand.Left, c)
	require.NoError(t, err)

	_, err = uuid.Parse(e.ID)
	assert.NoError(t, err, "IDs are UUIDs")
	assert.Equal(t, DefaultUser, e.User)
	assert.Equal(t, "Left", e.Hand)
	assert.Equal(t, 1, r.Len())

	got, ok := r.Get(e.ID)
	require.True(t, ok)
	assert.Equal(t, e.ID, got.ID)

	found, ok := r.Find(DefaultUser, hand.Left)
	require.True(t, ok)
	assert.Equal(t, e.ID, found.ID)

	_, ok = r.Find(DefaultUser, hand.Right)
	assert.False(t, ok)
}

func TestRegister_Errors(t *testing.T) {
	r := New()
	c, _ := newCursor(t)

	_, err := r.Register("alice", hand.Left, nil)
	assert.ErrorIs(t, err, ErrNilCursor)

	_, err = r.Register("alice", hand.Left, c)
	require.NoError(t, err)

	other, _ := newCursor(t)
	_, err = r.Register("alice", hand.Left, other)
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = r.Register("alice", hand.Right, other)
	assert.NoError(t, err, "the other hand is free")

	_, err = r.Register("bob", hand.Left, other)
	assert.NoError(t, err, "another user's left hand is free")
}

func TestUnregister(t *testing.T) {
	r := New()
	c, _ := newCursor(t)
	e, err := r.Register("", hand.Right, c)
	require.NoError(t, err)

	require.NoError(t, r.Unregister(e.ID))
	assert.Equal(t, 0, r.Len())
	_, ok := r.Get(e.ID)
	assert.False(t, ok)

	assert.ErrorIs(t, r.Unregister(e.ID), ErrNotFound)
}

func TestListing(t *testing.T) {
	r := New()
	a, _ := newCursor(t)
	b, _ := newCursor(t)
	c, _ := newCursor(t)

	ea, err := r.Register("alice", hand.Left, a)
	require.NoError(t, err)
	_, err = r.Register("bob", hand.Left, b)
	require.NoError(t, err)
	ec, err := r.Register("alice", hand.Right, c)
	require.NoError(t, err)

	assert.Len(t, r.All(), 3)

	alice := r.ForUser("alice")
	require.Len(t, alice, 2)
	ids := []string{alice[0].ID, alice[1].ID}
	assert.ElementsMatch(t, []string{ea.ID, ec.ID}, ids)

	assert.Empty(t, r.ForUser("carol"))
}

func TestSetUser(t *testing.T) {
	r := New()
	a, _ := newCursor(t)
	b, _ := newCursor(t)

	ea, err := r.Register("alice", hand.Left, a)
	require.NoError(t, err)
	eb, err := r.Register("bob", hand.Left, b)
	require.NoError(t, err)

	assert.ErrorIs(t, r.SetUser(eb.ID, "alice"), ErrDuplicate)
	assert.ErrorIs(t, r.SetUser("missing", "alice"), ErrNotFound)

	require.NoError(t, r.SetUser(ea.ID, "carol"))
	got, _ := r.Get(ea.ID)
	assert.Equal(t, "carol", got.User)

	require.NoError(t, r.SetUser(ea.ID, ""))
	got, _ = r.Get(ea.ID)
	assert.Equal(t, DefaultUser, got.User)
}

func TestPublish(t *testing.T) {
	r := New()
	c, _ := newCursor(t)
	e, err := r.Register("", hand.Left, c)
	require.NoError(t, err)

	before, _ := r.Get(e.ID)
	assert.False(t, before.Tracking)

	_, err = c.Update()
	require.NoError(t, err)
	require.NoError(t, r.Publish(e.ID))

	after, _ := r.Get(e.ID)
	assert.True(t, after.Tracking)
	assert.Equal(t, uint64(1), after.Ticks)
	assert.Equal(t, c.State(), after.State)
	assert.Len(t, after.Debug.FitPoints, hand.NumFitPoints)

	assert.ErrorIs(t, r.Publish("missing"), ErrNotFound)
}

func TestListeners(t *testing.T) {
	r := New()

	var mu sync.Mutex
	var created, destroyed []string

	unsubCreated := r.OnCreated(func(e Entry) {
		mu.Lock()
		defer mu.Unlock()
		created = append(created, e.ID)
	})
	r.OnDestroyed(func(e Entry) {
		mu.Lock()
		defer mu.Unlock()
		destroyed = append(destroyed, e.ID)
	})

	c, _ := newCursor(t)
	e, err := r.Register("", hand.Left, c)
	require.NoError(t, err)
	require.NoError(t, r.Unregister(e.ID))

	unsubCreated()
	unsubCreated()

	c2, _ := newCursor(t)
	_, err = r.Register("", hand.Right, c2)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{e.ID}, created)
	assert.Equal(t, []string{e.ID}, destroyed)
}

func TestListenerMayUseRegistry(t *testing.T) {
	r := New()
	var seen int
	r.OnCreated(func(e Entry) {
		seen = r.Len()
	})

	c, _ := newCursor(t)
	_, err := r.Register("", hand.Left, c)
	require.NoError(t, err)
	assert.Equal(t, 1, seen)
}
