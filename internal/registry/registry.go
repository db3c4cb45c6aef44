// Package registry tracks the live cursors of a session and notifies
// listeners as cursors come and go.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ayusman/bird/internal/cursor"
	"github.com/ayusman/bird/internal/hand"
	"github.com/google/uuid"
)

// DefaultUser is the user a cursor belongs to unless told otherwise.
const DefaultUser = "DefaultUser"

var (
	// ErrNotFound is returned for an unknown cursor ID.
	ErrNotFound = errors.New("cursor not registered")

	// ErrDuplicate is returned when a user already has a cursor for a hand.
	ErrDuplicate = errors.New("cursor already registered for hand")

	// ErrNilCursor is returned when registering a nil cursor.
	ErrNilCursor = errors.New("nil cursor")
)

// Entry is a registered cursor and its latest published snapshot.
type Entry struct {
	ID        string         `json:"id"`
	User      string         `json:"user"`
	Chirality hand.Chirality `json:"-"`
	Hand      string         `json:"hand"`
	CreatedAt time.Time      `json:"created_at"`

	Tracking bool         `json:"tracking"`
	Ticks    uint64       `json:"ticks"`
	State    cursor.State `json:"state"`
	Debug    cursor.Debug `json:"debug"`

	// Cursor belongs to the goroutine that updates it. Other readers use
	// the snapshot fields above.
	Cursor *cursor.Cursor `json:"-"`
}

// Listener is called with a copy of an entry.
type Listener func(Entry)

// Registry holds the live cursors. It is safe for concurrent use.
type Registry struct {
	entries   map[string]*Entry
	created   map[int]Listener
	destroyed map[int]Listener
	nextSub   int
	mu        sync.RWMutex
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		entries:   make(map[string]*Entry),
		created:   make(map[int]Listener),
		destroyed: make(map[int]Listener),
	}
}

// Register adds c for user's hand and notifies created listeners. An empty
// user becomes DefaultUser.
func (r *Registry) Register(user string, chirality hand.Chirality, c *cursor.Cursor) (Entry, error) {
	if c == nil {
		return Entry{}, ErrNilCursor
	}
	if user == "" {
		user = DefaultUser
	}

	r.mu.Lock()
	for _, e := range r.entries {
		if e.User == user && e.Chirality == chirality {
			r.mu.Unlock()
			return Entry{}, fmt.Errorf("%w: %s %s", ErrDuplicate, user, chirality)
		}
	}

	e := &Entry{
		ID:        uuid.New().String(),
		User:      user,
		Chirality: chirality,
		Hand:      chirality.String(),
		CreatedAt: time.Now(),
		Cursor:    c,
	}
	r.entries[e.ID] = e
	snapshot := *e
	listeners := collect(r.created)
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(snapshot)
	}
	return snapshot, nil
}

// Unregister removes a cursor and notifies destroyed listeners.
func (r *Registry) Unregister(id string) error {
	r.mu.Lock()
	e, ok := r.entries[id]
	if !ok {
		r.mu.Unlock()
		return ErrNotFound
	}
	delete(r.entries, id)
	snapshot := *e
	listeners := collect(r.destroyed)
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(snapshot)
	}
	return nil
}

// Publish records the cursor's current state as the entry snapshot.
// It must be called from the goroutine that updates the cursor.
func (r *Registry) Publish(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return ErrNotFound
	}
	e.Tracking = e.Cursor.Tracking()
	e.Ticks = e.Cursor.Ticks()
	e.State = e.Cursor.State()
	e.Debug = e.Cursor.Debug()
	return nil
}

// Get returns a copy of the entry with the given ID.
func (r *Registry) Get(id string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Find returns the cursor of user's hand.
func (r *Registry) Find(user string, chirality hand.Chirality) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.entries {
		if e.User == user && e.Chirality == chirality {
			return *e, true
		}
	}
	return Entry{}, false
}

// All returns copies of every entry, oldest first.
func (r *Registry) All() []Entry {
	return r.filter(func(*Entry) bool { return true })
}

// ForUser returns the entries that belong to user, oldest first.
func (r *Registry) ForUser(user string) []Entry {
	return r.filter(func(e *Entry) bool { return e.User == user })
}

// Len returns the number of registered cursors.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// SetUser reassigns a cursor to another user.
func (r *Registry) SetUser(id, user string) error {
	if user == "" {
		user = DefaultUser
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return ErrNotFound
	}
	for _, other := range r.entries {
		if other.ID != id && other.User == user && other.Chirality == e.Chirality {
			return fmt.Errorf("%w: %s %s", ErrDuplicate, user, e.Chirality)
		}
	}
	e.User = user
	return nil
}

// OnCreated subscribes fn to registrations. The returned func unsubscribes.
func (r *Registry) OnCreated(fn Listener) func() {
	return r.subscribe(r.created, fn)
}

// OnDestroyed subscribes fn to removals. The returned func unsubscribes.
func (r *Registry) OnDestroyed(fn Listener) func() {
	return r.subscribe(r.destroyed, fn)
}

func (r *Registry) subscribe(set map[int]Listener, fn Listener) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextSub
	r.nextSub++
	set[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			delete(set, id)
		})
	}
}

func (r *Registry) filter(keep func(*Entry) bool) []Entry {
	r.mu.RLock()
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		if keep(e) {
			out = append(out, *e)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func collect(set map[int]Listener) []Listener {
	keys := make([]int, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	out := make([]Listener, len(keys))
	for i, k := range keys {
		out[i] = set[k]
	}
	return out
}
