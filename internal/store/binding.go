package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Event names a cursor transition a binding can fire on.
type Event string

const (
	EventSelect  Event = "select"
	EventRelease Event = "release"
	EventEnter   Event = "enter"
)

// ErrInvalidBinding is returned for a binding with an unknown event or hand.
var ErrInvalidBinding = errors.New("invalid binding")

// Binding runs a plugin action when a cursor selects or releases.
// An empty Hand matches either hand.
type Binding struct {
	ID         string          `json:"id"`
	Event      Event           `json:"event"`
	Hand       string          `json:"hand"`
	PluginName string          `json:"plugin_name"`
	ActionName string          `json:"action_name"`
	Config     json.RawMessage `json:"config"`
	Enabled    bool            `json:"enabled"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Validate checks the event and hand names.
func (b *Binding) Validate() error {
	switch b.Event {
	case EventSelect, EventRelease, EventEnter:
	default:
		return fmt.Errorf("%w: event %q", ErrInvalidBinding, b.Event)
	}
	switch b.Hand {
	case "", "Left", "Right":
	default:
		return fmt.Errorf("%w: hand %q", ErrInvalidBinding, b.Hand)
	}
	if b.PluginName == "" || b.ActionName == "" {
		return fmt.Errorf("%w: plugin and action are required", ErrInvalidBinding)
	}
	return nil
}

// BindingRepository provides CRUD operations for bindings.
type BindingRepository struct {
	db *sql.DB
}

// Bindings returns the binding repository for this store.
func (s *Store) Bindings() *BindingRepository {
	return &BindingRepository{db: s.db}
}

const bindingColumns = `id, event, hand, plugin_name, action_name, config, enabled, created_at`

// Create inserts a new binding.
func (r *BindingRepository) Create(b *Binding) error {
	if err := b.Validate(); err != nil {
		return err
	}
	b.CreatedAt = time.Now()

	_, err := r.db.Exec(
		`INSERT INTO bindings (`+bindingColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, string(b.Event), b.Hand, b.PluginName, b.ActionName, string(configOrEmpty(b.Config)),
		boolInt(b.Enabled), b.CreatedAt,
	)
	return err
}

// GetByID retrieves a binding by its ID.
func (r *BindingRepository) GetByID(id string) (*Binding, error) {
	b, err := scanBinding(r.db.QueryRow(`SELECT `+bindingColumns+` FROM bindings WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

// List retrieves all bindings, oldest first.
func (r *BindingRepository) List() ([]*Binding, error) {
	return r.query(`SELECT ` + bindingColumns + ` FROM bindings ORDER BY created_at, id`)
}

// ListForEvent returns the enabled bindings that fire for event on the
// named hand, including those bound to either hand.
func (r *BindingRepository) ListForEvent(event Event, hand string) ([]*Binding, error) {
	return r.query(
		`SELECT `+bindingColumns+` FROM bindings
		 WHERE event = ? AND enabled = 1 AND (hand = '' OR hand = ?)
		 ORDER BY created_at, id`,
		string(event), hand,
	)
}

// Update updates an existing binding.
func (r *BindingRepository) Update(b *Binding) error {
	if err := b.Validate(); err != nil {
		return err
	}

	result, err := r.db.Exec(
		`UPDATE bindings SET event = ?, hand = ?, plugin_name = ?, action_name = ?, config = ?, enabled = ?
		 WHERE id = ?`,
		string(b.Event), b.Hand, b.PluginName, b.ActionName, string(configOrEmpty(b.Config)),
		boolInt(b.Enabled), b.ID,
	)
	if err != nil {
		return err
	}
	return affected(result)
}

// Delete removes a binding by its ID.
func (r *BindingRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM bindings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affected(result)
}

func (r *BindingRepository) query(q string, args ...any) ([]*Binding, error) {
	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bindings []*Binding
	for rows.Next() {
		b, err := scanBinding(rows)
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return bindings, nil
}

func scanBinding(s scanner) (*Binding, error) {
	b := &Binding{}
	var event, config string
	var enabled int
	err := s.Scan(&b.ID, &event, &b.Hand, &b.PluginName, &b.ActionName, &config, &enabled, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	b.Event = Event(event)
	b.Config = json.RawMessage(config)
	b.Enabled = enabled != 0
	return b, nil
}

func configOrEmpty(c json.RawMessage) json.RawMessage {
	if len(c) == 0 {
		return json.RawMessage("{}")
	}
	return c
}
