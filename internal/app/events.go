package app

import (
	"context"
	"log"
	"time"

	"github.com/ayusman/bird/internal/cursor"
	"github.com/ayusman/bird/internal/hand"
	"github.com/ayusman/bird/internal/plugin"
	"github.com/ayusman/bird/internal/store"
)

// EventKind is what happened to a cursor on a tick.
type EventKind string

const (
	EventSelect  EventKind = "select"
	EventRelease EventKind = "release"
	EventLost    EventKind = "lost"
	EventFound   EventKind = "found"
	EventEnter   EventKind = "enter"
)

// Status is a cursor's condition as shown to the user.
type Status string

const (
	StatusSelected Status = "selected"
	StatusReleased Status = "released"
	StatusLost     Status = "lost"
)

// Event is a change in a cursor worth reacting to.
type Event struct {
	Kind     EventKind      `json:"kind"`
	CursorID string         `json:"cursor_id"`
	Hand     hand.Chirality `json:"hand"`
	User     string         `json:"user"`
	Zone     string         `json:"zone,omitempty"`
	State    cursor.State   `json:"state"`
	Time     time.Time      `json:"time"`
}

// bindingEvent maps selection and zone events to the stored binding event;
// other kinds have no bindings.
func (k EventKind) bindingEvent() (store.Event, bool) {
	switch k {
	case EventSelect:
		return store.EventSelect, true
	case EventRelease:
		return store.EventRelease, true
	case EventEnter:
		return store.EventEnter, true
	default:
		return "", false
	}
}

func (a *App) emit(events []Event) {
	if len(events) == 0 {
		return
	}

	a.mu.RLock()
	listeners := append([]func(Event){}, a.listeners...)
	a.mu.RUnlock()

	for _, e := range events {
		for _, fn := range listeners {
			fn(e)
		}
		a.dispatchBindings(e)
	}
}

// dispatchBindings runs every enabled binding for the event in the
// background so a slow plugin never stalls the tick loop.
func (a *App) dispatchBindings(e Event) {
	if a.config.Store == nil {
		return
	}
	be, ok := e.Kind.bindingEvent()
	if !ok {
		return
	}

	bindings, err := a.config.Store.Bindings().ListForEvent(be, e.Hand.String())
	if err != nil {
		log.Printf("Error loading bindings for %s: %v", e.Kind, err)
		return
	}

	for _, b := range bindings {
		req := &plugin.Request{
			Action:   b.ActionName,
			Event:    string(be),
			Hand:     e.Hand.String(),
			User:     e.User,
			CursorID: e.CursorID,
			Zone:     e.Zone,
			Cursor:   e.State,
			Config:   b.Config,
		}
		name := b.PluginName

		a.dispatch.Add(1)
		go func() {
			defer a.dispatch.Done()
			if _, err := a.plugins.Run(context.Background(), name, req); err != nil {
				log.Printf("Plugin %s action %s failed: %v", name, req.Action, err)
				return
			}
			log.Printf("Action triggered: %s/%s on %s %s", name, req.Action, req.Hand, req.Event)
		}()
	}
}

// WaitDispatch blocks until every plugin started so far has finished.
func (a *App) WaitDispatch() {
	a.dispatch.Wait()
}
