package setting

import (
	"fmt"

	"github.com/google/uuid"
)

// EventType names a lifecycle event on a setting or group. Arbitrary event
// types may be connected and invoked; the constants below are invoked
// automatically by the tree and the persistence coordinator.
type EventType string

// Events invoked automatically.
const (
	EventBeforeSetValue EventType = "before-set-value"
	EventValueChanged   EventType = "value-changed"
	EventAfterSetValue  EventType = "after-set-value"

	EventBeforeReset EventType = "before-reset"
	EventAfterReset  EventType = "after-reset"

	EventBeforeLoad EventType = "before-load"
	EventAfterLoad  EventType = "after-load"
	EventBeforeSave EventType = "before-save"
	EventAfterSave  EventType = "after-save"

	EventBeforeLoadGroup EventType = "before-load-group"
	EventAfterLoadGroup  EventType = "after-load-group"
	EventBeforeSaveGroup EventType = "before-save-group"
	EventAfterSaveGroup  EventType = "after-save-group"
)

// EventHandler is called when an event is invoked on the node it was
// connected to.
type EventHandler func(n Node)

type eventEntry struct {
	id      string
	typ     EventType
	fn      EventHandler
	enabled bool
}

// Events provides nodes with the capability of connecting and invoking
// event handlers. It is embedded in Setting and Group.
//
// Events is not safe for concurrent use; the tree assumes one logical owner
// at a time.
type Events struct {
	owner    Node
	handlers map[EventType][]*eventEntry
	byID     map[string]*eventEntry
}

func (e *Events) init(owner Node) {
	e.owner = owner
	e.handlers = make(map[EventType][]*eventEntry)
	e.byID = make(map[string]*eventEntry)
}

// Connect registers a handler for the given event type and returns its ID.
// Handlers run in connection order, each receiving the node the event was
// invoked on.
func (e *Events) Connect(typ EventType, fn EventHandler) string {
	entry := &eventEntry{
		id:      uuid.NewString(),
		typ:     typ,
		fn:      fn,
		enabled: true,
	}
	e.handlers[typ] = append(e.handlers[typ], entry)
	e.byID[entry.id] = entry
	return entry.id
}

// Disconnect removes the handler with the given ID.
func (e *Events) Disconnect(id string) error {
	entry, ok := e.byID[id]
	if !ok {
		return fmt.Errorf("event handler %q does not exist", id)
	}
	delete(e.byID, id)

	entries := e.handlers[entry.typ]
	for i, candidate := range entries {
		if candidate == entry {
			e.handlers[entry.typ] = append(entries[:i], entries[i+1:]...)
			break
		}
	}
	return nil
}

// SetEnabled enables or disables the handler with the given ID without
// removing it.
func (e *Events) SetEnabled(id string, enabled bool) error {
	entry, ok := e.byID[id]
	if !ok {
		return fmt.Errorf("event handler %q does not exist", id)
	}
	entry.enabled = enabled
	return nil
}

// HasHandler reports whether a handler with the given ID is connected.
func (e *Events) HasHandler(id string) bool {
	_, ok := e.byID[id]
	return ok
}

// Invoke calls all enabled handlers connected for the given event type.
func (e *Events) Invoke(typ EventType) {
	for _, entry := range e.handlers[typ] {
		if entry.enabled {
			entry.fn(e.owner)
		}
	}
}
