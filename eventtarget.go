package mockxhr

import "slices"

// Listener receives dispatched events.
type Listener func(Event)

// ListenerHandle identifies a single listener registration for removal.
// Registering the same function twice yields two handles, and the function
// runs once per registration.
type ListenerHandle struct {
	eventType string
	id        int
}

// EventTarget is an ordered listener registry keyed by event name. The zero
// value is ready to use. Like the rest of the package it is meant to be
// driven from a single goroutine.
type EventTarget struct {
	listeners map[string][]listenerEntry
	nextID    int
}

type listenerEntry struct {
	id int
	fn Listener
}

// AddEventListener registers fn for the given event name and returns a
// handle that can later remove this registration. Listeners run in
// registration order.
func (t *EventTarget) AddEventListener(eventType string, fn Listener) ListenerHandle {
	if t.listeners == nil {
		t.listeners = make(map[string][]listenerEntry)
	}
	t.nextID++
	t.listeners[eventType] = append(t.listeners[eventType], listenerEntry{id: t.nextID, fn: fn})
	return ListenerHandle{eventType: eventType, id: t.nextID}
}

// RemoveEventListener removes the registration identified by h. An unknown
// or already-removed handle is a no-op.
func (t *EventTarget) RemoveEventListener(h ListenerHandle) {
	entries := t.listeners[h.eventType]
	for i, e := range entries {
		if e.id == h.id {
			t.listeners[h.eventType] = append(entries[:i:i], entries[i+1:]...)
			return
		}
	}
}

// DispatchEvent synchronously invokes the listeners registered for ev.Type
// at the moment of the call. Listeners added or removed by a running
// listener affect only subsequent dispatches. Panics from listeners are not
// recovered.
func (t *EventTarget) DispatchEvent(ev Event) {
	entries := t.listeners[ev.Type]
	if len(entries) == 0 {
		return
	}
	for _, e := range slices.Clone(entries) {
		e.fn(ev)
	}
}

// HasListeners reports whether at least one listener is registered for any
// event name on this target.
func (t *EventTarget) HasListeners() bool {
	for _, entries := range t.listeners {
		if len(entries) > 0 {
			return true
		}
	}
	return false
}
