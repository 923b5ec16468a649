package core

import "sync"

// EventContext carries the asset an event refers to.
type EventContext struct {
	Path string
	GUID GUID
	// Kind is the asset type name, e.g. "texture" or "material".
	Kind string
}

// Asset event codes. Application should use codes beyond 255.
type EventCode int

const (
	// An asset file was written for the first time.
	EVENT_CODE_ASSET_CREATED EventCode = 0x01
	// An asset was (re)imported and its sidecar refreshed.
	EVENT_CODE_ASSET_IMPORTED EventCode = 0x02
	// An asset disappeared from disk.
	EVENT_CODE_ASSET_DELETED EventCode = 0x03
	// A material asset was saved, created or updated in place.
	EVENT_CODE_MATERIAL_SAVED EventCode = 0x04
	// A packed smoothness texture was baked.
	EVENT_CODE_TEXTURE_PACKED EventCode = 0x05

	MAX_EVENT_CODE EventCode = 0xFF
)

type registeredEvent struct {
	listener interface{}
	callback FnOnEvent
}

// Should return true if handled.
type FnOnEvent func(code EventCode, sender interface{}, listenerInst interface{}, data EventContext) bool

// EventSystem dispatches asset events to registered listeners.
type EventSystem struct {
	mu         sync.RWMutex
	registered map[EventCode][]*registeredEvent
}

func NewEventSystem() *EventSystem {
	return &EventSystem{
		registered: make(map[EventCode][]*registeredEvent),
	}
}

/**
 * Register to listen for when events are sent with the provided code. Events with duplicate
 * listeners will not be registered again and will cause this to return false.
 * @param code The event code to listen for.
 * @param listener A listener instance. Can be nil.
 * @param onEvent The callback invoked when the event code is fired.
 * @returns true if the event is successfully registered; otherwise false.
 */
func (es *EventSystem) Register(code EventCode, listener interface{}, onEvent FnOnEvent) bool {
	if code > MAX_EVENT_CODE || onEvent == nil {
		return false
	}
	es.mu.Lock()
	defer es.mu.Unlock()

	for _, e := range es.registered[code] {
		if e.listener == listener {
			return false
		}
	}
	es.registered[code] = append(es.registered[code], &registeredEvent{
		listener: listener,
		callback: onEvent,
	})
	return true
}

// Unregister stops the listener from receiving the code. Returns false when
// the listener was never registered.
func (es *EventSystem) Unregister(code EventCode, listener interface{}) bool {
	es.mu.Lock()
	defer es.mu.Unlock()

	events := es.registered[code]
	for i, e := range events {
		if e.listener == listener {
			es.registered[code] = append(events[:i], events[i+1:]...)
			return true
		}
	}
	return false
}

/**
 * Fires an event to listeners of the given code. If an event handler returns
 * true, the event is considered handled and is not passed on to any more listeners.
 * A nil EventSystem swallows every event.
 */
func (es *EventSystem) Fire(code EventCode, sender interface{}, data EventContext) bool {
	if es == nil {
		return false
	}
	es.mu.RLock()
	events := make([]*registeredEvent, len(es.registered[code]))
	copy(events, es.registered[code])
	es.mu.RUnlock()

	for _, e := range events {
		if e.callback(code, sender, e.listener, data) {
			return true
		}
	}
	return false
}

func (es *EventSystem) Shutdown() {
	es.mu.Lock()
	defer es.mu.Unlock()
	es.registered = make(map[EventCode][]*registeredEvent)
}
