package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventSystem_RegisterFire(t *testing.T) {
	es := NewEventSystem()
	var got []EventContext
	listener := &struct{ name string }{"a"}

	ok := es.Register(EVENT_CODE_MATERIAL_SAVED, listener, func(code EventCode, sender, inst interface{}, data EventContext) bool {
		assert.Equal(t, EVENT_CODE_MATERIAL_SAVED, code)
		assert.Same(t, listener, inst)
		got = append(got, data)
		return false
	})
	assert.True(t, ok)

	// duplicate listeners are rejected
	assert.False(t, es.Register(EVENT_CODE_MATERIAL_SAVED, listener, func(EventCode, interface{}, interface{}, EventContext) bool { return false }))

	es.Fire(EVENT_CODE_MATERIAL_SAVED, nil, EventContext{Path: "Assets/Rock/Rock.mat"})
	es.Fire(EVENT_CODE_ASSET_CREATED, nil, EventContext{Path: "ignored"})
	assert.Len(t, got, 1)
	assert.Equal(t, "Assets/Rock/Rock.mat", got[0].Path)

	assert.True(t, es.Unregister(EVENT_CODE_MATERIAL_SAVED, listener))
	assert.False(t, es.Unregister(EVENT_CODE_MATERIAL_SAVED, listener))
	es.Fire(EVENT_CODE_MATERIAL_SAVED, nil, EventContext{})
	assert.Len(t, got, 1)
}

func TestEventSystem_HandledStopsPropagation(t *testing.T) {
	es := NewEventSystem()
	calls := 0
	first, second := &struct{ id int }{1}, &struct{ id int }{2}
	es.Register(EVENT_CODE_TEXTURE_PACKED, first, func(EventCode, interface{}, interface{}, EventContext) bool {
		calls++
		return true
	})
	es.Register(EVENT_CODE_TEXTURE_PACKED, second, func(EventCode, interface{}, interface{}, EventContext) bool {
		calls++
		return false
	})

	assert.True(t, es.Fire(EVENT_CODE_TEXTURE_PACKED, nil, EventContext{}))
	assert.Equal(t, 1, calls)
}

func TestEventSystem_NilIsSilent(t *testing.T) {
	var es *EventSystem
	assert.False(t, es.Fire(EVENT_CODE_ASSET_IMPORTED, nil, EventContext{}))
}
