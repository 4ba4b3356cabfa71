package objstore

import (
	"testing"

	"deedles.dev/paber/wire"
	"github.com/stretchr/testify/assert"
)

type object struct {
	id      uint32
	deleted bool
}

func (obj *object) ID() uint32 { return obj.id }

func (obj *object) SetID(id uint32) { obj.id = id }

func (obj *object) Delete() { obj.deleted = true }

func (obj *object) Interface() string { return "object" }

func (obj *object) MethodName(uint16) string { return "" }

func (obj *object) Dispatch(*wire.MessageBuffer) (any, error) { return nil, nil }

func TestAllocation(t *testing.T) {
	s := New(1)

	a, b := &object{}, &object{}
	s.Add(a)
	s.Add(b)
	assert.Equal(t, uint32(1), a.ID())
	assert.Equal(t, uint32(2), b.ID())
	assert.Same(t, b, s.Get(2))

	s.Delete(1)
	assert.True(t, a.deleted)
	assert.Nil(t, s.Get(1))
	assert.Equal(t, 1, s.Len())

	c := &object{}
	s.Add(c)
	assert.Equal(t, uint32(3), c.ID(), "IDs must not be reused")

	fixed := &object{id: 0xFF000000}
	s.Add(fixed)
	assert.Same(t, fixed, s.Get(0xFF000000))
	assert.Len(t, s.Objects(), 3)
}
