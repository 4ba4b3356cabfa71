// Package objstore implements the table that maps protocol object IDs
// to objects.
package objstore

import (
	"deedles.dev/paber/wire"
	"golang.org/x/exp/maps"
)

type Store struct {
	objects map[uint32]wire.Object
	nextID  uint32
}

// New returns a Store that allocates IDs starting at start. Clients
// allocate from 1, servers from 0xFF000000.
func New(start uint32) *Store {
	return &Store{
		objects: make(map[uint32]wire.Object),
		nextID:  start,
	}
}

// Add stores obj, allocating an ID for it first if it doesn't have one.
// IDs are never reused.
func (s *Store) Add(obj wire.Object) {
	id := obj.ID()
	if id == 0 {
		id = s.nextID
		obj.SetID(id)
		s.nextID++
	}

	s.objects[id] = obj
}

func (s *Store) Get(id uint32) wire.Object {
	return s.objects[id]
}

func (s *Store) Delete(id uint32) {
	obj := s.objects[id]
	delete(s.objects, id)
	if obj != nil {
		obj.Delete()
	}
}

// Len returns the number of live objects.
func (s *Store) Len() int {
	return len(s.objects)
}

// Objects returns a snapshot of the table.
func (s *Store) Objects() map[uint32]wire.Object {
	return maps.Clone(s.objects)
}
