package wl

import (
	"deedles.dev/paber/wire"
	"golang.org/x/exp/maps"
)

// Global is an object announced through the registry.
type Global struct {
	Name      uint32
	Interface string
	Version   uint32
}

type Registry struct {
	Proxy
	globals map[uint32]Global
}

// RegistryGlobal announces a global object.
type RegistryGlobal Global

// RegistryGlobalRemove announces that a global object is gone.
type RegistryGlobalRemove struct {
	Name uint32
}

// Globals returns every global that is currently announced, keyed by
// name.
func (registry *Registry) Globals() map[uint32]Global {
	return maps.Clone(registry.globals)
}

func (registry *Registry) Interface() string {
	return RegistryInterface
}

func (registry *Registry) MethodName(op uint16) string {
	switch op {
	case 0:
		return "global"
	case 1:
		return "global_remove"
	}
	return "unknown"
}

func (registry *Registry) Dispatch(msg *wire.MessageBuffer) (any, error) {
	switch msg.Op() {
	case 0:
		ev := RegistryGlobal{
			Name:      msg.ReadUint(),
			Interface: msg.ReadString(),
			Version:   msg.ReadUint(),
		}
		if err := msg.Err(); err != nil {
			return nil, err
		}
		registry.globals[ev.Name] = Global(ev)
		return ev, nil

	case 1:
		ev := RegistryGlobalRemove{Name: msg.ReadUint()}
		if err := msg.Err(); err != nil {
			return nil, err
		}
		delete(registry.globals, ev.Name)
		return ev, nil
	}

	return nil, wire.UnknownOpError{Interface: RegistryInterface, Type: "event", Op: msg.Op()}
}

// Bind binds the global with the given name to obj, which is added to
// the State first.
func (registry *Registry) Bind(name uint32, obj wire.Object, version uint32) {
	registry.state.Add(obj)

	msg := wire.NewMessage(registry, 0, "bind")
	msg.WriteUint(name)
	msg.WriteNewID(wire.NewID{
		Interface: obj.Interface(),
		Version:   version,
		ID:        obj.ID(),
	})
	registry.state.Enqueue(msg)
}
