package wl

import "deedles.dev/paber/wire"

// Display is the wl_display singleton, always object 1.
type Display struct {
	Proxy
	registry *Registry
}

// DisplayError is a fatal error reported by the compositor.
type DisplayError struct {
	ObjectID uint32
	Code     uint32
	Message  string
}

// DisplayDeleteID acknowledges the destruction of an object.
type DisplayDeleteID struct {
	ID uint32
}

func (display *Display) Interface() string {
	return DisplayInterface
}

func (display *Display) MethodName(op uint16) string {
	switch op {
	case 0:
		return "error"
	case 1:
		return "delete_id"
	}
	return "unknown"
}

func (display *Display) Dispatch(msg *wire.MessageBuffer) (any, error) {
	switch msg.Op() {
	case 0:
		ev := DisplayError{
			ObjectID: msg.ReadObject(),
			Code:     msg.ReadUint(),
			Message:  msg.ReadString(),
		}
		return ev, msg.Err()

	case 1:
		ev := DisplayDeleteID{ID: msg.ReadUint()}
		if err := msg.Err(); err != nil {
			return nil, err
		}
		display.state.Delete(ev.ID)
		return ev, nil
	}

	return nil, wire.UnknownOpError{Interface: DisplayInterface, Type: "event", Op: msg.Op()}
}

// Sync asks the compositor to fire the returned callback once every
// request sent before it has been processed.
func (display *Display) Sync() *Callback {
	callback := Callback{Proxy: NewProxy(display.state)}
	display.state.Add(&callback)

	msg := wire.NewMessage(display, 0, "sync")
	msg.WriteUint(callback.ID())
	display.state.Enqueue(msg)

	return &callback
}

// GetRegistry returns the registry, creating it on the first call.
func (display *Display) GetRegistry() *Registry {
	if display.registry != nil {
		return display.registry
	}

	registry := Registry{
		Proxy:   NewProxy(display.state),
		globals: make(map[uint32]Global),
	}
	display.state.Add(&registry)

	msg := wire.NewMessage(display, 1, "get_registry")
	msg.WriteUint(registry.ID())
	display.state.Enqueue(msg)

	display.registry = &registry
	return &registry
}
