// Package wire implements the Wayland wire protocol: message framing,
// argument encoding, and file descriptor passing over a Unix domain
// socket. It is primarily intended for use by protocol bindings.
package wire

// Object represents a Wayland protocol object.
type Object interface {
	// ID is the object's ID in the connection's object table, or 0 if
	// it hasn't been added yet.
	ID() uint32
	SetID(id uint32)

	// Delete is called once the object's ID has been released.
	Delete()

	// Interface is the protocol interface name, such as "wl_surface".
	Interface() string

	// MethodName returns the name of the event (for clients) with the
	// given opcode. It is used for debug output.
	MethodName(op uint16) string

	// Dispatch decodes the message in the buffer and returns the
	// resulting event value.
	Dispatch(msg *MessageBuffer) (any, error)
}

// Strict is implemented by objects whose events must decode cleanly.
// Decode failures for other objects' events are dropped by the
// dispatcher.
type Strict interface {
	Object
	Strict() bool
}

// NewID is the expanded form of a new_id argument whose interface is
// not fixed by the protocol, such as in wl_registry.bind.
type NewID struct {
	Interface string
	Version   uint32
	ID        uint32
}

// padding returns the number of bytes needed to pad n to a 32-bit
// boundary.
func padding(n uint32) uint32 {
	return (4 - (n % 4)) % 4
}
