package wl

import "deedles.dev/paber/wire"

type Buffer struct {
	Proxy
}

// BufferRelease is sent when the compositor no longer reads from the
// buffer.
type BufferRelease struct{}

func (buffer *Buffer) Interface() string {
	return BufferInterface
}

func (buffer *Buffer) MethodName(op uint16) string {
	if op == 0 {
		return "release"
	}
	return "unknown"
}

func (buffer *Buffer) Dispatch(msg *wire.MessageBuffer) (any, error) {
	if msg.Op() != 0 {
		return nil, wire.UnknownOpError{Interface: BufferInterface, Type: "event", Op: msg.Op()}
	}
	return BufferRelease{}, nil
}

func (buffer *Buffer) Destroy() {
	msg := wire.NewMessage(buffer, 0, "destroy")
	buffer.state.Enqueue(msg)
}
