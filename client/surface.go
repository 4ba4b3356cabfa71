package wl

import "deedles.dev/paber/wire"

type Surface struct {
	Proxy
}

type SurfaceEnter struct {
	Output uint32
}

type SurfaceLeave struct {
	Output uint32
}

type SurfacePreferredBufferScale struct {
	Factor int32
}

type SurfacePreferredBufferTransform struct {
	Transform OutputTransform
}

func (surface *Surface) Interface() string {
	return SurfaceInterface
}

func (surface *Surface) MethodName(op uint16) string {
	switch op {
	case 0:
		return "enter"
	case 1:
		return "leave"
	case 2:
		return "preferred_buffer_scale"
	case 3:
		return "preferred_buffer_transform"
	}
	return "unknown"
}

func (surface *Surface) Dispatch(msg *wire.MessageBuffer) (any, error) {
	switch msg.Op() {
	case 0:
		ev := SurfaceEnter{Output: msg.ReadObject()}
		return ev, msg.Err()
	case 1:
		ev := SurfaceLeave{Output: msg.ReadObject()}
		return ev, msg.Err()
	case 2:
		ev := SurfacePreferredBufferScale{Factor: msg.ReadInt()}
		return ev, msg.Err()
	case 3:
		ev := SurfacePreferredBufferTransform{Transform: OutputTransform(msg.ReadUint())}
		return ev, msg.Err()
	}

	return nil, wire.UnknownOpError{Interface: SurfaceInterface, Type: "event", Op: msg.Op()}
}

func (surface *Surface) Destroy() {
	msg := wire.NewMessage(surface, 0, "destroy")
	surface.state.Enqueue(msg)
}

// Attach sets the buffer to be displayed after the next commit. A nil
// buffer unmaps the surface.
func (surface *Surface) Attach(buffer *Buffer, x, y int32) {
	msg := wire.NewMessage(surface, 1, "attach")
	if buffer == nil {
		msg.WriteObject(nil)
	} else {
		msg.WriteObject(buffer)
	}
	msg.WriteInt(x)
	msg.WriteInt(y)
	surface.state.Enqueue(msg)
}

// Damage marks a region of the surface, in surface-local coordinates,
// as changed.
func (surface *Surface) Damage(x, y, width, height int32) {
	msg := wire.NewMessage(surface, 2, "damage")
	msg.WriteInt(x)
	msg.WriteInt(y)
	msg.WriteInt(width)
	msg.WriteInt(height)
	surface.state.Enqueue(msg)
}

// Commit atomically applies the pending state of the surface.
func (surface *Surface) Commit() {
	msg := wire.NewMessage(surface, 6, "commit")
	surface.state.Enqueue(msg)
}
