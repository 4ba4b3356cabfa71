package layer

import (
	wl "deedles.dev/paber/client"
	"deedles.dev/paber/wire"
)

// Surface is a zwlr_layer_surface_v1, the role object of a wl_surface
// placed with the layer shell.
type Surface struct {
	wl.Proxy
}

// SurfaceConfigure asks the client to resize the surface. It has to be
// acknowledged with AckConfigure before the next commit that attaches a
// buffer.
type SurfaceConfigure struct {
	Serial uint32
	Width  uint32
	Height uint32
}

// SurfaceClosed is sent when the compositor will no longer show the
// surface.
type SurfaceClosed struct{}

func (s *Surface) Interface() string {
	return SurfaceInterface
}

// Strict reports true. A configure event that fails to decode leaves the
// surface unusable, so it is reported as an error instead of dropped.
func (s *Surface) Strict() bool {
	return true
}

func (s *Surface) MethodName(op uint16) string {
	switch op {
	case 0:
		return "configure"
	case 1:
		return "closed"
	}
	return "unknown"
}

func (s *Surface) Dispatch(msg *wire.MessageBuffer) (any, error) {
	switch msg.Op() {
	case 0:
		ev := SurfaceConfigure{
			Serial: msg.ReadUint(),
			Width:  msg.ReadUint(),
			Height: msg.ReadUint(),
		}
		if err := msg.Err(); err != nil {
			return nil, err
		}
		return ev, nil

	case 1:
		return SurfaceClosed{}, nil
	}

	return nil, wire.UnknownOpError{Interface: SurfaceInterface, Type: "event", Op: msg.Op()}
}

// SetSize sets the requested size. A zero dimension lets the compositor
// pick it, which requires the surface to be anchored to both opposite
// edges.
func (s *Surface) SetSize(width, height uint32) {
	msg := wire.NewMessage(s, 0, "set_size")
	msg.WriteUint(width)
	msg.WriteUint(height)
	s.State().Enqueue(msg)
}

func (s *Surface) SetAnchor(anchor Anchor) {
	msg := wire.NewMessage(s, 1, "set_anchor")
	msg.WriteUint(uint32(anchor))
	s.State().Enqueue(msg)
}

// SetExclusiveZone sets the area reserved for the surface. -1 asks to
// not be moved to make room for other surfaces' zones.
func (s *Surface) SetExclusiveZone(zone int32) {
	msg := wire.NewMessage(s, 2, "set_exclusive_zone")
	msg.WriteInt(zone)
	s.State().Enqueue(msg)
}

func (s *Surface) SetMargin(top, right, bottom, left int32) {
	msg := wire.NewMessage(s, 3, "set_margin")
	msg.WriteInt(top)
	msg.WriteInt(right)
	msg.WriteInt(bottom)
	msg.WriteInt(left)
	s.State().Enqueue(msg)
}

func (s *Surface) AckConfigure(serial uint32) {
	msg := wire.NewMessage(s, 6, "ack_configure")
	msg.WriteUint(serial)
	s.State().Enqueue(msg)
}

func (s *Surface) Destroy() {
	msg := wire.NewMessage(s, 7, "destroy")
	s.State().Enqueue(msg)
}
