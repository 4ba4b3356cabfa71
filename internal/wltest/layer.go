package wltest

import (
	"image"
	"slices"

	"deedles.dev/paber/shm/shmimage"
	"deedles.dev/paber/wire"
)

const layerSurfaceErrorInvalidSurfaceState = 0

type layerShell struct {
	resource
	version uint32
}

func (ls *layerShell) Interface() string { return "zwlr_layer_shell_v1" }

func (ls *layerShell) MethodName(op uint16) string {
	switch op {
	case 0:
		return "get_layer_surface"
	case 1:
		return "destroy"
	}
	return "unknown"
}

func (ls *layerShell) Dispatch(msg *wire.MessageBuffer) (any, error) {
	switch msg.Op() {
	case 0:
		id := msg.ReadUint()
		sid := msg.ReadObject()
		oid := msg.ReadObject()
		layer := msg.ReadUint()
		namespace := msg.ReadString()
		if err := msg.Err(); err != nil {
			return nil, err
		}

		s, ok := ls.server.objects.Get(sid).(*surface)
		if !ok || (s.role != nil) || (s.commits > 0) {
			ls.server.protocolError(ls, 0, "surface %v can't be given the layer surface role", sid)
			return nil, nil
		}

		var out *output
		if oid != 0 {
			out, _ = ls.server.objects.Get(oid).(*output)
		}

		role := layerSurface{
			resource:  resource{server: ls.server},
			surface:   s,
			output:    out,
			layer:     layer,
			namespace: namespace,
		}
		ls.add(&role, id)
		s.role = &role
		ls.server.surfaces = append(ls.server.surfaces, &role)

	case 1:
		if ls.version < 3 {
			ls.server.protocolError(ls, 0, "destroy is not available before version 3")
			return nil, nil
		}
		ls.server.shellDestroyed = true
		ls.server.deleteID(ls.id)
	}

	return nil, nil
}

type layerSurface struct {
	resource
	surface   *surface
	output    *output
	layer     uint32
	namespace string

	anchor    uint32
	zone      int32
	initial   bool
	sent      []uint32
	acked     []uint32
	size      image.Point
	frames    []Frame
	closed    bool
	destroyed bool
}

func (ls *layerSurface) Interface() string { return "zwlr_layer_surface_v1" }

func (ls *layerSurface) MethodName(op uint16) string {
	switch op {
	case 0:
		return "set_size"
	case 1:
		return "set_anchor"
	case 2:
		return "set_exclusive_zone"
	case 3:
		return "set_margin"
	case 6:
		return "ack_configure"
	case 7:
		return "destroy"
	}
	return "unknown"
}

func (ls *layerSurface) Dispatch(msg *wire.MessageBuffer) (any, error) {
	switch msg.Op() {
	case 1:
		ls.anchor = msg.ReadUint()
	case 2:
		ls.zone = msg.ReadInt()
	case 6:
		serial := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return nil, err
		}
		if !slices.Contains(ls.sent, serial) {
			ls.server.protocolError(ls, layerSurfaceErrorInvalidSurfaceState, "ack of unknown serial %v", serial)
			return nil, nil
		}
		ls.acked = append(ls.acked, serial)
	case 7:
		ls.destroyed = true
		ls.server.deleteID(ls.id)
	}

	return nil, msg.Err()
}

func (ls *layerSurface) outputName() string {
	if ls.output == nil {
		return ""
	}
	return ls.output.info.Name
}

func (ls *layerSurface) configure(w, h uint32) uint32 {
	serial := ls.server.nextSerial()
	ls.sent = append(ls.sent, serial)
	ls.size = image.Pt(int(w), int(h))

	ev := wire.NewMessage(ls, 0, "configure")
	ev.WriteUint(serial)
	ev.WriteUint(w)
	ev.WriteUint(h)
	ls.server.send(ev)

	return serial
}

func (ls *layerSurface) commit() {
	s := ls.surface

	if !ls.initial {
		if s.pending != nil {
			ls.server.protocolError(ls, layerSurfaceErrorInvalidSurfaceState, "buffer attached before the first configure")
			return
		}
		ls.initial = true

		var w, h uint32
		switch {
		case ls.server.opts.ConfigureSize != nil:
			w, h = ls.server.opts.ConfigureSize(ls.outputName())
		case ls.output != nil:
			w, h = uint32(ls.output.info.Width), uint32(ls.output.info.Height)
		}
		ls.configure(w, h)
		return
	}

	if s.pending == nil {
		return
	}
	if len(ls.acked) == 0 {
		ls.server.protocolError(ls, layerSurfaceErrorInvalidSurfaceState, "buffer committed before a configure was acknowledged")
		return
	}

	buf := s.pending
	img, err := buf.capture()
	if err != nil {
		ls.server.errs = append(ls.server.errs, err)
		return
	}
	ls.frames = append(ls.frames, Frame{
		Serial: ls.acked[len(ls.acked)-1],
		Format: uint32(buf.format),
		Damage: slices.Clone(s.damage),
		Image:  img,
	})

	if !ls.server.opts.NoRelease {
		buf.release()
	}
}

func (ls *layerSurface) snapshot() LayerSurface {
	return LayerSurface{
		ID:            ls.id,
		Output:        ls.outputName(),
		Layer:         ls.layer,
		Namespace:     ls.namespace,
		Anchor:        ls.anchor,
		ExclusiveZone: ls.zone,
		Configures:    slices.Clone(ls.sent),
		Acked:         slices.Clone(ls.acked),
		Commits:       ls.surface.commits,
		Frames:        slices.Clone(ls.frames),
		Closed:        ls.closed,
		Destroyed:     ls.destroyed,
	}
}

// LayerSurface is a snapshot of the server's view of a layer surface.
type LayerSurface struct {
	ID            uint32
	Output        string
	Layer         uint32
	Namespace     string
	Anchor        uint32
	ExclusiveZone int32

	// Configures holds the serials of every configure event sent, and
	// Acked those that the client acknowledged, in order.
	Configures []uint32
	Acked      []uint32

	Commits   int
	Frames    []Frame
	Closed    bool
	Destroyed bool
}

// Frame is a buffer committed to a layer surface.
type Frame struct {
	// Serial is the most recently acknowledged configure serial at the
	// time of the commit.
	Serial uint32
	Format uint32
	Damage []image.Rectangle
	Image  *shmimage.ARGB8888
}

// LastFrame returns the most recently committed frame, or nil.
func (s LayerSurface) LastFrame() *Frame {
	if len(s.Frames) == 0 {
		return nil
	}
	return &s.Frames[len(s.Frames)-1]
}
