package wltest

import (
	"fmt"
	"image"
	"os"

	wl "deedles.dev/paber/client"
	"deedles.dev/paber/shm/shmimage"
	"deedles.dev/paber/wire"
)

type resource struct {
	id     uint32
	server *Server
}

func (r *resource) ID() uint32 {
	return r.id
}

func (r *resource) SetID(id uint32) {
	r.id = id
}

func (r *resource) Delete() {}

func (r *resource) add(obj wire.Object, id uint32) {
	obj.SetID(id)
	r.server.objects.Add(obj)
}

type display struct{ resource }

func (d *display) Interface() string { return wl.DisplayInterface }

func (d *display) MethodName(op uint16) string {
	switch op {
	case 0:
		return "sync"
	case 1:
		return "get_registry"
	}
	return "unknown"
}

func (d *display) Dispatch(msg *wire.MessageBuffer) (any, error) {
	switch msg.Op() {
	case 0:
		id := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return nil, err
		}

		cb := callback{resource{id: id, server: d.server}}
		done := wire.NewMessage(&cb, 0, "done")
		done.WriteUint(d.server.nextSerial())
		d.server.send(done)
		d.server.deleteID(id)
		return nil, nil

	case 1:
		id := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return nil, err
		}

		reg := registry{resource{server: d.server}}
		d.add(&reg, id)
		for _, g := range d.server.globals {
			ev := wire.NewMessage(&reg, 0, "global")
			ev.WriteUint(g.name)
			ev.WriteString(g.inter)
			ev.WriteUint(g.version)
			d.server.send(ev)
		}
		return nil, nil
	}

	return nil, wire.UnknownOpError{Interface: wl.DisplayInterface, Type: "request", Op: msg.Op()}
}

type callback struct{ resource }

func (cb *callback) Interface() string                             { return wl.CallbackInterface }
func (cb *callback) MethodName(op uint16) string                   { return "unknown" }
func (cb *callback) Dispatch(msg *wire.MessageBuffer) (any, error) { return nil, nil }

type registry struct{ resource }

func (reg *registry) Interface() string { return wl.RegistryInterface }

func (reg *registry) MethodName(op uint16) string {
	if op == 0 {
		return "bind"
	}
	return "unknown"
}

func (reg *registry) Dispatch(msg *wire.MessageBuffer) (any, error) {
	if msg.Op() != 0 {
		return nil, wire.UnknownOpError{Interface: wl.RegistryInterface, Type: "request", Op: msg.Op()}
	}

	name := msg.ReadUint()
	nid := msg.ReadNewID()
	if err := msg.Err(); err != nil {
		return nil, err
	}

	var g *global
	for i := range reg.server.globals {
		if reg.server.globals[i].name == name {
			g = &reg.server.globals[i]
			break
		}
	}
	if (g == nil) || (g.inter != nid.Interface) || (nid.Version > g.version) || (nid.Version == 0) {
		reg.server.protocolError(reg, 0, "invalid bind of %v v%v to global %v", nid.Interface, nid.Version, name)
		return nil, nil
	}
	reg.server.bound[nid.Interface] = nid.Version

	switch nid.Interface {
	case wl.CompositorInterface:
		reg.add(&compositor{resource{server: reg.server}}, nid.ID)

	case wl.ShmInterface:
		s := shm{resource{server: reg.server}}
		reg.add(&s, nid.ID)
		for _, format := range []wl.ShmFormat{wl.ShmFormatArgb8888, wl.ShmFormatXrgb8888} {
			ev := wire.NewMessage(&s, 0, "format")
			ev.WriteUint(uint32(format))
			reg.server.send(ev)
		}

	case "zwlr_layer_shell_v1":
		reg.add(&layerShell{resource: resource{server: reg.server}, version: nid.Version}, nid.ID)

	case wl.OutputInterface:
		o := output{resource: resource{server: reg.server}, info: g.output, version: nid.Version}
		reg.add(&o, nid.ID)
		o.sendInfo()

	default:
		reg.add(&inert{resource: resource{server: reg.server}, inter: nid.Interface}, nid.ID)
	}

	return nil, nil
}

// inert stands in for objects of interfaces that are advertised but not
// implemented.
type inert struct {
	resource
	inter string
}

func (obj *inert) Interface() string                             { return obj.inter }
func (obj *inert) MethodName(op uint16) string                   { return "unknown" }
func (obj *inert) Dispatch(msg *wire.MessageBuffer) (any, error) { return nil, nil }

type compositor struct{ resource }

func (c *compositor) Interface() string { return wl.CompositorInterface }

func (c *compositor) MethodName(op uint16) string {
	if op == 0 {
		return "create_surface"
	}
	return "unknown"
}

func (c *compositor) Dispatch(msg *wire.MessageBuffer) (any, error) {
	if msg.Op() != 0 {
		return nil, wire.UnknownOpError{Interface: wl.CompositorInterface, Type: "request", Op: msg.Op()}
	}

	id := msg.ReadUint()
	if err := msg.Err(); err != nil {
		return nil, err
	}
	c.add(&surface{resource: resource{server: c.server}}, id)
	return nil, nil
}

type surface struct {
	resource
	role *layerSurface

	attached bool
	pending  *buffer
	damage   []image.Rectangle
	commits  int
}

func (s *surface) Interface() string { return wl.SurfaceInterface }

func (s *surface) MethodName(op uint16) string {
	switch op {
	case 0:
		return "destroy"
	case 1:
		return "attach"
	case 2:
		return "damage"
	case 6:
		return "commit"
	case 9:
		return "damage_buffer"
	}
	return "unknown"
}

func (s *surface) Dispatch(msg *wire.MessageBuffer) (any, error) {
	switch msg.Op() {
	case 0:
		s.server.deleteID(s.id)

	case 1:
		id := msg.ReadObject()
		msg.ReadInt()
		msg.ReadInt()
		if err := msg.Err(); err != nil {
			return nil, err
		}

		s.attached = true
		s.pending = nil
		if id != 0 {
			buf, ok := s.server.objects.Get(id).(*buffer)
			if !ok {
				return nil, fmt.Errorf("attach of non-buffer object %v", id)
			}
			s.pending = buf
		}

	case 2, 9:
		x, y, w, h := msg.ReadInt(), msg.ReadInt(), msg.ReadInt(), msg.ReadInt()
		if err := msg.Err(); err != nil {
			return nil, err
		}
		s.damage = append(s.damage, image.Rect(int(x), int(y), int(x+w), int(y+h)))

	case 6:
		s.commits++
		if s.role != nil {
			s.role.commit()
		}
		s.attached = false
		s.pending = nil
		s.damage = nil
	}

	return nil, nil
}

type shm struct{ resource }

func (s *shm) Interface() string { return wl.ShmInterface }

func (s *shm) MethodName(op uint16) string {
	if op == 0 {
		return "create_pool"
	}
	return "unknown"
}

func (s *shm) Dispatch(msg *wire.MessageBuffer) (any, error) {
	if msg.Op() != 0 {
		return nil, nil
	}

	id := msg.ReadUint()
	file := msg.ReadFile()
	size := msg.ReadInt()
	if err := msg.Err(); err != nil {
		if file != nil {
			file.Close()
		}
		return nil, err
	}

	s.server.files = append(s.server.files, file)
	if size <= 0 {
		s.server.protocolError(s, 2, "invalid pool size %v", size)
		return nil, nil
	}

	s.add(&pool{resource: resource{server: s.server}, file: file, size: size}, id)
	return nil, nil
}

type pool struct {
	resource
	file *os.File
	size int32
}

func (p *pool) Interface() string { return wl.ShmPoolInterface }

func (p *pool) MethodName(op uint16) string {
	switch op {
	case 0:
		return "create_buffer"
	case 1:
		return "destroy"
	case 2:
		return "resize"
	}
	return "unknown"
}

func (p *pool) Dispatch(msg *wire.MessageBuffer) (any, error) {
	switch msg.Op() {
	case 0:
		id := msg.ReadUint()
		buf := buffer{
			resource: resource{server: p.server},
			file:     p.file,
			offset:   msg.ReadInt(),
			width:    msg.ReadInt(),
			height:   msg.ReadInt(),
			stride:   msg.ReadInt(),
			format:   wl.ShmFormat(msg.ReadUint()),
		}
		if err := msg.Err(); err != nil {
			return nil, err
		}

		if (buf.width <= 0) || (buf.height <= 0) || (buf.stride < buf.width*4) || (int64(buf.offset)+int64(buf.stride)*int64(buf.height) > int64(p.size)) {
			p.server.protocolError(p, 2, "invalid buffer %vx%v, stride %v, in pool of %v bytes", buf.width, buf.height, buf.stride, p.size)
			return nil, nil
		}
		p.add(&buf, id)

	case 1:
		p.server.deleteID(p.id)

	case 2:
		size := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return nil, err
		}
		p.size = size
	}

	return nil, nil
}

type buffer struct {
	resource
	file          *os.File
	offset        int32
	width, height int32
	stride        int32
	format        wl.ShmFormat
}

func (b *buffer) Interface() string { return wl.BufferInterface }

func (b *buffer) MethodName(op uint16) string {
	if op == 0 {
		return "destroy"
	}
	return "unknown"
}

func (b *buffer) Dispatch(msg *wire.MessageBuffer) (any, error) {
	if msg.Op() == 0 {
		b.server.destroyed++
		b.server.deleteID(b.id)
	}
	return nil, nil
}

// capture copies the buffer's current contents.
func (b *buffer) capture() (*shmimage.ARGB8888, error) {
	pix := make([]byte, int(b.stride)*int(b.height))
	_, err := b.file.ReadAt(pix, int64(b.offset))
	if err != nil {
		return nil, err
	}

	return &shmimage.ARGB8888{
		Pix:    pix,
		Stride: int(b.stride),
		Rect:   image.Rect(0, 0, int(b.width), int(b.height)),
	}, nil
}

func (b *buffer) release() {
	b.server.send(wire.NewMessage(b, 0, "release"))
}

type output struct {
	resource
	info    *Output
	version uint32
}

func (o *output) Interface() string { return wl.OutputInterface }

func (o *output) MethodName(op uint16) string {
	if op == 0 {
		return "release"
	}
	return "unknown"
}

func (o *output) Dispatch(msg *wire.MessageBuffer) (any, error) {
	if msg.Op() == 0 {
		o.server.deleteID(o.id)
	}
	return nil, nil
}

func (o *output) sendInfo() {
	geometry := wire.NewMessage(o, 0, "geometry")
	geometry.WriteInt(0)
	geometry.WriteInt(0)
	geometry.WriteInt(o.info.Width / 4)
	geometry.WriteInt(o.info.Height / 4)
	geometry.WriteInt(0)
	geometry.WriteString("paber")
	geometry.WriteString("wltest")
	geometry.WriteInt(int32(wl.OutputTransformNormal))
	o.server.send(geometry)

	mode := wire.NewMessage(o, 1, "mode")
	mode.WriteUint(uint32(wl.OutputModeCurrent | wl.OutputModePreferred))
	mode.WriteInt(o.info.Width)
	mode.WriteInt(o.info.Height)
	mode.WriteInt(60000)
	o.server.send(mode)

	if o.version >= 2 {
		scale := wire.NewMessage(o, 3, "scale")
		scale.WriteInt(max(o.info.Scale, 1))
		o.server.send(scale)
	}

	if o.version >= 4 {
		name := wire.NewMessage(o, 4, "name")
		name.WriteString(o.info.Name)
		o.server.send(name)

		desc := wire.NewMessage(o, 5, "description")
		desc.WriteString(o.info.Description)
		o.server.send(desc)
	}

	if o.version >= 2 {
		o.server.send(wire.NewMessage(o, 2, "done"))
	}
}
