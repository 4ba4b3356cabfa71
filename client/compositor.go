package wl

import "deedles.dev/paber/wire"

type Compositor struct {
	Proxy
}

// BindCompositor binds the wl_compositor global with the given name.
func BindCompositor(state *State, name, version uint32) *Compositor {
	compositor := Compositor{Proxy: NewProxy(state)}
	state.Display().GetRegistry().Bind(name, &compositor, version)
	return &compositor
}

func (compositor *Compositor) Interface() string {
	return CompositorInterface
}

func (compositor *Compositor) MethodName(op uint16) string {
	return "unknown"
}

func (compositor *Compositor) Dispatch(msg *wire.MessageBuffer) (any, error) {
	return nil, wire.UnknownOpError{Interface: CompositorInterface, Type: "event", Op: msg.Op()}
}

func (compositor *Compositor) CreateSurface() *Surface {
	surface := Surface{Proxy: NewProxy(compositor.state)}
	compositor.state.Add(&surface)

	msg := wire.NewMessage(compositor, 0, "create_surface")
	msg.WriteUint(surface.ID())
	compositor.state.Enqueue(msg)

	return &surface
}
