// Package layer implements the client side of the wlr-layer-shell
// protocol, which lets clients place surfaces on layers anchored to the
// edges of an output.
package layer

import (
	wl "deedles.dev/paber/client"
	"deedles.dev/paber/wire"
)

const (
	ShellInterface = "zwlr_layer_shell_v1"
	ShellVersion   = 4

	SurfaceInterface = "zwlr_layer_surface_v1"
	SurfaceVersion   = 4
)

// Layer is a stacking layer. Surfaces on higher layers are drawn above
// those on lower ones.
type Layer uint32

const (
	Background Layer = iota
	Bottom
	Top
	Overlay
)

func (l Layer) String() string {
	switch l {
	case Background:
		return "background"
	case Bottom:
		return "bottom"
	case Top:
		return "top"
	case Overlay:
		return "overlay"
	}
	return "unknown"
}

// Anchor is a set of output edges.
type Anchor uint32

const (
	AnchorTop Anchor = 1 << iota
	AnchorBottom
	AnchorLeft
	AnchorRight

	AnchorAll = AnchorTop | AnchorBottom | AnchorLeft | AnchorRight
)

type Shell struct {
	wl.Proxy
	Version uint32
}

// BindShell binds the zwlr_layer_shell_v1 global with the given name.
func BindShell(state *wl.State, name, version uint32) *Shell {
	shell := Shell{Proxy: wl.NewProxy(state), Version: version}
	state.Display().GetRegistry().Bind(name, &shell, version)
	return &shell
}

func (shell *Shell) Interface() string {
	return ShellInterface
}

func (shell *Shell) MethodName(op uint16) string {
	return "unknown"
}

func (shell *Shell) Dispatch(msg *wire.MessageBuffer) (any, error) {
	return nil, wire.UnknownOpError{Interface: ShellInterface, Type: "event", Op: msg.Op()}
}

// GetLayerSurface assigns the layer surface role to surface. A nil
// output lets the compositor choose one.
func (shell *Shell) GetLayerSurface(surface *wl.Surface, output *wl.Output, layer Layer, namespace string) *Surface {
	ls := Surface{Proxy: wl.NewProxy(shell.State())}
	shell.State().Add(&ls)

	msg := wire.NewMessage(shell, 0, "get_layer_surface")
	msg.WriteUint(ls.ID())
	msg.WriteObject(surface)
	if output == nil {
		msg.WriteObject(nil)
	} else {
		msg.WriteObject(output)
	}
	msg.WriteUint(uint32(layer))
	msg.WriteString(namespace)
	shell.State().Enqueue(msg)

	return &ls
}

// Destroy destroys the shell object. Existing layer surfaces are not
// affected. The request only exists from version 3, so it does nothing
// on older objects.
func (shell *Shell) Destroy() {
	if shell.Version < 3 {
		return
	}

	msg := wire.NewMessage(shell, 1, "destroy")
	shell.State().Enqueue(msg)
}
