package wallpaper

import (
	"cmp"
	"fmt"
	"slices"

	wl "deedles.dev/paber/client"
	"deedles.dev/paber/layer"
	"github.com/rs/zerolog/log"
)

// Output is a bound wl_output.
type Output struct {
	global  uint32
	obj     *wl.Output
	removed bool
}

// Global returns the output's registry name.
func (o *Output) Global() uint32 {
	return o.global
}

// Name returns the connector name, such as "DP-1", if the compositor
// reported one.
func (o *Output) Name() string {
	return o.obj.Name
}

func (o *Output) Description() string {
	return o.obj.Description
}

// Size returns the size of the output's current mode in pixels.
func (o *Output) Size() (w, h int32) {
	return o.obj.Width, o.obj.Height
}

func (o *Output) Scale() int32 {
	return o.obj.Scale
}

// Removed reports whether the compositor has withdrawn the output.
func (o *Output) Removed() bool {
	return o.removed
}

func (o *Output) String() string {
	if o.obj.Name != "" {
		return o.obj.Name
	}
	return fmt.Sprintf("output-%v", o.global)
}

// NegotiateGlobals fetches the compositor's globals and binds the ones
// that paber uses. It fails if any of wl_compositor,
// zwlr_layer_shell_v1, or wl_shm is missing.
func (session *Session) NegotiateGlobals() error {
	registry := session.state.Display().GetRegistry()
	err := session.state.RoundTrip()
	if err != nil {
		return fmt.Errorf("get globals: %w", err)
	}

	globals := make([]wl.Global, 0, len(registry.Globals()))
	for _, g := range registry.Globals() {
		globals = append(globals, g)
	}
	slices.SortFunc(globals, func(g1, g2 wl.Global) int { return cmp.Compare(g1.Name, g2.Name) })

	for _, g := range globals {
		switch g.Interface {
		case wl.CompositorInterface:
			session.compositor = wl.BindCompositor(session.state, g.Name, min(g.Version, wl.CompositorVersion))
		case layer.ShellInterface:
			session.shell = layer.BindShell(session.state, g.Name, min(g.Version, layer.ShellVersion))
		case wl.ShmInterface:
			session.shm = wl.BindShm(session.state, g.Name, wl.ShmVersion)
		case wl.OutputInterface:
			session.outputs = append(session.outputs, &Output{
				global: g.Name,
				obj:    wl.BindOutput(session.state, g.Name, min(g.Version, wl.OutputVersion)),
			})
		default:
			continue
		}
		log.Debug().Str("interface", g.Interface).Uint32("name", g.Name).Uint32("version", g.Version).Msg("bound global")
	}

	switch {
	case session.compositor == nil:
		return ErrNoCompositor
	case session.shell == nil:
		return ErrNoLayerShell
	case session.shm == nil:
		return ErrNoShm
	}

	err = session.state.RoundTrip()
	if err != nil {
		return fmt.Errorf("get output information: %w", err)
	}

	for _, o := range session.outputs {
		w, h := o.Size()
		log.Info().
			Str("output", o.String()).
			Str("description", o.Description()).
			Int32("width", w).
			Int32("height", h).
			Int32("scale", o.Scale()).
			Msg("found output")
	}
	if !session.shm.Supports(wl.ShmFormatArgb8888) {
		log.Warn().Msg("compositor did not announce argb8888 support")
	}

	return nil
}
