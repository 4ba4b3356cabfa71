package wallpaper

import (
	"context"
	"errors"
	"fmt"

	wl "deedles.dev/paber/client"
	"deedles.dev/paber/internal/paint"
	"deedles.dev/paber/internal/xslices"
	"deedles.dev/paber/layer"
	"github.com/rs/zerolog/log"
)

// Surface is a background layer surface covering one output.
//
// A Surface starts out unconfigured with a size of 0x0. It becomes
// configured when the compositor sends a configure event, which also
// gives it its size, and stays so until the compositor closes it.
// Nothing is drawn into a surface that is not configured.
type Surface struct {
	output  *Output
	surface *wl.Surface
	role    *layer.Surface

	width, height uint32
	configured    bool
	serial        uint32
	configures    int
	source        paint.Source
	closed        bool
}

// Output returns the output that the surface was created for, or nil
// if the compositor chose one.
func (s *Surface) Output() *Output {
	return s.output
}

func (s *Surface) Size() (w, h uint32) {
	return s.width, s.height
}

func (s *Surface) Configured() bool {
	return s.configured
}

// Serial returns the serial of the most recently acknowledged configure
// event.
func (s *Surface) Serial() uint32 {
	return s.serial
}

// Configures returns the number of configure events processed.
func (s *Surface) Configures() int {
	return s.configures
}

func (s *Surface) Closed() bool {
	return s.closed
}

func (s *Surface) String() string {
	if s.output == nil {
		return "default"
	}
	return s.output.String()
}

func (s *Surface) destroy() {
	if !s.closed {
		s.role.Destroy()
	}
	s.surface.Destroy()
	s.configured = false
}

// CreateSurfaces creates a background layer surface for every output,
// or a single surface on an output of the compositor's choosing if
// there are none. The surfaces are anchored to every edge and
// committed without a buffer, which asks the compositor to configure
// them. It doesn't wait for that to happen.
func (session *Session) CreateSurfaces() error {
	if (session.compositor == nil) || (session.shell == nil) {
		return errors.New("globals have not been negotiated")
	}

	outputs := xslices.Filter(session.outputs, func(o *Output) bool { return !o.removed })
	if len(outputs) == 0 {
		outputs = []*Output{nil}
	}

	for _, output := range outputs {
		var target *wl.Output
		if output != nil {
			target = output.obj
		}

		surface := session.compositor.CreateSurface()
		role := session.shell.GetLayerSurface(surface, target, layer.Background, session.opts.Namespace)
		role.SetAnchor(layer.AnchorAll)
		role.SetExclusiveZone(-1)
		surface.Commit()

		session.surfaces = append(session.surfaces, &Surface{
			output:  output,
			surface: surface,
			role:    role,
		})
	}

	err := session.state.Flush()
	if err != nil {
		return fmt.Errorf("create surfaces: %w", err)
	}
	return nil
}

// Open returns the indices of the surfaces that have not been closed.
func (session *Session) Open() []int {
	return xslices.Indices(session.surfaces, func(s *Surface) bool { return !s.closed })
}

// Ready reports whether there is at least one open surface and every
// open surface has been configured.
func (session *Session) Ready() bool {
	open := session.Open()
	if len(open) == 0 {
		return false
	}
	for _, i := range open {
		if !session.surfaces[i].configured {
			return false
		}
	}
	return true
}

// WaitConfigured dispatches events until Ready reports true.
func (session *Session) WaitConfigured(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { session.state.Interrupt() })
	defer stop()

	for !session.Ready() {
		if len(session.surfaces) == 0 {
			return errors.New("no surfaces have been created")
		}
		if len(session.Open()) == 0 {
			return errors.New("every surface was closed")
		}

		err := session.state.Dispatch()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("wait for configure: %w", err)
		}
	}

	for _, s := range session.surfaces {
		log.Debug().Str("output", s.String()).Uint32("width", s.width).Uint32("height", s.height).Msg("surface ready")
	}
	return nil
}
