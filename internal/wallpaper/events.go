package wallpaper

import (
	wl "deedles.dev/paber/client"
	"deedles.dev/paber/layer"
	"deedles.dev/paber/wire"
	"github.com/rs/zerolog/log"
)

// handle is the State's Handler. Every event that the compositor sends
// passes through here.
func (session *Session) handle(obj wire.Object, ev any) {
	switch ev := ev.(type) {
	case layer.SurfaceConfigure:
		s := session.surfaceFor(obj)
		if s == nil {
			return
		}
		session.configure(s, ev)

	case layer.SurfaceClosed:
		s := session.surfaceFor(obj)
		if s == nil {
			return
		}
		s.closed = true
		s.configured = false
		log.Warn().Str("output", s.String()).Msg("surface closed by compositor")

	case wl.BufferRelease:
		buf, ok := obj.(*wl.Buffer)
		if !ok {
			return
		}
		if fb, ok := session.buffers[buf]; ok {
			fb.Destroy()
			delete(session.buffers, buf)
		}

	case wl.RegistryGlobalRemove:
		for _, o := range session.outputs {
			if o.global == ev.Name {
				o.removed = true
				log.Info().Str("output", o.String()).Msg("output removed")
			}
		}

	case wl.OutputDone:
		for _, o := range session.outputs {
			if o.obj == obj {
				w, h := o.Size()
				log.Debug().Str("output", o.String()).Int32("width", w).Int32("height", h).Msg("output updated")
			}
		}
	}
}

func (session *Session) surfaceFor(obj wire.Object) *Surface {
	for _, s := range session.surfaces {
		if s.role == obj {
			return s
		}
	}
	return nil
}

// configure acknowledges a configure event and then adopts the new
// size.
func (session *Session) configure(s *Surface, ev layer.SurfaceConfigure) {
	s.role.AckConfigure(ev.Serial)

	resized := s.configured && ((s.width != ev.Width) || (s.height != ev.Height))
	s.width = ev.Width
	s.height = ev.Height
	s.serial = ev.Serial
	s.configured = true
	s.configures++

	log.Debug().
		Str("output", s.String()).
		Uint32("serial", ev.Serial).
		Uint32("width", ev.Width).
		Uint32("height", ev.Height).
		Msg("configure")

	if resized && session.opts.RedrawOnReconfigure && (s.source != nil) {
		err := session.draw(s, s.source)
		if err != nil {
			log.Error().Err(err).Str("output", s.String()).Msg("redraw after reconfigure")
		}
	}
}
