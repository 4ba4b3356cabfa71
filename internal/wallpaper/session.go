// Package wallpaper manages background layer surfaces on every output
// of a Wayland session and draws into them.
package wallpaper

import (
	"errors"

	wl "deedles.dev/paber/client"
	"deedles.dev/paber/layer"
	"deedles.dev/paber/shm"
	"github.com/rs/zerolog/log"
)

var (
	// ErrNoLayerShell is returned when the compositor doesn't support
	// the wlr-layer-shell protocol, and so can't show background
	// surfaces.
	ErrNoLayerShell = errors.New("compositor does not support zwlr_layer_shell_v1")

	ErrNoCompositor = errors.New("compositor does not advertise wl_compositor")
	ErrNoShm        = errors.New("compositor does not advertise wl_shm")

	// ErrNotConfigured is returned when drawing into a surface that
	// hasn't received a configure event or that has been closed.
	ErrNotConfigured = errors.New("surface is not configured")
)

// DefaultNamespace is the layer surface namespace used when none is
// given.
const DefaultNamespace = "paber"

type Options struct {
	// Namespace identifies the layer surfaces to the compositor.
	Namespace string

	// RedrawOnReconfigure redraws a surface's last content at the new
	// size when the compositor resizes it.
	RedrawOnReconfigure bool
}

// Session is a connection to the compositor along with every object
// that paber creates on it. A Session is not safe for concurrent use.
type Session struct {
	opts  Options
	state *wl.State

	compositor *wl.Compositor
	shell      *layer.Shell
	shm        *wl.Shm

	outputs  []*Output
	surfaces []*Surface
	buffers  map[*wl.Buffer]*shm.FrameBuffer
}

// Dial connects to the compositor that the environment points to.
func Dial(opts Options) (*Session, error) {
	state, err := wl.Dial()
	if err != nil {
		return nil, err
	}
	return New(state, opts), nil
}

// New creates a Session on an existing connection. The Session takes
// over the State's Handler.
func New(state *wl.State, opts Options) *Session {
	if opts.Namespace == "" {
		opts.Namespace = DefaultNamespace
	}

	session := Session{
		opts:    opts,
		state:   state,
		buffers: make(map[*wl.Buffer]*shm.FrameBuffer),
	}
	state.Handler = session.handle

	return &session
}

func (session *Session) State() *wl.State {
	return session.state
}

// Outputs returns the outputs that have been bound, in order of
// announcement.
func (session *Session) Outputs() []*Output {
	return session.outputs
}

// Surfaces returns the layer surfaces in the order that they were
// created. Surface indices used elsewhere refer to this order.
func (session *Session) Surfaces() []*Surface {
	return session.surfaces
}

// Close destroys every object that the session created and closes the
// connection.
func (session *Session) Close() error {
	for buf, fb := range session.buffers {
		fb.Destroy()
		delete(session.buffers, buf)
	}
	for _, s := range session.surfaces {
		s.destroy()
	}
	for _, o := range session.outputs {
		if !o.removed {
			o.obj.Release()
		}
	}
	if session.shell != nil {
		session.shell.Destroy()
	}

	err := session.state.Flush()
	if err != nil {
		log.Debug().Err(err).Msg("flush before close")
	}
	return session.state.Close()
}
