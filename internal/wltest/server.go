// Package wltest provides an in-process compositor for testing Wayland
// clients. It implements just enough of the core protocol and of the
// wlr-layer-shell protocol to negotiate globals, run the configure
// handshake and capture the pixels of every committed buffer.
package wltest

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"testing"

	wl "deedles.dev/paber/client"
	"deedles.dev/paber/internal/objstore"
	"deedles.dev/paber/wire"
	"golang.org/x/sys/unix"
)

// Output describes an output that the server advertises.
type Output struct {
	Name        string
	Description string
	Width       int32
	Height      int32
	Scale       int32
}

type Options struct {
	Outputs []Output

	NoCompositor bool
	NoLayerShell bool
	NoShm        bool

	// CompositorVersion and LayerShellVersion are the advertised
	// versions. They default to 6 and 4.
	CompositorVersion uint32
	LayerShellVersion uint32

	// ConfigureSize, if not nil, decides the size sent in the first
	// configure event of a layer surface. It is passed the name of the
	// surface's output, or "" if it has none. By default, the output's
	// size is used.
	ConfigureSize func(output string) (w, h uint32)

	// NoRelease keeps the server from releasing buffers after their
	// contents have been captured.
	NoRelease bool
}

type global struct {
	name    uint32
	inter   string
	version uint32
	output  *Output
}

// Server is a compositor serving a single client connection.
type Server struct {
	opts    Options
	conn    *wire.Conn
	done    chan struct{}
	globals []global

	m         sync.Mutex
	objects   *objstore.Store
	serial    uint32
	bound     map[string]uint32
	surfaces  []*layerSurface
	files     []*os.File
	destroyed int
	errs      []error

	shellDestroyed bool
}

// New starts a server and returns it along with a client connected to
// it. Both are shut down when the test ends.
func New(t testing.TB, opts Options) (*Server, *wl.State) {
	t.Helper()

	sc, cc, err := socketpair()
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}

	server := newServer(opts, wire.NewConn(sc))
	state := wl.NewState(wire.NewConn(cc))
	t.Cleanup(func() {
		state.Close()
		server.wait()
	})

	return server, state
}

func socketpair() (*net.UnixConn, *net.UnixConn, error) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, nil, err
	}

	conn := func(fd int) (*net.UnixConn, error) {
		file := os.NewFile(uintptr(fd), "socketpair")
		defer file.Close()
		c, err := net.FileConn(file)
		if err != nil {
			return nil, err
		}
		return c.(*net.UnixConn), nil
	}

	a, err := conn(fds[0])
	if err != nil {
		unix.Close(fds[1])
		return nil, nil, err
	}
	b, err := conn(fds[1])
	if err != nil {
		a.Close()
		return nil, nil, err
	}
	return a, b, nil
}

func newServer(opts Options, conn *wire.Conn) *Server {
	if opts.CompositorVersion == 0 {
		opts.CompositorVersion = 6
	}
	if opts.LayerShellVersion == 0 {
		opts.LayerShellVersion = 4
	}

	server := Server{
		opts:    opts,
		conn:    conn,
		done:    make(chan struct{}),
		objects: objstore.New(0xFF000000),
		bound:   make(map[string]uint32),
	}
	server.initGlobals()

	display := display{resource: resource{id: 1, server: &server}}
	server.objects.Add(&display)

	go server.listen()

	return &server
}

func (server *Server) initGlobals() {
	add := func(inter string, version uint32, output *Output) {
		server.globals = append(server.globals, global{
			name:    uint32(len(server.globals) + 1),
			inter:   inter,
			version: version,
			output:  output,
		})
	}

	if !server.opts.NoCompositor {
		add(wl.CompositorInterface, server.opts.CompositorVersion, nil)
	}
	if !server.opts.NoShm {
		add(wl.ShmInterface, 1, nil)
	}
	add("xdg_wm_base", 5, nil)
	if !server.opts.NoLayerShell {
		add("zwlr_layer_shell_v1", server.opts.LayerShellVersion, nil)
	}
	for i := range server.opts.Outputs {
		add(wl.OutputInterface, 4, &server.opts.Outputs[i])
	}
}

func (server *Server) listen() {
	defer func() {
		server.conn.Close()
		close(server.done)
	}()

	for {
		msg, err := server.conn.ReadMessage()
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				server.m.Lock()
				server.errs = append(server.errs, err)
				server.m.Unlock()
			}
			return
		}

		server.m.Lock()
		server.dispatch(msg)
		server.m.Unlock()
	}
}

func (server *Server) wait() {
	<-server.done

	server.m.Lock()
	defer server.m.Unlock()
	for _, file := range server.files {
		file.Close()
	}
	server.files = nil
}

func (server *Server) dispatch(msg *wire.MessageBuffer) {
	obj := server.objects.Get(msg.Sender())
	if obj == nil {
		server.errs = append(server.errs, wire.UnknownSenderIDError{Msg: msg})
		return
	}

	_, err := obj.Dispatch(msg)
	if err != nil {
		server.errs = append(server.errs, fmt.Errorf("%v@%v.%v: %w", obj.Interface(), obj.ID(), obj.MethodName(msg.Op()), err))
	}
}

func (server *Server) send(msg *wire.MessageBuilder) {
	err := msg.Build(server.conn)
	if err != nil {
		server.errs = append(server.errs, fmt.Errorf("send %v: %w", msg, err))
	}
}

func (server *Server) nextSerial() uint32 {
	server.serial++
	return server.serial
}

// deleteID removes an object that the client destroyed and tells the
// client that its ID is free.
func (server *Server) deleteID(id uint32) {
	server.objects.Delete(id)

	msg := wire.NewMessage(server.objects.Get(1), 1, "delete_id")
	msg.WriteUint(id)
	server.send(msg)
}

// protocolError sends a fatal error to the client and records it.
func (server *Server) protocolError(obj wire.Object, code uint32, format string, args ...any) {
	message := fmt.Sprintf(format, args...)
	server.errs = append(server.errs, fmt.Errorf("protocol error on %v@%v: %v", obj.Interface(), obj.ID(), message))

	msg := wire.NewMessage(server.objects.Get(1), 0, "error")
	msg.WriteUint(obj.ID())
	msg.WriteUint(code)
	msg.WriteString(message)
	server.send(msg)
}

// Errors returns every protocol violation and internal failure seen so
// far.
func (server *Server) Errors() []error {
	server.m.Lock()
	defer server.m.Unlock()

	return append([]error(nil), server.errs...)
}

// Done is closed once the client has disconnected and every request
// that it sent has been handled.
func (server *Server) Done() <-chan struct{} {
	return server.done
}

// ShellDestroyed reports whether the client destroyed its layer shell.
func (server *Server) ShellDestroyed() bool {
	server.m.Lock()
	defer server.m.Unlock()

	return server.shellDestroyed
}

// Bound returns the version that the client bound the given interface
// at, or 0 if it didn't bind it.
func (server *Server) Bound(inter string) uint32 {
	server.m.Lock()
	defer server.m.Unlock()

	return server.bound[inter]
}

// BuffersDestroyed returns the number of wl_buffer objects that the
// client has destroyed.
func (server *Server) BuffersDestroyed() int {
	server.m.Lock()
	defer server.m.Unlock()

	return server.destroyed
}

// Surfaces returns a snapshot of every layer surface that the client
// has created, in order of creation.
func (server *Server) Surfaces() []LayerSurface {
	server.m.Lock()
	defer server.m.Unlock()

	surfaces := make([]LayerSurface, 0, len(server.surfaces))
	for _, s := range server.surfaces {
		surfaces = append(surfaces, s.snapshot())
	}
	return surfaces
}

// Configure sends a new configure event to the i-th layer surface and
// returns its serial.
func (server *Server) Configure(i int, w, h uint32) uint32 {
	server.m.Lock()
	defer server.m.Unlock()

	return server.surfaces[i].configure(w, h)
}

// Close tells the i-th layer surface that it has been closed.
func (server *Server) Close(i int) {
	server.m.Lock()
	defer server.m.Unlock()

	s := server.surfaces[i]
	s.closed = true
	server.send(wire.NewMessage(s, 1, "closed"))
}
