package wire

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"deedles.dev/paber/internal/bin"
	"golang.org/x/sys/unix"
)

const (
	// readSize is the number of bytes requested from the socket per
	// read.
	readSize = 4096

	// maxFDs is the largest number of file descriptors that a single
	// read can carry. It matches libwayland's limit.
	maxFDs = 28
)

func xdgRuntimeDir() string {
	dir, ok := os.LookupEnv("XDG_RUNTIME_DIR")
	if ok {
		return dir
	}
	return fmt.Sprintf("/var/run/user/%v", os.Getuid())
}

// SocketPath determines the path to the Wayland Unix domain socket
// based on the contents of the $WAYLAND_DISPLAY environment variable.
// It does not attempt to determine if the value corresponds to an
// actual socket.
func SocketPath() string {
	v, ok := os.LookupEnv("WAYLAND_DISPLAY")
	if !ok || (v == "") {
		v = "wayland-0"
	}
	if filepath.IsAbs(v) {
		return v
	}

	return filepath.Join(xdgRuntimeDir(), v)
}

// Dial opens a connection to the Wayland socket based on the current
// environment. It follows the procedure outlined at
// https://wayland-book.com/protocol-design/wire-protocol.html#transports
func Dial() (*Conn, error) {
	if v, ok := os.LookupEnv("WAYLAND_SOCKET"); ok {
		fd, err := strconv.ParseInt(v, 10, 0)
		if err != nil {
			return nil, fmt.Errorf("parse WAYLAND_SOCKET fd: %w", err)
		}
		file := os.NewFile(uintptr(fd), "WAYLAND_SOCKET")
		defer file.Close()

		c, err := net.FileConn(file)
		if err != nil {
			return nil, fmt.Errorf("open WAYLAND_SOCKET connection: %w", err)
		}
		uc, ok := c.(*net.UnixConn)
		if !ok {
			c.Close()
			return nil, errors.New("WAYLAND_SOCKET is not a Unix domain socket")
		}
		return NewConn(uc), nil
	}

	path := SocketPath()
	s, err := net.DialUnix("unix", nil, &net.UnixAddr{Name: path, Net: "unix"})
	if err != nil {
		return nil, fmt.Errorf("dial %v: %w", path, err)
	}
	return NewConn(s), nil
}

// Conn represents a low-level Wayland connection. It buffers incoming
// bytes and the file descriptors that arrive alongside them until a
// complete message can be handed out. It is not generally used
// directly, instead being handled automatically by a State
// implementation.
//
// A Conn is not safe for concurrent use.
type Conn struct {
	conn *net.UnixConn
	in   []byte
	fds  []int
}

// NewConn creates a new Conn that wraps c. After this is called, use
// the provided Close method to close c instead of calling its own
// Close method.
func NewConn(c *net.UnixConn) *Conn {
	return &Conn{
		conn: c,
	}
}

// Close closes the underlying connection and any received file
// descriptors that were never claimed by a message.
func (c *Conn) Close() error {
	for _, fd := range c.fds {
		unix.Close(fd)
	}
	c.fds = nil
	return c.conn.Close()
}

// Interrupt makes a blocked or future ReadMessage return an error
// wrapping os.ErrDeadlineExceeded. Unlike the other methods, it is safe
// to call from any goroutine.
func (c *Conn) Interrupt() error {
	return c.conn.SetReadDeadline(time.Unix(1, 0))
}

// ReadMessage blocks until a complete message has been received and
// returns it.
func (c *Conn) ReadMessage() (*MessageBuffer, error) {
	for {
		msg, err := c.next()
		if (err != nil) || (msg != nil) {
			return msg, err
		}

		err = c.fill()
		if err != nil {
			return nil, err
		}
	}
}

// Pending reports whether ReadMessage can return without blocking. It
// reads whatever is currently available on the socket, but never
// waits for more.
func (c *Conn) Pending() (bool, error) {
	for {
		if c.complete() {
			return true, nil
		}

		ok, err := c.readable()
		if (err != nil) || !ok {
			return false, err
		}

		err = c.fill()
		if err != nil {
			return false, err
		}
	}
}

// WriteMessage writes a single encoded message, passing fds alongside
// it.
func (c *Conn) WriteMessage(data []byte, fds []int) error {
	var oob []byte
	if len(fds) > 0 {
		oob = unix.UnixRights(fds...)
	}

	n, _, err := c.conn.WriteMsgUnix(data, oob, nil)
	if (err == nil) && (n < len(data)) {
		return io.ErrShortWrite
	}
	return err
}

func (c *Conn) complete() bool {
	if len(c.in) < 8 {
		return false
	}
	size := int(bin.Order.Uint32(c.in[4:8]) >> 16)
	return (size < 8) || (len(c.in) >= size)
}

func (c *Conn) next() (*MessageBuffer, error) {
	if !c.complete() {
		return nil, nil
	}

	sender := bin.Order.Uint32(c.in[0:4])
	so := bin.Order.Uint32(c.in[4:8])
	size := int(so >> 16)
	if size < 8 {
		return nil, fmt.Errorf("%w: sender %v, size %v", ErrMalformedHeader, sender, size)
	}

	data := make([]byte, size-8)
	copy(data, c.in[8:size])
	c.in = c.in[size:]
	if len(c.in) == 0 {
		c.in = nil
	}

	return newMessageBuffer(c, sender, uint16(so&0xFFFF), uint16(size), data), nil
}

func (c *Conn) fill() error {
	buf := make([]byte, readSize)
	oob := make([]byte, unix.CmsgSpace(maxFDs*4))
	n, oobn, _, _, err := c.conn.ReadMsgUnix(buf, oob)
	// A read that fails while blocked, such as after Interrupt, reports
	// negative lengths.
	n, oobn = max(n, 0), max(oobn, 0)
	if oobn > 0 {
		ferr := c.readFDs(oob[:oobn])
		if ferr != nil {
			return ferr
		}
	}
	c.in = append(c.in, buf[:n]...)

	if err != nil {
		return err
	}
	if (n == 0) && (oobn == 0) {
		return io.EOF
	}
	return nil
}

func (c *Conn) readFDs(data []byte) error {
	cmsgs, err := unix.ParseSocketControlMessage(data)
	if err != nil {
		return fmt.Errorf("parse socket control messages: %w", err)
	}
	for _, cmsg := range cmsgs {
		fds, err := unix.ParseUnixRights(&cmsg)
		if err != nil {
			if errors.Is(err, unix.EINVAL) {
				continue
			}
			return fmt.Errorf("parse unix control message: %w", err)
		}
		c.fds = append(c.fds, fds...)
	}
	return nil
}

func (c *Conn) popFD() (int, bool) {
	if len(c.fds) == 0 {
		return -1, false
	}

	fd := c.fds[0]
	c.fds = c.fds[1:]
	return fd, true
}

// readable polls the socket without blocking.
func (c *Conn) readable() (bool, error) {
	rc, err := c.conn.SyscallConn()
	if err != nil {
		return false, err
	}

	var n int
	var perr error
	err = rc.Control(func(fd uintptr) {
		pfd := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		for {
			n, perr = unix.Poll(pfd, 0)
			if !errors.Is(perr, unix.EINTR) {
				return
			}
		}
	})
	if err != nil {
		return false, err
	}
	return n > 0, perr
}
