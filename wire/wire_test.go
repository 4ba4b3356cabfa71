package wire

import (
	"io"
	"net"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

type testObject struct {
	id uint32
}

func (obj *testObject) ID() uint32 { return obj.id }

func (obj *testObject) SetID(id uint32) { obj.id = id }

func (obj *testObject) Delete() {}

func (obj *testObject) Interface() string { return "test_object" }

func (obj *testObject) MethodName(op uint16) string { return "event" }

func (obj *testObject) Dispatch(*MessageBuffer) (any, error) { return nil, nil }

func pair(t *testing.T) (*Conn, *Conn) {
	t.Helper()

	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	require.NoError(t, err)

	conn := func(fd int) *Conn {
		file := os.NewFile(uintptr(fd), "socketpair")
		defer file.Close()
		c, err := net.FileConn(file)
		require.NoError(t, err)
		return NewConn(c.(*net.UnixConn))
	}

	a, b := conn(fds[0]), conn(fds[1])
	t.Cleanup(func() {
		a.Close()
		b.Close()
	})
	return a, b
}

func TestMessageRoundTrip(t *testing.T) {
	client, server := pair(t)

	file, err := os.CreateTemp(t.TempDir(), "fd")
	require.NoError(t, err)
	defer file.Close()
	_, err = file.WriteString("shared")
	require.NoError(t, err)

	sender := &testObject{id: 7}
	msg := NewMessage(sender, 3, "request")
	msg.WriteInt(-5)
	msg.WriteUint(42)
	msg.WriteString("wl_compositor")
	msg.WriteString("")
	msg.WriteArray([]byte{1, 2, 3})
	msg.WriteFixed(FixedFloat(1.5))
	msg.WriteNewID(NewID{Interface: "wl_shm", Version: 1, ID: 9})
	msg.WriteObject((*testObject)(nil))
	msg.WriteFile(file)
	require.NoError(t, msg.Build(client))

	ok, err := server.Pending()
	require.NoError(t, err)
	require.True(t, ok)

	in, err := server.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, uint32(7), in.Sender())
	assert.Equal(t, uint16(3), in.Op())

	assert.Equal(t, int32(-5), in.ReadInt())
	assert.Equal(t, uint32(42), in.ReadUint())
	assert.Equal(t, "wl_compositor", in.ReadString())
	assert.Equal(t, "", in.ReadString())
	assert.Equal(t, []byte{1, 2, 3}, in.ReadArray())
	assert.Equal(t, 1.5, in.ReadFixed().Float())
	assert.Equal(t, NewID{Interface: "wl_shm", Version: 1, ID: 9}, in.ReadNewID())
	assert.Equal(t, uint32(0), in.ReadObject())

	received := in.ReadFile()
	require.NoError(t, in.Err())
	require.NotNil(t, received)
	defer received.Close()

	data, err := io.ReadAll(io.NewSectionReader(received, 0, 6))
	require.NoError(t, err)
	assert.Equal(t, "shared", string(data))

	assert.Equal(t, "test_object@7.event(-5, 42, \"wl_compositor\", \"\", array[3], 1.5, \"wl_shm\", 1, 9, 0, fd "+
		strconv.Itoa(int(received.Fd()))+")", in.Debug(sender))
}

func TestPendingEmpty(t *testing.T) {
	_, server := pair(t)

	ok, err := server.Pending()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMultipleMessagesInOneRead(t *testing.T) {
	client, server := pair(t)

	sender := &testObject{id: 1}
	for i := range 3 {
		msg := NewMessage(sender, uint16(i), "sync")
		msg.WriteUint(uint32(i))
		require.NoError(t, msg.Build(client))
	}

	for i := range 3 {
		in, err := server.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, uint16(i), in.Op())
		assert.Equal(t, uint32(i), in.ReadUint())
	}
}

func TestTruncatedArguments(t *testing.T) {
	client, server := pair(t)

	msg := NewMessage(&testObject{id: 1}, 0, "short")
	msg.WriteUint(1)
	require.NoError(t, msg.Build(client))

	in, err := server.ReadMessage()
	require.NoError(t, err)
	in.ReadUint()
	in.ReadUint()
	assert.ErrorIs(t, in.Err(), io.ErrUnexpectedEOF)
}

func TestMalformedHeader(t *testing.T) {
	client, server := pair(t)

	require.NoError(t, client.WriteMessage([]byte{1, 0, 0, 0, 0, 0, 4, 0}, nil))
	_, err := server.ReadMessage()
	assert.ErrorIs(t, err, ErrMalformedHeader)
}

func TestEOF(t *testing.T) {
	client, server := pair(t)
	require.NoError(t, client.Close())

	_, err := server.ReadMessage()
	assert.ErrorIs(t, err, io.EOF)
}

func TestFixed(t *testing.T) {
	tests := []struct {
		in   float64
		int  int
		frac int
	}{
		{in: 1.5, int: 1, frac: 128},
		{in: 0, int: 0, frac: 0},
		{in: 10.25, int: 10, frac: 64},
		{in: -1.5, int: -2, frac: 128},
	}

	for _, tt := range tests {
		f := FixedFloat(tt.in)
		assert.Equal(t, tt.int, f.Int(), "%v", tt.in)
		assert.Equal(t, tt.frac, f.Frac(), "%v", tt.in)
		assert.Equal(t, tt.in, f.Float())
	}

	assert.Equal(t, 3, FixedInt(3).Int())
}

func TestInterrupt(t *testing.T) {
	client, _ := pair(t)

	errc := make(chan error, 1)
	go func() {
		_, err := client.ReadMessage()
		errc <- err
	}()

	require.NoError(t, client.Interrupt())
	assert.ErrorIs(t, <-errc, os.ErrDeadlineExceeded)
}

func TestInterruptBlockedRead(t *testing.T) {
	client, _ := pair(t)

	errc := make(chan error, 1)
	go func() {
		_, err := client.ReadMessage()
		errc <- err
	}()

	time.Sleep(50 * time.Millisecond)
	select {
	case err := <-errc:
		t.Fatalf("read returned before interrupt: %v", err)
	default:
	}

	require.NoError(t, client.Interrupt())
	select {
	case err := <-errc:
		assert.ErrorIs(t, err, os.ErrDeadlineExceeded)
	case <-time.After(time.Second):
		t.Fatal("read did not return after interrupt")
	}
}
