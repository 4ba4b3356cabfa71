package wl

import (
	"os"

	"deedles.dev/paber/wire"
)

type Shm struct {
	Proxy
	formats map[ShmFormat]struct{}
}

// ShmFormatEvent announces a pixel format supported by the compositor.
type ShmFormatEvent struct {
	Format ShmFormat
}

// BindShm binds the wl_shm global with the given name.
func BindShm(state *State, name, version uint32) *Shm {
	shm := Shm{
		Proxy:   NewProxy(state),
		formats: make(map[ShmFormat]struct{}),
	}
	state.Display().GetRegistry().Bind(name, &shm, version)
	return &shm
}

// Supports reports whether the compositor has announced support for
// format.
func (shm *Shm) Supports(format ShmFormat) bool {
	_, ok := shm.formats[format]
	return ok
}

func (shm *Shm) Interface() string {
	return ShmInterface
}

func (shm *Shm) MethodName(op uint16) string {
	if op == 0 {
		return "format"
	}
	return "unknown"
}

func (shm *Shm) Dispatch(msg *wire.MessageBuffer) (any, error) {
	if msg.Op() != 0 {
		return nil, wire.UnknownOpError{Interface: ShmInterface, Type: "event", Op: msg.Op()}
	}

	ev := ShmFormatEvent{Format: ShmFormat(msg.ReadUint())}
	if err := msg.Err(); err != nil {
		return nil, err
	}
	shm.formats[ev.Format] = struct{}{}
	return ev, nil
}

// CreatePool shares size bytes of file with the compositor. The file
// descriptor is duplicated, so the caller may close file once the
// request has been flushed.
func (shm *Shm) CreatePool(file *os.File, size int32) *ShmPool {
	pool := ShmPool{Proxy: NewProxy(shm.state)}
	shm.state.Add(&pool)

	msg := wire.NewMessage(shm, 0, "create_pool")
	msg.WriteUint(pool.ID())
	msg.WriteFile(file)
	msg.WriteInt(size)
	shm.state.Enqueue(msg)

	return &pool
}
