package wl

import "deedles.dev/paber/wire"

type ShmPool struct {
	Proxy
}

func (pool *ShmPool) Interface() string {
	return ShmPoolInterface
}

func (pool *ShmPool) MethodName(op uint16) string {
	return "unknown"
}

func (pool *ShmPool) Dispatch(msg *wire.MessageBuffer) (any, error) {
	return nil, wire.UnknownOpError{Interface: ShmPoolInterface, Type: "event", Op: msg.Op()}
}

// CreateBuffer creates a buffer backed by the pool's memory, starting
// at offset.
func (pool *ShmPool) CreateBuffer(offset, width, height, stride int32, format ShmFormat) *Buffer {
	buffer := Buffer{Proxy: NewProxy(pool.state)}
	pool.state.Add(&buffer)

	msg := wire.NewMessage(pool, 0, "create_buffer")
	msg.WriteUint(buffer.ID())
	msg.WriteInt(offset)
	msg.WriteInt(width)
	msg.WriteInt(height)
	msg.WriteInt(stride)
	msg.WriteUint(uint32(format))
	pool.state.Enqueue(msg)

	return &buffer
}

// Destroy destroys the pool. Buffers created from it stay valid.
func (pool *ShmPool) Destroy() {
	msg := wire.NewMessage(pool, 1, "destroy")
	pool.state.Enqueue(msg)
}

func (pool *ShmPool) Resize(size int32) {
	msg := wire.NewMessage(pool, 2, "resize")
	msg.WriteInt(size)
	pool.state.Enqueue(msg)
}
