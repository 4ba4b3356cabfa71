package wl

import "deedles.dev/paber/wire"

type Callback struct {
	Proxy
	done func(uint32)
}

// CallbackDone is sent once, after which the callback is destroyed by
// the compositor.
type CallbackDone struct {
	Data uint32
}

// Then sets f to be called when the callback fires.
func (c *Callback) Then(f func(uint32)) {
	c.done = f
}

func (c *Callback) Interface() string {
	return CallbackInterface
}

func (c *Callback) MethodName(op uint16) string {
	if op == 0 {
		return "done"
	}
	return "unknown"
}

func (c *Callback) Dispatch(msg *wire.MessageBuffer) (any, error) {
	if msg.Op() != 0 {
		return nil, wire.UnknownOpError{Interface: CallbackInterface, Type: "event", Op: msg.Op()}
	}

	ev := CallbackDone{Data: msg.ReadUint()}
	if err := msg.Err(); err != nil {
		return nil, err
	}
	if c.done != nil {
		c.done(ev.Data)
	}
	return ev, nil
}
