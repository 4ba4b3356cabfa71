// Package wl implements the client side of the core Wayland protocol.
//
// Objects decode their events into plain event structs, such as
// RegistryGlobal or BufferRelease, and State hands each one to a single
// Handler. A State is single-threaded: nothing reads from the socket
// unless one of its dispatch methods is called.
package wl

import (
	"errors"
	"fmt"

	"deedles.dev/paber/internal/debug"
	"deedles.dev/paber/internal/objstore"
	"deedles.dev/paber/wire"
)

type State struct {
	// Handler, if set, is called with every event after the object that
	// it was sent to has decoded it.
	Handler func(obj wire.Object, ev any)

	conn    *wire.Conn
	objects *objstore.Store
	out     []*wire.MessageBuilder
	display *Display
}

// Dial connects to the compositor based on the current environment.
func Dial() (*State, error) {
	c, err := wire.Dial()
	if err != nil {
		return nil, err
	}

	return NewState(c), nil
}

func NewState(conn *wire.Conn) *State {
	state := State{
		conn:    conn,
		objects: objstore.New(1),
	}
	state.display = &Display{Proxy: NewProxy(&state)}
	state.Add(state.display)

	return &state
}

func (state *State) Display() *Display {
	return state.display
}

// Close discards any unsent requests and closes the connection.
func (state *State) Close() error {
	for _, msg := range state.out {
		msg.Discard()
	}
	state.out = nil
	return state.conn.Close()
}

// Interrupt makes a blocking Dispatch return. It may be called from
// any goroutine, such as from a context.AfterFunc callback. The State
// should be closed afterwards.
func (state *State) Interrupt() error {
	return state.conn.Interrupt()
}

func (state *State) Add(obj wire.Object) {
	state.objects.Add(obj)
}

func (state *State) Get(id uint32) wire.Object {
	return state.objects.Get(id)
}

func (state *State) Delete(id uint32) {
	state.objects.Delete(id)
}

// Enqueue queues a request to be sent by the next Flush.
func (state *State) Enqueue(msg *wire.MessageBuilder) {
	state.out = append(state.out, msg)
}

// Flush sends all queued requests.
func (state *State) Flush() error {
	out := state.out
	state.out = nil

	for i, msg := range out {
		debug.Printf(" -> %v", msg)
		err := msg.Build(state.conn)
		if err != nil {
			for _, rest := range out[i+1:] {
				rest.Discard()
			}
			return fmt.Errorf("send %v: %w", msg.Method, err)
		}
	}
	return nil
}

// Dispatch flushes queued requests, blocks until at least one event has
// arrived, and then dispatches every event that can be read without
// blocking.
func (state *State) Dispatch() error {
	err := state.Flush()
	if err != nil {
		return err
	}

	msg, err := state.conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("read message: %w", err)
	}
	err = state.dispatch(msg)
	if err != nil {
		return err
	}

	return state.DispatchPending()
}

// DispatchPending flushes queued requests and dispatches every event
// that can be read without blocking.
func (state *State) DispatchPending() error {
	err := state.Flush()
	if err != nil {
		return err
	}

	for {
		ok, err := state.conn.Pending()
		if err != nil {
			return fmt.Errorf("poll: %w", err)
		}
		if !ok {
			break
		}

		msg, err := state.conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read message: %w", err)
		}
		err = state.dispatch(msg)
		if err != nil {
			return err
		}
	}

	return state.Flush()
}

// RoundTrip blocks until the compositor has processed every request
// sent so far and every event that it sent in response has been
// dispatched.
func (state *State) RoundTrip() error {
	var done bool
	state.display.Sync().Then(func(uint32) { done = true })

	for !done {
		err := state.Dispatch()
		if err != nil {
			return err
		}
	}
	return nil
}

func (state *State) dispatch(msg *wire.MessageBuffer) error {
	obj := state.objects.Get(msg.Sender())
	if obj == nil {
		debug.Printf("%v", wire.UnknownSenderIDError{Msg: msg})
		return nil
	}

	ev, err := obj.Dispatch(msg)
	if err != nil {
		var unknown wire.UnknownOpError
		if errors.As(err, &unknown) {
			debug.Printf("%v", err)
			return nil
		}
		if strict, ok := obj.(wire.Strict); ok && strict.Strict() {
			return fmt.Errorf("decode %v@%v.%v: %w", obj.Interface(), obj.ID(), obj.MethodName(msg.Op()), err)
		}
		debug.Printf("dropping malformed %v@%v.%v: %v", obj.Interface(), obj.ID(), obj.MethodName(msg.Op()), err)
		return nil
	}
	debug.Printf("%v", msg.Debug(obj))

	if state.Handler != nil {
		state.Handler(obj, ev)
	}

	if ev, ok := ev.(DisplayError); ok {
		perr := ProtocolError{ObjectID: ev.ObjectID, Code: ev.Code, Message: ev.Message}
		if obj := state.objects.Get(ev.ObjectID); obj != nil {
			perr.Interface = obj.Interface()
		}
		return perr
	}
	return nil
}

// ProtocolError is returned by the dispatch methods when the compositor
// reports a fatal protocol error. The connection is unusable
// afterwards.
type ProtocolError struct {
	ObjectID  uint32
	Interface string
	Code      uint32
	Message   string
}

func (err ProtocolError) Error() string {
	return fmt.Sprintf("protocol error on %v@%v: code %v: %v", err.Interface, err.ObjectID, err.Code, err.Message)
}
