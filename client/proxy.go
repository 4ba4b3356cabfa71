package wl

// Proxy holds the bookkeeping shared by every client-side object. It is
// embedded by the object types of this package and of protocol
// extension packages.
type Proxy struct {
	id      uint32
	state   *State
	deleted bool
}

func NewProxy(state *State) Proxy {
	return Proxy{state: state}
}

func (p *Proxy) ID() uint32 {
	return p.id
}

func (p *Proxy) SetID(id uint32) {
	p.id = id
}

// Delete marks the object as deleted. It is called once the compositor
// has acknowledged the destruction of the object.
func (p *Proxy) Delete() {
	p.deleted = true
}

// Deleted reports whether the object's ID has been released.
func (p *Proxy) Deleted() bool {
	return p.deleted
}

func (p *Proxy) State() *State {
	return p.state
}
