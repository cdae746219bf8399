package wsession

import (
	"sync"

	"github.com/rechdan/w2sniff/pkg/wframe"
)

// Connection is one proxied TCP session: a peer address, its lifecycle
// state, and the append-only list of Frames captured on it.
//
// Frames is guarded by mu rather than by sync.Map: appends must preserve
// arrival order within a direction (spec requirement), which a map cannot
// give us, so a plain mutex-held slice is the right fit here even though
// [Store] uses sync.Map for its connection registry.
type Connection struct {
	ID     uint64
	PeerIP string

	mu     sync.Mutex
	state  ConnState
	frames []wframe.Frame
}

func newConnection(id uint64, peerIP string) *Connection {
	return &Connection{ID: id, PeerIP: peerIP, state: WaitingLocal}
}

// State returns the connection's current lifecycle state.
func (c *Connection) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetState transitions the connection to s.
func (c *Connection) SetState(s ConnState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// AppendFrame records f on this connection. Paused connections still relay
// bytes at the socket layer but the caller is expected not to call
// AppendFrame while Paused; this method itself has no opinion on state.
func (c *Connection) AppendFrame(f wframe.Frame) {
	c.mu.Lock()
	c.frames = append(c.frames, f)
	c.mu.Unlock()
}

// Frames returns a cloned snapshot of the connection's captured frames,
// safe for a UI reader to hold onto without racing further appends.
func (c *Connection) Frames() []wframe.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]wframe.Frame, len(c.frames))
	copy(out, c.frames)
	return out
}

// Frame looks up a previously captured frame by id.
func (c *Connection) Frame(id uint64) (wframe.Frame, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, f := range c.frames {
		if f.ID == id {
			return f, true
		}
	}
	return wframe.Frame{}, false
}
