// Package wsession implements the process-wide session state store: the
// registry of proxied Connections, the selected-connection/selected-frame
// pointers a UI would track, and the monotonic id allocators backing both.
package wsession

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Store is the session state store; [NewStore] returns an empty one. Safe
// for concurrent use by I/O tasks and UI-style readers alike, per the
// concurrency model's short-held-lock requirement.
type Store struct {
	connections sync.Map // uint64 -> *Connection

	nextConnID atomic.Uint64
	nextFrameID atomic.Uint64

	mu         sync.Mutex
	viewMode   ViewMode
	selConn    uint64 // 0 = none
	selFrame   uint64 // 0 = none
}

// NewStore creates an empty session state store.
func NewStore() *Store {
	return &Store{}
}

// NextFrameID allocates the next monotonic frame id. Exposed so the proxy
// engine can stamp a [wframe.Frame] before handing it to AppendFrame.
func (s *Store) NextFrameID() uint64 {
	return s.nextFrameID.Add(1)
}

// AddConnection registers a new Connection for peerIP and returns it,
// already in state WaitingLocal.
func (s *Store) AddConnection(peerIP string) *Connection {
	id := s.nextConnID.Add(1)
	c := newConnection(id, peerIP)
	s.connections.Store(id, c)
	return c
}

// RemoveConnection drops conn from the registry. If conn is the selected
// connection, both the connection and frame selections are cleared; a
// selected frame is left alone when another connection is selected.
func (s *Store) RemoveConnection(conn *Connection) {
	s.connections.Delete(conn.ID)

	s.mu.Lock()
	if s.selConn == conn.ID {
		s.selConn = 0
		s.selFrame = 0
	}
	s.mu.Unlock()
}

// GetConnections returns every currently registered connection, in no
// particular order.
func (s *Store) GetConnections() []*Connection {
	var out []*Connection
	s.connections.Range(func(_, v any) bool {
		out = append(out, v.(*Connection))
		return true
	})
	return out
}

// GetConnection looks up a connection by id.
func (s *Store) GetConnection(id uint64) (*Connection, bool) {
	v, ok := s.connections.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*Connection), true
}

// SetSelectedConnection sets the selected-connection pointer. Per spec,
// changing it always clears the selected-frame pointer, even if the new
// connection is the same one already selected.
func (s *Store) SetSelectedConnection(id uint64) {
	s.mu.Lock()
	s.selConn = id
	s.selFrame = 0
	s.mu.Unlock()
}

// SelectedConnection returns the currently selected connection, if any.
func (s *Store) SelectedConnection() (*Connection, bool) {
	s.mu.Lock()
	id := s.selConn
	s.mu.Unlock()
	if id == 0 {
		return nil, false
	}
	return s.GetConnection(id)
}

// SetSelectedFrame sets the selected-frame pointer. The frame need not
// belong to the currently selected connection; callers normally only
// select a frame on the selected connection, but the store does not
// enforce that.
func (s *Store) SetSelectedFrame(id uint64) {
	s.mu.Lock()
	s.selFrame = id
	s.mu.Unlock()
}

// SelectedFrameID returns the selected-frame pointer, or (0, false) if none.
func (s *Store) SelectedFrameID() (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selFrame == 0 {
		return 0, false
	}
	return s.selFrame, true
}

// SetViewMode sets the byte-view rendering mode used by GetBufferView.
func (s *Store) SetViewMode(m ViewMode) {
	s.mu.Lock()
	s.viewMode = m
	s.mu.Unlock()
}

// ViewMode returns the current byte-view rendering mode.
func (s *Store) ViewMode() ViewMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewMode
}

// GetBufferView materializes the currently selected frame's bytes in the
// currently selected view mode. Returns an error if no connection or frame
// is selected, or if the selected frame id is no longer present (e.g. its
// connection was removed).
func (s *Store) GetBufferView() (string, error) {
	conn, ok := s.SelectedConnection()
	if !ok {
		return "", fmt.Errorf("wsession: no connection selected")
	}
	frameID, ok := s.SelectedFrameID()
	if !ok {
		return "", fmt.Errorf("wsession: no frame selected")
	}
	f, ok := conn.Frame(frameID)
	if !ok {
		return "", fmt.Errorf("wsession: selected frame %d not found on connection %d", frameID, conn.ID)
	}
	return Render(s.ViewMode(), f.Data), nil
}
