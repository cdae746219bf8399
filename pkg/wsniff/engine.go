// Package wsniff implements the intercepting TCP proxy: per-connection
// accept/dial/relay lifecycle, length-prefixed frame capture, and the
// first-segment handshake-prefix quirk, per spec.md §4.1.
package wsniff

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/rechdan/w2sniff/pkg/wframe"
	"github.com/rechdan/w2sniff/pkg/wsession"
)

// Engine drives the Proxy Engine component against a shared Session State
// Store. The zero value is not usable; use [NewEngine].
type Engine struct {
	cfg       Config
	store     *wsession.Store
	transform wframe.FrameTransform
	log       zerolog.Logger
	metrics   engineMetrics

	mu      sync.Mutex
	runtime map[uint64]*connRuntime
}

// connRuntime holds the live sockets and cancellation state for one
// Connection; it is never exposed outside the package, the way the
// teacher's nspkt.Listener keeps its socket behind a mutex rather than on
// the exported type.
type connRuntime struct {
	closeOnce sync.Once
	cancel    chan struct{}

	paused atomic.Bool

	// transitioned guards the Connecting -> Connected transition and the
	// one-time first-segment discard; whichever direction reads first
	// wins the CAS.
	transitioned atomic.Bool

	wg sync.WaitGroup
}

// NewEngine creates an Engine backed by store, using transform to
// decode/encode captured frame payloads, and logging via log.
func NewEngine(cfg Config, store *wsession.Store, transform wframe.FrameTransform, log zerolog.Logger) *Engine {
	if transform == nil {
		transform = wframe.Identity{}
	}
	return &Engine{
		cfg:       cfg.withDefaults(),
		store:     store,
		transform: transform,
		log:       log,
		runtime:   make(map[uint64]*connRuntime),
	}
}

// Open accepts exactly one local client, then dials peerIP on the
// configured peer port, then relays until closed. It returns immediately
// with a Connection in state WaitingLocal; all I/O happens off-thread.
func (e *Engine) Open(ctx context.Context, peerIP string) *wsession.Connection {
	conn := e.store.AddConnection(peerIP)

	rt := &connRuntime{cancel: make(chan struct{})}
	e.mu.Lock()
	e.runtime[conn.ID] = rt
	e.mu.Unlock()

	e.metrics.init()
	go e.run(ctx, conn, rt, peerIP)

	return conn
}

// Close idempotently requests termination of conn. Both half-streams shut
// down at their next cooperative poll, within ~[Config.PollInterval] plus
// any in-flight write.
func (e *Engine) Close(conn *wsession.Connection) {
	e.mu.Lock()
	rt := e.runtime[conn.ID]
	e.mu.Unlock()
	if rt == nil {
		return
	}
	rt.closeOnce.Do(func() { close(rt.cancel) })
}

// Pause stops frame recording on conn while leaving the byte-for-byte relay
// running.
func (e *Engine) Pause(conn *wsession.Connection) {
	e.setPaused(conn, true)
	conn.SetState(wsession.Paused)
}

// Resume restores frame recording on a paused conn.
func (e *Engine) Resume(conn *wsession.Connection) {
	e.setPaused(conn, false)
	conn.SetState(wsession.Connected)
}

func (e *Engine) setPaused(conn *wsession.Connection, v bool) {
	e.mu.Lock()
	rt := e.runtime[conn.ID]
	e.mu.Unlock()
	if rt != nil {
		rt.paused.Store(v)
	}
}

// SnapshotFrames returns a cheap, cloneable snapshot of conn's captured
// frames for UI-style reads.
func (e *Engine) SnapshotFrames(conn *wsession.Connection) []wframe.Frame {
	return conn.Frames()
}

func (e *Engine) run(ctx context.Context, conn *wsession.Connection, rt *connRuntime, peerIP string) {
	log := e.log.With().Uint64("conn_id", conn.ID).Str("peer_ip", peerIP).Logger()

	defer func() {
		e.mu.Lock()
		delete(e.runtime, conn.ID)
		e.mu.Unlock()
		conn.SetState(wsession.Closed)
		e.metrics.closed.Inc()
		log.Info().Msg("connection closed")
	}()

	ln, err := net.Listen("tcp", e.cfg.ListenAddr)
	if err != nil {
		log.Error().Err(err).Msg("listen failed")
		return
	}
	defer ln.Close()

	local, err := acceptPoll(ctx, ln, rt.cancel, e.cfg.PollInterval)
	if err != nil {
		if err != errClosing {
			log.Warn().Err(err).Msg("accept failed")
		}
		return
	}
	defer local.Close()
	e.metrics.accepted.Inc()

	conn.SetState(wsession.WaitingRemote)
	log.Info().Msg("local client accepted")

	remote, err := net.DialTimeout("tcp", fmt.Sprintf("%s:%d", peerIP, e.cfg.PeerPort), e.cfg.DialTimeout)
	if err != nil {
		e.metrics.dialFailures.Inc()
		log.Warn().Err(err).Msg("dial peer failed")
		return
	}
	defer remote.Close()

	conn.SetState(wsession.Connecting)
	log.Info().Msg("connected to peer, relaying")

	rt.wg.Add(2)
	go func() {
		defer rt.wg.Done()
		e.relayDirection(ctx, conn, rt, local, remote, wframe.SND)
	}()
	go func() {
		defer rt.wg.Done()
		e.relayDirection(ctx, conn, rt, remote, local, wframe.RCV)
	}()
	rt.wg.Wait()
}

var errClosing = errors.New("wsniff: closing")

// acceptPoll accepts one connection from ln, polling so cancel (or ctx) is
// observed within interval even though Accept has no native timeout on a
// generic net.Listener.
func acceptPoll(ctx context.Context, ln net.Listener, cancel <-chan struct{}, interval time.Duration) (net.Conn, error) {
	type deadliner interface {
		SetDeadline(time.Time) error
	}
	dl, _ := ln.(deadliner)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-cancel:
			return nil, errClosing
		default:
		}

		if dl != nil {
			dl.SetDeadline(time.Now().Add(interval))
		}
		c, err := ln.Accept()
		if err == nil {
			return c, nil
		}
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			continue
		}
		return nil, err
	}
}
