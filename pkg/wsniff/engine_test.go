package wsniff

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/rechdan/w2sniff/pkg/wframe"
	"github.com/rechdan/w2sniff/pkg/wpkt"
	"github.com/rechdan/w2sniff/pkg/wsession"
)

// drain reads from c until it errors, discarding everything; used to keep
// the opposite end of a net.Pipe() unblocked in tests that don't care about
// the pass-through bytes themselves.
func drain(c net.Conn) {
	buf := make([]byte, 4096)
	for {
		if _, err := c.Read(buf); err != nil {
			return
		}
	}
}

func testEngine(cfg Config) *Engine {
	return NewEngine(cfg, wsession.NewStore(), wframe.Identity{}, zerolog.Nop())
}

// buildFrame constructs one on-wire frame of totalSize bytes with a valid
// 12-byte header declaring that size.
func buildFrame(totalSize int, packetID uint16) []byte {
	h := wpkt.Header{Size: uint16(totalSize), PacketID: packetID}
	b := wpkt.Serialize(h)
	b = append(b, make([]byte, totalSize-wpkt.Size)...)
	return b
}

// TestRelayTwoFramesOneSegment is the spec.md §8 "two-frame relay" scenario:
// two complete frames arrive in a single read and must both be recorded, in
// order, while being passed through byte-for-byte.
func TestRelayTwoFramesOneSegment(t *testing.T) {
	e := testEngine(Config{PollInterval: 20 * time.Millisecond, ReadBufferSize: 1024}.withDefaults())
	conn := e.store.AddConnection("127.0.0.1")
	conn.SetState(wsession.Connecting)
	rt := &connRuntime{cancel: make(chan struct{})}

	clientEnd, local := net.Pipe()
	peerEnd, remote := net.Pipe()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go e.relayDirection(ctx, conn, rt, local, remote, wframe.SND)
	go e.relayDirection(ctx, conn, rt, remote, local, wframe.RCV)

	f1 := buildFrame(20, 1)
	f2 := buildFrame(16, 2)
	segment := append(append([]byte{}, f1...), f2...)

	done := make(chan struct{})
	go func() {
		defer close(done)
		got := make([]byte, len(segment))
		if _, err := readFull(peerEnd, got); err != nil {
			t.Errorf("read at peer: %v", err)
			return
		}
		if string(got) != string(segment) {
			t.Errorf("peer got %x, want %x (pass-through must be byte-exact)", got, segment)
		}
	}()

	if _, err := clientEnd.Write(segment); err != nil {
		t.Fatalf("write segment: %v", err)
	}
	<-done

	waitFrameCount(t, conn, 2)
	frames := conn.Frames()
	if frames[0].Header.PacketID != 1 || frames[1].Header.PacketID != 2 {
		t.Errorf("frame order/content wrong: %+v", frames)
	}
	for _, f := range frames {
		if f.Direction != wframe.SND {
			t.Errorf("frame direction = %v, want SND", f.Direction)
		}
	}
}

// TestRelayPartialSegment is the spec.md §8 "partial segment" scenario: a
// frame split across two reads must only be recorded once fully buffered.
func TestRelayPartialSegment(t *testing.T) {
	e := testEngine(Config{PollInterval: 20 * time.Millisecond, ReadBufferSize: 1024}.withDefaults())
	conn := e.store.AddConnection("127.0.0.1")
	conn.SetState(wsession.Connecting)
	rt := &connRuntime{cancel: make(chan struct{})}

	clientEnd, local := net.Pipe()
	peerEnd, remote := net.Pipe()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go e.relayDirection(ctx, conn, rt, local, remote, wframe.SND)
	go drain(peerEnd)

	frame := buildFrame(24, 7)

	go clientEnd.Write(frame[:5])
	time.Sleep(30 * time.Millisecond)
	if got := conn.Frames(); len(got) != 0 {
		t.Fatalf("frame recorded before fully buffered: %+v", got)
	}

	go clientEnd.Write(frame[5:])
	waitFrameCount(t, conn, 1)
	if conn.Frames()[0].Header.PacketID != 7 {
		t.Errorf("wrong frame recorded: %+v", conn.Frames()[0])
	}
}

// TestRelayFirstSegmentDiscard is the spec.md §8 "first-segment discard"
// scenario: a first read of exactly 120 bytes drops the leading 4 bytes of
// the persistent buffer before framing, while the pass-through write is
// unaffected.
func TestRelayFirstSegmentDiscard(t *testing.T) {
	e := testEngine(Config{PollInterval: 20 * time.Millisecond, ReadBufferSize: 1024}.withDefaults())
	conn := e.store.AddConnection("127.0.0.1")
	conn.SetState(wsession.Connecting)
	rt := &connRuntime{cancel: make(chan struct{})}

	clientEnd, local := net.Pipe()
	peerEnd, remote := net.Pipe()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go e.relayDirection(ctx, conn, rt, local, remote, wframe.SND)

	inner := buildFrame(116, 9) // 120 - 4 discarded prefix bytes
	segment := append([]byte{0xAA, 0xAA, 0xAA, 0xAA}, inner...)
	if len(segment) != firstSegmentDiscardLen {
		t.Fatalf("test fixture wrong size: %d", len(segment))
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		got := make([]byte, len(segment))
		readFull(peerEnd, got)
		if string(got) != string(segment) {
			t.Errorf("pass-through must still carry the discarded 4 bytes")
		}
	}()
	clientEnd.Write(segment)
	<-done

	waitFrameCount(t, conn, 1)
	if conn.Frames()[0].Header.PacketID != 9 {
		t.Errorf("discard misaligned framing: %+v", conn.Frames()[0])
	}
	if !rt.transitioned.Load() {
		t.Error("connection should have transitioned to Connected")
	}
}

// TestRelayNoDiscardForOtherLengths checks the companion invariant: a first
// read of any length other than 120 performs no discard.
func TestRelayNoDiscardForOtherLengths(t *testing.T) {
	e := testEngine(Config{PollInterval: 20 * time.Millisecond, ReadBufferSize: 1024}.withDefaults())
	conn := e.store.AddConnection("127.0.0.1")
	conn.SetState(wsession.Connecting)
	rt := &connRuntime{cancel: make(chan struct{})}

	clientEnd, local := net.Pipe()
	peerEnd, remote := net.Pipe()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go e.relayDirection(ctx, conn, rt, local, remote, wframe.SND)
	go drain(peerEnd)

	frame := buildFrame(20, 3)
	clientEnd.Write(frame)

	waitFrameCount(t, conn, 1)
	if conn.Frames()[0].Header.PacketID != 3 {
		t.Errorf("unexpected discard for non-120-byte first read: %+v", conn.Frames()[0])
	}
}

// TestRelayPauseStopsRecording checks that Paused still relays bytes but
// stops appending frames, and Resume restores recording.
func TestRelayPauseStopsRecording(t *testing.T) {
	e := testEngine(Config{PollInterval: 20 * time.Millisecond, ReadBufferSize: 1024}.withDefaults())
	conn := e.store.AddConnection("127.0.0.1")
	conn.SetState(wsession.Connecting)
	rt := &connRuntime{cancel: make(chan struct{})}

	clientEnd, local := net.Pipe()
	peerEnd, remote := net.Pipe()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go e.relayDirection(ctx, conn, rt, local, remote, wframe.SND)
	go drain(peerEnd)

	rt.paused.Store(true)
	clientEnd.Write(buildFrame(16, 1))
	time.Sleep(30 * time.Millisecond)
	if got := conn.Frames(); len(got) != 0 {
		t.Fatalf("frame recorded while paused: %+v", got)
	}

	rt.paused.Store(false)
	clientEnd.Write(buildFrame(16, 2))
	waitFrameCount(t, conn, 1)
	if conn.Frames()[0].Header.PacketID != 2 {
		t.Errorf("wrong frame recorded after resume: %+v", conn.Frames()[0])
	}
}

// TestEngineOpenCloseLifecycle exercises the full Open/accept/dial/Close
// path over real loopback sockets, checking the spec.md §5 "close latency
// <= ~100ms + in-flight write" bound with headroom for test scheduling.
func TestEngineOpenCloseLifecycle(t *testing.T) {
	peerLn, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen peer: %v", err)
	}
	defer peerLn.Close()
	peerPort := peerLn.Addr().(*net.TCPAddr).Port

	peerAccepted := make(chan net.Conn, 1)
	go func() {
		c, err := peerLn.Accept()
		if err == nil {
			peerAccepted <- c
		}
	}()

	localPort := freeTCPPort(t)
	cfg := Config{
		ListenAddr:     fmt.Sprintf("127.0.0.1:%d", localPort),
		PeerPort:       peerPort,
		DialTimeout:    time.Second,
		PollInterval:   20 * time.Millisecond,
		ReadBufferSize: 1024,
	}
	e := testEngine(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn := e.Open(ctx, "127.0.0.1")
	if conn.State() != wsession.WaitingLocal {
		t.Errorf("initial state = %v, want WaitingLocal", conn.State())
	}

	client := dialWithRetry(t, cfg.ListenAddr, time.Second)
	defer client.Close()

	select {
	case peerConn := <-peerAccepted:
		defer peerConn.Close()
	case <-time.After(time.Second):
		t.Fatal("peer never accepted")
	}

	waitState(t, conn, wsession.Connecting, time.Second)

	client.Write(buildFrame(16, 42))
	waitFrameCount(t, conn, 1)

	start := time.Now()
	e.Close(conn)
	waitState(t, conn, wsession.Closed, 500*time.Millisecond)
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("close took %v, want well under 500ms", elapsed)
	}
}

func readFull(c net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := c.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func waitFrameCount(t *testing.T, conn *wsession.Connection, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(conn.Frames()) >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d frames, got %d", want, len(conn.Frames()))
}

func waitState(t *testing.T, conn *wsession.Connection, want wsession.ConnState, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if conn.State() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for state %v, got %v", want, conn.State())
}

func freeTCPPort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("allocate port: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()
	return port
}

func dialWithRetry(t *testing.T, addr string, timeout time.Duration) net.Conn {
	t.Helper()
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		c, err := net.Dial("tcp", addr)
		if err == nil {
			return c
		}
		lastErr = err
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("dial %s: %v", addr, lastErr)
	return nil
}
