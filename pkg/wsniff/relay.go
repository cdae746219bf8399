package wsniff

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/rechdan/w2sniff/pkg/wframe"
	"github.com/rechdan/w2sniff/pkg/wsession"
)

// firstSegmentDiscardLen is the out-of-band handshake prefix length that
// triggers the one-time 4-byte discard convention (spec.md §4.1).
const firstSegmentDiscardLen = 120

// halfCloser is implemented by *net.TCPConn; used for a graceful half
// shutdown on exit, mirroring the teacher-adjacent SuperProxy relay's
// CloseWrite/CloseRead pattern.
type halfCloser interface {
	CloseWrite() error
	CloseRead() error
}

// relayDirection runs one half of the bidirectional relay: read from src,
// write verbatim to dst immediately, then feed the persistent reassembly
// buffer through the Frame Codec and append decoded frames to conn (unless
// paused). It loops until the connection is cancelled, src hits EOF, or an
// I/O error occurs, then half-shuts-down dst's write side.
func (e *Engine) relayDirection(ctx context.Context, conn *wsession.Connection, rt *connRuntime, src, dst net.Conn, dir wframe.Direction) {
	e.metrics.init()

	defer func() {
		if hc, ok := dst.(halfCloser); ok {
			hc.CloseWrite()
		}
		if hc, ok := src.(halfCloser); ok {
			hc.CloseRead()
		}
	}()

	log := e.log.With().Uint64("conn_id", conn.ID).Str("direction", dir.String()).Logger()

	var buf []byte
	read := make([]byte, e.cfg.ReadBufferSize)

	for {
		select {
		case <-ctx.Done():
			return
		case <-rt.cancel:
			return
		default:
		}

		src.SetReadDeadline(time.Now().Add(e.cfg.PollInterval))
		n, err := src.Read(read)
		if n > 0 {
			if _, werr := dst.Write(read[:n]); werr != nil {
				log.Warn().Err(werr).Msg("write to peer failed")
				return
			}
			if dir == wframe.SND {
				e.metrics.bytesSND.Add(n)
			} else {
				e.metrics.bytesRCV.Add(n)
			}

			buf = append(buf, read[:n]...)

			if rt.transitioned.CompareAndSwap(false, true) {
				conn.SetState(wsession.Connected)
				if n == firstSegmentDiscardLen && len(buf) >= 4 {
					buf = append([]byte(nil), buf[4:]...)
				}
			}

			buf = e.extractAndRecord(conn, rt, buf, dir)
		}
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			if !errors.Is(err, net.ErrClosed) {
				log.Debug().Err(err).Msg("read ended")
			}
			return
		}
	}
}

// extractAndRecord pulls as many frames as are available out of buf,
// decodes each, and appends it to conn unless the connection is currently
// Paused. It returns the unconsumed remainder, which the caller keeps
// accumulating into on the next read.
func (e *Engine) extractAndRecord(conn *wsession.Connection, rt *connRuntime, buf []byte, dir wframe.Direction) []byte {
	frames, rest := wframe.Extract(buf)
	for _, ex := range frames {
		decoded := wframe.Decode(e.transform, ex.Raw)

		if dir == wframe.SND {
			e.metrics.framesSND.Inc()
		} else {
			e.metrics.framesRCV.Inc()
		}

		if rt.paused.Load() {
			continue
		}

		f, err := wframe.NewFrame(e.store.NextFrameID(), dir, decoded)
		if err != nil {
			e.metrics.framesMalformed.Inc()
			continue
		}
		conn.AppendFrame(f)
	}
	return rest
}
