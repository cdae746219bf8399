package wsniff

import (
	"io"
	"sync"

	"github.com/VictoriaMetrics/metrics"
)

// engineMetrics mirrors the teacher's lazily-initialized *metrics.Set
// pattern (pkg/api/api0/metrics.go's apiMetrics/m()): a private set plus one
// field per counter, built once on first use so every counter still shows
// up in Prometheus output at zero instead of being undefined.
type engineMetrics struct {
	once sync.Once
	set  *metrics.Set

	accepted      *metrics.Counter
	closed        *metrics.Counter
	dialFailures  *metrics.Counter
	bytesSND      *metrics.Counter
	bytesRCV      *metrics.Counter
	framesSND     *metrics.Counter
	framesRCV     *metrics.Counter
	framesMalformed *metrics.Counter
}

func (m *engineMetrics) init() {
	m.once.Do(func() {
		m.set = metrics.NewSet()
		m.accepted = m.set.NewCounter(`w2sniff_connections_accepted_total`)
		m.closed = m.set.NewCounter(`w2sniff_connections_closed_total`)
		m.dialFailures = m.set.NewCounter(`w2sniff_dial_failures_total`)
		m.bytesSND = m.set.NewCounter(`w2sniff_relay_bytes_total{direction="SND"}`)
		m.bytesRCV = m.set.NewCounter(`w2sniff_relay_bytes_total{direction="RCV"}`)
		m.framesSND = m.set.NewCounter(`w2sniff_frames_total{direction="SND"}`)
		m.framesRCV = m.set.NewCounter(`w2sniff_frames_total{direction="RCV"}`)
		m.framesMalformed = m.set.NewCounter(`w2sniff_frames_malformed_total`)
	})
}

// WritePrometheus writes Prometheus text-format metrics for the Proxy
// Engine, mirroring nspkt.Listener.WritePrometheus.
func (e *Engine) WritePrometheus(w io.Writer) {
	e.metrics.init()
	e.metrics.set.WritePrometheus(w)
}
