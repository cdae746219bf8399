package wsniff

import "time"

// Config tunes the Proxy Engine. The production defaults match spec.md §4.1
// and §6 exactly (fixed port 8281, 1.5s dial timeout, 100ms poll interval);
// ListenAddr and PeerPort are overridable so tests and local tooling are not
// forced onto a privileged, globally-shared port.
type Config struct {
	// ListenAddr is the local address the engine accepts exactly one client
	// connection on per Open call, e.g. "0.0.0.0:8281".
	ListenAddr string
	// PeerPort is the port dialed on the peer IP passed to Open.
	PeerPort int
	// DialTimeout bounds the peer dial. Default 1.5s.
	DialTimeout time.Duration
	// PollInterval is the cooperative-cancellation poll granularity applied
	// to both Accept and Read. Default 100ms.
	PollInterval time.Duration
	// ReadBufferSize bounds a single relay read. Default 1024.
	ReadBufferSize int
}

const (
	defaultPort           = 8281
	defaultDialTimeout    = 1500 * time.Millisecond
	defaultPollInterval   = 100 * time.Millisecond
	defaultReadBufferSize = 1024
)

// DefaultConfig returns the spec-mandated production configuration, binding
// to all interfaces on the fixed port.
func DefaultConfig() Config {
	return Config{
		ListenAddr:     "0.0.0.0:8281",
		PeerPort:       defaultPort,
		DialTimeout:    defaultDialTimeout,
		PollInterval:   defaultPollInterval,
		ReadBufferSize: defaultReadBufferSize,
	}
}

func (c Config) withDefaults() Config {
	if c.PeerPort == 0 {
		c.PeerPort = defaultPort
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = defaultDialTimeout
	}
	if c.PollInterval == 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.ReadBufferSize == 0 {
		c.ReadBufferSize = defaultReadBufferSize
	}
	return c
}
