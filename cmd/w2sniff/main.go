// Command w2sniff runs the intercepting TCP proxy core standalone, driven
// by a configured peer allow-list instead of the original GUI shell (out of
// scope; see spec.md §1).
package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"net/http/pprof"

	"github.com/hashicorp/go-envparse"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/rechdan/w2sniff/internal/config"
	"github.com/rechdan/w2sniff/pkg/wframe"
	"github.com/rechdan/w2sniff/pkg/wframe/xorkey"
	"github.com/rechdan/w2sniff/pkg/wsession"
	"github.com/rechdan/w2sniff/pkg/wsniff"
)

var opt struct {
	Help   bool
	XorKey string
}

func init() {
	pflag.BoolVarP(&opt.Help, "help", "h", false, "Show this help text")
	pflag.StringVar(&opt.XorKey, "xor-key", "", "Hex-encoded key for the xorkey FrameTransform (empty = identity, no transform)")
}

func main() {
	pflag.Parse()

	if pflag.NArg() > 1 || opt.Help {
		fmt.Printf("usage: %s [options] [env_file]\n\noptions:\n%s\nnote: if env_file is provided, config from the environment is ignored\n", os.Args[0], pflag.CommandLine.FlagUsages())
		if opt.Help {
			os.Exit(2)
		}
		os.Exit(0)
	}

	var e []string
	if pflag.NArg() == 0 {
		e = os.Environ()
	} else {
		x, err := readEnv(pflag.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: read env file: %v\n", err)
			os.Exit(1)
		}
		e = x
	}

	var c config.Config
	if err := c.UnmarshalEnv(e); err != nil {
		fmt.Fprintf(os.Stderr, "error: parse config: %v\n", err)
		os.Exit(1)
	}

	log := zerolog.New(newConsoleWriter(c.LogStdoutPretty)).
		Level(c.LogLevel).
		With().Timestamp().Logger()

	if len(c.PeerAddrs) == 0 {
		log.Fatal().Msg("no peer addresses configured (W2SNIFF_PEER_ADDRS)")
	}

	transform, err := buildTransform(opt.XorKey)
	if err != nil {
		log.Fatal().Err(err).Msg("parse --xor-key")
	}

	store := wsession.NewStore()
	engine := wsniff.NewEngine(wsniff.Config{
		ListenAddr:   c.ListenAddr,
		PeerPort:     c.PeerPort,
		DialTimeout:  c.DialTimeout,
		PollInterval: c.PollInterval,
	}, store, transform, log)

	if c.DebugServerAddr != "" {
		mux := http.NewServeMux()
		mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
			engine.WritePrometheus(w)
		})
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
		go func() {
			log.Warn().Str("addr", c.DebugServerAddr).Msg("starting insecure debug server")
			if err := http.ListenAndServe(c.DebugServerAddr, mux); err != nil {
				log.Warn().Err(err).Msg("debug server failed")
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for _, ip := range c.PeerAddrs {
		conn := engine.Open(ctx, ip)
		log.Info().Uint64("conn_id", conn.ID).Str("peer", ip).Msg("opened connection")
	}

	log.Log().Msg("w2sniff running, waiting for shutdown signal")
	<-ctx.Done()
	log.Log().Msg("shutting down")
}

func buildTransform(hexKey string) (wframe.FrameTransform, error) {
	if hexKey == "" {
		return wframe.Identity{}, nil
	}
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("invalid hex key: %w", err)
	}
	return xorkey.New(key), nil
}

func newConsoleWriter(pretty bool) zerolog.ConsoleWriter {
	w := zerolog.ConsoleWriter{Out: os.Stdout, NoColor: !pretty}
	return w
}

func readEnv(name string) ([]string, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := envparse.Parse(f)
	if err != nil {
		return nil, err
	}

	var r []string
	for k, v := range m {
		r = append(r, k+"="+v)
	}
	return r, nil
}
