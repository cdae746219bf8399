// Command w2edit loads, mutates and saves the legacy binary record files
// (serverlist.bin, server_name.bin, strdef.bin) from the command line,
// replacing the original GUI editor shell (out of scope; see spec.md §1).
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/hashicorp/go-envparse"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/rechdan/w2sniff/internal/config"
	"github.com/rechdan/w2sniff/pkg/wrecord"
)

var opt struct {
	Help bool
}

func init() {
	pflag.BoolVarP(&opt.Help, "help", "h", false, "Show this help text")
}

func usage() string {
	return fmt.Sprintf(`usage: %s [options] <command> [args...]

commands:
  dump serverlist                       print the decoded ServerList record
  dump servername                       print the decoded ServerName record
  dump strdef                           print the decoded Strdef record
  set-world-url <world_idx> <url>       set a world's URL and save serverlist.bin
  set-world-channel <world_idx> <chan_idx> <url>
                                        set a world channel's URL and save serverlist.bin

options:
%s`, os.Args[0], pflag.CommandLine.FlagUsages())
}

func main() {
	pflag.Parse()

	if opt.Help || pflag.NArg() == 0 {
		fmt.Print(usage())
		if opt.Help {
			os.Exit(2)
		}
		os.Exit(0)
	}

	var c config.EditorConfig
	if err := c.UnmarshalEnv(envFromFileOrOS()); err != nil {
		fmt.Fprintf(os.Stderr, "error: parse config: %v\n", err)
		os.Exit(1)
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, NoColor: !c.LogStdoutPretty}).
		Level(c.LogLevel).
		With().Timestamp().Logger()

	if err := run(c, pflag.Args(), log); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func run(c config.EditorConfig, args []string, log zerolog.Logger) error {
	switch args[0] {
	case "dump":
		if len(args) != 2 {
			return fmt.Errorf("usage: dump <serverlist|servername|strdef>")
		}
		return runDump(c.RecordDir, args[1])
	case "set-world-url":
		if len(args) != 3 {
			return fmt.Errorf("usage: set-world-url <world_idx> <url>")
		}
		idx, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("world_idx: %w", err)
		}
		return setWorldURL(c.RecordDir, idx, args[2], log)
	case "set-world-channel":
		if len(args) != 4 {
			return fmt.Errorf("usage: set-world-channel <world_idx> <chan_idx> <url>")
		}
		widx, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("world_idx: %w", err)
		}
		cidx, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("chan_idx: %w", err)
		}
		return setWorldChannel(c.RecordDir, widx, cidx, args[3], log)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func runDump(dir, which string) error {
	switch which {
	case "serverlist":
		sl, err := wrecord.LoadServerList(dir)
		if err != nil {
			return err
		}
		fmt.Printf("key=%#x\n", sl.Key)
		for i, w := range sl.Worlds {
			fmt.Printf("world[%d]: url=%q channels=%v\n", i, w.URL, w.Channels)
		}
	case "servername":
		sn, err := wrecord.LoadServerName(dir)
		if err != nil {
			return err
		}
		for i, n := range sn.Names {
			fmt.Printf("world[%d]: name=%q count=%d\n", i, n, sn.Counts[i])
		}
	case "strdef":
		sd, err := wrecord.LoadStrdef(dir)
		if err != nil {
			return err
		}
		fmt.Printf("sentinel=%#x messages=%d\n", sd.Sentinel, len(sd.Messages))
		for i, m := range sd.Messages {
			if m != "" {
				fmt.Printf("messages[%d]=%q\n", i, m)
			}
		}
	default:
		return fmt.Errorf("unknown record %q", which)
	}
	return nil
}

func setWorldURL(dir string, idx int, url string, log zerolog.Logger) error {
	sl, err := wrecord.LoadServerList(dir)
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(sl.Worlds) {
		return fmt.Errorf("world_idx %d out of range", idx)
	}
	sl.Worlds[idx].URL = url
	if err := wrecord.SaveServerList(dir, sl); err != nil {
		return err
	}
	log.Info().Int("world", idx).Str("url", url).Msg("saved serverlist.bin")
	return nil
}

func setWorldChannel(dir string, widx, cidx int, url string, log zerolog.Logger) error {
	sl, err := wrecord.LoadServerList(dir)
	if err != nil {
		return err
	}
	if widx < 0 || widx >= len(sl.Worlds) {
		return fmt.Errorf("world_idx %d out of range", widx)
	}
	if cidx < 0 || cidx >= len(sl.Worlds[widx].Channels) {
		return fmt.Errorf("chan_idx %d out of range", cidx)
	}
	sl.Worlds[widx].Channels[cidx] = url
	if err := wrecord.SaveServerList(dir, sl); err != nil {
		return err
	}
	log.Info().Int("world", widx).Int("channel", cidx).Str("url", url).Msg("saved serverlist.bin")
	return nil
}

func envFromFileOrOS() []string {
	f, err := os.Open(".env")
	if err != nil {
		return os.Environ()
	}
	defer f.Close()

	m, err := envparse.Parse(f)
	if err != nil {
		return os.Environ()
	}
	var r []string
	for k, v := range m {
		r = append(r, k+"="+v)
	}
	return r
}
