// Command poperepl is a line-oriented demo client for a pope.Tree: it
// reads insert/range commands from stdin, runs them against an
// in-process comparison oracle, times each range query, and reports
// results. It exists to
// exercise the tree package interactively from the command line.
package main

import (
	"bufio"
	"bytes"
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dsroche/pope/config"
	"github.com/dsroche/pope/logging"
	"github.com/dsroche/pope/oracle"
	"github.com/dsroche/pope/pope"
)

func main() {
	var (
		configPath  = flag.String("config", "", "path to a config file (optional; defaults are used otherwise)")
		fanout      = flag.Int("fanout", 0, "override fan-out (0: use config/default)")
		cacheSize   = flag.Int("cache", -1, "override comparison cache size (-1: use config/default, 0: disable)")
		logLevel    = flag.String("log-level", "", "info, debug, or empty for quiet")
		trace       = flag.String("trace", "", "comma-separated trace subsystems, or \"all\"")
		metricsAddr = flag.String("metrics-addr", "", "if set, serve Prometheus metrics at this address")
	)
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.ParseFile(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "poperepl:", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *fanout > 0 {
		cfg.Fanout = *fanout
	}
	if *cacheSize >= 0 {
		cfg.CacheSize = *cacheSize
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *trace != "" {
		cfg.Logging.Trace = *trace
	}

	log := logging.New(os.Stdout, os.Stderr)
	if strings.EqualFold(cfg.Logging.Level, "info") || strings.EqualFold(cfg.Logging.Level, "debug") {
		log.EnableInfo()
	}
	if cfg.Logging.Trace != "" {
		log.EnableTracing(cfg.Logging.Trace)
	}

	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				log.Warn("metrics server stopped: %v", err)
			}
		}()
	}

	var o oracle.Oracle = oracle.NewLocal(bytes.Compare)
	if cfg.CacheSize > 0 {
		o = oracle.NewCached(o, cfg.CacheSize)
	}
	o = oracle.Instrument(o)

	tree, err := pope.New(o, cfg.Fanout)
	if err != nil {
		fmt.Fprintln(os.Stderr, "poperepl:", err)
		os.Exit(1)
	}
	tree.SetLogger(log)

	session := uuid.New()
	fmt.Printf("poperepl session %s, fanout=%d, cache=%d\n", session, cfg.Fanout, cfg.CacheSize)
	fmt.Println("commands: insert <ct>, range <low> <high>, verify, stats, quit")

	runREPL(os.Stdin, os.Stdout, tree, log)
}

func runREPL(in *os.File, out *os.File, tree *pope.Tree, log *logging.Logger) {
	ctx := context.Background()
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "insert":
			if len(fields) != 2 {
				fmt.Fprintln(out, "usage: insert <ct>")
				continue
			}
			if err := tree.Insert([]byte(fields[1])); err != nil {
				fmt.Fprintln(out, "error:", err)
				continue
			}
			fmt.Fprintf(out, "ok, %s ciphertexts stored\n", humanize.Comma(tree.Size()))

		case "range":
			if len(fields) != 3 {
				fmt.Fprintln(out, "usage: range <low> <high>")
				continue
			}
			start := time.Now()
			results, err := tree.Range(ctx, []byte(fields[1]), []byte(fields[2]))
			elapsed := time.Since(start)
			if err != nil {
				fmt.Fprintln(out, "error:", err)
				continue
			}
			fmt.Fprintf(out, "%s results in %s:\n", humanize.Comma(int64(len(results))), elapsed)
			for _, r := range results {
				fmt.Fprintln(out, string(r))
			}

		case "verify":
			if err := tree.Verify(ctx); err != nil {
				fmt.Fprintln(out, "verify failed:", err)
				continue
			}
			fmt.Fprintln(out, "ok")

		case "stats":
			s := tree.Stats()
			fmt.Fprintf(out, "nodes=%s leaves=%s pivots=%s leaf_depth=%d size=%s\n",
				humanize.Comma(int64(s.Nodes)), humanize.Comma(int64(s.Leaves)),
				humanize.Comma(int64(s.Pivots)), s.LeafDepth, humanize.Comma(tree.Size()))

		case "quit", "exit":
			return

		default:
			fmt.Fprintf(out, "unknown command %q\n", fields[0])
		}
	}
}
