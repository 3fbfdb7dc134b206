// Command proxycore is an interactive console over the proxy subsystem: it
// loads a proxy list, runs a validation sweep, and answers status queries
// for an IRC-bouncer-style caller (here, the operator at the prompt).
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/desertbit/grumble"
	"github.com/jedib0t/go-pretty/table"

	"github.com/vex-bnc/proxycore/internal/config"
	"github.com/vex-bnc/proxycore/internal/dialer"
	"github.com/vex-bnc/proxycore/internal/logging"
	"github.com/vex-bnc/proxycore/internal/pool"
	"github.com/vex-bnc/proxycore/internal/proxytype"
	"github.com/vex-bnc/proxycore/internal/validator"
)

var (
	proxyPool = pool.New()
	log       = logging.New()
)

func main() {
	app := grumble.New(&grumble.Config{
		Name:        "proxycore",
		Description: "proxy pool inspector and validator",
		HistoryFile: historyFilePath(),
	})

	addCommands(app)

	if err := app.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func historyFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".proxycore_history"
	}
	return filepath.Join(home, ".proxycore_history")
}

func addCommands(app *grumble.App) {
	proxyCmd := &grumble.Command{
		Name: "proxy",
		Help: "manage the proxy pool",
	}
	app.AddCommand(proxyCmd)

	proxyCmd.AddCommand(&grumble.Command{
		Name: "load",
		Help: "load a proxy list file into the pool",
		Args: func(a *grumble.Args) {
			a.String("file", "path to the proxy list file")
		},
		Flags: func(f *grumble.Flags) {
			f.String("t", "type", "none", "default declared type for lines with no scheme: http|https|socks4|socks5|none")
		},
		Run: func(c *grumble.Context) error {
			path := c.Args.String("file")
			defaultType, _ := proxytype.ParseScheme(c.Flags.String("type"))

			count, errs := proxyPool.Load(path, defaultType)
			for _, e := range errs {
				log.Error("skipped proxy line", e, nil)
			}
			log.Success("proxy pool loaded", map[string]any{"path": path, "count": count, "skipped": len(errs)})
			return nil
		},
	})

	proxyCmd.AddCommand(&grumble.Command{
		Name: "check",
		Help: "run a concurrent validation sweep against the pool",
		Flags: func(f *grumble.Flags) {
			f.Int("c", "concurrency", config.DefConcurrency, "number of concurrent workers (1-128)")
			f.String("", "test-host", config.DefaultTestHost, "destination host each proxy must reach")
			f.Int("", "test-port", config.DefaultTestPort, "destination port each proxy must reach")
			f.Duration("", "connect-timeout", config.DefTimeoutMs*time.Millisecond, "per-attempt connect timeout (100ms-60s)")
			f.Duration("", "handshake-timeout", config.DefTimeoutMs*time.Millisecond, "per-attempt handshake timeout (100ms-60s)")
			f.String("s", "save", "", "save the surviving proxies to this path after the sweep")
		},
		Run: func(c *grumble.Context) error {
			cfg := validator.Config{
				Concurrency: config.ClampConcurrency(c.Flags.Int("concurrency")),
				TestHost:    c.Flags.String("test-host"),
				TestPort:    config.ClampPort(c.Flags.Int("test-port")),
				DialerCfg: dialer.Config{
					ConnectTimeout:   config.ClampTimeout(c.Flags.Duration("connect-timeout")),
					HandshakeTimeout: config.ClampTimeout(c.Flags.Duration("handshake-timeout")),
				},
			}

			working, err := validator.Run(context.Background(), proxyPool, cfg, log)
			if err != nil {
				log.Error("validation sweep failed", err, nil)
				return nil
			}
			if working == -1 {
				log.Info("validation sweep skipped: pool is empty", nil)
				return nil
			}
			log.Success("validation sweep finished", map[string]any{"working": working})

			if savePath := c.Flags.String("save"); savePath != "" {
				if err := proxyPool.SaveValidated(savePath); err != nil {
					log.Error("failed to save validated proxies", err, nil)
				}
			}
			return nil
		},
	})

	proxyCmd.AddCommand(&grumble.Command{
		Name: "clear",
		Help: "empty the pool",
		Run: func(c *grumble.Context) error {
			proxyPool.Clear()
			log.Info("proxy pool cleared", nil)
			return nil
		},
	})

	proxyCmd.AddCommand(&grumble.Command{
		Name: "status",
		Help: "show the current pool contents as a table",
		Run: func(c *grumble.Context) error {
			c.App.Println(renderStatusTable())
			return nil
		},
	})
}

func renderStatusTable() string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Host", "Port", "Declared", "Validated", "Active", "Detected", "RTT (ms)"})

	for _, proxy := range proxyPool.Snapshot() {
		t.AppendRow(table.Row{
			proxy.Host,
			proxy.Port,
			proxy.DeclaredType.String(),
			proxy.Validated,
			proxy.IsActive,
			proxy.DetectedType.String(),
			proxy.LastRTTMs,
		})
	}

	return t.Render()
}
