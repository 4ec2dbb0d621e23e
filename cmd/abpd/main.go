// Command abpd is the composition root for an Agent Backplane host
// process: it wires a backend registry of sidecar subprocesses into a
// runtime and serves it over HTTP. CLI argument parsing is intentionally
// thin since config-file loading is out of scope; flags only override the
// handful of fields config.Default leaves generic.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"goa.design/clue/log"

	"github.com/agentbackplane/abp/config"
	"github.com/agentbackplane/abp/httpapi"
	"github.com/agentbackplane/abp/internal/logging"
	"github.com/agentbackplane/abp/runtime"
	"github.com/agentbackplane/abp/sidecar"
)

func main() {
	var (
		listenAddrF  = flag.String("listen", "", "override listen address (default :8080)")
		receiptsDirF = flag.String("receipts-dir", "", "override receipts directory (default ./receipts)")
		dbgF         = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	format := log.FormatJSON
	if log.IsTerminal() {
		format = log.FormatTerminal
	}
	ctx := log.Context(context.Background(), log.WithFormat(format))
	if *dbgF {
		ctx = log.Context(ctx, log.WithDebug())
	}

	cfg := config.Default()
	if *listenAddrF != "" {
		cfg.ListenAddr = *listenAddrF
	}
	if *receiptsDirF != "" {
		cfg.ReceiptsDir = *receiptsDirF
	}
	if err := cfg.Validate(); err != nil {
		log.Error(ctx, err, log.KV{K: "msg", V: "invalid configuration"})
		os.Exit(1)
	}

	logger := logging.New()
	rt, err := runtime.New(runtime.Options{ReceiptsDir: cfg.ReceiptsDir, Logger: logger})
	if err != nil {
		log.Error(ctx, err, log.KV{K: "msg", V: "failed to build runtime"})
		os.Exit(1)
	}

	var processes []*sidecar.Process
	for _, b := range cfg.Backends {
		process, err := sidecar.Start(ctx, sidecar.Options{
			Command:          b.Command,
			Path:             b.CommandPath,
			Args:             b.Args,
			Cwd:              b.Cwd,
			Env:              b.Env,
			HandshakeTimeout: b.HandshakeTimeout,
		})
		if err != nil {
			log.Error(ctx, err, log.KV{K: "msg", V: "failed to start backend"}, log.KV{K: "backend", V: b.Name})
			os.Exit(1)
		}
		processes = append(processes, process)

		if err := rt.RegisterBackend(b.Name, sidecar.NewBackend(process, cfg.EventBufferSize)); err != nil {
			log.Error(ctx, err, log.KV{K: "msg", V: "failed to register backend"}, log.KV{K: "backend", V: b.Name})
			os.Exit(1)
		}
		log.Print(ctx, log.KV{K: "msg", V: "registered backend"}, log.KV{K: "backend", V: b.Name}, log.KV{K: "dialect", V: b.Dialect})
	}
	defer func() {
		for _, p := range processes {
			_ = p.Kill()
		}
	}()

	server := httpapi.New(httpapi.Options{Runtime: rt, Logger: logger})
	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		errc <- fmt.Errorf("%s", <-c)
	}()

	go func() {
		log.Print(ctx, log.KV{K: "msg", V: "listening"}, log.KV{K: "addr", V: cfg.ListenAddr})
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	log.Print(ctx, log.KV{K: "msg", V: "exiting"}, log.KV{K: "reason", V: fmt.Sprint(<-errc)})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)
}
