// Command corehost runs the plugin host: loads corehost.toml, starts a
// core-pinned executor pool, opens every configured plugin, and drives a
// fixed-tick Check/CallUpdate loop while serving diagnostics over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joeycumines/logiface"

	_ "github.com/joeycumines/corehost/tlsshim" // side-effect import: shadow __cxa_thread_atexit_impl
	"github.com/joeycumines/corehost/hostloop"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "corehost:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "corehost.toml", "path to host configuration")
	logLevel := flag.Int("log-level", int(logiface.LevelInformational), "minimum logiface level to emit")
	flag.Parse()

	cfg, err := hostloop.LoadConfig(*configPath)
	if err != nil {
		return err
	}

	log := hostloop.NewLogger(os.Stdout, logiface.Level(*logLevel))

	host, err := hostloop.New(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = host.Close(context.Background()) }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- host.Serve() }()

	log.Info().Str("run_id", hostloop.RunID).Log("corehost starting")

	runErr := host.Run(ctx)
	if runErr != nil && runErr != context.Canceled {
		return runErr
	}

	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}
