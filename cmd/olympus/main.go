// Command olympus starts the reference deployment: it loads configuration,
// ignites the supervised actor runtime, and serves the HTTP operator
// surface until it receives an interrupt or termination signal.
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

	"github.com/olympusrt/olympus/config"
	"github.com/olympusrt/olympus/genesis"
	"github.com/olympusrt/olympus/gods"
	"github.com/olympusrt/olympus/httpapi"
	"github.com/olympusrt/olympus/logger"
	"github.com/olympusrt/olympus/message"
)

func main() {
	configPath := flag.String("config", "olympus.yaml", "path to the runtime configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	watcher, err := config.NewWatcher(configPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	cfg := watcher.Current()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := genesis.Ignite(ctx, cfg)
	if err != nil {
		return fmt.Errorf("ignite runtime: %w", err)
	}
	defer rt.Shutdown()

	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()
	watcher.OnChange(func(_, next *config.RuntimeConfig) {
		if hefesto, ok := rt.Actors[message.Hefesto].(*gods.Hefesto); ok {
			hefesto.ApplyConfig(next)
		}
	})
	go watcher.Run(watchCtx)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httpapi.NewMux(rt),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Log(fmt.Sprintf("olympus: serving on %s", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
			return
		}
		serveErr <- nil
	}()

	select {
	case <-ctx.Done():
		logger.Log("olympus: shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}

	return nil
}
