package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/mothlight/swarmgate-mp/config"
	"github.com/mothlight/swarmgate-mp/server/core"
)

func main() {
	settings, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	port := flag.Uint("port", settings.Port, "Host port")
	tickRate := flag.Int("tickrate", settings.TickRate, "Simulation tick rate (updates per second)")
	version := flag.String("version", settings.Version, "Required guest version (empty = accept any)")
	flag.Parse()

	server := core.NewServer(*tickRate, *version, settings.Tuning)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("[server] starting on port %d (tick rate: %d/s, version: %q)",
			*port, *tickRate, *version)
		return server.Start(*port)
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Println("[server] shutting down")
		server.Stop()
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
